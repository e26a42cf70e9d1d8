package config

import (
	"errors"
	"os"
	"strconv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	// Gemini API backend
	APIKey string

	// Vertex AI backend (gcp mode)
	GCPProjectID string
	GCPLocation  string

	ModelName string

	UseMockLLM bool // true = answer offline, no model calls

	ResponseCache     bool
	ResponseCacheSize int

	LogLevel string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Load reads all env vars and builds the config
func Load() (*Config, error) {
	modeStr := getEnv("AGRONOVA_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("AGRONOVA_PORT", "5000"),

		APIKey: getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),

		GCPProjectID: getEnv("AGRONOVA_GCP_PROJECT", ""),
		GCPLocation:  getEnv("AGRONOVA_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("AGRONOVA_MODEL_NAME", "gemini-2.5-flash"),

		ResponseCache:     getBoolEnv("AGRONOVA_RESPONSE_CACHE", false),
		ResponseCacheSize: getIntEnv("AGRONOVA_RESPONSE_CACHE_SIZE", 128),

		LogLevel: getEnv("AGRONOVA_LOG_LEVEL", "info"),
	}

	// Without a key in local mode there is nothing to call, so default to the mock.
	cfg.UseMockLLM = getBoolEnv("AGRONOVA_USE_MOCK_LLM", mode == ModeLocal && cfg.APIKey == "")

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		return nil, errors.New("AGRONOVA_GCP_PROJECT must be set in gcp mode")
	}

	return cfg, nil
}

// HasCredential reports whether a real model backend can be reached.
func (c *Config) HasCredential() bool {
	if c.Mode == ModeGCP {
		return c.GCPProjectID != ""
	}
	return c.APIKey != ""
}
