package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/PabloGalante/agronova/internal/domain"
)

// Fixed generation parameters, identical for every call.
const (
	Temperature     float32 = 0.7
	TopP            float32 = 0.95
	TopK            float32 = 40
	MaxOutputTokens int32   = 2048
)

// GeminiConfig selects the backend. A non-empty Project switches to Vertex AI,
// otherwise the Gemini API is used with APIKey.
type GeminiConfig struct {
	APIKey    string
	Project   string
	Location  string
	ModelName string

	// BaseURL and HTTPClient override the SDK transport, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

type GeminiInvoker struct {
	client    *genai.Client
	modelName string
	genConfig *genai.GenerateContentConfig
}

// NewGeminiInvoker creates a ModelInvoker backed by Gemini (API key or Vertex AI).
func NewGeminiInvoker(ctx context.Context, cfg GeminiConfig) (*GeminiInvoker, error) {
	if cfg.ModelName == "" {
		return nil, errors.New("model name is required")
	}

	cc := &genai.ClientConfig{
		HTTPClient: cfg.HTTPClient,
	}
	switch {
	case cfg.Project != "":
		if cfg.Location == "" {
			return nil, errors.New("location is required for the Vertex AI backend")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	case cfg.APIKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	default:
		return nil, fmt.Errorf("%w: neither an API key nor a GCP project is configured", ErrCredential)
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiInvoker{
		client:    client,
		modelName: cfg.ModelName,
		genConfig: GenerationConfig(),
	}, nil
}

// GenerationConfig returns the constant generation parameters.
func GenerationConfig() *genai.GenerateContentConfig {
	temp := Temperature
	topP := TopP
	topK := TopK

	return &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		TopK:            &topK,
		MaxOutputTokens: MaxOutputTokens,
	}
}

// Invoke seeds a chat with every entry but the last and sends the last one.
// Exactly one request is made; failures come back as *InvocationError.
func (g *GeminiInvoker) Invoke(ctx context.Context, ic domain.InvocationContext) (string, error) {
	last, ok := ic.Last()
	if !ok || last.Role != domain.RoleUser {
		return "", &InvocationError{Kind: FailureUnknown, Err: errors.New("invocation context must end with a user message")}
	}

	history := make([]*genai.Content, 0, len(ic.Entries)-1)
	for _, m := range ic.History() {
		history = append(history, genai.NewContentFromText(m.Content, toGenaiRole(m.Role)))
	}

	chat, err := g.client.Chats.Create(ctx, g.modelName, g.genConfig, history)
	if err != nil {
		return "", NewInvocationError(fmt.Errorf("starting chat: %w", err))
	}

	res, err := chat.SendMessage(ctx, genai.Part{Text: last.Content})
	if err != nil {
		return "", NewInvocationError(fmt.Errorf("gemini send message: %w", err))
	}

	text := res.Text()
	if text == "" {
		return "", &InvocationError{Kind: FailureMalformed, Err: fmt.Errorf("%w: gemini returned empty text", ErrMalformedResponse)}
	}

	return text, nil
}

func toGenaiRole(r domain.Role) genai.Role {
	switch r {
	case domain.RoleUser:
		return genai.RoleUser
	default:
		return genai.RoleModel
	}
}

var _ domain.ModelInvoker = (*GeminiInvoker)(nil)
