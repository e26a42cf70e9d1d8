package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/agronova/internal/adapters/http"
	"github.com/PabloGalante/agronova/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(deps *Dependencies) *cobra.Command {
	var portFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the AgroNova HTTP API.

Endpoints:
  GET  /healthz
  GET  /topics
  POST /chat                      {"message", "feature", "history"}
  POST /sessions
  GET  /sessions/{id}             DELETE ends the session
  POST /sessions/{id}/messages    {"text"}
  PUT  /sessions/{id}/topic       {"topic"}, DELETE clears it
  POST /sessions/{id}/reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if portFlag != "" {
				deps.Config.Port = portFlag
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, deps)
		},
	}

	cmd.Flags().StringVarP(&portFlag, "port", "p", "", "Port to listen on (default from AGRONOVA_PORT)")
	return cmd
}

func runServe(ctx context.Context, deps *Dependencies) error {
	svc, err := deps.newService(ctx)
	if err != nil {
		return err
	}

	cfg := deps.Config
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log := observability.Logger()
	log.Info("AgroNova API listening",
		"addr", srv.Addr,
		"model", cfg.ModelName,
		"mode", string(cfg.Mode),
		"credential_configured", cfg.HasCredential(),
		"mock_llm", cfg.UseMockLLM,
		"response_cache", cfg.ResponseCache,
	)
	if !cfg.HasCredential() {
		log.Warn("set GEMINI_API_KEY (or AGRONOVA_GCP_PROJECT in gcp mode) to get model answers")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
