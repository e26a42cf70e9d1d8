package commands

import (
	"context"
	"errors"
	"os"

	"github.com/PabloGalante/agronova/internal/adapters/llm"
	memstore "github.com/PabloGalante/agronova/internal/adapters/storage/memory"
	"github.com/PabloGalante/agronova/internal/adapters/tui"
	"github.com/PabloGalante/agronova/internal/app/conversation"
	"github.com/PabloGalante/agronova/internal/app/topics"
	"github.com/PabloGalante/agronova/internal/config"
	"github.com/PabloGalante/agronova/internal/domain"
	"github.com/PabloGalante/agronova/internal/observability"
)

// InvokerFactory builds the model invoker for a config.
type InvokerFactory func(ctx context.Context, cfg *config.Config) (domain.ModelInvoker, error)

// ChatRunner runs the interactive chat for one session.
type ChatRunner func(ctx context.Context, svc *conversation.Service, session *domain.Session, modelName string) error

// Dependencies holds the external dependencies for the commands.
// Tests swap NewInvoker and RunChat for fakes.
type Dependencies struct {
	Config *config.Config

	NewInvoker InvokerFactory
	RunChat    ChatRunner
}

// NewDependencies loads the config from the environment and wires the production implementations.
func NewDependencies() (*Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	observability.Configure(os.Stdout, cfg.LogLevel)

	return &Dependencies{
		Config:     cfg,
		NewInvoker: NewInvoker,
		RunChat:    tui.Run,
	}, nil
}

// NewInvoker picks the mock, Gemini API or Vertex AI invoker and wraps it with the
// response cache when enabled.
func NewInvoker(ctx context.Context, cfg *config.Config) (domain.ModelInvoker, error) {
	var invoker domain.ModelInvoker

	if cfg.UseMockLLM {
		observability.Logger().Info("using mock LLM")
		invoker = llm.NewMockLLM()
	} else {
		gc := llm.GeminiConfig{
			APIKey:    cfg.APIKey,
			ModelName: cfg.ModelName,
		}
		if cfg.Mode == config.ModeGCP {
			gc.Project = cfg.GCPProjectID
			gc.Location = cfg.GCPLocation
		}

		g, err := llm.NewGeminiInvoker(ctx, gc)
		switch {
		case errors.Is(err, llm.ErrCredential):
			// Keep serving; every turn answers with the credential fallback.
			observability.Logger().Warn("no credential configured, answers will be fallback messages",
				"error", err,
			)
			invoker = llm.NewFailingLLM(err)
		case err != nil:
			return nil, err
		default:
			observability.Logger().Info("using Gemini LLM",
				"model", cfg.ModelName,
				"mode", string(cfg.Mode),
			)
			invoker = g
		}
	}

	if cfg.ResponseCache {
		invoker = llm.NewCachingInvoker(invoker, cfg.ResponseCacheSize)
	}
	return invoker, nil
}

// newService builds the conversation service with in-memory sessions.
func (d *Dependencies) newService(ctx context.Context) (*conversation.Service, error) {
	invoker, err := d.NewInvoker(ctx, d.Config)
	if err != nil {
		return nil, err
	}

	registry, err := topics.Default()
	if err != nil {
		return nil, err
	}

	return conversation.NewService(invoker, registry, memstore.NewSessionStore()), nil
}
