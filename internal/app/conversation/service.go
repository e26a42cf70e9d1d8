package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/agronova/internal/adapters/llm"
	"github.com/PabloGalante/agronova/internal/app/topics"
	"github.com/PabloGalante/agronova/internal/domain"
	"github.com/PabloGalante/agronova/internal/observability"
)

var (
	// ErrInputRejected is returned for blank messages. Nothing is sent and nothing is recorded.
	ErrInputRejected = errors.New("message is empty")

	// ErrSessionBusy is returned when a turn is already in flight for the session.
	ErrSessionBusy = errors.New("a message is already being processed for this session")
)

type Service struct {
	llm          domain.ModelInvoker
	topics       *topics.Registry
	sessionStore domain.SessionStore
	now          func() time.Time
}

func NewService(
	invoker domain.ModelInvoker,
	registry *topics.Registry,
	sessionStore domain.SessionStore,
) *Service {
	return &Service{
		llm:          invoker,
		topics:       registry,
		sessionStore: sessionStore,
		now:          time.Now,
	}
}

// Topics returns the catalog in display order.
func (s *Service) Topics() []domain.Topic {
	return s.topics.All()
}

// TurnResult describes one completed turn.
type TurnResult struct {
	UserMessage      domain.Message
	AssistantMessage domain.Message

	// Context is exactly what was sent to the model.
	Context domain.InvocationContext

	// Failure is set when the model call failed and AssistantMessage holds the fallback text.
	Failure *llm.InvocationError
}

// SubmitTurn runs one turn against a session: build the context from the session's
// history and topic, invoke the model once, then append the user message and the answer.
//
// Only ErrInputRejected and ErrSessionBusy are returned; model failures are absorbed into
// a fallback answer and reported through TurnResult.Failure.
func (s *Service) SubmitTurn(ctx context.Context, session *domain.Session, userMessage string) (*TurnResult, error) {
	if strings.TrimSpace(userMessage) == "" {
		return nil, ErrInputRejected
	}
	if !session.BeginTurn() {
		return nil, ErrSessionBusy
	}
	defer session.EndTurn()

	topicID, _ := session.Topic()

	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"topic", topicID,
	)
	log.Info("submitting turn")

	start := s.now()
	answer, ic, failure := s.respond(ctx, userMessage, topicID, session.History())

	if err := session.AppendUser(userMessage); err != nil {
		return nil, ErrInputRejected
	}
	session.AppendAssistant(answer)

	log.Info("turn completed",
		"context_entries", len(ic.Entries),
		"transcript_len", session.Len(),
		"failed", failure != nil,
		"elapsed_ms", s.now().Sub(start).Milliseconds(),
	)

	return &TurnResult{
		UserMessage:      domain.Message{Role: domain.RoleUser, Content: userMessage},
		AssistantMessage: domain.Message{Role: domain.RoleAssistant, Content: answer},
		Context:          ic,
		Failure:          failure,
	}, nil
}

// Respond answers a message against caller-supplied history without any session.
// It backs stateless clients that keep the transcript themselves.
func (s *Service) Respond(
	ctx context.Context,
	userMessage string,
	topicID domain.TopicID,
	history []domain.Message,
) (*TurnResult, error) {
	if strings.TrimSpace(userMessage) == "" {
		return nil, ErrInputRejected
	}

	answer, ic, failure := s.respond(ctx, userMessage, topicID, history)

	return &TurnResult{
		UserMessage:      domain.Message{Role: domain.RoleUser, Content: userMessage},
		AssistantMessage: domain.Message{Role: domain.RoleAssistant, Content: answer},
		Context:          ic,
		Failure:          failure,
	}, nil
}

func (s *Service) respond(
	ctx context.Context,
	userMessage string,
	topicID domain.TopicID,
	history []domain.Message,
) (string, domain.InvocationContext, *llm.InvocationError) {
	ic := llm.BuildContext(s.topics, userMessage, topicID, history)

	text, err := s.llm.Invoke(ctx, ic)
	if err != nil {
		failure := llm.NewInvocationError(err)
		observability.LoggerFromContext(ctx).Error("model invocation failed",
			"failure_kind", failure.Kind,
			"error", failure.Err,
		)
		return llm.FallbackText(failure), ic, failure
	}

	return text, ic, nil
}

// ─────────────────────────────────────────────
// Session lifecycle (used by the HTTP adapter)
// ─────────────────────────────────────────────

// StartSession creates and stores a new session seeded with the welcome message.
func (s *Service) StartSession(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession(domain.SessionID(uuid.NewString()))

	if err := s.sessionStore.CreateSession(session); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to create session", "error", err)
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info("session started", "session_id", session.ID)
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return s.sessionStore.GetSession(id)
}

// SendMessage runs SubmitTurn on a stored session.
func (s *Service) SendMessage(ctx context.Context, id domain.SessionID, text string) (*TurnResult, error) {
	session, err := s.sessionStore.GetSession(id)
	if err != nil {
		return nil, err
	}
	return s.SubmitTurn(ctx, session, text)
}

func (s *Service) SelectTopic(ctx context.Context, id domain.SessionID, topic domain.TopicID) (*domain.Session, error) {
	session, err := s.sessionStore.GetSession(id)
	if err != nil {
		return nil, err
	}
	session.SelectTopic(topic)
	observability.LoggerFromContext(ctx).Info("topic selected", "session_id", id, "topic", topic)
	return session, nil
}

func (s *Service) ClearTopic(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	session, err := s.sessionStore.GetSession(id)
	if err != nil {
		return nil, err
	}
	session.ClearTopic()
	return session, nil
}

// ResetSession restores the session transcript to the welcome message.
func (s *Service) ResetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	session, err := s.sessionStore.GetSession(id)
	if err != nil {
		return nil, err
	}
	session.Reset()
	observability.LoggerFromContext(ctx).Info("session reset", "session_id", id)
	return session, nil
}

// EndSession drops a session from the store.
func (s *Service) EndSession(ctx context.Context, id domain.SessionID) error {
	return s.sessionStore.DeleteSession(id)
}
