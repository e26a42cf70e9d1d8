package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/agronova/internal/adapters/llm"
	"github.com/PabloGalante/agronova/internal/app/conversation"
	"github.com/PabloGalante/agronova/internal/config"
	"github.com/PabloGalante/agronova/internal/domain"
)

type fakeChat struct {
	called  bool
	session *domain.Session
	model   string
}

func (f *fakeChat) run(_ context.Context, _ *conversation.Service, session *domain.Session, modelName string) error {
	f.called = true
	f.session = session
	f.model = modelName
	return nil
}

func newTestDeps(invoker domain.ModelInvoker) (*Dependencies, *fakeChat) {
	chat := &fakeChat{}
	return &Dependencies{
		Config: &config.Config{
			Mode:      config.ModeLocal,
			Port:      "5000",
			ModelName: "gemini-2.5-flash",
		},
		NewInvoker: func(context.Context, *config.Config) (domain.ModelInvoker, error) {
			return invoker, nil
		},
		RunChat: chat.run,
	}, chat
}

func execute(t *testing.T, deps *Dependencies, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	deps, _ := newTestDeps(llm.NewMockLLM())
	cmd := NewRootCmd(deps)

	assert.Equal(t, "agronova", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "topics", "ask", "chat"})

	out, err := execute(t, deps, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "agronova "+Version)
}

func TestTopicsCommand(t *testing.T) {
	deps, _ := newTestDeps(llm.NewMockLLM())

	out, err := execute(t, deps, "", "topics")
	require.NoError(t, err)
	for _, id := range []string{"crop-recommendation", "pest-disease", "weather-alerts", "soil-fertilizer", "sustainable-farming"} {
		assert.Contains(t, out, id)
	}
	assert.NotContains(t, out, "aphids on tomato")

	out, err = execute(t, deps, "", "topics", "--samples")
	require.NoError(t, err)
	assert.Contains(t, out, "How to treat aphids on tomato plants organically?")
}

func TestAskCommand(t *testing.T) {
	mock := llm.NewMockLLM()
	deps, _ := newTestDeps(mock)

	out, err := execute(t, deps, "", "ask", "--topic", "pest-disease", "aphids", "on", "tomato")
	require.NoError(t, err)
	assert.Contains(t, out, "aphids on tomato")

	calls := mock.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Entries, 3)
	assert.Contains(t, calls[0].Entries[0].Content, "Focus on: Identifying pests and diseases")
}

func TestAskCommandReadsStdin(t *testing.T) {
	mock := llm.NewMockLLM()
	deps, _ := newTestDeps(mock)

	out, err := execute(t, deps, "NPK ratio for wheat\n", "ask", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "NPK ratio for wheat")
	assert.Len(t, mock.Calls(), 1)
}

func TestAskCommandBlankQuestion(t *testing.T) {
	mock := llm.NewMockLLM()
	deps, _ := newTestDeps(mock)

	_, err := execute(t, deps, "   ", "ask")
	assert.ErrorIs(t, err, conversation.ErrInputRejected)
	assert.Empty(t, mock.Calls())
}

func TestAskCommandFallback(t *testing.T) {
	deps, _ := newTestDeps(llm.NewFailingLLM(errors.New("connection refused")))

	out, err := execute(t, deps, "", "ask", "--raw", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "API key not configured properly")
	assert.Contains(t, out, "connection refused")
}

func TestChatCommand(t *testing.T) {
	deps, chat := newTestDeps(llm.NewMockLLM())

	_, err := execute(t, deps, "", "chat", "--topic", "weather-alerts", "--model", "gemini-2.5-pro")
	require.NoError(t, err)

	require.True(t, chat.called)
	assert.Equal(t, "gemini-2.5-pro", chat.model)
	topic, ok := chat.session.Topic()
	require.True(t, ok)
	assert.Equal(t, domain.TopicID("weather-alerts"), topic)
	assert.Equal(t, 1, chat.session.Len())
}

func TestNewInvoker(t *testing.T) {
	ctx := context.Background()

	inv, err := NewInvoker(ctx, &config.Config{UseMockLLM: true})
	require.NoError(t, err)
	assert.IsType(t, &llm.MockLLM{}, inv)

	inv, err = NewInvoker(ctx, &config.Config{UseMockLLM: true, ResponseCache: true, ResponseCacheSize: 4})
	require.NoError(t, err)
	assert.IsType(t, &llm.CachingInvoker{}, inv)

	// No credential: every answer is the credential fallback.
	inv, err = NewInvoker(ctx, &config.Config{Mode: config.ModeLocal, ModelName: "gemini-2.5-flash"})
	require.NoError(t, err)
	_, err = inv.Invoke(ctx, domain.InvocationContext{Entries: []domain.Message{{Role: domain.RoleUser, Content: "hi"}}})
	assert.ErrorIs(t, err, llm.ErrCredential)

	inv, err = NewInvoker(ctx, &config.Config{Mode: config.ModeLocal, APIKey: "test-key", ModelName: "gemini-2.5-flash"})
	require.NoError(t, err)
	assert.IsType(t, &llm.GeminiInvoker{}, inv)
}
