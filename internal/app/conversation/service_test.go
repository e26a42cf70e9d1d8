package conversation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/agronova/internal/adapters/llm"
	"github.com/PabloGalante/agronova/internal/adapters/storage/memory"
	"github.com/PabloGalante/agronova/internal/app/conversation"
	"github.com/PabloGalante/agronova/internal/app/topics"
	"github.com/PabloGalante/agronova/internal/domain"
)

func newService(t *testing.T, invoker domain.ModelInvoker) *conversation.Service {
	t.Helper()
	reg, err := topics.Default()
	require.NoError(t, err)
	return conversation.NewService(invoker, reg, memory.NewSessionStore())
}

func TestSubmitTurnSuccess(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	svc := newService(t, mock)

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	res, err := svc.SubmitTurn(ctx, session, "Best crops for monsoon season in Kerala")
	require.NoError(t, err)

	assert.Nil(t, res.Failure)
	assert.Contains(t, res.AssistantMessage.Content, "Best crops for monsoon season in Kerala")
	assert.Equal(t, 3, session.Len())
	assert.Len(t, mock.Calls(), 1)
}

func TestSubmitTurnPestDiseaseFailureScenario(t *testing.T) {
	ctx := context.Background()
	transportErr := errors.New("dial tcp 142.250.0.1:443: connect: connection refused")
	failing := llm.NewFailingLLM(transportErr)
	svc := newService(t, failing)

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	session.SelectTopic("pest-disease")
	before := session.Len()

	res, err := svc.SubmitTurn(ctx, session, "aphids on tomato")
	require.NoError(t, err)

	calls := failing.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Entries, 3)
	assert.Contains(t, calls[0].Entries[0].Content, "Focus on: Identifying pests and diseases")
	assert.Equal(t, "aphids on tomato", calls[0].Entries[2].Content)

	require.NotNil(t, res.Failure)
	text := res.AssistantMessage.Content
	assert.Contains(t, text, "API key not configured properly")
	assert.Contains(t, text, "Network connectivity issues")
	assert.Contains(t, text, "API rate limits")
	assert.Contains(t, text, transportErr.Error())

	assert.Equal(t, before+2, session.Len())
	tr := session.Transcript()
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "aphids on tomato"}, tr[len(tr)-2])
	assert.Equal(t, domain.Message{Role: domain.RoleAssistant, Content: text}, tr[len(tr)-1])
}

func TestSubmitTurnRejectsBlankInput(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	svc := newService(t, mock)
	session := domain.NewSession("s")

	for _, msg := range []string{"", "   ", "\n\t"} {
		res, err := svc.SubmitTurn(ctx, session, msg)
		assert.ErrorIs(t, err, conversation.ErrInputRejected)
		assert.Nil(t, res)
	}

	assert.Empty(t, mock.Calls())
	assert.Equal(t, 1, session.Len())
}

func TestSubmitTurnWindowsHistory(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	svc := newService(t, mock)
	session := domain.NewSession("s")

	for _, q := range []string{"q1", "q2", "q3", "q4", "q5"} {
		_, err := svc.SubmitTurn(ctx, session, q)
		require.NoError(t, err)
	}

	calls := mock.Calls()
	require.Len(t, calls, 5)

	// First turn: only priming pair and the message.
	assert.Len(t, calls[0].Entries, 3)
	// Second turn: one previous exchange.
	assert.Len(t, calls[1].Entries, 5)
	// Fifth turn: window is capped at six entries of history.
	last := calls[4]
	require.Len(t, last.Entries, 2+llm.HistoryWindow+1)
	hist := session.History()
	assert.Equal(t, hist[len(hist)-2-llm.HistoryWindow:len(hist)-2], last.Entries[2:2+llm.HistoryWindow])
}

func TestSubmitTurnUnknownTopicFallsBackToBase(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	svc := newService(t, mock)

	withUnknown := domain.NewSession("a")
	withUnknown.SelectTopic("irrigation-robots")
	plain := domain.NewSession("b")

	_, err := svc.SubmitTurn(ctx, withUnknown, "hello")
	require.NoError(t, err)
	_, err = svc.SubmitTurn(ctx, plain, "hello")
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[1], calls[0])
}

type blockingInvoker struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingInvoker) Invoke(ctx context.Context, _ domain.InvocationContext) (string, error) {
	close(b.started)
	<-b.release
	return "done", nil
}

func TestSubmitTurnRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	inv := &blockingInvoker{started: make(chan struct{}), release: make(chan struct{})}
	svc := newService(t, inv)
	session := domain.NewSession("s")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.SubmitTurn(ctx, session, "first")
		assert.NoError(t, err)
	}()

	<-inv.started
	_, err := svc.SubmitTurn(ctx, session, "second")
	assert.ErrorIs(t, err, conversation.ErrSessionBusy)

	close(inv.release)
	wg.Wait()
	assert.Equal(t, 3, session.Len())
}

func TestSubmitTurnSecondFailureIsIndependent(t *testing.T) {
	ctx := context.Background()
	failing := llm.NewFailingLLM(status.Error(codes.ResourceExhausted, "quota exceeded"))
	svc := newService(t, failing)
	session := domain.NewSession("s")

	first, err := svc.SubmitTurn(ctx, session, "one")
	require.NoError(t, err)
	second, err := svc.SubmitTurn(ctx, session, "two")
	require.NoError(t, err)

	assert.Equal(t, llm.FailureQuota, first.Failure.Kind)
	assert.Equal(t, llm.FailureQuota, second.Failure.Kind)
	assert.Len(t, failing.Calls(), 2)
	assert.Equal(t, 5, session.Len())
}

func TestResetAfterTurns(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, llm.NewMockLLM())

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	for _, q := range []string{"a", "b", "c"} {
		_, err := svc.SendMessage(ctx, session.ID, q)
		require.NoError(t, err)
	}
	require.Equal(t, 7, session.Len())

	_, err = svc.ResetSession(ctx, session.ID)
	require.NoError(t, err)

	tr := session.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, domain.WelcomeMessage, tr[0].Content)
}

func TestRespondStateless(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	svc := newService(t, mock)

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
	}
	res, err := svc.Respond(ctx, "soil tips", "soil-fertilizer", history)
	require.NoError(t, err)
	assert.Len(t, res.Context.Entries, 5)

	_, err = svc.Respond(ctx, "  ", "", history)
	assert.ErrorIs(t, err, conversation.ErrInputRejected)
	assert.Len(t, mock.Calls(), 1)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, llm.NewMockLLM())

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = svc.SelectTopic(ctx, session.ID, "crop-recommendation")
	require.NoError(t, err)
	topic, ok := session.Topic()
	assert.True(t, ok)
	assert.Equal(t, domain.TopicID("crop-recommendation"), topic)

	_, err = svc.ClearTopic(ctx, session.ID)
	require.NoError(t, err)
	_, ok = session.Topic()
	assert.False(t, ok)

	require.NoError(t, svc.EndSession(ctx, session.ID))
	_, err = svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.SendMessage(ctx, session.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.Len(t, svc.Topics(), 5)
}
