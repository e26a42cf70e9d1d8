package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/agronova/internal/adapters/llm"
	"github.com/PabloGalante/agronova/internal/domain"
)

func TestContextKeyCoversWholeContext(t *testing.T) {
	reg := testRegistry(t)

	plain := llm.BuildContext(reg, "aphids on tomato", "", nil)
	withTopic := llm.BuildContext(reg, "aphids on tomato", "pest-disease", nil)
	withHistory := llm.BuildContext(reg, "aphids on tomato", "", makeHistory(2))

	assert.NotEqual(t, llm.ContextKey(plain), llm.ContextKey(withTopic))
	assert.NotEqual(t, llm.ContextKey(plain), llm.ContextKey(withHistory))

	// Boundaries between role and content are part of the digest.
	a := domain.InvocationContext{Entries: []domain.Message{{Role: "user", Content: "ab"}}}
	b := domain.InvocationContext{Entries: []domain.Message{{Role: "usera", Content: "b"}}}
	assert.NotEqual(t, llm.ContextKey(a), llm.ContextKey(b))
}

func TestCachingInvoker(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	cache := llm.NewCachingInvoker(mock, 2)

	q1 := llm.BuildContext(nil, "one", "", nil)
	q2 := llm.BuildContext(nil, "two", "", nil)
	q3 := llm.BuildContext(nil, "three", "", nil)

	first, err := cache.Invoke(ctx, q1)
	require.NoError(t, err)
	again, err := cache.Invoke(ctx, q1)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Len(t, mock.Calls(), 1)

	_, _ = cache.Invoke(ctx, q2)
	_, _ = cache.Invoke(ctx, q3)
	assert.Equal(t, 2, cache.Len())

	// q1 was evicted first.
	_, _ = cache.Invoke(ctx, q1)
	assert.Len(t, mock.Calls(), 4)
}

func TestCachingInvokerDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	failing := llm.NewFailingLLM(errors.New("network down"))
	cache := llm.NewCachingInvoker(failing, 0)

	ic := llm.BuildContext(nil, "q", "", nil)
	_, err := cache.Invoke(ctx, ic)
	require.Error(t, err)
	_, err = cache.Invoke(ctx, ic)
	require.Error(t, err)

	assert.Len(t, failing.Calls(), 2)
	assert.Equal(t, 0, cache.Len())
}
