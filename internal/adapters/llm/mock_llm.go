package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/agronova/internal/domain"
)

// MockLLM answers deterministically without any network access.
// Set Err to make every call fail with that error.
type MockLLM struct {
	Err error

	mu    sync.Mutex
	calls []domain.InvocationContext
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// NewFailingLLM returns a mock whose calls all fail with err.
func NewFailingLLM(err error) *MockLLM {
	return &MockLLM{Err: err}
}

func (m *MockLLM) Invoke(_ context.Context, ic domain.InvocationContext) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ic)
	m.mu.Unlock()

	if m.Err != nil {
		return "", NewInvocationError(m.Err)
	}

	last, _ := ic.Last()
	return fmt.Sprintf("🌾 **AgroNova (offline mode)**\n\nYou asked: %q.\n\n"+
		"Configure GEMINI_API_KEY to get real farming advice.", last.Content), nil
}

// Calls returns the contexts received so far.
func (m *MockLLM) Calls() []domain.InvocationContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.InvocationContext(nil), m.calls...)
}

var _ domain.ModelInvoker = (*MockLLM)(nil)
