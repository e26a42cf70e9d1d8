package domain

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// ModelInvoker submits an invocation context to the completion service.
// Implementations perform exactly one remote call per Invoke and never retry.
type ModelInvoker interface {
	Invoke(ctx context.Context, ic InvocationContext) (string, error)
}

// InvocationContext is the exact role-tagged sequence sent to the model for one turn:
// priming pair, trailing history window, new user message.
type InvocationContext struct {
	Entries []Message
}

// History returns every entry except the last one, i.e. what seeds the chat.
func (ic InvocationContext) History() []Message {
	if len(ic.Entries) == 0 {
		return nil
	}
	return ic.Entries[:len(ic.Entries)-1]
}

// Last returns the final entry, the new user message.
func (ic InvocationContext) Last() (Message, bool) {
	if len(ic.Entries) == 0 {
		return Message{}, false
	}
	return ic.Entries[len(ic.Entries)-1], true
}

// SessionStore keeps live sessions in process memory.
type SessionStore interface {
	CreateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
	DeleteSession(id SessionID) error
}
