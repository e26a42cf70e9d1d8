package domain

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// WelcomeMessage seeds every new or reset transcript.
const WelcomeMessage = "Welcome to **AgroNova Smart Farming Assistant**! 🌾\n\n" +
	"I'm here to help farmers worldwide with AI-powered agricultural advice. " +
	"Ask me about crops, pests, weather, soil, or sustainable farming practices in your region.\n\n" +
	"**Select a feature below or ask me anything!**"

var ErrEmptyMessage = errors.New("message is empty")

// Message is a single transcript entry. Position is its append order.
type Message struct {
	Role    Role
	Content string
}

// Session owns one transcript and one optional selected topic for a single user.
// Sessions never share state with each other.
type Session struct {
	ID        SessionID
	CreatedAt Timestamp

	mu         sync.RWMutex
	updatedAt  Timestamp
	transcript []Message
	topic      *TopicID

	// inFlight is the "send disabled" flag held for the duration of a turn.
	inFlight atomic.Bool
	now      func() time.Time
}

// NewSession creates a session whose transcript holds only the welcome message.
func NewSession(id SessionID) *Session {
	s := &Session{
		ID:  id,
		now: time.Now,
	}
	s.CreatedAt = s.now()
	s.updatedAt = s.CreatedAt
	s.transcript = seedTranscript()
	return s
}

func seedTranscript() []Message {
	return []Message{{Role: RoleAssistant, Content: WelcomeMessage}}
}

// SelectTopic overwrites the selected topic. The id is not validated here;
// unknown ids simply fail to resolve when the context is built.
func (s *Session) SelectTopic(id TopicID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = &id
	s.touch()
}

func (s *Session) ClearTopic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = nil
	s.touch()
}

// Topic reports the selected topic, if any.
func (s *Session) Topic() (TopicID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.topic == nil {
		return "", false
	}
	return *s.topic, true
}

// AppendUser appends a user entry. Blank text is rejected and leaves the transcript untouched.
func (s *Session) AppendUser(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	s.append(Message{Role: RoleUser, Content: text})
	return nil
}

func (s *Session) AppendAssistant(text string) {
	s.append(Message{Role: RoleAssistant, Content: text})
}

func (s *Session) append(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, m)
	s.touch()
}

// Reset restores the transcript to exactly the seed welcome message.
// The selected topic is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = seedTranscript()
	s.touch()
}

// Transcript returns a copy of the transcript in append order.
func (s *Session) Transcript() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// UpdatedAt is the time of the last mutation.
func (s *Session) UpdatedAt() Timestamp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// History returns the exchanged messages, i.e. the transcript without the
// seeded welcome message. This is what the model sees as conversation history.
func (s *Session) History() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.transcript) <= 1 {
		return nil
	}
	out := make([]Message, len(s.transcript)-1)
	copy(out, s.transcript[1:])
	return out
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcript)
}

// BeginTurn marks a turn as in flight. It returns false if one already is.
func (s *Session) BeginTurn() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

func (s *Session) EndTurn() {
	s.inFlight.Store(false)
}

// touch must be called with mu held.
func (s *Session) touch() {
	s.updatedAt = s.now()
}
