package domain

import "time"

type SessionID string
type TopicID string

// Role is the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a free-form role name onto the closed Role set.
// "user" stays user; every other value is treated as the assistant.
func ParseRole(s string) Role {
	if s == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

type Timestamp = time.Time
