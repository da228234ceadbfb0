// Package widget holds the chat window's state and its request/response cycle,
// independent of how messages are drawn.
package widget

import (
	"sync"

	"github.com/google/uuid"

	"chatrelay/internal/models"
)

// Session is the in-memory transcript for one chat window. It is append-only
// and starts with the system instruction.
type Session struct {
	ID uuid.UUID

	mu       sync.RWMutex
	messages []models.ChatMessage
}

func NewSession(systemPrompt string) *Session {
	return &Session{
		ID: uuid.New(),
		messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: systemPrompt},
		},
	}
}

func (s *Session) Append(msg models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the transcript in chronological order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
