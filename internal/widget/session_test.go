package widget

import (
	"testing"

	"chatrelay/internal/models"
)

func TestSession_StartsWithSystemPrompt(t *testing.T) {
	s := NewSession("only talk about skincare")

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleSystem || msgs[0].Content != "only talk about skincare" {
		t.Errorf("unexpected first message: %+v", msgs[0])
	}
}

func TestSession_MessagesReturnsCopy(t *testing.T) {
	s := NewSession("sys")
	s.Append(models.ChatMessage{Role: models.RoleUser, Content: "hi"})

	msgs := s.Messages()
	msgs[1].Content = "tampered"

	if got := s.Messages()[1].Content; got != "hi" {
		t.Errorf("session mutated through copy: %q", got)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 messages, got %d", s.Len())
	}
}
