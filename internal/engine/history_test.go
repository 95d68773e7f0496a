package engine

import (
	"testing"

	"github.com/jackzampolin/parley/internal/providers"
)

func TestHistory(t *testing.T) {
	h := NewHistory()

	h.Append(providers.Message{Role: "user", Content: "hello"})
	h.Append(providers.Message{Role: "assistant", Content: "hi"})

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	msgs := h.Messages()
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("unexpected order: %+v", msgs)
	}

	// Mutating the returned slice must not affect the log.
	msgs[0].Content = "tampered"
	if got := h.Messages()[0].Content; got != "hello" {
		t.Errorf("history mutated through copy: %q", got)
	}

	h.Reset()
	if h.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", h.Len())
	}
}
