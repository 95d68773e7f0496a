package engine

import (
	"sync"

	"github.com/jackzampolin/parley/internal/providers"
)

// History is the append-only message log for one conversation. It is owned
// by exactly one Engine and cleared only by an explicit Reset.
type History struct {
	mu       sync.Mutex
	messages []providers.Message
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds one message to the end of the log.
func (h *History) Append(msg providers.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

// Messages returns a copy of the log in order. Mutating the copy does not
// affect the history.
func (h *History) Messages() []providers.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]providers.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages in the log.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Reset clears the log.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
