package providers

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing. Each call consumes the next
// scripted turn; Err turns fail the call, otherwise Result (blocking) or
// Deltas (streaming) are returned.
type MockClient struct {
	// Configurable behavior
	Latency time.Duration
	Turns   []MockTurn

	mu   sync.Mutex
	next int

	// Captured requests, in call order
	Requests []*ChatRequest
}

// MockTurn scripts one model response.
type MockTurn struct {
	Result *ChatResult
	Deltas []StreamDelta
	Err    error
}

// NewMockClient creates a mock client that answers every call with the
// given turns in order.
func NewMockClient(turns ...MockTurn) *MockClient {
	return &MockClient{Turns: turns}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Calls returns how many requests the mock has served.
func (c *MockClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

func (c *MockClient) take(req *ChatRequest) (MockTurn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Snapshot the request so later mutation by the caller is invisible.
	snapshot := *req
	snapshot.Messages = append([]Message(nil), req.Messages...)
	c.Requests = append(c.Requests, &snapshot)

	if c.next >= len(c.Turns) {
		return MockTurn{}, fmt.Errorf("mock: unexpected call %d (only %d turns scripted)", c.next+1, len(c.Turns))
	}
	turn := c.Turns[c.next]
	c.next++
	return turn, nil
}

// Chat returns the next scripted turn as a complete result.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	return c.ChatWithTools(ctx, req, nil)
}

// ChatWithTools returns the next scripted turn as a complete result.
func (c *MockClient) ChatWithTools(ctx context.Context, req *ChatRequest, tools []Tool) (*ChatResult, error) {
	if c.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Latency):
		}
	}

	turn, err := c.take(req)
	if err != nil {
		return nil, err
	}
	if turn.Err != nil {
		return nil, turn.Err
	}
	if turn.Result != nil {
		return turn.Result, nil
	}

	// A stream-scripted turn can still serve a blocking call: collapse it.
	result := &ChatResult{Success: true, Provider: MockClientName}
	acc := make(map[int]*ToolCallDelta)
	var order []int
	for _, d := range turn.Deltas {
		result.Content += d.Content
		for _, tc := range d.ToolCalls {
			entry, ok := acc[tc.Index]
			if !ok {
				entry = &ToolCallDelta{Index: tc.Index}
				acc[tc.Index] = entry
				order = append(order, tc.Index)
			}
			if tc.ID != "" {
				entry.ID = tc.ID
			}
			if tc.Name != "" {
				entry.Name = tc.Name
			}
			entry.Arguments += tc.Arguments
		}
	}
	for _, idx := range order {
		e := acc[idx]
		result.ToolCalls = append(result.ToolCalls, NewToolCall(e.ID, e.Name, e.Arguments))
	}
	return result, nil
}

// ChatStream returns the next scripted turn as a delta stream.
func (c *MockClient) ChatStream(ctx context.Context, req *ChatRequest, tools []Tool) (Stream, error) {
	turn, err := c.take(req)
	if err != nil {
		return nil, err
	}
	if turn.Err != nil {
		return nil, turn.Err
	}

	deltas := turn.Deltas
	if deltas == nil && turn.Result != nil {
		// Blocking-scripted turn served to a streaming call: one delta.
		d := StreamDelta{Content: turn.Result.Content}
		for i, tc := range turn.Result.ToolCalls {
			d.ToolCalls = append(d.ToolCalls, ToolCallDelta{
				Index:     i,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		deltas = []StreamDelta{d}
	}

	return &sliceStream{deltas: deltas}, nil
}

var _ LLMClient = (*MockClient)(nil)

// sliceStream replays a fixed set of deltas.
type sliceStream struct {
	deltas []StreamDelta
	pos    int
}

func (s *sliceStream) Recv() (*StreamDelta, error) {
	if s.pos >= len(s.deltas) {
		return nil, io.EOF
	}
	d := s.deltas[s.pos]
	s.pos++
	return &d, nil
}

func (s *sliceStream) Close() error {
	s.pos = len(s.deltas)
	return nil
}
