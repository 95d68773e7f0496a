package providers

import (
	"context"
	"encoding/json"
	"time"
)

// LLMClient is the primary interface for chat/completion requests.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// ChatWithTools sends a chat request with tool/function definitions.
	ChatWithTools(ctx context.Context, req *ChatRequest, tools []Tool) (*ChatResult, error)

	// ChatStream sends a chat request and returns a stream of incremental
	// deltas. The stream must be drained (Recv until io.EOF) or closed.
	ChatStream(ctx context.Context, req *ChatRequest, tools []Tool) (Stream, error)

	// Name returns the client identifier (e.g., "openai").
	Name() string
}

// Stream delivers a streamed completion one delta at a time.
// Recv returns io.EOF once the provider signals completion.
type Stream interface {
	Recv() (*StreamDelta, error)
	Close() error
}

// Message represents one turn in a conversation.
type Message struct {
	Role       string     `json:"role"` // "system", "user", "assistant", "tool"
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool response messages
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For assistant messages requesting tools
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	// Response content
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Tool defines a function/tool that the LLM can call.
type Tool struct {
	Type     string       `json:"type"` // "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a callable function.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"` // JSON Schema
}

// ToolCall represents a tool invocation from the LLM.
type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // "function"
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"` // JSON string
	} `json:"function"`
}

// NewToolCall builds a ToolCall from its parts. The anonymous Function
// struct makes literal construction awkward; this keeps call sites tidy.
func NewToolCall(id, name, arguments string) ToolCall {
	tc := ToolCall{ID: id, Type: "function"}
	tc.Function.Name = name
	tc.Function.Arguments = arguments
	return tc
}

// ToolCallDelta is one streamed fragment of an in-progress tool call.
// Index identifies the slot the fragment belongs to; ID and Name may be
// empty on continuation fragments; Arguments is appended, never replaced.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// StreamDelta is one incremental fragment of a streamed chat response.
// Content and ToolCalls may both be empty (e.g. role-only first chunk).
type StreamDelta struct {
	Content      string
	ToolCalls    []ToolCallDelta
	FinishReason string
}
