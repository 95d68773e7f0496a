// Package engine drives the tool-calling conversation loop: send the
// message history to the model, execute any tools it requests, feed the
// results back, and repeat until the model answers in plain text.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackzampolin/parley/internal/providers"
)

// ErrRoundLimitExceeded is returned when the model keeps requesting tools
// past the configured round ceiling.
var ErrRoundLimitExceeded = errors.New("conversation round limit exceeded")

// ModelClient is the model-provider boundary the engine consumes.
type ModelClient interface {
	ChatWithTools(ctx context.Context, req *providers.ChatRequest, tools []providers.Tool) (*providers.ChatResult, error)
	ChatStream(ctx context.Context, req *providers.ChatRequest, tools []providers.Tool) (providers.Stream, error)
}

// ToolRunner executes one named tool call and returns its result as text.
// Failures are expected to arrive as textual results, never as panics.
type ToolRunner interface {
	Invoke(ctx context.Context, name string, args map[string]any) string
}

// ToolSource supplies the current tool catalog in function-schema form.
type ToolSource interface {
	Tools() []providers.Tool
	Names() []string
}

// Config configures an Engine.
type Config struct {
	// Model answers chat requests (required).
	Model ModelClient

	// Runner executes tool calls (required).
	Runner ToolRunner

	// Source supplies tool definitions (required).
	Source ToolSource

	// SystemPrompt, when set, opens the conversation (and re-opens it after
	// every reset).
	SystemPrompt string

	// MaxRounds limits model-call/tool-execution cycles per Send (default: 15).
	MaxRounds int

	// Logger for structured logging (default: slog.Default()).
	Logger *slog.Logger
}

// Engine owns one conversation and its message history.
type Engine struct {
	model        ModelClient
	runner       ToolRunner
	source       ToolSource
	systemPrompt string
	maxRounds    int
	logger       *slog.Logger

	history *History
}

// New creates an Engine. Panics if Model, Runner, or Source is nil.
func New(cfg Config) *Engine {
	if cfg.Model == nil {
		panic("engine: model must not be nil")
	}
	if cfg.Runner == nil {
		panic("engine: runner must not be nil")
	}
	if cfg.Source == nil {
		panic("engine: source must not be nil")
	}

	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 15
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		model:        cfg.Model,
		runner:       cfg.Runner,
		source:       cfg.Source,
		systemPrompt: cfg.SystemPrompt,
		maxRounds:    maxRounds,
		logger:       logger,
		history:      NewHistory(),
	}
	e.seedSystemPrompt()
	return e
}

// Send submits a user message and blocks until the model produces a final
// text answer, executing any requested tools along the way. A model-call
// failure is fatal to this invocation; the user turn stays appended so the
// caller can retry.
func (e *Engine) Send(ctx context.Context, userText string) (string, error) {
	e.history.Append(providers.Message{Role: "user", Content: userText})

	for round := 1; round <= e.maxRounds; round++ {
		req := &providers.ChatRequest{Messages: e.history.Messages()}

		result, err := e.model.ChatWithTools(ctx, req, e.source.Tools())
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}

		if len(result.ToolCalls) > 0 {
			e.logger.Debug("model requested tools", "round", round, "count", len(result.ToolCalls))
			e.history.Append(providers.Message{
				Role:      "assistant",
				Content:   result.Content,
				ToolCalls: result.ToolCalls,
			})
			e.executeToolCalls(ctx, result.ToolCalls, nil)
			continue
		}

		e.history.Append(providers.Message{Role: "assistant", Content: result.Content})
		return result.Content, nil
	}

	return "", fmt.Errorf("%w after %d rounds", ErrRoundLimitExceeded, e.maxRounds)
}

// StreamEvent is one element of the sequence SendStream yields: a text
// chunk, or a terminal error.
type StreamEvent struct {
	Text string
	Err  error
}

// SendStream submits a user message and returns a finite channel of text
// chunks. Model content is yielded as it arrives; tool activity appears as
// informational markers ("Calling tool: ...", "Result: ..."). The channel
// closes after the final assistant message; a model-call failure arrives as
// the last event with Err set. The sequence is not restartable — calling
// SendStream again starts a new round on the same history.
func (e *Engine) SendStream(ctx context.Context, userText string) <-chan StreamEvent {
	ch := make(chan StreamEvent)

	go func() {
		defer close(ch)

		e.history.Append(providers.Message{Role: "user", Content: userText})

		for round := 1; round <= e.maxRounds; round++ {
			done, err := e.streamRound(ctx, ch, round)
			if err != nil {
				emit(ctx, ch, StreamEvent{Err: err})
				return
			}
			if done {
				return
			}
		}

		emit(ctx, ch, StreamEvent{Err: fmt.Errorf("%w after %d rounds", ErrRoundLimitExceeded, e.maxRounds)})
	}()

	return ch
}

// streamRound runs one model stream plus any tool executions it requests.
// It reports done=true when the round ended with a final text answer.
func (e *Engine) streamRound(ctx context.Context, ch chan<- StreamEvent, round int) (done bool, err error) {
	req := &providers.ChatRequest{Messages: e.history.Messages()}

	stream, err := e.model.ChatStream(ctx, req, e.source.Tools())
	if err != nil {
		return false, fmt.Errorf("model call failed: %w", err)
	}
	defer stream.Close()

	var content strings.Builder
	acc := NewDeltaAccumulator()

	// Drain the round's stream completely: content fragments go to the
	// caller immediately, tool-call fragments to the accumulator.
	for {
		delta, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return false, fmt.Errorf("model stream failed: %w", recvErr)
		}

		if delta.Content != "" {
			content.WriteString(delta.Content)
			if !emit(ctx, ch, StreamEvent{Text: delta.Content}) {
				return true, nil
			}
		}
		for _, tc := range delta.ToolCalls {
			acc.Add(tc)
		}
	}

	calls := acc.Finalize()
	if len(calls) == 0 {
		e.history.Append(providers.Message{Role: "assistant", Content: content.String()})
		return true, nil
	}

	e.logger.Debug("model requested tools", "round", round, "count", len(calls))
	e.history.Append(providers.Message{
		Role:      "assistant",
		Content:   content.String(),
		ToolCalls: calls,
	})
	e.executeToolCalls(ctx, calls, ch)
	return false, nil
}

// executeToolCalls runs the round's tool calls strictly sequentially in the
// order the model requested them, appending one tool message per call. When
// ch is non-nil, progress markers are yielded around each invocation.
func (e *Engine) executeToolCalls(ctx context.Context, calls []providers.ToolCall, ch chan<- StreamEvent) {
	for _, tc := range calls {
		if ch != nil {
			if !emit(ctx, ch, StreamEvent{Text: fmt.Sprintf("\n\nCalling tool: %s\n", tc.Function.Name)}) {
				return
			}
		}

		result := e.runTool(ctx, tc)

		if ch != nil {
			if !emit(ctx, ch, StreamEvent{Text: fmt.Sprintf("Result: %s\n\n", result)}) {
				return
			}
		}

		e.history.Append(providers.Message{
			Role:       "tool",
			ToolCallID: tc.ID,
			Content:    result,
		})
	}
}

// runTool parses a call's accumulated arguments and executes it. Malformed
// argument JSON is reported back to the model as an error result, same as
// an execution failure.
func (e *Engine) runTool(ctx context.Context, tc providers.ToolCall) string {
	name := tc.Function.Name

	args := make(map[string]any)
	if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			e.logger.Warn("tool arguments are not valid JSON", "tool", name, "error", err)
			return fmt.Sprintf("Error calling tool %s: invalid JSON arguments: %v", name, err)
		}
	}

	e.logger.Info("executing tool", "tool", name)
	return e.runner.Invoke(ctx, name, args)
}

// ResetHistory clears the conversation and re-seeds the system prompt.
func (e *Engine) ResetHistory() {
	e.history.Reset()
	e.seedSystemPrompt()
}

// History returns a copy of the conversation so far.
func (e *Engine) History() []providers.Message {
	return e.history.Messages()
}

// AvailableTools returns the names of the tools currently known.
func (e *Engine) AvailableTools() []string {
	return e.source.Names()
}

func (e *Engine) seedSystemPrompt() {
	if e.systemPrompt != "" {
		e.history.Append(providers.Message{Role: "system", Content: e.systemPrompt})
	}
}

// emit sends one event unless the context is done. It reports false when
// the caller has gone away and streaming should stop.
func emit(ctx context.Context, ch chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
