package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ChatStream sends a chat request with stream=true and returns the live
// stream. Callers must drain the stream with Recv until io.EOF or call
// Close to release the connection.
func (c *OpenAIClient) ChatStream(ctx context.Context, req *ChatRequest, tools []Tool) (Stream, error) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	body := c.buildRequest(req, tools, true)

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, &ModelCallError{Provider: OpenAIName, Kind: "marshal_error", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &ModelCallError{Provider: OpenAIName, Kind: "request_error", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, &ModelCallError{Provider: OpenAIName, Kind: "http_error", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &ModelCallError{
			Provider: OpenAIName,
			Kind:     "http_error",
			Err:      fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody)),
		}
	}

	return &ChatStream{
		RequestID: requestID,
		body:      resp.Body,
		scanner:   bufio.NewScanner(resp.Body),
	}, nil
}

var _ Stream = (*ChatStream)(nil)

// ChatStream reads server-sent events off a streamed completion response.
type ChatStream struct {
	RequestID string

	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// Recv returns the next delta from the stream. It returns io.EOF when the
// provider signals completion ([DONE] sentinel or connection close).
// Chunks carrying neither content nor tool-call fragments (e.g. the
// role-announcement chunk) are skipped.
func (s *ChatStream) Recv() (*StreamDelta, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue // SSE keep-alive / comment
		}

		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue // ignore event:/id: fields
		}
		data = strings.TrimSpace(data)

		if data == "[DONE]" {
			s.close()
			return nil, io.EOF
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.close()
			return nil, &ModelCallError{Provider: OpenAIName, Kind: "stream_error", Err: fmt.Errorf("malformed chunk: %w", err)}
		}
		if chunk.Error != nil {
			s.close()
			return nil, &ModelCallError{Provider: OpenAIName, Kind: "stream_error", Err: fmt.Errorf("API error: %s", chunk.Error.Message)}
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		delta := &StreamDelta{
			Content:      choice.Delta.Content,
			FinishReason: choice.FinishReason,
		}
		for _, tc := range choice.Delta.ToolCalls {
			delta.ToolCalls = append(delta.ToolCalls, ToolCallDelta{
				Index:     tc.Index,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}

		if delta.Content == "" && len(delta.ToolCalls) == 0 && delta.FinishReason == "" {
			continue
		}
		return delta, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.close()
		return nil, &ModelCallError{Provider: OpenAIName, Kind: "stream_error", Err: err}
	}

	// Stream closed without [DONE]; treat as normal end.
	s.close()
	return nil, io.EOF
}

// Close releases the underlying connection. Safe to call more than once.
func (s *ChatStream) Close() error {
	return s.close()
}

func (s *ChatStream) close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.body.Close()
}
