package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	return c.doChat(ctx, req, nil)
}

// ChatWithTools sends a chat request with tool definitions.
func (c *OpenAIClient) ChatWithTools(ctx context.Context, req *ChatRequest, tools []Tool) (*ChatResult, error) {
	return c.doChat(ctx, req, tools)
}

func (c *OpenAIClient) doChat(ctx context.Context, req *ChatRequest, tools []Tool) (*ChatResult, error) {
	start := time.Now()

	// Generate request ID if not provided
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	body := c.buildRequest(req, tools, false)

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenAIName,
		Attempts:  1,
	}

	resp, httpErr := c.doRequest(ctx, "/chat/completions", body)
	if httpErr != nil {
		result.Success = false
		result.ErrorType = "http_error"
		result.ErrorMessage = httpErr.Error()
		result.ExecutionTime = time.Since(start)
		return result, &ModelCallError{Provider: OpenAIName, Kind: "http_error", Err: httpErr}
	}

	if len(resp.Choices) == 0 {
		result.Success = false
		result.ErrorType = "empty_response"
		result.ErrorMessage = "no choices in response"
		result.ExecutionTime = time.Since(start)
		return result, &ModelCallError{Provider: OpenAIName, Kind: "empty_response", Err: fmt.Errorf("no choices in response")}
	}

	choice := resp.Choices[0]

	result.Success = true
	if choice.Message.Content != nil {
		result.Content = *choice.Message.Content
	}
	result.ModelUsed = resp.Model
	result.PromptTokens = resp.Usage.PromptTokens
	result.CompletionTokens = resp.Usage.CompletionTokens
	result.TotalTokens = resp.Usage.TotalTokens
	result.ExecutionTime = time.Since(start)

	if len(choice.Message.ToolCalls) > 0 {
		result.ToolCalls = append(result.ToolCalls, choice.Message.ToolCalls...)
	}

	return result, nil
}

// buildRequest translates a ChatRequest into the wire format.
func (c *OpenAIClient) buildRequest(req *ChatRequest, tools []Tool, stream bool) *chatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	body := &chatCompletionRequest{
		Model:       model,
		Messages:    make([]completionMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}

	for _, m := range req.Messages {
		cm := completionMessage{Role: m.Role}

		// Assistant turns that only carry tool calls send null content;
		// everything else sends the text (possibly empty).
		if m.Content != "" || len(m.ToolCalls) == 0 {
			content := m.Content
			cm.Content = &content
		}

		// Include tool_calls for assistant messages (required by the API
		// so the following tool turns can reference their call IDs).
		if len(m.ToolCalls) > 0 {
			cm.ToolCalls = m.ToolCalls
		}

		// Include tool_call_id for tool response messages
		if m.ToolCallID != "" {
			cm.ToolCallID = m.ToolCallID
		}

		body.Messages = append(body.Messages, cm)
	}

	if len(tools) > 0 {
		body.Tools = tools
		body.ToolChoice = "auto"
	}

	return body
}
