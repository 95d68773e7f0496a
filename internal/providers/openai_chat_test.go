package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestOpenAIClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Verify request
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != "POST" {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}

			resp := map[string]any{
				"id":    "test-id",
				"model": "gpt-4o-mini",
				"choices": []map[string]any{
					{
						"message": map[string]any{
							"role":    "assistant",
							"content": "Hello! How can I help you?",
						},
						"finish_reason": "stop",
					},
				},
				"usage": map[string]int{
					"prompt_tokens":     10,
					"completion_tokens": 8,
					"total_tokens":      18,
				},
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{
				{Role: "user", Content: "Hello"},
			},
		})

		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Error("expected Success = true")
		}
		if result.Content != "Hello! How can I help you?" {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 18 {
			t.Errorf("TotalTokens = %d, want 18", result.TotalTokens)
		}
	})

	t.Run("tool calls extracted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req chatCompletionRequest
			json.NewDecoder(r.Body).Decode(&req)

			if len(req.Tools) != 1 || req.Tools[0].Function.Name != "query_families" {
				t.Errorf("tools not forwarded: %+v", req.Tools)
			}
			if req.ToolChoice != "auto" {
				t.Errorf("ToolChoice = %q, want auto", req.ToolChoice)
			}

			resp := map[string]any{
				"model": "gpt-4o-mini",
				"choices": []map[string]any{
					{
						"message": map[string]any{
							"role":    "assistant",
							"content": nil,
							"tool_calls": []map[string]any{
								{
									"id":   "call_1",
									"type": "function",
									"function": map[string]any{
										"name":      "query_families",
										"arguments": `{"family":"Bacillaceae"}`,
									},
								},
							},
						},
						"finish_reason": "tool_calls",
					},
				},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})

		tools := []Tool{{
			Type:     "function",
			Function: ToolFunction{Name: "query_families", Parameters: json.RawMessage(`{"type":"object"}`)},
		}}
		result, err := client.ChatWithTools(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "List species in family Bacillaceae"}},
		}, tools)

		if err != nil {
			t.Fatalf("ChatWithTools() error = %v", err)
		}
		if result.Content != "" {
			t.Errorf("Content = %q, want empty", result.Content)
		}
		if len(result.ToolCalls) != 1 {
			t.Fatalf("ToolCalls = %d, want 1", len(result.ToolCalls))
		}
		tc := result.ToolCalls[0]
		if tc.ID != "call_1" || tc.Function.Name != "query_families" {
			t.Errorf("unexpected tool call: %+v", tc)
		}
		if tc.Function.Arguments != `{"family":"Bacillaceae"}` {
			t.Errorf("Arguments = %q", tc.Function.Arguments)
		}
	})

	t.Run("assistant tool-call turn sends null content", func(t *testing.T) {
		var raw map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&raw)
			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": "done"}},
				},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})

		_, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{
				{Role: "user", Content: "hi"},
				{Role: "assistant", ToolCalls: []ToolCall{NewToolCall("call_1", "f", "{}")}},
				{Role: "tool", ToolCallID: "call_1", Content: "result"},
			},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}

		msgs := raw["messages"].([]any)
		assistant := msgs[1].(map[string]any)
		if assistant["content"] != nil {
			t.Errorf("assistant content = %v, want null", assistant["content"])
		}
		if _, ok := assistant["tool_calls"]; !ok {
			t.Error("assistant tool_calls missing")
		}
		toolMsg := msgs[2].(map[string]any)
		if toolMsg["tool_call_id"] != "call_1" {
			t.Errorf("tool_call_id = %v", toolMsg["tool_call_id"])
		}
	})

	t.Run("retries on server error", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				http.Error(w, "upstream hiccup", http.StatusInternalServerError)
				return
			}
			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": "recovered"}},
				},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{
			APIKey:     "test-key",
			BaseURL:    server.URL,
			RetryDelay: time.Millisecond,
		})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "recovered" {
			t.Errorf("Content = %q", result.Content)
		}
		if calls.Load() != 2 {
			t.Errorf("calls = %d, want 2", calls.Load())
		}
	})

	t.Run("non-retryable error fails fast", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "bad request", http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{
			APIKey:     "test-key",
			BaseURL:    server.URL,
			RetryDelay: time.Millisecond,
		})

		_, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		if err == nil {
			t.Fatal("expected error")
		}
		var mce *ModelCallError
		if !errors.As(err, &mce) {
			t.Errorf("error type = %T, want *ModelCallError", err)
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL, RetryDelay: time.Millisecond})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if result == nil || result.ErrorType != "empty_response" {
			t.Errorf("result = %+v", result)
		}
	})
}
