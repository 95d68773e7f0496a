package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// doRequest makes a non-streaming HTTP request with retry logic.
func (c *OpenAIClient) doRequest(ctx context.Context, path string, body *chatCompletionRequest) (*chatCompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// Check context before each attempt
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.post(ctx, path, body)
		if err != nil {
			// Network error - retry
			lastErr = fmt.Errorf("request failed: %w", err)
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		if c.shouldRetry(resp.StatusCode) {
			lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		// Non-retryable error
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}

		var out chatCompletionResponse
		if err := json.Unmarshal(respBody, &out); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		// Some gateways return errors inside a 200 body.
		if out.Error != nil {
			return nil, fmt.Errorf("API error: %s", out.Error.Message)
		}

		return &out, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// post issues one POST to the API with auth headers attached.
func (c *OpenAIClient) post(ctx context.Context, path string, body *chatCompletionRequest) (*http.Response, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	return c.client.Do(req)
}

// shouldRetry returns true for status codes that should be retried.
func (c *OpenAIClient) shouldRetry(statusCode int) bool {
	switch statusCode {
	case 429: // Rate Limited
		return true
	case 520, 521, 522, 523, 524: // Cloudflare errors
		return true
	default:
		// Retry on server errors (500+)
		return statusCode >= 500
	}
}

// sleepWithJitter sleeps for a duration with jitter, respecting context cancellation.
func (c *OpenAIClient) sleepWithJitter(ctx context.Context, attempt int) {
	// Base delay with exponential backoff: 1s, 2s, 4s, ...
	baseDelay := c.retryDelay * time.Duration(1<<attempt)
	if baseDelay > 10*time.Second {
		baseDelay = 10 * time.Second
	}

	// Add jitter: -20% to +30%
	jitter := time.Duration(float64(baseDelay) * (0.8 + 0.5*float64(time.Now().UnixNano()%1000)/1000))

	select {
	case <-ctx.Done():
	case <-time.After(jitter):
	}
}
