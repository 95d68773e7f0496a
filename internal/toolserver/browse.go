package toolserver

import (
	"context"
	"fmt"
)

// Browser exposes the tool server's prompt templates and resources. Each
// operation runs on its own scoped session, like tool invocation.
type Browser struct {
	dialer Dialer
}

// NewBrowser creates a Browser backed by the given dialer.
// Panics if dialer is nil.
func NewBrowser(dialer Dialer) *Browser {
	if dialer == nil {
		panic("toolserver: dialer must not be nil")
	}
	return &Browser{dialer: dialer}
}

// ListPrompts returns the server's prompt templates.
func (b *Browser) ListPrompts(ctx context.Context) ([]PromptInfo, error) {
	session, err := b.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dial tool server: %w", err)
	}
	defer session.Close()

	return session.ListPrompts(ctx)
}

// GetPrompt renders a prompt template to text; message contents are joined
// with newlines.
func (b *Browser) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	session, err := b.dialer.Dial(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to dial tool server: %w", err)
	}
	defer session.Close()

	return session.GetPrompt(ctx, name, args)
}

// ListResources returns the server's resources.
func (b *Browser) ListResources(ctx context.Context) ([]ResourceInfo, error) {
	session, err := b.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dial tool server: %w", err)
	}
	defer session.Close()

	return session.ListResources(ctx)
}

// ReadResource reads one resource as text.
func (b *Browser) ReadResource(ctx context.Context, uri string) (string, error) {
	session, err := b.dialer.Dial(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to dial tool server: %w", err)
	}
	defer session.Close()

	return session.ReadResource(ctx, uri)
}
