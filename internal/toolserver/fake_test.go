package toolserver

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakeDialer hands out fakeSessions and counts dials. failDials makes the
// first N dials fail.
type fakeDialer struct {
	session   *fakeSession
	dials     atomic.Int32
	failDials int32
}

func (d *fakeDialer) Addr() string { return "fake://tool-server" }

func (d *fakeDialer) Dial(ctx context.Context) (Session, error) {
	n := d.dials.Add(1)
	if n <= d.failDials {
		return nil, errors.New("connection refused")
	}
	return d.session, nil
}

type fakeSession struct {
	tools     []ToolDefinition
	listErr   error
	result    *ToolResult
	callErr   error
	prompts   []PromptInfo
	promptTxt string
	resources []ResourceInfo
	resource  string

	calledTool   string
	calledArgs   map[string]any
	callDeadline bool
	closed       atomic.Int32
}

func (s *fakeSession) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tools, nil
}

func (s *fakeSession) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	s.calledTool = name
	s.calledArgs = args
	_, s.callDeadline = ctx.Deadline()
	if s.callErr != nil {
		return nil, s.callErr
	}
	return s.result, nil
}

func (s *fakeSession) ListPrompts(ctx context.Context) ([]PromptInfo, error) {
	return s.prompts, nil
}

func (s *fakeSession) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	return s.promptTxt, nil
}

func (s *fakeSession) ListResources(ctx context.Context) ([]ResourceInfo, error) {
	return s.resources, nil
}

func (s *fakeSession) ReadResource(ctx context.Context, uri string) (string, error) {
	return s.resource, nil
}

func (s *fakeSession) Close() error {
	s.closed.Add(1)
	return nil
}
