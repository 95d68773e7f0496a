// Package toolserver is the MCP boundary: it discovers tool definitions from
// a remote MCP server, executes tool calls against it, and exposes the
// server's prompt templates and resources. Every operation runs on an
// explicitly scoped session; there is no shared long-lived connection.
package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jackzampolin/parley/version"
)

// ToolDefinition is a tool as advertised by the server.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage // JSON Schema; may be empty
}

// PromptInfo describes a server-side prompt template.
type PromptInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Arguments   []string `json:"arguments,omitempty" yaml:"arguments,omitempty"` // argument names, required first
}

// ResourceInfo describes a server-side resource.
type ResourceInfo struct {
	URI         string `json:"uri" yaml:"uri"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	MIMEType    string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
}

// ContentPart is one part of a tool result. Text is the textual
// representation when the part has one; Raw keeps the original part for a
// best-effort string fallback.
type ContentPart struct {
	Text string
	Raw  any
}

// ToolResult is the outcome of one tool call.
type ToolResult struct {
	Parts   []ContentPart
	IsError bool
}

// Session is one scoped connection to the tool server. Callers own the
// lifetime: Dial, use, Close.
type Session interface {
	ListTools(ctx context.Context) ([]ToolDefinition, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error)
	ListPrompts(ctx context.Context) ([]PromptInfo, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) (string, error)
	ListResources(ctx context.Context) ([]ResourceInfo, error)
	ReadResource(ctx context.Context, uri string) (string, error)
	Close() error
}

// Dialer opens fresh sessions to the tool server.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)

	// Addr returns the server address, for error reporting.
	Addr() string
}

// HTTPDialer dials an MCP server over streamable HTTP, optionally attaching
// a bearer token.
type HTTPDialer struct {
	url   string
	token string
}

// NewHTTPDialer creates a dialer for the given MCP endpoint. token may be
// empty for unauthenticated servers.
func NewHTTPDialer(url, token string) *HTTPDialer {
	return &HTTPDialer{url: url, token: token}
}

// Addr returns the server URL.
func (d *HTTPDialer) Addr() string {
	return d.url
}

// Dial opens a session and runs the MCP initialize handshake.
func (d *HTTPDialer) Dial(ctx context.Context) (Session, error) {
	var opts []transport.StreamableHTTPCOption
	if d.token != "" {
		opts = append(opts, transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + d.token,
		}))
	}

	c, err := mcpclient.NewStreamableHttpClient(d.url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}

	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to start MCP transport: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "parley",
		Version: version.GitRelease,
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("MCP initialize failed: %w", err)
	}

	return &mcpSession{client: c}, nil
}

var _ Dialer = (*HTTPDialer)(nil)

// mcpSession adapts an mcp-go client to the Session interface.
type mcpSession struct {
	client *mcpclient.Client
}

func (s *mcpSession) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	res, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}

	defs := make([]ToolDefinition, 0, len(res.Tools))
	for _, t := range res.Tools {
		def := ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
		}
		if raw, err := json.Marshal(t.InputSchema); err == nil {
			def.InputSchema = raw
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (s *mcpSession) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &ToolResult{IsError: res.IsError}
	for _, item := range res.Content {
		if tc, ok := mcp.AsTextContent(item); ok {
			out.Parts = append(out.Parts, ContentPart{Text: tc.Text, Raw: item})
			continue
		}
		out.Parts = append(out.Parts, ContentPart{Raw: item})
	}
	return out, nil
}

func (s *mcpSession) ListPrompts(ctx context.Context) ([]PromptInfo, error) {
	res, err := s.client.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, err
	}

	prompts := make([]PromptInfo, 0, len(res.Prompts))
	for _, p := range res.Prompts {
		info := PromptInfo{Name: p.Name, Description: p.Description}
		for _, arg := range p.Arguments {
			info.Arguments = append(info.Arguments, arg.Name)
		}
		prompts = append(prompts, info)
	}
	return prompts, nil
}

func (s *mcpSession) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	req := mcp.GetPromptRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := s.client.GetPrompt(ctx, req)
	if err != nil {
		return "", err
	}

	return flattenPromptMessages(res.Messages), nil
}

func (s *mcpSession) ListResources(ctx context.Context) ([]ResourceInfo, error) {
	res, err := s.client.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, err
	}

	resources := make([]ResourceInfo, 0, len(res.Resources))
	for _, r := range res.Resources {
		resources = append(resources, ResourceInfo{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		})
	}
	return resources, nil
}

func (s *mcpSession) ReadResource(ctx context.Context, uri string) (string, error) {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri

	res, err := s.client.ReadResource(ctx, req)
	if err != nil {
		return "", err
	}
	if len(res.Contents) == 0 {
		return "", nil
	}

	switch c := res.Contents[0].(type) {
	case mcp.TextResourceContents:
		return c.Text, nil
	case *mcp.TextResourceContents:
		return c.Text, nil
	default:
		return fmt.Sprintf("%v", c), nil
	}
}

func (s *mcpSession) Close() error {
	return s.client.Close()
}

// flattenPromptMessages joins the textual content of prompt messages with
// newlines, falling back to a string form for non-text parts.
func flattenPromptMessages(messages []mcp.PromptMessage) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if tc, ok := mcp.AsTextContent(m.Content); ok {
			parts = append(parts, tc.Text)
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", m.Content))
	}
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p
	}
	return out
}
