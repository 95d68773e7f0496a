package toolserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/parley/internal/providers"
)

// emptyObjectSchema is used for tools that declare no parameters; the
// chat-completions API requires a JSON-schema object either way.
var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// Catalog holds the set of tool definitions discovered from the tool server
// and their translation to the chat-completions function schema. Refresh
// replaces the contents atomically; concurrent readers see either the old or
// the new complete set.
type Catalog struct {
	dialer  Dialer
	logger  *slog.Logger
	retries uint

	mu      sync.RWMutex
	defs    []ToolDefinition
	tools   []providers.Tool
	schemas map[string]*jsonschema.Schema
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogLogger sets a structured logger. Nil is ignored.
func WithCatalogLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRefreshRetries sets how many attempts Refresh makes before giving up.
func WithRefreshRetries(n uint) CatalogOption {
	return func(c *Catalog) {
		if n > 0 {
			c.retries = n
		}
	}
}

// NewCatalog creates an empty catalog backed by the given dialer.
// Panics if dialer is nil.
func NewCatalog(dialer Dialer, opts ...CatalogOption) *Catalog {
	if dialer == nil {
		panic("toolserver: dialer must not be nil")
	}
	c := &Catalog{
		dialer:  dialer,
		logger:  slog.Default(),
		retries: 3,
		schemas: make(map[string]*jsonschema.Schema),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh fetches the current tool list and swaps the catalog contents.
// On failure it returns a *DiscoveryError and the previous contents stay in
// place. Transient failures are retried before giving up.
func (c *Catalog) Refresh(ctx context.Context) error {
	var defs []ToolDefinition

	err := retry.Do(
		func() error {
			session, err := c.dialer.Dial(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			defs, err = session.ListTools(ctx)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return &DiscoveryError{Server: c.dialer.Addr(), Err: err}
	}

	tools := make([]providers.Tool, 0, len(defs))
	schemas := make(map[string]*jsonschema.Schema, len(defs))
	for _, def := range defs {
		raw := def.InputSchema
		if len(raw) == 0 || string(raw) == "null" {
			raw = emptyObjectSchema
		}

		tools = append(tools, providers.Tool{
			Type: "function",
			Function: providers.ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  raw,
			},
		})

		// Compiled schemas gate tool arguments before invocation. A schema
		// that fails to compile disables validation for that tool only.
		schema, err := jsonschema.CompileString(def.Name+".json", string(raw))
		if err != nil {
			c.logger.Warn("tool schema did not compile, skipping validation",
				"tool", def.Name,
				"error", err,
			)
			continue
		}
		schemas[def.Name] = schema
	}

	c.mu.Lock()
	c.defs = defs
	c.tools = tools
	c.schemas = schemas
	c.mu.Unlock()

	c.logger.Info("tool catalog refreshed", "server", c.dialer.Addr(), "tools", len(defs))
	return nil
}

// Tools returns the catalog translated to the function-call schema the
// model API expects.
func (c *Catalog) Tools() []providers.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]providers.Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// Definitions returns the raw tool definitions.
func (c *Catalog) Definitions() []ToolDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ToolDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Names returns the sorted set of currently known tool names.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.defs))
	for _, def := range c.defs {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}

// Schema returns the compiled argument schema for a tool, if one exists.
func (c *Catalog) Schema(name string) (*jsonschema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[name]
	return s, ok
}
