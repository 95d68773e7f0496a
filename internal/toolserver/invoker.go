package toolserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Invoker executes single tool calls against the tool server. Each call
// opens a fresh session so one call's failure or hang cannot affect other
// calls or the discovery path.
//
// Invoke never returns an error: every failure is flattened into a textual
// result so the model sees it as tool output in the next round and can
// adapt instead of the whole exchange aborting.
type Invoker struct {
	dialer  Dialer
	catalog *Catalog // optional; enables argument validation
	timeout time.Duration
	logger  *slog.Logger
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithInvokerLogger sets a structured logger. Nil is ignored.
func WithInvokerLogger(l *slog.Logger) InvokerOption {
	return func(i *Invoker) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithArgumentValidation validates tool arguments against the catalog's
// compiled schemas before calling the server.
func WithArgumentValidation(c *Catalog) InvokerOption {
	return func(i *Invoker) {
		i.catalog = c
	}
}

// WithCallTimeout bounds each tool call (dial through result). Zero means
// no per-call deadline beyond the caller's context.
func WithCallTimeout(d time.Duration) InvokerOption {
	return func(i *Invoker) {
		i.timeout = d
	}
}

// NewInvoker creates an invoker backed by the given dialer.
// Panics if dialer is nil.
func NewInvoker(dialer Dialer, opts ...InvokerOption) *Invoker {
	if dialer == nil {
		panic("toolserver: dialer must not be nil")
	}
	i := &Invoker{
		dialer: dialer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invoke runs one named tool call and returns its result as text. On any
// failure (dial, invalid arguments, tool-side error) the returned text has
// the shape "Error calling tool <name>: <cause>".
func (i *Invoker) Invoke(ctx context.Context, name string, args map[string]any) string {
	start := time.Now()

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	if i.catalog != nil {
		if schema, ok := i.catalog.Schema(name); ok {
			// jsonschema validates generic values; map[string]any needs no
			// re-marshalling round trip.
			if err := schema.Validate(toValidatable(args)); err != nil {
				i.logger.Warn("tool arguments failed validation", "tool", name, "error", err)
				return errorResult(name, fmt.Errorf("invalid arguments: %w", err))
			}
		}
	}

	session, err := i.dialer.Dial(ctx)
	if err != nil {
		i.logger.Warn("tool session dial failed", "tool", name, "error", err)
		return errorResult(name, err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, name, args)
	if err != nil {
		i.logger.Warn("tool call failed", "tool", name, "error", err)
		return errorResult(name, err)
	}

	text := flattenParts(result.Parts)
	if result.IsError {
		i.logger.Warn("tool returned error result", "tool", name)
		return errorResult(name, fmt.Errorf("%s", text))
	}

	i.logger.Debug("tool call completed",
		"tool", name,
		"duration", time.Since(start),
		"result_bytes", len(text),
	)
	return text
}

// flattenParts joins the textual representations of content parts with
// newline separators, falling back to a best-effort string form.
func flattenParts(parts []ContentPart) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
			continue
		}
		if p.Raw != nil {
			texts = append(texts, fmt.Sprintf("%v", p.Raw))
		}
	}
	return strings.Join(texts, "\n")
}

func errorResult(name string, err error) string {
	return fmt.Sprintf("Error calling tool %s: %v", name, err)
}

// toValidatable converts argument maps into the generic form the schema
// validator expects. A nil map validates as an empty object.
func toValidatable(args map[string]any) any {
	if args == nil {
		return map[string]any{}
	}
	return args
}
