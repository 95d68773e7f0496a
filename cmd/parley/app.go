package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/parley/internal/config"
	"github.com/jackzampolin/parley/internal/engine"
	"github.com/jackzampolin/parley/internal/providers"
	"github.com/jackzampolin/parley/internal/toolserver"
)

// app bundles the wired-up components one command invocation needs.
type app struct {
	cfg     *config.Config
	catalog *toolserver.Catalog
	invoker *toolserver.Invoker
	browser *toolserver.Browser
	engine  *engine.Engine
}

// newApp loads config, discovers tools, and builds the conversation engine.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dialer := toolserver.NewHTTPDialer(cfg.ToolServer.URL, cfg.ToolServer.Token)
	catalog := toolserver.NewCatalog(dialer)
	invoker := toolserver.NewInvoker(dialer,
		toolserver.WithArgumentValidation(catalog),
		toolserver.WithCallTimeout(cfg.ToolServer.Timeout()),
	)

	if err := catalog.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("cannot reach tool server: %w", err)
	}
	slog.Info("connected to tool server", "url", cfg.ToolServer.URL, "tools", len(catalog.Names()))

	client := providers.NewOpenAIClient(providers.OpenAIConfig{
		APIKey:       cfg.Model.APIKey,
		BaseURL:      cfg.Model.BaseURL,
		DefaultModel: cfg.Model.Name,
		Timeout:      cfg.Model.Timeout(),
		MaxRetries:   cfg.Model.MaxRetries,
	})

	eng := engine.New(engine.Config{
		Model:        client,
		Runner:       invoker,
		Source:       catalog,
		SystemPrompt: cfg.Chat.SystemPrompt,
		MaxRounds:    cfg.Chat.MaxRounds,
	})

	return &app{
		cfg:     cfg,
		catalog: catalog,
		invoker: invoker,
		browser: toolserver.NewBrowser(dialer),
		engine:  eng,
	}, nil
}

// newBrowserApp wires only the tool-server browsing surface (no model),
// for commands that never talk to the LLM.
func newBrowserApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dialer := toolserver.NewHTTPDialer(cfg.ToolServer.URL, cfg.ToolServer.Token)
	return &app{
		cfg:     cfg,
		catalog: toolserver.NewCatalog(dialer),
		browser: toolserver.NewBrowser(dialer),
	}, nil
}
