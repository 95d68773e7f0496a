package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestManager_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Run from a directory without a config.yaml so only defaults apply.
	t.Chdir(t.TempDir())

	cm, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	cfg := cm.Get()
	if cfg.Model.Name != "gpt-4o-mini" {
		t.Errorf("Model.Name = %q", cfg.Model.Name)
	}
	if cfg.Chat.MaxRounds != 15 {
		t.Errorf("Chat.MaxRounds = %d", cfg.Chat.MaxRounds)
	}
	if cfg.ToolServer.URL != "http://localhost:8000/mcp" {
		t.Errorf("ToolServer.URL = %q", cfg.ToolServer.URL)
	}
}

func TestManager_FileOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`model:
  name: gpt-4.1
  base_url: http://localhost:11434/v1
chat:
  max_rounds: 5
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	cfg := cm.Get()
	if cfg.Model.Name != "gpt-4.1" {
		t.Errorf("Model.Name = %q", cfg.Model.Name)
	}
	if cfg.Model.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("Model.BaseURL = %q", cfg.Model.BaseURL)
	}
	if cfg.Chat.MaxRounds != 5 {
		t.Errorf("Chat.MaxRounds = %d", cfg.Chat.MaxRounds)
	}
	// Untouched keys keep their defaults.
	if cfg.ToolServer.URL != "http://localhost:8000/mcp" {
		t.Errorf("ToolServer.URL = %q", cfg.ToolServer.URL)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("PARLEY_TEST_KEY", "sk-123")

	if got := ResolveEnvVars("${PARLEY_TEST_KEY}"); got != "sk-123" {
		t.Errorf("ResolveEnvVars() = %q", got)
	}
	if got := ResolveEnvVars("plain"); got != "plain" {
		t.Errorf("ResolveEnvVars() = %q", got)
	}
	if got := ResolveEnvVars(""); got != "" {
		t.Errorf("ResolveEnvVars() = %q", got)
	}
}

func TestConfig_Resolved(t *testing.T) {
	t.Setenv("PARLEY_TEST_OPENAI", "sk-openai")
	t.Setenv("PARLEY_TEST_MCP", "tok-mcp")

	cfg := &Config{
		Model:      ModelCfg{APIKey: "${PARLEY_TEST_OPENAI}"},
		ToolServer: ToolServerCfg{Token: "${PARLEY_TEST_MCP}"},
	}

	resolved := cfg.Resolved()
	if resolved.Model.APIKey != "sk-openai" {
		t.Errorf("Model.APIKey = %q", resolved.Model.APIKey)
	}
	if resolved.ToolServer.Token != "tok-mcp" {
		t.Errorf("ToolServer.Token = %q", resolved.ToolServer.Token)
	}
	// Original is untouched.
	if cfg.Model.APIKey != "${PARLEY_TEST_OPENAI}" {
		t.Errorf("original mutated: %q", cfg.Model.APIKey)
	}
}

func TestWriteDefault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if got := cm.Get().Model.Name; got != "gpt-4o-mini" {
		t.Errorf("Model.Name = %q", got)
	}
}
