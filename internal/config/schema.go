package config

import "time"

// Config is the top-level parley configuration.
type Config struct {
	Model      ModelCfg      `mapstructure:"model" yaml:"model"`
	ToolServer ToolServerCfg `mapstructure:"tool_server" yaml:"tool_server"`
	Chat       ChatCfg       `mapstructure:"chat" yaml:"chat"`
}

// ModelCfg configures the chat-completions endpoint.
type ModelCfg struct {
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	Name           string `mapstructure:"name" yaml:"name"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// Timeout returns the request timeout as a duration.
func (m ModelCfg) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// ToolServerCfg configures the MCP tool server connection.
type ToolServerCfg struct {
	URL            string `mapstructure:"url" yaml:"url"`
	Token          string `mapstructure:"token" yaml:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the per-call timeout as a duration.
func (t ToolServerCfg) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// ChatCfg configures the conversation loop.
type ChatCfg struct {
	MaxRounds    int    `mapstructure:"max_rounds" yaml:"max_rounds"`
	SystemPrompt string `mapstructure:"system_prompt" yaml:"system_prompt"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelCfg{
			APIKey:         "${OPENAI_API_KEY}",
			BaseURL:        "https://api.openai.com/v1",
			Name:           "gpt-4o-mini",
			TimeoutSeconds: 120,
			MaxRetries:     3,
		},
		ToolServer: ToolServerCfg{
			URL:            "http://localhost:8000/mcp",
			Token:          "${MCP_API_KEY}",
			TimeoutSeconds: 30,
		},
		Chat: ChatCfg{
			MaxRounds: 15,
		},
	}
}
