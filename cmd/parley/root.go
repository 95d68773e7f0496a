package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/parley/internal/config"
	"github.com/jackzampolin/parley/version"
)

var (
	cfgFile      string
	outputFormat string
	modelFlag    string
	serverFlag   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Chat with an LLM wired to an MCP tool server",
	Long: `Parley connects an OpenAI-compatible chat model to a remote MCP tool
server. Tools discovered from the server are offered to the model as
callable functions; the conversation loop executes whatever the model
requests and streams the final answer back.

Typical flow:
  parley tools                  # see what the server offers
  parley ask "a question"       # one-shot answer
  parley chat                   # interactive session`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.parley/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&modelFlag, "model", "", "override the configured model name",
	)
	rootCmd.PersistentFlags().StringVar(
		&serverFlag, "server", "", "override the configured tool server URL",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(resourcesCmd)
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}

	cfg := cm.Get().Resolved()
	if modelFlag != "" {
		cfg.Model.Name = modelFlag
	}
	if serverFlag != "" {
		cfg.ToolServer.URL = serverFlag
	}
	return cfg, nil
}

// printOut renders a value in the selected output format.
func printOut(v any) error {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	}
	return nil
}
