package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askPrompt string
	askArgs   []string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Long: `Send one message through the conversation loop and print the final
answer. With --prompt, a server-side prompt template is rendered first
and used as the message; template arguments are passed with repeated
--arg key=value flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if askPrompt == "" && len(args) == 0 {
			return fmt.Errorf("provide a question or --prompt <name>")
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		var question string
		if askPrompt != "" {
			promptArgs, err := parseKeyValues(askArgs)
			if err != nil {
				return err
			}
			question, err = a.browser.GetPrompt(ctx, askPrompt, promptArgs)
			if err != nil {
				return fmt.Errorf("failed to render prompt %q: %w", askPrompt, err)
			}
		} else {
			question = args[0]
		}

		answer, err := a.engine.Send(ctx, question)
		if err != nil {
			return err
		}

		fmt.Println(answer)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askPrompt, "prompt", "", "server-side prompt template to render as the question")
	askCmd.Flags().StringArrayVar(&askArgs, "arg", nil, "prompt template argument as key=value (repeatable)")
}

// parseKeyValues splits repeated key=value flags into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}
