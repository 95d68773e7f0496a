package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var promptArgs []string

var promptsCmd = &cobra.Command{
	Use:   "prompts [name]",
	Short: "List the server's prompt templates, or render one",
	Long: `Without arguments, list the prompt templates the tool server exposes.
With a name, render that template and print the result; template
arguments are passed with repeated --arg key=value flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newBrowserApp()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			prompts, err := a.browser.ListPrompts(ctx)
			if err != nil {
				return err
			}
			return printOut(prompts)
		}

		kv, err := parseKeyValues(promptArgs)
		if err != nil {
			return err
		}
		rendered, err := a.browser.GetPrompt(ctx, args[0], kv)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	promptsCmd.Flags().StringArrayVar(&promptArgs, "arg", nil, "prompt template argument as key=value (repeatable)")
}
