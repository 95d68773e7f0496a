package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources [uri]",
	Short: "List the server's resources, or read one",
	Long: `Without arguments, list the resources the tool server exposes. With a
URI, read that resource and print its text content.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newBrowserApp()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			resources, err := a.browser.ListResources(ctx)
			if err != nil {
				return err
			}
			return printOut(resources)
		}

		content, err := a.browser.ReadResource(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(content)
		return nil
	},
}
