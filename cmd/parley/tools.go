package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the server exposes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newBrowserApp()
		if err != nil {
			return err
		}
		if err := a.catalog.Refresh(ctx); err != nil {
			return err
		}

		type toolView struct {
			Name        string         `json:"name" yaml:"name"`
			Description string         `json:"description,omitempty" yaml:"description,omitempty"`
			InputSchema map[string]any `json:"input_schema,omitempty" yaml:"input_schema,omitempty"`
		}

		defs := a.catalog.Definitions()
		views := make([]toolView, 0, len(defs))
		for _, def := range defs {
			view := toolView{Name: def.Name, Description: def.Description}
			if len(def.InputSchema) > 0 {
				// Decode for readable output; raw bytes would render as base64.
				_ = json.Unmarshal(def.InputSchema, &view.InputSchema)
			}
			views = append(views, view)
		}

		return printOut(views)
	},
}
