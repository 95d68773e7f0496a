package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/parley/internal/config"
	"github.com/jackzampolin/parley/internal/home"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to ~/.parley",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hd, err := home.New("")
		if err != nil {
			return err
		}
		if err := hd.EnsureExists(); err != nil {
			return err
		}

		if hd.ConfigExists() && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", hd.ConfigPath())
		}

		if err := config.WriteDefault(hd.ConfigPath()); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", hd.ConfigPath())
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}
