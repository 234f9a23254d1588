package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.configPath); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(a.stdout, dimStyle.Render(a.configPath+" not found, using built-in defaults"))
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			fmt.Fprintln(a.stdout, okStyle.Render(fmt.Sprintf("ok: %d providers", len(cfg.Providers))))
			return nil
		},
	})

	return cmd
}
