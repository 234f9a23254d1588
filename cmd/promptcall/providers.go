package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured providers",
		Long:  "List configured providers. The default provider is marked with *.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			eng, err := a.newEngine()
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("NAME", "KIND", "MODEL", "STATE")

			for _, p := range eng.Providers() {
				name := p.Name
				if p.Default {
					name += " *"
				}

				model := p.Model
				if model == "" {
					model = dimStyle.Render("(default)")
				}

				state := okStyle.Render(p.State)
				if p.State != "ready" && p.State != "uninitialized" {
					state = errorStyle.Render(p.State)
				}

				t.Row(nameStyle.Render(name), p.Kind, model, state)
			}

			_, err = fmt.Fprintln(a.stdout, t.Render())
			return err
		},
	}
}
