package main

import (
	"github.com/germanamz/promptcall/pkg/tools/mcpserver"
	"github.com/germanamz/promptcall/pkg/tools/toolbox"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve every provider as an MCP tool over stdio",
		Long: `Serve every configured provider as an MCP tool named ask_<provider>.

Requests are read from stdin and responses written to stdout. Logs go to
stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.newEngine()
			if err != nil {
				return err
			}

			tb := toolbox.New()
			for _, name := range eng.Names() {
				inv, err := eng.Invoker(name)
				if err != nil {
					return err
				}
				tb.Register(toolbox.AskTool(name, inv))
			}

			srv := mcpserver.New("promptcall", version, a.logger)
			srv.Mount(tb)
			a.logger.Info("serving mcp", "tools", srv.ToolNames())

			return srv.Serve(cmd.Context(), a.stdin, a.stdout)
		},
	}
}
