package cli

import (
	"github.com/claude/ironcycle/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the program over MCP on stdio",
		Long:  "Serve MCP tools on stdio, backed by the local database or, with --remote, by an IronCycle server's REST API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, _ := cmd.Flags().GetString("remote")
			log := logger(cmd)

			var ds mcp.DataSource
			if remote != "" {
				ds = mcp.NewHTTPClient(remote)
			} else {
				svc, closeDB, err := openService(cmd)
				if err != nil {
					return err
				}
				defer closeDB()
				ds = mcp.Local{Service: svc}
			}
			return server.ServeStdio(mcp.New(ds, Version, log))
		},
	}
	cmd.Flags().String("remote", "", "IronCycle server URL (e.g. http://ironcycle.tail1234.ts.net)")
	return cmd
}
