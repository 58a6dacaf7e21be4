package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose railkm to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server offering the ask, search and
list_documents tools plus the railkm://documents and railkm://stats
resources. Stdio is used unless --port is given, in which case the server
speaks streamable HTTP on that port.

  railkm mcp serve
  railkm mcp serve --port 8080

Client configuration for stdio:
  {
    "mcpServers": {
      "railkm": {
        "command": "/path/to/railkm",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Annotations: map[string]string{annotationServices: needsProviders},
	RunE:        runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query: queryService,
		Index: indexService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if port <= 0 {
		return server.Run(cmd.Context())
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", port, err)
	}
	cmd.Printf("MCP server listening on http://localhost:%d\n", ln.Addr().(*net.TCPAddr).Port)
	return server.Serve(cmd.Context(), ln)
}
