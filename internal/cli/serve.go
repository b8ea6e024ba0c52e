package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/erdlayout/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		Long: `Serve the layout engine over HTTP.

Endpoints:
  POST /api/layout   arrange the diagram in the request body (?strict=true)
  POST /api/preview  arrange and render to SVG
  GET  /healthz      liveness
  GET  /metrics      Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.config.Server.Addr
			}
			logger := loggerFromContext(cmd.Context())
			srv := server.New(addr, logger)
			srv.Metrics().Install()
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
