package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runbridge/runbridge/pkg/config"
	"github.com/runbridge/runbridge/pkg/runner"
	"github.com/runbridge/runbridge/pkg/server"
)

func newServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the invocation HTTP server",
		Example: `  # Start with defaults (listens on :8080, runs "claude -p")
  runbridge serve

  # Start with a config file and a different port
  runbridge serve --config runbridge.yaml --listen :9000

  # Submit an invocation
  curl -X POST http://localhost:8080/api/invocations \
    -H "Content-Type: application/json" \
    -d '{"instruction": "say pong"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}

			r, err := runner.New(cfg)
			if err != nil {
				return fmt.Errorf("creating runner: %w", err)
			}

			return server.New(r).Start(cmd.Context(), cfg.ListenAddr)
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Address to listen on (overrides config)")

	return cmd
}
