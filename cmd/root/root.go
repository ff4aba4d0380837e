// Package root defines the runbridge command line interface.
package root

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "runbridge",
		Short:         "Run an external agent CLI against instructions over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}
