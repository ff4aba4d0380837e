package root

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runbridge/runbridge/pkg/api"
	"github.com/runbridge/runbridge/pkg/config"
	"github.com/runbridge/runbridge/pkg/runner"
)

func newRunCmd() *cobra.Command {
	var attachPaths []string

	cmd := &cobra.Command{
		Use:   "run <instruction>",
		Short: "Run a single invocation and print the tool's output",
		Example: `  # Run a plain instruction
  runbridge run "say pong"

  # Run with files available in the tool's working directory
  runbridge run "summarize these" --attach notes.txt --attach report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction := args[0]
			if strings.TrimSpace(instruction) == "" {
				return errors.New("instruction must not be empty")
			}

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			attachments, err := loadAttachments(attachPaths)
			if err != nil {
				return err
			}

			r, err := runner.New(cfg)
			if err != nil {
				return fmt.Errorf("creating runner: %w", err)
			}

			result, err := r.Invoke(cmd.Context(), api.InvocationRequest{
				Instruction: instruction,
				Attachments: attachments,
			})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), result.Output)
			if result.Stderr != "" {
				fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
			}
			if result.Error != "" {
				return fmt.Errorf("%s (exit code %d)", result.Error, result.ExitCode)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&attachPaths, "attach", nil, "File to place in the tool's working directory (repeatable)")

	return cmd
}

// loadAttachments reads local files and converts them into the same wire
// shape the HTTP layer accepts, keyed by their base names.
func loadAttachments(paths []string) ([]api.Attachment, error) {
	var attachments []api.Attachment
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading attachment %s: %w", path, err)
		}
		attachments = append(attachments, api.Attachment{
			Name:    filepath.Base(path),
			Content: base64.StdEncoding.EncodeToString(data),
		})
	}
	return attachments, nil
}
