package tidy

import (
	"context"
	"fmt"

	"github.com/compozy/plistyaml/cli/cmd"
	"github.com/compozy/plistyaml/cli/helpers"
	"github.com/compozy/plistyaml/engine/batch"
	"github.com/compozy/plistyaml/pkg/logger"
	"github.com/spf13/cobra"
)

// NewTidyCommand creates the tidy command
func NewTidyCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "tidy <path|dir|glob>...",
		Short: "Rewrite YAML files in place",
		Long: `Rewrite YAML files in place with an order-preserving round trip.
Files ending in .recipe.yaml are also canonicalized and spaced for reading.
Directories are searched for **/*.yaml; glob patterns support **.
Files without a .yaml suffix are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: executeTidyCommand,
	}
	c.Flags().Int("workers", 4, "Number of files processed concurrently")
	c.Flags().Bool("strict", false, "Exit with an error when any file fails")
	return c
}

func executeTidyCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, handleTidy, args)
}

func handleTidy(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	log := logger.FromContext(ctx)
	paths, err := batch.Expand(executor.Converter().Fs(), args)
	if err != nil {
		return helpers.WrapCliError("INVALID_PATTERN", "Could not expand paths", err)
	}
	cfg := executor.Config()
	log.Debug("tidying files", "files", len(paths), "workers", cfg.Batch.Workers)
	runner := batch.NewRunner(executor.Converter(), cfg.Batch.Workers)
	reports, runErr := runner.Tidy(ctx, paths)
	if err := executor.Printer().PrintAll(reports); err != nil {
		return fmt.Errorf("failed to print reports: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	if failed := batch.CountFailed(reports); cfg.Batch.Strict && failed > 0 {
		return helpers.NewBatchError(failed, len(reports))
	}
	return nil
}
