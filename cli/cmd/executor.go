package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/compozy/plistyaml/cli/helpers"
	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/convert"
	"github.com/compozy/plistyaml/pkg/config"
	"github.com/compozy/plistyaml/pkg/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// CommandExecutor carries what every conversion command needs
type CommandExecutor struct {
	cfg       *config.Config
	converter *convert.Converter
	printer   *helpers.ReportPrinter
}

// HandlerFunc defines the signature for command handlers
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// NewCommandExecutor builds an executor from the configuration in the
// command context
func NewCommandExecutor(cmd *cobra.Command, fs afero.Fs) *CommandExecutor {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	mode := helpers.DetectMode(cfg)
	color := mode == helpers.ModeText && helpers.ShouldUseColor(cfg, asFile(cmd.OutOrStdout()))
	logger.FromContext(ctx).Debug("detected output mode", "mode", mode, "color", color)
	return &CommandExecutor{
		cfg:       cfg,
		converter: convert.NewFromConfig(cfg, fs),
		printer:   helpers.NewReportPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode, color),
	}
}

func asFile(w any) *os.File {
	f, _ := w.(*os.File)
	return f
}

// Config returns the active configuration
func (e *CommandExecutor) Config() *config.Config { return e.cfg }

// Converter returns the converter wired from configuration
func (e *CommandExecutor) Converter() *convert.Converter { return e.converter }

// Printer returns the report printer
func (e *CommandExecutor) Printer() *helpers.ReportPrinter { return e.printer }

// ExecuteCommand runs handler against the OS filesystem
func ExecuteCommand(cmd *cobra.Command, handler HandlerFunc, args []string) error {
	return ExecuteWithFs(cmd, afero.NewOsFs(), handler, args)
}

// ExecuteWithFs runs handler against fs and renders any returned error
func ExecuteWithFs(cmd *cobra.Command, fs afero.Fs, handler HandlerFunc, args []string) error {
	executor := NewCommandExecutor(cmd, fs)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	return HandleCommonErrors(handler(ctx, cmd, executor, args), executor.printer)
}

// HandleCommonErrors categorizes err, prints it and returns it
func HandleCommonErrors(err error, printer *helpers.ReportPrinter) error {
	if err == nil {
		return nil
	}
	cliErr := categorizeError(err)
	printer.Error(cliErr)
	return cliErr
}

func categorizeError(err error) *helpers.CliError {
	var cliErr *helpers.CliError
	switch {
	case errors.As(err, &cliErr):
		return cliErr
	case errors.Is(err, context.Canceled):
		return helpers.WrapCliError("OPERATION_CANCELED", "Operation was canceled", err)
	case errors.Is(err, codec.ErrMalformed):
		return helpers.WrapCliError("MALFORMED_SOURCE", "Source document could not be parsed", err)
	case errors.Is(err, helpers.ErrBatchFailed):
		return helpers.WrapCliError("BATCH_FAILED", "One or more files failed", err)
	default:
		return helpers.WrapCliError("COMMAND_FAILED", "Command failed", err)
	}
}

// PrintReport prints r and returns nil; caught failures do not fail the
// command
func PrintReport(executor *CommandExecutor, r *convert.Report) error {
	if err := executor.printer.Print(r); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}
	return nil
}
