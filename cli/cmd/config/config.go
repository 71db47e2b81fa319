package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/compozy/plistyaml/cli/cmd"
	"github.com/compozy/plistyaml/cli/helpers"
	"github.com/compozy/plistyaml/pkg/config"
	"github.com/compozy/plistyaml/pkg/logger"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration diagnostics",
	}
	c.AddCommand(NewConfigShowCommand())
	return c
}

// NewConfigShowCommand creates the config show subcommand
func NewConfigShowCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration values",
		Long: `Display the effective configuration after defaults, the config file,
PLISTYAML_* environment variables and flags are applied.`,
		Args: cobra.NoArgs,
		RunE: executeConfigShowCommand,
	}
	c.Flags().StringP("format", "f", "yaml", "Output format (yaml, json)")
	c.Flags().Bool("sources", false, "Show which source set each value")
	return c
}

func executeConfigShowCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, handleConfigShow, args)
}

func handleConfigShow(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	logger.FromContext(ctx).Debug("executing config show command")
	format, err := cobraCmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	sources, err := cobraCmd.Flags().GetBool("sources")
	if err != nil {
		return fmt.Errorf("failed to get sources flag: %w", err)
	}
	out := cobraCmd.OutOrStdout()
	if sources {
		return writeSources(out, config.ServiceFromContext(ctx))
	}
	return formatConfigOutput(out, executor.Config(), format)
}

func formatConfigOutput(w io.Writer, cfg *config.Config, format string) error {
	switch helpers.OutputFormat(format) {
	case helpers.OutputFormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case helpers.OutputFormatYAML:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return helpers.NewCliError("INVALID_FORMAT", fmt.Sprintf("unsupported format %q", format), "use yaml or json")
	}
}

func writeSources(w io.Writer, svc config.Service) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSOURCE\tENV")
	for _, m := range config.GenerateEnvMappings() {
		source := config.SourceDefault
		if svc != nil {
			source = svc.GetSource(m.ConfigPath)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ConfigPath, source, m.EnvVar)
	}
	return tw.Flush()
}
