package cli

import (
	"errors"
	"fmt"
	"os"

	configcmd "github.com/compozy/plistyaml/cli/cmd/config"
	convertcmd "github.com/compozy/plistyaml/cli/cmd/convert"
	"github.com/compozy/plistyaml/cli/cmd/tidy"
	"github.com/compozy/plistyaml/cli/helpers"
	"github.com/compozy/plistyaml/pkg/config"
	"github.com/compozy/plistyaml/pkg/logger"
	"github.com/spf13/cobra"
)

// RootCmd builds the plistyaml command tree
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "plistyaml",
		Short: "Convert between property lists, YAML and JSON",
		Long: `plistyaml converts AutoPkg recipes and other documents between property
list, YAML and JSON, keeping key order, and tidies recipe YAML into a
canonical, readable layout.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupContext,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("env-file", ".env", "Path to an environment file loaded before configuration")
	flags.String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.Bool("log-source", false, "Include source locations in logs")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("output", "text", "Report format (text, json)")

	root.AddCommand(
		convertcmd.NewYAMLPlistCommand(),
		convertcmd.NewPlistYAMLCommand(),
		convertcmd.NewJSONPlistCommand(),
		convertcmd.NewConvertCommand(),
		tidy.NewTidyCommand(),
		configcmd.NewConfigCommand(),
		VersionCmd(),
	)
	return root
}

// Execute runs the root command and prints errors not already rendered by
// a command
func Execute() error {
	root := RootCmd()
	err := root.Execute()
	var cliErr *helpers.CliError
	if err != nil && !errors.As(err, &cliErr) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

// setupContext loads configuration and attaches it, its service and the
// logger to the command context
func setupContext(cmd *cobra.Command, _ []string) error {
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file %s: %w", configPath, err)
		}
	}
	cliFlags := make(map[string]any)
	extractCLIFlags(cmd, cliFlags)

	ctx := cmd.Context()
	svc := config.NewService()
	cfg, err := svc.Load(ctx, config.NewYAMLProvider(configPath), config.NewCLIProvider(cliFlags))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.SetupLogger(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Source)
	log.Debug("configuration loaded", "config_file", configPath, "output", cfg.CLI.Output)

	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithConfig(ctx, cfg)
	ctx = config.ContextWithService(ctx, svc)
	cmd.SetContext(ctx)
	return nil
}
