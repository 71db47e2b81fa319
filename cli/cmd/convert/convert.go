package convert

import (
	"context"
	"fmt"

	"github.com/compozy/plistyaml/cli/cmd"
	"github.com/compozy/plistyaml/cli/helpers"
	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/convert"
	"github.com/spf13/cobra"
)

type operation func(c *convert.Converter, ctx context.Context, in, out string) (*convert.Report, error)

// NewYAMLPlistCommand creates the yaml-plist command
func NewYAMLPlistCommand() *cobra.Command {
	c := newPathCommand(
		"yaml-plist <input.yaml> [output]",
		"Convert a YAML document to a property list",
		`Convert a YAML document to a property list. Without an output path the
trailing .yaml is stripped from the input path. Null values are dropped.`,
		(*convert.Converter).YAMLToPlist,
	)
	addPlistFlags(c)
	return c
}

// NewPlistYAMLCommand creates the plist-yaml command
func NewPlistYAMLCommand() *cobra.Command {
	c := newPathCommand(
		"plist-yaml <input> [output]",
		"Convert a property list to YAML",
		`Convert a property list to YAML. Without an output path .yaml is appended
to the input path. Recipes (.recipe, .recipe.plist) are written with
canonical key order and readability spacing.`,
		(*convert.Converter).PlistToYAML,
	)
	c.Flags().Int("yaml-indent", 2, "Spaces per YAML nesting level")
	return c
}

// NewJSONPlistCommand creates the json-plist command
func NewJSONPlistCommand() *cobra.Command {
	c := newPathCommand(
		"json-plist <input.json> [output]",
		"Convert a JSON document to a property list",
		`Convert a JSON document to a property list. Without an output path the
trailing .json is stripped from the input path. Null values are dropped.`,
		(*convert.Converter).JSONToPlist,
	)
	addPlistFlags(c)
	return c
}

func newPathCommand(use, short, long string, op operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, func(
				ctx context.Context,
				_ *cobra.Command,
				executor *cmd.CommandExecutor,
				args []string,
			) error {
				in, out := args[0], ""
				if len(args) > 1 {
					out = args[1]
				}
				report, err := op(executor.Converter(), ctx, in, out)
				if err != nil {
					return err
				}
				return cmd.PrintReport(executor, report)
			}, args)
		},
	}
}

func addPlistFlags(c *cobra.Command) {
	c.Flags().String("plist-format", "xml", "Property list encoding (xml, binary)")
	c.Flags().Bool("sort-keys", true, "Write dictionary keys in sorted order")
}

// NewConvertCommand creates the generic convert command
func NewConvertCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert between YAML, JSON and property lists",
		Long: `Convert a document between any two supported formats. Formats are taken
from --from and --to, or detected from the file suffixes.`,
		Args: cobra.ExactArgs(2),
		RunE: executeConvertCommand,
	}
	c.Flags().String("from", "", "Input format (yaml, json, plist)")
	c.Flags().String("to", "", "Output format (yaml, json, plist)")
	c.Flags().Bool("recipe", false, "Canonicalize key order as a recipe")
	c.Flags().Int("yaml-indent", 2, "Spaces per YAML nesting level")
	c.Flags().Int("json-indent", 2, "Spaces per JSON nesting level")
	addPlistFlags(c)
	return c
}

func executeConvertCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, handleConvert, args)
}

func handleConvert(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	from, err := resolveFormat(cobraCmd, "from", args[0])
	if err != nil {
		return err
	}
	to, err := resolveFormat(cobraCmd, "to", args[1])
	if err != nil {
		return err
	}
	recipe, err := cobraCmd.Flags().GetBool("recipe")
	if err != nil {
		return fmt.Errorf("failed to get recipe flag: %w", err)
	}
	report, err := executor.Converter().Convert(ctx, convert.Request{
		Operation: convert.OpConvert,
		Input:     args[0],
		Output:    args[1],
		From:      from,
		To:        to,
		Recipe:    recipe,
	})
	if err != nil {
		return err
	}
	return cmd.PrintReport(executor, report)
}

func resolveFormat(cobraCmd *cobra.Command, flag, path string) (codec.Format, error) {
	value, err := cobraCmd.Flags().GetString(flag)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", flag, err)
	}
	if value != "" {
		f, err := codec.ParseFormat(value)
		if err != nil {
			return "", helpers.NewCliError("INVALID_FORMAT", err.Error()).WithContext("flag", flag)
		}
		return f, nil
	}
	f, ok := codec.Detect(path)
	if !ok {
		return "", helpers.NewCliError(
			"UNKNOWN_FORMAT",
			fmt.Sprintf("cannot detect format of %s", path),
			fmt.Sprintf("pass --%s", flag),
		)
	}
	return f, nil
}
