package cli

import (
	"encoding/json"
	"fmt"

	"github.com/compozy/plistyaml/cli/helpers"
	"github.com/compozy/plistyaml/pkg/config"
	"github.com/compozy/plistyaml/pkg/version"
	"github.com/spf13/cobra"
)

// VersionCmd prints build information
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()
			if helpers.DetectMode(config.FromContext(cmd.Context())) == helpers.ModeJSON {
				data, err := json.Marshal(info)
				if err != nil {
					return fmt.Errorf("failed to encode version: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			_, err := fmt.Fprintln(out, info.String())
			return err
		},
	}
}
