package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
	"github.com/vsbuiltin/vsbuiltin/internal/republish"
	"github.com/vsbuiltin/vsbuiltin/internal/tool"
)

var republishKeys = map[string]string{
	"version": config.KeyPublishVersion,
	"scope":   config.KeyScope,
}

func init() {
	republishCmd.Flags().String("version", "", "Version every republished package is published under")
	republishCmd.Flags().String("scope", "", "Name prefix of the republished packages, e.g. @theia/vscode-builtin-")
	rootCmd.AddCommand(republishCmd)
}

var republishCmd = &cobra.Command{
	Use:   "republish [extension...]",
	Short: "Republish built-in extensions to the npm registry",
	Long: `Publish every built-in extension, or only the named ones, under the configured
scope. Installed dependencies are zipped into vscode_node_modules.zip next to
the manifest first. Extensions whose name starts with one of the
republish.skip_prefixes are left out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags(), republishKeys); err != nil {
			return err
		}
		settings, err := config.Resolve()
		if err != nil {
			return err
		}

		flow := &republish.Flow{
			Settings: settings,
			Runner:   &tool.ExecRunner{Logger: logger},
			Logger:   logger,
		}
		summary, err := flow.Run(cmd.Context(), args)
		printSummary(cmd.OutOrStdout(), summary)
		if err != nil {
			return fmt.Errorf("republishing: %w", err)
		}
		return nil
	},
}
