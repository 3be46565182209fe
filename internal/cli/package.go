package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
	"github.com/vsbuiltin/vsbuiltin/internal/packaging"
	"github.com/vsbuiltin/vsbuiltin/internal/tool"
	"github.com/vsbuiltin/vsbuiltin/internal/version"
)

var packageTag string

func init() {
	packageCmd.Flags().StringVar(&packageTag, "tag", "", "Release channel: "+channelList())
	_ = packageCmd.MarkFlagRequired("tag")
	_ = packageCmd.RegisterFlagCompletionFunc("tag", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(version.Channels))
		for i, c := range version.Channels {
			out[i] = string(c)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(packageCmd)
}

var packageCmd = &cobra.Command{
	Use:   "package --tag <channel> [extension...]",
	Short: "Package built-in extensions as .vsix archives",
	Long: `Package every built-in extension of the editor checkout, or only the named ones,
as a standalone .vsix archive in the dist directory.

Each manifest is rewritten as a bundled variant for the duration of the packager
run and restored afterwards. Failures of single extensions are reported in the
summary and do not change the exit status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := version.ParseChannel(packageTag)
		if err != nil {
			return err
		}

		settings, err := config.Resolve()
		if err != nil {
			return err
		}

		flow := &packaging.Flow{
			Settings: settings,
			Runner:   &tool.ExecRunner{Logger: logger},
			Logger:   logger,
		}
		summary, err := flow.Run(cmd.Context(), channel, args)
		printSummary(cmd.OutOrStdout(), summary)
		if err != nil {
			return fmt.Errorf("packaging: %w", err)
		}
		return nil
	},
}

func channelList() string {
	names := make([]string, len(version.Channels))
	for i, c := range version.Channels {
		names[i] = string(c)
	}
	return strings.Join(names, " or ")
}
