package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vsbuiltin/vsbuiltin/internal/branding"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build and publishing info as JSON")
	rootCmd.AddCommand(versionCmd)
}

// versionInfo pairs the build stamp with the publishing coordinates the
// build targets, so bug reports show where packages would be published.
type versionInfo struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	Date           string `json:"date"`
	RegistryScope  string `json:"registry_scope"`
	PublishVersion string `json:"publish_version"`
	SourceRepo     string `json:"source_repo"`
	RepositoryURL  string `json:"repository_url"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, buildVersion)
			return nil
		}

		if versionJSON {
			info := versionInfo{
				Version:        buildVersion,
				Commit:         buildCommit,
				Date:           buildDate,
				RegistryScope:  viper.GetString(config.KeyScope),
				PublishVersion: viper.GetString(config.KeyPublishVersion),
				SourceRepo:     viper.GetString(config.KeySourceRepoURL),
				RepositoryURL:  viper.GetString(config.KeyRepositoryURL),
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "%s version %s (commit: %s, built: %s, scope: %s)\n",
			branding.CLIName(), buildVersion, buildCommit, buildDate, viper.GetString(config.KeyScope))
		return nil
	},
}
