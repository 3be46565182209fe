package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
	"github.com/vsbuiltin/vsbuiltin/internal/source"
	"github.com/vsbuiltin/vsbuiltin/internal/tool"
)

var sourceSparse bool

var sourceKeys = map[string]string{
	"ref":  config.KeySourceRef,
	"repo": config.KeySourceRepoURL,
}

func init() {
	sourceSyncCmd.Flags().String("ref", "", "Branch or tag to check out (default: the remote's default branch)")
	sourceSyncCmd.Flags().String("repo", "", "Git URL of the editor sources")
	sourceSyncCmd.Flags().BoolVar(&sourceSparse, "sparse", false, "Only check out the extensions folder and root files")
	sourceCmd.AddCommand(sourceSyncCmd)
	sourceCmd.AddCommand(sourceStatusCmd)
	rootCmd.AddCommand(sourceCmd)
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage the editor source checkout",
}

var sourceSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Clone or update the editor source checkout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags(), sourceKeys); err != nil {
			return err
		}
		settings, err := config.Resolve()
		if err != nil {
			return err
		}

		c := &source.Checkout{
			Dir:     settings.SourceDir,
			RepoURL: settings.SourceRepoURL,
			Ref:     settings.SourceRef,
			Sparse:  sourceSparse,
			Runner:  &tool.ExecRunner{Logger: logger},
			Logger:  logger,
		}
		if err := c.Sync(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Editor sources ready at %s\n", settings.SourceDir)
		return nil
	},
}

var sourceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the editor sources are and when they were last synced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Resolve()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		c := &source.Checkout{Dir: settings.SourceDir}

		fmt.Fprintf(out, "Source:     %s\n", settings.SourceDir)
		fmt.Fprintf(out, "Extensions: %s\n", settings.ExtensionsDir)
		if !c.Exists() {
			fmt.Fprintln(out, "Status:     not a git checkout")
			return nil
		}
		last := c.LastSynced()
		switch {
		case last.IsZero():
			fmt.Fprintln(out, "Status:     managed outside vsbuiltin")
		case c.IsStale(source.DefaultMaxAge):
			fmt.Fprintf(out, "Status:     stale (last synced %s)\n", last.Format(time.RFC3339))
		default:
			fmt.Fprintf(out, "Status:     fresh (last synced %s)\n", last.Format(time.RFC3339))
		}
		return nil
	},
}
