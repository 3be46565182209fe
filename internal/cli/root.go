package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vsbuiltin/vsbuiltin/internal/branding"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
	"github.com/vsbuiltin/vsbuiltin/internal/report"
	"github.com/vsbuiltin/vsbuiltin/internal/source"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
	logger  = log.NewWithOptions(os.Stderr, log.Options{Prefix: branding.CLIName()})
)

// persistentKeys maps root flags to the settings they override.
var persistentKeys = map[string]string{
	"root":            config.KeyRoot,
	"source-dir":      config.KeySourceDir,
	"extensions-dir":  config.KeyExtensionsDir,
	"dist-dir":        config.KeyDistDir,
	"package-manager": config.KeyPackageManager,
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` repackages the built-in extensions of a VS Code source checkout as
standalone .vsix archives and republishes them to the npm registry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Root().PersistentFlags(), persistentKeys); err != nil {
			return err
		}
		config.Load(viper.GetString(config.KeyRoot))
		setupLogger(cmd.ErrOrStderr())

		// Only the commands that read the checkout care about its age.
		name := cmd.Name()
		if name == "package" || name == "republish" {
			warnIfStale()
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("root", ".", "Working root holding the editor checkout and dist directory")
	flags.String("source-dir", "", "Editor source checkout (default <root>/vscode)")
	flags.String("extensions-dir", "", "Built-in extensions directory (default <source-dir>/extensions)")
	flags.String("dist-dir", "", "Output directory for .vsix archives (default <root>/dist)")
	flags.String("package-manager", "", "Package manager used to locate tools and publish (yarn or npm)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging, including tool output")
}

// Execute runs the root command with build info injected via ldflags.
// SIGINT and SIGTERM cancel the context handed to the running command.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// bindFlags binds the named flags to their Viper keys. Binding happens on
// every run so that the bindings survive a viper.Reset.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

func setupLogger(w io.Writer) {
	logger.SetOutput(w)
	if verbose {
		logger.SetLevel(log.DebugLevel)
		return
	}
	level, err := log.ParseLevel(viper.GetString(config.KeyLogLevel))
	if err != nil {
		logger.Warn("ignoring invalid log level", "value", viper.GetString(config.KeyLogLevel))
		level = log.InfoLevel
	}
	logger.SetLevel(level)
}

// warnIfStale warns when the checkout was synced by this tool but not
// within the last week. Checkouts managed by hand carry no marker and are
// left alone.
func warnIfStale() {
	s, err := config.Resolve()
	if err != nil {
		return
	}
	c := &source.Checkout{Dir: s.SourceDir}
	if !c.Exists() || c.LastSynced().IsZero() {
		return
	}
	if c.IsStale(source.DefaultMaxAge) {
		logger.Warn("editor sources are more than 7 days old", "hint", fmt.Sprintf("run '%s source sync'", branding.CLIName()))
	}
}

// printSummary writes one line per extension followed by a newline.
func printSummary(w io.Writer, s *report.Summary) {
	if s == nil || s.Len() == 0 {
		return
	}
	fmt.Fprintln(w, s.String())
}
