package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
	"github.com/vsbuiltin/vsbuiltin/internal/manifest"
	"github.com/vsbuiltin/vsbuiltin/internal/tool"
)

var (
	checkRuntime  bool
	checkDirs     bool
	checkPackager bool
	checkManifest string
)

func init() {
	doctorCmd.Flags().BoolVar(&checkRuntime, "check-runtime", false, "Verify git, node and the package manager are available")
	doctorCmd.Flags().BoolVar(&checkDirs, "check-dirs", false, "Verify the source and extensions directories")
	doctorCmd.Flags().BoolVar(&checkPackager, "check-packager", false, "Verify the packager can be located")
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a manifest file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the packaging environment",
	Long:  `Run diagnostic checks on the tools and directories a packaging run needs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		anyFlag := checkRuntime || checkDirs || checkPackager || checkManifest != ""

		settings, err := config.Resolve()
		if err != nil {
			return err
		}

		if !anyFlag || checkRuntime {
			runRuntimeCheck(out, settings)
		}
		if !anyFlag || checkDirs {
			runDirsCheck(out, settings)
		}
		if !anyFlag || checkPackager {
			runPackagerCheck(cmd, settings)
		}
		if checkManifest != "" {
			return runManifestCheck(out, checkManifest)
		}
		return nil
	},
}

func runRuntimeCheck(out io.Writer, s *config.Settings) {
	fmt.Fprintln(out, "Runtime check:")
	checkBinary(out, "git")
	checkBinary(out, "node")
	checkBinary(out, s.PackageManager)
}

func checkBinary(out io.Writer, name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(out, "  [MISS] %s not found\n", name)
		return
	}
	fmt.Fprintf(out, "  [ OK ] %s found at %s\n", name, path)
}

func runDirsCheck(out io.Writer, s *config.Settings) {
	fmt.Fprintln(out, "Directories check:")
	checkPath(out, "source", s.SourceDir, true)
	checkPath(out, "extensions", s.ExtensionsDir, true)
	checkPath(out, "editor manifest", s.ReferenceManifest(), false)
	checkPath(out, "license", s.LicenseFile(), false)
	if _, err := os.Stat(s.DistDir); err != nil {
		fmt.Fprintf(out, "  [INFO] dist directory %s will be created\n", s.DistDir)
	} else {
		fmt.Fprintf(out, "  [ OK ] dist directory %s\n", s.DistDir)
	}
}

func checkPath(out io.Writer, label, path string, wantDir bool) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		fmt.Fprintf(out, "  [MISS] %s: %s\n", label, path)
	case info.IsDir() != wantDir:
		fmt.Fprintf(out, "  [FAIL] %s: %s has the wrong type\n", label, path)
	default:
		fmt.Fprintf(out, "  [ OK ] %s: %s\n", label, path)
	}
}

func runPackagerCheck(cmd *cobra.Command, s *config.Settings) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Packager check:")

	binDir, err := tool.BinDir(cmd.Context(), &tool.ExecRunner{}, s.PackageManager, s.Root)
	if err != nil {
		fmt.Fprintf(out, "  [WARN] Cannot locate %s bin directory: %v\n", s.PackageManager, err)
		return
	}
	path := tool.PackagerPath(binDir, s.Packager)
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  [MISS] %s not found at %s (run '%s install' in %s)\n", s.Packager, path, s.PackageManager, s.Root)
		return
	}
	fmt.Fprintf(out, "  [ OK ] %s found at %s\n", s.Packager, path)
}

func runManifestCheck(out io.Writer, path string) error {
	fmt.Fprintf(out, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		doc, err := manifest.Read(path)
		if err != nil {
			fmt.Fprintln(out, "  [ OK ] Valid manifest")
			return nil
		}
		fmt.Fprintf(out, "  [ OK ] Valid manifest: %s (v%s)\n", doc.Name(), doc.Version())
		return nil
	}

	fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "    - %s\n", issue)
	}
	return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
}
