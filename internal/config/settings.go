package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the resolved view of the configuration used by a run.
// All directories are absolute.
type Settings struct {
	Root           string
	SourceDir      string
	ExtensionsDir  string
	DistDir        string
	PackageManager string
	Packager       string
	RepositoryURL  string
	SourceRepoURL  string
	SourceRef      string
	Scope          string
	PublishVersion string
	SkipPrefixes   []string
	LogLevel       string
}

// Resolve reads the current Viper state into Settings. Relative directories
// are resolved against the root; source_dir defaults to <root>/vscode,
// extensions_dir to <source_dir>/extensions and dist_dir to <root>/dist.
func Resolve() (*Settings, error) {
	root, err := filepath.Abs(viper.GetString(KeyRoot))
	if err != nil {
		return nil, fmt.Errorf("resolving root directory: %w", err)
	}

	s := &Settings{
		Root:           root,
		PackageManager: viper.GetString(KeyPackageManager),
		Packager:       viper.GetString(KeyPackager),
		RepositoryURL:  viper.GetString(KeyRepositoryURL),
		SourceRepoURL:  viper.GetString(KeySourceRepoURL),
		SourceRef:      viper.GetString(KeySourceRef),
		Scope:          viper.GetString(KeyScope),
		PublishVersion: viper.GetString(KeyPublishVersion),
		SkipPrefixes:   splitList(viper.GetStringSlice(KeySkipPrefixes)),
		LogLevel:       viper.GetString(KeyLogLevel),
	}

	s.SourceDir = dirOrDefault(root, viper.GetString(KeySourceDir), filepath.Join(root, "vscode"))
	s.ExtensionsDir = dirOrDefault(root, viper.GetString(KeyExtensionsDir), filepath.Join(s.SourceDir, "extensions"))
	s.DistDir = dirOrDefault(root, viper.GetString(KeyDistDir), filepath.Join(root, "dist"))

	switch s.PackageManager {
	case "yarn", "npm":
	default:
		return nil, fmt.Errorf("unsupported package manager %q: supported values are \"yarn\" and \"npm\"", s.PackageManager)
	}

	return s, nil
}

// ReferenceManifest returns the path to the editor's own package.json.
func (s *Settings) ReferenceManifest() string {
	return filepath.Join(s.SourceDir, "package.json")
}

// LicenseFile returns the path to the editor's license text.
func (s *Settings) LicenseFile() string {
	return filepath.Join(s.SourceDir, "LICENSE.txt")
}

func dirOrDefault(root, value, fallback string) string {
	if value == "" {
		return fallback
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// splitList flattens comma-separated entries, which is how list values
// arrive from environment variables.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
