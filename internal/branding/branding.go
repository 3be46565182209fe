// Package branding provides compile-time identity values for the CLI.
//
// Forks edit branding.yaml in this directory before building. Go's
// //go:embed bakes it into the binary, so the values never change at runtime.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName       string `yaml:"cli_name"`
	DisplayName   string `yaml:"display_name"`
	Description   string `yaml:"description"`
	HomeDir       string `yaml:"home_dir"`
	EnvPrefix     string `yaml:"env_prefix"`
	GoModule      string `yaml:"go_module"`
	RepositoryURL string `yaml:"repository_url"`
	SourceRepoURL string `yaml:"source_repo_url"`
	RegistryScope string `yaml:"registry_scope"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:       "vsbuiltin",
			DisplayName:   "VS Builtin",
			Description:   "Package and republish the built-in extensions of a VS Code checkout",
			HomeDir:       ".vsbuiltin",
			EnvPrefix:     "VSBUILTIN",
			GoModule:      "github.com/vsbuiltin/vsbuiltin",
			RepositoryURL: "https://github.com/theia-ide/vscode-builtin-extensions",
			SourceRepoURL: "https://github.com/microsoft/vscode.git",
			RegistryScope: "@theia/vscode-builtin-",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "vsbuiltin").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".vsbuiltin").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "VSBUILTIN").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// RepositoryURL returns the git URL written into every packaged manifest.
func RepositoryURL() string { load(); return defaults.RepositoryURL }

// SourceRepoURL returns the default git URL of the editor sources.
func SourceRepoURL() string { load(); return defaults.SourceRepoURL }

// RegistryScope returns the name prefix used when republishing to the registry.
func RegistryScope() string { load(); return defaults.RegistryScope }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("root") → "VSBUILTIN_ROOT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
