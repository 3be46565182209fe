package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/vsbuiltin/vsbuiltin/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"

	// ProjectFile is the optional per-checkout settings file looked up in the root.
	ProjectFile = "vsbuiltin.yaml"
)

// Setting keys.
const (
	KeyRoot           = "root"
	KeySourceDir      = "source_dir"
	KeyExtensionsDir  = "extensions_dir"
	KeyDistDir        = "dist_dir"
	KeyPackageManager = "package_manager"
	KeyPackager       = "packager"
	KeyRepositoryURL  = "repository_url"
	KeySourceRepoURL  = "source_repo_url"
	KeySourceRef      = "source_ref"
	KeyScope          = "republish.scope"
	KeyPublishVersion = "republish.version"
	KeySkipPrefixes   = "republish.skip_prefixes"
	KeyLogLevel       = "log_level"
)

const defaultPublishVersion = "0.2.1"

// Keys lists every setting in the order `config list` prints them.
var Keys = []string{
	KeyRoot, KeySourceDir, KeyExtensionsDir, KeyDistDir,
	KeyPackageManager, KeyPackager, KeyRepositoryURL,
	KeySourceRepoURL, KeySourceRef,
	KeyScope, KeyPublishVersion, KeySkipPrefixes,
	KeyLogLevel,
}

// IsKnown reports whether key names a setting.
func IsKnown(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Dir returns the path to the user config directory (~/.vsbuiltin/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the user config file (~/.vsbuiltin/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// SetDefaults registers the built-in defaults with Viper.
func SetDefaults() {
	viper.SetDefault(KeyRoot, ".")
	viper.SetDefault(KeyPackageManager, "yarn")
	viper.SetDefault(KeyPackager, "vsce")
	viper.SetDefault(KeyRepositoryURL, branding.RepositoryURL())
	viper.SetDefault(KeySourceRepoURL, branding.SourceRepoURL())
	viper.SetDefault(KeyScope, branding.RegistryScope())
	viper.SetDefault(KeyPublishVersion, defaultPublishVersion)
	viper.SetDefault(KeySkipPrefixes, []string{"ms-vscode"})
	viper.SetDefault(KeyLogLevel, "info")
}

// Load initializes Viper from the user config file, the environment and the
// project file found in root (when root is non-empty). Missing files are not
// an error.
func Load(root string) {
	SetDefaults()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	if root == "" {
		return
	}
	project := filepath.Join(root, ProjectFile)
	if _, err := os.Stat(project); err == nil {
		viper.SetConfigFile(project)
		_ = viper.MergeInConfig()
		viper.SetConfigFile(FilePath())
	}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a key-value pair to the user config file. Only the user file is
// rewritten; values coming from defaults, the project file or the
// environment are not copied into it.
func Set(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	configFile := FilePath()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	user := viper.New()
	user.SetConfigFile(configFile)
	user.SetConfigType(fileType)
	if err := user.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", configFile, err)
	}
	user.Set(key, value)
	if err := user.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	viper.Set(key, value)
	return nil
}
