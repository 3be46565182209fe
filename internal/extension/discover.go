package extension

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vsbuiltin/vsbuiltin/internal/manifest"
)

// Extension is one directory below the extensions folder.
type Extension struct {
	Name string // directory name, e.g. "css-language-features"
	Dir  string
}

// ManifestPath returns the path of the extension's package.json.
func (e Extension) ManifestPath() string {
	return filepath.Join(e.Dir, manifest.FileName)
}

// LocalizationPath returns the path of the extension's package.nls.json.
func (e Extension) LocalizationPath() string {
	return filepath.Join(e.Dir, manifest.LocalizationFileName)
}

// HasManifest reports whether the directory holds a package.json.
func (e Extension) HasManifest() bool {
	return manifest.Exists(e.ManifestPath())
}

// Discover lists the directories in extensionsDir in name order. When only
// is non-empty the result is restricted to those names, and a name with no
// matching directory is an error.
func Discover(extensionsDir string, only []string) ([]Extension, error) {
	entries, err := os.ReadDir(extensionsDir)
	if err != nil {
		return nil, fmt.Errorf("reading extensions directory %s: %w", extensionsDir, err)
	}

	var all []Extension
	for _, entry := range entries {
		if !isDir(extensionsDir, entry) {
			continue
		}
		all = append(all, Extension{
			Name: entry.Name(),
			Dir:  filepath.Join(extensionsDir, entry.Name()),
		})
	}

	if len(only) == 0 {
		return all, nil
	}
	return filter(all, only)
}

func filter(all []Extension, only []string) ([]Extension, error) {
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}

	var result []Extension
	for _, ext := range all {
		if wanted[ext.Name] {
			result = append(result, ext)
			delete(wanted, ext.Name)
		}
	}

	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for name := range wanted {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("unknown extension(s): %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// isDir follows symlinked extension directories.
func isDir(parent string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}
