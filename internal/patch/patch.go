// Package patch makes the TypeScript language features extension work as a
// standalone archive. The extension normally resolves the TypeScript server
// from the node_modules folder shared by all built-in extensions; the patch
// copies that folder into the extension and points the compiled entry file
// at the copy.
package patch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Layout of the patched extension.
const (
	TargetExtension = "typescript-language-features"
	SharedDepsDir   = "node_modules"
	LocalDepsDir    = "deps"
)

// Module-resolution literals in the compiled entry file.
const (
	OriginalReference = `"vscode.typescript-language-features",["..","node_modules"]`
	PatchedReference  = `"vscode.typescript-language-features",[".","deps"]`
)

// EntryFile is the compiled entry point, relative to the extension directory.
var EntryFile = filepath.Join("dist", "extension.js")

// Outcome describes what Apply did.
type Outcome int

const (
	NotApplicable Outcome = iota
	Patched
	AlreadyPatched
)

func (o Outcome) String() string {
	switch o {
	case Patched:
		return "patched"
	case AlreadyPatched:
		return "already patched"
	default:
		return "not applicable"
	}
}

// Apply copies the shared dependencies into the target extension and
// rewrites every module-resolution reference in its entry file. It does
// nothing when either the extension or the shared dependencies directory is
// missing. Running it again leaves the entry file unchanged.
func Apply(extensionsDir string, logger *log.Logger) (Outcome, error) {
	if logger == nil {
		logger = log.Default()
	}

	shared := filepath.Join(extensionsDir, SharedDepsDir)
	target := filepath.Join(extensionsDir, TargetExtension)
	if !isDir(shared) || !isDir(target) {
		return NotApplicable, nil
	}

	local := filepath.Join(target, LocalDepsDir)
	logger.Info("copying shared dependencies", "from", shared, "to", local)
	if err := copyDir(shared, local); err != nil {
		return NotApplicable, fmt.Errorf("copying %s to %s: %w", shared, local, err)
	}

	entry := filepath.Join(target, EntryFile)
	changed, err := ReplaceLiteral(entry, OriginalReference, PatchedReference)
	if err != nil {
		return NotApplicable, err
	}
	if changed {
		logger.Info("entry file is original, patched", "path", entry)
		return Patched, nil
	}

	logger.Info("entry file is already patched", "path", entry)
	return AlreadyPatched, nil
}

// ReplaceLiteral replaces every occurrence of original with patched in the
// file at path. The file is only rewritten when original is present, so a
// second call leaves it untouched.
func ReplaceLiteral(path, original, patched string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if !bytes.Contains(data, []byte(original)) {
		return false, nil
	}
	data = bytes.ReplaceAll(data, []byte(original), []byte(patched))
	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
