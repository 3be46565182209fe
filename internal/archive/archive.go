// Package archive zips an extension's installed dependencies so they can be
// published alongside it.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
)

// Names used by the dependency archiver.
const (
	DepsDir     = "node_modules"
	ArchiveName = "vscode_node_modules.zip"
)

// ErrNoDeps is returned when the extension has no dependencies folder.
var ErrNoDeps = errors.New("no " + DepsDir + " directory")

// Skipped reports whether an extension directory name starts with any of
// the given prefixes.
func Skipped(dirName string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(dirName, p) {
			return true
		}
	}
	return false
}

// Dependencies zips the node_modules folder of extDir into
// extDir/vscode_node_modules.zip and returns the archive path.
func Dependencies(ctx context.Context, extDir string) (string, error) {
	src := filepath.Join(extDir, DepsDir)
	info, err := os.Stat(src)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return "", ErrNoDeps
	}
	if err != nil {
		return "", err
	}

	dest := filepath.Join(extDir, ArchiveName)
	if err := Dir(ctx, src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Dir writes the recursive contents of srcDir to a zip file at dest. Entry
// names are relative to srcDir. A partially written dest is removed on
// failure.
func Dir(ctx context.Context, srcDir, dest string) (err error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcDir, err)
	}

	names := make(map[string]string, len(entries))
	for _, e := range entries {
		names[filepath.Join(srcDir, e.Name())] = e.Name()
	}

	files, err := archives.FilesFromDisk(ctx, nil, names)
	if err != nil {
		return fmt.Errorf("collecting files in %s: %w", srcDir, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dest, cerr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	format := archives.Zip{
		Compression:          zip.Deflate,
		SelectiveCompression: true,
	}
	if err := format.Archive(ctx, out, files); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
