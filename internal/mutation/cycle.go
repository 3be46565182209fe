package mutation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/vsbuiltin/vsbuiltin/internal/manifest"
)

// Action performs external work while the rewritten manifest is on disk.
type Action func(ctx context.Context) error

// ScratchFile is an auxiliary file that exists only for the duration of a
// cycle. Content is written verbatim when non-nil; otherwise the file is
// copied from CopyFrom.
type ScratchFile struct {
	Path     string
	Content  []byte
	CopyFrom string
}

// Cycle describes one rewrite-act-restore pass over a manifest.
type Cycle struct {
	ManifestPath string
	Transform    manifest.Transform
	Scratch      []ScratchFile
	Logger       *log.Logger
}

// ActionError wraps a failure of the protected action.
type ActionError struct {
	Err error
}

func (e *ActionError) Error() string { return e.Err.Error() }
func (e *ActionError) Unwrap() error { return e.Err }

// RestoreError reports that a path could not be put back to its original
// state. The manifest on disk may still hold the rewritten document.
type RestoreError struct {
	Path string
	Err  error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restoring %s: %v", e.Path, e.Err)
}
func (e *RestoreError) Unwrap() error { return e.Err }

// IsFatal reports whether err came from restoration.
func IsFatal(err error) bool {
	var restoreErr *RestoreError
	return errors.As(err, &restoreErr)
}

// snapshot remembers what was at a path before the cycle touched it.
type snapshot struct {
	path    string
	existed bool
	data    []byte
	mode    fs.FileMode
}

func take(path string) (*snapshot, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &snapshot{path: path}, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &snapshot{path: path, existed: true, data: data, mode: info.Mode().Perm()}, nil
}

func (s *snapshot) restore() error {
	if !s.existed {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(s.path, s.data, s.mode)
}

// Run executes the cycle. Nothing is written when the transform fails.
// Once the rewritten manifest has been written, the original content is
// restored before Run returns, on every exit path.
func (c *Cycle) Run(ctx context.Context, action Action) (err error) {
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}

	original, err := take(c.ManifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", c.ManifestPath, err)
	}
	if !original.existed {
		return fmt.Errorf("manifest %s does not exist", c.ManifestPath)
	}

	rewritten, err := c.Transform(original.data)
	if err != nil {
		return fmt.Errorf("rewriting manifest %s: %w", c.ManifestPath, err)
	}

	snapshots := []*snapshot{original}
	defer func() {
		// Restore in reverse so the manifest goes back last.
		for i := len(snapshots) - 1; i >= 0; i-- {
			s := snapshots[i]
			if rerr := s.restore(); rerr != nil {
				logger.Error("restore failed", "path", s.path, "err", rerr)
				if !IsFatal(err) {
					err = &RestoreError{Path: s.path, Err: rerr}
				}
				continue
			}
			logger.Debug("restored", "path", s.path)
		}
	}()

	if err := os.WriteFile(c.ManifestPath, rewritten, original.mode); err != nil {
		return fmt.Errorf("writing manifest %s: %w", c.ManifestPath, err)
	}

	for _, f := range c.Scratch {
		s, err := take(f.Path)
		if err != nil {
			return fmt.Errorf("inspecting scratch file %s: %w", f.Path, err)
		}
		snapshots = append(snapshots, s)
		if err := writeScratch(f); err != nil {
			return fmt.Errorf("creating scratch file %s: %w", f.Path, err)
		}
	}

	if err := action(ctx); err != nil {
		return &ActionError{Err: err}
	}
	return nil
}

func writeScratch(f ScratchFile) error {
	if f.Content != nil {
		return os.WriteFile(f.Path, f.Content, 0644)
	}
	data, err := os.ReadFile(f.CopyFrom)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0644)
}
