// Package source manages the editor checkout whose built-in extensions are
// packaged. It handles cloning, updating and freshness tracking of the
// checkout.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vsbuiltin/vsbuiltin/internal/tool"
)

const (
	// freshnessFile is kept inside .git so it never shows up as an
	// untracked file in the checkout.
	freshnessFile = "vsbuiltin-synced"

	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour

	// tmpSuffix is appended to the target dir during atomic clone.
	tmpSuffix = ".tmp"

	// sparseDir is the only directory checked out by a sparse clone. Cone
	// mode always includes the files at the repository root, which is where
	// package.json and LICENSE.txt live.
	sparseDir = "extensions"
)

// Checkout is an editor source checkout on disk.
type Checkout struct {
	Dir     string
	RepoURL string
	// Ref is a branch or tag; empty means the remote's default branch.
	Ref string
	// Sparse limits the working tree to the extensions folder.
	Sparse bool

	Runner tool.Runner
	Logger *log.Logger
}

// Exists reports whether Dir is a git checkout.
func (c *Checkout) Exists() bool {
	info, err := os.Stat(filepath.Join(c.Dir, ".git"))
	return err == nil && info.IsDir()
}

// Sync clones the checkout when it does not exist yet and updates it
// otherwise.
func (c *Checkout) Sync(ctx context.Context) error {
	if c.Exists() {
		return c.Update(ctx)
	}
	return c.Clone(ctx)
}

// Clone performs a shallow clone into Dir. The clone is atomic: it writes
// to a .tmp directory first and renames on success. On failure the .tmp
// directory is cleaned up. A non-empty Dir that is not a git checkout is
// never replaced.
func (c *Checkout) Clone(ctx context.Context) error {
	if err := ensureGit(); err != nil {
		return err
	}
	if c.RepoURL == "" {
		return errors.New("source repository URL is not configured")
	}
	if !c.Exists() {
		empty, err := isEmptyOrMissing(c.Dir)
		if err != nil {
			return fmt.Errorf("inspecting source dir: %w", err)
		}
		if !empty {
			return fmt.Errorf("%s exists and is not a git checkout: remove it or choose another source directory", c.Dir)
		}
	}

	tmpDir := c.Dir + tmpSuffix

	// Clean up any leftover tmp dir from a previous failed attempt.
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	c.logger().Info("cloning editor sources", "repo", c.RepoURL, "ref", c.Ref, "dir", c.Dir)
	if err := c.clone(ctx, tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return err
	}

	if err := os.RemoveAll(c.Dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing existing source dir: %w", err)
	}
	if err := os.Rename(tmpDir, c.Dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing source clone: %w", err)
	}

	c.WriteFreshnessMarker()
	return nil
}

// Update fetches the latest commit of Ref, or pulls the current branch when
// Ref is empty. A missing checkout is cloned instead.
func (c *Checkout) Update(ctx context.Context) error {
	if err := ensureGit(); err != nil {
		return err
	}
	if !c.Exists() {
		return c.Clone(ctx)
	}

	c.logger().Info("updating editor sources", "dir", c.Dir, "ref", c.Ref)
	if c.Ref == "" {
		if err := c.git(ctx, c.Dir, "pull", "--depth=1", "--rebase"); err != nil {
			return fmt.Errorf("pulling source updates: %w", err)
		}
	} else {
		if err := c.git(ctx, c.Dir, "fetch", "--depth=1", "origin", c.Ref); err != nil {
			return fmt.Errorf("fetching %s: %w", c.Ref, err)
		}
		if err := c.git(ctx, c.Dir, "checkout", "--detach", "FETCH_HEAD"); err != nil {
			return fmt.Errorf("checking out %s: %w", c.Ref, err)
		}
	}

	c.WriteFreshnessMarker()
	return nil
}

// WriteFreshnessMarker records the current Unix timestamp in the checkout.
func (c *Checkout) WriteFreshnessMarker() {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(c.markerPath(), []byte(ts), 0644)
}

// LastSynced returns the time of the last successful sync. Returns zero
// time if the marker doesn't exist or can't be parsed.
func (c *Checkout) LastSynced() time.Time {
	data, err := os.ReadFile(c.markerPath())
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale returns true if the checkout was last synced more than maxAge ago
// or was never synced by this tool.
func (c *Checkout) IsStale(maxAge time.Duration) bool {
	last := c.LastSynced()
	if last.IsZero() {
		return true
	}
	return time.Since(last) > maxAge
}

func (c *Checkout) markerPath() string {
	return filepath.Join(c.Dir, ".git", freshnessFile)
}

func (c *Checkout) clone(ctx context.Context, dir string) error {
	args := []string{"clone", "--depth=1"}
	if c.Ref != "" {
		args = append(args, "--branch", c.Ref)
	}
	if !c.Sparse {
		if err := c.git(ctx, "", append(args, c.RepoURL, dir)...); err != nil {
			return fmt.Errorf("shallow clone: %w", err)
		}
		return nil
	}

	if err := c.git(ctx, "", append(args, "--sparse", "--no-checkout", c.RepoURL, dir)...); err != nil {
		return fmt.Errorf("sparse clone: %w", err)
	}
	if err := c.git(ctx, dir, "sparse-checkout", "set", sparseDir); err != nil {
		return fmt.Errorf("sparse-checkout set: %w", err)
	}
	if err := c.git(ctx, dir, "checkout"); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

func (c *Checkout) git(ctx context.Context, dir string, args ...string) error {
	runner := c.Runner
	if runner == nil {
		runner = &tool.ExecRunner{Logger: c.logger()}
	}
	_, err := runner.Run(ctx, dir, "git", args...)
	return err
}

func (c *Checkout) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// isEmptyOrMissing reports whether dir does not exist or holds no entries.
func isEmptyOrMissing(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

var lookPath = exec.LookPath

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := lookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}
