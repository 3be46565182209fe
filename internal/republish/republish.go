// Package republish pushes the built-in extensions, together with a zip of
// their installed dependencies, to the package registry under a common
// scope.
package republish

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/vsbuiltin/vsbuiltin/internal/archive"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
	"github.com/vsbuiltin/vsbuiltin/internal/extension"
	"github.com/vsbuiltin/vsbuiltin/internal/manifest"
	"github.com/vsbuiltin/vsbuiltin/internal/mutation"
	"github.com/vsbuiltin/vsbuiltin/internal/report"
	"github.com/vsbuiltin/vsbuiltin/internal/tool"
)

// Flow republishes extensions. Settings.Scope, Settings.PublishVersion and
// Settings.SkipPrefixes control the published names, the version and which
// extensions are left out.
type Flow struct {
	Settings *config.Settings
	Runner   tool.Runner
	Logger   *log.Logger
}

// Run republishes the extensions named in only, or all of them when only is
// empty. Single failures are recorded in the summary; the error return is
// reserved for problems that stop the run.
func (f *Flow) Run(ctx context.Context, only []string) (*report.Summary, error) {
	logger := f.logger()
	s := f.Settings
	if s.PublishVersion == "" {
		return nil, errors.New("publish version is empty")
	}

	exts, err := extension.Discover(s.ExtensionsDir, only)
	if err != nil {
		return nil, err
	}
	logger.Info("republishing built-in extensions", "scope", s.Scope, "version", s.PublishVersion)

	summary := report.New("publish", "published")
	for _, ext := range exts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if archive.Skipped(ext.Name, s.SkipPrefixes) {
			logger.Debug("skipping marketplace extension", "extension", ext.Name)
			continue
		}
		if !ext.HasManifest() {
			logger.Debug("skipping directory without manifest", "extension", ext.Name)
			continue
		}

		name := f.publishedName(ext)
		err := f.publishOne(ctx, ext)
		if mutation.IsFatal(err) {
			summary.Failed(name, err)
			return summary, err
		}
		if err != nil {
			logger.Error("publishing failed", "extension", name, "err", err)
			summary.Failed(name, err)
			continue
		}
		summary.Succeeded(name)
	}

	ok, failed := summary.Counts()
	logger.Info("republish finished", "published", ok, "failed", failed)
	return summary, nil
}

func (f *Flow) publishOne(ctx context.Context, ext extension.Extension) error {
	logger := f.logger().With("extension", ext.Name)

	path, err := archive.Dependencies(ctx, ext.Dir)
	switch {
	case errors.Is(err, archive.ErrNoDeps):
	case err != nil:
		return fmt.Errorf("archiving dependencies: %w", err)
	default:
		logger.Info("archived dependencies", "path", path)
	}

	cycle := &mutation.Cycle{
		ManifestPath: ext.ManifestPath(),
		Transform:    manifest.RepublishRewrite(f.Settings.Scope, f.Settings.PublishVersion),
		Logger:       logger,
	}

	logger.Info("publishing")
	return cycle.Run(ctx, func(ctx context.Context) error {
		return tool.Publish(ctx, f.runner(), f.Settings.PackageManager, ext.Dir)
	})
}

// publishedName is the scoped name the extension is published under.
func (f *Flow) publishedName(ext extension.Extension) string {
	name := ext.Name
	if doc, err := manifest.Read(ext.ManifestPath()); err == nil && doc.Name() != "" {
		name = doc.Name()
	}
	return manifest.ScopedName(f.Settings.Scope, name)
}

func (f *Flow) runner() tool.Runner {
	if f.Runner == nil {
		f.Runner = &tool.ExecRunner{Logger: f.logger()}
	}
	return f.Runner
}

func (f *Flow) logger() *log.Logger {
	if f.Logger == nil {
		return log.Default()
	}
	return f.Logger
}
