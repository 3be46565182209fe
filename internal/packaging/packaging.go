package packaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
	"github.com/vsbuiltin/vsbuiltin/internal/extension"
	"github.com/vsbuiltin/vsbuiltin/internal/manifest"
	"github.com/vsbuiltin/vsbuiltin/internal/mutation"
	"github.com/vsbuiltin/vsbuiltin/internal/patch"
	"github.com/vsbuiltin/vsbuiltin/internal/report"
	"github.com/vsbuiltin/vsbuiltin/internal/tool"
	"github.com/vsbuiltin/vsbuiltin/internal/version"
)

// Flow packages extensions. Runner and Logger default to an ExecRunner and
// the default logger.
type Flow struct {
	Settings *config.Settings
	Runner   tool.Runner
	Logger   *log.Logger
}

// plan holds everything resolved before the first extension is touched.
type plan struct {
	channel  version.Channel
	version  string
	packager string
}

// Run packages the extensions named in only, or all of them when only is
// empty. Failures of single extensions are recorded in the returned summary
// and do not stop the run. The error return is reserved for problems that
// make the whole run pointless and for manifests that could not be restored.
func (f *Flow) Run(ctx context.Context, channel version.Channel, only []string) (*report.Summary, error) {
	logger := f.logger()

	p, err := f.prepare(ctx, channel)
	if err != nil {
		return nil, err
	}
	logger.Info("packaging built-in extensions", "version", p.version, "channel", p.channel)

	outcome, err := patch.Apply(f.Settings.ExtensionsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", patch.TargetExtension, err)
	}
	logger.Debug("runtime patch", "outcome", outcome)

	if err := os.MkdirAll(f.Settings.DistDir, 0755); err != nil {
		return nil, fmt.Errorf("creating dist directory %s: %w", f.Settings.DistDir, err)
	}

	exts, err := extension.Discover(f.Settings.ExtensionsDir, only)
	if err != nil {
		return nil, err
	}

	summary := report.New("package", "packaged")
	for _, ext := range exts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !ext.HasManifest() {
			logger.Debug("skipping directory without manifest", "extension", ext.Name)
			continue
		}

		name := displayedName(ext)
		err := f.packageOne(ctx, ext, p)
		if mutation.IsFatal(err) {
			summary.Failed(name, err)
			return summary, err
		}
		if err != nil {
			logger.Error("packaging failed", "extension", name, "err", err)
			summary.Failed(name, err)
			continue
		}
		summary.Succeeded(name)
	}

	ok, failed := summary.Counts()
	logger.Info("packaging finished", "packaged", ok, "failed", failed)
	return summary, nil
}

// prepare validates the channel and resolves the version and packager.
// Nothing on disk is changed.
func (f *Flow) prepare(ctx context.Context, channel version.Channel) (*plan, error) {
	ch, err := version.ParseChannel(string(channel))
	if err != nil {
		return nil, err
	}

	ref, err := manifest.Read(f.Settings.ReferenceManifest())
	if err != nil {
		return nil, fmt.Errorf("reading editor manifest: %w", err)
	}

	runner := f.runner()
	binDir, err := tool.BinDir(ctx, runner, f.Settings.PackageManager, f.Settings.Root)
	if err != nil {
		return nil, err
	}

	v, err := version.Resolve(ctx, ch, ref.Version(), func(ctx context.Context) (string, error) {
		return tool.ShortRevision(ctx, runner, f.Settings.SourceDir)
	})
	if err != nil {
		return nil, err
	}

	return &plan{
		channel:  ch,
		version:  v,
		packager: tool.PackagerPath(binDir, f.Settings.Packager),
	}, nil
}

func (f *Flow) packageOne(ctx context.Context, ext extension.Extension, p *plan) error {
	logger := f.logger().With("extension", ext.Name)

	nls, err := manifest.ReadLocalization(ext.LocalizationPath())
	if err != nil {
		return err
	}
	readme, err := Readme(ext.Name, f.Settings.RepositoryURL)
	if err != nil {
		return err
	}

	cycle := &mutation.Cycle{
		ManifestPath: ext.ManifestPath(),
		Transform: manifest.BundledRewrite(manifest.BundledOptions{
			DirName:       ext.Name,
			Version:       p.version,
			RepositoryURL: f.Settings.RepositoryURL,
			Preview:       p.channel.Preview(),
			Localization:  nls,
		}),
		Scratch: []mutation.ScratchFile{
			{Path: filepath.Join(ext.Dir, readmeFileName), Content: readme},
			{Path: filepath.Join(ext.Dir, manifest.LicenseFileName), CopyFrom: f.Settings.LicenseFile()},
		},
		Logger: logger,
	}

	logger.Info("packaging vsix")
	return cycle.Run(ctx, func(ctx context.Context) error {
		return tool.Package(ctx, f.runner(), p.packager, f.Settings.PackageManager, ext.Dir, f.Settings.DistDir)
	})
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

// displayedName prefers the manifest's own name for the summary and falls
// back to the directory name when the manifest cannot be read.
func displayedName(ext extension.Extension) string {
	doc, err := manifest.Read(ext.ManifestPath())
	if err != nil || doc.Name() == "" {
		return ext.Name
	}
	return doc.Name()
}
