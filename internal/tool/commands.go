package tool

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ShortRevision returns the abbreviated HEAD commit of the checkout at dir.
func ShortRevision(ctx context.Context, r Runner, dir string) (string, error) {
	out, err := r.Run(ctx, dir, "git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("reading short revision in %s: %w", dir, err)
	}
	rev := strings.TrimSpace(out)
	if rev == "" {
		return "", fmt.Errorf("git returned an empty revision in %s", dir)
	}
	return rev, nil
}

// BinDir returns the directory where the package manager installs
// executables for the project at dir.
func BinDir(ctx context.Context, r Runner, packageManager, dir string) (string, error) {
	switch packageManager {
	case "yarn":
		out, err := r.Run(ctx, dir, "yarn", "bin")
		if err != nil {
			return "", fmt.Errorf("resolving yarn bin directory: %w", err)
		}
		return strings.TrimSpace(out), nil
	case "npm":
		out, err := r.Run(ctx, dir, "npm", "prefix")
		if err != nil {
			return "", fmt.Errorf("resolving npm prefix: %w", err)
		}
		return filepath.Join(strings.TrimSpace(out), "node_modules", ".bin"), nil
	default:
		return "", fmt.Errorf("unsupported package manager %q", packageManager)
	}
}

// PackagerPath resolves the packager executable. A configured value that
// contains a path separator is used as-is; a bare name is looked up in
// binDir.
func PackagerPath(binDir, packager string) string {
	if strings.ContainsRune(packager, filepath.Separator) || strings.Contains(packager, "/") {
		return packager
	}
	return filepath.Join(binDir, packager)
}

// PackageArgs returns the packager arguments that write an archive into distDir.
func PackageArgs(packageManager, distDir string) []string {
	args := []string{"package"}
	if packageManager == "yarn" {
		args = append(args, "--yarn")
	}
	return append(args, "-o", distDir)
}

// Package runs the packager in extDir.
func Package(ctx context.Context, r Runner, packager, packageManager, extDir, distDir string) error {
	_, err := r.Run(ctx, extDir, packager, PackageArgs(packageManager, distDir)...)
	return err
}

// PublishArgs returns the registry publish arguments. Lifecycle scripts
// are disabled for the publish step.
func PublishArgs() []string {
	return []string{"publish", "--access", "public", "--ignore-scripts"}
}

// Publish pushes the package in extDir to the public registry.
func Publish(ctx context.Context, r Runner, packageManager, extDir string) error {
	_, err := r.Run(ctx, extDir, packageManager, PublishArgs()...)
	return err
}
