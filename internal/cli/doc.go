// Package cli defines the Cobra command tree for the vsbuiltin CLI. Each file
// in this package registers one top-level command (package, republish,
// source, etc.) with the root command. Command implementations delegate to
// internal packages for the actual work and only handle flag parsing,
// configuration and output.
package cli
