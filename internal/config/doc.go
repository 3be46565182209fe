// Package config manages settings for the packaging and republish runs.
// Values come from ~/.vsbuiltin/config.yaml, an optional vsbuiltin.yaml in
// the working root, VSBUILTIN_* environment variables and command-line flags,
// in increasing order of precedence. Resolve turns them into Settings with
// absolute directory paths.
package config
