// Package packaging turns every built-in extension of an editor checkout
// into a standalone .vsix archive.
//
// A run resolves one version for all extensions, applies the runtime patch
// the TypeScript extension needs, then runs one manifest mutation cycle per
// extension: the manifest is rewritten as a bundled variant, README.md and
// LICENSE-vscode.txt are placed next to it, the packager is invoked, and
// everything is put back the way it was.
package packaging
