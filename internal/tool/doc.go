// Package tool runs the external command-line programs the flows depend on:
// git for the source revision, the package manager for its bin directory and
// for publishing, and the extension packager. Runner abstracts process
// execution so the flows can be exercised without the real tools.
package tool
