// Package extension enumerates the built-in extensions of an editor
// checkout.
//
// Every directory directly below the extensions folder is a candidate.
// Only directories holding a package.json are processed; shared folders
// such as node_modules are listed but flagged as having no manifest.
package extension
