// Package mutation applies a temporary rewrite to an extension manifest
// around an external action and always puts the original bytes back.
//
// A Cycle reads the manifest, computes the rewritten document, writes it,
// creates any scratch files, runs the action and then restores the manifest
// and scratch paths. Restoration is deferred, so it also runs when the action
// returns an error or panics. Action failures come back as *ActionError and
// restoration failures as *RestoreError; callers treat the first as a
// per-extension failure and the second as fatal.
package mutation
