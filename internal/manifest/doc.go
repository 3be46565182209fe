// Package manifest reads, rewrites and validates extension package.json
// documents. Rewrites are expressed as Transform functions over the raw
// bytes so that key order and untouched content survive the round trip.
// Every rewritten document is validated against the embedded JSON schema
// before it is handed back.
package manifest
