package manifest

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// File names inside an extension directory.
const (
	FileName             = "package.json"
	LocalizationFileName = "package.nls.json"
)

// DefaultVersion is used when a reference manifest carries no version.
const DefaultVersion = "0.0.1"

// Document is a manifest as read from disk. Raw holds the exact bytes so
// callers can restore them unchanged.
type Document struct {
	Path string
	Raw  []byte
}

// Read loads the manifest at path and checks that it is well-formed JSON.
func Read(path string) (*Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing manifest %s: invalid JSON", path)
	}
	return &Document{Path: path, Raw: data}, nil
}

// Exists reports whether a manifest file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Name returns the manifest's identifier.
func (d *Document) Name() string {
	return gjson.GetBytes(d.Raw, "name").String()
}

// Version returns the manifest's version, or DefaultVersion when absent.
func (d *Document) Version() string {
	if v := gjson.GetBytes(d.Raw, "version").String(); v != "" {
		return v
	}
	return DefaultVersion
}

// Get returns the raw value stored under a top-level or dotted key.
func (d *Document) Get(key string) gjson.Result {
	return gjson.GetBytes(d.Raw, key)
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
