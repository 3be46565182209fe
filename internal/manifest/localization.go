package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"
)

// Localization holds the translated strings an extension ships in
// package.nls.json. Empty fields mean no translation was provided.
type Localization struct {
	DisplayName string
	Description string
}

// ReadLocalization loads the overlay at path. A missing file yields an
// empty Localization; a malformed one is an error.
func ReadLocalization(path string) (*Localization, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Localization{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading localization %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing localization %s: invalid JSON", path)
	}

	return &Localization{
		DisplayName: nlsString(gjson.GetBytes(data, "displayName")),
		Description: nlsString(gjson.GetBytes(data, "description")),
	}, nil
}

// nlsString accepts both plain strings and {"message": "...", "comment": [...]}
// entries.
func nlsString(r gjson.Result) string {
	switch {
	case r.IsObject():
		return r.Get("message").String()
	case r.Type == gjson.String:
		return r.String()
	default:
		return ""
	}
}
