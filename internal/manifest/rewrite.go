package manifest

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Values written into every bundled manifest.
const (
	BuiltinSuffix    = " (built-in)"
	BuiltinKeyword   = "Built-in"
	LicenseFileName  = "LICENSE-vscode.txt"
	LicenseReference = "SEE LICENSE IN " + LicenseFileName
)

// Transform computes a new manifest from the raw bytes of the old one.
// Implementations must not touch the filesystem.
type Transform func(raw []byte) ([]byte, error)

// Repository is the repository reference written into bundled manifests.
type Repository struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// BundledOptions configures BundledRewrite.
type BundledOptions struct {
	// DirName is the extension's directory name, used for generated display names.
	DirName       string
	Version       string
	RepositoryURL string
	Preview       bool
	Localization  *Localization
}

type edit struct {
	key   string
	value any
}

// BundledRewrite returns a Transform that marks a manifest as a bundled
// variant. The name field is never changed: other manifests find this
// extension by it.
func BundledRewrite(opts BundledOptions) Transform {
	return func(raw []byte) ([]byte, error) {
		if err := validateInput(raw); err != nil {
			return nil, err
		}

		nls := opts.Localization
		if nls == nil {
			nls = &Localization{}
		}
		name := gjson.GetBytes(raw, "name").String()

		edits := []edit{
			{"displayName", DisplayName(opts.DirName, nls)},
			{"description", Description(name, nls)},
			{"keywords", []string{BuiltinKeyword}},
			{"repository", Repository{Type: "git", URL: opts.RepositoryURL}},
			{"version", opts.Version},
			{"license", LicenseReference},
			// Keeps the packager from running prepublish hooks.
			{"scripts", map[string]string{}},
		}
		if opts.Preview {
			edits = append(edits, edit{"preview", true})
		}

		out, err := applyEdits(raw, edits)
		if err != nil {
			return nil, err
		}
		if got := gjson.GetBytes(out, "name").String(); got != name {
			return nil, fmt.Errorf("rewrite changed manifest name from %q to %q", name, got)
		}
		return finish(out)
	}
}

// RepublishRewrite returns a Transform that moves a manifest under the
// registry scope and pins its version for publishing.
func RepublishRewrite(scope, version string) Transform {
	return func(raw []byte) ([]byte, error) {
		if err := validateInput(raw); err != nil {
			return nil, err
		}
		name := gjson.GetBytes(raw, "name").String()

		out, err := applyEdits(raw, []edit{
			{"name", ScopedName(scope, name)},
			{"version", version},
		})
		if err != nil {
			return nil, err
		}
		return finish(out)
	}
}

// ScopedName prefixes name with the registry scope.
func ScopedName(scope, name string) string {
	return scope + name
}

// DisplayName prefers the localized display name and falls back to one
// generated from the directory name.
func DisplayName(dirName string, nls *Localization) string {
	if nls != nil && nls.DisplayName != "" {
		return nls.DisplayName + BuiltinSuffix
	}
	return cases.Title(language.English).String(strings.ReplaceAll(dirName, "-", " ")) + BuiltinSuffix
}

// Description prefers the localized description and falls back to a
// generated sentence naming the extension.
func Description(name string, nls *Localization) string {
	if nls != nil && nls.Description != "" {
		return nls.Description
	}
	return "Built-in extension that adds (potentially basic) support for " + capitalize(name)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + cases.Lower(language.English).String(s[size:])
}

func applyEdits(raw []byte, edits []edit) ([]byte, error) {
	out := append([]byte(nil), raw...)
	for _, e := range edits {
		var err error
		out, err = sjson.SetBytes(out, e.key, e.value)
		if err != nil {
			return nil, fmt.Errorf("setting manifest field %q: %w", e.key, err)
		}
	}
	return out, nil
}

// finish re-indents the edited document and validates it.
func finish(out []byte) ([]byte, error) {
	out = pretty.PrettyOptions(out, &pretty.Options{Width: 80, Indent: "  "})
	res, err := Validate(out)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, &InvalidError{Stage: "rewritten", Issues: res.Issues}
	}
	return out, nil
}

func validateInput(raw []byte) error {
	res, err := Validate(raw)
	if err != nil {
		return err
	}
	if !res.Valid {
		return &InvalidError{Stage: "original", Issues: res.Issues}
	}
	return nil
}
