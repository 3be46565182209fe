package packaging

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/vsbuiltin/vsbuiltin/internal/manifest"
)

const readmeFileName = "README.md"

//go:embed templates/README.md.tmpl
var templateFS embed.FS

var readmeTemplate = template.Must(template.ParseFS(templateFS, "templates/README.md.tmpl"))

type readmeData struct {
	Extension     string
	LicenseFile   string
	RepositoryURL string
}

// Readme renders the README shipped inside a packaged extension.
func Readme(extension, repositoryURL string) ([]byte, error) {
	var buf bytes.Buffer
	err := readmeTemplate.Execute(&buf, readmeData{
		Extension:     extension,
		LicenseFile:   manifest.LicenseFileName,
		RepositoryURL: repositoryURL,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering README for %s: %w", extension, err)
	}
	return buf.Bytes(), nil
}
