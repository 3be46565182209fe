package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func zipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer r.Close()

	entries := make(map[string]string)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

func TestDependencies(t *testing.T) {
	ext := t.TempDir()
	writeFile(t, filepath.Join(ext, DepsDir, "vscode-nls", "package.json"), `{"name":"vscode-nls"}`)
	writeFile(t, filepath.Join(ext, DepsDir, "vscode-nls", "lib", "main.js"), "module.exports={}")
	writeFile(t, filepath.Join(ext, DepsDir, ".yarn-integrity"), "{}")

	path, err := Dependencies(context.Background(), ext)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if path != filepath.Join(ext, ArchiveName) {
		t.Errorf("path = %q", path)
	}

	entries := zipEntries(t, path)
	var names []string
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{".yarn-integrity", "vscode-nls/lib/main.js", "vscode-nls/package.json"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if entries["vscode-nls/lib/main.js"] != "module.exports={}" {
		t.Errorf("main.js content = %q", entries["vscode-nls/lib/main.js"])
	}
}

func TestDependencies_NoDeps(t *testing.T) {
	ext := t.TempDir()
	_, err := Dependencies(context.Background(), ext)
	if !errors.Is(err, ErrNoDeps) {
		t.Fatalf("expected ErrNoDeps, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(ext, ArchiveName)); err == nil {
		t.Error("archive should not be created")
	}
}

func TestDir_MissingSource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.zip")
	if err := Dir(context.Background(), filepath.Join(t.TempDir(), "missing"), dest); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(dest); err == nil {
		t.Error("partial archive should not exist")
	}
}

func TestDir_CancelledContextRemovesOutput(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a", "index.js"), "x")
	dest := filepath.Join(t.TempDir(), "out.zip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Dir(ctx, src, dest); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(dest); err == nil {
		t.Error("partial archive should be removed")
	}
}

func TestSkipped(t *testing.T) {
	tests := []struct {
		name     string
		prefixes []string
		want     bool
	}{
		{"ms-vscode.js-debug", []string{"ms-vscode"}, true},
		{"git", []string{"ms-vscode"}, false},
		{"git", nil, false},
		{"git", []string{""}, false},
		{"emmet", []string{"ms-vscode", "emmet"}, true},
	}
	for _, tt := range tests {
		if got := Skipped(tt.name, tt.prefixes); got != tt.want {
			t.Errorf("Skipped(%q, %v) = %v, want %v", tt.name, tt.prefixes, got, tt.want)
		}
	}
}
