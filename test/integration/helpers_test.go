//go:build integration

package integration_test

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/vsbuiltin/vsbuiltin/internal/config"
)

// testEnv holds paths to an isolated editor checkout and fake tool scripts.
type testEnv struct {
	Root       string // working root
	SourceDir  string // <root>/vscode, a real git repository
	BinDir     string // fake package manager and packager scripts
	PublishLog string // one line per publish call
}

// fakeYarn answers "yarn bin" and logs "yarn publish" together with the
// manifest name it saw.
const fakeYarn = `#!/bin/sh
case "$1" in
  bin) echo "$FAKE_BIN_DIR" ;;
  publish)
    name=$(sed -n 's/.*"name": *"\([^"]*\)".*/\1/p' package.json | head -n 1)
    echo "$name $*" >> "$FAKE_PUBLISH_LOG"
    case "$name" in *fail*) echo "403 Forbidden" >&2; exit 1 ;; esac
    ;;
  *) echo "unexpected yarn $*" >&2; exit 2 ;;
esac
`

// fakeVsce writes the manifest it saw as the "archive" so tests can check
// what the packager was given.
const fakeVsce = `#!/bin/sh
[ "$1" = "package" ] || exit 2
shift
out=""
while [ $# -gt 0 ]; do
  case "$1" in -o) out="$2"; shift ;; esac
  shift
done
name=$(basename "$PWD")
case "$name" in *fail*) echo "ERROR packaging $name" >&2; exit 1 ;; esac
[ -f README.md ] && [ -f LICENSE-vscode.txt ] || { echo "missing scratch files" >&2; exit 3; }
cp package.json "$out/$name.vsix"
`

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, tool := range []string{"git", "sh", "sed"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available: %v", tool, err)
		}
	}

	root := t.TempDir()
	env := &testEnv{
		Root:       root,
		SourceDir:  filepath.Join(root, "vscode"),
		BinDir:     filepath.Join(root, "node_modules", ".bin"),
		PublishLog: filepath.Join(root, "publish.log"),
	}

	writeExecutable(t, filepath.Join(env.BinDir, "yarn"), fakeYarn)
	writeExecutable(t, filepath.Join(env.BinDir, "vsce"), fakeVsce)
	t.Setenv("PATH", env.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("FAKE_BIN_DIR", env.BinDir)
	t.Setenv("FAKE_PUBLISH_LOG", env.PublishLog)

	writeFile(t, filepath.Join(env.SourceDir, "package.json"), `{"name":"code-oss-dev","version":"1.88.0"}`)
	writeFile(t, filepath.Join(env.SourceDir, "LICENSE.txt"), "MIT License\n")
	return env
}

// commit turns the source directory into a git repository with one commit.
func (e *testEnv) commit(t *testing.T) {
	t.Helper()
	for _, args := range [][]string{
		{"init", "-q"},
		{"add", "-A"},
		{"-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "-m", "init"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = e.SourceDir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
		}
	}
}

func (e *testEnv) addExtension(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.SourceDir, "extensions", name, "package.json")
	writeFile(t, path, content)
	return path
}

func (e *testEnv) settings() *config.Settings {
	return &config.Settings{
		Root:           e.Root,
		SourceDir:      e.SourceDir,
		ExtensionsDir:  filepath.Join(e.SourceDir, "extensions"),
		DistDir:        filepath.Join(e.Root, "dist"),
		PackageManager: "yarn",
		Packager:       "vsce",
		RepositoryURL:  "https://github.com/theia-ide/vscode-builtin-extensions",
		Scope:          "@theia/vscode-builtin-",
		PublishVersion: "0.2.1",
		SkipPrefixes:   []string{"ms-vscode"},
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	writeFile(t, path, content)
	if err := os.Chmod(path, 0755); err != nil {
		t.Fatal(err)
	}
}

func assertFileContent(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(got) != want {
		t.Errorf("%s changed:\n%s", path, got)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected %s to not exist", path)
	}
}
