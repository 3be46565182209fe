//go:build integration

package integration_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
	"github.com/vsbuiltin/vsbuiltin/internal/archive"
	"github.com/vsbuiltin/vsbuiltin/internal/packaging"
	"github.com/vsbuiltin/vsbuiltin/internal/patch"
	"github.com/vsbuiltin/vsbuiltin/internal/republish"
	"github.com/vsbuiltin/vsbuiltin/internal/tool"
	"github.com/vsbuiltin/vsbuiltin/internal/version"
)

// TestPackageNextChannel runs the packaging flow against real processes:
// git for the revision, a fake yarn for the bin directory and a fake vsce
// that copies the manifest it was given into dist.
func TestPackageNextChannel(t *testing.T) {
	env := setupTestEnv(t)
	cssManifest := "{\n    \"name\": \"css-language-features\",\n    \"version\": \"1.0.0\"\n}\n"
	cssPath := env.addExtension(t, "css-language-features", cssManifest)
	failManifest := `{"name":"will-fail","version":"1.0.0"}`
	failPath := env.addExtension(t, "will-fail", failManifest)

	// Runtime patch inputs.
	writeFile(t, filepath.Join(env.SourceDir, "extensions", "node_modules", "typescript", "package.json"), `{"name":"typescript"}`)
	tsManifest := `{"name":"typescript-language-features","version":"1.0.0"}`
	env.addExtension(t, "typescript-language-features", tsManifest)
	entry := filepath.Join(env.SourceDir, "extensions", "typescript-language-features", patch.EntryFile)
	writeFile(t, entry, `x(`+patch.OriginalReference+`)`)

	env.commit(t)
	rev, err := exec.Command("git", "-C", env.SourceDir, "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		t.Fatal(err)
	}

	flow := &packaging.Flow{
		Settings: env.settings(),
		Runner:   &tool.ExecRunner{Logger: quietLogger()},
		Logger:   quietLogger(),
	}
	summary, err := flow.Run(context.Background(), version.Next, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "css-language-features: successfully packaged\n" +
		"typescript-language-features: successfully packaged\n" +
		"will-fail: failed to package"
	if got := summary.String(); got != want {
		t.Errorf("summary =\n%s\nwant\n%s", got, want)
	}

	vsix, err := os.ReadFile(filepath.Join(env.Root, "dist", "css-language-features.vsix"))
	if err != nil {
		t.Fatalf("reading packaged manifest: %v", err)
	}
	wantVersion := "1.89.0-next." + strings.TrimSpace(string(rev))
	if got := gjson.GetBytes(vsix, "version").String(); got != wantVersion {
		t.Errorf("packaged version = %q, want %q", got, wantVersion)
	}
	if !gjson.GetBytes(vsix, "preview").Bool() {
		t.Error("packaged manifest is not flagged as preview")
	}

	assertFileContent(t, cssPath, cssManifest)
	assertFileContent(t, failPath, failManifest)
	assertFileNotExists(t, filepath.Join(filepath.Dir(cssPath), "README.md"))
	assertFileNotExists(t, filepath.Join(filepath.Dir(cssPath), "LICENSE-vscode.txt"))

	patched, err := os.ReadFile(entry)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(patched), patch.PatchedReference) {
		t.Errorf("entry file not patched: %s", patched)
	}
	assertFileExists(t, filepath.Join(filepath.Dir(entry), "..", patch.LocalDepsDir, "typescript", "package.json"))
}

func TestRepublish(t *testing.T) {
	env := setupTestEnv(t)
	gitManifest := `{"name":"git","version":"1.0.0"}`
	gitPath := env.addExtension(t, "git", gitManifest)
	writeFile(t, filepath.Join(filepath.Dir(gitPath), "node_modules", "byline", "index.js"), "module.exports={}")
	env.addExtension(t, "ms-vscode.node-debug", `{"name":"node-debug","version":"1.0.0"}`)
	env.addExtension(t, "will-fail", `{"name":"will-fail","version":"1.0.0"}`)

	flow := &republish.Flow{
		Settings: env.settings(),
		Runner:   &tool.ExecRunner{Logger: quietLogger()},
		Logger:   quietLogger(),
	}
	summary, err := flow.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "@theia/vscode-builtin-git: successfully published\n" +
		"@theia/vscode-builtin-will-fail: failed to publish"
	if got := summary.String(); got != want {
		t.Errorf("summary =\n%s\nwant\n%s", got, want)
	}

	assertFileContent(t, gitPath, gitManifest)
	assertFileExists(t, filepath.Join(filepath.Dir(gitPath), archive.ArchiveName))

	published, err := os.ReadFile(env.PublishLog)
	if err != nil {
		t.Fatalf("reading publish log: %v", err)
	}
	if !strings.Contains(string(published), "@theia/vscode-builtin-git publish --access public --ignore-scripts") {
		t.Errorf("publish log = %q", published)
	}
	if strings.Contains(string(published), "node-debug") {
		t.Error("skipped extension was published")
	}
}
