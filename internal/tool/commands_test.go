package tool

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	return f.output, f.err
}

func TestShortRevision(t *testing.T) {
	r := &fakeRunner{output: "abc1234\n"}
	rev, err := ShortRevision(context.Background(), r, "/src/vscode")
	if err != nil {
		t.Fatalf("ShortRevision: %v", err)
	}
	if rev != "abc1234" {
		t.Errorf("rev = %q, want abc1234", rev)
	}
	want := call{dir: "/src/vscode", name: "git", args: []string{"rev-parse", "--short", "HEAD"}}
	if !reflect.DeepEqual(r.calls, []call{want}) {
		t.Errorf("calls = %+v, want %+v", r.calls, want)
	}
}

func TestShortRevision_Errors(t *testing.T) {
	if _, err := ShortRevision(context.Background(), &fakeRunner{output: "  \n"}, "/src"); err == nil {
		t.Error("expected error for empty revision")
	}
	boom := errors.New("not a git repository")
	if _, err := ShortRevision(context.Background(), &fakeRunner{err: boom}, "/src"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestBinDir(t *testing.T) {
	r := &fakeRunner{output: "/work/node_modules/.bin\n"}
	dir, err := BinDir(context.Background(), r, "yarn", "/work")
	if err != nil {
		t.Fatalf("BinDir(yarn): %v", err)
	}
	if dir != "/work/node_modules/.bin" {
		t.Errorf("yarn bin = %q", dir)
	}
	if r.calls[0].name != "yarn" || !reflect.DeepEqual(r.calls[0].args, []string{"bin"}) {
		t.Errorf("unexpected call %+v", r.calls[0])
	}

	r = &fakeRunner{output: "/work\n"}
	dir, err = BinDir(context.Background(), r, "npm", "/work")
	if err != nil {
		t.Fatalf("BinDir(npm): %v", err)
	}
	if want := filepath.Join("/work", "node_modules", ".bin"); dir != want {
		t.Errorf("npm bin = %q, want %q", dir, want)
	}

	if _, err := BinDir(context.Background(), &fakeRunner{}, "pnpm", "/work"); err == nil {
		t.Error("expected error for unsupported package manager")
	}
}

func TestPackagerPath(t *testing.T) {
	if got := PackagerPath("/work/node_modules/.bin", "vsce"); got != filepath.Join("/work/node_modules/.bin", "vsce") {
		t.Errorf("PackagerPath(vsce) = %q", got)
	}
	if got := PackagerPath("/work/node_modules/.bin", "/opt/vsce/bin/vsce"); got != "/opt/vsce/bin/vsce" {
		t.Errorf("PackagerPath(absolute) = %q", got)
	}
}

func TestPackage(t *testing.T) {
	r := &fakeRunner{}
	if err := Package(context.Background(), r, "/bin/vsce", "yarn", "/ext/git", "/dist"); err != nil {
		t.Fatalf("Package: %v", err)
	}
	want := call{dir: "/ext/git", name: "/bin/vsce", args: []string{"package", "--yarn", "-o", "/dist"}}
	if !reflect.DeepEqual(r.calls[0], want) {
		t.Errorf("call = %+v, want %+v", r.calls[0], want)
	}

	if got := strings.Join(PackageArgs("npm", "/dist"), " "); got != "package -o /dist" {
		t.Errorf("PackageArgs(npm) = %q", got)
	}
}

func TestPublish(t *testing.T) {
	r := &fakeRunner{}
	if err := Publish(context.Background(), r, "yarn", "/ext/git"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := call{dir: "/ext/git", name: "yarn", args: []string{"publish", "--access", "public", "--ignore-scripts"}}
	if !reflect.DeepEqual(r.calls[0], want) {
		t.Errorf("call = %+v, want %+v", r.calls[0], want)
	}
}
