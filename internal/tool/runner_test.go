package tool

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}
}

func TestExecRunner_CapturesStdout(t *testing.T) {
	requireShell(t)
	r := &ExecRunner{}
	out, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo hello; echo ignored >&2")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "hello\n" {
		t.Errorf("stdout = %q, want %q", out, "hello\n")
	}
}

func TestExecRunner_WorkingDirectory(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker"), []byte("here"), 0644); err != nil {
		t.Fatal(err)
	}
	r := &ExecRunner{}
	out, err := r.Run(context.Background(), dir, "sh", "-c", "cat marker")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "here" {
		t.Errorf("stdout = %q, want %q", out, "here")
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	requireShell(t)
	r := &ExecRunner{}
	_, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo 'ERROR missing publisher' >&2; exit 42")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exitErr.ExitCode != 42 {
		t.Errorf("ExitCode = %d, want 42", exitErr.ExitCode)
	}
	if exitErr.Stderr != "ERROR missing publisher" {
		t.Errorf("Stderr = %q", exitErr.Stderr)
	}
	if !strings.Contains(err.Error(), "status 42") {
		t.Errorf("error message %q should mention the status", err.Error())
	}
}

func TestExecRunner_MissingProgram(t *testing.T) {
	r := &ExecRunner{}
	_, err := r.Run(context.Background(), t.TempDir(), "definitely-not-a-real-tool-xyz")
	if err == nil {
		t.Fatal("expected error for missing program")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Error("missing program should not be reported as an exit error")
	}
}

func TestExecRunner_StreamsToLogger(t *testing.T) {
	requireShell(t)
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := &ExecRunner{Logger: logger}

	if _, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo packaging; echo warn >&2"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	logged := buf.String()
	for _, want := range []string{"packaging", "warn"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output missing %q:\n%s", want, logged)
		}
	}
}

func TestLineLogger_SplitsLines(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	l := &lineLogger{logger: logger, prefix: "vsce"}

	_, _ = l.Write([]byte("first li"))
	if buf.Len() != 0 {
		t.Fatalf("partial line should not be logged yet: %q", buf.String())
	}
	_, _ = l.Write([]byte("ne\r\nsecond\n\n"))
	logged := buf.String()
	if !strings.Contains(logged, "first line") || !strings.Contains(logged, "second") {
		t.Errorf("unexpected log output: %q", logged)
	}
	if strings.Count(logged, "\n") != 2 {
		t.Errorf("expected 2 records, got %q", logged)
	}
}
