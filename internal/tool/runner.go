package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Runner executes an external program in dir and returns its stdout.
// A non-zero exit is reported as an error.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExitError reports a program that ran and exited with a non-zero status.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// ExecRunner runs programs with os/exec. Output is captured and, when a
// logger is set, also streamed to it line by line at debug level.
type ExecRunner struct {
	Logger *log.Logger
}

// Run executes name with args in dir and waits for it. There is no timeout;
// only ctx cancellation stops the process early.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if r.Logger != nil {
		cmd.Stdout = io.MultiWriter(&stdoutBuf, &lineLogger{logger: r.Logger, prefix: name})
		cmd.Stderr = io.MultiWriter(&stderrBuf, &lineLogger{logger: r.Logger, prefix: name})
		r.Logger.Debug("running", "cmd", commandLine(name, args), "dir", dir)
	}

	err := cmd.Run()
	if err == nil {
		return stdoutBuf.String(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdoutBuf.String(), &ExitError{
			Command:  commandLine(name, args),
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderrBuf.String()),
		}
	}
	return stdoutBuf.String(), fmt.Errorf("running %s: %w", commandLine(name, args), err)
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// lineLogger forwards complete lines written to it as debug records.
type lineLogger struct {
	logger *log.Logger
	prefix string
	buf    []byte
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.buf = append(l.buf, p...)
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimRight(string(l.buf[:i]), "\r"); line != "" {
			l.logger.Debug(line, "tool", l.prefix)
		}
		l.buf = l.buf[i+1:]
	}
	return len(p), nil
}
