package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/simon/vigil/internal/clierr"
	"github.com/simon/vigil/internal/config"
	"github.com/simon/vigil/internal/logging"
)

// stderrTail is how much remote stderr is kept for error reports.
const stderrTail = 4096

// SSHExecutor runs tmux commands on a remote host through the ssh client.
type SSHExecutor struct {
	Program string // ssh binary, "ssh" when empty
	SSH     config.SSH
	TTY     bool // prepend -t for interactive commands unless the options decide

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (s *SSHExecutor) program() string {
	if s.Program == "" {
		return "ssh"
	}
	return s.Program
}

func (s *SSHExecutor) interactiveArgs(remoteCmd string) []string {
	var args []string
	if s.TTY && !s.SSH.HasTTYFlag() {
		args = append(args, "-t")
	}
	args = append(args, s.SSH.Options...)
	return append(args, s.SSH.Destination, remoteCmd)
}

func (s *SSHExecutor) captureArgs(remoteCmd string) []string {
	args := s.SSH.WithoutTTY()
	return append(args, s.SSH.Destination, remoteCmd)
}

// Run executes remoteCmd with stdin, stdout and stderr passed through. The
// tail of stderr is also kept for the returned error.
func (s *SSHExecutor) Run(ctx context.Context, verb Verb, remoteCmd string) error {
	args := s.interactiveArgs(remoteCmd)
	logging.Logger.Debug("running ssh", "verb", verb.String(), "program", s.program(), "args", args)

	tail := &tailBuffer{max: stderrTail}
	cmd := exec.CommandContext(ctx, s.program(), args...)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	if s.Stderr != nil {
		cmd.Stderr = io.MultiWriter(s.Stderr, tail)
	} else {
		cmd.Stderr = tail
	}

	if err := cmd.Run(); err != nil {
		return s.remoteError(verb, err, tail.String())
	}
	return nil
}

// Output executes remoteCmd without a tty and returns what it printed.
func (s *SSHExecutor) Output(ctx context.Context, verb Verb, remoteCmd string) (string, error) {
	args := s.captureArgs(remoteCmd)
	logging.Logger.Debug("running ssh (capture)", "verb", verb.String(), "program", s.program(), "args", args)

	var stdout bytes.Buffer
	tail := &tailBuffer{max: stderrTail}
	cmd := exec.CommandContext(ctx, s.program(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = tail

	if err := cmd.Run(); err != nil {
		return "", s.remoteError(verb, err, tail.String())
	}
	return stdout.String(), nil
}

func (s *SSHExecutor) remoteError(verb Verb, err error, stderr string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			code = 128 + int(ws.Signal())
		}
		return &clierr.RemoteExecError{Op: verb.String(), Code: code, Stderr: stderr}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return clierr.Wrap(clierr.CategoryConfig, fmt.Sprintf("%s not found in PATH", s.program()), err).
			WithSuggestion("install an OpenSSH client")
	}
	return fmt.Errorf("failed to run %s: %w", s.program(), err)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }
