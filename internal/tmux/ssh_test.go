package tmux

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon/vigil/internal/clierr"
	"github.com/simon/vigil/internal/config"
)

func TestSSHExecutorArgs(t *testing.T) {
	s := &SSHExecutor{
		SSH: config.SSH{Options: []string{"-p", "2222"}, Destination: "alice@host"},
		TTY: true,
	}

	assert.Equal(t, []string{"-t", "-p", "2222", "alice@host", "CMD"}, s.interactiveArgs("CMD"))
	assert.Equal(t, []string{"-p", "2222", "alice@host", "CMD"}, s.captureArgs("CMD"))
	assert.Equal(t, "ssh", s.program())
}

func TestSSHExecutorArgsRespectsExplicitTTYFlags(t *testing.T) {
	s := &SSHExecutor{
		SSH: config.SSH{Options: []string{"-tt", "-A"}, Destination: "host"},
		TTY: true,
	}
	assert.Equal(t, []string{"-tt", "-A", "host", "CMD"}, s.interactiveArgs("CMD"))
	assert.Equal(t, []string{"-A", "host", "CMD"}, s.captureArgs("CMD"))

	s = &SSHExecutor{SSH: config.SSH{Destination: "host"}}
	assert.Equal(t, []string{"host", "CMD"}, s.interactiveArgs("CMD"))
}

// shExecutor uses sh in place of ssh: "sh -c SCRIPT CMD" runs SCRIPT with the
// remote command as $0.
func shExecutor(t *testing.T, script string, stderr *bytes.Buffer) *SSHExecutor {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return &SSHExecutor{
		Program: "sh",
		SSH:     config.SSH{Options: []string{"-c"}, Destination: script},
		Stderr:  stderr,
	}
}

func TestSSHExecutorRunPropagatesExitCode(t *testing.T) {
	var stderr bytes.Buffer
	s := shExecutor(t, `echo "can't find session: badname-alice" >&2; exit 1`, &stderr)

	err := s.Run(context.Background(), Kill, "ignored")
	require.Error(t, err)

	var remoteErr *clierr.RemoteExecError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, 1, remoteErr.Code)
	assert.Equal(t, "kill", remoteErr.Op)
	assert.Contains(t, remoteErr.Stderr, "can't find session: badname-alice")

	// The terminal still saw the message.
	assert.Contains(t, stderr.String(), "can't find session")
}

func TestSSHExecutorRunSuccess(t *testing.T) {
	var stdout bytes.Buffer
	s := shExecutor(t, `echo attached`, nil)
	s.Stdout = &stdout

	require.NoError(t, s.Run(context.Background(), Attach, "ignored"))
	assert.Equal(t, "attached\n", stdout.String())
}

func TestSSHExecutorOutput(t *testing.T) {
	s := shExecutor(t, `printf 'default-alice|1|100\n'; echo warning >&2`, nil)

	out, err := s.Output(context.Background(), List, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "default-alice|1|100\n", out)
}

func TestSSHExecutorOutputFailure(t *testing.T) {
	s := shExecutor(t, `echo "no server running on /tmp/tmux-1000/default" >&2; exit 1`, nil)

	_, err := s.Output(context.Background(), List, "ignored")
	var remoteErr *clierr.RemoteExecError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, 1, remoteErr.Code)
	assert.Contains(t, remoteErr.Stderr, "no server running")
}

func TestSSHExecutorMissingProgram(t *testing.T) {
	s := &SSHExecutor{Program: "vigil-test-no-such-ssh", SSH: config.SSH{Destination: "host"}}

	err := s.Run(context.Background(), Attach, "cmd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.Equal(t, clierr.ExitLocal, clierr.ExitCode(err))
}

func TestTailBuffer(t *testing.T) {
	tb := &tailBuffer{max: 8}
	_, _ = tb.Write([]byte("hello "))
	_, _ = tb.Write([]byte("world"))
	assert.Equal(t, "lo world", tb.String())

	tb = &tailBuffer{max: 4096}
	_, _ = tb.Write([]byte(strings.Repeat("x", 5000)))
	assert.Len(t, tb.String(), 4096)
}
