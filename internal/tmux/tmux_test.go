package tmux

import (
	"testing"

	"github.com/anmitsu/go-shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon/vigil/internal/config"
	"github.com/simon/vigil/internal/session"
)

// words splits a built command the way the remote POSIX shell would.
func words(t *testing.T, cmd string) []string {
	t.Helper()
	w, err := shlex.Split(cmd, true)
	require.NoError(t, err, "command does not split: %s", cmd)
	return w
}

func remote(tmuxPath string, tmuxArgs ...string) config.Remote {
	return config.Remote{TmuxPath: tmuxPath, TmuxArgs: tmuxArgs, SSH: config.SSH{Destination: "host"}}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		verb Verb
		cfg  config.Remote
		want string
	}{
		{
			name: "create or attach",
			verb: CreateOrAttach,
			cfg:  remote("tmux"),
			want: `'tmux' new-session -A -s 'default-alice'`,
		},
		{
			name: "create or attach with extra args",
			verb: CreateOrAttach,
			cfg:  remote("tmux", "-x", "200", "-n", "main window"),
			want: `'tmux' new-session -A -s 'default-alice' '-x' '200' '-n' 'main window'`,
		},
		{
			name: "list",
			verb: List,
			cfg:  remote("tmux"),
			want: `'tmux' list-sessions -F '#{session_name}|#{session_attached}|#{session_created}'`,
		},
		{
			name: "attach",
			verb: Attach,
			cfg:  remote("/opt/tmux 3.4/bin/tmux"),
			want: `'/opt/tmux 3.4/bin/tmux' attach-session -t '=default-alice'`,
		},
		{
			name: "kill",
			verb: Kill,
			cfg:  remote("tmux"),
			want: `'tmux' kill-session -t '=default-alice'`,
		},
		{
			name: "home relative tmux",
			verb: Kill,
			cfg:  remote("~/bin/tmux"),
			want: `~/'bin/tmux' kill-session -t '=default-alice'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.verb, tt.cfg, "default-alice")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildNeedsName(t *testing.T) {
	for _, verb := range []Verb{CreateOrAttach, Attach, Kill} {
		_, err := Build(verb, remote("tmux"), "")
		assert.Error(t, err, verb.String())
	}

	_, err := Build(List, remote("tmux"), "")
	assert.NoError(t, err)

	_, err = Build(Verb(42), remote("tmux"), "x-alice")
	assert.Error(t, err)
}

func TestBuildExtraArgsCannotInject(t *testing.T) {
	hostile := []string{
		`"; rm -rf ~; echo "`,
		`a;b`,
		`$(reboot)`,
		"`id`",
		`it's`,
		`x' ; touch /tmp/pwned ; echo '`,
		`&& halt`,
	}

	for _, arg := range hostile {
		t.Run(arg, func(t *testing.T) {
			cmd, err := Build(CreateOrAttach, remote("tmux", arg), "default-alice")
			require.NoError(t, err)

			got := words(t, cmd)
			want := []string{"tmux", "new-session", "-A", "-s", "default-alice", arg}
			assert.Equal(t, want, got)
		})
	}
}

func TestBuildHostileTmuxPathAndName(t *testing.T) {
	path := `tmux"; echo pwned; "`
	cmd, err := Build(Kill, remote(path), session.Name("it's-alice"))
	require.NoError(t, err)
	assert.Equal(t, []string{path, "kill-session", "-t", "=it's-alice"}, words(t, cmd))
}

func TestBuildFromSplitTmuxArgs(t *testing.T) {
	extra, err := config.SplitArgs(`-n "a;b" -c '/tmp/x y'`)
	require.NoError(t, err)

	cmd, err := Build(CreateOrAttach, remote("tmux", extra...), "default-alice")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"tmux", "new-session", "-A", "-s", "default-alice", "-n", "a;b", "-c", "/tmp/x y"},
		words(t, cmd))
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, shellQuote("plain"))
	assert.Equal(t, `''`, shellQuote(""))
	assert.Equal(t, `'it'"'"'s'`, shellQuote("it's"))
}

func TestVerb(t *testing.T) {
	assert.Equal(t, "create-or-attach", CreateOrAttach.String())
	assert.Equal(t, "list", List.String())
	assert.False(t, List.Interactive())
	assert.True(t, Kill.Interactive())
	assert.True(t, Attach.Interactive())
}
