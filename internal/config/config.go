// Package config builds the per-invocation remote configuration from the
// command line. vigil has no configuration file of its own; ssh still reads
// its usual ~/.ssh/config.
package config

import (
	"strings"

	"github.com/anmitsu/go-shlex"

	"github.com/simon/vigil/internal/clierr"
)

// DefaultTmux is the remote tmux binary when --tmux is not given.
const DefaultTmux = "tmux"

// SSH is the normalized ssh invocation: options first, then the destination.
type SSH struct {
	Options     []string
	Destination string
}

// Remote holds everything needed to build and run remote commands. It is
// not modified after New returns.
type Remote struct {
	TmuxPath string
	TmuxArgs []string // extra arguments for tmux new-session
	SSH      SSH
}

// New validates and assembles a Remote from raw flag values and the
// arguments meant for ssh.
func New(tmuxPath, tmuxArgs string, sshArgs []string) (Remote, error) {
	if tmuxPath == "" {
		tmuxPath = DefaultTmux
	}
	if strings.ContainsAny(tmuxPath, "\x00\n") {
		return Remote{}, clierr.InvalidArgs("--tmux must be a single path")
	}

	extra, err := SplitArgs(tmuxArgs)
	if err != nil {
		return Remote{}, err
	}

	ssh, err := ParseSSHArgs(sshArgs)
	if err != nil {
		return Remote{}, err
	}

	return Remote{
		TmuxPath: tmuxPath,
		TmuxArgs: extra,
		SSH:      ssh,
	}, nil
}

// SplitArgs splits --tmuxargs the way a POSIX shell would split words.
func SplitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	words, err := shlex.Split(s, true)
	if err != nil {
		return nil, clierr.InvalidArgs("cannot split --tmuxargs").
			WithSuggestion("balance the quotes in --tmuxargs, e.g. --tmuxargs \"-n 'my window'\"")
	}
	return words, nil
}

// sshValueFlags are the ssh options that take a separate value.
const sshValueFlags = "BbcDEeFIiJLlmOoPpQRSWw"

// ParseSSHArgs moves ssh options in front of the destination so the remote
// command can follow it. Exactly one destination is required.
func ParseSSHArgs(args []string) (SSH, error) {
	var out SSH
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			continue
		}
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			out.Options = append(out.Options, arg)
			if TakesValue(arg) {
				if i+1 >= len(args) {
					return SSH{}, clierr.InvalidArgs("ssh option " + arg + " needs a value")
				}
				i++
				out.Options = append(out.Options, args[i])
			}
			continue
		}
		if out.Destination != "" {
			return SSH{}, clierr.InvalidArgs("unexpected argument " + arg + " after destination " + out.Destination)
		}
		out.Destination = arg
	}

	if out.Destination == "" {
		return SSH{}, clierr.InvalidArgs("missing destination").
			WithSuggestion("vigil [flags] [user@]host")
	}
	return out, nil
}

// TakesValue reports whether an option cluster such as "-p" or "-vp" ends in
// a letter whose value is the next argument.
func TakesValue(opt string) bool {
	if strings.HasPrefix(opt, "--") {
		return false
	}
	flags := opt[1:]
	for i, c := range flags {
		if strings.ContainsRune(sshValueFlags, c) {
			// "-p2222" carries its value inline.
			return i == len(flags)-1
		}
	}
	return false
}

// HasTTYFlag reports whether the options already decide tty allocation.
func (s SSH) HasTTYFlag() bool {
	for _, o := range s.Options {
		if o == "-t" || o == "-tt" || o == "-T" {
			return true
		}
	}
	return false
}

// WithoutTTY returns the options with -t and -tt removed.
func (s SSH) WithoutTTY() []string {
	out := make([]string, 0, len(s.Options))
	for _, o := range s.Options {
		if o == "-t" || o == "-tt" {
			continue
		}
		out = append(out, o)
	}
	return out
}
