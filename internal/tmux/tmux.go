package tmux

import (
	"fmt"
	"strings"

	"github.com/simon/vigil/internal/config"
	"github.com/simon/vigil/internal/session"
)

// Verb is a remote tmux operation.
type Verb int

const (
	CreateOrAttach Verb = iota
	List
	Attach
	Kill
)

func (v Verb) String() string {
	switch v {
	case CreateOrAttach:
		return "create-or-attach"
	case List:
		return "list"
	case Attach:
		return "attach"
	case Kill:
		return "kill"
	default:
		return fmt.Sprintf("verb(%d)", int(v))
	}
}

// Interactive reports whether the verb runs with the local terminal attached.
func (v Verb) Interactive() bool {
	return v != List
}

// command accumulates shell words for the remote side. Every word is quoted
// on the way in; there is no way to add an unquoted user value.
type command struct {
	words []string
}

func newCommand(tmuxPath string) *command {
	return &command{words: []string{quotePath(tmuxPath)}}
}

// sub adds a tmux subcommand or flag. Only called with constants.
func (c *command) sub(words ...string) *command {
	c.words = append(c.words, words...)
	return c
}

// arg adds a quoted value.
func (c *command) arg(values ...string) *command {
	for _, v := range values {
		c.words = append(c.words, shellQuote(v))
	}
	return c
}

func (c *command) String() string {
	return strings.Join(c.words, " ")
}

// Build returns the command line to run on the remote host for verb. name is
// ignored for List.
func Build(verb Verb, cfg config.Remote, name session.Name) (string, error) {
	if verb != List && name == "" {
		return "", fmt.Errorf("%s needs a session name", verb)
	}

	c := newCommand(cfg.TmuxPath)
	switch verb {
	case CreateOrAttach:
		// -A attaches when the session already exists, so this is one round trip.
		c.sub("new-session", "-A", "-s").arg(name.String()).arg(cfg.TmuxArgs...)
	case List:
		c.sub("list-sessions", "-F").arg(session.ListFormat)
	case Attach:
		c.sub("attach-session", "-t").arg(exactTarget(name))
	case Kill:
		c.sub("kill-session", "-t").arg(exactTarget(name))
	default:
		return "", fmt.Errorf("unknown verb %s", verb)
	}
	return c.String(), nil
}

// exactTarget disables tmux's prefix and pattern matching of session targets.
func exactTarget(name session.Name) string {
	return "=" + name.String()
}

// shellQuote wraps a string in single quotes, escaping any single quotes inside.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}

// quotePath quotes a binary path but leaves a leading "~/" bare so the remote
// shell still expands it.
func quotePath(p string) string {
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return "~/" + shellQuote(rest)
	}
	return shellQuote(p)
}
