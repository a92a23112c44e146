// Package dispatch turns one parsed command line into remote tmux calls over
// ssh. Every invocation re-queries the remote host; nothing is kept between
// runs.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/simon/vigil/internal/clierr"
	"github.com/simon/vigil/internal/config"
	"github.com/simon/vigil/internal/logging"
	"github.com/simon/vigil/internal/prompt"
	"github.com/simon/vigil/internal/session"
	"github.com/simon/vigil/internal/tmux"
)

// Operation is what the command line asked for. Name is only meaningful
// for Attach and Kill; empty means choose interactively.
type Operation struct {
	Verb tmux.Verb
	Name string
}

func (o Operation) String() string {
	if o.Name == "" {
		return o.Verb.String()
	}
	return o.Verb.String() + " " + o.Name
}

// State is a step of a dispatch.
type State int

const (
	ParsedArgs State = iota
	Resolved
	Executing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case ParsedArgs:
		return "parsed-args"
	case Resolved:
		return "resolved"
	case Executing:
		return "executing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatcher runs one Operation against one remote host.
type Dispatcher struct {
	Remote config.Remote
	Base   string // base session name; empty is rejected by Resolve
	User   string // local user, read once at startup
	Runner tmux.Runner
	Format string // list output format

	In  io.Reader // interactive selection input
	Out io.Writer // list output
	Err io.Writer // prompts and status messages

	state State
}

// State returns where the last Dispatch got to.
func (d *Dispatcher) State() State { return d.state }

func (d *Dispatcher) transition(s State) {
	logging.Logger.Debug("dispatch state", "from", d.state.String(), "to", s.String())
	d.state = s
}

// Dispatch carries out op. A non-zero remote exit comes back as a
// *clierr.RemoteExecError carrying the subprocess status.
func (d *Dispatcher) Dispatch(ctx context.Context, op Operation) (err error) {
	d.state = ParsedArgs
	defer func() {
		if err != nil {
			d.transition(Failed)
		} else {
			d.transition(Done)
		}
	}()

	logging.Logger.Debug("dispatching", "operation", op.String(), "destination", d.Remote.SSH.Destination, "user", d.User)

	if op.Verb == tmux.List {
		return d.list(ctx)
	}

	verb, name, err := d.resolve(ctx, op)
	if err != nil {
		return err
	}
	d.transition(Resolved)
	logging.Logger.Debug("resolved session", "verb", verb.String(), "session", name.String())

	remoteCmd, err := tmux.Build(verb, d.Remote, name)
	if err != nil {
		return err
	}

	d.transition(Executing)
	logging.Logger.Debug("remote command", "command", remoteCmd)
	if err := d.Runner.Run(ctx, verb, remoteCmd); err != nil {
		return err
	}

	if verb == tmux.Kill {
		d.status("Killed session '%s'.", session.Display(name, d.User))
	}
	return nil
}

// resolve decides the verb actually sent and the session it targets.
func (d *Dispatcher) resolve(ctx context.Context, op Operation) (tmux.Verb, session.Name, error) {
	switch op.Verb {
	case tmux.CreateOrAttach:
		name, err := session.Resolve(d.Base, d.User)
		return tmux.CreateOrAttach, name, err

	case tmux.Attach, tmux.Kill:
		if op.Name != "" {
			name, err := session.Qualify(op.Name, d.User)
			return op.Verb, name, err
		}

		records, err := d.fetch(ctx)
		if err != nil {
			return op.Verb, "", err
		}

		action := "attach to"
		if op.Verb == tmux.Kill {
			action = "kill"
		}
		rec, err := prompt.Select(d.input(), d.errOut(), action, records)
		if err == nil {
			return op.Verb, rec.Name, nil
		}
		if op.Verb == tmux.Attach && errors.Is(err, clierr.ErrNoSessions) {
			name, rerr := session.Resolve(d.Base, d.User)
			if rerr != nil {
				return op.Verb, "", rerr
			}
			d.status("No tmux sessions found remotely; will create/attach to '%s'.", session.Display(name, d.User))
			return tmux.CreateOrAttach, name, nil
		}
		if errors.Is(err, clierr.ErrNoSessions) {
			return op.Verb, "", clierr.NoSessions(d.User, d.Remote.SSH.Destination)
		}
		return op.Verb, "", err

	default:
		return op.Verb, "", fmt.Errorf("unsupported operation %s", op)
	}
}

func (d *Dispatcher) list(ctx context.Context) error {
	d.transition(Resolved)
	d.transition(Executing)
	records, err := d.fetch(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 && d.Format != session.FormatYAML {
		d.status("No tmux sessions for %s found on %s.", d.User, d.Remote.SSH.Destination)
		return nil
	}
	out := d.Out
	if out == nil {
		out = io.Discard
	}
	return session.Render(out, d.Format, records)
}

// fetch runs the list round trip and parses the result.
func (d *Dispatcher) fetch(ctx context.Context) ([]session.Record, error) {
	remoteCmd, err := tmux.Build(tmux.List, d.Remote, "")
	if err != nil {
		return nil, err
	}

	logging.Logger.Debug("remote command", "command", remoteCmd)
	out, err := d.Runner.Output(ctx, tmux.List, remoteCmd)
	if err != nil {
		if noServer(err) {
			logging.Logger.Debug("no tmux server on remote host")
			return nil, nil
		}
		return nil, err
	}

	records := session.Parse(out, d.User)
	logging.Logger.Debug("listed sessions", "count", len(records))
	return records, nil
}

// noServer reports a list failure that only means tmux has no sessions.
func noServer(err error) bool {
	var remote *clierr.RemoteExecError
	if !errors.As(err, &remote) || remote.Code != 1 {
		return false
	}
	msg := remote.Stderr
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "error connecting to") ||
		strings.Contains(msg, "no sessions")
}

func (d *Dispatcher) input() io.Reader {
	if d.In == nil {
		return strings.NewReader("")
	}
	return d.In
}

func (d *Dispatcher) errOut() io.Writer {
	if d.Err == nil {
		return io.Discard
	}
	return d.Err
}

func (d *Dispatcher) status(format string, args ...any) {
	fmt.Fprintf(d.errOut(), "[vigil] "+format+"\n", args...)
}
