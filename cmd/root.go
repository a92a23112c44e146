package cmd

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simon/vigil/internal/clierr"
	"github.com/simon/vigil/internal/config"
	"github.com/simon/vigil/internal/dispatch"
	"github.com/simon/vigil/internal/logging"
	"github.com/simon/vigil/internal/session"
	"github.com/simon/vigil/internal/tmux"
)

// chooseInteractively is what splitArgs passes for --attach/--select/--kill
// given without a NAME. argv strings cannot contain NUL, so no typed value
// collides with it.
const chooseInteractively = "\x00"

var (
	flagSession  string
	flagTmux     string
	flagTmuxArgs string
	flagAttach   string
	flagSelect   string
	flagKill     string
	flagList     bool
	flagDebug    bool
	flagOutput   string

	// passthrough holds the arguments for ssh, split off by Execute.
	passthrough []string
	localUser   string
)

func SetVersionInfo(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
}

var rootCmd = &cobra.Command{
	Use:   "vigil [flags] [ssh options] [user@]host",
	Short: "Persistent remote tmux sessions over SSH",
	Long: `vigil attaches to a tmux session on a remote host, creating it first if
needed. Sessions are named <session>-<local user> so several people can share
one account without stepping on each other.

Any argument vigil does not know is handed to ssh.`,
	Example: `  vigil user@host                 create or attach to default-$USER
  vigil --session work user@host  create or attach to work-$USER
  vigil --list user@host          list your sessions
  vigil --attach user@host        pick a session to attach to
  vigil --kill work user@host     kill work-$USER
  vigil user@host -p 2222 -A      pass options to ssh`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Initialize(flagDebug, cmd.ErrOrStderr())

		if flagOutput != session.FormatText && flagOutput != session.FormatYAML {
			return clierr.InvalidArgs(fmt.Sprintf("unknown --output %q (want text or yaml)", flagOutput))
		}

		op, err := operationFromFlags(cmd)
		if err != nil {
			return err
		}
		if op.Verb != tmux.List {
			if _, err := session.Resolve(flagSession, localUser); err != nil {
				return err
			}
		}

		remote, err := config.New(flagTmux, flagTmuxArgs, passthrough)
		if err != nil {
			return err
		}

		logging.Logger.Debug("parsed arguments", "operation", op.String(), "ssh_options", remote.SSH.Options, "user", localUser)

		runner := &tmux.SSHExecutor{
			SSH:    remote.SSH,
			TTY:    term.IsTerminal(int(os.Stdin.Fd())),
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		}

		d := &dispatch.Dispatcher{
			Remote: remote,
			Base:   flagSession,
			User:   localUser,
			Runner: runner,
			Format: flagOutput,
			In:     os.Stdin,
			Out:    cmd.OutOrStdout(),
			Err:    cmd.ErrOrStderr(),
		}
		return d.Dispatch(cmd.Context(), op)
	},
}

// operationFromFlags picks the verb. --list wins over --kill, which wins
// over --attach/--select.
func operationFromFlags(cmd *cobra.Command) (dispatch.Operation, error) {
	flags := cmd.Flags()
	switch {
	case flagList:
		return dispatch.Operation{Verb: tmux.List}, nil
	case flags.Changed("kill"):
		return optionalOperation(tmux.Kill, flagKill)
	case flags.Changed("attach"):
		return optionalOperation(tmux.Attach, flagAttach)
	case flags.Changed("select"):
		return optionalOperation(tmux.Attach, flagSelect)
	default:
		return dispatch.Operation{Verb: tmux.CreateOrAttach}, nil
	}
}

// optionalOperation maps the value of an optional NAME flag to an
// Operation. An empty Name in the result means choose from a list, so a
// NAME typed as "" is rejected here.
func optionalOperation(verb tmux.Verb, value string) (dispatch.Operation, error) {
	switch value {
	case chooseInteractively:
		return dispatch.Operation{Verb: verb}, nil
	case "":
		return dispatch.Operation{}, clierr.InvalidName(value, "session name is empty")
	default:
		return dispatch.Operation{Verb: verb, Name: value}, nil
	}
}

// currentUsername reads the OS user once at startup.
func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return os.Getenv("LOGNAME")
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagSession, "session", session.DefaultBase, "base session name (suffixed with the local user)")
	flags.StringVar(&flagTmux, "tmux", config.DefaultTmux, "tmux binary on the remote host")
	flags.StringVar(&flagTmuxArgs, "tmuxargs", "", "extra arguments for tmux new-session")
	flags.StringVar(&flagAttach, "attach", "", "attach to session `NAME`; choose from a list when NAME is omitted")
	flags.StringVar(&flagSelect, "select", "", "alias for --attach")
	flags.StringVar(&flagKill, "kill", "", "kill session `NAME`; choose from a list when NAME is omitted")
	flags.BoolVar(&flagList, "list", false, "list your sessions on the remote host and exit")
	flags.BoolVar(&flagDebug, "debug", false, "print debug logs to stderr")
	flags.StringVar(&flagOutput, "output", session.FormatText, "list output format: text or yaml")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierr.InvalidArgs(err.Error()).WithSuggestion("vigil --help")
	})
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, clierr.Format(err))
		return clierr.ExitCode(err)
	}
	return 0
}

func run(args []string) error {
	own, pass := splitArgs(args)
	passthrough = pass
	localUser = session.SanitizeUser(currentUsername())

	rootCmd.SetArgs(own)
	return rootCmd.Execute()
}
