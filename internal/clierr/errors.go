// Package clierr defines the error taxonomy surfaced to the user and maps
// errors to process exit codes.
package clierr

import (
	"errors"
	"fmt"
	"strings"
)

// ExitLocal is the exit status for local precondition failures: bad names,
// bad selections, missing sessions, unusable arguments.
const ExitLocal = 2

// Category groups errors for consistent formatting.
type Category int

const (
	// CategoryUsage indicates bad arguments or bad interactive input.
	CategoryUsage Category = iota
	// CategoryNotFound indicates nothing was there to act on.
	CategoryNotFound
	// CategoryConfig indicates a local setup problem (e.g. no ssh binary).
	CategoryConfig
	// CategoryRemote indicates the remote side failed.
	CategoryRemote
)

// Kinds of local failure. Use errors.Is to test for them.
var (
	ErrInvalidName      = errors.New("invalid session name")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNoSessions       = errors.New("no sessions")
	ErrInvalidArgs      = errors.New("invalid arguments")
)

// CLIError is an error with context for CLI display.
type CLIError struct {
	Category   Category
	Kind       error
	Message    string
	Suggestion string
	Cause      error
}

func (e *CLIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *CLIError) Unwrap() error { return e.Cause }

// Is reports whether target is the error's Kind.
func (e *CLIError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// WithSuggestion adds a hint for how to fix the error.
func (e *CLIError) WithSuggestion(s string) *CLIError {
	e.Suggestion = s
	return e
}

// Local reports whether the error can be fixed by rerunning with different
// arguments, as opposed to a remote or network failure.
func (e *CLIError) Local() bool {
	return e.Category != CategoryRemote
}

// InvalidName reports a session or base name that cannot be used.
func InvalidName(name, reason string) *CLIError {
	return &CLIError{
		Category:   CategoryUsage,
		Kind:       ErrInvalidName,
		Message:    fmt.Sprintf("invalid session name %q: %s", name, reason),
		Suggestion: "use only letters, digits, hyphens and underscores",
	}
}

// InvalidSelection reports interactive input that does not pick a session.
func InvalidSelection(input string, max int) *CLIError {
	return &CLIError{
		Category:   CategoryUsage,
		Kind:       ErrInvalidSelection,
		Message:    fmt.Sprintf("invalid selection %q: enter a number between 1 and %d", input, max),
		Suggestion: "rerun and pick a listed number, or pass the session name explicitly",
	}
}

// NoSessions reports an empty listing where a selection was required.
func NoSessions(user, host string) *CLIError {
	return &CLIError{
		Category:   CategoryNotFound,
		Kind:       ErrNoSessions,
		Message:    fmt.Sprintf("no tmux sessions for %s on %s", user, host),
		Suggestion: "vigil " + host + " (creates the default session)",
	}
}

// InvalidArgs reports arguments that cannot be turned into a remote call.
func InvalidArgs(message string) *CLIError {
	return &CLIError{
		Category: CategoryUsage,
		Kind:     ErrInvalidArgs,
		Message:  message,
	}
}

// Wrap attaches CLI context to an existing error.
func Wrap(category Category, message string, cause error) *CLIError {
	return &CLIError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

// RemoteExecError is a non-zero exit of the ssh subprocess. Connection
// failures and tmux failures are not told apart; Stderr is the diagnostic.
type RemoteExecError struct {
	Op     string
	Code   int
	Stderr string
}

func (e *RemoteExecError) Error() string {
	msg := fmt.Sprintf("%s failed with exit status %d", e.Op, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

const tmuxInstallHint = `tmux may not be installed on the remote host:
  - Debian/Ubuntu: sudo apt-get install tmux
  - RHEL/CentOS/Fedora: sudo dnf install tmux
  - macOS (Homebrew): brew install tmux
or point --tmux at the remote binary`

// Suggestion returns a hint for well-known exit statuses.
func (e *RemoteExecError) Suggestion() string {
	switch e.Code {
	case 127:
		return tmuxInstallHint
	case 255:
		return "check that the host is reachable with plain ssh"
	}
	return ""
}

// Format returns a user-facing message. Local failures and remote failures
// get different prefixes.
func Format(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	var remote *RemoteExecError
	var cliErr *CLIError
	switch {
	case errors.As(err, &remote):
		sb.WriteString("Remote error: ")
		sb.WriteString(remote.Error())
		if s := remote.Suggestion(); s != "" {
			sb.WriteString("\n\nTry: ")
			sb.WriteString(s)
		}
	case errors.As(err, &cliErr):
		sb.WriteString(categoryPrefix(cliErr.Category))
		sb.WriteString(cliErr.Error())
		if cliErr.Suggestion != "" {
			sb.WriteString("\n\nTry: ")
			sb.WriteString(cliErr.Suggestion)
		}
	default:
		sb.WriteString("Error: ")
		sb.WriteString(err.Error())
	}

	return sb.String()
}

func categoryPrefix(cat Category) string {
	switch cat {
	case CategoryUsage:
		return "Usage error: "
	case CategoryNotFound:
		return "Not found: "
	case CategoryConfig:
		return "Configuration error: "
	case CategoryRemote:
		return "Remote error: "
	default:
		return "Error: "
	}
}

// ExitCode maps an error to the process exit status. Remote failures mirror
// the subprocess status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var remote *RemoteExecError
	if errors.As(err, &remote) {
		if remote.Code > 0 {
			return remote.Code
		}
		return 1
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Local() {
		return ExitLocal
	}
	return 1
}
