package tmux

import "context"

// Runner executes built commands on the remote host.
type Runner interface {
	// Run executes an interactive command with the local terminal attached.
	Run(ctx context.Context, verb Verb, remoteCmd string) error
	// Output executes a command and returns its standard output.
	Output(ctx context.Context, verb Verb, remoteCmd string) (string, error)
}
