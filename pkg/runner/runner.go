package runner

import "context"

// CommandRunner executes an external program and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, command string, args []string) ([]byte, error)
}
