package domain

import (
	"context"
	"time"
)

// Command describes one external tool invocation.
type Command struct {
	// Path is the executable name (resolved via PATH) or an explicit path.
	Path string
	// Args is the argument vector. It is never interpreted by a shell.
	Args []string
	// Stdin is written to the child's standard input when non-nil.
	Stdin []byte
	// Timeout bounds the run in addition to the context deadline. Zero means none.
	Timeout time.Duration
}

// Runner executes external tools
type Runner interface {
	// Run spawns the command, drains its output and waits for it to exit.
	// A non-zero exit is reported through Outcome.ExitCode, not as an error.
	Run(ctx context.Context, cmd Command) (*Outcome, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (*Outcome, error)

func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Outcome, error) {
	return f(ctx, cmd)
}
