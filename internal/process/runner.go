// Package process runs external tools with concurrent output draining and
// deadline enforcement.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/observability"
)

// DefaultWaitDelay is how long pipes may stay open after a kill before they are
// closed from our side.
const DefaultWaitDelay = 2 * time.Second

// Runner implements domain.Runner on top of os/exec.
type Runner struct {
	logger    *observability.Logger
	waitDelay time.Duration
	logStderr bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-invocation diagnostics.
func WithLogger(logger *observability.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithWaitDelay bounds how long a killed process may hold its pipes open.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.waitDelay = d
		}
	}
}

// WithStderrLogging logs stderr of successful runs at debug level.
func WithStderrLogging(enabled bool) Option {
	return func(r *Runner) {
		r.logStderr = enabled
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:    observability.Nop(),
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ domain.Runner = (*Runner)(nil)

// Run spawns c, writes c.Stdin, drains stdout and stderr concurrently and waits
// for the process. Non-zero exits are returned in the Outcome; errors are
// reserved for spawn failures, deadline expiry and I/O failures.
func (r *Runner) Run(ctx context.Context, c domain.Command) (*domain.Outcome, error) {
	if c.Path == "" {
		return nil, domain.InvalidArgumentsError("executable path is empty", nil)
	}

	tool := filepath.Base(c.Path)
	logger := r.logger.WithInvocation(uuid.NewString())

	path, err := exec.LookPath(c.Path)
	if err != nil {
		logger.Debug().Tool(c.Path).Err(err).Msg("executable lookup failed")
		return nil, domain.ExecutableNotFoundError(fmt.Sprintf("cannot resolve %q", c.Path), err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, timeoutError(tool, err)
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = r.waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, domain.IOError("open stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, domain.IOError("open stderr pipe", err)
	}
	var stdin io.WriteCloser
	if c.Stdin != nil {
		if stdin, err = cmd.StdinPipe(); err != nil {
			return nil, domain.IOError("open stdin pipe", err)
		}
	}

	logger.Debug().
		Tool(tool).
		Strs("args", RedactArgs(c.Args)).
		Bool("stdin", c.Stdin != nil).
		Msg("starting process")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, timeoutError(tool, ctxErr)
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, domain.ExecutableNotFoundError(fmt.Sprintf("cannot start %q", c.Path), err)
		}
		return nil, domain.IOError(fmt.Sprintf("start %s", tool), err)
	}

	var (
		outBuf, errBuf bytes.Buffer
		stdinErr       error
		g              errgroup.Group
	)
	g.Go(func() error {
		if _, err := io.Copy(&outBuf, stdout); err != nil {
			return fmt.Errorf("drain stdout: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := io.Copy(&errBuf, stderr); err != nil {
			return fmt.Errorf("drain stderr: %w", err)
		}
		return nil
	})
	if stdin != nil {
		g.Go(func() error {
			_, werr := stdin.Write(c.Stdin)
			cerr := stdin.Close()
			stdinErr = errors.Join(werr, cerr)
			return nil
		})
	}

	// A killed child can leave grandchildren holding the pipes; close our read
	// ends once the grace period after cancellation has passed.
	drained := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-drained:
			return
		}
		timer := time.NewTimer(r.waitDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			_ = stdout.Close()
			_ = stderr.Close()
		case <-drained:
		}
	}()

	drainErr := g.Wait()
	close(drained)
	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Debug().Tool(tool).Dur("elapsed", elapsed).Err(ctxErr).Msg("process killed")
		return nil, timeoutError(tool, ctxErr)
	}
	if drainErr != nil {
		return nil, domain.IOError(fmt.Sprintf("read %s output", tool), drainErr)
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, domain.IOError(fmt.Sprintf("wait for %s", tool), waitErr)
		}
		exitCode = exitErr.ExitCode()
	}

	// A child that fails early closes stdin; its exit status explains more than EPIPE.
	if stdinErr != nil && exitCode == 0 {
		return nil, domain.NewError(domain.ErrorTypeStdinWrite, fmt.Sprintf("write %s stdin", tool), stdinErr)
	}

	outcome := &domain.Outcome{
		ExitCode: exitCode,
		Stdout:   outBuf.Bytes(),
		Stderr:   errBuf.Bytes(),
		Duration: elapsed,
	}

	evt := logger.Debug().
		Tool(tool).
		Int("exit_code", exitCode).
		Int("stdout_bytes", len(outcome.Stdout)).
		Dur("elapsed", elapsed)
	if r.logStderr && exitCode == 0 && len(outcome.Stderr) > 0 {
		evt = evt.Str("stderr", string(outcome.Stderr))
	}
	evt.Msg("process finished")

	return outcome, nil
}

func timeoutError(tool string, ctxErr error) error {
	return domain.TimeoutError(fmt.Sprintf("%s did not finish in time", tool), ctxErr)
}

// RedactArgs returns a copy of args with password values masked.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "-upw" || out[i] == "-opw" {
			out[i+1] = "******"
			i++
		}
	}
	return out
}
