// Package probe runs the external ICMP echo utility and exposes its
// output as an incrementally consumed sequence of text lines.
package probe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"
)

// Starter abstracts process startup for testability.
type Starter interface {
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a started probe process. Stdout must be drained before
// Wait collects the exit status.
type Process interface {
	Stdout() io.Reader
	Wait() error
}

// ExecError reports a probe process that exited non-zero. Stderr holds
// the first line of the process's error stream, if any.
type ExecError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return e.Err.Error()
}

func (e *ExecError) Unwrap() error { return e.Err }

// Runner spawns ping processes. Each consumed stdout line is echoed
// verbatim to Echo for operator visibility.
type Runner struct {
	starter Starter
	binary  string
	echo    io.Writer
	logger  *slog.Logger
}

// NewRunner returns a Runner invoking the ping binary at path.
func NewRunner(binary string, echo io.Writer, logger *slog.Logger) *Runner {
	return &Runner{starter: &osStarter{}, binary: binary, echo: echo, logger: logger}
}

// NewRunnerWithStarter creates a Runner with a custom Starter (for testing).
func NewRunnerWithStarter(starter Starter, binary string, echo io.Writer, logger *slog.Logger) *Runner {
	return &Runner{starter: starter, binary: binary, echo: echo, logger: logger}
}

// Ping starts one probe against host sending count echo requests in
// quiet/summary mode. The returned Session must be fully consumed and
// waited on by the caller.
func (r *Runner) Ping(ctx context.Context, host string, count int) (*Session, error) {
	if host == "" {
		return nil, fmt.Errorf("host must not be empty")
	}
	if count < 1 {
		return nil, fmt.Errorf("packet count must be positive, got %d", count)
	}

	args := []string{"-q", "-c" + strconv.Itoa(count), host}
	r.logger.Debug("starting probe", "binary", r.binary, "args", args)

	proc, err := r.starter.Start(ctx, r.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", r.binary, err)
	}

	return &Session{
		proc:    proc,
		scanner: bufio.NewScanner(proc.Stdout()),
		echo:    r.echo,
		logger:  r.logger,
	}, nil
}

// Session is one in-flight probe: a lazy, finite, non-restartable line
// sequence plus the eventual exit status.
type Session struct {
	proc    Process
	scanner *bufio.Scanner
	echo    io.Writer
	logger  *slog.Logger
	waited  bool
	waitErr error
}

// Lines yields stdout lines as they arrive, echoing each one verbatim
// before handing it to the consumer. Breaking out of the iteration stops
// line processing; the process must still be reaped with Wait.
func (s *Session) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s.scanner.Scan() {
			line := s.scanner.Text()
			fmt.Fprintln(s.echo, line)
			if !yield(line) {
				return
			}
		}
	}
}

// Wait collects the process exit status. A non-zero exit is reported as
// an *ExecError. Wait is idempotent.
func (s *Session) Wait() error {
	if s.waited {
		return s.waitErr
	}
	s.waited = true
	s.waitErr = s.proc.Wait()
	if s.waitErr != nil {
		s.logger.Debug("probe exited non-zero", "error", s.waitErr)
	}
	return s.waitErr
}
