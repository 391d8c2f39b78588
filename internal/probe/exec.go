package probe

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
)

// osStarter is the real Starter that uses os/exec.
type osStarter struct{}

func (s *osStarter) Start(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	p := &osProcess{cmd: cmd}
	cmd.Stderr = &p.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	p.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

type osProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
}

func (p *osProcess) Stdout() io.Reader { return p.stdout }

func (p *osProcess) Wait() error {
	// The consumer may have stopped before EOF; closing the pipe lets
	// the child terminate instead of blocking on a full pipe.
	p.stdout.Close()

	err := p.cmd.Wait()
	if err == nil {
		return nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return &ExecError{
			ExitCode: exitErr.ExitCode(),
			Stderr:   firstLine(p.stderr.String()),
			Err:      err,
		}
	}
	return err
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
