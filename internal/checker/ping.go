package checker

import (
	"context"
	"iter"
	"regexp"
	"strconv"
	"time"

	"github.com/lelutin/gonag/internal/nagios"
	"github.com/lelutin/gonag/internal/probe"
)

// receivedRe matches the received-count in ping's summary line, e.g.
// "4 packets transmitted, 4 received, 0% packet loss". The pattern is
// kept isolated so it can be swapped if the tool's phrasing varies
// across platforms.
var receivedRe = regexp.MustCompile(`(\d+) received`)

// parseReceived extracts the received-count from a single probe output
// line. The second return value reports whether the line matched.
func parseReceived(line string) (int, bool) {
	m := receivedRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PingCheck probes a host with ICMP echo requests and classifies the
// result. A single invocation yields a single classification; scheduling
// repeated checks is the calling supervisor's job.
type PingCheck struct {
	Host    string
	Count   int
	Timeout time.Duration // 0 disables the deadline

	runner *probe.Runner
}

var _ Checker = (*PingCheck)(nil)

// NewPing returns a check sending count echo requests to host.
func NewPing(runner *probe.Runner, host string, count int, timeout time.Duration) *PingCheck {
	return &PingCheck{Host: host, Count: count, Timeout: timeout, runner: runner}
}

// Check runs the probe and classifies its output.
func (c *PingCheck) Check(ctx context.Context) nagios.Outcome {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	sess, err := c.runner.Ping(ctx, c.Host, c.Count)
	if err != nil {
		return nagios.Unknownf("Execution failed: %v", err)
	}
	// Reap the process even when classification short-circuits.
	defer sess.Wait()

	out := classify(sess.Lines(), c.Count, c.Host, sess.Wait)
	if out.Status == nagios.StatusUnknown && ctx.Err() == context.DeadlineExceeded {
		return nagios.Unknownf("Timeout reached (%s)", c.Timeout)
	}
	return out
}

// classify consumes the probe's line sequence and produces the check
// outcome. A received-count differing from want raises CRITICAL
// immediately; an exhausted sequence with a non-zero exit raises
// UNKNOWN; anything else is OK. A summary line that never matches the
// pattern falls through to OK when the process exited zero.
func classify(lines iter.Seq[string], want int, host string, wait func() error) nagios.Outcome {
	for line := range lines {
		if got, ok := parseReceived(line); ok && got != want {
			return nagios.Criticalf("No response from host %s", host)
		}
	}
	if err := wait(); err != nil {
		return nagios.Unknownf("Execution failed: %v", err)
	}
	return nagios.OK("Host is up")
}
