package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lelutin/gonag/internal/storage"
)

// writeScript installs a fake ping binary for hermetic end-to-end runs.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ping")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}

func TestRun_MissingHostIsUnknown(t *testing.T) {
	code, stdout, _ := execute(t)
	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if !strings.HasPrefix(stdout, "UNKNOWN: ") {
		t.Errorf("expected UNKNOWN status line, got:\n%s", stdout)
	}
}

func TestRun_EmptyHostIsUnknown(t *testing.T) {
	code, stdout, _ := execute(t, "")
	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if !strings.HasPrefix(stdout, "UNKNOWN: ") {
		t.Errorf("expected UNKNOWN status line, got:\n%s", stdout)
	}
}

func TestRun_BadFlagIsUnknown(t *testing.T) {
	code, stdout, _ := execute(t, "-c", "four", "example.com")
	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if !strings.HasPrefix(stdout, "UNKNOWN: ") {
		t.Errorf("expected UNKNOWN status line, got:\n%s", stdout)
	}
}

func TestRun_MissingConfigFileIsUnknown(t *testing.T) {
	code, stdout, _ := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yml"), "example.com")
	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if !strings.HasPrefix(stdout, "UNKNOWN: ") {
		t.Errorf("expected UNKNOWN status line, got:\n%s", stdout)
	}
}

func TestRun_MissingPingBinaryIsUnknown(t *testing.T) {
	cfg := writeConfig(t, fmt.Sprintf("ping:\n  binary: %q\n", filepath.Join(t.TempDir(), "no-such-ping")))
	code, stdout, _ := execute(t, "--config", cfg, "example.com")
	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if !strings.HasPrefix(lastLine(stdout), "UNKNOWN: Execution failed: ") {
		t.Errorf("expected UNKNOWN status line, got:\n%s", stdout)
	}
}

func TestRun_AllReceivedIsOK(t *testing.T) {
	script := writeScript(t, `echo "PING example.com (93.184.216.34): 56 data bytes"
echo "4 received"
`)
	cfg := writeConfig(t, fmt.Sprintf("ping:\n  binary: %q\n", script))

	code, stdout, _ := execute(t, "--config", cfg, "example.com")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d; output:\n%s", code, stdout)
	}
	if !strings.Contains(stdout, "PING example.com") {
		t.Errorf("expected probe output to be echoed, got:\n%s", stdout)
	}
	if got := lastLine(stdout); got != "OK: Host is up" {
		t.Errorf("expected final line 'OK: Host is up', got %q", got)
	}
}

func TestRun_PacketLossIsCritical(t *testing.T) {
	script := writeScript(t, `echo "3 received"
`)
	cfg := writeConfig(t, fmt.Sprintf("ping:\n  binary: %q\n", script))

	code, stdout, _ := execute(t, "--config", cfg, "-c", "4", "1.2.3.4")
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d; output:\n%s", code, stdout)
	}
	if got := lastLine(stdout); got != "CRITICAL: No response from host 1.2.3.4" {
		t.Errorf("unexpected final line: %q", got)
	}
}

func TestRun_ProbeFailureIsUnknown(t *testing.T) {
	script := writeScript(t, `echo "ping: unknown host" >&2
exit 1
`)
	cfg := writeConfig(t, fmt.Sprintf("ping:\n  binary: %q\n", script))

	code, stdout, _ := execute(t, "--config", cfg, "nosuchhost")
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d; output:\n%s", code, stdout)
	}
	if got := lastLine(stdout); got != "UNKNOWN: Execution failed: ping: unknown host" {
		t.Errorf("unexpected final line: %q", got)
	}
}

func TestRun_CountFlagIsPassedToProbe(t *testing.T) {
	// The fake ping reports back its own arguments so the test can see
	// what the runner invoked.
	script := writeScript(t, `echo "args: $@"
echo "2 received"
`)
	cfg := writeConfig(t, fmt.Sprintf("ping:\n  binary: %q\n", script))

	code, stdout, _ := execute(t, "--config", cfg, "-c", "2", "example.com")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d; output:\n%s", code, stdout)
	}
	if !strings.Contains(stdout, "args: -q -c2 example.com") {
		t.Errorf("expected quiet-mode arguments in probe invocation, got:\n%s", stdout)
	}
}

func TestRun_OutcomeIsRecordedToHistory(t *testing.T) {
	script := writeScript(t, `echo "4 received"
`)
	dbPath := filepath.Join(t.TempDir(), "history.db")
	cfg := writeConfig(t, fmt.Sprintf("ping:\n  binary: %q\nhistory:\n  path: %q\n", script, dbPath))

	code, stdout, _ := execute(t, "--config", cfg, "example.com")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d; output:\n%s", code, stdout)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("opening history store: %v", err)
	}
	defer db.Close()

	entries, err := db.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 recorded outcome, got %d", len(entries))
	}
	if entries[0].Host != "example.com" || entries[0].Status != "OK" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestRun_HistoryFailureDoesNotChangeOutcome(t *testing.T) {
	script := writeScript(t, `echo "4 received"
`)
	// A directory is not a usable database file.
	cfg := writeConfig(t, fmt.Sprintf("ping:\n  binary: %q\nhistory:\n  path: %q\n", script, t.TempDir()))

	code, stdout, _ := execute(t, "--config", cfg, "example.com")
	if code != 0 {
		t.Fatalf("expected exit code 0 despite history failure, got %d; output:\n%s", code, stdout)
	}
	if got := lastLine(stdout); got != "OK: Host is up" {
		t.Errorf("unexpected final line: %q", got)
	}
}

func TestRun_VersionCommand(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(stdout, "check_ping") {
		t.Errorf("expected version output, got:\n%s", stdout)
	}
}
