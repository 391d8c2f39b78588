package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/lelutin/gonag/internal/checker"
	"github.com/lelutin/gonag/internal/config"
	"github.com/lelutin/gonag/internal/nagios"
	"github.com/lelutin/gonag/internal/probe"
	"github.com/lelutin/gonag/internal/storage"
)

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	logger := a.newLogger(cmd.ErrOrStderr())

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	host := args[0]

	count := cfg.Ping.Count
	if cmd.Flags().Changed("count") {
		count = a.count
	}
	if count < 1 {
		return fmt.Errorf("packet count must be positive, got %d", count)
	}

	timeout := cfg.Ping.Timeout.Duration
	if cmd.Flags().Changed("timeout") {
		if a.timeoutSec < 0 {
			return fmt.Errorf("timeout must not be negative, got %d", a.timeoutSec)
		}
		timeout = time.Duration(a.timeoutSec) * time.Second
	}

	// The probe utility is a hard startup dependency; fail fast before
	// constructing any check logic.
	binary := cfg.Ping.Binary
	if binary == "" {
		binary, err = exec.LookPath("ping")
		if err != nil {
			return fmt.Errorf("locating ping binary: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	runner := probe.NewRunner(binary, out, logger)
	check := checker.NewPing(runner, host, count, timeout)

	outcome := check.Check(cmd.Context())

	a.record(cmd.Context(), cfg, host, outcome, logger)

	fmt.Fprintln(out, outcome)
	a.outcome = &outcome
	return nil
}

// record appends the outcome to the history store when one is
// configured. Recording failures are logged and never change the
// outcome or exit code.
func (a *app) record(ctx context.Context, cfg *config.Config, host string, o nagios.Outcome, logger *slog.Logger) {
	if cfg.History.Path == "" {
		return
	}
	db, err := storage.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("opening history store", "error", err)
		return
	}
	defer db.Close()

	if err := db.Record(ctx, host, o, time.Now()); err != nil {
		logger.Warn("recording outcome", "error", err)
	}
}
