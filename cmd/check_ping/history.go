package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lelutin/gonag/internal/config"
	"github.com/lelutin/gonag/internal/storage"
)

type historyStore interface {
	Recent(ctx context.Context, limit int) ([]storage.Entry, error)
	OKPercent(ctx context.Context, host string, last int) (float64, error)
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent check outcomes from the history store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			if cfg.History.Path == "" {
				return fmt.Errorf("history is not configured; set history.path in the config file")
			}

			db, err := storage.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("opening history store: %w", err)
			}
			defer db.Close()

			return printHistory(cmd.Context(), cmd.OutOrStdout(), db, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}

func printHistory(ctx context.Context, out io.Writer, db historyStore, limit int) error {
	entries, err := db.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("querying history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No check history. Run a check with history.path configured first.")
		return nil
	}

	okRates := make(map[string]float64)
	for _, e := range entries {
		if _, seen := okRates[e.Host]; seen {
			continue
		}
		rate, err := db.OKPercent(ctx, e.Host, 100)
		if err != nil {
			return fmt.Errorf("querying OK rate: %w", err)
		}
		okRates[e.Host] = rate
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOST\tSTATUS\tMESSAGE\tCHECKED AT\tOK%")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n",
			e.Host,
			e.Status,
			e.Message,
			e.CheckedAt.Local().Format("2006-01-02 15:04:05"),
			okRates[e.Host],
		)
	}
	w.Flush()
	return nil
}
