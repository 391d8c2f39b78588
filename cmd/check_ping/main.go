// Command check_ping is a Nagios plugin that checks whether a remote
// host answers ICMP echo requests. It shells out to the system ping
// utility, echoes its output, and reports the classified outcome as a
// final "<SEVERITY>: <message>" line plus the matching exit code.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lelutin/gonag/internal/nagios"
	"github.com/lelutin/gonag/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries flag values and the classified outcome across the cobra
// command tree.
type app struct {
	cfgFile    string
	verbose    bool
	count      int
	timeoutSec int

	outcome *nagios.Outcome
}

// run executes the command tree and maps the result to a process exit
// code. Configuration and usage errors are reported in the plugin
// convention: an UNKNOWN status line and exit code 3, before any probe
// is spawned.
func run(args []string, out, errOut io.Writer) int {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.Execute(); err != nil {
		o := nagios.Unknownf("%v", err)
		fmt.Fprintln(out, o)
		return o.ExitCode()
	}
	if a.outcome != nil {
		return a.outcome.ExitCode()
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "check_ping [flags] <host>",
		Short: "Check whether a host answers ICMP echo requests",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one host argument is required")
			}
			if args[0] == "" {
				return fmt.Errorf("host must not be empty")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runCheck,
	}
	root.Flags().IntVarP(&a.count, "count", "c", 4, "number of echo request packets to send")
	root.Flags().IntVar(&a.timeoutSec, "timeout", 10, "seconds before the check times out, 0 disables")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file path")

	root.AddCommand(a.versionCmd())
	root.AddCommand(a.historyCmd())

	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "check_ping %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}

// newLogger builds the stderr logger. Debug output is enabled by -v or
// the NAGIOS_DEBUG environment variable; stdout stays reserved for the
// probe echo and the final status line.
func (a *app) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if a.verbose || os.Getenv("NAGIOS_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
