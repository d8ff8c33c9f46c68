// Command simulate loads an array folder, lints it, and runs it for a fixed
// number of cycles, reporting the outcome and (optionally) a debug snapshot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pace-sim/grid"
	"github.com/sarchlab/pace-sim/isa"
	"github.com/sarchlab/pace-sim/lint"
)

// exit codes, per the run contract: 0 clean completion (including a
// SimulationEnd), 1 a fatal core error during simulation, 2 lint errors
// present under --strict-lint, 64 a CLI usage error.
const (
	exitOK         = 0
	exitCoreError  = 1
	exitLintError  = 2
	exitUsageError = 64
)

// usageError marks an error that should produce exitUsageError rather than
// exitCoreError.
type usageError struct{ error }

func (e *usageError) Unwrap() error { return e.error }

// lintError marks an error that should produce exitLintError.
type lintError struct{ error }

func (e *lintError) Unwrap() error { return e.error }

// runConfig collects everything one invocation of the CLI needs to build and
// run a grid: the ambient configuration threaded from flag parsing through
// to the cycle loop.
type runConfig struct {
	FolderPath string
	Cycles     int
	FullTrace  bool
	LogLevel   string
	DebugDir   string
	StrictLint bool
}

func main() {
	var cfg runConfig

	rootCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a PACE array program for a fixed number of cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfg.FolderPath, "folder-path", "", "array folder to load (required)")
	flags.IntVar(&cfg.Cycles, "cycles", 1000, "number of cycles to run")
	flags.BoolVar(&cfg.FullTrace, "full-trace", false, "log every phase of every cycle at debug level")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&cfg.DebugDir, "debug-dir", "debug", "base directory for the cycle_{n} snapshot written on a fatal error")
	flags.BoolVar(&cfg.StrictLint, "strict-lint", false, "exit with an error if lint finds any Error-level issue")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	err := rootCmd.Execute()
	if err == nil {
		atexit.Exit(exitOK)
	}

	fmt.Fprintln(os.Stderr, "simulate:", err)

	var usageErr *usageError
	var lintErr *lintError
	switch {
	case errors.As(err, &usageErr):
		atexit.Exit(exitUsageError)
	case errors.As(err, &lintErr):
		atexit.Exit(exitLintError)
	default:
		atexit.Exit(exitCoreError)
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, &usageError{fmt.Errorf("invalid --log-level %q: %w", s, err)}
	}
	return level, nil
}

// run loads, lints, and executes cfg.FolderPath. It returns nil for a clean
// run (including one ended by isa.ErrSimulationEnd), *usageError for a bad
// invocation, *lintError for strict-lint rejection, and any other error for
// a fatal core failure.
func run(ctx context.Context, cfg runConfig) error {
	if cfg.FolderPath == "" {
		return &usageError{errors.New("--folder-path is required")}
	}
	if cfg.Cycles <= 0 {
		return &usageError{fmt.Errorf("--cycles must be positive, got %d", cfg.Cycles)}
	}

	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.FullTrace {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	g, err := grid.LoadFromFolder(cfg.FolderPath, logger)
	if err != nil {
		return &usageError{fmt.Errorf("loading %q: %w", cfg.FolderPath, err)}
	}

	issues := lint.Check(g)
	printIssues(issues)
	if cfg.StrictLint && lint.HasErrors(issues) {
		return &lintError{fmt.Errorf("%d lint issue(s) found, refusing to run with --strict-lint", len(issues))}
	}

	ran, simErr := simulate(ctx, g, cfg.Cycles)
	printSummary(cfg, ran, simErr)

	fatal := simErr != nil && !errors.Is(simErr, isa.ErrSimulationEnd) && !errors.Is(simErr, context.Canceled)
	if fatal {
		dir := fmt.Sprintf("%s/cycle_%d-%s", cfg.DebugDir, ran, xid.New().String())
		if err := g.Snapshot(dir); err != nil {
			return fmt.Errorf("writing debug snapshot: %w", err)
		}
		fmt.Fprintf(os.Stderr, "simulate: debug snapshot written to %s\n", dir)
		return simErr
	}
	return nil
}

// simulate runs g for up to cycles cycles, checking ctx for cancellation
// once per cycle boundary so an interrupt never lands mid-phase.
func simulate(ctx context.Context, g *grid.Grid, cycles int) (ranCycles int, err error) {
	for ranCycles = 0; ranCycles < cycles; ranCycles++ {
		if err := ctx.Err(); err != nil {
			return ranCycles, err
		}
		if err := g.SimulateCycle(); err != nil {
			return ranCycles + 1, err
		}
	}
	return ranCycles, nil
}

func printIssues(issues []lint.Issue) {
	if len(issues) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stderr)
	t.SetTitle("Lint Issues")
	t.AppendHeader(table.Row{"Type", "PE", "Message"})
	for _, issue := range issues {
		coord := "-"
		if issue.Coord != nil {
			coord = fmt.Sprintf("(%d,%d)", issue.Coord.X, issue.Coord.Y)
		}
		t.AppendRow(table.Row{string(issue.Type), coord, issue.Message})
	}
	t.Render()
}

func printSummary(cfg runConfig, ranCycles int, simErr error) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Run Summary")
	t.AppendRow(table.Row{"Folder", cfg.FolderPath})
	t.AppendRow(table.Row{"Cycles requested", cfg.Cycles})
	t.AppendRow(table.Row{"Cycles run", ranCycles})

	outcome := "completed all requested cycles"
	switch {
	case errors.Is(simErr, isa.ErrSimulationEnd):
		outcome = "simulation end (program termination)"
	case errors.Is(simErr, context.Canceled):
		outcome = "interrupted"
	case simErr != nil:
		outcome = simErr.Error()
	}
	t.AppendRow(table.Row{"Outcome", outcome})
	t.Render()
}
