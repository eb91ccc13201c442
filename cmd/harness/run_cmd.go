package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"digital.vasic.harness/internal/demo"
	"digital.vasic.harness/pkg/config"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/metrics"
	"digital.vasic.harness/pkg/poll"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/report"
	"digital.vasic.harness/pkg/suite"
	"digital.vasic.harness/pkg/testcase"
)

// failuresError signals failed tests. The report already shows
// them, so execute does not print it again.
type failuresError struct {
	failed int
}

func (e *failuresError) Error() string {
	return fmt.Sprintf("%d run(s) failed", e.failed)
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "run [name|glob...]",
		Aliases: []string{"demo"},
		Short:   "Execute the bundled runs, or only the matching ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runAll(cmd, cfg, opts, args)
		},
	}
}

func runAll(
	cmd *cobra.Command,
	cfg *config.Config,
	opts *options,
	names []string,
) error {
	out := cmd.OutOrStdout()
	if cfg.Report.Output != "" && cfg.Report.Output != "-" {
		f, ferr := os.Create(cfg.Report.Output)
		if ferr != nil {
			return fmt.Errorf("opening report output: %w", ferr)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg, opts.secrets)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	keys := make([]string, 0, len(opts.envVars))
	for k := range opts.envVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		logger.Debug("env_loaded",
			logging.StringField("key", k),
			logging.StringField("value", opts.envVars[k]),
		)
	}

	reporters := []report.Reporter{newReporter(out, cfg.Report.Format)}
	if cfg.Report.HistoryPath != "" {
		reporters = append(reporters, report.NewHistoryReporter(cfg.Report.HistoryPath))
	}

	m := metrics.NewInMemoryMetrics()
	shared := []suite.Option{
		suite.WithReporter(report.NewMultiReporter(reporters...)),
		suite.WithLogger(logger),
		suite.WithMetrics(m),
		suite.WithTestTimeout(cfg.Run.TestTimeout),
	}
	pollOpts := []poll.Option{
		poll.WithPolicy(cfg.Policy()),
		poll.WithLogger(logger),
		poll.WithMetrics(m),
	}

	reg := registry.NewRegistry()
	if err := demo.Register(reg, pollOpts...); err != nil {
		return err
	}
	specs, err := reg.Select(names...)
	if err != nil {
		return err
	}

	outcomes := suite.ExecuteAll(cmd.Context(), specs,
		cfg.Run.Concurrency, shared...)

	summaries := make([]*testcase.Summary, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		summaries = append(summaries, o.Summary)
		if !o.Summary.OK() {
			failed++
		}
	}

	if cfg.Report.ResultsDir != "" {
		if err := report.SaveMasterSummary(
			report.BuildMasterSummary(summaries), cfg.Report.ResultsDir,
		); err != nil {
			return err
		}
	}

	logger.Debug("runs_finished",
		logging.IntField("runs", m.RunTotal()),
		logging.IntField("probe_failures", m.ProbeFailures()),
	)

	if failed > 0 {
		return &failuresError{failed: failed}
	}
	return nil
}

func newReporter(out io.Writer, format string) report.Reporter {
	if format == config.FormatJSON {
		return report.NewJSONReporter(out, false)
	}
	return report.NewConsoleReporter(out)
}

// newLogger writes to stderr when verbose and to a JSON Lines file
// when a log file or results directory is configured. Secrets are
// masked in everything it writes.
func newLogger(
	stderr io.Writer,
	cfg *config.Config,
	secrets []string,
) (logging.Logger, error) {
	var loggers []logging.Logger
	if cfg.Log.Verbose {
		loggers = append(loggers, logging.NewConsoleLoggerWithConfig(logging.ConsoleConfig{
			Output:  stderr,
			Prefix:  "harness",
			Verbose: true,
			JSON:    cfg.Log.Format == config.LogJSON,
		}))
	}

	switch {
	case cfg.Log.File != "":
		l, err := logging.NewJSONLogger(logging.LoggerConfig{
			OutputPath: cfg.Log.File,
			Verbose:    cfg.Log.Verbose,
		})
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, l)
	case cfg.Report.ResultsDir != "":
		l, err := logging.SetupLogging(
			filepath.Join(cfg.Report.ResultsDir, "logs"), cfg.Log.Verbose,
		)
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, l)
	}

	var logger logging.Logger
	switch len(loggers) {
	case 0:
		return logging.NullLogger{}, nil
	case 1:
		logger = loggers[0]
	default:
		logger = logging.NewMultiLogger(loggers...)
	}
	if len(secrets) > 0 {
		logger = logging.NewRedactingLogger(logger, secrets...)
	}
	return logger, nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the bundled runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := registry.NewRegistry()
			if err := demo.Register(reg); err != nil {
				return err
			}
			for _, name := range reg.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
