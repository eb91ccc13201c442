package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/config"
	"digital.vasic.harness/pkg/env"
)

// options are the flag values shared by all subcommands.
type options struct {
	configPath  string
	envFile     string
	verbose     bool
	format      string
	output      string
	attempts    int
	interval    time.Duration
	concurrency int
	resultsDir  string
	history     string

	// Filled by resolve from the loaded environment.
	envVars map[string]string
	secrets []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "harness",
		Short: "Minimal test runner with lifecycle hooks and polling",
		Long: `harness executes test runs sequentially, brackets each run with
before-all and after-all hooks, and reports one result per test.
Independent runs execute in parallel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to a .yaml or .toml config file")
	f.StringVar(&opts.envFile, "env-file", "", "Path to a .env file with HARNESS_ variables")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging (env: HARNESS_VERBOSE)")
	f.StringVar(&opts.format, "format", "", "Report format: console or json (env: HARNESS_FORMAT)")
	f.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	f.IntVar(&opts.attempts, "attempts", 0, "WaitFor attempt budget (env: HARNESS_ATTEMPTS)")
	f.DurationVar(&opts.interval, "interval", 0, "Delay between WaitFor attempts (env: HARNESS_INTERVAL)")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Runs executed in parallel (env: HARNESS_CONCURRENCY)")
	f.StringVar(&opts.resultsDir, "results-dir", "", "Directory for summary files and logs")
	f.StringVar(&opts.history, "history", "", "Append one JSON line per run to this file")

	root.AddCommand(newRunCmd(opts), newConfigCmd(opts), newListCmd())
	return root
}

// resolve builds the effective configuration: defaults, then
// the config file, then HARNESS_ variables, then flags.
func (o *options) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	loader := env.NewLoader()
	if o.envFile != "" {
		if err := loader.Load(o.envFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(loader); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	o.envVars = loader.All()
	o.secrets = loader.Secrets()

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Log.Verbose = o.verbose
	}
	if flags.Changed("format") {
		cfg.Report.Format = o.format
	}
	if flags.Changed("output") {
		cfg.Report.Output = o.output
	}
	if flags.Changed("attempts") {
		cfg.Poll.Attempts = o.attempts
	}
	if flags.Changed("interval") {
		cfg.Poll.Interval = o.interval
	}
	if flags.Changed("concurrency") {
		cfg.Run.Concurrency = o.concurrency
	}
	if flags.Changed("results-dir") {
		cfg.Report.ResultsDir = o.resultsDir
	}
	if flags.Changed("history") {
		cfg.Report.HistoryPath = o.history
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
