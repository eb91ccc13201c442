// Package config holds harness settings loaded from YAML or TOML
// files and HARNESS_ environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"digital.vasic.harness/pkg/env"
	"digital.vasic.harness/pkg/poll"
)

// Report formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Log formats.
const (
	LogText = "text"
	LogJSON = "json"
)

// Config is the complete harness configuration.
type Config struct {
	Poll   PollConfig   `yaml:"poll" toml:"poll"`
	Run    RunConfig    `yaml:"run" toml:"run"`
	Report ReportConfig `yaml:"report" toml:"report"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// PollConfig sets the retry budget used by WaitFor.
type PollConfig struct {
	Attempts    int           `yaml:"attempts" toml:"attempts"`
	Interval    time.Duration `yaml:"interval" toml:"interval"`
	Backoff     float64       `yaml:"backoff" toml:"backoff"`
	MaxInterval time.Duration `yaml:"max_interval" toml:"max_interval"`
}

// RunConfig controls test execution.
type RunConfig struct {
	TestTimeout time.Duration `yaml:"test_timeout" toml:"test_timeout"`
	Concurrency int           `yaml:"concurrency" toml:"concurrency"`
}

// ReportConfig selects result sinks.
type ReportConfig struct {
	Format      string `yaml:"format" toml:"format"`
	Output      string `yaml:"output" toml:"output"`
	ResultsDir  string `yaml:"results_dir" toml:"results_dir"`
	HistoryPath string `yaml:"history_path" toml:"history_path"`
}

// LogConfig controls harness logging.
type LogConfig struct {
	Verbose bool   `yaml:"verbose" toml:"verbose"`
	Format  string `yaml:"format" toml:"format"`
	File    string `yaml:"file" toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Poll: PollConfig{
			Attempts: poll.DefaultAttempts,
			Interval: poll.DefaultInterval,
		},
		Run: RunConfig{
			Concurrency: 1,
		},
		Report: ReportConfig{
			Format: FormatConsole,
		},
		Log: LogConfig{
			Format: LogText,
		},
	}
}

// Load reads the file at path on top of Default. The decoder is
// chosen by extension: .yaml and .yml use YAML, .toml uses TOML.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf(
				"loading config %s: unknown keys: %s",
				path, strings.Join(keys, ", "),
			)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HARNESS_ variables found through
// g. Unset variables leave fields unchanged.
func (c *Config) ApplyEnv(g env.Getter) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := g.Get(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := g.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", env.Prefix, key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := g.Get(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", env.Prefix, key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v := g.Get(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", env.Prefix, key, err))
				return
			}
			*dst = b
		}
	}

	num("ATTEMPTS", &c.Poll.Attempts)
	dur("INTERVAL", &c.Poll.Interval)
	dur("TEST_TIMEOUT", &c.Run.TestTimeout)
	num("CONCURRENCY", &c.Run.Concurrency)
	str("FORMAT", &c.Report.Format)
	str("OUTPUT", &c.Report.Output)
	str("RESULTS_DIR", &c.Report.ResultsDir)
	str("HISTORY", &c.Report.HistoryPath)
	flag("VERBOSE", &c.Log.Verbose)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)

	return errors.Join(errs...)
}

// Validate checks the configuration for values the harness cannot
// run with.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Policy().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Run.TestTimeout < 0 {
		errs = append(errs, errors.New("run.test_timeout must not be negative"))
	}
	if c.Run.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("run.concurrency must be at least 1, got %d", c.Run.Concurrency))
	}
	switch c.Report.Format {
	case FormatConsole, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("report.format must be %q or %q, got %q",
			FormatConsole, FormatJSON, c.Report.Format))
	}
	switch c.Log.Format {
	case LogText, LogJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format must be %q or %q, got %q",
			LogText, LogJSON, c.Log.Format))
	}
	return errors.Join(errs...)
}

// Policy returns the poll policy described by c.Poll.
func (c *Config) Policy() poll.Policy {
	return poll.Policy{
		MaxAttempts: c.Poll.Attempts,
		Interval:    c.Poll.Interval,
		Multiplier:  c.Poll.Backoff,
		MaxInterval: c.Poll.MaxInterval,
	}
}
