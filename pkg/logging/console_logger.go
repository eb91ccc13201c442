package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// ConsoleLogger writes human-readable, colored log lines through
// charmbracelet/log.
type ConsoleLogger struct {
	logger *log.Logger
}

// ConsoleConfig configures a ConsoleLogger.
type ConsoleConfig struct {
	// Output defaults to os.Stderr so stdout stays free for
	// reports.
	Output io.Writer

	// Prefix is shown before every message, e.g. a component
	// name.
	Prefix string

	// Verbose enables debug messages.
	Verbose bool

	// JSON switches to charmbracelet's JSON formatter.
	JSON bool
}

// NewConsoleLogger creates a console logger. When verbose is
// true, debug messages are emitted.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerWithConfig(ConsoleConfig{
		Verbose: verbose,
	})
}

// NewConsoleLoggerWithConfig creates a console logger from cfg.
func NewConsoleLoggerWithConfig(cfg ConsoleConfig) *ConsoleLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	formatter := log.TextFormatter
	if cfg.JSON {
		formatter = log.JSONFormatter
	}

	return &ConsoleLogger{
		logger: log.NewWithOptions(out, log.Options{
			Prefix:          cfg.Prefix,
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Formatter:       formatter,
		}),
	}
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.logger.Info(msg, keyvals(fields)...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.logger.Warn(msg, keyvals(fields)...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.logger.Error(msg, keyvals(fields)...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	c.logger.Debug(msg, keyvals(fields)...)
}

// WithFields returns a new Logger with additional default
// fields.
func (c *ConsoleLogger) WithFields(
	fields ...Field,
) Logger {
	return &ConsoleLogger{logger: c.logger.With(keyvals(fields)...)}
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}

func keyvals(fields []Field) []any {
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}
