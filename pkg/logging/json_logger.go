package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// jsonMarshal is a variable for dependency injection in tests.
var jsonMarshal = json.Marshal

// LogEntry represents a single JSON log entry.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LoggerConfig configures the JSONLogger.
type LoggerConfig struct {
	OutputPath string
	Output     io.Writer
	Level      LogLevel
	Verbose    bool
	Fields     map[string]any
}

// JSONLogger implements Logger with JSON Lines output.
type JSONLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	closer  io.Closer
	level   LogLevel
	fields  map[string]any
	verbose bool
	closed  *bool
}

// NewJSONLogger creates a new JSON logger. Output takes
// precedence over OutputPath; if both are empty, logs are
// written to stdout.
func NewJSONLogger(config LoggerConfig) (*JSONLogger, error) {
	logger := &JSONLogger{
		mu:      &sync.Mutex{},
		level:   config.Level,
		verbose: config.Verbose,
		fields:  config.Fields,
		closed:  new(bool),
	}

	if logger.fields == nil {
		logger.fields = make(map[string]any)
	}

	switch {
	case config.Output != nil:
		logger.output = config.Output
	case config.OutputPath != "":
		dir := filepath.Dir(config.OutputPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf(
				"failed to create log directory: %w", err,
			)
		}
		file, err := os.OpenFile(
			config.OutputPath,
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0644,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to open log file: %w", err,
			)
		}
		logger.output = file
		logger.closer = file
	default:
		logger.output = os.Stdout
	}

	return logger, nil
}

func (l *JSONLogger) log(
	level LogLevel, msg string, fields ...Field,
) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if *l.closed {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		Fields:    make(map[string]any),
	}

	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}

	data, err := jsonMarshal(entry)
	if err != nil {
		return
	}

	fmt.Fprintln(l.output, string(data))
}

// Info logs an informational message.
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	if l.verbose {
		l.log(LevelDebug, msg, fields...)
	}
}

// WithFields returns a new Logger with additional default
// fields. The derived logger shares the parent's output and
// is closed together with it.
func (l *JSONLogger) WithFields(fields ...Field) Logger {
	newFields := make(map[string]any)
	for k, v := range l.fields {
		newFields[k] = v
	}
	for _, f := range fields {
		newFields[f.Key] = f.Value
	}

	return &JSONLogger{
		mu:      l.mu,
		output:  l.output,
		level:   l.level,
		verbose: l.verbose,
		fields:  newFields,
		closed:  l.closed,
	}
}

// Close closes the log file if the logger opened one.
// Subsequent log calls are dropped.
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if *l.closed {
		return nil
	}
	*l.closed = true

	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// SetupLogging creates a JSON logger writing to run.log in the
// given logs directory.
func SetupLogging(
	logsDir string,
	verbose bool,
) (*JSONLogger, error) {
	config := LoggerConfig{
		OutputPath: filepath.Join(logsDir, "run.log"),
		Level:      LevelInfo,
		Verbose:    verbose,
	}

	if verbose {
		config.Level = LevelDebug
	}

	return NewJSONLogger(config)
}
