package logging

import "strings"

// RedactingLogger is a decorator that masks secret strings in log
// messages and field values before passing them to the inner
// logger.
type RedactingLogger struct {
	inner   Logger
	secrets []string
}

// NewRedactingLogger creates a logger that redacts the given
// secrets from all messages and string or error field values.
// Secrets of 4 characters or fewer are ignored.
func NewRedactingLogger(
	inner Logger,
	secrets ...string,
) *RedactingLogger {
	kept := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if len(s) > 4 {
			kept = append(kept, s)
		}
	}
	return &RedactingLogger{
		inner:   inner,
		secrets: kept,
	}
}

func (r *RedactingLogger) redact(msg string) string {
	result := msg
	for _, secret := range r.secrets {
		result = strings.ReplaceAll(
			result, secret, maskSecret(secret),
		)
	}
	return result
}

// maskSecret keeps the first 4 characters.
func maskSecret(s string) string {
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func (r *RedactingLogger) redactFields(
	fields []Field,
) []Field {
	result := make([]Field, len(fields))
	for i, f := range fields {
		switch v := f.Value.(type) {
		case string:
			result[i] = Field{Key: f.Key, Value: r.redact(v)}
		case error:
			result[i] = Field{Key: f.Key, Value: r.redact(v.Error())}
		default:
			result[i] = f
		}
	}
	return result
}

// Info logs a redacted informational message.
func (r *RedactingLogger) Info(msg string, fields ...Field) {
	r.inner.Info(r.redact(msg), r.redactFields(fields)...)
}

// Warn logs a redacted warning message.
func (r *RedactingLogger) Warn(msg string, fields ...Field) {
	r.inner.Warn(r.redact(msg), r.redactFields(fields)...)
}

// Error logs a redacted error message.
func (r *RedactingLogger) Error(msg string, fields ...Field) {
	r.inner.Error(r.redact(msg), r.redactFields(fields)...)
}

// Debug logs a redacted debug message.
func (r *RedactingLogger) Debug(msg string, fields ...Field) {
	r.inner.Debug(r.redact(msg), r.redactFields(fields)...)
}

// WithFields returns a RedactingLogger wrapping a new inner
// logger with the given fields applied.
func (r *RedactingLogger) WithFields(fields ...Field) Logger {
	return &RedactingLogger{
		inner:   r.inner.WithFields(r.redactFields(fields)...),
		secrets: r.secrets,
	}
}

// Close closes the inner logger.
func (r *RedactingLogger) Close() error {
	return r.inner.Close()
}
