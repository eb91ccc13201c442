// Package env reads harness settings from the process environment
// and optional .env files.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Prefix is prepended to every harness environment variable.
const Prefix = "HARNESS_"

// Getter looks up a single variable.
type Getter interface {
	Get(key string) string
}

// Loader defines the interface for environment variable management.
type Loader interface {
	Getter
	// Load reads environment variables from a .env file.
	Load(filepath string) error
	// GetRequired retrieves a required environment variable or returns error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves an environment variable with a default fallback.
	GetWithDefault(key, defaultValue string) string
	// Set sets an environment variable.
	Set(key, value string) error
	// All returns all loaded environment variables.
	All() map[string]string
}

// DefaultLoader implements Loader with .env file support. Keys are
// given without Prefix; it is added on lookup.
type DefaultLoader struct {
	mu     sync.RWMutex
	vars   map[string]string
	loaded bool
	prefix string
}

// NewLoader creates a DefaultLoader for HARNESS_ variables.
func NewLoader() *DefaultLoader {
	return NewLoaderWithPrefix(Prefix)
}

// NewLoaderWithPrefix creates a loader that prepends prefix to
// every key.
func NewLoaderWithPrefix(prefix string) *DefaultLoader {
	return &DefaultLoader{
		vars:   make(map[string]string),
		prefix: prefix,
	}
}

// Load reads KEY=value lines from a .env file. Blank lines and
// lines starting with # are skipped.
func (l *DefaultLoader) Load(filepath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", filepath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove surrounding quotes
		value = strings.Trim(value, `"'`)
		l.vars[key] = value
	}

	l.loaded = true
	return scanner.Err()
}

// Get returns the value of prefix+key. The process environment
// takes precedence over values loaded from files.
func (l *DefaultLoader) Get(key string) string {
	name := l.prefix + key
	if v := os.Getenv(name); v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[name]
}

func (l *DefaultLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s%s is not set", l.prefix, key)
	}
	return v, nil
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

// Set stores prefix+key in the loader and the process
// environment.
func (l *DefaultLoader) Set(key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := l.prefix + key
	l.vars[name] = value
	return os.Setenv(name, value)
}

func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}

// MapGetter serves lookups from a fixed map of full names.
type MapGetter map[string]string

// Get returns m[Prefix+key].
func (m MapGetter) Get(key string) string {
	return m[Prefix+key]
}
