package env

import (
	"os"
	"sort"
	"strings"
)

// secretMarkers flag variable names whose values must not appear
// in logs.
var secretMarkers = []string{
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"PASSWD",
	"API_KEY",
	"APIKEY",
	"CREDENTIAL",
	"PRIVATE_KEY",
}

// IsSecretKey reports whether the variable name looks like it
// holds a credential.
func IsSecretKey(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range secretMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// RedactValue masks a secret, showing only the first 4 and last 4
// characters.
func RedactValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) +
		value[len(value)-4:]
}

// Secrets returns the non-empty values of every secret-looking
// variable carrying the loader's prefix, from loaded files and
// the process environment. The result is sorted and free of
// duplicates.
func (l *DefaultLoader) Secrets() []string {
	seen := make(map[string]bool)
	add := func(name, value string) {
		if value == "" || !strings.HasPrefix(name, l.prefix) {
			return
		}
		if IsSecretKey(strings.TrimPrefix(name, l.prefix)) {
			seen[value] = true
		}
	}

	for name, value := range l.All() {
		add(name, value)
	}
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			add(name, value)
		}
	}

	secrets := make([]string, 0, len(seen))
	for value := range seen {
		secrets = append(secrets, value)
	}
	sort.Strings(secrets)
	return secrets
}
