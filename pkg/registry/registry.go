// Package registry keeps named runs so callers can select which
// of them to execute.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"digital.vasic.harness/pkg/suite"
)

// ErrNotFound is returned when no registered run matches a name
// or pattern.
var ErrNotFound = errors.New("run not found")

// Registry manages run registration and lookup.
type Registry interface {
	// Register adds a run to the registry.
	Register(spec suite.Spec) error

	// Get retrieves a run by name.
	Get(name string) (suite.Spec, error)

	// List returns all registered runs in registration order.
	List() []suite.Spec

	// Names returns the sorted names of all registered runs.
	Names() []string

	// Select returns the runs whose names match any of the
	// given glob patterns.
	Select(patterns ...string) ([]suite.Spec, error)

	// Clear removes every registered run.
	Clear()

	// Count returns the number of registered runs.
	Count() int
}

// DefaultRegistry is the default, thread-safe Registry
// implementation.
type DefaultRegistry struct {
	mu    sync.RWMutex
	specs map[string]suite.Spec
	order []string
}

// NewRegistry creates an empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		specs: make(map[string]suite.Spec),
	}
}

// Register adds a run to the registry. Returns an error if the
// name is empty, the body is nil, or a run with the same name is
// already registered.
func (r *DefaultRegistry) Register(spec suite.Spec) error {
	if spec.Name == "" {
		return errors.New("run name must not be empty")
	}
	if spec.Body == nil {
		return fmt.Errorf("run %s has no body", spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("run already registered: %s", spec.Name)
	}
	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Get retrieves a run by name. Returns an error wrapping
// ErrNotFound if the run does not exist.
func (r *DefaultRegistry) Get(name string) (suite.Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[name]
	if !ok {
		return suite.Spec{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return spec, nil
}

// List returns all registered runs in registration order.
func (r *DefaultRegistry) List() []suite.Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]suite.Spec, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.specs[name])
	}
	return result
}

// Names returns the sorted names of all registered runs.
func (r *DefaultRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Select returns the runs whose names match any of the given
// doublestar glob patterns, in registration order within each
// pattern and without duplicates. With no patterns every run is
// returned. A malformed pattern, or one matching nothing, is
// reported; all such problems are joined into one error.
func (r *DefaultRegistry) Select(
	patterns ...string,
) ([]suite.Spec, error) {
	if len(patterns) == 0 {
		return r.List(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		result []suite.Spec
		errs   []error
		seen   = make(map[string]bool)
	)
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf(
				"invalid pattern %q: %w",
				pattern, doublestar.ErrBadPattern,
			))
			continue
		}

		matched := false
		for _, name := range r.order {
			ok, err := doublestar.Match(pattern, name)
			if err != nil {
				errs = append(errs, fmt.Errorf(
					"invalid pattern %q: %w", pattern, err,
				))
				break
			}
			if !ok {
				continue
			}
			matched = true
			if !seen[name] {
				seen[name] = true
				result = append(result, r.specs[name])
			}
		}
		if !matched {
			errs = append(errs, fmt.Errorf(
				"%w: %s", ErrNotFound, pattern,
			))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return result, nil
}

// Clear removes every registered run.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.specs = make(map[string]suite.Spec)
	r.order = nil
}

// Count returns the number of registered runs.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}
