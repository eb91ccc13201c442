package assertion

import (
	"fmt"
	"sync"
)

// Matcher names registered by NewEngine.
const (
	MatcherToBe         = "to_be"
	MatcherToEqual      = "to_equal"
	MatcherToBeNil      = "to_be_nil"
	MatcherToContain    = "to_contain"
	MatcherToHaveLength = "to_have_length"
	MatcherToMatch      = "to_match"
	MatcherNotEmpty     = "not_empty"
)

// Engine defines the interface for assertion evaluation engines.
type Engine interface {
	// Evaluate applies a single matcher to the given actual
	// value.
	Evaluate(def Definition, actual any) Result

	// Register adds a custom matcher under the given name.
	// Returns an error if the name is already registered.
	Register(name string, evaluator Evaluator) error

	// HasEvaluator reports whether a matcher is registered.
	HasEvaluator(name string) bool
}

// DefaultEngine is the standard Engine implementation. It is
// safe for concurrent use.
type DefaultEngine struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

var defaultEngine = NewEngine()

// Default returns the engine used by the package-level Expect.
func Default() *DefaultEngine {
	return defaultEngine
}

// NewEngine creates a DefaultEngine with the built-in matchers
// pre-registered.
func NewEngine() *DefaultEngine {
	e := &DefaultEngine{
		evaluators: make(map[string]Evaluator),
	}
	e.registerDefaults()
	return e
}

func (e *DefaultEngine) registerDefaults() {
	e.evaluators[MatcherToBe] = evaluateToBe
	e.evaluators[MatcherToEqual] = evaluateToEqual
	e.evaluators[MatcherToBeNil] = evaluateToBeNil
	e.evaluators[MatcherToContain] = evaluateToContain
	e.evaluators[MatcherToHaveLength] = evaluateToHaveLength
	e.evaluators[MatcherToMatch] = evaluateToMatch
	e.evaluators[MatcherNotEmpty] = evaluateNotEmpty
}

// Register adds a custom matcher under the given name.
// Returns an error if the name is already registered.
func (e *DefaultEngine) Register(
	name string,
	evaluator Evaluator,
) error {
	if evaluator == nil {
		return fmt.Errorf("matcher %s: nil evaluator", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.evaluators[name]; exists {
		return fmt.Errorf(
			"matcher already registered: %s", name,
		)
	}

	e.evaluators[name] = evaluator
	return nil
}

// Evaluate applies a single matcher to the given actual value.
// Unknown matchers produce a failed Result.
func (e *DefaultEngine) Evaluate(
	def Definition,
	actual any,
) Result {
	e.mu.RLock()
	evaluator, exists := e.evaluators[def.Type]
	e.mu.RUnlock()

	if !exists {
		return Result{
			Type:   def.Type,
			Actual: actual,
			Passed: false,
			Message: fmt.Sprintf(
				"unknown matcher: %s", def.Type,
			),
		}
	}

	passed, message := evaluator(def, actual)
	if !passed && def.Message != "" {
		message = def.Message
	}

	return Result{
		Type:     def.Type,
		Expected: def.Value,
		Actual:   actual,
		Passed:   passed,
		Message:  message,
	}
}

// HasEvaluator returns true if the given matcher has a
// registered evaluator.
func (e *DefaultEngine) HasEvaluator(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.evaluators[name]
	return exists
}

// Expect binds actual to this engine.
func (e *DefaultEngine) Expect(actual any) *Expectation {
	return &Expectation{actual: actual, engine: e}
}
