package assertion

import "fmt"

// AllOf returns an Evaluator that applies every definition to the
// actual value and requires all of them to pass. It can be
// registered as a custom matcher.
func AllOf(engine Engine, defs ...Definition) Evaluator {
	return func(_ Definition, actual any) (bool, string) {
		for _, d := range defs {
			r := engine.Evaluate(d, actual)
			if !r.Passed {
				return false, fmt.Sprintf(
					"%s failed: %s", r.Type, r.Message,
				)
			}
		}
		return true, fmt.Sprintf(
			"all %d matchers passed", len(defs),
		)
	}
}

// AnyOf returns an Evaluator that passes when at least one
// definition passes.
func AnyOf(engine Engine, defs ...Definition) Evaluator {
	return func(_ Definition, actual any) (bool, string) {
		for _, d := range defs {
			r := engine.Evaluate(d, actual)
			if r.Passed {
				return true, fmt.Sprintf("%s passed", r.Type)
			}
		}
		return false, fmt.Sprintf(
			"none of %d matchers passed", len(defs),
		)
	}
}
