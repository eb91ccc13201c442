package assertion

import "fmt"

// Expectation is a deferred comparison bound to an actual value.
// It holds no state besides that value; every comparator either
// returns nil or a *MismatchError.
type Expectation struct {
	actual any
	engine Engine
	negate bool
}

// Expect binds actual to the default engine.
func Expect(actual any) *Expectation {
	return defaultEngine.Expect(actual)
}

// Not returns an Expectation whose comparators are inverted.
func (x *Expectation) Not() *Expectation {
	return &Expectation{
		actual: x.actual,
		engine: x.engine,
		negate: !x.negate,
	}
}

// Rejects returns the asynchronous rejection comparators.
func (x *Expectation) Rejects() *Rejection {
	return &Rejection{actual: x.actual}
}

// To applies the named matcher with the given expected value.
func (x *Expectation) To(matcher string, expected any) error {
	r := x.engine.Evaluate(Definition{
		Type:  matcher,
		Value: expected,
	}, x.actual)

	if !x.engine.HasEvaluator(matcher) {
		return &UsageError{Matcher: matcher, Message: r.Message}
	}

	if r.Passed != x.negate {
		return nil
	}

	msg := r.Message
	if x.negate {
		msg = fmt.Sprintf("expected not: %s", r.Message)
	}
	return &MismatchError{
		Matcher:  matcher,
		Actual:   x.actual,
		Expected: expected,
		Message:  msg,
	}
}

// ToBe checks strict identity: same primitive value or same
// reference, never deep equality.
func (x *Expectation) ToBe(expected any) error {
	return x.To(MatcherToBe, expected)
}

// ToEqual checks deep equality.
func (x *Expectation) ToEqual(expected any) error {
	return x.To(MatcherToEqual, expected)
}

// ToBeNil checks that the actual value is nil.
func (x *Expectation) ToBeNil() error {
	return x.To(MatcherToBeNil, nil)
}

// ToContain checks substring or element membership.
func (x *Expectation) ToContain(expected any) error {
	return x.To(MatcherToContain, expected)
}

// ToHaveLength checks the length of a string or collection.
func (x *Expectation) ToHaveLength(n int) error {
	return x.To(MatcherToHaveLength, n)
}

// ToMatch checks a string against a regular expression given as
// a string or *regexp.Regexp.
func (x *Expectation) ToMatch(pattern any) error {
	return x.To(MatcherToMatch, pattern)
}
