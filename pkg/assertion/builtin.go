package assertion

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/stretchr/testify/assert"
)

// evaluateToBe checks strict identity.
func evaluateToBe(
	def Definition,
	actual any,
) (bool, string) {
	a, e := describePair(actual, def.Value)
	if identical(actual, def.Value) {
		return true, fmt.Sprintf("%s is %s", a, e)
	}
	return false, fmt.Sprintf("expected %s to be %s", a, e)
}

// evaluateToEqual checks deep equality.
func evaluateToEqual(
	def Definition,
	actual any,
) (bool, string) {
	a, e := describePair(actual, def.Value)
	if assert.ObjectsAreEqual(def.Value, actual) {
		return true, fmt.Sprintf("%s equals %s", a, e)
	}
	return false, fmt.Sprintf("expected %s to equal %s", a, e)
}

// evaluateToBeNil accepts untyped nil and nil pointers, maps,
// slices, channels, funcs and interfaces.
func evaluateToBeNil(
	_ Definition,
	actual any,
) (bool, string) {
	if isNil(actual) {
		return true, "value is nil"
	}
	return false, fmt.Sprintf(
		"expected %s to be nil", describe(actual),
	)
}

// evaluateToContain checks substring containment for strings and
// element membership (deep equality) for slices and arrays.
func evaluateToContain(
	def Definition,
	actual any,
) (bool, string) {
	if str, ok := actual.(string); ok {
		sub, ok := def.Value.(string)
		if !ok {
			return false, "expected value is not a string"
		}
		if strings.Contains(str, sub) {
			return true, fmt.Sprintf("contains %q", sub)
		}
		return false, fmt.Sprintf(
			"expected %q to contain %q", str, sub,
		)
	}

	v := reflect.ValueOf(actual)
	if !v.IsValid() ||
		(v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return false, fmt.Sprintf(
			"cannot check containment in %T", actual,
		)
	}

	for i := 0; i < v.Len(); i++ {
		if assert.ObjectsAreEqual(def.Value, v.Index(i).Interface()) {
			return true, fmt.Sprintf(
				"contains %s at index %d", describe(def.Value), i,
			)
		}
	}
	return false, fmt.Sprintf(
		"expected %v to contain %s", actual, describe(def.Value),
	)
}

// evaluateToHaveLength checks the length of strings, slices,
// arrays, maps and channels.
func evaluateToHaveLength(
	def Definition,
	actual any,
) (bool, string) {
	want, ok := toInt(def.Value)
	if !ok {
		return false, "expected length is not an integer"
	}

	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Array,
		reflect.Map, reflect.Chan:
	default:
		return false, fmt.Sprintf("%T has no length", actual)
	}

	if v.Len() == want {
		return true, fmt.Sprintf("length is %d", want)
	}
	return false, fmt.Sprintf(
		"expected length %d, got %d", want, v.Len(),
	)
}

// evaluateToMatch checks a string against a regular expression.
func evaluateToMatch(
	def Definition,
	actual any,
) (bool, string) {
	str, ok := actual.(string)
	if !ok {
		return false, "value is not a string"
	}

	var re *regexp.Regexp
	switch p := def.Value.(type) {
	case string:
		compiled, err := regexp.Compile(p)
		if err != nil {
			return false, fmt.Sprintf(
				"invalid pattern %q: %v", p, err,
			)
		}
		re = compiled
	case *regexp.Regexp:
		re = p
	default:
		return false, "pattern is not a string or *regexp.Regexp"
	}

	if re.MatchString(str) {
		return true, fmt.Sprintf("matches %s", re)
	}
	return false, fmt.Sprintf(
		"expected %q to match %s", str, re,
	)
}

// evaluateNotEmpty checks that a value is non-nil and non-empty.
func evaluateNotEmpty(
	_ Definition,
	actual any,
) (bool, string) {
	if isNil(actual) {
		return false, "value is nil"
	}

	if str, ok := actual.(string); ok {
		if strings.TrimSpace(str) == "" {
			return false, "string is empty"
		}
		return true, "value is not empty"
	}

	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		if v.Len() == 0 {
			return false, fmt.Sprintf("%T is empty", actual)
		}
	}

	return true, "value is not empty"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}
