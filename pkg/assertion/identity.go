package assertion

import (
	"fmt"
	"reflect"
)

// identical reports strict identity: comparable values must be
// == (same primitive value, same pointer), maps and slices must
// share the same backing storage. Values of different dynamic
// types are never identical, and there is no deep comparison.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() &&
			va.Len() == vb.Len()
	case reflect.Func:
		// Go functions are only comparable to nil.
		return va.IsNil() && vb.IsNil()
	}

	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// describe renders a value for failure messages.
func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", x)
	case error:
		return fmt.Sprintf("error(%q)", x.Error())
	}
	return fmt.Sprintf("%v", v)
}

// describePair renders both values, adding their types when the
// rendered text alone would not tell them apart.
func describePair(actual, expected any) (string, string) {
	a, e := describe(actual), describe(expected)
	if a == e && reflect.TypeOf(actual) != reflect.TypeOf(expected) {
		a = fmt.Sprintf("%s (%T)", a, actual)
		e = fmt.Sprintf("%s (%T)", e, expected)
	}
	return a, e
}
