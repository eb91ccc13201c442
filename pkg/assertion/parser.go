package assertion

import "strings"

// ParseDefinition parses a compact matcher string of the form
// "matcher:value" into a Definition. If no colon is present the
// entire string is the matcher name and Value is nil.
//
// Examples:
//
//	"to_contain:func"   -> {Type: "to_contain", Value: "func"}
//	"not_empty"         -> {Type: "not_empty"}
//	"to_have_length:3"  -> {Type: "to_have_length", Value: "3"}
func ParseDefinition(s string) Definition {
	matcher, value, found := strings.Cut(s, ":")
	def := Definition{Type: strings.TrimSpace(matcher)}
	if found {
		def.Value = value
	}
	return def
}

// ToSatisfy applies a matcher given in the compact form accepted
// by ParseDefinition.
func (x *Expectation) ToSatisfy(expr string) error {
	def := ParseDefinition(expr)
	return x.To(def.Type, def.Value)
}
