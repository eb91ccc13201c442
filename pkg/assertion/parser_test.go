package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		input string
		want  Definition
	}{
		{"to_contain:func", Definition{Type: "to_contain", Value: "func"}},
		{"not_empty", Definition{Type: "not_empty"}},
		{"to_have_length:3", Definition{Type: "to_have_length", Value: "3"}},
		{"to_match:^a:b$", Definition{Type: "to_match", Value: "^a:b$"}},
		{"to_be:", Definition{Type: "to_be", Value: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDefinition(tt.input))
		})
	}
}

func TestToSatisfy(t *testing.T) {
	assert.NoError(t, Expect("Hello, Ian").ToSatisfy("to_contain:Ian"))
	assert.NoError(t, Expect([]int{1, 2, 3}).ToSatisfy("to_have_length:3"))
	assert.NoError(t, Expect("x").ToSatisfy("not_empty"))
	assert.NoError(t, Expect("Hello, Ian").Not().ToSatisfy("to_contain:Sam"))

	err := Expect("Hello, Ian").ToSatisfy("to_contain:Sam")
	require.Error(t, err)
	assert.True(t, IsMismatch(err))

	var usage *UsageError
	assert.ErrorAs(t, Expect("x").ToSatisfy("no_such_matcher:1"), &usage)
}
