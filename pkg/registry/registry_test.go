package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/suite"
)

func newSpec(name string) suite.Spec {
	return suite.Spec{
		Name: name,
		Body: func(context.Context, *suite.Run) {},
	}
}

func TestDefaultRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(newSpec("greeting")))
	assert.Equal(t, 1, reg.Count())

	err := reg.Register(newSpec("greeting"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, reg.Register(newSpec("")))
	assert.Error(t, reg.Register(suite.Spec{Name: "no-body"}))
	assert.Equal(t, 1, reg.Count())
}

func TestDefaultRegistry_Get(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newSpec("greeting")))

	spec, err := reg.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "greeting", spec.Name)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDefaultRegistry_ListAndNames(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"wait-for", "greeting", "rejects"} {
		require.NoError(t, reg.Register(newSpec(n)))
	}

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, "wait-for", list[0].Name)
	assert.Equal(t, "rejects", list[2].Name)

	assert.Equal(t, []string{"greeting", "rejects", "wait-for"}, reg.Names())
}

func TestDefaultRegistry_Select(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, reg.Register(newSpec(n)))
	}

	all, err := reg.Select()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	picked, err := reg.Select("c", "a")
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "c", picked[0].Name)
	assert.Equal(t, "a", picked[1].Name)

	picked, err = reg.Select("a", "a")
	require.NoError(t, err)
	assert.Len(t, picked, 1)

	_, err = reg.Select("a", "x", "y")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "x")
	assert.Contains(t, err.Error(), "y")
}

func TestDefaultRegistry_Clear(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newSpec("a")))
	reg.Clear()
	assert.Zero(t, reg.Count())
	assert.Empty(t, reg.List())
	require.NoError(t, reg.Register(newSpec("a")))
}

func TestDefaultRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = reg.Register(newSpec("shared"))
			_ = reg.Names()
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, 1, reg.Count())
}

func TestDefaultRegistry_SelectGlob(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"wait-for", "greeting", "wait-until"} {
		require.NoError(t, reg.Register(newSpec(n)))
	}

	picked, err := reg.Select("wait-*")
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "wait-for", picked[0].Name)
	assert.Equal(t, "wait-until", picked[1].Name)

	picked, err = reg.Select("greeting", "*")
	require.NoError(t, err)
	assert.Len(t, picked, 3)
	assert.Equal(t, "greeting", picked[0].Name)

	_, err = reg.Select("nomatch-*")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.Select("[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}
