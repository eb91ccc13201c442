// Package future provides a small promise abstraction: a value
// that settles exactly once, either resolved or rejected, and can
// be awaited with a context.
package future

import (
	"context"
	"fmt"
)

// Pending is the capability of an asynchronous operation that
// settles once. Done is closed on settlement; Err reports the
// rejection error and is only meaningful after Done is closed.
type Pending interface {
	Done() <-chan struct{}
	Err() error
}

// PanicError is the rejection produced when the function passed to
// Go panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Future holds the eventual result of an operation.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on a new goroutine and returns a Future that settles
// with its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if p := recover(); p != nil {
				f.err = &PanicError{Value: p}
			}
		}()
		f.value, f.err = fn()
	}()
	return f
}

// Run is Go for operations without a value.
func Run(fn func() error) *Future[struct{}] {
	return Go(func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// Resolve returns an already resolved Future.
func Resolve[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: v}
	close(f.done)
	return f
}

// Reject returns an already rejected Future.
func Reject[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Err returns the rejection error, or nil if the future resolved
// or has not settled yet.
func (f *Future[T]) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Await waits for any Pending operation and returns its error.
// If ctx ends first, the context error is returned.
func Await(ctx context.Context, p Pending) error {
	select {
	case <-p.Done():
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
