package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group collapses concurrent calls that share a key into a single execution
// whose result every waiting caller receives.
type Group[T any] struct {
	g singleflight.Group
}

// Do reports shared=true when the result was handed to more than one caller.
func (g *Group[T]) Do(key string, fn func() (T, error)) (v T, shared bool, err error) {
	out, err, shared := g.g.Do(key, func() (any, error) {
		return fn()
	})
	v, _ = out.(T)
	return v, shared, err
}

// DoContext is Do for calls bound to a context. The shared execution runs on
// a context detached from the caller's cancellation, so one caller giving up
// never fails the others. Each caller still returns ctx.Err() as soon as its
// own ctx is done.
func (g *Group[T]) DoContext(ctx context.Context, key string, fn func(context.Context) (T, error)) (v T, shared bool, err error) {
	detached := context.WithoutCancel(ctx)
	ch := g.g.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		v, _ = res.Val.(T)
		return v, res.Shared, res.Err
	case <-ctx.Done():
		return v, false, ctx.Err()
	}
}
