package usecase

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// doShared runs fn at most once per key across concurrent callers. The shared
// call runs detached from any single caller's cancellation, so one abandoned
// request cannot fail the others waiting on the same key. Each caller still
// stops waiting as soon as its own ctx is done.
func doShared(ctx context.Context, group *singleflight.Group, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	detached := context.WithoutCancel(ctx)
	ch := group.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	}
}
