package recurring

import (
	"context"

	"github.com/servefab/servefab/pkg/loop"
)

// Task is one pass of a recurring job over a carried value T.
//
// Besides the carried value and an error, a pass reports whether it
// changed anything; policies use that to decide between running again
// immediately and cooling down.
type Task[T any] func(ctx context.Context, carried T) (T, bool, error)

// Applied binds rt to p: after each pass the policy reads the outcome
// and schedules (or breaks) the loop.
func (rt Task[T]) Applied(p Policy) loop.Task[T] {
	return func(ctx context.Context, carried T) (T, loop.Next) {
		carried, updated, err := rt(ctx, carried)
		return carried, p.Next(updated, err)
	}
}
