package recurring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/servefab/servefab/cmd/reconciler/recurring"
	"github.com/servefab/servefab/pkg/loop"
)

func TestParsePolicy(t *testing.T) {
	type When struct {
		expr string
	}
	type Then struct {
		name string
		err  bool
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			p, err := recurring.ParsePolicy(when.expr)
			if then.err {
				if err == nil {
					t.Errorf("no error for %q", when.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.String() != then.name {
				t.Errorf("policy: actual=%s, expect=%s", p.String(), then.name)
			}
		}
	}

	t.Run("forever without cooldown", theory(
		When{expr: "forever"}, Then{name: "forever:0s"},
	))
	t.Run("forever with cooldown", theory(
		When{expr: "forever:30s"}, Then{name: "forever:30s"},
	))
	t.Run("once", theory(
		When{expr: "once"}, Then{name: "once"},
	))
	t.Run("once takes no parameter", theory(
		When{expr: "once:1s"}, Then{err: true},
	))
	t.Run("malformed cooldown", theory(
		When{expr: "forever:soon"}, Then{err: true},
	))
	t.Run("unknown policy", theory(
		When{expr: "sometimes"}, Then{err: true},
	))
}

func TestPolicy_Next(t *testing.T) {
	t.Run("forever continues immediately while there is work", func(t *testing.T) {
		next := recurring.Forever(30 * time.Second).Next(true, nil)
		if next != loop.Continue(0) {
			t.Errorf("next: actual=%s, expect=%s", next, loop.Continue(0))
		}
	})

	t.Run("forever cools down on an idle pass", func(t *testing.T) {
		next := recurring.Forever(30 * time.Second).Next(false, nil)
		if next != loop.Continue(30*time.Second) {
			t.Errorf("next: actual=%s, expect=%s", next, loop.Continue(30*time.Second))
		}
	})

	t.Run("once always breaks", func(t *testing.T) {
		if next := recurring.Once().Next(true, nil); next != loop.Break(nil) {
			t.Errorf("next: actual=%s, expect=%s", next, loop.Break(nil))
		}
	})

	t.Run("untilError passes outcomes through until one fails", func(t *testing.T) {
		p := recurring.UntilError(recurring.Forever(0))

		if next := p.Next(false, nil); next != loop.Continue(0) {
			t.Errorf("next: actual=%s, expect=%s", next, loop.Continue(0))
		}

		expectedErr := errors.New("sweep failed")
		next := p.Next(false, expectedErr)
		if next != loop.Break(expectedErr) {
			t.Errorf("next: actual=%s, expect break with the error", next)
		}
	})
}

func TestTask_Applied(t *testing.T) {
	var task recurring.Task[int] = func(_ context.Context, carried int) (int, bool, error) {
		return carried + 1, carried < 2, nil
	}

	looped := task.Applied(recurring.UntilError(recurring.Once()))
	carried, next := looped(context.Background(), 0)

	if carried != 1 {
		t.Errorf("carried: actual=%d, expect=1", carried)
	}
	if next != loop.Break(nil) {
		t.Errorf("next: actual=%s, expect=%s", next, loop.Break(nil))
	}
}
