package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/servefab/servefab/pkg/utils/retry"
)

func TestBlocking(t *testing.T) {
	t.Run("it retries while the error wraps ErrRetry", func(t *testing.T) {
		attempts := 0
		got, err := retry.Blocking(
			context.Background(), retry.StaticBackoff(time.Millisecond),
			func() (string, error) {
				attempts += 1
				if attempts < 3 {
					return "", fmt.Errorf("%w: not yet", retry.ErrRetry)
				}
				return "done", nil
			},
		)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "done" {
			t.Errorf("value: actual=%q, expect=%q", got, "done")
		}
		if attempts != 3 {
			t.Errorf("attempts: actual=%d, expect=3", attempts)
		}
	})

	t.Run("it stops on an error not wrapping ErrRetry", func(t *testing.T) {
		expectedErr := errors.New("broken for good")
		attempts := 0
		_, err := retry.Blocking(
			context.Background(), retry.StaticBackoff(time.Millisecond),
			func() (int, error) {
				attempts += 1
				return 0, expectedErr
			},
		)

		if !errors.Is(err, expectedErr) {
			t.Errorf("err: actual=%v, expect=%v", err, expectedErr)
		}
		if attempts != 1 {
			t.Errorf("attempts: actual=%d, expect=1", attempts)
		}
	})

	t.Run("it stops when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := retry.Blocking(
			ctx, retry.StaticBackoff(time.Hour),
			func() (int, error) {
				t.Error("it should not be called")
				return 0, nil
			},
		)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("err: actual=%v, expect=%v", err, context.Canceled)
		}
	})
}
