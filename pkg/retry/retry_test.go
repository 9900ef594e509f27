package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.BaseDelay)
}

func TestDo(t *testing.T) {
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Millisecond}

	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), cfg, func(ctx context.Context) error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), cfg, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts and wraps last error", func(t *testing.T) {
		calls := 0
		lastErr := errors.New("still broken")
		err := Do(context.Background(), cfg, func(ctx context.Context) error {
			calls++
			return lastErr
		})
		assert.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.ErrorIs(t, err, lastErr)
		assert.Contains(t, err.Error(), "failed after 3 attempts")
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		calls := 0
		notFound := errors.New("not found")
		err := Do(context.Background(), cfg, func(ctx context.Context) error {
			calls++
			return Permanent(notFound)
		})
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, err, notFound)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Do(ctx, Config{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond}, func(ctx context.Context) error {
			calls++
			cancel()
			return errors.New("transient")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestDoValue(t *testing.T) {
	cfg := Config{MaxAttempts: 2, BaseDelay: time.Millisecond}

	t.Run("returns value on success", func(t *testing.T) {
		got, err := DoValue(context.Background(), cfg, func(ctx context.Context) (int, error) {
			return 42, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("returns zero value on failure", func(t *testing.T) {
		got, err := DoValue(context.Background(), cfg, func(ctx context.Context) (string, error) {
			return "partial", errors.New("boom")
		})
		assert.Error(t, err)
		assert.Equal(t, "", got)
	})
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
