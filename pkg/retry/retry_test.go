package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "jiraminer/pkg/errors"
	"jiraminer/pkg/logger"
)

func testPolicy(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     TransientOnly,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDo(t *testing.T) {
	t.Run("succeeds first attempt", func(t *testing.T) {
		calls := 0
		err := Do(func() error {
			calls++
			return nil
		}, testPolicy(3))

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors until success", func(t *testing.T) {
		calls := 0
		err := Do(func() error {
			calls++
			if calls < 3 {
				return errs.New(errs.ErrorTypeNetwork, 0, "connection refused")
			}
			return nil
		}, testPolicy(5))

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempt budget", func(t *testing.T) {
		calls := 0
		err := Do(func() error {
			calls++
			return errs.New(errs.ErrorTypeNetwork, 0, "timeout")
		}, testPolicy(3))

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Contains(t, err.Error(), "max retry attempts")
		assert.True(t, errs.IsType(err, errs.ErrorTypeNetwork), "exhaustion should wrap the last error")
	})

	t.Run("does not retry non-retryable errors", func(t *testing.T) {
		calls := 0
		respErr := errs.New(errs.ErrorTypeResponse, 500, "server error")
		err := Do(func() error {
			calls++
			return respErr
		}, testPolicy(5))

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, respErr, err)
	})

	t.Run("does not retry rate limit errors", func(t *testing.T) {
		calls := 0
		err := Do(func() error {
			calls++
			return errs.New(errs.ErrorTypeRateLimit, 429, "slow down")
		}, testPolicy(5))

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.True(t, errs.IsType(err, errs.ErrorTypeRateLimit))
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := testPolicy(0) // unlimited attempts
		cfg.Context = ctx
		cfg.Backoff = &ConstantBackoff{Delay: time.Hour}

		calls := 0
		done := make(chan error, 1)
		go func() {
			done <- Do(func() error {
				calls++
				return errs.New(errs.ErrorTypeNetwork, 0, "timeout")
			}, cfg)
		}()

		cancel()
		select {
		case err := <-done:
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("Do did not return after context cancellation")
		}
	})
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errs.New(errs.ErrorTypeNetwork, 0, "flaky")
		}
		return "ok", nil
	}, testPolicy(3))

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestTransientOnly(t *testing.T) {
	assert.False(t, TransientOnly(nil))
	assert.True(t, TransientOnly(errs.New(errs.ErrorTypeNetwork, 0, "timeout")))
	assert.False(t, TransientOnly(errs.New(errs.ErrorTypeRateLimit, 429, "slow down")))
	assert.False(t, TransientOnly(errs.New(errs.ErrorTypeResponse, 404, "not found")))
	assert.False(t, TransientOnly(errs.New(errs.ErrorTypeParsing, 200, "bad json")))
	assert.False(t, TransientOnly(context.Canceled))
	assert.False(t, TransientOnly(context.DeadlineExceeded))
	// Uncategorized errors are assumed to come from the transport.
	assert.True(t, TransientOnly(errors.New("connection reset")))
}

func TestExponentialBackoff(t *testing.T) {
	eb := &ExponentialBackoff{
		MinWait:    2 * time.Second,
		MaxWait:    60 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
	assert.Equal(t, 2*time.Second, eb.NextDelay(1))
	assert.Equal(t, 4*time.Second, eb.NextDelay(2))
	assert.Equal(t, 8*time.Second, eb.NextDelay(3))
	assert.Equal(t, 32*time.Second, eb.NextDelay(5))
	// Capped at MaxWait from attempt 6 on.
	assert.Equal(t, 60*time.Second, eb.NextDelay(6))
	assert.Equal(t, 60*time.Second, eb.NextDelay(20))
}

func TestExponentialBackoffJitter(t *testing.T) {
	eb := &ExponentialBackoff{
		MinWait:      10 * time.Second,
		MaxWait:      60 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for attempt := 1; attempt <= 3; attempt++ {
		delay := eb.NextDelay(attempt)
		base := 10 * time.Second * time.Duration(1<<(attempt-1))
		if base > 60*time.Second {
			base = 60 * time.Second
		}
		assert.GreaterOrEqual(t, delay, base/2)
		assert.LessOrEqual(t, delay, base+base/2)
	}
}

func TestWait(t *testing.T) {
	t.Run("returns after delay", func(t *testing.T) {
		require.NoError(t, Wait(context.Background(), time.Millisecond))
	})

	t.Run("zero delay with live context", func(t *testing.T) {
		require.NoError(t, Wait(context.Background(), 0))
	})

	t.Run("zero delay with cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, Wait(ctx, 0), context.Canceled)
	})

	t.Run("cancelled during wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go cancel()
		assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	})
}
