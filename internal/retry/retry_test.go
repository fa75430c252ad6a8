package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxRetries:  3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
		JitterRatio: 0,
	}
}

func neverRetryable(error) bool { return false }

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastConfig(), "op", func(error) bool { return true }, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(), "op", func(error) bool { return true }, func() (int, error) {
		calls++
		return 0, errors.New("transient")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "op failed after 3 retries")
	assert.Equal(t, 4, calls) // initial attempt + 3 retries
}

func TestDoReturnsNonRetryableImmediately(t *testing.T) {
	fatal := errors.New("bad credentials")
	calls := 0
	_, err := Do(context.Background(), fastConfig(), "op", neverRetryable, func() (int, error) {
		calls++
		return 0, fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastConfig()
	cfg.BaseDelay = time.Hour // the cancel must win the select

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, cfg, "op", func(error) bool { return true }, func() (int, error) {
		calls++
		return 0, errors.New("transient")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
