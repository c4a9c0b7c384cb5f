package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopmate/internal/domain"
)

func recordingSleeper(delays *[]time.Duration) Sleeper {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDoRetriesWithExponentialBackoff(t *testing.T) {
	var delays []time.Duration
	attempts := 0

	err := Do(context.Background(), Config{MaxAttempts: 3, BaseDelay: time.Second}, recordingSleeper(&delays), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return domain.NewFailure(domain.FailNetwork, "test", "transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestDoCapsDelay(t *testing.T) {
	var delays []time.Duration
	cfg := Config{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 3 * time.Second}

	err := Do(context.Background(), cfg, recordingSleeper(&delays), func(context.Context) error {
		return domain.NewFailure(domain.FailTimeout, "test", "slow")
	})

	require.Error(t, err)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}, delays)
}

func TestDoStopsOnTerminalFailure(t *testing.T) {
	attempts := 0
	terminal := domain.NewFailure(domain.FailAuthentication, "test", "bad key")

	err := Do(context.Background(), Default(), nil, func(context.Context) error {
		attempts++
		return terminal
	})

	require.Equal(t, 1, attempts)
	require.ErrorIs(t, err, error(terminal))
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, recordingSleeper(&[]time.Duration{}), func(context.Context) error {
		attempts++
		return domain.NewFailure(domain.FailRateLimited, "test", "throttled")
	})

	require.Equal(t, 3, attempts)
	var f *domain.Failure
	require.ErrorAs(t, err, &f)
	require.Equal(t, domain.FailRateLimited, f.Kind)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, Default(), nil, func(context.Context) error {
		attempts++
		return nil
	})

	require.Equal(t, 0, attempts)
	var f *domain.Failure
	require.ErrorAs(t, err, &f)
	require.Equal(t, domain.FailTimeout, f.Kind)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDoPlainErrorsAreTerminal(t *testing.T) {
	attempts := 0
	plain := errors.New("not tagged")

	err := Do(context.Background(), Default(), nil, func(context.Context) error {
		attempts++
		return plain
	})

	require.Equal(t, 1, attempts)
	require.ErrorIs(t, err, plain)
}
