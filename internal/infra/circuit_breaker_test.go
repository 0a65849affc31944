package infra_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/clock"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("connection refused")

func failing() error { return errStore }
func ok() error      { return nil }

func newBreaker(clk clock.Clock) *infra.CircuitBreaker {
	return infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Second,
	}, clk)
}

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 8, 28, 10, 0, 0, 0, time.UTC))
	cb := newBreaker(clk)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(failing), errStore)
	}
	assert.Equal(t, infra.CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.False(t, called, "open breaker must not call through")
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := newBreaker(clock.NewFixed(time.Now()))

	_ = cb.Execute(failing)
	_ = cb.Execute(failing)
	require.NoError(t, cb.Execute(ok))
	_ = cb.Execute(failing)

	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 8, 28, 10, 0, 0, 0, time.UTC))
	cb := newBreaker(clk)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(failing)
	}

	clk.Advance(10 * time.Second)
	assert.Equal(t, infra.CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, infra.CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 8, 28, 10, 0, 0, 0, time.UTC))
	cb := newBreaker(clk)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(failing)
	}
	clk.Advance(11 * time.Second)

	assert.ErrorIs(t, cb.Execute(failing), errStore)
	assert.Equal(t, infra.CBOpen, cb.State())

	clk.Advance(5 * time.Second)
	assert.Equal(t, infra.CBOpen, cb.State(), "timeout restarts from the failed probe")
}

func TestCircuitBreaker_CanceledCallsDoNotTrip(t *testing.T) {
	cb := newBreaker(clock.NewFixed(time.Now()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 5; i++ {
		err := cb.Execute(func() error { return fmt.Errorf("increment: %w", ctx.Err()) })
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, infra.CBClosed, cb.State())

	// and they do not reset a failure streak either
	_ = cb.Execute(failing)
	_ = cb.Execute(failing)
	_ = cb.Execute(func() error { return context.Canceled })
	_ = cb.Execute(failing)
	assert.Equal(t, infra.CBOpen, cb.State())
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", infra.CBClosed.String())
	assert.Equal(t, "open", infra.CBOpen.String())
	assert.Equal(t, "half-open", infra.CBHalfOpen.String())
}
