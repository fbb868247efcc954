package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-orders/internal/order"
)

func TestPingCheckerCachesResult(t *testing.T) {
	calls := 0
	checker := order.NewPingChecker(func(ctx context.Context) error {
		calls++
		return nil
	}, time.Second)

	assert.True(t, checker.Reachable())
	assert.True(t, checker.Reachable())
	assert.True(t, checker.Reachable())
	assert.Equal(t, 1, calls, "probe should run exactly once per checker")
}

func TestPingCheckerRecordsFailure(t *testing.T) {
	checker := order.NewPingChecker(func(ctx context.Context) error {
		return errors.New("connection refused")
	}, time.Second)

	assert.False(t, checker.Reachable())
	// A recovered store is not noticed within the same checker's lifetime.
	assert.False(t, checker.Reachable())
}

func TestPingCheckerBoundsProbeTime(t *testing.T) {
	checker := order.NewPingChecker(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			return errors.New("no deadline set")
		}
		if time.Until(deadline) > 2*time.Second {
			return errors.New("deadline too far out")
		}
		return nil
	}, time.Second)

	assert.True(t, checker.Reachable())
}

func TestStaticChecker(t *testing.T) {
	assert.True(t, order.StaticChecker(true).Reachable())
	assert.False(t, order.StaticChecker(false).Reachable())
}
