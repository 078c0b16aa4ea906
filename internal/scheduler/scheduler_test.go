package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adihub26/kicks-shoe-store/internal/scheduler"
)

type countingEngine struct {
	sweeps atomic.Int64
}

func (e *countingEngine) Sweep() int {
	e.sweeps.Add(1)
	return 0
}

func TestSweeperTicks(t *testing.T) {
	eng := &countingEngine{}
	sw := scheduler.NewSweeper(eng, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return eng.sweeps.Load() >= 3
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}
