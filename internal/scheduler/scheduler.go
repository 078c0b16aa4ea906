package scheduler

import (
	"context"
	"log"
	"time"
)

// Sweepable is the slice of the engine the sweeper drives.
type Sweepable interface {
	Sweep() int
}

// Sweeper periodically asks the engine to re-derive delivery statuses from
// order age. It is the only source of automatic advancement.
type Sweeper struct {
	engine   Sweepable
	interval time.Duration
}

func NewSweeper(engine Sweepable, interval time.Duration) *Sweeper {
	return &Sweeper{engine: engine, interval: interval}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.engine.Sweep(); n > 0 {
				log.Printf("sweep: advanced %d order(s)", n)
			}
		}
	}
}
