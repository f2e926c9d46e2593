package mines

import (
	"context"
	"time"
)

// RunClock calls [Session.Tick] for every value received on ticks until
// the game is over, ticks is closed or ctx is done.
func (s *Session) RunClock(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-s.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			s.Tick()
		}
	}
}

// StartClock runs the clock in real time, one tick per second.
func (s *Session) StartClock(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	return s.RunClock(ctx, ticker.C)
}
