package stream

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Clock yields consecutive one-second timestamps starting from a fixed
// origin. In realtime mode every Tick waits on a 1 Hz limiter so the
// sequence tracks the wall clock; otherwise it free-runs, which is what
// backfills and tests want.
type Clock struct {
	next    time.Time
	limiter *rate.Limiter
}

func NewClock(start time.Time, realtime bool) *Clock {
	c := &Clock{next: start.Truncate(time.Second)}
	if realtime {
		c.limiter = rate.NewLimiter(rate.Limit(1), 1)
	}
	return c
}

// Tick returns the next second in the sequence. It only fails when the
// context is canceled while pacing.
func (c *Clock) Tick(ctx context.Context) (time.Time, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return time.Time{}, err
		}
	}
	t := c.next
	c.next = c.next.Add(time.Second)
	return t, nil
}
