package chain

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// DefaultClockInterval is how often the chain clock is re-read.
const DefaultClockInterval = 30 * time.Second

// Clock tracks the cluster's notion of current time, derived from the
// block time of the latest slot. Now returns 0 until the first successful
// refresh; guard date checks must tolerate that.
type Clock struct {
	gw  Gateway
	now atomic.Int64
}

// NewClock creates a clock reading through the given gateway.
func NewClock(gw Gateway) *Clock {
	return &Clock{gw: gw}
}

// Now returns the last fetched chain time as a unix timestamp.
func (c *Clock) Now() int64 {
	return c.now.Load()
}

// Refresh fetches the current slot's block time. A fetch error leaves the
// previous value in place.
func (c *Clock) Refresh(ctx context.Context) error {
	slot, err := c.gw.GetSlot(ctx)
	if err != nil {
		return err
	}
	t, err := c.gw.GetBlockTime(ctx, slot)
	if err != nil {
		return err
	}
	c.now.Store(t)
	return nil
}

// Run refreshes the clock immediately and then on the given interval until
// the context is cancelled. Consumers only ever read the stored value.
func (c *Clock) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultClockInterval
	}
	if err := c.Refresh(ctx); err != nil {
		log.Printf("[clock] initial refresh failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				log.Printf("[clock] refresh failed: %v", err)
			}
		}
	}
}
