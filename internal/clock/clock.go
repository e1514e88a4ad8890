// Package clock abstracts waiting so timed stages can be tested without sleeping.
package clock

import (
	"context"
	"sync"
	"time"
)

type (
	// Clock abstracts time operations for deterministic testing.
	// Production code uses Real; tests use Fake.
	Clock interface {
		// Now returns the current time.
		Now() time.Time

		// After waits for the duration to elapse and then returns the current time.
		After(d time.Duration) <-chan time.Time

		// Since returns the time elapsed since t.
		Since(t time.Time) time.Duration
	}

	// Real implements Clock using actual system time.
	Real struct{}

	// Fake implements Clock with manually controlled time.
	//
	// By default time only moves on Advance or Set. With auto-advance enabled
	// every After call moves time forward by its duration and fires at once,
	// which lets polling loops run to completion in a single goroutine.
	Fake struct {
		mu          sync.Mutex
		current     time.Time
		autoAdvance bool
		waiters     []waiter
		waits       []time.Duration
	}

	waiter struct {
		target time.Time
		ch     chan time.Time
	}
)

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// After returns a channel that receives the time after duration d.
func (Real) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Since returns the time elapsed since t.
func (Real) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Sleep blocks on c for d or until ctx is done.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}

// NewFake creates a Fake initialized to the given time.
// A zero initial time defaults to a fixed reference for reproducibility.
func NewFake(initial time.Time) *Fake {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Fake{current: initial}
}

// NewAutoFake creates a Fake whose After calls advance time immediately.
func NewAutoFake() *Fake {
	f := NewFake(time.Time{})
	f.autoAdvance = true
	return f
}

// Now returns the current fake time.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the fake time reaches now+d.
func (c *Fake) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.waits = append(c.waits, d)
	ch := make(chan time.Time, 1)
	if c.autoAdvance && d > 0 {
		c.current = c.current.Add(d)
	}
	if d <= 0 || c.autoAdvance {
		ch <- c.current
		return ch
	}

	c.waiters = append(c.waiters, waiter{target: c.current.Add(d), ch: ch})
	return ch
}

// Since returns the fake time elapsed since t.
func (c *Fake) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Sub(t)
}

// Advance moves the fake time forward by d and fires due waiters.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	c.notifyWaiters()
}

// Set sets the fake time to t and fires due waiters.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
	c.notifyWaiters()
}

// Waits returns every duration passed to After, in call order.
func (c *Fake) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.waits))
	copy(out, c.waits)
	return out
}

// Pending returns the number of After calls not yet fired.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// notifyWaiters must be called with mu held.
func (c *Fake) notifyWaiters() {
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !c.current.Before(w.target) {
			select {
			case w.ch <- c.current:
			default:
			}
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}
