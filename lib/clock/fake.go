// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// Fake returns a FakeClock standing at initial. Time moves only when
// Advance is called.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a manually advanced Clock. After channels and tickers
// fire during Advance, in deadline order, with non-blocking sends.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	pending []*alarm
	changed *sync.Cond
}

// alarm is one registered After or ticker.
type alarm struct {
	deadline time.Time
	channel  chan time.Time

	// interval is zero for one-shot After alarms.
	interval time.Duration
	stopped  bool
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After registers a one-shot alarm d from now.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.registerLocked(&alarm{deadline: c.current.Add(d), channel: channel})
	return channel
}

// NewTicker registers a repeating alarm every d.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &alarm{
		deadline: c.current.Add(d),
		channel:  make(chan time.Time, 1),
		interval: d,
	}
	c.registerLocked(entry)

	return &Ticker{
		C: entry.channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			entry.stopped = true
			c.changed.Broadcast()
		},
		reset: func(d time.Duration) {
			c.mu.Lock()
			defer c.mu.Unlock()
			entry.interval = d
			entry.deadline = c.current.Add(d)
			if entry.stopped {
				entry.stopped = false
				c.registerLocked(entry)
			}
		},
	}
}

func (c *FakeClock) registerLocked(entry *alarm) {
	if !slices.Contains(c.pending, entry) {
		c.pending = append(c.pending, entry)
	}
	c.changed.Broadcast()
}

// Advance moves the clock forward by d and fires every alarm whose
// deadline is at or before the new time. A ticker spanning several
// intervals fires once per interval; ticks that find the channel full
// are dropped.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current

	for {
		due := c.dueLocked(target)
		if len(due) == 0 {
			break
		}
		for _, entry := range due {
			select {
			case entry.channel <- target:
			default:
			}
		}
	}
	c.changed.Broadcast()
	c.mu.Unlock()
}

// dueLocked removes expired alarms, reschedules tickers, and returns
// the expired alarms sorted by deadline.
func (c *FakeClock) dueLocked(target time.Time) []*alarm {
	var due []*alarm
	remaining := c.pending[:0]
	for _, entry := range c.pending {
		switch {
		case entry.stopped:
		case !entry.deadline.After(target):
			due = append(due, entry)
		default:
			remaining = append(remaining, entry)
		}
	}
	slices.SortFunc(due, func(a, b *alarm) int {
		return a.deadline.Compare(b.deadline)
	})
	for _, entry := range due {
		if entry.interval > 0 {
			entry.deadline = entry.deadline.Add(entry.interval)
			remaining = append(remaining, entry)
		}
	}
	c.pending = remaining
	return due
}

// WaitForTimers blocks until at least n alarms are pending. Tests call
// it before Advance so that a goroutine's ticker or After is
// registered first.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of active alarms.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) pendingLocked() int {
	count := 0
	for _, entry := range c.pending {
		if !entry.stopped {
			count++
		}
	}
	return count
}
