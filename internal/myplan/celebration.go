package myplan

import "time"

// DefaultCelebrationDelay is how long the celebration stays on screen.
const DefaultCelebrationDelay = 5 * time.Second

// scheduleFunc runs f after d and returns a function that stops it.
type scheduleFunc func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// celebrationTimer is a one-shot delay owned by a Session. All methods are
// called with the session lock held. Cancelling bumps the generation, so a
// callback that already started sees it is stale and does nothing.
type celebrationTimer struct {
	delay    time.Duration
	schedule scheduleFunc

	gen     uint64
	pending bool
	stop    func() bool
}

// arm schedules fire unless a timer is already pending.
func (c *celebrationTimer) arm(fire func(gen uint64)) {
	if c.pending {
		return
	}
	c.gen++
	gen := c.gen
	c.pending = true
	c.stop = c.schedule(c.delay, func() { fire(gen) })
}

func (c *celebrationTimer) cancel() {
	c.gen++
	if c.pending && c.stop != nil {
		c.stop()
	}
	c.pending = false
	c.stop = nil
}

// expired reports whether the callback for gen is still the current one and
// consumes it.
func (c *celebrationTimer) expired(gen uint64) bool {
	if !c.pending || gen != c.gen {
		return false
	}
	c.pending = false
	c.stop = nil
	return true
}
