package game

import "time"

// Timer is the handle of an armed callback. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler arms one-shot callbacks on their own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler schedules on the wall clock.
var SystemScheduler Scheduler = clockScheduler{}

// countdown is the single deadline of a session. Every start or cancel bumps
// the generation; a callback carrying an older generation is stale and must
// not touch session state. All methods run under the session lock.
type countdown struct {
	scheduler  Scheduler
	timer      Timer
	generation uint64
	delay      time.Duration
	pending    bool
}

// start arms a new deadline and invalidates any earlier one.
func (c *countdown) start(delay time.Duration, fire func(generation uint64)) {
	c.cancel()
	gen := c.generation
	c.delay = delay
	c.pending = true
	c.timer = c.scheduler.AfterFunc(delay, func() {
		fire(gen)
	})
}

// cancel stops the timer if it has not fired yet. A callback already in
// flight is disarmed through the generation bump.
func (c *countdown) cancel() {
	c.generation++
	c.pending = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *countdown) isCurrent(generation uint64) bool {
	return c.pending && generation == c.generation
}
