package quiz

import (
	"sync"
	"time"
)

// CountdownState is the lifecycle state of a Countdown run.
type CountdownState int

const (
	CountdownIdle CountdownState = iota
	CountdownRunning
	CountdownExpired
	CountdownCancelled
)

func (s CountdownState) String() string {
	switch s {
	case CountdownIdle:
		return "idle"
	case CountdownRunning:
		return "running"
	case CountdownExpired:
		return "expired"
	case CountdownCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type stopper interface {
	Stop() bool
}

// startTimer and clock are swapped out by tests.
var (
	startTimer = func(d time.Duration, f func()) stopper {
		return time.AfterFunc(d, f)
	}
	clock = time.Now
)

// Countdown is a restartable per-question timer. Every run is tagged with the
// index of the question it belongs to and only one run is live at a time:
// Start cancels the previous run before arming a new one, and a timer that
// fires after being superseded is dropped. onExpire runs on the timer's
// goroutine, at most once per run.
type Countdown struct {
	mu        sync.Mutex
	duration  time.Duration
	onExpire  func(tag int)
	afterFunc func(time.Duration, func()) stopper
	now       func() time.Time

	timer    stopper
	state    CountdownState
	tag      int
	gen      uint64
	deadline time.Time
}

// NewCountdown returns an idle countdown of duration d.
func NewCountdown(d time.Duration, onExpire func(tag int)) *Countdown {
	return &Countdown{
		duration:  d,
		onExpire:  onExpire,
		afterFunc: startTimer,
		now:       clock,
		tag:       -1,
	}
}

// Start arms a new run tagged with tag, cancelling any run in progress.
func (c *Countdown) Start(tag int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.gen++
	gen := c.gen
	c.tag = tag
	c.state = CountdownRunning
	c.deadline = c.now().Add(c.duration)
	c.timer = c.afterFunc(c.duration, func() { c.fire(gen) })
}

// Cancel stops the current run. It is a no-op unless a run is in progress.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CountdownRunning {
		return
	}
	c.stopLocked()
	c.state = CountdownCancelled
}

// State returns the state of the latest run.
func (c *Countdown) State() CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Tag returns the tag of the latest run, or -1 before the first Start.
func (c *Countdown) Tag() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tag
}

// Duration returns the full length of a run.
func (c *Countdown) Duration() time.Duration {
	return c.duration
}

// Remaining returns the time left in the current run, or zero when no run is
// in progress.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CountdownRunning {
		return 0
	}
	left := c.deadline.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}

func (c *Countdown) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != CountdownRunning {
		c.mu.Unlock()
		return
	}
	c.state = CountdownExpired
	c.timer = nil
	tag := c.tag
	onExpire := c.onExpire
	c.mu.Unlock()

	if onExpire != nil {
		onExpire(tag)
	}
}

func (c *Countdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
