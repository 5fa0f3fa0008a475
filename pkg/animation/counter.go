package animation

import (
	"fmt"
	"math"
	"time"

	"github.com/go-drift/nodeward/pkg/errors"
)

// CounterStatus is the state of a [Counter].
//
//	        SetTrigger(true)              progress >= 1
//	Idle ─────────────────► Converging ─────────────────► Held
//	 ▲                          │                          │
//	 └──────────────────────────┴──────────────────────────┘
//	                    SetTrigger(false)
type CounterStatus int

const (
	// CounterIdle means the trigger is false and the value is 0.
	CounterIdle CounterStatus = iota
	// CounterConverging means the value is moving toward the end value.
	CounterConverging
	// CounterHeld means the value has reached the end value.
	CounterHeld
)

// String returns a human-readable representation of the status.
func (s CounterStatus) String() string {
	switch s {
	case CounterIdle:
		return "idle"
	case CounterConverging:
		return "converging"
	case CounterHeld:
		return "held"
	default:
		return fmt.Sprintf("CounterStatus(%d)", int(s))
	}
}

// Counter counts up from 0 to an end value over a duration whenever its
// trigger is true, and snaps back to 0 when the trigger goes false.
//
// Every true transition restarts the count from 0 with a fresh ticker; a
// count is never resumed. Values are rounded half up on every tick. A zero
// duration jumps straight to the end value.
//
// A Counter is confined to the goroutine that steps its scheduler. Always
// call Dispose when done; after Dispose no listener fires again.
type Counter struct {
	// Curve eases the linear progress. Defaults to [EaseOutQuart].
	Curve Curve

	end      float64
	duration time.Duration
	provider TickerProvider

	trigger  bool
	status   CounterStatus
	value    int64
	ticker   *Ticker
	disposed bool

	listeners      map[int]func(int64)
	nextListenerID int
}

// NewCounter creates an idle counter. The end value must be finite and fit
// in an int64, and the duration must not be negative.
func NewCounter(provider TickerProvider, end float64, duration time.Duration) (*Counter, error) {
	const op = "animation.NewCounter"
	if provider == nil {
		return nil, errors.Configuration(op, fmt.Errorf("nil ticker provider"))
	}
	if math.IsNaN(end) || math.IsInf(end, 0) {
		return nil, errors.Configuration(op, fmt.Errorf("end value %v is not finite", end))
	}
	if math.Abs(end) >= math.MaxInt64 {
		return nil, errors.Configuration(op, fmt.Errorf("end value %v out of range", end))
	}
	if duration < 0 {
		return nil, errors.Configuration(op, fmt.Errorf("negative duration %v", duration))
	}
	return &Counter{
		Curve:     EaseOutQuart,
		end:       end,
		duration:  duration,
		provider:  provider,
		status:    CounterIdle,
		listeners: make(map[int]func(int64)),
	}, nil
}

// End returns the value the counter converges to.
func (c *Counter) End() float64 { return c.end }

// Duration returns the convergence time budget.
func (c *Counter) Duration() time.Duration { return c.duration }

// Value returns the current display value.
func (c *Counter) Value() int64 { return c.value }

// Status returns the current state.
func (c *Counter) Status() CounterStatus { return c.status }

// Trigger returns the last trigger value supplied.
func (c *Counter) Trigger() bool { return c.trigger }

// SetTrigger feeds the trigger. Repeating the current value does nothing.
func (c *Counter) SetTrigger(on bool) {
	if c.disposed || on == c.trigger {
		return
	}
	c.trigger = on
	c.release()
	c.setValue(0)

	if !on {
		c.status = CounterIdle
		return
	}
	if c.duration == 0 {
		c.status = CounterHeld
		c.setValue(roundHalfUp(c.end))
		return
	}
	c.status = CounterConverging
	c.acquire()
}

// acquire starts the ticker that drives one convergence. Every path that
// leaves Converging goes through release.
func (c *Counter) acquire() {
	var t *Ticker
	t = c.provider.CreateTicker(func(elapsed time.Duration) {
		c.tick(t, elapsed)
	})
	c.ticker = t
	t.Start()
}

func (c *Counter) release() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Counter) tick(t *Ticker, elapsed time.Duration) {
	if c.ticker != t {
		// Stale tick from a ticker this counter already released.
		return
	}
	progress := clampUnit(float64(elapsed) / float64(c.duration))
	curve := c.Curve
	if curve == nil {
		curve = EaseOutQuart
	}
	c.setValue(roundHalfUp(curve(progress) * c.end))

	if progress >= 1 {
		c.release()
		c.status = CounterHeld
	}
}

func (c *Counter) setValue(v int64) {
	if v == c.value {
		return
	}
	c.value = v
	c.notifyListeners()
}

// AddListener adds a callback that fires whenever the display value
// changes. Returns an unsubscribe function.
func (c *Counter) AddListener(fn func(value int64)) func() {
	if c.disposed {
		return func() {}
	}
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = fn
	return func() {
		delete(c.listeners, id)
	}
}

func (c *Counter) notifyListeners() {
	for _, listener := range c.listeners {
		if c.disposed {
			return
		}
		c.callListener(listener)
	}
}

func (c *Counter) callListener(fn func(int64)) {
	defer errors.Recover("animation.Counter.listener")
	fn(c.value)
}

// Dispose stops any convergence in flight and releases listeners.
// It is safe to call more than once.
func (c *Counter) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.release()
	c.listeners = nil
}

// roundHalfUp rounds to the nearest integer with halves going toward
// positive infinity, so -2.5 becomes -2 and 2.5 becomes 3.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
