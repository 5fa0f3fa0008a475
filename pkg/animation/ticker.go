package animation

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameInterval approximates one display refresh at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Ticker calls a callback on each frame while active.
//
// Ticker is the low-level timing primitive used by [Counter]. Each ticker
// belongs to the [FrameScheduler] that created it and is driven by that
// scheduler's Step. The callback receives the elapsed time since Start.
type Ticker struct {
	scheduler *FrameScheduler
	callback  func(elapsed time.Duration)
	isActive  bool
	start     time.Time
}

// Start activates the ticker. Starting an active ticker does nothing.
func (t *Ticker) Start() {
	s := t.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.isActive {
		return
	}
	t.isActive = true
	t.start = s.clock.Now()
	s.active[t] = struct{}{}
}

// Stop deactivates the ticker. Once Stop returns the callback is not
// invoked again, including later in a Step that is already running.
func (t *Ticker) Stop() {
	s := t.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.isActive {
		return
	}
	t.isActive = false
	delete(s.active, t)
}

// IsActive returns whether the ticker is currently running.
func (t *Ticker) IsActive() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	return t.isActive
}

// Elapsed returns the time since the ticker started.
func (t *Ticker) Elapsed() time.Duration {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	if !t.isActive {
		return 0
	}
	return t.scheduler.clock.Now().Sub(t.start)
}

// TickerProvider creates tickers.
type TickerProvider interface {
	CreateTicker(callback func(elapsed time.Duration)) *Ticker
}

// FrameScheduler owns a set of tickers and advances them once per frame.
// It stands in for the host's animation-frame loop: the host either calls
// Step from its own loop or hands the loop to Run.
//
// Tickers may be started and stopped from any goroutine. Callbacks run on
// the goroutine that calls Step.
type FrameScheduler struct {
	mu     sync.Mutex
	clock  Clock
	active map[*Ticker]struct{}
}

// NewFrameScheduler creates a scheduler reading time from c. A nil clock
// uses the package clock (see [SetClock]).
func NewFrameScheduler(c Clock) *FrameScheduler {
	if c == nil {
		c = packageClock{}
	}
	return &FrameScheduler{
		clock:  c,
		active: make(map[*Ticker]struct{}),
	}
}

// CreateTicker returns an inactive ticker bound to this scheduler.
func (s *FrameScheduler) CreateTicker(callback func(elapsed time.Duration)) *Ticker {
	return &Ticker{scheduler: s, callback: callback}
}

// Now returns the scheduler's current time.
func (s *FrameScheduler) Now() time.Time {
	return s.clock.Now()
}

// Step advances all active tickers.
// This should be called once per frame.
func (s *FrameScheduler) Step() {
	s.mu.Lock()
	if len(s.active) == 0 {
		s.mu.Unlock()
		return
	}
	// Copy so callbacks can start and stop tickers without the lock held.
	tickers := make([]*Ticker, 0, len(s.active))
	for ticker := range s.active {
		tickers = append(tickers, ticker)
	}
	s.mu.Unlock()

	for _, ticker := range tickers {
		s.mu.Lock()
		active := ticker.isActive
		elapsed := s.clock.Now().Sub(ticker.start)
		s.mu.Unlock()
		if active && ticker.callback != nil {
			ticker.callback(elapsed)
		}
	}
}

// HasActiveTickers returns true if any tickers are active.
func (s *FrameScheduler) HasActiveTickers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active) > 0
}

// Run steps the scheduler every interval until ctx is done, calling
// onFrame (if non-nil) after each step on the same goroutine. Code that
// touches counters driven by this scheduler should run inside onFrame.
func (s *FrameScheduler) Run(ctx context.Context, interval time.Duration, onFrame func()) error {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step()
			if onFrame != nil {
				onFrame()
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}
