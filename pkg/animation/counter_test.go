package animation

import (
	"math"
	"testing"
	"time"

	"github.com/go-drift/nodeward/pkg/errors"
	nwtest "github.com/go-drift/nodeward/pkg/testing"
)

func newTestCounter(t *testing.T, end float64, d time.Duration) (*Counter, *FrameScheduler, *nwtest.FakeClock) {
	t.Helper()
	clock := nwtest.NewFakeClock()
	scheduler := NewFrameScheduler(clock)
	c, err := NewCounter(scheduler, end, d)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	t.Cleanup(c.Dispose)
	return c, scheduler, clock
}

func valueAt(c *Counter, s *FrameScheduler, clock *nwtest.FakeClock, advance time.Duration) int64 {
	clock.Advance(advance)
	s.Step()
	return c.Value()
}

func TestCounter_ScenarioEaseOutQuart(t *testing.T) {
	c, s, clock := newTestCounter(t, 98, 1500*time.Millisecond)
	c.SetTrigger(true)

	if got := valueAt(c, s, clock, 0); got != 0 {
		t.Errorf("at 0ms expected 0, got %d", got)
	}
	if got := valueAt(c, s, clock, 750*time.Millisecond); got != 92 {
		t.Errorf("at 750ms expected 92, got %d", got)
	}
	if got := valueAt(c, s, clock, 750*time.Millisecond); got != 98 {
		t.Errorf("at 1500ms expected 98, got %d", got)
	}
	if c.Status() != CounterHeld {
		t.Errorf("expected held, got %v", c.Status())
	}
	if s.HasActiveTickers() {
		t.Error("held counter should release its ticker")
	}
	if got := valueAt(c, s, clock, time.Second); got != 98 {
		t.Errorf("after completion expected 98, got %d", got)
	}
}

func TestCounter_Monotonic(t *testing.T) {
	tests := []struct {
		name string
		end  float64
	}{
		{"positive", 128},
		{"negative", -55},
		{"fractional", 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s, clock := newTestCounter(t, tt.end, 2*time.Second)
			c.SetTrigger(true)

			prev := c.Value()
			for range 150 {
				v := valueAt(c, s, clock, 16*time.Millisecond)
				if tt.end >= 0 && v < prev {
					t.Fatalf("value decreased from %d to %d", prev, v)
				}
				if tt.end < 0 && v > prev {
					t.Fatalf("value increased from %d to %d", prev, v)
				}
				prev = v
			}
			if want := roundHalfUp(tt.end); c.Value() != want {
				t.Errorf("expected final value %d, got %d", want, c.Value())
			}
		})
	}
}

func TestCounter_RestartFromZero(t *testing.T) {
	c, s, clock := newTestCounter(t, 100, time.Second)
	c.SetTrigger(true)
	valueAt(c, s, clock, 500*time.Millisecond)
	if c.Value() == 0 {
		t.Fatal("expected progress before reset")
	}

	c.SetTrigger(false)
	if c.Value() != 0 || c.Status() != CounterIdle {
		t.Fatalf("expected idle at 0, got %d %v", c.Value(), c.Status())
	}
	if s.HasActiveTickers() {
		t.Error("idle counter should release its ticker")
	}

	// Time passing while idle must not count toward the next run.
	clock.Advance(10 * time.Second)
	c.SetTrigger(true)
	if got := valueAt(c, s, clock, 0); got != 0 {
		t.Errorf("restart should begin at 0, got %d", got)
	}
	if got := valueAt(c, s, clock, 500*time.Millisecond); got != 94 {
		t.Errorf("expected 94 halfway through the second run, got %d", got)
	}
}

func TestCounter_RepeatedTriggerIsNoop(t *testing.T) {
	c, s, clock := newTestCounter(t, 100, time.Second)
	c.SetTrigger(true)
	valueAt(c, s, clock, 500*time.Millisecond)
	before := c.Value()

	c.SetTrigger(true)
	if c.Value() != before {
		t.Errorf("re-sending true should not restart, got %d want %d", c.Value(), before)
	}
}

func TestCounter_ZeroDurationSnaps(t *testing.T) {
	c, s, _ := newTestCounter(t, 10, 0)

	var seen []int64
	c.AddListener(func(v int64) { seen = append(seen, v) })

	c.SetTrigger(true)
	if c.Value() != 10 || c.Status() != CounterHeld {
		t.Errorf("expected immediate 10 held, got %d %v", c.Value(), c.Status())
	}
	if s.HasActiveTickers() {
		t.Error("zero duration should not schedule work")
	}
	if len(seen) != 1 || seen[0] != 10 {
		t.Errorf("expected one notification of 10, got %v", seen)
	}
}

func TestNewCounter_Invalid(t *testing.T) {
	s := NewFrameScheduler(nwtest.NewFakeClock())
	tests := []struct {
		name     string
		provider TickerProvider
		end      float64
		d        time.Duration
	}{
		{"negative duration", s, 10, -time.Millisecond},
		{"nil provider", nil, 10, time.Second},
		{"infinite end", s, posInf(), time.Second},
		{"end beyond int64", s, 1e300, time.Second},
		{"end at 2^63", s, math.MaxInt64, time.Second},
		{"negative end beyond int64", s, -1e19, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCounter(tt.provider, tt.end, tt.d)
			if !errors.IsKind(err, errors.KindConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestCounter_LargeEnd(t *testing.T) {
	const end = 1e18
	c, scheduler, clock := newTestCounter(t, end, time.Second)
	c.SetTrigger(true)
	clock.Advance(500 * time.Millisecond)
	scheduler.Step()
	if v := c.Value(); v < 0 || v > int64(end) {
		t.Fatalf("mid-run value %d outside [0, %d]", v, int64(end))
	}
	clock.Advance(time.Second)
	scheduler.Step()
	if got := c.Value(); got != int64(end) {
		t.Errorf("held value = %d, want %d", got, int64(end))
	}
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}

func TestCounter_DisposeCancels(t *testing.T) {
	c, s, clock := newTestCounter(t, 100, time.Second)
	notified := 0
	c.AddListener(func(int64) { notified++ })

	c.SetTrigger(true)
	valueAt(c, s, clock, 100*time.Millisecond)
	before := notified

	c.Dispose()
	c.Dispose()
	if s.HasActiveTickers() {
		t.Error("dispose should cancel the ticker")
	}

	valueAt(c, s, clock, 500*time.Millisecond)
	c.SetTrigger(false)
	c.SetTrigger(true)
	if notified != before {
		t.Errorf("no notifications expected after dispose, got %d more", notified-before)
	}
}

func TestCounter_DisposeInsideListener(t *testing.T) {
	c, s, clock := newTestCounter(t, 100, time.Second)
	calls := 0
	c.AddListener(func(int64) {
		calls++
		c.Dispose()
	})
	c.AddListener(func(int64) { calls++ })

	c.SetTrigger(true)
	valueAt(c, s, clock, 100*time.Millisecond)
	valueAt(c, s, clock, 100*time.Millisecond)

	if calls > 2 {
		t.Errorf("listeners kept firing after dispose: %d calls", calls)
	}
	if s.HasActiveTickers() {
		t.Error("ticker survived dispose from a listener")
	}
}

func TestCounter_PanickingListenerIsRecovered(t *testing.T) {
	c, s, clock := newTestCounter(t, 100, time.Second)
	c.AddListener(func(int64) { panic("listener bug") })

	var got int64
	c.AddListener(func(v int64) { got = v })

	c.SetTrigger(true)
	valueAt(c, s, clock, time.Second)
	if got != 100 {
		t.Errorf("healthy listener should still see 100, got %d", got)
	}
}

func TestCounter_Unsubscribe(t *testing.T) {
	c, s, clock := newTestCounter(t, 100, time.Second)
	calls := 0
	unsubscribe := c.AddListener(func(int64) { calls++ })
	unsubscribe()

	c.SetTrigger(true)
	valueAt(c, s, clock, time.Second)
	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
}

func TestCounterStatus_String(t *testing.T) {
	tests := map[CounterStatus]string{
		CounterIdle:       "idle",
		CounterConverging: "converging",
		CounterHeld:       "held",
		CounterStatus(9):  "CounterStatus(9)",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
