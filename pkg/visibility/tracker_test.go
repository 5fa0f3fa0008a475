package visibility_test

import (
	"testing"

	"github.com/go-drift/nodeward/pkg/errors"
	"github.com/go-drift/nodeward/pkg/geometry"
	nwtest "github.com/go-drift/nodeward/pkg/testing"
	"github.com/go-drift/nodeward/pkg/visibility"
)

func observe(t *testing.T, env visibility.Environment, target visibility.Target, opts visibility.Options) *visibility.Tracker {
	t.Helper()
	tracker, err := visibility.Observe(env, target, opts)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	t.Cleanup(tracker.Stop)
	return tracker
}

func signals(env *nwtest.FakeEnvironment, tracker *visibility.Tracker, ratios []float64) []bool {
	out := make([]bool, 0, len(ratios))
	for _, r := range ratios {
		env.PushRatio(tracker.Target(), r)
		out = append(out, tracker.Visible())
	}
	return out
}

func equalBools(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTracker_TriggerOnceLatches(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "about", visibility.Options{Threshold: 0.1, TriggerOnce: true})

	got := signals(env, tracker, []float64{0.0, 0.05, 0.2, 0.0})
	want := []bool{false, false, true, true}
	if !equalBools(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !tracker.Latched() {
		t.Error("expected tracker to be latched")
	}
	if env.Subscribers("about") != 0 {
		t.Error("latched tracker should unsubscribe")
	}
}

func TestTracker_Toggles(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "stats", visibility.Options{Threshold: 0.3, TriggerOnce: false})

	got := signals(env, tracker, []float64{0.5, 0.1, 0.5})
	want := []bool{true, false, true}
	if !equalBools(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTracker_SignalMatchesLatestRatio(t *testing.T) {
	thresholds := []float64{0, 0.25, 0.5, 0.75, 1}
	ratios := []float64{0, 0.1, 0.25, 0.5, 0.6, 0.75, 1, 0.4, 0, 1, 0.5}

	for _, threshold := range thresholds {
		env := nwtest.NewFakeEnvironment()
		tracker := observe(t, env, "region", visibility.Options{Threshold: threshold})
		for _, r := range ratios {
			env.PushRatio("region", r)
			want := r > 0 && r >= threshold
			if tracker.Visible() != want {
				t.Errorf("threshold %v ratio %v: expected %v", threshold, r, want)
			}
		}
	}
}

func TestTracker_ListenerFiresOnChangeOnly(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "stats", visibility.Options{Threshold: 0.3})

	var seen []bool
	tracker.AddListener(func(v bool) { seen = append(seen, v) })

	for _, r := range []float64{0.5, 0.6, 0.7, 0.1, 0.2, 0.9} {
		env.PushRatio("stats", r)
	}
	want := []bool{true, false, true}
	if !equalBools(seen, want) {
		t.Errorf("expected %v, got %v", want, seen)
	}
}

func TestTracker_Bind(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "stats", visibility.Options{Threshold: 0.3})

	var seen []bool
	tracker.Bind(func(v bool) { seen = append(seen, v) })
	env.PushRatio("stats", 1)

	if !equalBools(seen, []bool{false, true}) {
		t.Errorf("expected initial false then true, got %v", seen)
	}
}

func TestTracker_StopIdempotent(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "stats", visibility.Options{Threshold: 0.3})

	calls := 0
	tracker.AddListener(func(bool) { calls++ })

	tracker.Stop()
	tracker.Stop()
	env.PushRatio("stats", 1)

	if calls != 0 {
		t.Errorf("expected no calls after stop, got %d", calls)
	}
	if env.Unsubscribed() != 1 {
		t.Errorf("expected exactly one unsubscribe, got %d", env.Unsubscribed())
	}
}

func TestTracker_StopInsideListener(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "stats", visibility.Options{Threshold: 0.3})

	calls := 0
	tracker.AddListener(func(bool) {
		calls++
		tracker.Stop()
	})
	tracker.AddListener(func(bool) { calls++ })

	env.PushRatio("stats", 1)
	env.PushRatio("stats", 0)

	if calls > 2 {
		t.Errorf("listeners fired after stop: %d", calls)
	}
	if env.Subscribers("stats") != 0 {
		t.Error("expected the subscription to be released")
	}
}

func TestTracker_DetachedEntriesIgnored(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "contact", visibility.Options{Threshold: 0.1})

	env.Detach("contact")
	env.PushRatio("contact", 1)

	if tracker.Visible() {
		t.Error("detached target must not become visible")
	}
	if tracker.Attached() {
		t.Error("expected Attached to report false")
	}
}

func TestObserve_InvalidTargetIsInert(t *testing.T) {
	h := &capturingHandler{}
	prev := errors.SetHandler(h)
	defer errors.SetHandler(prev)

	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "", visibility.DefaultOptions())

	if !errors.IsKind(tracker.Err(), errors.KindInvalidTarget) {
		t.Errorf("expected invalid-target error, got %v", tracker.Err())
	}
	if len(h.errs) != 1 {
		t.Errorf("expected the condition to be reported once, got %d", len(h.errs))
	}
	tracker.Stop()
	if tracker.Visible() {
		t.Error("inert tracker must stay false")
	}
}

func TestObserve_InvalidOptions(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tests := []struct {
		name string
		opts visibility.Options
	}{
		{"negative threshold", visibility.Options{Threshold: -0.1}},
		{"threshold above one", visibility.Options{Threshold: 1.5}},
		{"bad margin", visibility.Options{Threshold: 0.1, RootMargin: "50"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := visibility.Observe(env, "x", tt.opts)
			if !errors.IsKind(err, errors.KindConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
			if tt.opts.Validate() == nil {
				t.Error("Validate should agree with Observe")
			}
		})
	}

	if _, err := visibility.Observe(nil, "x", visibility.DefaultOptions()); !errors.IsKind(err, errors.KindConfiguration) {
		t.Errorf("expected configuration error for nil environment, got %v", err)
	}
}

func TestTracker_RootMarginShrinksWindow(t *testing.T) {
	env := nwtest.NewFakeEnvironment()
	tracker := observe(t, env, "footer", visibility.Options{Threshold: 0.1, RootMargin: "-50px"})

	// 40px of a 100px band peeks above the bottom edge; the margin hides it.
	env.Push("footer", geometry.RectFromLTWH(0, 960, 1000, 100))
	if tracker.Visible() {
		t.Errorf("expected margin to hide the band, ratio %v", tracker.Ratio())
	}

	env.Push("footer", geometry.RectFromLTWH(0, 900, 1000, 100))
	if !tracker.Visible() {
		t.Errorf("expected band inside the shrunk window, ratio %v", tracker.Ratio())
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := visibility.DefaultOptions()
	if opts.Threshold != 0.1 || !opts.TriggerOnce || opts.RootMargin != "" {
		t.Errorf("unexpected defaults %+v", opts)
	}
}

type capturingHandler struct {
	errs []*errors.Error
}

func (h *capturingHandler) HandleError(err *errors.Error)      { h.errs = append(h.errs, err) }
func (h *capturingHandler) HandlePanic(err *errors.PanicError) {}
