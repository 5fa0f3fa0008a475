// Package visibility decides whether regions of the page are inside the
// viewing window and exposes the answer as a boolean signal.
//
// A [Tracker] subscribes to an [Environment] for one [Target]. On every
// geometry change it recomputes the target's overlap ratio with the
// margin-adjusted window and compares it with its threshold. Trackers that
// trigger once latch true; the others toggle freely.
//
// [Viewport] is an in-process Environment modelling a scrolled document.
package visibility

import (
	"fmt"

	"github.com/go-drift/nodeward/pkg/errors"
	"github.com/go-drift/nodeward/pkg/geometry"
)

// Tracker watches one target and holds its visibility signal.
//
// A Tracker is confined to the goroutine its Environment delivers on. Call
// Stop when the owning view goes away.
type Tracker struct {
	env     Environment
	target  Target
	options Options
	margin  geometry.Margin

	sub        Subscription
	subscribed bool

	visible  bool
	latched  bool
	stopped  bool
	attached bool
	ratio    float64
	err      error

	listeners      map[int]func(bool)
	nextListenerID int
}

// Observe starts tracking target in env. It fails only for invalid options.
//
// A target the environment refuses is not an error to the caller: the
// tracker is returned inert, its signal never fires, and the condition is
// reported to the error handler and kept in Err.
//
// The environment may deliver the first entry before Observe returns, so
// read Visible (or use Bind) instead of waiting for a first notification.
func Observe(env Environment, target Target, opts Options) (*Tracker, error) {
	const op = "visibility.Observe"
	margin, err := opts.compile()
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, errors.Configuration(op, fmt.Errorf("nil environment"))
	}

	t := &Tracker{
		env:       env,
		target:    target,
		options:   opts,
		margin:    margin,
		listeners: make(map[int]func(bool)),
	}

	sub, err := env.Subscribe(target, t.handle)
	if err != nil {
		invalid := errors.InvalidTarget(op, fmt.Errorf("target %q: %w", target, err))
		t.err = invalid
		errors.Report(invalid)
		return t, nil
	}
	t.sub = sub
	t.subscribed = true
	if t.latched {
		t.unsubscribe()
	}
	return t, nil
}

// Target returns the tracked target.
func (t *Tracker) Target() Target { return t.target }

// Options returns the options the tracker was built with.
func (t *Tracker) Options() Options { return t.options }

// Visible returns the current visibility signal.
func (t *Tracker) Visible() bool { return t.visible }

// Latched reports whether a trigger-once tracker has fired.
func (t *Tracker) Latched() bool { return t.latched }

// Attached reports whether the most recent entry had the target attached.
func (t *Tracker) Attached() bool { return t.attached }

// Ratio returns the most recently computed overlap ratio.
func (t *Tracker) Ratio() float64 { return t.ratio }

// Err returns the invalid-target error if the environment refused the
// target, or nil.
func (t *Tracker) Err() error { return t.err }

// AddListener adds a callback that fires whenever the signal changes.
// Returns an unsubscribe function.
func (t *Tracker) AddListener(fn func(visible bool)) func() {
	if t.stopped {
		return func() {}
	}
	id := t.nextListenerID
	t.nextListenerID++
	t.listeners[id] = fn
	return func() {
		delete(t.listeners, id)
	}
}

// Bind calls fn with the current signal and then on every change.
func (t *Tracker) Bind(fn func(visible bool)) func() {
	if t.stopped {
		return func() {}
	}
	fn(t.visible)
	return t.AddListener(fn)
}

func (t *Tracker) handle(e Entry) {
	if t.stopped || t.latched {
		return
	}
	t.attached = e.Attached
	if !e.Attached {
		return
	}

	t.ratio = geometry.OverlapRatio(e.Target, t.margin.Apply(e.Root))
	visible := t.ratio > 0 && t.ratio >= t.options.Threshold
	if visible == t.visible {
		return
	}

	t.visible = visible
	if visible && t.options.TriggerOnce {
		t.latched = true
		t.unsubscribe()
	}
	t.notifyListeners()
}

func (t *Tracker) notifyListeners() {
	for _, listener := range t.listeners {
		if t.stopped {
			return
		}
		t.callListener(listener)
	}
}

func (t *Tracker) callListener(fn func(bool)) {
	defer errors.Recover("visibility.Tracker.listener")
	fn(t.visible)
}

func (t *Tracker) unsubscribe() {
	if t.subscribed {
		t.subscribed = false
		t.env.Unsubscribe(t.sub)
	}
}

// Stop ends observation. It is idempotent and may be called from inside a
// listener; no listener fires after it returns.
func (t *Tracker) Stop() {
	if t.stopped {
		return
	}
	t.stopped = true
	t.unsubscribe()
	t.listeners = nil
}
