// Package reveal composes visibility trackers and counters into the
// scroll-driven pieces of the landing page: entrance reveals, animated stat
// counters, sections and the mounted page.
//
// Everything here is confined to the goroutine that drives the page's
// environment and frame scheduler.
package reveal

import (
	"fmt"
	"strings"

	"github.com/go-drift/nodeward/pkg/errors"
	"github.com/go-drift/nodeward/pkg/visibility"
)

// Animation names the entrance effect of a reveal.
type Animation string

const (
	FadeUp    Animation = "fade-up"
	FadeDown  Animation = "fade-down"
	FadeLeft  Animation = "fade-left"
	FadeRight Animation = "fade-right"
	ScaleIn   Animation = "scale-in"
	ZoomIn    Animation = "zoom-in"
)

// Valid reports whether a is a known animation.
func (a Animation) Valid() bool {
	switch a {
	case FadeUp, FadeDown, FadeLeft, FadeRight, ScaleIn, ZoomIn:
		return true
	}
	return false
}

// DefaultRootMargin shrinks the window by 50px on every side so content
// starts revealing slightly after it enters the screen.
const DefaultRootMargin = "-50px"

// Options configures a Reveal.
type Options struct {
	Animation Animation
	// Delay is an optional delay class such as "delay-100".
	Delay       string
	Threshold   float64
	TriggerOnce bool
	RootMargin  string
	// Class is appended to the generated class list.
	Class string
}

// DefaultOptions returns a fade-up reveal at 10% that triggers once.
func DefaultOptions() Options {
	return Options{
		Animation:   FadeUp,
		Threshold:   0.1,
		TriggerOnce: true,
		RootMargin:  DefaultRootMargin,
	}
}

// Reveal wraps one target and reports the class list its element carries.
type Reveal struct {
	options Options
	tracker *visibility.Tracker
}

// NewReveal starts observing target.
func NewReveal(env visibility.Environment, target visibility.Target, opts Options) (*Reveal, error) {
	if opts.Animation == "" {
		opts.Animation = FadeUp
	}
	if !opts.Animation.Valid() {
		return nil, errors.Configuration("reveal.NewReveal", fmt.Errorf("unknown animation %q", opts.Animation))
	}
	tracker, err := visibility.Observe(env, target, visibility.Options{
		Threshold:   opts.Threshold,
		RootMargin:  opts.RootMargin,
		TriggerOnce: opts.TriggerOnce,
	})
	if err != nil {
		return nil, err
	}
	return &Reveal{options: opts, tracker: tracker}, nil
}

// Options returns the reveal's options.
func (r *Reveal) Options() Options { return r.options }

// Visible reports whether the reveal has fired.
func (r *Reveal) Visible() bool { return r.tracker.Visible() }

// Tracker exposes the underlying tracker.
func (r *Reveal) Tracker() *visibility.Tracker { return r.tracker }

// Classes returns the element's class list, e.g.
// "scroll-reveal fade-up delay-100 visible".
func (r *Reveal) Classes() string {
	parts := []string{"scroll-reveal", string(r.options.Animation)}
	if r.options.Delay != "" {
		parts = append(parts, r.options.Delay)
	}
	if r.tracker.Visible() {
		parts = append(parts, "visible")
	}
	if r.options.Class != "" {
		parts = append(parts, r.options.Class)
	}
	return strings.Join(parts, " ")
}

// Close stops observation.
func (r *Reveal) Close() {
	r.tracker.Stop()
}
