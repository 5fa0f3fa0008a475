package reveal

import (
	"github.com/go-drift/nodeward/pkg/animation"
	"github.com/go-drift/nodeward/pkg/content"
	"github.com/go-drift/nodeward/pkg/visibility"
)

// Target names used for the parts of a section.
func RevealTarget(id string) visibility.Target { return visibility.Target(id) }
func BodyTarget(id string) visibility.Target   { return visibility.Target(id + "/body") }
func StatsTarget(id string) visibility.Target  { return visibility.Target(id + "/stats") }

// Section is one mounted block of the page. It owns an optional entrance
// reveal, an optional once-tracker on its body, and an optional stats row
// whose tracker drives every counter in the row.
type Section struct {
	spec content.Section

	reveal   *Reveal
	body     *visibility.Tracker
	stats    *visibility.Tracker
	counters []*StatCounter
	unbind   func()
	closed   bool
}

// NewSection mounts spec on env. Regions for the section's targets must
// already be placed for the first entries to be attached.
func NewSection(env visibility.Environment, provider animation.TickerProvider, spec content.Section) (*Section, error) {
	s := &Section{spec: spec}
	if err := s.mount(env, provider); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Section) mount(env visibility.Environment, provider animation.TickerProvider) error {
	if r := s.spec.Reveal; r != nil {
		opts := DefaultOptions()
		opts.Animation = Animation(r.Animation)
		opts.Delay = r.Delay
		if r.Threshold > 0 {
			opts.Threshold = r.Threshold
		}
		if r.RootMargin != "" {
			opts.RootMargin = r.RootMargin
		}
		rv, err := NewReveal(env, RevealTarget(s.spec.ID), opts)
		if err != nil {
			return err
		}
		s.reveal = rv
	}

	if b := s.spec.Body; b != nil {
		t, err := visibility.Observe(env, BodyTarget(s.spec.ID), visibility.Options{
			Threshold:   b.Threshold,
			TriggerOnce: b.Once,
		})
		if err != nil {
			return err
		}
		s.body = t
	}

	if row := s.spec.Stats; row != nil {
		for _, st := range row.Items {
			c, err := NewStatCounter(provider, st)
			if err != nil {
				return err
			}
			s.counters = append(s.counters, c)
		}
		t, err := visibility.Observe(env, StatsTarget(s.spec.ID), visibility.Options{
			Threshold:   row.Threshold,
			TriggerOnce: row.Once,
		})
		if err != nil {
			return err
		}
		s.stats = t
		s.unbind = t.Bind(func(visible bool) {
			for _, c := range s.counters {
				c.SetTrigger(visible)
			}
		})
	}
	return nil
}

// ID returns the section id.
func (s *Section) ID() string { return s.spec.ID }

// Spec returns the catalog entry the section was built from.
func (s *Section) Spec() content.Section { return s.spec }

// Reveal returns the entrance reveal, or nil if the section has none.
func (s *Section) Reveal() *Reveal { return s.reveal }

// Revealed reports whether the section's entrance has fired. Sections
// without a reveal are always shown.
func (s *Section) Revealed() bool {
	return s.reveal == nil || s.reveal.Visible()
}

// BodyVisible reports the body tracker's signal. Sections without a body
// tracker follow Revealed.
func (s *Section) BodyVisible() bool {
	if s.body == nil {
		return s.Revealed()
	}
	return s.body.Visible()
}

// StatsVisible reports whether the stats row is in view.
func (s *Section) StatsVisible() bool {
	return s.stats != nil && s.stats.Visible()
}

// Counters returns the stats row's counters in catalog order.
func (s *Section) Counters() []*StatCounter { return s.counters }

// Close stops every tracker and disposes every counter. It is idempotent.
func (s *Section) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.unbind != nil {
		s.unbind()
	}
	if s.stats != nil {
		s.stats.Stop()
	}
	for _, c := range s.counters {
		c.Dispose()
	}
	if s.body != nil {
		s.body.Stop()
	}
	if s.reveal != nil {
		s.reveal.Close()
	}
}
