package reveal

import (
	"strconv"

	"github.com/go-drift/nodeward/pkg/animation"
	"github.com/go-drift/nodeward/pkg/content"
)

// Stat describes one animated figure.
type Stat = content.Stat

// StatCounter is a Counter decorated with its label and affixes.
type StatCounter struct {
	stat    Stat
	counter *animation.Counter
}

// NewStatCounter builds an idle counter for s.
func NewStatCounter(provider animation.TickerProvider, s Stat) (*StatCounter, error) {
	c, err := animation.NewCounter(provider, s.End, s.Duration)
	if err != nil {
		return nil, err
	}
	return &StatCounter{stat: s, counter: c}, nil
}

// Stat returns the figure's description.
func (s *StatCounter) Stat() Stat { return s.stat }

// Counter returns the underlying counter.
func (s *StatCounter) Counter() *animation.Counter { return s.counter }

// Label returns the caption shown under the figure.
func (s *StatCounter) Label() string { return s.stat.Label }

// Value returns the current count.
func (s *StatCounter) Value() int64 { return s.counter.Value() }

// Text renders prefix, current value and suffix, e.g. "<10ms".
func (s *StatCounter) Text() string {
	return s.stat.Prefix + strconv.FormatInt(s.counter.Value(), 10) + s.stat.Suffix
}

// SetTrigger forwards the visibility signal to the counter.
func (s *StatCounter) SetTrigger(on bool) { s.counter.SetTrigger(on) }

// Dispose releases the counter.
func (s *StatCounter) Dispose() { s.counter.Dispose() }
