package visibility

import (
	"fmt"
	"math"

	"github.com/go-drift/nodeward/pkg/errors"
	"github.com/go-drift/nodeward/pkg/geometry"
)

// Options configures a Tracker.
type Options struct {
	// Threshold is the minimum overlap ratio, in [0, 1], that counts as
	// visible. Zero means any overlap at all.
	Threshold float64
	// RootMargin adjusts the viewing window before intersection, in CSS
	// shorthand (e.g. "-50px" or "10% 0px").
	RootMargin string
	// TriggerOnce latches the signal the first time it becomes true.
	TriggerOnce bool
}

// DefaultOptions returns a 10% threshold with no margin that triggers once.
func DefaultOptions() Options {
	return Options{Threshold: 0.1, TriggerOnce: true}
}

func (o Options) compile() (geometry.Margin, error) {
	const op = "visibility.Options"
	if math.IsNaN(o.Threshold) || o.Threshold < 0 || o.Threshold > 1 {
		return geometry.Margin{}, errors.Configuration(op, fmt.Errorf("threshold %v outside [0, 1]", o.Threshold))
	}
	m, err := geometry.ParseMargin(o.RootMargin)
	if err != nil {
		return geometry.Margin{}, errors.Configuration(op, err)
	}
	return m, nil
}

// Validate reports whether the options can build a Tracker.
func (o Options) Validate() error {
	_, err := o.compile()
	return err
}
