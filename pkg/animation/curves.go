package animation

import "math"

// Curve maps linear progress t in [0, 1] to eased progress. Every curve here
// returns exactly 0 at t=0 and exactly 1 at t=1, so a counter driven by it
// lands on its end value without rounding drift.
type Curve func(t float64) float64

// LinearCurve returns linear progress (no easing).
func LinearCurve(t float64) float64 {
	return clampUnit(t)
}

// EaseOutQuart is 1-(1-t)^4: fast initial motion, long deceleration.
// It is the default curve for [Counter].
func EaseOutQuart(t float64) float64 {
	t = clampUnit(t)
	inv := 1 - t
	return 1 - inv*inv*inv*inv
}

// EaseOutCubic is 1-(1-t)^3.
func EaseOutCubic(t float64) float64 {
	t = clampUnit(t)
	inv := 1 - t
	return 1 - inv*inv*inv
}

// EaseOutExpo is 1-2^(-10t), pinned to 1 at t=1.
func EaseOutExpo(t float64) float64 {
	t = clampUnit(t)
	if t == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*t)
}

func clampUnit(value float64) float64 {
	return math.Min(math.Max(value, 0), 1)
}
