package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Length is a single margin component, either absolute pixels or a
// percentage of the root's extent along the same axis.
type Length struct {
	Value   float64
	Percent bool
}

// Resolve returns the length in pixels for an axis of the given extent.
func (l Length) Resolve(extent float64) float64 {
	if l.Percent {
		return extent * l.Value / 100
	}
	return l.Value
}

// String formats the length the way ParseMargin accepts it.
func (l Length) String() string {
	unit := "px"
	if l.Percent {
		unit = "%"
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + unit
}

// Margin grows (positive) or shrinks (negative) a root rectangle before
// intersection is computed.
type Margin struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

// IsZero reports whether the margin leaves the root unchanged.
func (m Margin) IsZero() bool {
	return m.Top.Value == 0 && m.Right.Value == 0 && m.Bottom.Value == 0 && m.Left.Value == 0
}

// Apply returns root adjusted by the margin. Horizontal percentages resolve
// against the root's width, vertical ones against its height.
func (m Margin) Apply(root Rect) Rect {
	w, h := root.Width(), root.Height()
	return Rect{
		Left:   root.Left - m.Left.Resolve(w),
		Top:    root.Top - m.Top.Resolve(h),
		Right:  root.Right + m.Right.Resolve(w),
		Bottom: root.Bottom + m.Bottom.Resolve(h),
	}
}

// String returns the four-value shorthand for the margin.
func (m Margin) String() string {
	return strings.Join([]string{m.Top.String(), m.Right.String(), m.Bottom.String(), m.Left.String()}, " ")
}

// ParseMargin parses CSS margin shorthand: one to four whitespace-separated
// lengths in px or %, expanded in top, right, bottom, left order. A bare
// zero is accepted without a unit. The empty string is a zero margin.
func ParseMargin(s string) (Margin, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Margin{}, nil
	}
	if len(fields) > 4 {
		return Margin{}, fmt.Errorf("margin %q: expected at most 4 values, got %d", s, len(fields))
	}

	values := make([]Length, len(fields))
	for i, f := range fields {
		l, err := parseLength(f)
		if err != nil {
			return Margin{}, fmt.Errorf("margin %q: %w", s, err)
		}
		values[i] = l
	}

	switch len(values) {
	case 1:
		v := values[0]
		return Margin{Top: v, Right: v, Bottom: v, Left: v}, nil
	case 2:
		return Margin{Top: values[0], Right: values[1], Bottom: values[0], Left: values[1]}, nil
	case 3:
		return Margin{Top: values[0], Right: values[1], Bottom: values[2], Left: values[1]}, nil
	default:
		return Margin{Top: values[0], Right: values[1], Bottom: values[2], Left: values[3]}, nil
	}
}

func parseLength(s string) (Length, error) {
	var (
		num     string
		percent bool
	)
	switch {
	case strings.HasSuffix(s, "px"):
		num = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "%"):
		num = strings.TrimSuffix(s, "%")
		percent = true
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v != 0 {
			return Length{}, fmt.Errorf("length %q must use px or %%", s)
		}
		return Length{}, nil
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Length{}, fmt.Errorf("invalid length %q", s)
	}
	return Length{Value: v, Percent: percent}, nil
}
