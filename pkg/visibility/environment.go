package visibility

import (
	stderrors "errors"
	"time"

	"github.com/go-drift/nodeward/pkg/geometry"
)

// ErrInvalidTarget is returned by an Environment asked to watch a target it
// can never resolve.
var ErrInvalidTarget = stderrors.New("visibility: invalid target")

// Target is an opaque handle to a region of the rendered page. The view
// that owns the region chooses the handle; the empty handle is unbound.
type Target string

// Entry is one geometry snapshot for a target.
type Entry struct {
	// Target is the target's bounds in page coordinates.
	Target geometry.Rect
	// Root is the viewing window in page coordinates, before any margin.
	Root geometry.Rect
	// Attached is false while the target is not part of the page.
	Attached bool
	// Time is when the geometry was sampled.
	Time time.Time
}

// Subscription identifies one Subscribe call.
type Subscription uint64

// Environment is the host's geometry-change notification mechanism. It
// pushes an Entry for a target whenever scrolling, resizing, or layout may
// have changed that target's relation to the viewing window, and once
// promptly after Subscribe.
//
// Callbacks for one subscription are never delivered concurrently.
// Unsubscribe must be idempotent; no callback for the subscription starts
// after it returns.
type Environment interface {
	Subscribe(target Target, callback func(Entry)) (Subscription, error)
	Unsubscribe(sub Subscription)
}
