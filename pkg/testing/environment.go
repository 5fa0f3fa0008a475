package testing

import (
	"sync"

	"github.com/go-drift/nodeward/pkg/geometry"
	"github.com/go-drift/nodeward/pkg/visibility"
)

// FakeEnvironment is a visibility.Environment driven entirely by the test.
// Nothing is delivered until the test calls Push or PushRatio.
type FakeEnvironment struct {
	// Root is the viewing window reported in every entry.
	Root geometry.Rect

	mu       sync.Mutex
	next     visibility.Subscription
	subs     map[visibility.Subscription]fakeSub
	refuse   map[visibility.Target]bool
	detached map[visibility.Target]bool
	removed  int
}

type fakeSub struct {
	target   visibility.Target
	callback func(visibility.Entry)
}

// NewFakeEnvironment returns an environment with a 1000x1000 root.
func NewFakeEnvironment() *FakeEnvironment {
	return &FakeEnvironment{
		subs:     make(map[visibility.Subscription]fakeSub),
		refuse:   make(map[visibility.Target]bool),
		detached: make(map[visibility.Target]bool),
		Root:     geometry.RectFromLTWH(0, 0, 1000, 1000),
	}
}

// Refuse makes Subscribe fail for target with visibility.ErrInvalidTarget.
func (e *FakeEnvironment) Refuse(target visibility.Target) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refuse[target] = true
}

// Subscribe implements visibility.Environment.
func (e *FakeEnvironment) Subscribe(target visibility.Target, callback func(visibility.Entry)) (visibility.Subscription, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if target == "" || e.refuse[target] {
		return 0, visibility.ErrInvalidTarget
	}
	e.next++
	e.subs[e.next] = fakeSub{target: target, callback: callback}
	return e.next, nil
}

// Unsubscribe implements visibility.Environment.
func (e *FakeEnvironment) Unsubscribe(sub visibility.Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.subs[sub]; ok {
		delete(e.subs, sub)
		e.removed++
	}
}

// Subscribers returns the number of live subscriptions for target.
func (e *FakeEnvironment) Subscribers(target visibility.Target) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.subs {
		if s.target == target {
			n++
		}
	}
	return n
}

// Unsubscribed returns how many subscriptions have been removed.
func (e *FakeEnvironment) Unsubscribed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removed
}

// Push delivers an entry with the given target bounds to every subscriber
// of target.
func (e *FakeEnvironment) Push(target visibility.Target, bounds geometry.Rect) {
	e.mu.Lock()
	entry := visibility.Entry{Target: bounds, Root: e.Root, Attached: !e.detached[target]}
	var callbacks []func(visibility.Entry)
	for _, s := range e.subs {
		if s.target == target {
			callbacks = append(callbacks, s.callback)
		}
	}
	e.mu.Unlock()

	for _, cb := range callbacks {
		cb(entry)
	}
}

// PushRatio delivers an entry whose target overlaps the root by exactly
// ratio (clamped to [0, 1]). The target is a full-width band sliding up
// from below the root's bottom edge.
func (e *FakeEnvironment) PushRatio(target visibility.Target, ratio float64) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	const height = 100
	top := e.Root.Bottom - ratio*height
	e.Push(target, geometry.RectFromLTWH(e.Root.Left, top, e.Root.Width(), height))
}

// Detach marks target as no longer attached; subsequent pushes say so.
func (e *FakeEnvironment) Detach(target visibility.Target) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached[target] = true
}
