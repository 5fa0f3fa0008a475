package visibility

import (
	"math"
	"sync"
	"time"

	"github.com/go-drift/nodeward/pkg/geometry"
)

// Clock supplies entry timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Viewport is an Environment for a vertically scrolled document. Regions
// are laid out in page coordinates; the viewing window is the viewport
// size placed at the scroll offset.
//
// Every geometry change delivers a fresh entry to every subscriber on the
// calling goroutine, after the viewport's lock is released. Callbacks may
// call back into the viewport.
type Viewport struct {
	mu      sync.Mutex
	clock   Clock
	size    geometry.Size
	scroll  geometry.Offset
	regions map[Target]geometry.Rect
	subs    map[Subscription]*viewportSub
	nextSub Subscription
}

type viewportSub struct {
	target   Target
	callback func(Entry)
	active   bool
}

// NewViewport returns an empty document shown through a window of size.
func NewViewport(size geometry.Size) *Viewport {
	return &Viewport{
		clock:   systemClock{},
		size:    size,
		regions: make(map[Target]geometry.Rect),
		subs:    make(map[Subscription]*viewportSub),
	}
}

// SetClock replaces the clock used to timestamp entries.
func (v *Viewport) SetClock(c Clock) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if c == nil {
		c = systemClock{}
	}
	v.clock = c
}

// Subscribe registers callback for target and delivers the current entry
// immediately. Targets without a region yet are accepted and reported as
// unattached until SetRegion places them.
func (v *Viewport) Subscribe(target Target, callback func(Entry)) (Subscription, error) {
	if target == "" || callback == nil {
		return 0, ErrInvalidTarget
	}
	v.mu.Lock()
	v.nextSub++
	id := v.nextSub
	sub := &viewportSub{target: target, callback: callback, active: true}
	v.subs[id] = sub
	entry := v.entryLocked(target)
	v.mu.Unlock()

	v.deliver([]pending{{sub: sub, entry: entry}})
	return id, nil
}

// Unsubscribe removes a subscription. Unknown or repeated ids are ignored.
func (v *Viewport) Unsubscribe(id Subscription) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if sub, ok := v.subs[id]; ok {
		sub.active = false
		delete(v.subs, id)
	}
}

// SetRegion places or moves a target.
func (v *Viewport) SetRegion(target Target, bounds geometry.Rect) {
	v.mu.Lock()
	v.regions[target] = bounds
	v.clampLocked()
	v.mu.Unlock()
	v.notifyAll()
}

// RemoveRegion detaches a target from the document.
func (v *Viewport) RemoveRegion(target Target) {
	v.mu.Lock()
	delete(v.regions, target)
	v.clampLocked()
	v.mu.Unlock()
	v.notifyAll()
}

// Region returns a target's bounds.
func (v *Viewport) Region(target Target) (geometry.Rect, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.regions[target]
	return r, ok
}

// Resize changes the window size.
func (v *Viewport) Resize(size geometry.Size) {
	v.mu.Lock()
	v.size = size
	v.clampLocked()
	v.mu.Unlock()
	v.notifyAll()
}

// ScrollTo moves the window's top edge to y, clamped to the document.
func (v *Viewport) ScrollTo(y float64) {
	v.mu.Lock()
	v.scroll.Y = y
	v.clampLocked()
	v.mu.Unlock()
	v.notifyAll()
}

// ScrollBy moves the window by dy.
func (v *Viewport) ScrollBy(dy float64) {
	v.mu.Lock()
	y := v.scroll.Y + dy
	v.mu.Unlock()
	v.ScrollTo(y)
}

// ScrollIntoView scrolls so the target's top edge is at the window's top.
// It reports false if the target has no region.
func (v *Viewport) ScrollIntoView(target Target) bool {
	r, ok := v.Region(target)
	if !ok {
		return false
	}
	v.ScrollTo(r.Top)
	return true
}

// Scroll returns the current scroll offset.
func (v *Viewport) Scroll() geometry.Offset {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scroll
}

// Size returns the window size.
func (v *Viewport) Size() geometry.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

// Root returns the viewing window in page coordinates.
func (v *Viewport) Root() geometry.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rootLocked()
}

// DocumentHeight returns the bottom edge of the lowest region.
func (v *Viewport) DocumentHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.documentHeightLocked()
}

func (v *Viewport) rootLocked() geometry.Rect {
	return geometry.RectFromLTWH(v.scroll.X, v.scroll.Y, v.size.Width, v.size.Height)
}

func (v *Viewport) documentHeightLocked() float64 {
	var h float64
	for _, r := range v.regions {
		h = math.Max(h, r.Bottom)
	}
	return h
}

func (v *Viewport) clampLocked() {
	maxScroll := math.Max(0, v.documentHeightLocked()-v.size.Height)
	v.scroll.Y = math.Min(math.Max(v.scroll.Y, 0), maxScroll)
}

func (v *Viewport) entryLocked(target Target) Entry {
	bounds, ok := v.regions[target]
	return Entry{
		Target:   bounds,
		Root:     v.rootLocked(),
		Attached: ok,
		Time:     v.clock.Now(),
	}
}

type pending struct {
	sub   *viewportSub
	entry Entry
}

func (v *Viewport) notifyAll() {
	v.mu.Lock()
	batch := make([]pending, 0, len(v.subs))
	for _, sub := range v.subs {
		batch = append(batch, pending{sub: sub, entry: v.entryLocked(sub.target)})
	}
	v.mu.Unlock()
	v.deliver(batch)
}

func (v *Viewport) deliver(batch []pending) {
	for _, p := range batch {
		v.mu.Lock()
		active := p.sub.active
		v.mu.Unlock()
		if active {
			p.sub.callback(p.entry)
		}
	}
}
