package server

import (
	"time"

	"github.com/go-drift/nodeward/pkg/animation"
	"github.com/go-drift/nodeward/pkg/content"
	"github.com/go-drift/nodeward/pkg/geometry"
	"github.com/go-drift/nodeward/pkg/reveal"
	"github.com/go-drift/nodeward/pkg/visibility"
)

// frameClock is advanced by hand so a snapshot is a pure function of its
// inputs.
type frameClock struct {
	now time.Time
}

func (c *frameClock) Now() time.Time { return c.now }

// pageQuery describes a server-side render: the page is loaded at the top,
// scrolled to Scroll, then animated for Elapsed.
type pageQuery struct {
	Scroll  float64
	Width   float64
	Height  float64
	Elapsed time.Duration
}

// renderPage mounts catalog on a private viewport and scheduler and
// returns the view state after the query's scroll and elapsed time.
func renderPage(catalog *content.Catalog, q pageQuery) (reveal.PageState, error) {
	clock := &frameClock{now: time.Unix(0, 0)}
	scheduler := animation.NewFrameScheduler(clock)
	viewport := visibility.NewViewport(geometry.Size{Width: q.Width, Height: q.Height})
	viewport.SetClock(clock)

	page, err := reveal.Mount(viewport, scheduler, catalog)
	if err != nil {
		return reveal.PageState{}, err
	}
	defer page.Close()

	viewport.ScrollTo(q.Scroll)
	for remaining := q.Elapsed; remaining > 0; {
		step := min(remaining, animation.DefaultFrameInterval)
		clock.now = clock.now.Add(step)
		remaining -= step
		scheduler.Step()
	}
	scheduler.Step()
	return page.Snapshot(), nil
}
