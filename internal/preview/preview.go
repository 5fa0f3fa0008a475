// Package preview renders a page catalog in a terminal. Terminal rows map to
// page pixels through a fixed row height, so scrolling the terminal drives
// the same reveal and counter machinery a browser scroll would.
package preview

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/go-drift/nodeward/pkg/animation"
	"github.com/go-drift/nodeward/pkg/content"
	"github.com/go-drift/nodeward/pkg/errors"
	"github.com/go-drift/nodeward/pkg/geometry"
	"github.com/go-drift/nodeward/pkg/reveal"
	"github.com/go-drift/nodeward/pkg/visibility"
)

const (
	// DefaultRowHeight is the page height in pixels covered by one row.
	DefaultRowHeight = 40
	eventBacklog     = 64
)

// Options configures a Preview.
type Options struct {
	FrameInterval time.Duration
	RowHeight     float64
	// Clock drives both the scheduler and the viewport. Nil uses system
	// time.
	Clock  animation.Clock
	Logger *zap.Logger
}

// Preview hosts a mounted page on a tcell screen. All methods run on the
// goroutine that calls Run.
type Preview struct {
	screen    tcell.Screen
	log       *zap.Logger
	interval  time.Duration
	rowHeight float64

	scheduler *animation.FrameScheduler
	viewport  *visibility.Viewport
	page      *reveal.Page
}

// New mounts catalog on screen. The screen must already be initialized;
// the caller finalizes it after Run returns.
func New(screen tcell.Screen, catalog *content.Catalog, opts Options) (*Preview, error) {
	const op = "preview.New"
	if screen == nil {
		return nil, errors.Configuration(op, fmt.Errorf("nil screen"))
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	p := &Preview{
		screen:    screen,
		log:       opts.Logger,
		interval:  opts.FrameInterval,
		rowHeight: opts.RowHeight,
		scheduler: animation.NewFrameScheduler(opts.Clock),
	}
	p.viewport = visibility.NewViewport(p.pixelSize())
	if opts.Clock != nil {
		p.viewport.SetClock(opts.Clock)
	}
	page, err := reveal.Mount(p.viewport, p.scheduler, catalog)
	if err != nil {
		return nil, err
	}
	p.page = page
	return p, nil
}

// Page returns the mounted page.
func (p *Preview) Page() *reveal.Page { return p.page }

// Viewport returns the viewport the terminal scrolls.
func (p *Preview) Viewport() *visibility.Viewport { return p.viewport }

// pixelSize maps the screen to page pixels. The last row is the status
// line. Cells are taken to be half as wide as they are tall.
func (p *Preview) pixelSize() geometry.Size {
	w, h := p.screen.Size()
	rows := max(h-1, 1)
	return geometry.Size{
		Width:  float64(max(w, 1)) * p.rowHeight / 2,
		Height: float64(rows) * p.rowHeight,
	}
}

// Run draws frames until the user quits or ctx is cancelled. The page is
// closed when Run returns.
func (p *Preview) Run(ctx context.Context) error {
	defer p.page.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, eventBacklog)
	go p.poll(ctx, events)

	p.draw()
	err := p.scheduler.Run(ctx, p.interval, func() {
		for {
			select {
			case ev := <-events:
				if !p.handleEvent(ev) {
					cancel()
					return
				}
			default:
				p.draw()
				return
			}
		}
	})
	if err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	p.log.Debug("preview stopped", zap.Float64("scroll", p.viewport.Scroll().Y))
	return nil
}

// poll forwards screen events until the screen is finalized.
func (p *Preview) poll(ctx context.Context, events chan<- tcell.Event) {
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// handleEvent applies one screen event and reports whether to keep running.
func (p *Preview) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		page := p.viewport.Size().Height
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyDown:
			p.viewport.ScrollBy(p.rowHeight)
		case tcell.KeyUp:
			p.viewport.ScrollBy(-p.rowHeight)
		case tcell.KeyPgDn:
			p.viewport.ScrollBy(page)
		case tcell.KeyPgUp:
			p.viewport.ScrollBy(-page)
		case tcell.KeyHome:
			p.viewport.ScrollTo(0)
		case tcell.KeyEnd:
			p.viewport.ScrollTo(p.viewport.DocumentHeight())
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'j':
				p.viewport.ScrollBy(p.rowHeight)
			case 'k':
				p.viewport.ScrollBy(-p.rowHeight)
			case ' ':
				p.viewport.ScrollBy(page)
			case 'g':
				p.viewport.ScrollTo(0)
			case 'G':
				p.viewport.ScrollTo(p.viewport.DocumentHeight())
			}
		}
	case *tcell.EventResize:
		p.viewport.Resize(p.pixelSize())
		p.screen.Sync()
	}
	return true
}
