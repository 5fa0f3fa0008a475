package reveal

import (
	"github.com/go-drift/nodeward/pkg/animation"
	"github.com/go-drift/nodeward/pkg/content"
	"github.com/go-drift/nodeward/pkg/geometry"
	"github.com/go-drift/nodeward/pkg/visibility"
)

// Page is a catalog mounted on a viewport, sections stacked top to bottom
// across the full viewport width.
type Page struct {
	catalog  *content.Catalog
	viewport *visibility.Viewport
	sections []*Section
	bounds   map[string]geometry.Rect
	closed   bool
}

// Mount lays out catalog on v and starts every section. On error nothing
// stays mounted.
func Mount(v *visibility.Viewport, provider animation.TickerProvider, catalog *content.Catalog) (*Page, error) {
	p := &Page{
		catalog:  catalog,
		viewport: v,
		bounds:   make(map[string]geometry.Rect, len(catalog.Sections)),
	}
	p.layout()
	for _, spec := range catalog.Sections {
		s, err := NewSection(v, provider, spec)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.sections = append(p.sections, s)
	}
	return p, nil
}

func (p *Page) layout() {
	width := p.viewport.Size().Width
	top := 0.0
	for _, spec := range p.catalog.Sections {
		bounds := geometry.RectFromLTWH(0, top, width, spec.Height)
		p.bounds[spec.ID] = bounds
		if spec.Reveal != nil {
			p.viewport.SetRegion(RevealTarget(spec.ID), bounds)
		}
		if spec.Body != nil {
			p.viewport.SetRegion(BodyTarget(spec.ID), bounds)
		}
		if row := spec.Stats; row != nil {
			p.viewport.SetRegion(StatsTarget(spec.ID), geometry.RectFromLTWH(0, top+row.Offset, width, row.Height))
		}
		top += spec.Height
	}
}

// Catalog returns the mounted catalog.
func (p *Page) Catalog() *content.Catalog { return p.catalog }

// Viewport returns the environment the page is mounted on.
func (p *Page) Viewport() *visibility.Viewport { return p.viewport }

// Sections returns the mounted sections in page order.
func (p *Page) Sections() []*Section { return p.sections }

// Section returns the mounted section with the given id.
func (p *Page) Section(id string) *Section {
	for _, s := range p.sections {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// Bounds returns a section's rectangle in page coordinates.
func (p *Page) Bounds(id string) (geometry.Rect, bool) {
	r, ok := p.bounds[id]
	return r, ok
}

// Close unmounts every section and removes its regions. It is idempotent.
func (p *Page) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, s := range p.sections {
		s.Close()
	}
	for _, spec := range p.catalog.Sections {
		p.viewport.RemoveRegion(RevealTarget(spec.ID))
		p.viewport.RemoveRegion(BodyTarget(spec.ID))
		p.viewport.RemoveRegion(StatsTarget(spec.ID))
	}
}

// PageState is a serialisable view of the page at one moment.
type PageState struct {
	Scroll   float64        `json:"scroll"`
	Sections []SectionState `json:"sections"`
}

// SectionState is one section's view state.
type SectionState struct {
	ID           string      `json:"id"`
	Classes      string      `json:"classes,omitempty"`
	Revealed     bool        `json:"revealed"`
	BodyVisible  bool        `json:"bodyVisible"`
	StatsVisible bool        `json:"statsVisible"`
	Stats        []StatState `json:"stats,omitempty"`
}

// StatState is one counter's view state.
type StatState struct {
	Label  string `json:"label"`
	Text   string `json:"text"`
	Value  int64  `json:"value"`
	Status string `json:"status"`
}

// Snapshot captures the current view state.
func (p *Page) Snapshot() PageState {
	state := PageState{
		Scroll:   p.viewport.Scroll().Y,
		Sections: make([]SectionState, 0, len(p.sections)),
	}
	for _, s := range p.sections {
		ss := SectionState{
			ID:           s.ID(),
			Revealed:     s.Revealed(),
			BodyVisible:  s.BodyVisible(),
			StatsVisible: s.StatsVisible(),
		}
		if r := s.Reveal(); r != nil {
			ss.Classes = r.Classes()
		}
		for _, c := range s.Counters() {
			ss.Stats = append(ss.Stats, StatState{
				Label:  c.Label(),
				Text:   c.Text(),
				Value:  c.Value(),
				Status: c.Counter().Status().String(),
			})
		}
		state.Sections = append(state.Sections, ss)
	}
	return state
}
