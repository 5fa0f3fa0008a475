package preview

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/nodeward/pkg/reveal"
)

var (
	styleHidden   = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleTag      = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleBody     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleStat     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleStatIdle = tcell.StyleDefault.Foreground(tcell.ColorGreen).Dim(true)
	styleRule     = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

// row converts a page y coordinate to a screen row.
func (p *Preview) row(y float64) int {
	return int(math.Floor((y - p.viewport.Scroll().Y) / p.rowHeight))
}

func (p *Preview) draw() {
	p.screen.Clear()
	w, h := p.screen.Size()
	rows := h - 1

	for _, s := range p.page.Sections() {
		bounds, ok := p.page.Bounds(s.ID())
		if !ok {
			continue
		}
		top, bottom := p.row(bounds.Top), p.row(bounds.Bottom)
		if bottom < 0 || top >= rows {
			continue
		}
		p.drawSection(s, top, rows, w)
	}

	status := fmt.Sprintf(" nodeward  scroll %.0f/%.0f  j/k scroll  q quit",
		p.viewport.Scroll().Y, max(p.viewport.DocumentHeight()-p.viewport.Size().Height, 0))
	p.putLine(0, h-1, w, status, styleStatus)
	p.screen.Show()
}

func (p *Preview) drawSection(s *reveal.Section, top, rows, width int) {
	spec := s.Spec()
	revealed := s.Revealed()
	titleStyle, tagStyle, bodyStyle := styleTitle, styleTag, styleBody
	if !revealed {
		titleStyle, tagStyle, bodyStyle = styleHidden, styleHidden, styleHidden
	}

	put := func(y int, text string, style tcell.Style) {
		if y >= 0 && y < rows {
			p.putLine(2, y, width-2, text, style)
		}
	}
	if top >= 0 && top < rows {
		p.putLine(0, top, width, strings.Repeat("─", width), styleRule)
	}
	put(top+1, spec.Tag, tagStyle)
	put(top+2, spec.Title, titleStyle)
	if spec.Subtitle != "" {
		style := bodyStyle
		if !s.BodyVisible() {
			style = styleHidden
		}
		put(top+4, spec.Subtitle, style)
	}

	if spec.Stats == nil {
		return
	}
	bounds, _ := p.page.Bounds(s.ID())
	y := p.row(bounds.Top + spec.Stats.Offset)
	style := styleStatIdle
	if s.StatsVisible() {
		style = styleStat
	}
	parts := make([]string, 0, len(s.Counters()))
	for _, c := range s.Counters() {
		parts = append(parts, fmt.Sprintf("%s %s", c.Text(), c.Label()))
	}
	put(y, strings.Join(parts, "   "), style)
}

// putLine writes text from column x, truncated to width cells.
func (p *Preview) putLine(x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+width {
			return
		}
		p.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < x+width; col++ {
		p.screen.SetContent(col, y, ' ', nil, style)
	}
}
