package renderer

import (
	"fmt"

	"github.com/dshills/bitgrid/internal/bitmap"
	"github.com/dshills/bitgrid/internal/config"
	"github.com/dshills/bitgrid/internal/renderer/backend"
	"github.com/dshills/bitgrid/internal/renderer/core"
)

// Theme describes how set and clear bits are drawn.
type Theme struct {
	On       string
	Off      string
	OnStyle  core.Style
	OffStyle core.Style
}

// DefaultTheme draws bits with the text symbols in the terminal's colors.
func DefaultTheme() Theme {
	return Theme{
		On:       string(bitmap.SymbolOn),
		Off:      string(bitmap.SymbolOff),
		OnStyle:  core.DefaultStyle(),
		OffStyle: core.DefaultStyle(),
	}
}

// ThemeFromConfig builds a theme from the display settings.
func ThemeFromConfig(cfg config.DisplayConfig) (Theme, error) {
	onColor, err := core.ColorFromHex(cfg.OnColor)
	if err != nil {
		return Theme{}, fmt.Errorf("display.onColor: %w", err)
	}
	offColor, err := core.ColorFromHex(cfg.OffColor)
	if err != nil {
		return Theme{}, fmt.Errorf("display.offColor: %w", err)
	}
	bg, err := core.ColorFromHex(cfg.Background)
	if err != nil {
		return Theme{}, fmt.Errorf("display.background: %w", err)
	}

	base := core.DefaultStyle().WithBackground(bg)
	return Theme{
		On:       cfg.On,
		Off:      cfg.Off,
		OnStyle:  base.WithForeground(onColor).WithAttributes(core.AttrBold),
		OffStyle: base.WithForeground(offColor),
	}, nil
}

// Painter draws bitmaps onto a backend.
type Painter struct {
	backend backend.Backend
	theme   Theme
	pitch   int
	on      []core.Cell
	off     []core.Cell
}

// NewPainter creates a painter for the given theme.
// Each bit occupies the display width of the wider glyph; the narrower
// glyph is padded with blanks in its own style.
func NewPainter(b backend.Backend, theme Theme) *Painter {
	p := &Painter{backend: b, theme: theme}
	p.pitch = max(core.StringWidth(theme.On), core.StringWidth(theme.Off), 1)
	p.on = glyphCells(theme.On, theme.OnStyle, p.pitch)
	p.off = glyphCells(theme.Off, theme.OffStyle, p.pitch)
	return p
}

func glyphCells(glyph string, style core.Style, pitch int) []core.Cell {
	cells := core.CellsFromString(glyph, style)
	if len(cells) > pitch {
		cells = cells[:pitch]
	}
	for len(cells) < pitch {
		cells = append(cells, core.NewStyledCell(' ', style))
	}
	return cells
}

// Pitch returns the number of columns one bit occupies.
func (p *Painter) Pitch() int {
	return p.pitch
}

// Theme returns the painter's theme.
func (p *Painter) Theme() Theme {
	return p.theme
}

// Extent returns the size in cells that b occupies when painted.
func (p *Painter) Extent(b *bitmap.Bitmap) (width, height int) {
	return b.Width() * p.pitch, b.Height()
}

// Paint draws b with its top-left corner at (ox, oy).
// Cells falling outside the backend are clipped.
func (p *Painter) Paint(b *bitmap.Bitmap, ox, oy int) {
	screenW, screenH := p.backend.Size()
	for y := 0; y < b.Height(); y++ {
		sy := oy + y
		if sy < 0 || sy >= screenH {
			continue
		}
		for x := 0; x < b.Width(); x++ {
			cells := p.off
			if b.At(x, y) {
				cells = p.on
			}
			sx := ox + x*p.pitch
			for i, cell := range cells {
				if cx := sx + i; cx >= 0 && cx < screenW {
					p.backend.SetCell(cx, sy, cell)
				}
			}
		}
	}
}

// Text draws s starting at (x, y), clipped to the backend width.
// It returns the column after the last cell written.
func (p *Painter) Text(x, y int, s string, style core.Style) int {
	screenW, screenH := p.backend.Size()
	if y < 0 || y >= screenH {
		return x
	}
	for _, cell := range core.CellsFromString(s, style) {
		if x >= screenW {
			break
		}
		if x >= 0 {
			p.backend.SetCell(x, y, cell)
		}
		x++
	}
	return x
}
