package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/bitgrid/internal/codec"
	"github.com/dshills/bitgrid/internal/renderer/backend"
	"github.com/dshills/bitgrid/internal/renderer/core"
)

// ErrQuit is returned by Viewer.Run when the user closes the viewer.
var ErrQuit = errors.New("viewer closed")

// Viewer pages through named bitmaps on a backend.
type Viewer struct {
	backend backend.Backend
	painter *Painter

	mu      sync.Mutex
	entries []codec.Named
	current int
}

// NewViewer creates a viewer over entries.
func NewViewer(b backend.Backend, p *Painter, entries []codec.Named) *Viewer {
	return &Viewer{backend: b, painter: p, entries: entries}
}

// Current returns the index of the displayed entry.
func (v *Viewer) Current() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// SetEntries replaces the displayed bitmaps and requests a redraw.
// The current index is kept when still valid.
func (v *Viewer) SetEntries(entries []codec.Named) {
	v.mu.Lock()
	v.entries = entries
	if v.current >= len(entries) {
		v.current = 0
	}
	v.mu.Unlock()

	w, h := v.backend.Size()
	v.backend.PostEvent(backend.Event{Type: backend.EventResize, Width: w, Height: h})
}

// Run draws the current bitmap and handles keys until the user quits or
// ctx is done. Quitting returns ErrQuit; cancellation returns ctx.Err().
// The backend must already be initialized.
func (v *Viewer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		// Wake PollEvent so the loop can observe cancellation.
		v.backend.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyNone})
	})
	defer stop()

	v.Draw()
	for {
		ev := v.backend.PollEvent()
		if err := ctx.Err(); err != nil {
			return err
		}

		switch ev.Type {
		case backend.EventNone:
			return ErrQuit
		case backend.EventResize:
			v.Draw()
		case backend.EventKey:
			if v.handleKey(ev) {
				return ErrQuit
			}
		}
	}
}

// handleKey applies a key press and reports whether the viewer should close.
func (v *Viewer) handleKey(ev backend.Event) bool {
	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		return true
	case backend.KeyRight, backend.KeyDown:
		v.step(1)
	case backend.KeyLeft, backend.KeyUp:
		v.step(-1)
	case backend.KeyRune:
		switch ev.Rune {
		case 'q', 'Q':
			return true
		case 'n', ' ':
			v.step(1)
		case 'p':
			v.step(-1)
		}
	}
	return false
}

func (v *Viewer) step(delta int) {
	v.mu.Lock()
	n := len(v.entries)
	if n == 0 {
		v.mu.Unlock()
		return
	}
	v.current = ((v.current+delta)%n + n) % n
	v.mu.Unlock()

	v.Draw()
}

// Draw repaints the screen: a title line, the bitmap, and a key help line.
func (v *Viewer) Draw() {
	v.mu.Lock()
	entries := v.entries
	current := v.current
	v.mu.Unlock()

	v.backend.Clear()
	_, height := v.backend.Size()
	title := core.DefaultStyle().WithAttributes(core.AttrBold)
	help := core.DefaultStyle().WithAttributes(core.AttrDim)

	if len(entries) == 0 {
		v.painter.Text(0, 0, "no bitmaps", title)
	} else {
		e := entries[current]
		header := fmt.Sprintf("%s  %dx%d  [%d/%d]", e.Name, e.Bitmap.Width(), e.Bitmap.Height(), current+1, len(entries))
		v.painter.Text(0, 0, header, title)
		v.painter.Paint(e.Bitmap, 0, 2)
	}

	if height > 3 {
		v.painter.Text(0, height-1, "n/p: next/prev  q: quit", help)
	}
	v.backend.Show()
}
