package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/bitgrid/internal/renderer/core"
)

func TestNullBackendInit(t *testing.T) {
	b := NewNullBackend(80, 24)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	w, h := b.Size()
	if w != 80 || h != 24 {
		t.Errorf("expected size (80, 24), got (%d, %d)", w, h)
	}
}

func TestNullBackendSetGetCell(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()

	cell := core.NewStyledCell('X', core.DefaultStyle().WithForeground(core.ColorRed))
	b.SetCell(10, 5, cell)

	got := b.GetCell(10, 5)
	if !got.Equals(cell) {
		t.Errorf("cell mismatch: expected %+v, got %+v", cell, got)
	}

	// Out of bounds should be ignored/return empty
	b.SetCell(-1, 0, cell)
	b.SetCell(100, 0, cell)

	empty := b.GetCell(-1, 0)
	if !empty.Equals(core.EmptyCell()) {
		t.Error("out of bounds should return empty cell")
	}
}

func TestNullBackendClearAndLine(t *testing.T) {
	b := NewNullBackend(4, 2)
	b.Init()

	for x, r := range "ab#." {
		b.SetCell(x, 0, core.NewStyledCell(r, core.DefaultStyle()))
	}
	if got := b.Line(0); got != "ab#." {
		t.Errorf("Line(0) = %q, want %q", got, "ab#.")
	}

	b.Clear()
	if got := b.Line(0); got != "    " {
		t.Errorf("after Clear, Line(0) = %q", got)
	}
	if got := b.Line(5); got != "" {
		t.Errorf("Line(5) = %q, want empty", got)
	}
}

func TestNullBackendEvents(t *testing.T) {
	b := NewNullBackend(10, 10)
	b.Init()

	b.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'q'})
	ev := b.PollEvent()
	if ev.Type != EventKey || ev.Rune != 'q' {
		t.Errorf("PollEvent = %+v", ev)
	}

	b.Resize(20, 5)
	ev = b.PollEvent()
	if ev.Type != EventResize || ev.Width != 20 || ev.Height != 5 {
		t.Errorf("resize event = %+v", ev)
	}
	if w, h := b.Size(); w != 20 || h != 5 {
		t.Errorf("Size after resize = (%d, %d)", w, h)
	}
}

func TestNullBackendShowCount(t *testing.T) {
	b := NewNullBackend(1, 1)
	b.Init()
	b.Show()
	b.Show()
	if b.ShowCount() != 2 {
		t.Errorf("ShowCount = %d, want 2", b.ShowCount())
	}
}

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(sim)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sim.SetSize(w, h)
	t.Cleanup(term.Shutdown)
	return term, sim
}

func TestTerminalSetGetCell(t *testing.T) {
	term, _ := newSimTerminal(t, 10, 4)

	style := core.DefaultStyle().
		WithForeground(core.ColorFromRGB(255, 0, 0)).
		WithAttributes(core.AttrBold)
	term.SetCell(2, 1, core.NewStyledCell('#', style))

	got := term.GetCell(2, 1)
	if got.Rune != '#' {
		t.Errorf("Rune = %q, want '#'", got.Rune)
	}
	if !got.Style.Foreground.Equals(core.ColorFromRGB(255, 0, 0)) {
		t.Errorf("Foreground = %v, want #ff0000", got.Style.Foreground)
	}
	if !got.Style.Background.IsDefault() {
		t.Errorf("Background = %v, want default", got.Style.Background)
	}
	if !got.Style.Attributes.Has(core.AttrBold) {
		t.Error("expected bold attribute")
	}

	if !term.GetCell(-1, 0).Equals(core.EmptyCell()) {
		t.Error("out of bounds should return empty cell")
	}
}

func TestTerminalPollEvent(t *testing.T) {
	term, sim := newSimTerminal(t, 10, 4)

	sim.InjectKey(tcell.KeyRune, 'n', tcell.ModNone)
	sim.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	var keys []Event
	for len(keys) < 2 {
		ev := term.PollEvent()
		if ev.Type == EventKey {
			keys = append(keys, ev)
		}
	}

	if keys[0].Key != KeyRune || keys[0].Rune != 'n' {
		t.Errorf("first key = %+v, want rune 'n'", keys[0])
	}
	if keys[1].Key != KeyEscape {
		t.Errorf("second key = %+v, want escape", keys[1])
	}
}

func TestKeyConversionRoundTrip(t *testing.T) {
	keys := []Key{KeyRune, KeyEscape, KeyEnter, KeyUp, KeyDown, KeyLeft, KeyRight, KeyCtrlC}
	for _, k := range keys {
		if got := convertKey(convertToTcellKey(k)); got != k {
			t.Errorf("convertKey(convertToTcellKey(%d)) = %d", k, got)
		}
	}
	if convertKey(tcell.KeyF1) != KeyNone {
		t.Error("unhandled keys should map to KeyNone")
	}
}
