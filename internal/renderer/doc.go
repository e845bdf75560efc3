// Package renderer draws bitmaps onto a display backend.
//
// The renderer is responsible for:
//   - Mapping on/off bits to configurable glyphs and colors
//   - Laying glyphs out at their terminal display width
//   - An interactive viewer for paging through named bitmaps
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│        Viewer (keys, paging)            │
//	├─────────────────────────────────────────┤
//	│        Painter (glyphs, clipping)       │
//	├─────────────────────────────────────────┤
//	│           Backend Abstraction           │
//	├─────────────────────────────────────────┤
//	│  Terminal (tcell) │ NullBackend (tests) │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	theme, _ := renderer.ThemeFromConfig(cfg.Display)
//	v := renderer.NewViewer(term, renderer.NewPainter(term, theme), entries)
//	err := v.Run(ctx)
package renderer
