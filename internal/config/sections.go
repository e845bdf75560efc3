package config

import "time"

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum level written ("debug", "info", "warn", "error").
	Level string
}

// DisplayConfig controls how the terminal viewer draws cells.
// The text format always uses '#' and '.'; these settings do not affect it.
type DisplayConfig struct {
	// On is the glyph drawn for a set cell.
	On string

	// Off is the glyph drawn for a clear cell.
	Off string

	// OnColor is the hex foreground color of set cells. Empty means default.
	OnColor string

	// OffColor is the hex foreground color of clear cells. Empty means default.
	OffColor string

	// Background is the hex background color. Empty means default.
	Background string
}

// WatchConfig controls file watching.
type WatchConfig struct {
	// Debounce collapses bursts of writes to one file into a single reload.
	Debounce time.Duration
}

// ScriptConfig controls Lua fill scripts.
type ScriptConfig struct {
	// Timeout bounds a script run. Zero disables the bound.
	Timeout time.Duration
}
