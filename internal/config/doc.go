// Package config provides the configuration system for bitgrid.
//
// Configuration is organized in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← BITGRID_*, highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML, supports "@include"
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Each layer is read into a map by the loader sub-package and merged with
// loader.DeepMerge before being decoded into a Config and validated.
//
// # Example File
//
//	[logging]
//	level = "debug"
//
//	[display]
//	on = "██"
//	off = "··"
//	onColor = "#e5e5e5"
//	offColor = "#5f5f5f"
//
//	[watch]
//	debounce = "150ms"
//
//	[script]
//	timeout = "2s"
//
// Durations are Go duration strings; a bare integer is read as milliseconds.
package config
