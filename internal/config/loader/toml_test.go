package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bitgrid.toml", `
[logging]
level = "debug"

[display]
on = "█"
off = "·"
onColor = "#00ff00"

[watch]
debounce = "200ms"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/bitgrid.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	display, ok := config["display"].(map[string]any)
	if !ok {
		t.Fatal("expected display to be a map")
	}
	if display["on"] != "█" {
		t.Errorf("display.on = %v, want █", display["on"])
	}
	if display["onColor"] != "#00ff00" {
		t.Errorf("display.onColor = %v", display["onColor"])
	}

	watch := config["watch"].(map[string]any)
	if watch["debounce"] != "200ms" {
		t.Errorf("watch.debounce = %v", watch["debounce"])
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	loader := NewTOMLLoaderWithFS(NewMemFS(), "/nonexistent.toml")

	config, err := loader.Load()
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}
	if config != nil {
		t.Error("expected nil config for non-existent file")
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/invalid.toml", `
[display
on = "#"
`)

	_, err := NewTOMLLoaderWithFS(memfs, "/invalid.toml").Load()
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Path != "/invalid.toml" {
		t.Errorf("Path = %q, want '/invalid.toml'", parseErr.Path)
	}
	if parseErr.Line == 0 {
		t.Error("Line should be set from the decoder position")
	}
	if !strings.Contains(parseErr.Error(), "/invalid.toml at line") {
		t.Errorf("Error() = %q, want line information", parseErr.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	loader := &TOMLLoader{}

	config, err := loader.LoadFromReader(strings.NewReader(`
[script]
timeout = "1s"
`))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	script := config["script"].(map[string]any)
	if script["timeout"] != "1s" {
		t.Errorf("script.timeout = %v, want 1s", script["timeout"])
	}
}

func TestTOMLLoader_LoadWithIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config/bitgrid.toml", `
"@include" = ["base.toml"]

[display]
on = "@"
`)
	memfs.AddFile("/config/base.toml", `
[display]
on = "#"
off = "."

[logging]
level = "warn"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/config/bitgrid.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, ok := config["@include"]; ok {
		t.Error("@include key should be removed")
	}

	display := config["display"].(map[string]any)
	if display["on"] != "@" {
		t.Errorf("display.on = %v, want @ (main file wins)", display["on"])
	}
	if display["off"] != "." {
		t.Errorf("display.off = %v, want . (from include)", display["off"])
	}

	logging := config["logging"].(map[string]any)
	if logging["level"] != "warn" {
		t.Errorf("logging.level = %v, want warn", logging["level"])
	}
}

func TestTOMLLoader_LoadWithIncludes_DepthExceeded(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = ["b.toml"]`)
	memfs.AddFile("/b.toml", `"@include" = ["c.toml"]`)
	memfs.AddFile("/c.toml", `"@include" = ["d.toml"]`)
	memfs.AddFile("/d.toml", `value = 1`)

	loader := NewTOMLLoaderWithFS(memfs, "/a.toml")

	_, err := loader.LoadWithIncludes("/a.toml", 2)
	if !errors.Is(err, ErrIncludeDepthExceeded) {
		t.Fatalf("expected ErrIncludeDepthExceeded, got: %v", err)
	}

	config, err := loader.LoadWithIncludes("/a.toml", 5)
	if err != nil {
		t.Fatalf("expected success with depth 5, got: %v", err)
	}
	if config["value"] != int64(1) {
		t.Errorf("value = %v, want 1", config["value"])
	}
}

func TestTOMLLoader_IncludeWrongType(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = 3`)

	if _, err := NewTOMLLoaderWithFS(memfs, "/a.toml").Load(); err == nil {
		t.Error("expected error for non-string @include")
	}
}

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		dst      map[string]any
		src      map[string]any
		expected map[string]any
	}{
		{
			name:     "nil dst",
			dst:      nil,
			src:      map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil src",
			dst:      map[string]any{"a": 1},
			src:      nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "override scalar",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name: "merge nested",
			dst: map[string]any{
				"display": map[string]any{"on": "#", "off": "."},
			},
			src: map[string]any{
				"display": map[string]any{"on": "@"},
			},
			expected: map[string]any{
				"display": map[string]any{"on": "@", "off": "."},
			},
		},
		{
			name:     "map replaces scalar",
			dst:      map[string]any{"display": "x"},
			src:      map[string]any{"display": map[string]any{"on": "#"}},
			expected: map[string]any{"display": map[string]any{"on": "#"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeepMerge(tt.dst, tt.src)
			if !mapsEqual(got, tt.expected) {
				t.Errorf("DeepMerge() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		am, aIsMap := av.(map[string]any)
		bm, bIsMap := bv.(map[string]any)
		if aIsMap != bIsMap {
			return false
		}
		if aIsMap {
			if !mapsEqual(am, bm) {
				return false
			}
			continue
		}
		if av != bv {
			return false
		}
	}
	return true
}
