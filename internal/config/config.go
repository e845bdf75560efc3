package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/bitgrid/internal/config/loader"
)

// Config is the decoded, validated bitgrid configuration.
type Config struct {
	Logging LoggingConfig
	Display DisplayConfig
	Watch   WatchConfig
	Script  ScriptConfig
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Display: DisplayConfig{
			On:       "██",
			Off:      "··",
			OnColor:  "#e5e5e5",
			OffColor: "#5f5f5f",
		},
		Watch:  WatchConfig{Debounce: 100 * time.Millisecond},
		Script: ScriptConfig{Timeout: 5 * time.Second},
	}
}

// defaultsMap returns Default as the lowest configuration layer.
func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"logging": map[string]any{
			"level": d.Logging.Level,
		},
		"display": map[string]any{
			"on":         d.Display.On,
			"off":        d.Display.Off,
			"onColor":    d.Display.OnColor,
			"offColor":   d.Display.OffColor,
			"background": d.Display.Background,
		},
		"watch": map[string]any{
			"debounce": d.Watch.Debounce,
		},
		"script": map[string]any{
			"timeout": d.Script.Timeout,
		},
	}
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFileSystem reads the config file from fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnv replaces the environment layer. Pass nil to skip it.
func WithEnv(env loader.Loader) Option {
	return func(o *loadOptions) {
		o.env = env
	}
}

// Load builds a Config from defaults, the TOML file at path (if any) and
// the environment. A missing file is not an error.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(loader.EnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged := defaultsMap()

	if path != "" {
		fileConfig, err := loader.NewTOMLLoaderWithFS(o.fs, path).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, fileConfig)
	}

	if o.env != nil {
		envConfig, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, envConfig)
	}

	cfg, err := decode(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(m map[string]any) (*Config, error) {
	d := &decoder{data: m}
	cfg := &Config{
		Logging: LoggingConfig{
			Level: d.string("logging.level"),
		},
		Display: DisplayConfig{
			On:         d.string("display.on"),
			Off:        d.string("display.off"),
			OnColor:    d.string("display.onColor"),
			OffColor:   d.string("display.offColor"),
			Background: d.string("display.background"),
		},
		Watch: WatchConfig{
			Debounce: d.duration("watch.debounce"),
		},
		Script: ScriptConfig{
			Timeout: d.duration("script.timeout"),
		},
	}
	if d.err != nil {
		return nil, d.err
	}
	return cfg, nil
}

// Validate checks every setting and returns the first failure.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level}
	}

	if c.Display.On == "" {
		return &ValidationError{Path: "display.on", Message: "glyph must not be empty", Value: c.Display.On}
	}
	if c.Display.Off == "" {
		return &ValidationError{Path: "display.off", Message: "glyph must not be empty", Value: c.Display.Off}
	}

	colors := []struct {
		path  string
		value string
	}{
		{"display.onColor", c.Display.OnColor},
		{"display.offColor", c.Display.OffColor},
		{"display.background", c.Display.Background},
	}
	for _, col := range colors {
		if col.value == "" {
			continue
		}
		if _, err := colorful.Hex(col.value); err != nil {
			return &ValidationError{Path: col.path, Message: "invalid hex color", Value: col.value}
		}
	}

	if c.Watch.Debounce < 0 {
		return &ValidationError{Path: "watch.debounce", Message: "must not be negative", Value: c.Watch.Debounce}
	}
	if c.Script.Timeout < 0 {
		return &ValidationError{Path: "script.timeout", Message: "must not be negative", Value: c.Script.Timeout}
	}

	return nil
}

// decoder reads typed values out of a merged map, keeping the first error.
type decoder struct {
	data map[string]any
	err  error
}

func (d *decoder) lookup(path string) (any, bool) {
	section, key, ok := strings.Cut(path, ".")
	if !ok {
		return nil, false
	}
	m, ok := d.data[section].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

func (d *decoder) fail(path, expected string, v any) {
	if d.err == nil {
		d.err = &TypeError{Path: path, Expected: expected, Actual: fmt.Sprintf("%T", v)}
	}
}

func (d *decoder) string(path string) string {
	v, ok := d.lookup(path)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(path, "string", v)
	}
	return s
}

func (d *decoder) duration(path string) time.Duration {
	v, ok := d.lookup(path)
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case time.Duration:
		return x
	case int64:
		return time.Duration(x) * time.Millisecond
	case string:
		dur, err := time.ParseDuration(x)
		if err != nil {
			d.fail(path, "duration", v)
		}
		return dur
	default:
		d.fail(path, "duration", v)
		return 0
	}
}
