package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/dshills/bitgrid/internal/bitmap"
	"github.com/dshills/bitgrid/internal/codec"
	"github.com/dshills/bitgrid/internal/config"
	"github.com/dshills/bitgrid/internal/renderer"
	"github.com/dshills/bitgrid/internal/renderer/backend"
	"github.com/dshills/bitgrid/internal/script"
	"github.com/dshills/bitgrid/internal/watcher"
)

// arrowSample is the second bitmap of the demonstration.
const arrowSample = "...#...\n..#.#..\n.#####.\n#.....#"

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML configuration file. Empty uses defaults and
	// the environment only.
	ConfigPath string

	// LogLevel overrides logging.level from the configuration.
	LogLevel string

	// Format is the output format: text, json or yaml. Empty means text.
	Format string

	// New creates a blank bitmap of the given "WxH" size instead of
	// reading files.
	New string

	// Script is a Lua file run against every bitmap before output.
	Script string

	// Watch reprocesses the inputs whenever they change.
	Watch bool

	// View opens the interactive viewer instead of writing output.
	View bool

	// Files are the input bitmap files.
	Files []string

	// Output receives the encoded bitmaps. Defaults to os.Stdout.
	Output io.Writer

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application is the bitgrid command.
type Application struct {
	opts   Options
	config *config.Config
	logger *Logger
	format codec.Format
	runner *script.Runner
	out    io.Writer

	// newBackend opens the display for the viewer.
	newBackend func() (backend.Backend, error)
}

// New creates an application from options, loading its configuration.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, NewOperationError("load config", opts.ConfigPath, err)
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(level),
		Output: opts.LogOutput,
		Prefix: "bitgrid",
	})

	format := codec.FormatText
	if opts.Format != "" {
		format, err = codec.ParseFormat(opts.Format)
		if err != nil {
			return nil, err
		}
	}

	if opts.New != "" {
		if _, _, err := ParseSize(opts.New); err != nil {
			return nil, err
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	return &Application{
		opts:   opts,
		config: cfg,
		logger: logger,
		format: format,
		runner: script.New(
			script.WithTimeout(cfg.Script.Timeout),
			script.WithOutput(os.Stderr),
		),
		out: out,
		newBackend: func() (backend.Backend, error) {
			return backend.NewTerminal()
		},
	}, nil
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	if app.logger == nil {
		return GetLogger()
	}
	return app.logger
}

// Run processes the inputs once, then keeps reprocessing them on change
// when watching. Cancellation of ctx ends watching and viewing without
// error. Closing the viewer returns ErrQuit.
func (app *Application) Run(ctx context.Context) error {
	if app.opts.View {
		return app.runViewer(ctx)
	}

	err := app.writeOnce(ctx)
	if !app.opts.Watch {
		return err
	}
	if err != nil {
		app.Logger().Error("%v", err)
	}

	return app.watch(ctx, func() {
		if err := app.writeOnce(ctx); err != nil {
			app.Logger().Error("%v", err)
		}
	})
}

// writeOnce loads the inputs and writes them in the output format.
func (app *Application) writeOnce(ctx context.Context) error {
	entries, err := app.load(ctx)
	if err != nil {
		return err
	}

	data, err := codec.Encode(app.format, entries)
	if err != nil {
		return NewOperationError("encode", app.format.String(), err)
	}
	if _, err := app.out.Write(data); err != nil {
		return NewOperationError("write", "output", err)
	}
	return nil
}

// load builds the bitmaps to process and applies the script to each.
func (app *Application) load(ctx context.Context) ([]codec.Named, error) {
	log := app.Logger().WithComponent("app")

	var entries []codec.Named
	switch {
	case app.opts.New != "":
		w, h, err := ParseSize(app.opts.New)
		if err != nil {
			return nil, err
		}
		entries = []codec.Named{{Name: "new", Bitmap: bitmap.New(w, h)}}

	case len(app.opts.Files) == 0:
		entries = app.demo()

	default:
		var errs ErrorList
		for _, path := range app.opts.Files {
			data, err := os.ReadFile(path)
			if err != nil {
				errs.Add(NewOperationError("read", path, err))
				continue
			}
			named, err := codec.DecodeFile(path, data)
			if err != nil {
				errs.Add(NewOperationError("decode", path, err))
				continue
			}
			log.WithField("file", path).Debug("decoded %d bitmap(s)", len(named))
			entries = append(entries, named...)
		}
		if err := errs.AsError(); err != nil {
			return nil, err
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoInput
	}

	if app.opts.Script != "" {
		if err := app.applyScript(ctx, entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (app *Application) applyScript(ctx context.Context, entries []codec.Named) error {
	path := app.opts.Script
	src, err := os.ReadFile(path)
	if err != nil {
		return NewOperationError("read", path, err)
	}

	log := app.Logger().WithComponent("script")
	for _, e := range entries {
		if err := app.runner.RunFile(ctx, e.Bitmap, path, src); err != nil {
			return NewOperationError("script", path, err).WithContext("bitmap " + e.Name)
		}
		log.WithField("bitmap", e.Name).Debug("applied %s", path)
	}
	return nil
}

// demo builds the demonstration bitmaps: a 4x5 grid with (2,4) set, and
// the arrow sample parsed from text.
func (app *Application) demo() []codec.Named {
	log := app.Logger().WithComponent("demo")

	grid := bitmap.New(4, 5)
	v, _ := grid.Get(2, 4)
	log.Info("get(2,4) = %t", v)

	_ = grid.Set(2, 4, true)
	v, _ = grid.Get(2, 4)
	log.Info("get(2,4) = %t after set(2,4,true)", v)

	arrow := bitmap.MustParse(arrowSample)
	log.Info("parsed arrow %dx%d", arrow.Width(), arrow.Height())

	return []codec.Named{
		{Name: "grid", Bitmap: grid},
		{Name: "arrow", Bitmap: arrow},
	}
}

// watchPaths returns the files whose changes trigger a reload.
func (app *Application) watchPaths() []string {
	paths := append([]string(nil), app.opts.Files...)
	if app.opts.Script != "" {
		paths = append(paths, app.opts.Script)
	}
	return paths
}

// watch calls reload after every debounced change until ctx is done.
func (app *Application) watch(ctx context.Context, reload func()) error {
	log := app.Logger().WithComponent("watcher")

	paths := app.watchPaths()
	if len(paths) == 0 {
		log.Warn("nothing to watch")
		return nil
	}

	w, err := watcher.New(watcher.WithDebounce(app.config.Watch.Debounce))
	if err != nil {
		return NewOperationError("watch", "", err)
	}
	defer w.Close()

	for _, path := range paths {
		if err := w.Watch(path); err != nil && !errors.Is(err, watcher.ErrAlreadyWatching) {
			return NewOperationError("watch", path, err)
		}
	}
	log.Info("watching %d file(s)", len(paths))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			log.WithField("op", ev.Op).Info("changed %s", ev.Path)
			reload()

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			log.Warn("%v", err)
		}
	}
}

// runViewer shows the bitmaps in the terminal viewer, reloading them on
// change when watching.
func (app *Application) runViewer(ctx context.Context) error {
	entries, err := app.load(ctx)
	if err != nil {
		return err
	}

	theme, err := renderer.ThemeFromConfig(app.config.Display)
	if err != nil {
		return NewOperationError("view", "theme", err)
	}

	b, err := app.newBackend()
	if err != nil {
		return NewOperationError("view", "terminal", err)
	}
	if err := b.Init(); err != nil {
		return NewOperationError("view", "terminal", err)
	}
	defer b.Shutdown()

	v := renderer.NewViewer(b, renderer.NewPainter(b, theme), entries)

	var wg sync.WaitGroup
	watchCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()

	if app.opts.Watch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := app.watch(watchCtx, func() {
				entries, err := app.load(watchCtx)
				if err != nil {
					app.Logger().Error("%v", err)
					return
				}
				v.SetEntries(entries)
			})
			if err != nil {
				app.Logger().Error("%v", err)
			}
		}()
	}

	err = v.Run(ctx)
	switch {
	case errors.Is(err, renderer.ErrQuit):
		return ErrQuit
	case ctx.Err() != nil:
		return nil
	}
	return err
}

// MaxCells bounds the cell count of a bitmap created with -new.
const MaxCells = 1 << 24

// ParseSize parses a "WxH" size such as "4x5". Both dimensions must be
// non-negative integers and the cell count must not exceed MaxCells.
func ParseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w %q: want WxH", ErrInvalidSize, s)
	}

	width, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil || width < 0 {
		return 0, 0, fmt.Errorf("%w %q: bad width", ErrInvalidSize, s)
	}
	height, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || height < 0 {
		return 0, 0, fmt.Errorf("%w %q: bad height", ErrInvalidSize, s)
	}
	if n, ok := bitmap.CellCount(width, height); !ok || n > MaxCells {
		return 0, 0, fmt.Errorf("%w %q: more than %d cells", ErrInvalidSize, s, MaxCells)
	}
	return width, height, nil
}
