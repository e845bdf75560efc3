// Package script runs sandboxed Lua programs against a bitmap.
//
// Scripts see a global table named grid:
//
//	grid.width()          -- number of columns
//	grid.height()         -- number of rows
//	grid.get(x, y)        -- bit at (x, y), 0-based
//	grid.set(x, y, on)    -- assign a bit
//	grid.toggle(x, y)     -- flip a bit, returns the new value
//	grid.fill(on)         -- assign every bit
//	grid.count()          -- number of set bits
//	grid.render()         -- the grid as '.'/'#' text
//
// Only the base, table, string and math libraries are available. The chunk
// loaders dofile, loadfile, load and loadstring are removed, as are require
// and module.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/bitgrid/internal/bitmap"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// Runner executes scripts. A Runner is safe for concurrent use; each run
// gets a fresh Lua state.
type Runner struct {
	timeout time.Duration
	output  io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the per-run timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithOutput directs the Lua print function to w.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		timeout: DefaultTimeout,
		output:  io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes src against b. Changes made by the script are applied to b
// in place, including those made before a failure.
func (r *Runner) Run(ctx context.Context, b *bitmap.Bitmap, name, src string) (err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	s := &session{grid: b, output: r.output}
	openSafeLibraries(L)
	s.install(L)

	defer func() {
		if p := recover(); p != nil {
			err = &Error{Name: name, Err: fmt.Errorf("lua panic: %v", p)}
		}
	}()

	fn, compileErr := L.LoadString(src)
	if compileErr != nil {
		return &Error{Name: name, Message: compileErr.Error(), Err: compileErr}
	}

	L.Push(fn)
	if callErr := L.PCall(0, lua.MultRet, nil); callErr != nil {
		return s.wrap(ctx, name, callErr)
	}
	return nil
}

// RunFile is Run with the script name set to path.
func (r *Runner) RunFile(ctx context.Context, b *bitmap.Bitmap, path string, src []byte) error {
	return r.Run(ctx, b, path, string(src))
}

// openSafeLibraries opens only the side-effect free standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// require and module would reach the package loaders, which are never
	// opened.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// session holds the state of a single run.
type session struct {
	grid   *bitmap.Bitmap
	output io.Writer

	// lastErr is the most recent Go error raised into Lua.
	lastErr error
}

func (s *session) install(L *lua.LState) {
	L.SetGlobal("print", L.NewFunction(s.print))

	grid := L.NewTable()
	L.SetFuncs(grid, map[string]lua.LGFunction{
		"width":  s.width,
		"height": s.height,
		"get":    s.get,
		"set":    s.set,
		"toggle": s.toggle,
		"fill":   s.fill,
		"count":  s.count,
		"render": s.render,
	})
	L.SetGlobal("grid", grid)
}

// raise records err and raises it as a Lua error.
func (s *session) raise(L *lua.LState, err error) {
	s.lastErr = err
	L.RaiseError("%s", err.Error())
}

// wrap converts a failed call into an *Error with the most specific cause.
func (s *session) wrap(ctx context.Context, name string, callErr error) error {
	e := &Error{Name: name, Message: callErr.Error(), Err: callErr}

	var apiErr *lua.ApiError
	if errors.As(callErr, &apiErr) && apiErr.Object != nil {
		e.Message = apiErr.Object.String()
	}

	switch {
	case ctx.Err() != nil:
		e.Err = ctx.Err()
	case s.lastErr != nil:
		e.Err = s.lastErr
	}
	return e
}

func (s *session) print(L *lua.LState) int {
	top := L.GetTop()
	for i := 1; i <= top; i++ {
		if i > 1 {
			fmt.Fprint(s.output, "\t")
		}
		fmt.Fprint(s.output, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(s.output)
	return 0
}

func (s *session) width(L *lua.LState) int {
	L.Push(lua.LNumber(s.grid.Width()))
	return 1
}

func (s *session) height(L *lua.LState) int {
	L.Push(lua.LNumber(s.grid.Height()))
	return 1
}

func (s *session) get(L *lua.LState) int {
	x, y := L.CheckInt(1), L.CheckInt(2)
	v, err := s.grid.Get(x, y)
	if err != nil {
		s.raise(L, err)
		return 0
	}
	L.Push(lua.LBool(v))
	return 1
}

func (s *session) set(L *lua.LState) int {
	x, y, v := L.CheckInt(1), L.CheckInt(2), L.CheckBool(3)
	if err := s.grid.Set(x, y, v); err != nil {
		s.raise(L, err)
	}
	return 0
}

func (s *session) toggle(L *lua.LState) int {
	x, y := L.CheckInt(1), L.CheckInt(2)
	if err := s.grid.Toggle(x, y); err != nil {
		s.raise(L, err)
		return 0
	}
	L.Push(lua.LBool(s.grid.At(x, y)))
	return 1
}

func (s *session) fill(L *lua.LState) int {
	s.grid.Fill(L.CheckBool(1))
	return 0
}

func (s *session) count(L *lua.LState) int {
	L.Push(lua.LNumber(s.grid.Count()))
	return 1
}

func (s *session) render(L *lua.LState) int {
	L.Push(lua.LString(s.grid.Render()))
	return 1
}
