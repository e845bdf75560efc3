package script

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/bitgrid/internal/bitmap"
)

func TestRun_GridAPI(t *testing.T) {
	b := bitmap.New(3, 2)
	src := `
assert(grid.width() == 3, "width")
assert(grid.height() == 2, "height")
grid.set(0, 0, true)
grid.set(2, 1, true)
assert(grid.get(0, 0) == true)
assert(grid.get(1, 0) == false)
assert(grid.toggle(1, 1) == true)
assert(grid.count() == 3)
`
	if err := New().Run(context.Background(), b, "api", src); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	want := "#..\n.##"
	if got := b.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRun_FillAndRender(t *testing.T) {
	var out bytes.Buffer
	b := bitmap.New(2, 2)
	src := `
grid.fill(true)
grid.set(1, 0, false)
print(grid.render())
print("count", grid.count())
`
	if err := New(WithOutput(&out)).Run(context.Background(), b, "fill", src); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	want := "#.\n##\ncount\t3\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRun_OutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"get", "grid.get(5, 0)"},
		{"set", "grid.set(0, -1, true)"},
		{"toggle", "grid.toggle(2, 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bitmap.New(2, 2)
			err := New().Run(context.Background(), b, "oob.lua", tt.src)

			var se *Error
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if se.Name != "oob.lua" {
				t.Errorf("Name = %q, want oob.lua", se.Name)
			}
			if !errors.Is(err, bitmap.ErrOutOfBounds) {
				t.Errorf("error = %v, want ErrOutOfBounds", err)
			}
			var oob *bitmap.OutOfBoundsError
			if !errors.As(err, &oob) || oob.Width != 2 || oob.Height != 2 {
				t.Errorf("OutOfBoundsError = %+v", oob)
			}
		})
	}
}

func TestRun_PcallCatchesOutOfBounds(t *testing.T) {
	b := bitmap.New(1, 1)
	src := `
local ok = pcall(grid.get, 9, 9)
assert(not ok)
grid.set(0, 0, true)
`
	if err := New().Run(context.Background(), b, "pcall", src); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !b.At(0, 0) {
		t.Error("script should continue after a caught error")
	}
}

func TestRun_SyntaxError(t *testing.T) {
	err := New().Run(context.Background(), bitmap.New(1, 1), "bad", "grid.set(")
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if se.Message == "" {
		t.Error("expected a compile error message")
	}
}

func TestRun_ArgumentErrors(t *testing.T) {
	err := New().Run(context.Background(), bitmap.New(1, 1), "args", `grid.set(0, 0, "yes")`)
	if err == nil {
		t.Fatal("expected error for non-boolean value")
	}
	if errors.Is(err, bitmap.ErrOutOfBounds) {
		t.Errorf("argument error should not wrap ErrOutOfBounds: %v", err)
	}
}

func TestRun_Sandbox(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"io", "io.open('x')"},
		{"os", "os.exit(1)"},
		{"dofile", "dofile('x')"},
		{"loadfile", "loadfile('x')"},
		{"load", "load('return 1')"},
		{"loadstring", "loadstring('return 1')"},
		{"require", "require('os')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Run(context.Background(), bitmap.New(1, 1), tt.name, tt.src)
			if err == nil {
				t.Errorf("%s should not be available", tt.name)
			}
		})
	}
}

func TestRun_SafeLibraries(t *testing.T) {
	src := `
assert(string.rep("#", 3) == "###")
assert(math.max(1, 2) == 2)
local t = {}
table.insert(t, 1)
assert(#t == 1)
`
	if err := New().Run(context.Background(), bitmap.New(1, 1), "libs", src); err != nil {
		t.Errorf("Run error = %v", err)
	}
}

func TestRun_Timeout(t *testing.T) {
	r := New(WithTimeout(50 * time.Millisecond))
	err := r.Run(context.Background(), bitmap.New(1, 1), "loop", "while true do end")

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Run(ctx, bitmap.New(1, 1), "loop", "while true do end")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestError_Message(t *testing.T) {
	e := &Error{Name: "a.lua", Message: "boom"}
	if got := e.Error(); got != "script a.lua: boom" {
		t.Errorf("Error() = %q", got)
	}

	e = &Error{Name: "a.lua", Err: context.Canceled}
	if !strings.Contains(e.Error(), "context canceled") {
		t.Errorf("Error() = %q", e.Error())
	}
}
