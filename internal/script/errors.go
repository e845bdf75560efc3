package script

import "fmt"

// Error reports a script that failed to compile or run.
type Error struct {
	// Name identifies the script, usually its file name.
	Name string

	// Message is the Lua error text, including the script position when
	// Lua provides one.
	Message string

	// Err is the underlying cause: a bitmap error raised by a grid call,
	// a context error on timeout or cancellation, or the Lua error itself.
	Err error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("script %s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("script %s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
