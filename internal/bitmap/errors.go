package bitmap

import (
	"errors"
	"fmt"
)

// Errors returned by bitmap operations.
var (
	// ErrOutOfBounds indicates a coordinate outside the bitmap.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrParse indicates the text form could not be parsed.
	ErrParse = errors.New("invalid bitmap text")

	// ErrShapeMismatch indicates a line whose length differs from the first line.
	ErrShapeMismatch = errors.New("line length mismatch")

	// ErrInvalidSymbol indicates a character other than '.' or '#'.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// OutOfBoundsError describes an access outside the bitmap.
type OutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

// Error implements the error interface.
func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("coordinate (%d, %d) out of bounds for %dx%d bitmap", e.X, e.Y, e.Width, e.Height)
}

// Is reports whether target is ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// ParseErrorKind categorizes parse failures.
type ParseErrorKind int

const (
	// ShapeMismatch means a line has a different rune count than the first line.
	ShapeMismatch ParseErrorKind = iota
	// InvalidSymbol means a character outside {'.', '#'} was found.
	InvalidSymbol
)

// String returns the kind name.
func (k ParseErrorKind) String() string {
	switch k {
	case ShapeMismatch:
		return "shape mismatch"
	case InvalidSymbol:
		return "invalid symbol"
	default:
		return "unknown"
	}
}

// ParseError describes malformed bitmap text.
type ParseError struct {
	// Kind categorizes the failure.
	Kind ParseErrorKind
	// Line is the 1-based line number.
	Line int
	// Column is the 1-based rune column (InvalidSymbol only).
	Column int
	// Symbol is the offending character (InvalidSymbol only).
	Symbol rune
	// Want and Got are the expected and actual line widths (ShapeMismatch only).
	Want, Got int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ShapeMismatch:
		return fmt.Sprintf("parse error at line %d: %s: width %d, want %d", e.Line, e.Kind, e.Got, e.Want)
	case InvalidSymbol:
		return fmt.Sprintf("parse error at line %d, column %d: %s %q", e.Line, e.Column, e.Kind, e.Symbol)
	default:
		return fmt.Sprintf("parse error at line %d", e.Line)
	}
}

// Is matches ErrParse and the sentinel for the error's kind.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrParse:
		return true
	case ErrShapeMismatch:
		return e.Kind == ShapeMismatch
	case ErrInvalidSymbol:
		return e.Kind == InvalidSymbol
	}
	return false
}
