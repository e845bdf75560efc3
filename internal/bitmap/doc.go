// Package bitmap provides a fixed-size two-dimensional grid of boolean cells.
//
// Cells are stored row-major: the cell at (x, y) lives at index y*width + x
// of the backing slice. The text form renders one line per row, top to
// bottom, with '#' for set cells and '.' for clear cells:
//
//	...#...
//	..#.#..
//	.#####.
//	#.....#
//
// Render and Parse are inverses for any rectangular input without a trailing
// newline.
//
// # Coordinate Access
//
// Get and Set validate coordinates and return an *OutOfBoundsError instead of
// indexing past the declared bounds:
//
//	b := bitmap.New(4, 5)
//	if err := b.Set(2, 4, true); err != nil {
//	    return err
//	}
//	on, _ := b.Get(2, 4) // true
//
// # Parsing
//
// Parse reports malformed input with a *ParseError that carries the 1-based
// line and column of the problem. Use errors.Is with ErrShapeMismatch or
// ErrInvalidSymbol to distinguish the two failure kinds.
//
// A Bitmap is not safe for concurrent mutation.
package bitmap
