package bitmap

import (
	"math"
	"strings"
)

// Symbols used by the text form.
const (
	SymbolOn  = '#'
	SymbolOff = '.'
)

// Bitmap is a fixed-size grid of boolean cells stored row-major.
type Bitmap struct {
	width  int
	height int
	cells  []bool
}

// New creates a width x height bitmap with every cell cleared.
// Negative dimensions are treated as zero. Dimensions whose cell count
// overflows int yield an empty 0x0 bitmap.
func New(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n, ok := CellCount(width, height)
	if !ok {
		width, height, n = 0, 0, 0
	}
	return &Bitmap{
		width:  width,
		height: height,
		cells:  make([]bool, n),
	}
}

// CellCount returns width*height and reports whether the product fits in
// an int. Negative dimensions are never valid.
func CellCount(width, height int) (int, bool) {
	if width < 0 || height < 0 {
		return 0, false
	}
	if width != 0 && height > math.MaxInt/width {
		return 0, false
	}
	return width * height, true
}

// Width returns the number of columns.
func (b *Bitmap) Width() int { return b.width }

// Height returns the number of rows.
func (b *Bitmap) Height() int { return b.height }

// Len returns the number of cells.
func (b *Bitmap) Len() int { return len(b.cells) }

// InBounds returns true if (x, y) addresses a cell.
func (b *Bitmap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

func (b *Bitmap) index(x, y int) int {
	return y*b.width + x
}

func (b *Bitmap) check(x, y int) error {
	if !b.InBounds(x, y) {
		return &OutOfBoundsError{X: x, Y: y, Width: b.width, Height: b.height}
	}
	return nil
}

// Get returns the value of the cell at (x, y).
func (b *Bitmap) Get(x, y int) (bool, error) {
	if err := b.check(x, y); err != nil {
		return false, err
	}
	return b.cells[b.index(x, y)], nil
}

// At returns the value at (x, y), or false outside the bitmap.
func (b *Bitmap) At(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}
	return b.cells[b.index(x, y)]
}

// Set assigns the cell at (x, y). The bitmap is unchanged on error.
func (b *Bitmap) Set(x, y int, v bool) error {
	if err := b.check(x, y); err != nil {
		return err
	}
	b.cells[b.index(x, y)] = v
	return nil
}

// Toggle inverts the cell at (x, y).
func (b *Bitmap) Toggle(x, y int) error {
	if err := b.check(x, y); err != nil {
		return err
	}
	i := b.index(x, y)
	b.cells[i] = !b.cells[i]
	return nil
}

// Fill assigns v to every cell.
func (b *Bitmap) Fill(v bool) {
	for i := range b.cells {
		b.cells[i] = v
	}
}

// Count returns the number of set cells.
func (b *Bitmap) Count() int {
	n := 0
	for _, c := range b.cells {
		if c {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	cells := make([]bool, len(b.cells))
	copy(cells, b.cells)
	return &Bitmap{width: b.width, height: b.height, cells: cells}
}

// Equal returns true if both bitmaps have the same shape and cells.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.width != other.width || b.height != other.height {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rows returns the text form split into one string per row.
func (b *Bitmap) Rows() []string {
	rows := make([]string, b.height)
	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		sb.Reset()
		sb.Grow(b.width)
		for x := 0; x < b.width; x++ {
			if b.cells[b.index(x, y)] {
				sb.WriteByte(SymbolOn)
			} else {
				sb.WriteByte(SymbolOff)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// Render returns the text form: height lines of width symbols joined by
// '\n', without a trailing newline.
func (b *Bitmap) Render() string {
	return strings.Join(b.Rows(), "\n")
}

// String implements fmt.Stringer.
func (b *Bitmap) String() string {
	return b.Render()
}
