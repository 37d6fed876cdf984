package raster

import (
	"bytes"
	"fmt"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
)

// MaxCells is the largest number of cells a Raster may hold.
const MaxCells = 1 << 30

// Shape is the height and width of a Raster.
type Shape struct {
	Height int
	Width  int
}

// NewShape creates a validated Shape.
func NewShape(height, width int) (Shape, error) {
	s := Shape{Height: height, Width: width}
	if err := s.Validate(); err != nil {
		return Shape{}, err
	}
	return s, nil
}

// Validate returns an error matching cryptoerr.ErrInvalidParameter if either dimension is less than 1, or the total cell count exceeds MaxCells.
func (s Shape) Validate() error {
	if s.Height < 1 || s.Width < 1 {
		return cryptoerr.InvalidParameter("raster dimensions must be positive, got %dx%d", s.Height, s.Width)
	}
	if s.Height > MaxCells/s.Width {
		return cryptoerr.InvalidParameter("raster dimensions %dx%d exceed %d cells", s.Height, s.Width, MaxCells)
	}
	return nil
}

func (s Shape) Dims() (height, width int) {
	return s.Height, s.Width
}

// Len is the number of cells described by the Shape.
func (s Shape) Len() int {
	return s.Height * s.Width
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Height, s.Width)
}

// Intersect returns the shape of the overlapping top-left region of s and o.
func (s Shape) Intersect(o Shape) Shape {
	return Shape{
		Height: min(s.Height, o.Height),
		Width:  min(s.Width, o.Width),
	}
}

// Raster is an immutable, row-major grid of 8-bit intensity values.
// The zero value is an empty Raster that no operation accepts.
type Raster struct {
	shape Shape
	pix   []uint8
}

// New creates a Raster of the given shape with every cell set to 0.
func New(shape Shape) (Raster, error) {
	return Filled(shape, 0)
}

// Filled creates a Raster of the given shape with every cell set to val.
func Filled(shape Shape, val uint8) (Raster, error) {
	return Generate(shape, func(pix []uint8) error {
		if val == 0 {
			return nil
		}
		for i := range pix {
			pix[i] = val
		}
		return nil
	})
}

// Generate allocates a zeroed pixel buffer for shape and passes it to fill.
// The buffer is owned by the returned Raster once fill returns, so fill must not retain it.
func Generate(shape Shape, fill func(pix []uint8) error) (Raster, error) {
	if err := shape.Validate(); err != nil {
		return Raster{}, err
	}
	pix := make([]uint8, shape.Len())
	if err := fill(pix); err != nil {
		return Raster{}, err
	}
	return Raster{shape: shape, pix: pix}, nil
}

// FromPix creates a Raster from a row-major copy of pix.
func FromPix(shape Shape, pix []uint8) (Raster, error) {
	if err := shape.Validate(); err != nil {
		return Raster{}, err
	}
	if len(pix) != shape.Len() {
		return Raster{}, cryptoerr.InvalidParameter("expected %d pixels for shape %s, got %d", shape.Len(), shape, len(pix))
	}
	return Generate(shape, func(dst []uint8) error {
		copy(dst, pix)
		return nil
	})
}

// FromRows creates a Raster from a copy of rows, which must all have the same non-zero length.
func FromRows(rows [][]uint8) (Raster, error) {
	if len(rows) == 0 {
		return Raster{}, cryptoerr.InvalidParameter("no rows given")
	}
	shape := Shape{Height: len(rows), Width: len(rows[0])}
	if err := shape.Validate(); err != nil {
		return Raster{}, err
	}
	return Generate(shape, func(pix []uint8) error {
		for y, row := range rows {
			if len(row) != shape.Width {
				return cryptoerr.InvalidParameter("row %d has %d cells, expected %d", y, len(row), shape.Width)
			}
			copy(pix[y*shape.Width:], row)
		}
		return nil
	})
}

func (r Raster) Shape() Shape {
	return r.shape
}

func (r Raster) Dims() (height, width int) {
	return r.shape.Dims()
}

// Empty reports whether r is the zero value.
func (r Raster) Empty() bool {
	return len(r.pix) == 0
}

// Validate returns an error if r is not a usable Raster.
func (r Raster) Validate() error {
	if r.Empty() {
		return cryptoerr.InvalidParameter("empty raster")
	}
	return nil
}

// At returns the value at row y, column x.
// It panics if the coordinates are out of range, like a slice index would.
func (r Raster) At(y, x int) uint8 {
	if y < 0 || y >= r.shape.Height || x < 0 || x >= r.shape.Width {
		panic(fmt.Sprintf("raster: coordinate (%d, %d) out of range for shape %s", y, x, r.shape))
	}
	return r.pix[y*r.shape.Width+x]
}

// Row returns a copy of row y.
func (r Raster) Row(y int) []uint8 {
	if y < 0 || y >= r.shape.Height {
		panic(fmt.Sprintf("raster: row %d out of range for shape %s", y, r.shape))
	}
	row := make([]uint8, r.shape.Width)
	copy(row, r.pix[y*r.shape.Width:])
	return row
}

// Pix returns a row-major copy of every cell.
func (r Raster) Pix() []uint8 {
	pix := make([]uint8, len(r.pix))
	copy(pix, r.pix)
	return pix
}

// Crop returns a copy of the top-left region of r with the given shape.
func (r Raster) Crop(shape Shape) (Raster, error) {
	if err := r.Validate(); err != nil {
		return Raster{}, err
	}
	if shape.Height > r.shape.Height || shape.Width > r.shape.Width {
		return Raster{}, cryptoerr.InvalidParameter("crop %s exceeds raster %s", shape, r.shape)
	}
	return Generate(shape, func(pix []uint8) error {
		for y := 0; y < shape.Height; y++ {
			src := r.pix[y*r.shape.Width : y*r.shape.Width+shape.Width]
			copy(pix[y*shape.Width:], src)
		}
		return nil
	})
}

// Equal reports whether r and o have the same shape and contents.
func (r Raster) Equal(o Raster) bool {
	return r.shape == o.shape && bytes.Equal(r.pix, o.pix)
}

// Wipe overwrites the pixel buffer with zeros.
// This is intended for key buffers that are no longer needed, and affects every copy of r since they share storage.
func (r Raster) Wipe() {
	clear(r.pix)
}
