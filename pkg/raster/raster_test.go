package raster

import (
	"testing"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShape(t *testing.T) {
	tests := map[string]struct {
		height, width int
		expectErr     bool
	}{
		"Valid":           {height: 3, width: 4},
		"Single cell":     {height: 1, width: 1},
		"Zero height":     {height: 0, width: 4, expectErr: true},
		"Zero width":      {height: 4, width: 0, expectErr: true},
		"Negative height": {height: -1, width: 4, expectErr: true},
		"Too many cells":  {height: MaxCells, width: 2, expectErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			shape, err := NewShape(tc.height, tc.width)
			if tc.expectErr {
				assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.height*tc.width, shape.Len())
		})
	}
}

func TestFromRows(t *testing.T) {
	r, err := FromRows([][]uint8{
		{1, 2, 3},
		{4, 5, 6},
	})
	require.NoError(t, err)
	h, w := r.Dims()
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)
	assert.Equal(t, uint8(6), r.At(1, 2))
	assert.Equal(t, []uint8{4, 5, 6}, r.Row(1))
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, r.Pix())

	_, err = FromRows([][]uint8{{1, 2}, {3}})
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
	_, err = FromRows(nil)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
}

func TestRaster_Immutable(t *testing.T) {
	src := []uint8{1, 2, 3, 4}
	r, err := FromPix(Shape{Height: 2, Width: 2}, src)
	require.NoError(t, err)

	src[0] = 99
	assert.Equal(t, uint8(1), r.At(0, 0), "Constructor must copy its input")

	pix := r.Pix()
	pix[1] = 99
	assert.Equal(t, uint8(2), r.At(0, 1), "Accessors must return a copy")
}

func TestFromPix_Neg(t *testing.T) {
	_, err := FromPix(Shape{Height: 2, Width: 2}, []uint8{1, 2, 3})
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
	_, err = FromPix(Shape{}, nil)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
}

func TestRaster_Crop(t *testing.T) {
	r, err := FromRows([][]uint8{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
	require.NoError(t, err)

	cropped, err := r.Crop(Shape{Height: 2, Width: 2})
	require.NoError(t, err)
	expected, err := FromRows([][]uint8{
		{1, 2},
		{4, 5},
	})
	require.NoError(t, err)
	assert.True(t, expected.Equal(cropped))

	_, err = r.Crop(Shape{Height: 4, Width: 1})
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
	_, err = Raster{}.Crop(Shape{Height: 1, Width: 1})
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
}

func TestRaster_Wipe(t *testing.T) {
	shape := Shape{Height: 2, Width: 3}
	r, err := Filled(shape, 0xff)
	require.NoError(t, err)
	r.Wipe()
	zero, err := New(shape)
	require.NoError(t, err)
	assert.True(t, zero.Equal(r))
}

func TestRaster_AtPanics(t *testing.T) {
	r, err := New(Shape{Height: 1, Width: 1})
	require.NoError(t, err)
	assert.Panics(t, func() {
		r.At(1, 0)
	})
	assert.Panics(t, func() {
		r.Row(-1)
	})
}

func TestShape_Intersect(t *testing.T) {
	a := Shape{Height: 2, Width: 5}
	b := Shape{Height: 3, Width: 3}
	assert.Equal(t, Shape{Height: 2, Width: 3}, a.Intersect(b))
	assert.Equal(t, a.Intersect(b), b.Intersect(a))
}
