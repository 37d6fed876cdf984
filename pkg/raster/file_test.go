package raster

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"testing"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRaster(t *testing.T) Raster {
	t.Helper()
	r, err := FromRows([][]uint8{
		{0, 1, 2, 3},
		{64, 128, 192, 255},
		{9, 8, 7, 6},
	})
	require.NoError(t, err)
	return r
}

func TestReadWrite(t *testing.T) {
	orig := testRaster(t)
	var buf bytes.Buffer
	require.NoError(t, orig.Write(&buf))
	assert.Equal(t, 13+12, buf.Len())

	read, err := Read(&buf)
	require.NoError(t, err)
	assert.True(t, orig.Equal(read))
}

func TestMarshalBinary(t *testing.T) {
	orig := testRaster(t)
	data, err := orig.MarshalBinary()
	require.NoError(t, err)

	var got Raster
	require.NoError(t, got.UnmarshalBinary(data))
	assert.True(t, orig.Equal(got))

	assert.ErrorIs(t, got.UnmarshalBinary(append(data, 0)), cryptoerr.ErrMalformedRecord)
}

func TestRead_Neg(t *testing.T) {
	data, err := testRaster(t).MarshalBinary()
	require.NoError(t, err)

	badMagic := bytes.Clone(data)
	badMagic[0] ^= 0xff
	badVersion := bytes.Clone(data)
	badVersion[4] = 0x7f
	zeroHeight := bytes.Clone(data)
	copy(zeroHeight[5:9], []byte{0, 0, 0, 0})

	tests := map[string][]byte{
		"Empty":          nil,
		"Short header":   data[:6],
		"Bad magic":      badMagic,
		"Bad version":    badVersion,
		"Zero height":    zeroHeight,
		"Truncated body": data[:len(data)-1],
	}
	for name, given := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(given))
			assert.ErrorIs(t, err, cryptoerr.ErrMalformedRecord)
		})
	}
}

func oversizedHeader(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	h := fileHeader{
		magic:   fileMagic,
		version: fileVersion,
		height:  1 << 15,
		width:   1 << 14,
	}
	require.NoError(t, h.mapper().Write(&buf, fileEndian))
	buf.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	return buf.Bytes()
}

func TestRead_ClaimedSizeExceedsBody(t *testing.T) {
	data := oversizedHeader(t)

	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, cryptoerr.ErrMalformedRecord)

	_, err = Read(io.MultiReader(bytes.NewReader(data[:5]), bytes.NewReader(data[5:])))
	assert.ErrorIs(t, err, cryptoerr.ErrMalformedRecord, "Readers without a length must fail once the body runs out")

	var r Raster
	assert.ErrorIs(t, r.UnmarshalBinary(data), cryptoerr.ErrMalformedRecord)
	assert.True(t, r.Empty())
}

func TestRead_Streamed(t *testing.T) {
	orig := testRaster(t)
	data, err := orig.MarshalBinary()
	require.NoError(t, err)

	read, err := Read(io.MultiReader(bytes.NewReader(data[:7]), bytes.NewReader(data[7:])))
	require.NoError(t, err)
	assert.True(t, orig.Equal(read))
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Raster{}.Write(&buf), cryptoerr.ErrInvalidParameter)
}

func TestEncodeDecode(t *testing.T) {
	orig := testRaster(t)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, orig))
	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.True(t, orig.Equal(decoded), "PNG must preserve every cell")
}

func TestSaveLoad(t *testing.T) {
	orig := testRaster(t)
	path := filepath.Join(t.TempDir(), "raster.png")
	require.NoError(t, Save(orig, path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, orig.Equal(loaded))

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestFromImage_Color(t *testing.T) {
	img := image.NewRGBA(image.Rect(2, 3, 4, 4))
	img.Set(2, 3, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(3, 3, color.RGBA{A: 255})

	r, err := FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, Shape{Height: 1, Width: 2}, r.Shape())
	assert.Equal(t, uint8(255), r.At(0, 0))
	assert.Equal(t, uint8(0), r.At(0, 1))
}

func TestFromImage_SubImage(t *testing.T) {
	gray := testRaster(t).Image()
	sub := gray.SubImage(image.Rect(1, 1, 3, 3))

	r, err := FromImage(sub)
	require.NoError(t, err)
	expected, err := FromRows([][]uint8{
		{128, 192},
		{8, 7},
	})
	require.NoError(t, err)
	assert.True(t, expected.Equal(r))
}

func TestFromImage_Empty(t *testing.T) {
	_, err := FromImage(image.NewGray(image.Rect(0, 0, 0, 5)))
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
}
