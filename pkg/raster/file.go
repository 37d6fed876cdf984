package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	bin "github.com/saylorsolutions/binmap"
	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
)

const (
	fileMagic   uint32 = 0x52535452 // RSTR
	fileVersion uint8  = 1
)

var fileEndian = binary.BigEndian

type fileHeader struct {
	magic   uint32
	version uint8
	height  uint32
	width   uint32
}

func (h *fileHeader) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Int(&h.magic),
		bin.Byte(&h.version),
		bin.Int(&h.height),
		bin.Int(&h.width),
	)
}

// Write emits the binary form of r to w.
func (r Raster) Write(w io.Writer) error {
	if err := r.Validate(); err != nil {
		return err
	}
	h := fileHeader{
		magic:   fileMagic,
		version: fileVersion,
		height:  uint32(r.shape.Height),
		width:   uint32(r.shape.Width),
	}
	if err := h.mapper().Write(w, fileEndian); err != nil {
		return fmt.Errorf("failed to write raster header: %w", err)
	}
	if _, err := w.Write(r.pix); err != nil {
		return fmt.Errorf("failed to write raster pixels: %w", err)
	}
	return nil
}

func readHeader(rd io.Reader) (Shape, error) {
	var h fileHeader
	if err := h.mapper().Read(rd, fileEndian); err != nil {
		return Shape{}, cryptoerr.MalformedRecord("failed to read raster header: %v", err)
	}
	if h.magic != fileMagic {
		return Shape{}, cryptoerr.MalformedRecord("not a raster record")
	}
	if h.version != fileVersion {
		return Shape{}, cryptoerr.MalformedRecord("unsupported raster record version %d", h.version)
	}
	shape := Shape{Height: int(h.height), Width: int(h.width)}
	if err := shape.Validate(); err != nil {
		return Shape{}, cryptoerr.MalformedRecord("invalid raster dimensions %s", shape)
	}
	return shape, nil
}

// Read consumes the binary form of a Raster from rd.
// Anything that isn't a complete, well-formed record is reported as cryptoerr.ErrMalformedRecord.
// The pixel buffer grows as bytes arrive, so a header claiming more cells than rd holds doesn't allocate the claimed size.
func Read(rd io.Reader) (Raster, error) {
	shape, err := readHeader(rd)
	if err != nil {
		return Raster{}, err
	}
	if sized, ok := rd.(interface{ Len() int }); ok && sized.Len() < shape.Len() {
		return Raster{}, cryptoerr.MalformedRecord("raster record is truncated")
	}
	var body bytes.Buffer
	defer func() { clear(body.Bytes()) }()
	if _, err := io.CopyN(&body, rd, int64(shape.Len())); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Raster{}, cryptoerr.MalformedRecord("raster record is truncated")
		}
		return Raster{}, err
	}
	return FromPix(shape, body.Bytes())
}

func (r Raster) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(13 + len(r.pix))
	if err := r.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Raster) UnmarshalBinary(data []byte) error {
	rd := bytes.NewReader(data)
	shape, err := readHeader(rd)
	if err != nil {
		return err
	}
	body := data[len(data)-rd.Len():]
	switch {
	case len(body) < shape.Len():
		return cryptoerr.MalformedRecord("raster record is truncated")
	case len(body) > shape.Len():
		return cryptoerr.MalformedRecord("%d trailing bytes after raster record", len(body)-shape.Len())
	}
	read, err := FromPix(shape, body)
	if err != nil {
		return err
	}
	*r = read
	return nil
}
