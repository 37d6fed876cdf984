package imgcipher

import (
	"io"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/saylorsolutions/rasterlock/pkg/raster"
	"github.com/saylorsolutions/rasterlock/pkg/xor"
)

// GenerateKey creates a key buffer of the given shape, with every cell read from random.
// A nil random uses crypto/rand.Reader.
// A key must only ever be used to encrypt one raster.
func GenerateKey(random io.Reader, shape raster.Shape) (raster.Raster, error) {
	if err := shape.Validate(); err != nil {
		return raster.Raster{}, err
	}
	pix, err := xor.GenKey(random, shape.Len())
	if err != nil {
		return raster.Raster{}, err
	}
	defer clear(pix)
	return raster.FromPix(shape, pix)
}

// Encrypt returns plain XOR key, cell by cell.
// The shapes must match exactly, otherwise a *cryptoerr.ShapeMismatchError is returned.
func Encrypt(plain, key raster.Raster) (raster.Raster, error) {
	return apply(plain, key)
}

// Decrypt returns cipher XOR key, cell by cell, which recovers the raster passed to Encrypt.
// The shapes must match exactly, otherwise a *cryptoerr.ShapeMismatchError is returned.
func Decrypt(cipher, key raster.Raster) (raster.Raster, error) {
	return apply(cipher, key)
}

func apply(data, key raster.Raster) (raster.Raster, error) {
	if err := data.Validate(); err != nil {
		return raster.Raster{}, err
	}
	if err := key.Validate(); err != nil {
		return raster.Raster{}, err
	}
	if data.Shape() != key.Shape() {
		return raster.Raster{}, cryptoerr.NewShapeMismatch(data, key)
	}
	return raster.Generate(data.Shape(), func(pix []uint8) error {
		xor.Bytes(pix, data.Pix(), key.Pix())
		return nil
	})
}

// Statistics computes the population mean and variance of every cell in cipher.
//
// This shows that aggregate values can be computed without the key.
// It also shows what an observer learns from ciphertext: a uniformly random key gives a mean near 127.5 and variance near 5461.25, and significant departures from that suggest key reuse or a non-random key.
// An empty raster yields zeros.
func Statistics(cipher raster.Raster) (mean, variance float64) {
	pix := cipher.Pix()
	if len(pix) == 0 {
		return 0, 0
	}
	n := float64(len(pix))
	var sum float64
	for _, p := range pix {
		sum += float64(p)
	}
	mean = sum / n
	var sq float64
	for _, p := range pix {
		d := float64(p) - mean
		sq += d * d
	}
	return mean, sq / n
}

// Combine XORs the overlapping top-left region of c1 and c2.
// The result has the height and width of the smaller of each dimension.
//
// This only demonstrates an operation over ciphertext.
// For independently keyed inputs the result has no useful relationship to either plaintext, and when both used the same key it leaks the XOR of the plaintexts.
func Combine(c1, c2 raster.Raster) (raster.Raster, error) {
	if err := c1.Validate(); err != nil {
		return raster.Raster{}, err
	}
	if err := c2.Validate(); err != nil {
		return raster.Raster{}, err
	}
	shape := c1.Shape().Intersect(c2.Shape())
	a, err := c1.Crop(shape)
	if err != nil {
		return raster.Raster{}, err
	}
	b, err := c2.Crop(shape)
	if err != nil {
		return raster.Raster{}, err
	}
	return apply(a, b)
}
