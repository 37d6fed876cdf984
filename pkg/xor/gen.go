package xor

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
)

// GenKey will generate an XOR key with the given length, read from random.
// A nil random uses crypto/rand.Reader.
func GenKey(random io.Reader, length int) ([]byte, error) {
	if length <= 0 {
		return nil, cryptoerr.InvalidParameter("asked to generate a %d-length key", length)
	}
	buf := make([]byte, length)
	if err := fill(random, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// fill overwrites every byte of buf with bytes read from random.
// A nil random uses crypto/rand.Reader.
// On failure buf is zeroed, so a partially random key is never left behind.
func fill(random io.Reader, buf []byte) error {
	if random == nil {
		random = rand.Reader
	}
	n, err := io.ReadFull(random, buf)
	if err != nil {
		clear(buf)
		return fmt.Errorf("failed to read requested bytes (%d of %d): %w", n, len(buf), err)
	}
	return nil
}

// Bytes sets dst[i] = a[i] ^ b[i] and returns the number of bytes written, which is the shortest length of the three slices.
// dst may alias a or b.
func Bytes(dst, a, b []byte) int {
	n := min(len(dst), len(a), len(b))
	for i := 0; i < n; i++ {
		dst[i] = a[i] ^ b[i]
	}
	return n
}
