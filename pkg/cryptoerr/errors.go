// Package cryptoerr defines the error kinds reported by the rasterlock packages.
//
// Every failure returned by a core operation matches exactly one of the sentinels below with errors.Is.
// Context is attached with fmt.Errorf and %w, except for ErrDecryptionFailure, which is always returned
// bare so that the error text can't be used to tell a wrong key from a corrupted ciphertext.
package cryptoerr

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is matched by *ShapeMismatchError.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidParameter indicates input that is outside of the accepted policy, like an RSA modulus below 2048 bits.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMalformedRecord indicates that encoded key material or a container couldn't be parsed.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrDecryptionFailure covers wrong passwords, wrong keys, and corrupted or tampered ciphertext.
	ErrDecryptionFailure = errors.New("decryption failure")
	// ErrMessageTooLong indicates a plaintext that exceeds the padding-bounded capacity of a key.
	ErrMessageTooLong = errors.New("message too long")
)

// Dims is anything that reports a two-dimensional size.
type Dims interface {
	Dims() (height, width int)
}

// ShapeMismatchError reports the dimensions of two buffers that were required to be the same size.
type ShapeMismatchError struct {
	WantHeight, WantWidth int
	GotHeight, GotWidth   int
}

// NewShapeMismatch creates a ShapeMismatchError from the expected and actual buffers.
func NewShapeMismatch(want, got Dims) *ShapeMismatchError {
	e := new(ShapeMismatchError)
	e.WantHeight, e.WantWidth = want.Dims()
	e.GotHeight, e.GotWidth = got.Dims()
	return e
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %dx%d, got %dx%d", ErrShapeMismatch, e.WantHeight, e.WantWidth, e.GotHeight, e.GotWidth)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// InvalidParameter wraps ErrInvalidParameter with a formatted message.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// MalformedRecord wraps ErrMalformedRecord with a formatted message.
func MalformedRecord(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
