package cryptoerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type dims [2]int

func (d dims) Dims() (int, int) {
	return d[0], d[1]
}

func TestShapeMismatchError(t *testing.T) {
	err := error(NewShapeMismatch(dims{2, 3}, dims{4, 5}))
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.NotErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, "shape mismatch: expected 2x3, got 4x5", err.Error())

	wrapped := fmt.Errorf("encrypting: %w", err)
	var sme *ShapeMismatchError
	assert.True(t, errors.As(wrapped, &sme))
	assert.Equal(t, 4, sme.GotHeight)
	assert.Equal(t, 5, sme.GotWidth)
}

func TestKindHelpers(t *testing.T) {
	tests := map[string]struct {
		err  error
		kind error
	}{
		"Invalid parameter": {
			err:  InvalidParameter("bit length %d", 1024),
			kind: ErrInvalidParameter,
		},
		"Malformed record": {
			err:  MalformedRecord("no PEM block"),
			kind: ErrMalformedRecord,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.kind)
			assert.NotErrorIs(t, tc.err, ErrDecryptionFailure)
		})
	}
}
