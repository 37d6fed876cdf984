package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/saylorsolutions/rasterlock/pkg/passlock"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err      error
		expected int
	}{
		"Nil":                {err: nil, expected: 0},
		"Other":              {err: errors.New("boom"), expected: ExitFailure},
		"Invalid parameter":  {err: cryptoerr.InvalidParameter("bits"), expected: ExitInvalidParameter},
		"Malformed record":   {err: cryptoerr.MalformedRecord("pem"), expected: ExitMalformedRecord},
		"Decryption failure": {err: cryptoerr.ErrDecryptionFailure, expected: ExitDecryptionFailure},
		"Wrapped decryption": {err: fmt.Errorf("load: %w", cryptoerr.ErrDecryptionFailure), expected: ExitDecryptionFailure},
		"Shape mismatch":     {err: &cryptoerr.ShapeMismatchError{WantHeight: 1, WantWidth: 1, GotHeight: 2, GotWidth: 2}, expected: ExitShapeMismatch},
		"Message too long":   {err: cryptoerr.ErrMessageTooLong, expected: ExitMessageTooLong},
		"Empty passphrase":   {err: fmt.Errorf("seal: %w", passlock.ErrEmptyPassPhrase), expected: ExitInvalidParameter},
		"Short sealed data":  {err: passlock.ErrInvalidData, expected: ExitMalformedRecord},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExitCode(tc.err))
		})
	}
}
