package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
)

const (
	ExitFailure           = 1
	ExitInvalidParameter  = 2
	ExitMalformedRecord   = 3
	ExitDecryptionFailure = 4
	ExitShapeMismatch     = 5
	ExitMessageTooLong    = 6
)

// Fatal will Echo the message and os.Exit with code 1.
func Fatal(msg string, args ...any) {
	Echo(msg, args...)
	os.Exit(ExitFailure)
}

// Fail will Echo the error and os.Exit with the code matching its kind.
func Fail(err error) {
	Echo("Error: %v", err)
	os.Exit(ExitCode(err))
}

// ExitCode maps an error to a process exit code by its cryptoerr kind.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cryptoerr.ErrInvalidParameter):
		return ExitInvalidParameter
	case errors.Is(err, cryptoerr.ErrMalformedRecord):
		return ExitMalformedRecord
	case errors.Is(err, cryptoerr.ErrDecryptionFailure):
		return ExitDecryptionFailure
	case errors.Is(err, cryptoerr.ErrShapeMismatch):
		return ExitShapeMismatch
	case errors.Is(err, cryptoerr.ErrMessageTooLong):
		return ExitMessageTooLong
	default:
		return ExitFailure
	}
}

// Echo will emit the given message without any logging formatting.
func Echo(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, msg, args...)
}
