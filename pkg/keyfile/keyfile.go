// Package keyfile persists encoded key records, one file per key component.
//
// Writes are exclusive and atomic per path: an advisory lock on "<path>.lock" serializes writers, and the data is written to a temporary file in the same directory that's synced and renamed over the target.
// Readers never observe a partially written record.
package keyfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// PrivatePerm is used for private key material and sealed key buffers.
	PrivatePerm os.FileMode = 0o600
	// PublicPerm is used for public key records.
	PublicPerm os.FileMode = 0o644

	lockRetryDelay = 50 * time.Millisecond
)

// ErrLocked is returned when the lock for a path couldn't be acquired before the context was done.
var ErrLocked = errors.New("key file is locked by another writer")

func lockPath(path string) string {
	return path + ".lock"
}

// Write atomically replaces the file at path with data, creating it with perm if needed.
// The wait for the path's lock is bounded by ctx.
func Write(ctx context.Context, path string, data []byte, perm os.FileMode) (err error) {
	path = filepath.Clean(path)
	lock := flock.New(lockPath(path))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: '%s': %w", ErrLocked, path, ctxErr)
		}
		return fmt.Errorf("failed to lock '%s': %w", path, err)
	}
	if !locked {
		return fmt.Errorf("%w: '%s'", ErrLocked, path)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("failed to unlock '%s': %w", path, uerr)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for '%s': %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions for '%s': %w", path, err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync '%s': %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close '%s': %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace '%s': %w", path, err)
	}
	return nil
}

// Read returns the contents of the file at path.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //nolint:gosec // This is intended to allow arbitrary file reads.
	if err != nil {
		return nil, fmt.Errorf("failed to read key file '%s': %w", path, err)
	}
	return data, nil
}
