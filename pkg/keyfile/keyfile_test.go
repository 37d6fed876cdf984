package keyfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private_key.pem")
	ctx := context.Background()

	require.NoError(t, Write(ctx, path, []byte("first"), PrivatePerm))
	require.NoError(t, Write(ctx, path, []byte("second"), PrivatePerm))

	data, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, PrivatePerm, info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "Temporary files must not be left behind")
	}
}

func TestWrite_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public_key.pem")
	held := flock.New(lockPath(path))
	require.NoError(t, held.Lock())
	defer func() {
		_ = held.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err := Write(ctx, path, []byte("data"), PublicPerm)
	assert.ErrorIs(t, err, ErrLocked)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Nothing may be written without the lock")
}

func TestWrite_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		i := i
		g.Go(func() error {
			return Write(context.Background(), path, []byte(fmt.Sprintf("writer-%d", i)), PublicPerm)
		})
	}
	require.NoError(t, g.Wait())

	data, err := Read(path)
	require.NoError(t, err)
	assert.Regexp(t, `^writer-\d$`, string(data))
}

func TestWrite_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "key.pem")
	assert.Error(t, Write(context.Background(), path, []byte("data"), PublicPerm))
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.pem"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
