package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, lfs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "col.timprints")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)

	// Patch a single byte in place.
	_, err = f.WriteAt([]byte("J"), 0)
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())

	buf := make([]byte, 5)
	_, err = f.ReadAt(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, "Jello", string(buf))

	info, err := f.Stat()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.NoError(t, f.Close())

	info2, err := lfs.Stat(fpath)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info2.Size())

	entries, err := lfs.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.NoError(t, lfs.Remove(fpath))
	_, err = lfs.Stat(fpath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	ffs.SetLimit(5)

	fpath := filepath.Join(tmp, "faulty.txt")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	n, err := f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.Error(t, err)
	assert.Equal(t, 0, n)

	_, err = f.WriteAt([]byte("!"), 0)
	assert.Error(t, err)

	assert.Equal(t, int64(5), ffs.GetWritten())
	assert.NoError(t, f.Close())

	_, err = ffs.Stat(fpath)
	assert.NoError(t, err)
}

func TestFaultyFS_Rules(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	boom := errors.New("boom")

	ffs.AddRule(".timprints", Fault{FailAfterBytes: -1, FailOnSync: true, Err: boom})
	ffs.AddRule("locked", Fault{FailAfterBytes: -1, FailOnOpen: true, Err: boom})

	f, err := ffs.OpenFile(filepath.Join(tmp, "a.timprints"), os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	assert.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), boom)
	assert.NoError(t, f.Close())

	_, err = ffs.OpenFile(filepath.Join(tmp, "locked"), os.O_CREATE|os.O_RDWR, 0644)
	assert.ErrorIs(t, err, boom)

	// Files not matching a rule use the default.
	g, err := ffs.OpenFile(filepath.Join(tmp, "plain"), os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	assert.NoError(t, g.Sync())
	assert.NoError(t, g.Close())

	ffs.ClearRules()
	h, err := ffs.OpenFile(filepath.Join(tmp, "a.timprints"), os.O_RDWR, 0644)
	require.NoError(t, err)
	assert.NoError(t, h.Sync())
	assert.NoError(t, h.Close())
}

func TestFaultyFS_Delegation(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})

	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, ffs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := LocalFS{}.OpenFile(fpath, os.O_CREATE, 0644)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := ffs.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.NoError(t, ffs.Remove(fpath))
}
