package mmap

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapped")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestOpen(t *testing.T) {
	content := []byte("Hello, Mmap!")
	m, err := Open(writeTemp(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())
	assert.NoError(t, m.Advise(AdviceSequential))
	assert.NoError(t, m.Advise(AdviceNormal))
}

func TestOpen_EmptyFile(t *testing.T) {
	m, err := Open(writeTemp(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.Nil(t, m.Bytes())
	assert.NoError(t, m.Advise(AdviceSequential))

	secs, err := m.Sections(0, 0)
	require.NoError(t, err)
	assert.Len(t, secs, 2)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSections(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("aaaabbcccccc--")))
	require.NoError(t, err)
	defer m.Close()

	secs, err := m.Sections(4, 2, 6)
	require.NoError(t, err)
	require.Len(t, secs, 3)
	assert.Equal(t, "aaaa", string(secs[0]))
	assert.Equal(t, "bb", string(secs[1]))
	assert.Equal(t, "cccccc", string(secs[2]))
	assert.Equal(t, 2, cap(secs[1]))

	_, err = m.Sections(10, 10)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = m.Sections(-1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestClose(t *testing.T) {
	m, err := Open(writeTemp(t, make([]byte, 1024)))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AdviceSequential), ErrClosed)
	_, err = m.Sections(1)
	assert.ErrorIs(t, err, ErrClosed)
}
