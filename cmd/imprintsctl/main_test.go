package main

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/hupe1980/colsel/scalar"
	"github.com/hupe1980/colsel/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIndex[T scalar.Scalar](t *testing.T, dir, name string, values []T, synced bool) string {
	t.Helper()
	x := imprints.Build(values, imprints.Sample(values, imprints.SampleSize, rand.New(rand.NewPCG(1, 2))), 1)
	path := filepath.Join(dir, name+imprints.FileExt)
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = imprints.Encode(f, x, synced)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	path := writeIndex(t, dir, "qty", testutil.Ascending[int32](5000, 0, 1), true)

	out, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "kind:    int32")
	assert.Contains(t, out, "synced:  true")
	assert.Contains(t, out, "rows:    5000")

	out, err = run(t, "info", "--json", path)
	require.NoError(t, err)
	var infos []fileInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "int32", infos[0].Kind)
	assert.Equal(t, infos[0].WantSize, infos[0].Size)
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	path := writeIndex(t, dir, "price", testutil.Ascending[float64](1000, 0, 0.5), true)

	out, err := run(t, "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1000 rows")
	assert.Contains(t, out, "bits = 64")
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, dir, "a", testutil.Ascending[int64](3000, 0, 1), true)
	writeIndex(t, dir, "b", testutil.Ascending[int16](3000, 0, 1), true)

	out, err := run(t, "verify", dir)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "ok   "))

	bad := writeIndex(t, dir, "c", testutil.Ascending[int8](100, -50, 1), false)
	out, err = run(t, "verify", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 files")
	assert.Contains(t, out, "FAIL "+bad)
}

func TestVerify_Truncated(t *testing.T) {
	dir := t.TempDir()
	path := writeIndex(t, dir, "t", testutil.Ascending[int32](5000, 0, 1), true)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0o600))

	_, err = run(t, "verify", path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, data[:10], 0o600))
	_, err = run(t, "info", path)
	assert.ErrorIs(t, err, imprints.ErrCorrupt)
}

func TestArgs(t *testing.T) {
	_, err := run(t, "dump")
	assert.Error(t, err)
	_, err = run(t, "verify", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
