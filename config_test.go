package colsel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "empty", data: ""},
		{name: "full", data: `
dir: /tmp/imprints
log_level: debug
log_format: json
memory_limit_bytes: 1048576
background_workers: 4
io_limit_bytes_per_sec: 65536
imprint_cache_bytes: 4096
hash_threshold: 3
sample_threshold: 5000
seed: 42
`},
		{name: "unknown key", data: "dirr: /tmp\n", wantErr: true},
		{name: "bad log level", data: "log_level: verbose\n", wantErr: true},
		{name: "bad log format", data: "log_format: xml\n", wantErr: true},
		{name: "negative limit", data: "memory_limit_bytes: -1\n", wantErr: true},
		{name: "too many workers", data: "background_workers: 1000\n", wantErr: true},
		{name: "malformed", data: "dir: [\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestParseConfig_Values(t *testing.T) {
	cfg, err := ParseConfig([]byte("dir: /data\nhash_threshold: 7\nseed: 9\n"))
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.Dir)
	assert.Equal(t, int32(7), cfg.HashThreshold)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Zero(t, cfg.MemoryLimitBytes)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colsel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dir: "+dir+"\nlog_level: warn\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)

	e, err := New(cfg.Options()...)
	require.NoError(t, err)
	defer e.Close()
	assert.NotNil(t, e.Logger())
	assert.Equal(t, filepath.Join(dir, "qty"+imprints.FileExt), e.ImprintPath("qty"))

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
