package colsel

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hupe1980/colsel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLogger_LogSelect(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelDebug)

	l.LogSelect(t.Context(), "price", "imprints", 12, nil)
	l.LogSelect(t.Context(), "price", "", 0, errors.New("boom"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "imprints", lines[0]["algo"])
	assert.Equal(t, 12.0, lines[0]["rows"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	col := model.ColumnID(7)

	l.LogImprintBuild(t.Context(), col, 100, 64, time.Millisecond, nil)
	l.LogImprintLoad(t.Context(), col, nil)
	l.LogEvict(t.Context(), col)
	l.LogPersist(t.Context(), col, 64, time.Millisecond, nil)
	l.LogPersist(t.Context(), col, 0, 0, errors.New("disk full"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "imprints persisted", lines[0]["msg"])
	assert.Equal(t, 7.0, lines[0]["column_id"])
	assert.Equal(t, "imprints write-back failed", lines[1]["msg"])
}

func TestLogger_With(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	l.WithColumn("qty").WithAlgo("hashselect").Info("hello")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "qty", lines[0]["column"])
	assert.Equal(t, "hashselect", lines[0]["algo"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
	l.LogSelect(t.Context(), "x", "", 0, errors.New("ignored"))
}
