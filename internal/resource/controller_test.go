package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	// Test with limit
	c := NewController(Config{MemoryLimitBytes: 100})

	// Acquire 50
	err := c.AcquireMemory(50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	// Acquire 40
	err = c.AcquireMemory(40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should fail - limit exceeded)
	err = c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	err = c.AcquireMemory(20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Concurrency(t *testing.T) {
	c := NewController(Config{MaxBackgroundWorkers: 2})

	// Acquire 2
	require.NoError(t, c.AcquireBackground(t.Context()))
	require.NoError(t, c.AcquireBackground(t.Context()))

	// 3rd blocks until the deadline
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireBackground(ctx), context.DeadlineExceeded)

	// Release 1
	c.ReleaseBackground()

	// 3rd succeeds now
	require.NoError(t, c.AcquireBackground(t.Context()))
}

func TestController_NilReceiver(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	require.NoError(t, c.AcquireBackground(t.Context()))
	c.ReleaseBackground()
	assert.NoError(t, c.AcquireIO(t.Context(), 1<<20))
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestReservation(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	r, err := c.Reserve(40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), r.Bytes())

	require.NoError(t, r.Grow(50))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Refused growth keeps the previous size.
	assert.ErrorIs(t, r.Grow(20), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), r.Bytes())

	r.Release()
	r.Release()
	assert.Equal(t, int64(0), c.MemoryUsage())

	_, err = c.Reserve(200)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestController_IOSplitsLargeRequests(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	// Larger than the burst must not fail with "exceeds burst".
	require.NoError(t, c.AcquireIO(t.Context(), 1<<20+1))
}

func TestRateLimitedWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	var buf bytes.Buffer
	w := NewRateLimitedWriter(t.Context(), &buf, c)

	n, err := w.Write([]byte("imprints"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "imprints", buf.String())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	slow := NewRateLimitedWriter(ctx, &buf, NewController(Config{IOLimitBytesPerSec: 1}))
	_, err = slow.Write(make([]byte, 4))
	assert.Error(t, err)
}
