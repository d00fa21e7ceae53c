package resource

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	err := c.AcquireMemory(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	err = c.AcquireMemory(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Over the limit
	ok := c.TryAcquireMemory(20)
	assert.False(t, ok)
	assert.Equal(t, int64(90), c.MemoryUsage())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = c.AcquireMemory(ctx, 20)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	err = c.AcquireMemory(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 4})

	assert.Equal(t, 4, c.ClampWorkers(16))
	assert.Equal(t, 3, c.ClampWorkers(3))

	require.NoError(t, c.AcquireWorkers(context.Background(), 3))
	assert.False(t, c.TryAcquireWorkers(2))
	assert.True(t, c.TryAcquireWorkers(1))

	c.ReleaseWorkers(3)
	assert.True(t, c.TryAcquireWorkers(3))
}

func TestController_DefaultWorkers(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, int64(1), c.Config().MaxWorkers)
	assert.Equal(t, 1, c.ClampWorkers(8))
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.Equal(t, 8, c.ClampWorkers(8))
	require.NoError(t, c.AcquireWorkers(context.Background(), 8))
	c.ReleaseWorkers(8)
	assert.True(t, c.TryAcquireMemory(1<<40))
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20))
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestRateLimitedWriter_ChunksLargeWrites(t *testing.T) {
	// Burst of 16 bytes; a 40 byte write must be split rather than rejected.
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	c.ioLimiter.SetBurst(16)

	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)

	data := []byte(strings.Repeat("x", 40))
	n, err := w.Write(data)
	require.NoError(t, err)
	assert.Equal(t, 40, n)
	assert.Equal(t, data, buf.Bytes())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	r := NewRateLimitedReader(context.Background(), strings.NewReader("1 2 3"), c)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, "1 2 3", buf.String())
}

func TestRateLimitedWriter_Canceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)
	_, err := w.Write([]byte("x"))
	assert.Error(t, err)
}
