package vecbuf

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/hupe1980/vecbuf/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	b, err := New[float64](100, WithMetricsCollector(metrics))
	require.NoError(t, err)

	b.FillConstant(1)
	require.Error(t, b.FillRandom(2, 1))
	for range 3 {
		_, err := b.ParallelMax(context.Background(), 4)
		require.NoError(t, err)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.FillCount)
	assert.Equal(t, int64(1), stats.FillErrors)
	assert.Equal(t, int64(3), stats.ReduceCount)
	assert.Equal(t, int64(0), stats.ReduceErrors)
	assert.Equal(t, int64(12), metrics.ReduceWorkers.Load())
	assert.GreaterOrEqual(t, stats.ReduceAvgNanos, int64(0))
}

func TestNilOptionsFallBack(t *testing.T) {
	b, err := New[int](2, WithMetricsCollector(nil), WithLogger(nil), WithSeeder(nil), WithFileSystem(nil), nil)
	require.NoError(t, err)

	require.NoError(t, b.FillRandom(0, 10))
	_, err = b.Min()
	require.NoError(t, err)
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		lines = append(lines, m)
	}
	return lines
}

func TestLogger(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b, err := New[int](4, WithLogger(logger))
	require.NoError(t, err)

	_, err = b.Min()
	require.ErrorIs(t, err, ErrUninitialized)

	b.FillConstant(3)
	_, err = b.ParallelMin(ctx, 2)
	require.NoError(t, err)

	path := testutil.WriteText(t, "short.txt", "1 2")
	require.NoError(t, b.Import(ctx, path))

	lines := logLines(t, &out)
	require.Len(t, lines, 4)

	assert.Equal(t, "reduction failed", lines[0]["msg"])
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "min", lines[0]["op"])
	assert.EqualValues(t, 4, lines[0]["size"])

	assert.Equal(t, "fill completed", lines[1]["msg"])
	assert.Equal(t, "constant", lines[1]["kind"])

	assert.Equal(t, "reduction completed", lines[2]["msg"])
	assert.EqualValues(t, 2, lines[2]["workers"])

	assert.Equal(t, "import read fewer values than buffer size", lines[3]["msg"])
	assert.Equal(t, "WARN", lines[3]["level"])
	assert.EqualValues(t, 2, lines[3]["tokens"])
}

func TestLoggerLevelFilters(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelInfo}))

	b, err := New[int](4, WithLogger(logger))
	require.NoError(t, err)

	b.FillConstant(3)
	_, err = b.Max()
	require.NoError(t, err)

	assert.Empty(t, out.String())
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
