package vecbuf

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    reduceHistogram *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordReduce(op string, workers int, d time.Duration, err error) {
//	    p.reduceHistogram.WithLabelValues(op).Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordFill is called after each FillConstant or FillRandom.
	RecordFill(count int, duration time.Duration, err error)

	// RecordReduce is called after each reduction. op names the reduction
	// ("min", "max", "sum", "select"), workers is the number actually used.
	RecordReduce(op string, workers int, duration time.Duration, err error)

	// RecordExport is called after each export with the bytes written.
	RecordExport(bytes int64, duration time.Duration, err error)

	// RecordImport is called after each import with the tokens applied.
	RecordImport(tokens int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFill(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordReduce(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordExport(int64, time.Duration, error)       {}
func (NoopMetricsCollector) RecordImport(int, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FillCount       atomic.Int64
	FillErrors      atomic.Int64
	ReduceCount     atomic.Int64
	ReduceErrors    atomic.Int64
	ReduceWorkers   atomic.Int64
	ReduceTotalNano atomic.Int64
	ExportCount     atomic.Int64
	ExportErrors    atomic.Int64
	ExportBytes     atomic.Int64
	ImportCount     atomic.Int64
	ImportErrors    atomic.Int64
	ImportTokens    atomic.Int64
}

// RecordFill implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFill(_ int, _ time.Duration, err error) {
	b.FillCount.Add(1)
	if err != nil {
		b.FillErrors.Add(1)
	}
}

// RecordReduce implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReduce(_ string, workers int, duration time.Duration, err error) {
	b.ReduceCount.Add(1)
	b.ReduceWorkers.Add(int64(workers))
	b.ReduceTotalNano.Add(duration.Nanoseconds())
	if err != nil {
		b.ReduceErrors.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(bytes int64, _ time.Duration, err error) {
	b.ExportCount.Add(1)
	b.ExportBytes.Add(bytes)
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(tokens int, _ time.Duration, err error) {
	b.ImportCount.Add(1)
	b.ImportTokens.Add(int64(tokens))
	if err != nil {
		b.ImportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FillCount:      b.FillCount.Load(),
		FillErrors:     b.FillErrors.Load(),
		ReduceCount:    b.ReduceCount.Load(),
		ReduceErrors:   b.ReduceErrors.Load(),
		ReduceAvgNanos: b.getAvgReduceNanos(),
		ExportCount:    b.ExportCount.Load(),
		ExportErrors:   b.ExportErrors.Load(),
		ExportBytes:    b.ExportBytes.Load(),
		ImportCount:    b.ImportCount.Load(),
		ImportErrors:   b.ImportErrors.Load(),
		ImportTokens:   b.ImportTokens.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgReduceNanos() int64 {
	count := b.ReduceCount.Load()
	if count == 0 {
		return 0
	}
	return b.ReduceTotalNano.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FillCount      int64
	FillErrors     int64
	ReduceCount    int64
	ReduceErrors   int64
	ReduceAvgNanos int64
	ExportCount    int64
	ExportErrors   int64
	ExportBytes    int64
	ImportCount    int64
	ImportErrors   int64
	ImportTokens   int64
}
