package vecbuf

import (
	"log/slog"

	"github.com/hupe1980/vecbuf/codec"
	"github.com/hupe1980/vecbuf/internal/fs"
	"github.com/hupe1980/vecbuf/resource"
)

type options struct {
	codec            codec.Codec
	fs               fs.FileSystem
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
	seeder           Seeder
}

// Option configures a Buffer.
type Option func(*options)

// WithCodec fixes the stream codec used by Export, Import, ExportTo and
// ImportFrom.
//
// If nil is passed (the default), the codec is chosen per call from the
// file or blob name with codec.ForPath.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithFileSystem replaces the file system used by Export and Import.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

// WithResourceController shares memory, worker and IO limits between
// buffers.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	    MaxWorkers:       int64(runtime.NumCPU()),
//	})
//	a, _ := vecbuf.New[float64](1_000_000, vecbuf.WithResourceController(rc))
//	b, _ := vecbuf.New[float64](1_000_000, vecbuf.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures metrics collection for buffer operations.
// Pass nil to disable metrics collection.
//
// Example:
//
//	metrics := &vecbuf.BasicMetricsCollector{}
//	buf, _ := vecbuf.New[float64](n, vecbuf.WithMetricsCollector(metrics))
//	// ... use buf ...
//	stats := metrics.GetStats()
//	fmt.Printf("Reductions: %d, Avg latency: %dns\n", stats.ReduceCount, stats.ReduceAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecbuf.NewJSONLogger(slog.LevelInfo)
//	buf, _ := vecbuf.New[float64](n, vecbuf.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSeeder replaces the entropy source used by FillRandom. Every call to
// FillRandom asks the seeder for a fresh seed.
//
// Intended for reproducible tests; production code should keep the default
// non-deterministic seeder.
func WithSeeder(s Seeder) Option {
	return func(o *options) {
		if s == nil {
			s = CryptoSeeder
		}
		o.seeder = s
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		fs:               fs.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		seeder:           CryptoSeeder,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) codecFor(name string) codec.Codec {
	if o.codec != nil {
		return o.codec
	}
	return codec.ForPath(name)
}
