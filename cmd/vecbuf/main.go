// vecbuf fills a numeric buffer, compares sequential and parallel min/max
// scans and optionally exports or imports the content.
//
// Usage:
//
//	vecbuf [--config file] [--size n] [--type float64|float32|int64|int32]
//	       [--min lo] [--max hi] [--workers n]
//	       [--import path] [--export path] [--remote]
//
// With --remote, --import and --export name blobs in the store configured
// by the config file instead of local paths.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/hupe1980/vecbuf"
	"github.com/hupe1980/vecbuf/blobstore"
	"github.com/hupe1980/vecbuf/config"
)

type flags struct {
	configPath string
	size       int
	typ        string
	lo, hi     float64
	workers    int
	importPath string
	exportPath string
	remote     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var f flags

	flagSet := pflag.NewFlagSet("vecbuf", pflag.ContinueOnError)
	flagSet.StringVar(&f.configPath, "config", "", "YAML config file (default: $"+config.EnvVar+")")
	flagSet.IntVarP(&f.size, "size", "n", 1_000_000, "number of elements")
	flagSet.StringVarP(&f.typ, "type", "t", "float64", "element type: float64, float32, int64 or int32")
	flagSet.Float64Var(&f.lo, "min", -100, "lower bound of the random fill")
	flagSet.Float64Var(&f.hi, "max", 100, "upper bound of the random fill")
	flagSet.IntVarP(&f.workers, "workers", "w", 0, "workers for the parallel scan (default: from config)")
	flagSet.StringVar(&f.importPath, "import", "", "import values instead of filling randomly")
	flagSet.StringVar(&f.exportPath, "export", "", "export values after the scans")
	flagSet.BoolVar(&f.remote, "remote", false, "treat --import and --export as blob names in the configured store")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	if f.workers == 0 {
		f.workers = cfg.Workers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch f.typ {
	case "float64":
		return runTyped[float64](ctx, cfg, f, stdout)
	case "float32":
		return runTyped[float32](ctx, cfg, f, stdout)
	case "int64":
		return runTyped[int64](ctx, cfg, f, stdout)
	case "int32":
		return runTyped[int32](ctx, cfg, f, stdout)
	default:
		return fmt.Errorf("unsupported --type %q", f.typ)
	}
}

// convertBound converts a --min or --max value to T. Integer types reject
// fractional values and values outside the type's range.
func convertBound[T vecbuf.Number](name string, v float64) (T, error) {
	var limit float64
	switch any(T(0)).(type) {
	case int32:
		limit = 1 << 31
	case int64:
		limit = 1 << 63
	default:
		return T(v), nil
	}
	if v != math.Trunc(v) || v < -limit || v >= limit {
		return 0, fmt.Errorf("--%s %v is not a valid %T", name, v, T(0))
	}
	return T(v), nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func runTyped[T vecbuf.Number](ctx context.Context, cfg *config.Config, f flags, stdout io.Writer) error {
	buf, err := vecbuf.New[T](f.size, cfg.Options()...)
	if err != nil {
		return err
	}
	defer buf.Close()

	var store persister = localIO[T]{buf}
	if f.remote {
		s, err := cfg.OpenStore(ctx)
		if err != nil {
			return err
		}
		store = remoteIO[T]{buf: buf, store: s}
	}

	if f.importPath != "" {
		if err := store.load(ctx, f.importPath); err != nil {
			return err
		}
	} else {
		lo, err := convertBound[T]("min", f.lo)
		if err != nil {
			return err
		}
		hi, err := convertBound[T]("max", f.hi)
		if err != nil {
			return err
		}
		if err := buf.FillRandom(lo, hi); err != nil {
			return err
		}
	}

	seqMin, err := buf.Min()
	if err != nil {
		return err
	}
	seqMax, err := buf.Max()
	if err != nil {
		return err
	}
	printResult(stdout, "Minimum value", seqMin)
	printResult(stdout, "Maximum value", seqMax)

	parMin, err := buf.ParallelMin(ctx, f.workers)
	if err != nil {
		return err
	}
	parMax, err := buf.ParallelMax(ctx, f.workers)
	if err != nil {
		return err
	}
	printResult(stdout, "Parallel minimum value", parMin)
	printResult(stdout, "Parallel maximum value", parMax)

	if f.exportPath != "" {
		if err := store.save(ctx, f.exportPath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d values to %s\n", buf.Len(), f.exportPath)
	}
	return nil
}

func printResult[T vecbuf.Number](w io.Writer, description string, r vecbuf.Result[T]) {
	fmt.Fprintf(w, "%s: %v, Time: %.6f seconds, Workers: %d\n", description, r.Value, r.Elapsed.Seconds(), r.Workers)
}

// persister moves buffer content to and from a file or blob.
type persister interface {
	load(ctx context.Context, name string) error
	save(ctx context.Context, name string) error
}

type localIO[T vecbuf.Number] struct {
	buf *vecbuf.Buffer[T]
}

func (l localIO[T]) load(ctx context.Context, name string) error { return l.buf.Import(ctx, name) }
func (l localIO[T]) save(ctx context.Context, name string) error { return l.buf.Export(ctx, name) }

type remoteIO[T vecbuf.Number] struct {
	buf   *vecbuf.Buffer[T]
	store blobstore.BlobStore
}

func (r remoteIO[T]) load(ctx context.Context, name string) error {
	return r.buf.ImportFrom(ctx, r.store, name)
}

func (r remoteIO[T]) save(ctx context.Context, name string) error {
	return r.buf.ExportTo(ctx, r.store, name)
}
