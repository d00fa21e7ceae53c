// Package codec provides the stream encodings used for persisted buffers.
//
// The text format itself never changes; a codec only wraps the byte stream.
// Files written with one codec must be read back with the same codec.
package codec

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec wraps byte streams.
// Implementations must be safe for concurrent use.
type Codec interface {
	// NewWriter returns a writer encoding into w. Close flushes the encoder
	// but does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader returns a reader decoding from r. Close does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)
	Name() string
}

var (
	// Plain stores the text unchanged.
	Plain Codec = plainCodec{}
	// Zstd compresses with Zstandard.
	Zstd Codec = zstdCodec{}
	// LZ4 compresses with the LZ4 frame format.
	LZ4 Codec = lz4Codec{}

	// Default is the codec used when neither an option nor the file
	// extension selects one.
	Default = Plain
)

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "plain", "":
		return Plain, true
	case "zstd":
		return Zstd, true
	case "lz4":
		return LZ4, true
	default:
		return nil, false
	}
}

// ForPath selects a codec from the file extension: ".zst" and ".zstd" map to
// Zstd, ".lz4" to LZ4 and everything else to Default.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return Default
	}
}

type plainCodec struct{}

func (plainCodec) Name() string { return "plain" }

func (plainCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (plainCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstd" }

func (zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

type lz4Codec struct{}

func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (lz4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
