package vecbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrUninitialized is returned when content is read before any fill or import.
	ErrUninitialized = errors.New("buffer is not initialized")

	// ErrEmptyBuffer is returned when an extremum is requested over zero elements.
	ErrEmptyBuffer = errors.New("buffer is empty")

	// ErrInvalidRange is returned by FillRandom when lo > hi or a bound is not finite.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidWorkers is returned when fewer than one worker is requested.
	ErrInvalidWorkers = errors.New("workers must be positive")

	// ErrInvalidSize is returned when a buffer is constructed with a negative size.
	ErrInvalidSize = errors.New("size must not be negative")

	// ErrIndexOutOfRange is returned by At for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrMemoryLimit is returned when the resource controller cannot
	// reserve memory for a new buffer.
	ErrMemoryLimit = errors.New("memory limit exceeded")

	// ErrIO matches every *IOError via errors.Is.
	ErrIO = errors.New("i/o error")
)

// IOError reports a failed export or import.
//
// The underlying error can be accessed via errors.Unwrap.
type IOError struct {
	Op    string
	Path  string
	cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// Is makes errors.Is(err, ErrIO) true for any IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }

func ioError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, cause: err}
}
