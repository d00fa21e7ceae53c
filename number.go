package vecbuf

import (
	"strconv"
	"unsafe"
)

// Number is the set of element types a Buffer can hold.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

type numberKind uint8

const (
	kindSigned numberKind = iota
	kindUnsigned
	kindFloat
)

// kindOf classifies T by arithmetic behavior rather than by type switch so
// that named types (e.g. type Celsius float64) are handled too.
func kindOf[T Number]() numberKind {
	var half T = 1
	half /= 2
	if half != 0 {
		return kindFloat
	}
	var z T
	if z-1 < z {
		return kindSigned
	}
	return kindUnsigned
}

func bitSize[T Number]() int {
	var z T
	return int(unsafe.Sizeof(z)) * 8
}

// isNaN reports whether v is a floating-point NaN.
func isNaN[T Number](v T) bool {
	return v != v
}

// isFinite reports whether v is neither NaN nor infinite. It is always true
// for integer types.
func isFinite[T Number](v T) bool {
	return v-v == 0
}

// numberFormat renders and parses T in the persisted text format.
type numberFormat[T Number] struct {
	kind numberKind
	bits int
}

func newNumberFormat[T Number]() numberFormat[T] {
	return numberFormat[T]{kind: kindOf[T](), bits: bitSize[T]()}
}

func (f numberFormat[T]) append(dst []byte, v T) []byte {
	switch f.kind {
	case kindFloat:
		return strconv.AppendFloat(dst, float64(v), 'g', -1, f.bits)
	case kindSigned:
		return strconv.AppendInt(dst, int64(v), 10)
	default:
		return strconv.AppendUint(dst, uint64(v), 10)
	}
}

func (f numberFormat[T]) parse(tok string) (T, error) {
	switch f.kind {
	case kindFloat:
		v, err := strconv.ParseFloat(tok, f.bits)
		return T(v), err
	case kindSigned:
		v, err := strconv.ParseInt(tok, 10, f.bits)
		return T(v), err
	default:
		v, err := strconv.ParseUint(tok, 10, f.bits)
		return T(v), err
	}
}
