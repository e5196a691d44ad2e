package schema

import (
	"fmt"

	"github.com/wippyai/flatlayout/errors"
)

// BaseType is the storage type of a scalar.
type BaseType uint8

const (
	Bool BaseType = iota + 1
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var baseNames = [...]string{
	Bool:    "bool",
	Int8:    "byte",
	Uint8:   "ubyte",
	Int16:   "short",
	Uint16:  "ushort",
	Int32:   "int",
	Uint32:  "uint",
	Int64:   "long",
	Uint64:  "ulong",
	Float32: "float",
	Float64: "double",
}

var baseSizes = [...]uint32{
	Bool:    1,
	Int8:    1,
	Uint8:   1,
	Int16:   2,
	Uint16:  2,
	Int32:   4,
	Uint32:  4,
	Int64:   8,
	Uint64:  8,
	Float32: 4,
	Float64: 8,
}

func (b BaseType) String() string {
	if b > 0 && int(b) < len(baseNames) {
		return baseNames[b]
	}
	return "unknown"
}

// Valid reports whether b names a scalar storage type.
func (b BaseType) Valid() bool {
	return b >= Bool && b <= Float64
}

// Size returns the inline byte width, which is also the natural alignment.
func (b BaseType) Size() uint32 {
	if b.Valid() {
		return baseSizes[b]
	}
	return 0
}

// Bits returns the storage width in bits.
func (b BaseType) Bits() uint {
	return uint(b.Size()) * 8
}

func (b BaseType) IsFloat() bool {
	return b == Float32 || b == Float64
}

func (b BaseType) IsInteger() bool {
	return b >= Int8 && b <= Uint64
}

func (b BaseType) IsUnsigned() bool {
	switch b {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// ParseBaseType accepts the schema language names and their Go-style aliases.
func ParseBaseType(name string) (BaseType, bool) {
	switch name {
	case "bool":
		return Bool, true
	case "byte", "int8":
		return Int8, true
	case "ubyte", "uint8":
		return Uint8, true
	case "short", "int16":
		return Int16, true
	case "ushort", "uint16":
		return Uint16, true
	case "int", "int32":
		return Int32, true
	case "uint", "uint32":
		return Uint32, true
	case "long", "int64":
		return Int64, true
	case "ulong", "uint64":
		return Uint64, true
	case "float", "float32":
		return Float32, true
	case "double", "float64":
		return Float64, true
	}
	return 0, false
}

// MarshalText renders the schema language name.
func (b BaseType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts any name ParseBaseType does.
func (b *BaseType) UnmarshalText(text []byte) error {
	v, ok := ParseBaseType(string(text))
	if !ok {
		return errors.InvalidData(errors.PhaseExport, nil, fmt.Sprintf("unknown scalar type %q", text))
	}
	*b = v
	return nil
}
