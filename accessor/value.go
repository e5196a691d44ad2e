package accessor

import (
	"math"
	"strconv"

	"github.com/wippyai/flatlayout/schema"
)

// Value is a scalar held in its carrier type. Bits are the carrier's two's
// complement or IEEE bits, already masked.
type Value struct {
	Bits    uint64
	Carrier schema.BaseType
}

// Int builds a Value from a signed integer.
func Int(v int64) Value { return Value{Bits: uint64(v), Carrier: schema.Int64} }

// Uint builds a Value from an unsigned integer.
func Uint(v uint64) Value { return Value{Bits: v, Carrier: schema.Uint64} }

// Float builds a Value from a float.
func Float(v float64) Value { return Value{Bits: math.Float64bits(v), Carrier: schema.Float64} }

// Bool builds a Value from a bool.
func Bool(v bool) Value {
	if v {
		return Value{Bits: 1, Carrier: schema.Bool}
	}
	return Value{Carrier: schema.Bool}
}

func (v Value) Int() int64 {
	if v.Carrier.IsFloat() {
		return int64(v.Float())
	}
	return int64(v.Bits)
}

func (v Value) Uint() uint64 {
	if v.Carrier.IsFloat() {
		return uint64(v.Float())
	}
	return v.Bits
}

func (v Value) Float() float64 {
	switch v.Carrier {
	case schema.Float32:
		return float64(math.Float32frombits(uint32(v.Bits)))
	case schema.Float64:
		return math.Float64frombits(v.Bits)
	case schema.Uint64:
		return float64(v.Bits)
	}
	return float64(int64(v.Bits))
}

func (v Value) Bool() bool {
	return v.Bits != 0
}

func (v Value) String() string {
	switch {
	case v.Carrier == schema.Bool:
		return strconv.FormatBool(v.Bool())
	case v.Carrier.IsFloat():
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case v.Carrier == schema.Uint64:
		return strconv.FormatUint(v.Bits, 10)
	}
	return strconv.FormatInt(int64(v.Bits), 10)
}

// signExtend widens the low bits of raw as a signed value.
func signExtend(raw uint64, bits uint) uint64 {
	if bits >= 64 {
		return raw
	}
	shift := 64 - bits
	return uint64(int64(raw<<shift) >> shift)
}

// decode turns a raw little-endian read of base into a carrier Value.
func decode(raw uint64, base schema.BaseType) Value {
	carrier, mask := Carrier(base)
	switch {
	case base == schema.Bool:
		return Value{Bits: raw & 0xFF, Carrier: carrier}
	case base.IsFloat():
		return Value{Bits: raw, Carrier: carrier}
	}
	bits := signExtend(raw, base.Bits())
	if mask != 0 {
		bits &= mask
	}
	return Value{Bits: bits, Carrier: carrier}
}

// encode converts v to the raw storage bits of base.
func encode(v Value, base schema.BaseType) uint64 {
	switch base {
	case schema.Bool:
		if v.Carrier.IsFloat() {
			if v.Float() != 0 {
				return 1
			}
			return 0
		}
		if v.Bits != 0 {
			return 1
		}
		return 0
	case schema.Float32:
		return uint64(math.Float32bits(float32(v.Float())))
	case schema.Float64:
		return math.Float64bits(v.Float())
	}
	if v.Carrier.IsFloat() {
		if base.IsUnsigned() {
			return v.Uint()
		}
		return uint64(v.Int())
	}
	return v.Bits
}
