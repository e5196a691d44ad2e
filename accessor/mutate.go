package accessor

import (
	"math"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
	"github.com/wippyai/flatlayout/wire"
)

func checkMutable(p *Plan) error {
	if !p.Strategy.Mutable() {
		return wrongStrategy(errors.PhaseMutate, p, "mutation")
	}
	if !p.Mutable {
		return errors.New(errors.PhaseMutate, errors.KindUnsupported).
			Path(p.Owner, p.Field).
			Detail("mutable buffers are disabled").
			Build()
	}
	return nil
}

// checkRange rejects values the field's storage type cannot hold, so a
// mutation never truncates.
func checkRange(p *Plan, v Value) error {
	if fits(v, p.Base) {
		return nil
	}
	return errors.New(errors.PhaseMutate, errors.KindTypeMismatch).
		Path(p.Owner, p.Field).
		Type(p.Base.String()).
		Value(v.String()).
		Detail("value %s does not fit %s", v, p.Base).
		Build()
}

func fits(v Value, base schema.BaseType) bool {
	switch {
	case base == schema.Bool:
		return true
	case base == schema.Float32:
		f := v.Float()
		return math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) <= math.MaxFloat32
	case base.IsFloat():
		return true
	}

	bits := int(base.Bits())
	switch {
	case v.Carrier.IsFloat():
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return false
		}
		if base.IsUnsigned() {
			return f >= 0 && f < math.Ldexp(1, bits)
		}
		return f >= -math.Ldexp(1, bits-1) && f < math.Ldexp(1, bits-1)
	case v.Carrier == schema.Uint64:
		if base.IsUnsigned() {
			return bits >= 64 || v.Bits < 1<<bits
		}
		return v.Bits < 1<<(bits-1)
	}
	return schema.FitsBase(v.Int(), base)
}

// Mutate overwrites a scalar field in place. It returns false without
// writing when the table field is absent: there is no room to store it.
// Struct fields always exist and always succeed.
func Mutate(p *Plan, buf wire.Buffer, obj uint32, v Value) (bool, error) {
	if err := checkMutable(p); err != nil {
		return false, err
	}
	if p.Strategy == VectorOfScalar {
		return false, wrongStrategy(errors.PhaseMutate, p, "Mutate on a vector, use MutateElem")
	}
	if err := checkRange(p, v); err != nil {
		return false, err
	}
	pos, ok, err := locate(p, buf, obj)
	if err != nil || !ok {
		return false, err
	}
	if err := buf.WriteRaw(pos, p.Base.Size(), encode(v, p.Base)); err != nil {
		return false, err
	}
	return true, nil
}

// MutateElem overwrites element i of a vector of scalars.
func MutateElem(p *Plan, vec wire.Vector, i uint32, v Value) (bool, error) {
	if err := checkMutable(p); err != nil {
		return false, err
	}
	if p.Strategy != VectorOfScalar {
		return false, wrongStrategy(errors.PhaseMutate, p, "MutateElem")
	}
	if err := checkRange(p, v); err != nil {
		return false, err
	}
	pos, err := vec.At(i, p.ElemSize)
	if err != nil {
		return false, err
	}
	if err := vec.Buf.WriteRaw(pos, p.ElemSize, encode(v, p.Base)); err != nil {
		return false, err
	}
	return true, nil
}
