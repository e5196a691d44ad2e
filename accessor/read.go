package accessor

import (
	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/wire"
)

// locate returns the buffer position of p's value inside the object at
// obj, or false when a table field is absent.
func locate(p *Plan, buf wire.Buffer, obj uint32) (uint32, bool, error) {
	switch p.Addressing {
	case Static:
		return obj + p.Offset, true, nil
	case VTable:
		t := wire.Table{Buf: buf, Pos: obj}
		off, err := t.Offset(p.VTableOffset)
		if err != nil || off == 0 {
			return 0, false, err
		}
		return obj + uint32(off), true, nil
	}
	return 0, false, errors.New(errors.PhaseRead, errors.KindInvalidInput).
		Path(p.Owner, p.Field).
		Detail("plan has no addressing").
		Build()
}

func wrongStrategy(phase errors.Phase, p *Plan, op string) error {
	return errors.New(phase, errors.KindTypeMismatch).
		Path(p.Owner, p.Field).
		Type(p.Strategy.String()).
		Detail("%s does not apply", op).
		Build()
}

// ReadScalar reads a scalar field of the struct or table at obj. An absent
// table field yields its default and false.
func ReadScalar(p *Plan, buf wire.Buffer, obj uint32) (Value, bool, error) {
	if !p.Strategy.IsScalar() {
		return Value{}, false, wrongStrategy(errors.PhaseRead, p, "ReadScalar")
	}
	pos, ok, err := locate(p, buf, obj)
	if err != nil {
		return Value{}, false, err
	}
	if !ok {
		return Value{Bits: p.Default.Bits, Carrier: p.Carrier}, false, nil
	}
	raw, err := buf.ReadRaw(pos, p.Base.Size())
	if err != nil {
		return Value{}, false, err
	}
	return decode(raw, p.Base), true, nil
}

// ReadString reads a string field. Absent strings yield false.
func ReadString(p *Plan, buf wire.Buffer, obj uint32) (string, bool, error) {
	if p.Strategy != StringIndirect {
		return "", false, wrongStrategy(errors.PhaseRead, p, "ReadString")
	}
	pos, ok, err := locate(p, buf, obj)
	if err != nil || !ok {
		return "", false, err
	}
	s, err := buf.StringAt(pos)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// ReadStruct returns the inline struct stored in a struct or table field.
func ReadStruct(p *Plan, buf wire.Buffer, obj uint32) (wire.Struct, bool, error) {
	if p.Strategy != FixedStruct {
		return wire.Struct{}, false, wrongStrategy(errors.PhaseRead, p, "ReadStruct")
	}
	pos, ok, err := locate(p, buf, obj)
	if err != nil || !ok {
		return wire.Struct{}, false, err
	}
	return wire.Struct{Buf: buf, Pos: pos}, true, nil
}

// ReadTable follows a table reference.
func ReadTable(p *Plan, buf wire.Buffer, obj uint32) (wire.Table, bool, error) {
	if p.Strategy != IndirectStruct {
		return wire.Table{}, false, wrongStrategy(errors.PhaseRead, p, "ReadTable")
	}
	pos, ok, err := locate(p, buf, obj)
	if err != nil || !ok {
		return wire.Table{}, false, err
	}
	target, err := buf.Deref(pos)
	if err != nil {
		return wire.Table{}, false, err
	}
	return wire.Table{Buf: buf, Pos: target}, true, nil
}

// ReadVector returns the vector stored in any vector field.
func ReadVector(p *Plan, buf wire.Buffer, obj uint32) (wire.Vector, bool, error) {
	if !p.Strategy.IsVector() {
		return wire.Vector{}, false, wrongStrategy(errors.PhaseRead, p, "ReadVector")
	}
	pos, ok, err := locate(p, buf, obj)
	if err != nil || !ok {
		return wire.Vector{}, false, err
	}
	vec, err := buf.VectorAt(pos)
	if err != nil {
		return wire.Vector{}, false, err
	}
	return vec, true, nil
}

// ReadElem reads element i of a vector of scalars.
func ReadElem(p *Plan, vec wire.Vector, i uint32) (Value, error) {
	if p.Strategy != VectorOfScalar {
		return Value{}, wrongStrategy(errors.PhaseRead, p, "ReadElem")
	}
	pos, err := vec.At(i, p.ElemSize)
	if err != nil {
		return Value{}, err
	}
	raw, err := vec.Buf.ReadRaw(pos, p.ElemSize)
	if err != nil {
		return Value{}, err
	}
	return decode(raw, p.Base), nil
}

// ReadUnion reads the tag from the companion field and positions the
// member value. Tag 0 (NONE) and an absent value yield false.
func ReadUnion(p *Plan, buf wire.Buffer, obj uint32) (uint8, wire.Table, bool, error) {
	if p.Strategy != UnionField {
		return 0, wire.Table{}, false, wrongStrategy(errors.PhaseRead, p, "ReadUnion")
	}
	owner := wire.Table{Buf: buf, Pos: obj}
	tagPos, ok, err := owner.Field(p.CompanionSlot)
	if err != nil || !ok {
		return 0, wire.Table{}, false, err
	}
	tag, err := buf.U8(tagPos)
	if err != nil || tag == 0 {
		return 0, wire.Table{}, false, err
	}
	pos, ok, err := locate(p, buf, obj)
	if err != nil || !ok {
		return tag, wire.Table{}, false, err
	}
	target, err := buf.Deref(pos)
	if err != nil {
		return tag, wire.Table{}, false, err
	}
	return tag, wire.Table{Buf: buf, Pos: target}, true, nil
}

// ReadUnionVector returns the tag vector and the value vector of a vector
// of unions. Element i of values is meaningful only when tag i is non-zero.
func ReadUnionVector(p *Plan, buf wire.Buffer, obj uint32) (tags, values wire.Vector, ok bool, err error) {
	if p.Strategy != VectorOfUnion {
		return wire.Vector{}, wire.Vector{}, false, wrongStrategy(errors.PhaseRead, p, "ReadUnionVector")
	}
	owner := wire.Table{Buf: buf, Pos: obj}
	tagPos, ok, err := owner.Field(p.CompanionSlot)
	if err != nil || !ok {
		return wire.Vector{}, wire.Vector{}, false, err
	}
	if tags, err = buf.VectorAt(tagPos); err != nil {
		return wire.Vector{}, wire.Vector{}, false, err
	}
	pos, ok, err := locate(p, buf, obj)
	if err != nil || !ok {
		return wire.Vector{}, wire.Vector{}, false, err
	}
	if values, err = buf.VectorAt(pos); err != nil {
		return wire.Vector{}, wire.Vector{}, false, err
	}
	return tags, values, true, nil
}

// ReadNested returns the nested buffer stored in a [ubyte] field. Its root
// is read with Root on the returned buffer.
func ReadNested(p *Plan, buf wire.Buffer, obj uint32) (wire.Buffer, bool, error) {
	if p.Strategy != NestedBuffer {
		return wire.Buffer{}, false, wrongStrategy(errors.PhaseRead, p, "ReadNested")
	}
	vec, ok, err := ReadVector(p, buf, obj)
	if err != nil || !ok {
		return wire.Buffer{}, false, err
	}
	return buf.Sub(vec.Start), true, nil
}
