package wire

import (
	"github.com/wippyai/flatlayout"
	"github.com/wippyai/flatlayout/errors"
)

// Buffer is a flat buffer stored in Mem starting at Base. Positions taken
// and returned by its methods are relative to Base.
type Buffer struct {
	Mem  flatlayout.Memory
	Base uint32
}

func New(mem flatlayout.Memory, base uint32) Buffer {
	return Buffer{Mem: mem, Base: base}
}

// FromBytes wraps a byte slice holding a single buffer.
func FromBytes(b []byte) Buffer {
	return Buffer{Mem: Bytes(b)}
}

// Sub returns the buffer whose first byte is at pos. Nested buffers use it.
func (b Buffer) Sub(pos uint32) Buffer {
	return Buffer{Mem: b.Mem, Base: b.Base + pos}
}

func (b Buffer) U8(pos uint32) (uint8, error)   { return b.Mem.ReadU8(b.Base + pos) }
func (b Buffer) U16(pos uint32) (uint16, error) { return b.Mem.ReadU16(b.Base + pos) }
func (b Buffer) U32(pos uint32) (uint32, error) { return b.Mem.ReadU32(b.Base + pos) }
func (b Buffer) U64(pos uint32) (uint64, error) { return b.Mem.ReadU64(b.Base + pos) }

func (b Buffer) I32(pos uint32) (int32, error) {
	v, err := b.U32(pos)
	return int32(v), err
}

// ReadRaw reads a size-byte little-endian value zero-extended to 64 bits.
func (b Buffer) ReadRaw(pos, size uint32) (uint64, error) {
	switch size {
	case 1:
		v, err := b.U8(pos)
		return uint64(v), err
	case 2:
		v, err := b.U16(pos)
		return uint64(v), err
	case 4:
		v, err := b.U32(pos)
		return uint64(v), err
	case 8:
		return b.U64(pos)
	}
	return 0, errors.New(errors.PhaseRead, errors.KindInvalidInput).
		Value(size).
		Detail("no scalar of %d bytes", size).
		Build()
}

// WriteRaw stores the low size bytes of v at pos.
func (b Buffer) WriteRaw(pos, size uint32, v uint64) error {
	switch size {
	case 1:
		return b.Mem.WriteU8(b.Base+pos, uint8(v))
	case 2:
		return b.Mem.WriteU16(b.Base+pos, uint16(v))
	case 4:
		return b.Mem.WriteU32(b.Base+pos, uint32(v))
	case 8:
		return b.Mem.WriteU64(b.Base+pos, v)
	}
	return errors.New(errors.PhaseMutate, errors.KindInvalidInput).
		Value(size).
		Detail("no scalar of %d bytes", size).
		Build()
}

// Deref follows the uoffset stored at pos.
func (b Buffer) Deref(pos uint32) (uint32, error) {
	off, err := b.U32(pos)
	if err != nil {
		return 0, err
	}
	return pos + off, nil
}

// Root returns the root table of a buffer without a size prefix.
func (b Buffer) Root() (Table, error) {
	return b.rootAt(0)
}

// SizePrefixedRoot returns the root table of a size-prefixed buffer.
func (b Buffer) SizePrefixedRoot() (Table, error) {
	return b.rootAt(SizePrefixLength)
}

func (b Buffer) rootAt(pos uint32) (Table, error) {
	root, err := b.Deref(pos)
	if err != nil {
		return Table{}, err
	}
	return Table{Buf: b, Pos: root}, nil
}

// SizePrefix reads the length header: the buffer size excluding the header.
func (b Buffer) SizePrefix() (uint32, error) {
	return b.U32(0)
}

// Identifier returns the 4 bytes following the root offset.
func (b Buffer) Identifier(sizePrefixed bool) (string, error) {
	pos := uint32(SizeUOffset)
	if sizePrefixed {
		pos += SizePrefixLength
	}
	raw, err := b.Mem.Read(b.Base+pos, FileIdentifierLength)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// HasIdentifier reports whether the buffer carries ident. Identifiers of
// the wrong length never match.
func (b Buffer) HasIdentifier(ident string, sizePrefixed bool) (bool, error) {
	if len(ident) != FileIdentifierLength {
		return false, nil
	}
	got, err := b.Identifier(sizePrefixed)
	if err != nil {
		return false, err
	}
	return got == ident, nil
}

// StringAt reads the string referenced by the uoffset at pos.
func (b Buffer) StringAt(pos uint32) (string, error) {
	start, err := b.Deref(pos)
	if err != nil {
		return "", err
	}
	n, err := b.U32(start)
	if err != nil {
		return "", err
	}
	raw, err := b.Mem.Read(b.Base+start+SizeUOffset, n)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// VectorAt returns the vector referenced by the uoffset at pos.
func (b Buffer) VectorAt(pos uint32) (Vector, error) {
	start, err := b.Deref(pos)
	if err != nil {
		return Vector{}, err
	}
	n, err := b.U32(start)
	if err != nil {
		return Vector{}, err
	}
	return Vector{Buf: b, Start: start + SizeUOffset, Len: n}, nil
}

// Table is a positioned table. The zero value is not usable; obtain one
// from Root, a parent table or a vector, or Reset an existing one.
type Table struct {
	Buf Buffer
	Pos uint32
}

// Reset re-points t so one Table can be reused across lookups.
func (t *Table) Reset(buf Buffer, pos uint32) {
	t.Buf = buf
	t.Pos = pos
}

// VTable returns the position of t's vtable.
func (t Table) VTable() (uint32, error) {
	so, err := t.Buf.I32(t.Pos)
	if err != nil {
		return 0, err
	}
	return uint32(int64(t.Pos) - int64(so)), nil
}

// Offset resolves a vtable entry to a field offset relative to t.Pos.
// Zero means the field is absent.
func (t Table) Offset(vtableOffset uint16) (uint16, error) {
	vt, err := t.VTable()
	if err != nil {
		return 0, err
	}
	size, err := t.Buf.U16(vt)
	if err != nil {
		return 0, err
	}
	if vtableOffset >= size {
		return 0, nil
	}
	return t.Buf.U16(vt + uint32(vtableOffset))
}

// Field returns the buffer position of slot's value, or false when absent.
func (t Table) Field(slot uint16) (uint32, bool, error) {
	off, err := t.Offset(VTableOffset(slot))
	if err != nil || off == 0 {
		return 0, false, err
	}
	return t.Pos + uint32(off), true, nil
}

// Indirect follows the uoffset stored off bytes into the table.
func (t Table) Indirect(off uint32) (uint32, error) {
	return t.Buf.Deref(t.Pos + off)
}

func (t Table) String(off uint32) (string, error) {
	return t.Buf.StringAt(t.Pos + off)
}

func (t Table) Vector(off uint32) (Vector, error) {
	return t.Buf.VectorAt(t.Pos + off)
}

// Union points dst at the union value stored off bytes into the table.
func (t Table) Union(dst *Table, off uint32) error {
	pos, err := t.Indirect(off)
	if err != nil {
		return err
	}
	dst.Reset(t.Buf, pos)
	return nil
}

// Struct returns the inline struct stored off bytes into the table.
func (t Table) Struct(off uint32) Struct {
	return Struct{Buf: t.Buf, Pos: t.Pos + off}
}

// Struct is a positioned fixed struct. Fields sit at static offsets.
type Struct struct {
	Buf Buffer
	Pos uint32
}

// Field returns the buffer position of the field at a static offset.
func (s Struct) Field(offset uint32) uint32 {
	return s.Pos + offset
}

// Vector is a positioned vector: Len elements starting at Start.
type Vector struct {
	Buf   Buffer
	Start uint32
	Len   uint32
}

// At returns the position of element i of elemSize bytes.
func (v Vector) At(i, elemSize uint32) (uint32, error) {
	if i >= v.Len {
		return 0, errors.OutOfBounds(errors.PhaseRead, nil, int(i), int(v.Len))
	}
	return v.Start + i*elemSize, nil
}

// Deref follows the uoffset stored as element i.
func (v Vector) Deref(i uint32) (uint32, error) {
	pos, err := v.At(i, SizeUOffset)
	if err != nil {
		return 0, err
	}
	return v.Buf.Deref(pos)
}

// Table points dst at the table referenced by element i.
func (v Vector) Table(dst *Table, i uint32) error {
	pos, err := v.Deref(i)
	if err != nil {
		return err
	}
	dst.Reset(v.Buf, pos)
	return nil
}

// String reads the string referenced by element i.
func (v Vector) String(i uint32) (string, error) {
	pos, err := v.At(i, SizeUOffset)
	if err != nil {
		return "", err
	}
	return v.Buf.StringAt(pos)
}

// Struct returns inline struct element i of elemSize bytes.
func (v Vector) Struct(i, elemSize uint32) (Struct, error) {
	pos, err := v.At(i, elemSize)
	if err != nil {
		return Struct{}, err
	}
	return Struct{Buf: v.Buf, Pos: pos}, nil
}

// Bytes returns the raw contents of a byte vector.
func (v Vector) Bytes() ([]byte, error) {
	return v.Buf.Mem.Read(v.Buf.Base+v.Start, v.Len)
}
