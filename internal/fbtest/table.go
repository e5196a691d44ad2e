package fbtest

import "encoding/binary"

type field struct {
	data  []byte
	align uint32
	slot  uint16
}

// Table collects the fields of one table until End lays it out.
type Table struct {
	b      *Builder
	fields []field
	slots  int
}

// Table starts a table. Fields are laid out in the order they are added.
func (b *Builder) Table() *Table {
	return &Table{b: b}
}

// Slots forces the vtable to cover at least n slots even when the trailing
// ones are never written.
func (t *Table) Slots(n int) *Table {
	if n > t.slots {
		t.slots = n
	}
	return t
}

func (t *Table) add(slot uint16, data []byte, align uint32) *Table {
	t.fields = append(t.fields, field{slot: slot, data: data, align: align})
	return t.Slots(int(slot) + 1)
}

// Scalar stores a scalar of size bytes in slot.
func (t *Table) Scalar(slot uint16, size uint32, bits uint64) *Table {
	return t.add(slot, LE(size, bits), size)
}

// Struct stores an inline struct image in slot.
func (t *Table) Struct(slot uint16, data Struct, align uint32) *Table {
	return t.add(slot, data, align)
}

// Ref reserves a reference placeholder in slot; link it after End.
func (t *Table) Ref(slot uint16) *Table {
	return t.add(slot, make([]byte, 4), 4)
}

// Written describes a laid out table.
type Written struct {
	fields map[uint16]uint32
	Pos    uint32
	VTable uint32
}

// Field returns the buffer position of the value stored in slot.
func (w Written) Field(slot uint16) uint32 {
	pos, ok := w.fields[slot]
	if !ok {
		panic("fbtest: slot was not written")
	}
	return pos
}

// End writes the vtable followed by the table.
func (t *Table) End() Written {
	return t.end(0, false)
}

// EndShared writes only the table and points it at an existing vtable.
// The caller guarantees the field layout matches.
func (t *Table) EndShared(vtable uint32) Written {
	return t.end(vtable, true)
}

func (t *Table) end(vtable uint32, shared bool) Written {
	b := t.b

	offsets := make([]uint32, len(t.fields))
	inline := uint32(4)
	maxAlign := uint32(4)
	for i, f := range t.fields {
		inline = alignTo(inline, f.align)
		offsets[i] = inline
		inline += uint32(len(f.data))
		if f.align > maxAlign {
			maxAlign = f.align
		}
	}

	if !shared {
		b.Align(2)
		vtable = b.Len()
		entries := make([]uint16, t.slots)
		for i, f := range t.fields {
			entries[f.slot] = uint16(offsets[i])
		}
		b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(4+2*t.slots))
		b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(inline))
		for _, e := range entries {
			b.buf = binary.LittleEndian.AppendUint16(b.buf, e)
		}
	}

	b.Align(maxAlign)
	pos := b.Len()
	b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(int32(pos-vtable)))

	w := Written{Pos: pos, VTable: vtable, fields: make(map[uint16]uint32, len(t.fields))}
	for i, f := range t.fields {
		for b.Len() < pos+offsets[i] {
			b.buf = append(b.buf, 0)
		}
		w.fields[f.slot] = b.Len()
		b.buf = append(b.buf, f.data...)
	}
	return w
}

func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
