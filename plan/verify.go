package plan

import (
	"github.com/wippyai/flatlayout/accessor"
	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
	"github.com/wippyai/flatlayout/wire"
)

// VerifyContract checks a Set against the wire contract: static offsets are
// naturally aligned and stay inside their struct, struct sizes are a
// multiple of their alignment, vtable entries follow the slot numbering,
// union fields sit right after their tag field, write order covers every
// live slot once, and the identifier has the fixed length.
func VerifyContract(set *Set) error {
	if id := set.fileIdentifier; id != "" && len(id) != wire.FileIdentifierLength {
		return errors.Contract([]string{"file_identifier"}, "identifier %q is not %d bytes", id, wire.FileIdentifierLength)
	}
	for _, tp := range set.Types() {
		var err error
		if tp.Fixed {
			err = verifyStruct(tp)
		} else {
			err = verifyTable(tp)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func naturalAlign(p *accessor.Plan) uint32 {
	switch p.Strategy {
	case accessor.DirectScalar, accessor.DefaultedScalar:
		return p.Base.Size()
	case accessor.FixedStruct:
		return p.ElemAlign
	}
	return wire.SizeUOffset
}

func verifyStruct(tp *TypePlan) error {
	l := tp.Layout
	if l.Align == 0 || !wire.IsPowerOfTwo(l.Align) {
		return errors.Contract([]string{tp.Name}, "alignment %d is not a power of two", l.Align)
	}
	if l.Size%l.Align != 0 {
		return errors.Contract([]string{tp.Name}, "size %d is not a multiple of alignment %d", l.Size, l.Align)
	}
	end := uint32(0)
	for i, p := range tp.Accessors {
		path := []string{tp.Name, p.Field}
		if p.Addressing != accessor.Static {
			return errors.Contract(path, "struct field is not statically addressed")
		}
		align := naturalAlign(p)
		if align > l.Align || p.Offset%align != 0 {
			return errors.Contract(path, "offset %d violates alignment %d", p.Offset, align)
		}
		if i > 0 && p.Offset < end {
			return errors.Contract(path, "offset %d overlaps the previous field ending at %d", p.Offset, end)
		}
		end = p.Offset + p.Size
		if end > l.Size {
			return errors.Contract(path, "field ends at %d past struct size %d", end, l.Size)
		}
	}
	return nil
}

func verifyTable(tp *TypePlan) error {
	l := tp.Layout
	if l.SlotCount != len(tp.Accessors) {
		return errors.Contract([]string{tp.Name}, "%d slots for %d fields", l.SlotCount, len(tp.Accessors))
	}
	if l.VTableSize != wire.VTableSize(l.SlotCount) {
		return errors.Contract([]string{tp.Name}, "vtable size %d for %d slots", l.VTableSize, l.SlotCount)
	}

	for i, p := range tp.Accessors {
		path := []string{tp.Name, p.Field}
		if p.Addressing != accessor.VTable {
			return errors.Contract(path, "table field is not addressed through the vtable")
		}
		if int(p.Slot) != i {
			return errors.Contract(path, "slot %d at declaration index %d", p.Slot, i)
		}
		if p.VTableOffset != wire.VTableOffset(p.Slot) {
			return errors.Contract(path, "vtable offset %d for slot %d", p.VTableOffset, p.Slot)
		}
		if p.Strategy == accessor.UnionField || p.Strategy == accessor.VectorOfUnion {
			if err := verifyCompanion(tp, p); err != nil {
				return err
			}
		}
	}

	seen := make(map[uint16]bool, l.SlotCount)
	for _, slot := range flattenGroups(l) {
		if int(slot) >= l.SlotCount || seen[slot] {
			return errors.Contract([]string{tp.Name}, "write order repeats or invents slot %d", slot)
		}
		if tp.Accessors[slot].Deprecated {
			return errors.Contract([]string{tp.Name}, "write order includes deprecated slot %d", slot)
		}
		seen[slot] = true
	}
	for _, p := range tp.Accessors {
		if !p.Deprecated && !seen[p.Slot] {
			return errors.Contract([]string{tp.Name, p.Field}, "slot %d missing from write order", p.Slot)
		}
	}
	return nil
}

func verifyCompanion(tp *TypePlan, p *accessor.Plan) error {
	path := []string{tp.Name, p.Field}
	if p.CompanionSlot+1 != p.Slot {
		return errors.Contract(path, "tag field at slot %d, union at %d", p.CompanionSlot, p.Slot)
	}
	tag := tp.Accessors[p.CompanionSlot]
	want := accessor.DefaultedScalar
	if p.Strategy == accessor.VectorOfUnion {
		want = accessor.VectorOfScalar
	}
	if tag.Strategy != want || tag.Base != schema.Uint8 {
		return errors.Contract(path, "tag field %s is not a ubyte %s", tag.Field, want)
	}
	return nil
}

func flattenGroups(l LayoutPlan) []uint16 {
	var out []uint16
	for _, g := range l.WriteGroups {
		out = append(out, g.Slots...)
	}
	return out
}
