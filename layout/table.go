package layout

import (
	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
	"github.com/wippyai/flatlayout/wire"
)

// SizeClasses are the write-order groups used when a table sorts by size,
// widest first.
var SizeClasses = []uint32{8, 4, 2, 1}

// Slot is one vtable entry of a table.
type Slot struct {
	Field        *schema.Field
	Name         string
	InlineSize   uint32
	Align        uint32
	Index        uint16
	VTableOffset uint16
	Deprecated   bool
}

// WriteGroup lists the slots written together, in emission order.
type WriteGroup struct {
	Slots []uint16
	// Class is the inline size shared by the group, 0 when unsorted.
	Class uint32
}

// TableLayout holds the slot numbering and the write order of a table.
type TableLayout struct {
	Name        string
	Slots       []Slot
	WriteGroups []WriteGroup
	VTableSize  uint16
	SortBySize  bool
}

// WriteOrder flattens WriteGroups into the sequence of slots to emit.
func (l *TableLayout) WriteOrder() []uint16 {
	var out []uint16
	for _, g := range l.WriteGroups {
		out = append(out, g.Slots...)
	}
	return out
}

// Slot returns the slot of the named field.
func (l *TableLayout) Slot(name string) (Slot, bool) {
	for _, s := range l.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// Table computes slots and write order for the table called name.
func (r *Resolver) Table(name string) (*TableLayout, error) {
	if cached, ok := r.tables[name]; ok {
		return cached, nil
	}

	def, ok := r.model.Struct(name)
	if !ok {
		return nil, errors.UnknownType(errors.PhaseLayout, nil, name)
	}
	if def.Fixed {
		return nil, errors.TypeMismatch(errors.PhaseLayout, []string{name}, name, "fixed struct has no vtable")
	}

	tl := &TableLayout{
		Name:       name,
		Slots:      make([]Slot, len(def.Fields)),
		VTableSize: wire.VTableSize(len(def.Fields)),
		SortBySize: def.SortBySize,
	}
	for i, f := range def.Fields {
		size, align, err := r.InlineSize(f.Type)
		if err != nil {
			return nil, err
		}
		slot := uint16(i)
		tl.Slots[i] = Slot{
			Field:        f,
			Name:         f.Name,
			InlineSize:   size,
			Align:        align,
			Index:        slot,
			VTableOffset: wire.VTableOffset(slot),
			Deprecated:   f.Deprecated,
		}
	}
	tl.WriteGroups = writeGroups(tl.Slots, def.SortBySize)

	r.tables[name] = tl
	return tl, nil
}

// sizeClass buckets a slot for size-sorted writing. Scalars use their
// width, references the uoffset width, structs their alignment capped at
// the widest class.
func sizeClass(s Slot) uint32 {
	if _, ok := s.Field.Type.(schema.StructRef); ok {
		return min(s.Align, SizeClasses[0])
	}
	return s.InlineSize
}

func writeGroups(slots []Slot, sortBySize bool) []WriteGroup {
	if !sortBySize {
		g := WriteGroup{}
		for i := len(slots) - 1; i >= 0; i-- {
			if !slots[i].Deprecated {
				g.Slots = append(g.Slots, slots[i].Index)
			}
		}
		return []WriteGroup{g}
	}

	groups := make([]WriteGroup, 0, len(SizeClasses))
	for _, class := range SizeClasses {
		g := WriteGroup{Class: class}
		for i := len(slots) - 1; i >= 0; i-- {
			if !slots[i].Deprecated && sizeClass(slots[i]) == class {
				g.Slots = append(g.Slots, slots[i].Index)
			}
		}
		if len(g.Slots) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}
