package layout

import (
	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
	"github.com/wippyai/flatlayout/wire"
)

// FieldLayout places one struct field.
type FieldLayout struct {
	Field *schema.Field
	// Struct is the nested layout when the field is itself a struct.
	Struct *StructLayout
	Name   string
	Offset uint32
	Size   uint32
	Align  uint32
	// Padding is the number of bytes inserted before the field.
	Padding uint32
}

// StructLayout is the wire image of a fixed struct.
type StructLayout struct {
	Name            string
	Fields          []FieldLayout
	Size            uint32
	Align           uint32
	TrailingPadding uint32
}

// PaddingAfter returns the bytes between field i and the next field, or the
// trailing padding for the last one.
func (l *StructLayout) PaddingAfter(i int) uint32 {
	if i+1 < len(l.Fields) {
		return l.Fields[i+1].Padding
	}
	return l.TrailingPadding
}

// Resolver computes and caches layouts for one model.
type Resolver struct {
	model     *schema.Model
	structs   map[string]*StructLayout
	tables    map[string]*TableLayout
	resolving map[string]bool
}

func NewResolver(model *schema.Model) *Resolver {
	return &Resolver{
		model:     model,
		structs:   make(map[string]*StructLayout),
		tables:    make(map[string]*TableLayout),
		resolving: make(map[string]bool),
	}
}

// Model returns the model being resolved.
func (r *Resolver) Model() *schema.Model {
	return r.model
}

// InlineSize returns how many bytes a value of t occupies where it is
// stored, and the alignment it needs. References of every kind are a single
// uoffset.
func (r *Resolver) InlineSize(t schema.Type) (size, align uint32, err error) {
	switch typ := t.(type) {
	case schema.Scalar:
		n := typ.Base.Size()
		return n, n, nil
	case schema.EnumRef:
		base := typ.Base
		if base == 0 {
			e, ok := r.model.Enum(typ.Name)
			if !ok {
				return 0, 0, errors.UnknownType(errors.PhaseLayout, nil, typ.Name)
			}
			base = e.Underlying
		}
		n := base.Size()
		return n, n, nil
	case schema.StructRef:
		sl, err := r.Struct(typ.Name)
		if err != nil {
			return 0, 0, err
		}
		return sl.Size, sl.Align, nil
	case schema.String, schema.TableRef, schema.Vector, schema.UnionRef:
		return wire.SizeUOffset, wire.SizeUOffset, nil
	}
	return 0, 0, errors.TypeMismatch(errors.PhaseLayout, nil, "<nil>", "field without a type")
}

// Struct lays out the fixed struct called name.
func (r *Resolver) Struct(name string) (*StructLayout, error) {
	if cached, ok := r.structs[name]; ok {
		return cached, nil
	}

	def, ok := r.model.Struct(name)
	if !ok {
		return nil, errors.UnknownType(errors.PhaseLayout, nil, name)
	}
	if !def.Fixed {
		return nil, errors.TypeMismatch(errors.PhaseLayout, []string{name}, name, "table has no fixed layout")
	}
	if r.resolving[name] {
		return nil, errors.StructCycle([]string{name, name})
	}
	r.resolving[name] = true
	defer delete(r.resolving, name)

	sl := &StructLayout{
		Name:   name,
		Fields: make([]FieldLayout, 0, len(def.Fields)),
	}
	maxAlign := uint32(1)
	offset := uint32(0)

	for _, f := range def.Fields {
		size, align, err := r.InlineSize(f.Type)
		if err != nil {
			return nil, err
		}

		fl := FieldLayout{
			Field:   f,
			Name:    f.Name,
			Size:    size,
			Align:   align,
			Padding: wire.Padding(offset, align),
		}
		if ref, ok := f.Type.(schema.StructRef); ok {
			fl.Struct = r.structs[ref.Name]
		}

		offset = wire.AlignTo(offset, align)
		fl.Offset = offset
		sl.Fields = append(sl.Fields, fl)

		if align > maxAlign {
			maxAlign = align
		}
		offset += size
	}

	if def.ForceAlign != 0 {
		if def.ForceAlign < maxAlign || !wire.IsPowerOfTwo(def.ForceAlign) {
			return nil, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
				Path(name).
				Value(def.ForceAlign).
				Detail("force_align %d must be a power of two no smaller than the natural alignment %d", def.ForceAlign, maxAlign).
				Build()
		}
		maxAlign = def.ForceAlign
	}

	sl.Align = maxAlign
	sl.Size = wire.AlignTo(offset, maxAlign)
	sl.TrailingPadding = sl.Size - offset

	if def.ByteSize != 0 && def.ByteSize != sl.Size {
		return nil, errors.New(errors.PhaseLayout, errors.KindSizeMismatch).
			Path(name).
			Value(def.ByteSize).
			Detail("declared byte size %d, computed %d", def.ByteSize, sl.Size).
			Build()
	}

	r.structs[name] = sl
	return sl, nil
}
