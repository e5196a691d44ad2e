package accessor

import (
	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/layout"
	"github.com/wippyai/flatlayout/schema"
	"github.com/wippyai/flatlayout/wire"
)

// Mapper builds accessor plans. It visits each field type once; the visit
// fills the plan under construction. A Mapper is not safe for concurrent
// use; the plans it returns are.
type Mapper struct {
	resolver *layout.Resolver
	model    *schema.Model
	opts     schema.Options

	cur   *Plan
	field *schema.Field
	owner *schema.StructDef
	err   error
}

var (
	_ schema.Visitor = (*Mapper)(nil)
	_ schema.Visitor = (*elemVisitor)(nil)
)

// NewMapper maps fields of the resolver's model. opts decides mutability
// and nullability.
func NewMapper(r *layout.Resolver, opts schema.Options) *Mapper {
	return &Mapper{resolver: r, model: r.Model(), opts: opts}
}

// Map returns the plans for every field of the struct or table called
// name, in declaration order.
func (m *Mapper) Map(name string) ([]*Plan, error) {
	def, ok := m.model.Struct(name)
	if !ok {
		return nil, errors.UnknownType(errors.PhaseMap, nil, name)
	}
	if def.Fixed {
		return m.mapStruct(def)
	}
	return m.mapTable(def)
}

func (m *Mapper) mapStruct(def *schema.StructDef) ([]*Plan, error) {
	sl, err := m.resolver.Struct(def.Name)
	if err != nil {
		return nil, err
	}
	plans := make([]*Plan, 0, len(sl.Fields))
	for _, fl := range sl.Fields {
		p := &Plan{
			Owner:      def.Name,
			Field:      fl.Name,
			Addressing: Static,
			Offset:     fl.Offset,
			Slot:       fl.Field.Slot,
			Size:       fl.Size,
		}
		if err := m.visit(def, fl.Field, p); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (m *Mapper) mapTable(def *schema.StructDef) ([]*Plan, error) {
	tl, err := m.resolver.Table(def.Name)
	if err != nil {
		return nil, err
	}
	plans := make([]*Plan, 0, len(tl.Slots))
	for _, s := range tl.Slots {
		p := &Plan{
			Owner:        def.Name,
			Field:        s.Name,
			Addressing:   VTable,
			Slot:         s.Index,
			VTableOffset: s.VTableOffset,
			Size:         s.InlineSize,
			Required:     s.Field.Required,
			Deprecated:   s.Deprecated,
			Key:          s.Field.Key,
		}
		if err := m.visit(def, s.Field, p); err != nil {
			return nil, err
		}
		if m.opts.Nullable == schema.NullableAnnotations && !p.Strategy.IsScalar() &&
			p.Strategy != FixedStruct && !p.Required {
			p.Nullable = true
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (m *Mapper) visit(owner *schema.StructDef, f *schema.Field, p *Plan) error {
	m.owner, m.field, m.cur, m.err = owner, f, p, nil
	f.Type.Accept(m)
	if m.err != nil {
		return m.err
	}
	p.Mutable = m.opts.MutableBuffer && p.Strategy.Mutable()
	return nil
}

func (m *Mapper) path() []string {
	return []string{m.owner.Name, m.field.Name}
}

func (m *Mapper) scalar(base schema.BaseType, enum *schema.EnumDef) {
	p := m.cur
	if m.owner.Fixed {
		p.Strategy = DirectScalar
	} else {
		p.Strategy = DefaultedScalar
	}
	p.Base = base
	p.Carrier, p.Mask = Carrier(base)
	if m.owner.Fixed {
		return
	}
	d, err := parseDefault(m.path(), m.field.Default, base, enum)
	if err != nil {
		m.err = err
		return
	}
	p.Default = d
}

func (m *Mapper) VisitScalar(t schema.Scalar) {
	m.scalar(t.Base, nil)
}

func (m *Mapper) VisitEnum(t schema.EnumRef) {
	e, ok := m.model.Enum(t.Name)
	if !ok {
		m.err = errors.UnknownType(errors.PhaseMap, m.path(), t.Name)
		return
	}
	m.cur.Enum = t.Name
	m.scalar(e.Underlying, e)
}

func (m *Mapper) VisitString(schema.String) {
	m.cur.Strategy = StringIndirect
	m.cur.Indirect = true
}

func (m *Mapper) VisitStruct(t schema.StructRef) {
	sl, err := m.resolver.Struct(t.Name)
	if err != nil {
		m.err = err
		return
	}
	m.cur.Strategy = FixedStruct
	m.cur.Elem = t.Name
	m.cur.ElemSize = sl.Size
	m.cur.ElemAlign = sl.Align
}

func (m *Mapper) VisitTable(t schema.TableRef) {
	m.cur.Strategy = IndirectStruct
	m.cur.Elem = t.Name
	m.cur.Indirect = true
}

func (m *Mapper) VisitUnion(t schema.UnionRef) {
	m.cur.Strategy = UnionField
	m.cur.Elem = t.Name
	m.cur.Indirect = true
	m.cur.CompanionSlot = m.companion()
}

// companion returns the slot of the "<name>_type" field preceding a union.
func (m *Mapper) companion() uint16 {
	if m.field.Slot == 0 {
		m.err = errors.TypeMismatch(errors.PhaseMap, m.path(), m.field.Type.String(),
			"union field has no type field before it")
		return 0
	}
	return m.field.Slot - 1
}

// VisitVector classifies by element type. For vectors Indirect describes
// the elements: set when each element is an offset to its value.
func (m *Mapper) VisitVector(t schema.Vector) {
	t.Elem.Accept(&elemVisitor{m: m})
}

// elemVisitor classifies the element type of a vector field.
type elemVisitor struct {
	m *Mapper
}

func (v *elemVisitor) scalar(base schema.BaseType) {
	p := v.m.cur
	p.Strategy = VectorOfScalar
	p.Base = base
	p.Carrier, p.Mask = Carrier(base)
	p.ElemSize = base.Size()
	p.ElemAlign = base.Size()
	if root := v.m.field.NestedRoot; root != "" {
		p.Strategy = NestedBuffer
		p.Elem = root
	}
}

func (v *elemVisitor) VisitScalar(t schema.Scalar) {
	v.scalar(t.Base)
}

func (v *elemVisitor) VisitEnum(t schema.EnumRef) {
	e, ok := v.m.model.Enum(t.Name)
	if !ok {
		v.m.err = errors.UnknownType(errors.PhaseMap, v.m.path(), t.Name)
		return
	}
	v.m.cur.Enum = t.Name
	v.scalar(e.Underlying)
}

func (v *elemVisitor) VisitString(schema.String) {
	v.m.cur.Strategy = VectorOfString
	v.m.cur.Indirect = true
	v.m.cur.ElemSize = wire.SizeUOffset
	v.m.cur.ElemAlign = wire.SizeUOffset
}

func (v *elemVisitor) VisitStruct(t schema.StructRef) {
	sl, err := v.m.resolver.Struct(t.Name)
	if err != nil {
		v.m.err = err
		return
	}
	p := v.m.cur
	p.Strategy = VectorOfStruct
	p.Elem = t.Name
	p.ElemSize = sl.Size
	p.ElemAlign = sl.Align
}

func (v *elemVisitor) VisitTable(t schema.TableRef) {
	p := v.m.cur
	p.Strategy = VectorOfStruct
	p.Elem = t.Name
	p.Indirect = true
	p.ElemSize = wire.SizeUOffset
	p.ElemAlign = wire.SizeUOffset
}

func (v *elemVisitor) VisitUnion(t schema.UnionRef) {
	p := v.m.cur
	p.Strategy = VectorOfUnion
	p.Elem = t.Name
	p.Indirect = true
	p.ElemSize = wire.SizeUOffset
	p.ElemAlign = wire.SizeUOffset
	p.CompanionSlot = v.m.companion()
}

func (v *elemVisitor) VisitVector(t schema.Vector) {
	v.m.err = errors.Unsupported(errors.PhaseMap, "nested vector "+t.String())
}
