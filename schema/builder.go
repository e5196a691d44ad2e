package schema

import (
	"sort"
	"strings"

	"github.com/wippyai/flatlayout/errors"
)

// FileIdentifierLength is the only legal length of a buffer identifier.
const FileIdentifierLength = 4

// maxSlots keeps every vtable offset (4 + 2*slot) representable in a uint16.
const maxSlots = (1<<16)/2 - 2

// Builder collects definitions and freezes them into a Model. A Builder has a
// single writer; once Freeze succeeds it rejects further changes.
type Builder struct {
	structs  []*StructDef
	enums    []*EnumDef
	unions   []*UnionDef
	root     string
	ident    string
	ext      string
	options  Options
	frozen   bool
	declared map[string]bool
}

func NewBuilder() *Builder {
	return &Builder{declared: make(map[string]bool)}
}

func (b *Builder) declare(name string) error {
	if b.frozen {
		return errors.New(errors.PhaseResolve, errors.KindFrozen).
			Type(name).
			Detail("builder already frozen").
			Build()
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseResolve, "definition without a name")
	}
	if b.declared[name] {
		return errors.New(errors.PhaseResolve, errors.KindDuplicateName).
			Type(name).
			Detail("%q declared twice", name).
			Build()
	}
	b.declared[name] = true
	return nil
}

// AddStruct declares a fixed struct.
func (b *Builder) AddStruct(def *StructDef) error {
	if err := b.declare(def.Name); err != nil {
		return err
	}
	def.Fixed = true
	b.structs = append(b.structs, def)
	return nil
}

// AddTable declares a table.
func (b *Builder) AddTable(def *StructDef) error {
	if err := b.declare(def.Name); err != nil {
		return err
	}
	def.Fixed = false
	b.structs = append(b.structs, def)
	return nil
}

func (b *Builder) AddEnum(def *EnumDef) error {
	if err := b.declare(def.Name); err != nil {
		return err
	}
	b.enums = append(b.enums, def)
	return nil
}

func (b *Builder) AddUnion(def *UnionDef) error {
	if err := b.declare(def.Name); err != nil {
		return err
	}
	b.unions = append(b.unions, def)
	return nil
}

func (b *Builder) SetRoot(name string)         { b.root = name }
func (b *Builder) SetFileIdentifier(id string) { b.ident = id }
func (b *Builder) SetFileExtension(ext string) { b.ext = ext }
func (b *Builder) SetOptions(opts Options)     { b.options = opts }

// Freeze validates the collected definitions and returns the immutable model.
// Definitions are copied, so later changes to the values passed to the
// builder do not leak into the model.
func (b *Builder) Freeze() (*Model, error) {
	if b.frozen {
		return nil, errors.New(errors.PhaseResolve, errors.KindFrozen).
			Detail("builder already frozen").
			Build()
	}

	m := &Model{
		structs:        make(map[string]*StructDef, len(b.structs)),
		enums:          make(map[string]*EnumDef, len(b.enums)+len(b.unions)),
		unions:         make(map[string]*UnionDef, len(b.unions)),
		root:           b.root,
		fileIdentifier: b.ident,
		fileExtension:  b.ext,
		options:        b.options,
	}

	for _, e := range b.enums {
		ec, err := freezeEnum(e)
		if err != nil {
			return nil, err
		}
		m.enums[ec.Name] = ec
		m.enumOrder = append(m.enumOrder, ec.Name)
	}

	for _, s := range b.structs {
		m.structs[s.Name] = copyStruct(s)
		m.structOrder = append(m.structOrder, s.Name)
	}

	for _, u := range b.unions {
		uc, tag, err := freezeUnion(m, u)
		if err != nil {
			return nil, err
		}
		m.unions[uc.Name] = uc
		m.unionOrder = append(m.unionOrder, uc.Name)
		m.enums[tag.Name] = tag
		m.enumOrder = append(m.enumOrder, tag.Name)
	}

	for _, name := range m.structOrder {
		if err := freezeStruct(m, m.structs[name]); err != nil {
			return nil, err
		}
	}

	if err := checkStructCycles(m); err != nil {
		return nil, err
	}

	if err := checkGlobals(m); err != nil {
		return nil, err
	}

	b.frozen = true
	return m, nil
}

func copyStruct(s *StructDef) *StructDef {
	c := *s
	c.Doc = append([]string(nil), s.Doc...)
	c.Fields = make([]*Field, len(s.Fields))
	for i, f := range s.Fields {
		fc := *f
		fc.Doc = append([]string(nil), f.Doc...)
		c.Fields[i] = &fc
	}
	return &c
}

func freezeEnum(e *EnumDef) (*EnumDef, error) {
	c := *e
	c.Doc = append([]string(nil), e.Doc...)
	c.Values = append([]EnumVal(nil), e.Values...)
	if c.Underlying == 0 {
		c.Underlying = Int32
	}
	if !c.Underlying.IsInteger() {
		return nil, errors.TypeMismatch(errors.PhaseResolve, []string{c.Name},
			c.Underlying.String(), "enum underlying type must be an integer")
	}
	sort.SliceStable(c.Values, func(i, j int) bool {
		return c.Values[i].Value < c.Values[j].Value
	})
	for i, v := range c.Values {
		if !FitsBase(v.Value, c.Underlying) {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Path(c.Name, v.Name).
				Type(c.Underlying.String()).
				Value(v.Value).
				Detail("value %d does not fit %s", v.Value, c.Underlying).
				Build()
		}
		if i > 0 && c.Values[i-1].Value == v.Value {
			return nil, errors.New(errors.PhaseResolve, errors.KindDuplicateName).
				Path(c.Name, v.Name).
				Detail("value %d already used by %q", v.Value, c.Values[i-1].Name).
				Build()
		}
	}
	return &c, nil
}

// FitsBase reports whether v is representable in the integer type base.
func FitsBase(v int64, base BaseType) bool {
	bits := base.Bits()
	if bits >= 64 {
		return !base.IsUnsigned() || v >= 0
	}
	if base.IsUnsigned() {
		return v >= 0 && uint64(v) < 1<<bits
	}
	limit := int64(1) << (bits - 1)
	return v >= -limit && v < limit
}

func freezeUnion(m *Model, u *UnionDef) (*UnionDef, *EnumDef, error) {
	c := *u
	c.Doc = append([]string(nil), u.Doc...)
	c.Members = append([]UnionMember(nil), u.Members...)

	tag := &EnumDef{
		Name:       c.Name,
		Underlying: Uint8,
		Values:     []EnumVal{{Name: "NONE", Value: 0}},
	}
	used := map[uint8]bool{0: true}
	for i := range c.Members {
		mem := &c.Members[i]
		if mem.Tag == 0 {
			mem.Tag = uint8(i + 1)
		}
		if used[mem.Tag] {
			return nil, nil, errors.New(errors.PhaseResolve, errors.KindDuplicateName).
				Path(c.Name, mem.Name).
				Detail("union tag %d used twice", mem.Tag).
				Build()
		}
		used[mem.Tag] = true
		if mem.Name == "" {
			mem.Name = mem.Type.String()
		}
		switch t := mem.Type.(type) {
		case TableRef:
			if s, ok := m.structs[t.Name]; !ok || s.Fixed {
				return nil, nil, unionMemberError(c.Name, mem)
			}
		case StructRef:
			if s, ok := m.structs[t.Name]; !ok || !s.Fixed {
				return nil, nil, unionMemberError(c.Name, mem)
			}
		case String:
		default:
			return nil, nil, unionMemberError(c.Name, mem)
		}
		tag.Values = append(tag.Values, EnumVal{Name: mem.Name, Value: int64(mem.Tag)})
	}
	sort.SliceStable(tag.Values, func(i, j int) bool {
		return tag.Values[i].Value < tag.Values[j].Value
	})
	return &c, tag, nil
}

func unionMemberError(union string, mem *UnionMember) error {
	return errors.TypeMismatch(errors.PhaseResolve, []string{union, mem.Name},
		typeName(mem.Type), "union members must be tables, structs or strings")
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func freezeStruct(m *Model, s *StructDef) error {
	if s.IsTable() {
		s.Fields = withUnionCompanions(s.Fields)
		if len(s.Fields) > maxSlots {
			return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Path(s.Name).
				Detail("%d fields exceed the vtable limit of %d", len(s.Fields), maxSlots).
				Build()
		}
	}
	if s.ForceAlign != 0 && (!s.Fixed || s.ForceAlign&(s.ForceAlign-1) != 0 || s.ForceAlign > 16) {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Path(s.Name).
			Value(s.ForceAlign).
			Detail("force_align must be a power of two up to 16 on a struct").
			Build()
	}

	var key *Field
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		path := []string{s.Name, f.Name}
		if seen[f.Name] {
			return errors.New(errors.PhaseResolve, errors.KindDuplicateName).
				Path(path...).
				Detail("field declared twice").
				Build()
		}
		seen[f.Name] = true
		f.Slot = uint16(i)

		resolved, err := resolveType(m, path, f.Type)
		if err != nil {
			return err
		}
		f.Type = resolved

		if s.Fixed {
			if err := checkStructField(path, f); err != nil {
				return err
			}
		} else if err := checkTableField(m, path, f); err != nil {
			return err
		}

		if f.Key {
			if key != nil {
				return errors.DuplicateKey([]string{s.Name}, s.Name, key.Name, f.Name)
			}
			if _, isString := f.Type.(String); !isString && !IsScalar(f.Type) {
				return errors.InvalidKeyType(path, typeName(f.Type))
			}
			key = f
		}
	}
	return nil
}

// withUnionCompanions inserts the implicit "<name>_type" field in front of
// every union or vector-of-union field that lacks one.
func withUnionCompanions(fields []*Field) []*Field {
	out := make([]*Field, 0, len(fields))
	for _, f := range fields {
		var companion Type
		switch t := f.Type.(type) {
		case UnionRef:
			companion = EnumRef{Name: t.Name, Base: Uint8}
		case Vector:
			if u, ok := t.Elem.(UnionRef); ok {
				companion = Vector{Elem: EnumRef{Name: u.Name, Base: Uint8}}
			}
		}
		name := f.Name + "_type"
		if companion != nil && (len(out) == 0 || out[len(out)-1].Name != name) {
			out = append(out, &Field{
				Name:       name,
				Type:       companion,
				Deprecated: f.Deprecated,
			})
		}
		out = append(out, f)
	}
	return out
}

func resolveType(m *Model, path []string, t Type) (Type, error) {
	switch typ := t.(type) {
	case nil:
		return nil, errors.InvalidInput(errors.PhaseResolve, "field "+strings.Join(path, ".")+" has no type")
	case Scalar:
		if !typ.Base.Valid() {
			return nil, errors.TypeMismatch(errors.PhaseResolve, path, typ.Base.String(), "invalid scalar type")
		}
	case StructRef:
		s, ok := m.structs[typ.Name]
		if !ok {
			return nil, errors.UnknownType(errors.PhaseResolve, path, typ.Name)
		}
		if !s.Fixed {
			return TableRef(typ), nil
		}
	case TableRef:
		s, ok := m.structs[typ.Name]
		if !ok {
			return nil, errors.UnknownType(errors.PhaseResolve, path, typ.Name)
		}
		if s.Fixed {
			return StructRef(typ), nil
		}
	case EnumRef:
		e, ok := m.enums[typ.Name]
		if !ok {
			return nil, errors.UnknownType(errors.PhaseResolve, path, typ.Name)
		}
		typ.Base = e.Underlying
		return typ, nil
	case UnionRef:
		if _, ok := m.unions[typ.Name]; !ok {
			return nil, errors.UnknownType(errors.PhaseResolve, path, typ.Name)
		}
	case Vector:
		if _, nested := typ.Elem.(Vector); nested {
			return nil, errors.TypeMismatch(errors.PhaseResolve, path, typ.String(), "nested vectors are not supported")
		}
		elem, err := resolveType(m, path, typ.Elem)
		if err != nil {
			return nil, err
		}
		return Vector{Elem: elem}, nil
	}
	return t, nil
}

func checkStructField(path []string, f *Field) error {
	switch f.Type.(type) {
	case Scalar, EnumRef, StructRef:
	default:
		return errors.TypeMismatch(errors.PhaseResolve, path, typeName(f.Type),
			"struct fields must be scalars, enums or structs")
	}
	if f.NestedRoot != "" {
		return errors.TypeMismatch(errors.PhaseResolve, path, typeName(f.Type),
			"nested buffers are only allowed in tables")
	}
	return nil
}

func checkTableField(m *Model, path []string, f *Field) error {
	if f.NestedRoot == "" {
		return nil
	}
	if v, ok := f.Type.(Vector); !ok || v.Elem != (Scalar{Base: Uint8}) {
		return errors.TypeMismatch(errors.PhaseResolve, path, typeName(f.Type),
			"nested buffers must be stored in a [ubyte] field")
	}
	s, ok := m.structs[f.NestedRoot]
	if !ok {
		return errors.UnknownType(errors.PhaseResolve, path, f.NestedRoot)
	}
	if s.Fixed {
		return errors.TypeMismatch(errors.PhaseResolve, path, f.NestedRoot, "nested buffer root must be a table")
	}
	return nil
}

// checkStructCycles rejects fixed structs that contain themselves.
func checkStructCycles(m *Model) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(m.structs))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), stack[start:]...), name)
			return errors.StructCycle(cycle)
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, f := range m.structs[name].Fields {
			if ref, ok := f.Type.(StructRef); ok {
				if err := visit(ref.Name); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, name := range m.structOrder {
		if m.structs[name].Fixed {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkGlobals(m *Model) error {
	if m.root != "" {
		s, ok := m.structs[m.root]
		if !ok {
			return errors.UnknownType(errors.PhaseResolve, []string{"root_type"}, m.root)
		}
		if s.Fixed {
			return errors.TypeMismatch(errors.PhaseResolve, []string{"root_type"}, m.root, "root type must be a table")
		}
	}
	if m.fileIdentifier != "" && len(m.fileIdentifier) != FileIdentifierLength {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Path("file_identifier").
			Value(m.fileIdentifier).
			Detail("identifier must be exactly %d bytes", FileIdentifierLength).
			Build()
	}
	switch m.options.Nullable {
	case NullableNone, NullableAnnotations:
	default:
		return errors.InvalidInput(errors.PhaseResolve, "unknown nullable style "+string(m.options.Nullable))
	}
	return nil
}
