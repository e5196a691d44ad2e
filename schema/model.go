package schema

// Field is one declared member of a struct or table.
type Field struct {
	Type Type
	Name string
	// Default is the declared default literal. Scalars default to zero when
	// empty; enum defaults may name a value.
	Default string
	// NestedRoot names the root table of a nested buffer stored in a [ubyte]
	// field.
	NestedRoot string
	Doc        []string
	// Slot is the vtable slot. Assigned by Freeze from declaration order.
	Slot       uint16
	Required   bool
	Deprecated bool
	Key        bool
}

// StructDef describes a fixed struct (Fixed) or a table.
type StructDef struct {
	Name   string
	Fields []*Field
	Doc    []string
	// ByteSize, when non-zero, is the size the front end computed; layout
	// resolution fails if it disagrees.
	ByteSize   uint32
	ForceAlign uint32
	Fixed      bool
	// SortBySize groups table fields by inline size when emitting builder
	// calls. It never affects slots.
	SortBySize bool
}

// IsTable reports whether s is a table.
func (s *StructDef) IsTable() bool {
	return !s.Fixed
}

// Field returns the named field.
func (s *StructDef) Field(name string) (*Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// KeyField returns the field marked as key, if any.
func (s *StructDef) KeyField() (*Field, bool) {
	for _, f := range s.Fields {
		if f.Key {
			return f, true
		}
	}
	return nil, false
}

// EnumVal is a named enum constant.
type EnumVal struct {
	Name  string
	Doc   []string
	Value int64
}

// EnumDef describes an enum; Values are sorted ascending by Freeze.
type EnumDef struct {
	Name       string
	Values     []EnumVal
	Doc        []string
	Underlying BaseType
	BitFlags   bool
}

// Distance is the span between the smallest and largest value.
func (e *EnumDef) Distance() uint64 {
	if len(e.Values) == 0 {
		return 0
	}
	return uint64(e.Values[len(e.Values)-1].Value - e.Values[0].Value)
}

// Density is the average gap between consecutive values (range / count).
func (e *EnumDef) Density() uint64 {
	if len(e.Values) == 0 {
		return 0
	}
	return e.Distance() / uint64(len(e.Values))
}

// ByValue finds the constant with value v.
func (e *EnumDef) ByValue(v int64) (EnumVal, bool) {
	for _, ev := range e.Values {
		if ev.Value == v {
			return ev, true
		}
	}
	return EnumVal{}, false
}

// ByName finds the constant called name.
func (e *EnumDef) ByName(name string) (EnumVal, bool) {
	for _, ev := range e.Values {
		if ev.Name == name {
			return ev, true
		}
	}
	return EnumVal{}, false
}

// Min returns the smallest value.
func (e *EnumDef) Min() (EnumVal, bool) {
	if len(e.Values) == 0 {
		return EnumVal{}, false
	}
	return e.Values[0], true
}

// UnionMember is one alternative of a union, selected by Tag.
type UnionMember struct {
	Type Type
	Name string
	Tag  uint8
}

// UnionDef describes a union. Tag 0 is reserved for NONE. The tag enum is
// derived by Freeze and registered under the union's name.
type UnionDef struct {
	Name    string
	Members []UnionMember
	Doc     []string
}

// Member returns the member carrying tag.
func (u *UnionDef) Member(tag uint8) (UnionMember, bool) {
	for _, m := range u.Members {
		if m.Tag == tag {
			return m, true
		}
	}
	return UnionMember{}, false
}

// NullableStyle selects how generated code marks absent references.
type NullableStyle string

const (
	NullableNone        NullableStyle = ""
	NullableAnnotations NullableStyle = "annotations"
)

// Options are global generation switches carried with the model.
type Options struct {
	Nullable      NullableStyle `json:"nullable,omitempty" yaml:"nullable,omitempty" toml:"nullable" msgpack:"nullable,omitempty"`
	MutableBuffer bool          `json:"mutable_buffer,omitempty" yaml:"mutable_buffer,omitempty" toml:"mutable_buffer" msgpack:"mutable_buffer,omitempty"`
	OneFile       bool          `json:"one_file,omitempty" yaml:"one_file,omitempty" toml:"one_file" msgpack:"one_file,omitempty"`
}

// Model is a frozen schema. It is safe for concurrent readers.
type Model struct {
	structs        map[string]*StructDef
	enums          map[string]*EnumDef
	unions         map[string]*UnionDef
	structOrder    []string
	enumOrder      []string
	unionOrder     []string
	root           string
	fileIdentifier string
	fileExtension  string
	options        Options
}

// Struct returns the fixed struct or table called name.
func (m *Model) Struct(name string) (*StructDef, bool) {
	s, ok := m.structs[name]
	return s, ok
}

func (m *Model) Enum(name string) (*EnumDef, bool) {
	e, ok := m.enums[name]
	return e, ok
}

func (m *Model) Union(name string) (*UnionDef, bool) {
	u, ok := m.unions[name]
	return u, ok
}

// Structs returns fixed structs and tables in declaration order.
func (m *Model) Structs() []*StructDef {
	out := make([]*StructDef, 0, len(m.structOrder))
	for _, name := range m.structOrder {
		out = append(out, m.structs[name])
	}
	return out
}

// Enums returns enums in declaration order, including union tag enums.
func (m *Model) Enums() []*EnumDef {
	out := make([]*EnumDef, 0, len(m.enumOrder))
	for _, name := range m.enumOrder {
		out = append(out, m.enums[name])
	}
	return out
}

func (m *Model) Unions() []*UnionDef {
	out := make([]*UnionDef, 0, len(m.unionOrder))
	for _, name := range m.unionOrder {
		out = append(out, m.unions[name])
	}
	return out
}

// Root is the name of the root table, or "".
func (m *Model) Root() string {
	return m.root
}

// FileIdentifier is the 4-byte buffer identifier, or "".
func (m *Model) FileIdentifier() string {
	return m.fileIdentifier
}

func (m *Model) FileExtension() string {
	return m.fileExtension
}

func (m *Model) Options() Options {
	return m.options
}
