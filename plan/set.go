package plan

import (
	"github.com/wippyai/flatlayout/accessor"
	"github.com/wippyai/flatlayout/keyindex"
	"github.com/wippyai/flatlayout/layout"
	"github.com/wippyai/flatlayout/schema"
)

// LayoutPlan summarizes the wire layout of a type. Size and Align apply to
// structs; SlotCount, VTableSize and WriteGroups to tables.
type LayoutPlan struct {
	WriteGroups []layout.WriteGroup `json:"write_groups,omitempty" yaml:"write_groups,omitempty" msgpack:"write_groups,omitempty"`
	Size        uint32              `json:"size,omitempty" yaml:"size,omitempty" msgpack:"size,omitempty"`
	Align       uint32              `json:"align,omitempty" yaml:"align,omitempty" msgpack:"align,omitempty"`
	SlotCount   int                 `json:"slot_count,omitempty" yaml:"slot_count,omitempty" msgpack:"slot_count,omitempty"`
	VTableSize  uint16              `json:"vtable_size,omitempty" yaml:"vtable_size,omitempty" msgpack:"vtable_size,omitempty"`
	SortBySize  bool                `json:"sort_by_size,omitempty" yaml:"sort_by_size,omitempty" msgpack:"sort_by_size,omitempty"`
}

// TypePlan is everything an emitter needs for one struct or table.
type TypePlan struct {
	Name      string           `json:"name" yaml:"name" msgpack:"name"`
	Doc       []string         `json:"doc,omitempty" yaml:"doc,omitempty" msgpack:"doc,omitempty"`
	Accessors []*accessor.Plan `json:"accessors" yaml:"accessors" msgpack:"accessors"`
	// KeyLookups holds one lookup per keyed vector field of a table.
	KeyLookups []*keyindex.Plan `json:"key_lookups,omitempty" yaml:"key_lookups,omitempty" msgpack:"key_lookups,omitempty"`
	// Params and WriteSequence describe a struct constructor.
	Params        []layout.Param   `json:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
	WriteSequence []layout.WriteOp `json:"write_sequence,omitempty" yaml:"write_sequence,omitempty" msgpack:"write_sequence,omitempty"`
	Layout        LayoutPlan       `json:"layout" yaml:"layout" msgpack:"layout"`
	Fixed         bool             `json:"fixed,omitempty" yaml:"fixed,omitempty" msgpack:"fixed,omitempty"`
	// HasKey marks a table whose key field allows lookups into vectors of it.
	HasKey bool `json:"has_key,omitempty" yaml:"has_key,omitempty" msgpack:"has_key,omitempty"`
}

// Accessor returns the plan of the named field.
func (t *TypePlan) Accessor(field string) (*accessor.Plan, bool) {
	for _, p := range t.Accessors {
		if p.Field == field {
			return p, true
		}
	}
	return nil, false
}

// KeyLookup returns the lookup planned for the named vector field.
func (t *TypePlan) KeyLookup(field string) (*keyindex.Plan, bool) {
	for _, k := range t.KeyLookups {
		if k.Field == field {
			return k, true
		}
	}
	return nil, false
}

// EnumValue is one enum constant.
type EnumValue struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Value int64  `json:"value" yaml:"value" msgpack:"value"`
}

// EnumPlan describes an enum. Names is the dense names table, nil when the
// enum is too sparse for one.
type EnumPlan struct {
	Name       string          `json:"name" yaml:"name" msgpack:"name"`
	Values     []EnumValue     `json:"values" yaml:"values" msgpack:"values"`
	Names      []string        `json:"names,omitempty" yaml:"names,omitempty" msgpack:"names,omitempty"`
	Min        int64           `json:"min" yaml:"min" msgpack:"min"`
	Underlying schema.BaseType `json:"underlying" yaml:"underlying" msgpack:"underlying"`
	BitFlags   bool            `json:"bit_flags,omitempty" yaml:"bit_flags,omitempty" msgpack:"bit_flags,omitempty"`
	// Union marks the tag enum derived from a union.
	Union bool `json:"union,omitempty" yaml:"union,omitempty" msgpack:"union,omitempty"`
}

// NameOf returns the name of value through the names table.
func (e *EnumPlan) NameOf(value int64) (string, bool) {
	idx := value - e.Min
	if idx < 0 || idx >= int64(len(e.Names)) || e.Names[idx] == "" {
		return "", false
	}
	return e.Names[idx], true
}

// UnionMember is one alternative of a union plan.
type UnionMember struct {
	Name string      `json:"name" yaml:"name" msgpack:"name"`
	Type string      `json:"type" yaml:"type" msgpack:"type"`
	Kind schema.Kind `json:"kind" yaml:"kind" msgpack:"kind"`
	Tag  uint8       `json:"tag" yaml:"tag" msgpack:"tag"`
}

// UnionPlan describes a union and its members by tag.
type UnionPlan struct {
	Name    string        `json:"name" yaml:"name" msgpack:"name"`
	Members []UnionMember `json:"members" yaml:"members" msgpack:"members"`
}

// Member returns the member with tag.
func (u *UnionPlan) Member(tag uint8) (UnionMember, bool) {
	for _, m := range u.Members {
		if m.Tag == tag {
			return m, true
		}
	}
	return UnionMember{}, false
}

// Set is the published, immutable result of Build. The plans it returns are
// shared by every reader: callers must not modify them.
type Set struct {
	types          map[string]*TypePlan
	enums          map[string]*EnumPlan
	unions         map[string]*UnionPlan
	typeOrder      []string
	enumOrder      []string
	unionOrder     []string
	root           string
	fileIdentifier string
	fileExtension  string
	options        schema.Options
}

// Type returns the shared plan for a struct or table, or nil.
func (s *Set) Type(name string) *TypePlan {
	return s.types[name]
}

func (s *Set) Enum(name string) *EnumPlan {
	return s.enums[name]
}

func (s *Set) Union(name string) *UnionPlan {
	return s.unions[name]
}

// Types returns type plans in declaration order.
func (s *Set) Types() []*TypePlan {
	out := make([]*TypePlan, len(s.typeOrder))
	for i, name := range s.typeOrder {
		out[i] = s.types[name]
	}
	return out
}

func (s *Set) Enums() []*EnumPlan {
	out := make([]*EnumPlan, len(s.enumOrder))
	for i, name := range s.enumOrder {
		out[i] = s.enums[name]
	}
	return out
}

func (s *Set) Unions() []*UnionPlan {
	out := make([]*UnionPlan, len(s.unionOrder))
	for i, name := range s.unionOrder {
		out[i] = s.unions[name]
	}
	return out
}

func (s *Set) Root() string           { return s.root }
func (s *Set) FileIdentifier() string { return s.fileIdentifier }
func (s *Set) FileExtension() string  { return s.fileExtension }

// Options are the global options the set was built with, overrides applied.
func (s *Set) Options() schema.Options { return s.options }
