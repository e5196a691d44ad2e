package accessor

import (
	"fmt"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

// Strategy is the access pattern selected for a field.
type Strategy uint8

const (
	DirectScalar Strategy = iota + 1
	DefaultedScalar
	FixedStruct
	IndirectStruct
	StringIndirect
	VectorOfScalar
	VectorOfStruct
	VectorOfString
	VectorOfUnion
	UnionField
	NestedBuffer
)

var strategyNames = [...]string{
	DirectScalar:    "direct_scalar",
	DefaultedScalar: "defaulted_scalar",
	FixedStruct:     "fixed_struct",
	IndirectStruct:  "indirect_struct",
	StringIndirect:  "string_indirect",
	VectorOfScalar:  "vector_of_scalar",
	VectorOfStruct:  "vector_of_struct",
	VectorOfString:  "vector_of_string",
	VectorOfUnion:   "vector_of_union",
	UnionField:      "union_field",
	NestedBuffer:    "nested_buffer",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) && strategyNames[s] != "" {
		return strategyNames[s]
	}
	return "unknown"
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	for i, name := range strategyNames {
		if name != "" && name == string(text) {
			*s = Strategy(i)
			return nil
		}
	}
	return errors.InvalidData(errors.PhaseExport, nil, fmt.Sprintf("unknown strategy %q", text))
}

// IsScalar reports whether s reads a single scalar value.
func (s Strategy) IsScalar() bool {
	return s == DirectScalar || s == DefaultedScalar
}

// IsVector reports whether s reads a vector.
func (s Strategy) IsVector() bool {
	switch s {
	case VectorOfScalar, VectorOfStruct, VectorOfString, VectorOfUnion, NestedBuffer:
		return true
	}
	return false
}

// Mutable reports whether s supports in-place mutation at all.
func (s Strategy) Mutable() bool {
	return s == DirectScalar || s == DefaultedScalar || s == VectorOfScalar
}

// Addressing tells how a field is located inside its owner.
type Addressing uint8

const (
	// Static fields sit at a fixed offset from the struct start.
	Static Addressing = iota + 1
	// VTable fields are found through the owner's vtable slot.
	VTable
)

func (a Addressing) String() string {
	switch a {
	case Static:
		return "static"
	case VTable:
		return "vtable"
	}
	return "unknown"
}

func (a Addressing) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Addressing) UnmarshalText(text []byte) error {
	switch string(text) {
	case "static":
		*a = Static
	case "vtable":
		*a = VTable
	default:
		return errors.InvalidData(errors.PhaseExport, nil, fmt.Sprintf("unknown addressing %q", text))
	}
	return nil
}

// Default is a scalar default: the declared literal and its carrier bits.
type Default struct {
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty" msgpack:"literal,omitempty"`
	Bits    uint64 `json:"bits" yaml:"bits" msgpack:"bits"`
}

// Plan is the access plan of one field. Plans are built once by a Mapper
// and never modified afterwards.
type Plan struct {
	Owner    string   `json:"owner" yaml:"owner" msgpack:"owner"`
	Field    string   `json:"field" yaml:"field" msgpack:"field"`
	Strategy Strategy `json:"strategy" yaml:"strategy" msgpack:"strategy"`
	// Addressing is Static for struct fields, VTable for table fields.
	Addressing   Addressing `json:"addressing" yaml:"addressing" msgpack:"addressing"`
	Offset       uint32     `json:"offset,omitempty" yaml:"offset,omitempty" msgpack:"offset,omitempty"`
	Slot         uint16     `json:"slot" yaml:"slot" msgpack:"slot"`
	VTableOffset uint16     `json:"vtable_offset,omitempty" yaml:"vtable_offset,omitempty" msgpack:"vtable_offset,omitempty"`
	// Size is the inline size of the field.
	Size uint32 `json:"size" yaml:"size" msgpack:"size"`
	// Base is the storage type of a scalar, or of the elements of a
	// vector of scalars.
	Base    schema.BaseType `json:"base,omitempty" yaml:"base,omitempty" msgpack:"base,omitempty"`
	Carrier schema.BaseType `json:"carrier,omitempty" yaml:"carrier,omitempty" msgpack:"carrier,omitempty"`
	Mask    uint64          `json:"mask,omitempty" yaml:"mask,omitempty" msgpack:"mask,omitempty"`
	Enum    string          `json:"enum,omitempty" yaml:"enum,omitempty" msgpack:"enum,omitempty"`
	// Elem names the referenced struct, table, union or nested root.
	Elem      string  `json:"elem,omitempty" yaml:"elem,omitempty" msgpack:"elem,omitempty"`
	Default   Default `json:"default" yaml:"default" msgpack:"default"`
	ElemSize  uint32  `json:"elem_size,omitempty" yaml:"elem_size,omitempty" msgpack:"elem_size,omitempty"`
	ElemAlign uint32  `json:"elem_align,omitempty" yaml:"elem_align,omitempty" msgpack:"elem_align,omitempty"`
	// CompanionSlot is the slot of the union type field.
	CompanionSlot uint16 `json:"companion_slot,omitempty" yaml:"companion_slot,omitempty" msgpack:"companion_slot,omitempty"`
	Indirect      bool   `json:"indirect,omitempty" yaml:"indirect,omitempty" msgpack:"indirect,omitempty"`
	Nullable      bool   `json:"nullable,omitempty" yaml:"nullable,omitempty" msgpack:"nullable,omitempty"`
	Mutable       bool   `json:"mutable,omitempty" yaml:"mutable,omitempty" msgpack:"mutable,omitempty"`
	Required      bool   `json:"required,omitempty" yaml:"required,omitempty" msgpack:"required,omitempty"`
	Deprecated    bool   `json:"deprecated,omitempty" yaml:"deprecated,omitempty" msgpack:"deprecated,omitempty"`
	Key           bool   `json:"key,omitempty" yaml:"key,omitempty" msgpack:"key,omitempty"`
}

// Carrier returns the carrier type and mask used when reading base. A zero
// mask means none is applied.
func Carrier(base schema.BaseType) (schema.BaseType, uint64) {
	switch base {
	case schema.Uint8:
		return schema.Int32, 0xFF
	case schema.Uint16:
		return schema.Int32, 0xFFFF
	case schema.Uint32:
		return schema.Int64, 0xFFFFFFFF
	}
	return base, 0
}
