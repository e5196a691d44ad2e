package schema

import (
	"fmt"

	"github.com/wippyai/flatlayout/errors"
)

// Kind tags the variant of a Type.
type Kind uint8

const (
	KindScalar Kind = iota
	KindString
	KindStruct
	KindTable
	KindVector
	KindUnion
	KindEnum
)

var kindNames = [...]string{
	KindScalar: "scalar",
	KindString: "string",
	KindStruct: "struct",
	KindTable:  "table",
	KindVector: "vector",
	KindUnion:  "union",
	KindEnum:   "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return errors.InvalidData(errors.PhaseExport, nil, fmt.Sprintf("unknown type kind %q", text))
}

// Type is the closed set of field types. Only the variants declared in this
// package implement it.
type Type interface {
	Kind() Kind
	String() string
	Accept(v Visitor)
	sealed()
}

// Visitor dispatches over every Type variant.
type Visitor interface {
	VisitScalar(t Scalar)
	VisitString(t String)
	VisitStruct(t StructRef)
	VisitTable(t TableRef)
	VisitVector(t Vector)
	VisitUnion(t UnionRef)
	VisitEnum(t EnumRef)
}

type Scalar struct {
	Base BaseType
}

type String struct{}

// StructRef names a fixed struct stored inline.
type StructRef struct {
	Name string
}

// TableRef names a table reached through an offset.
type TableRef struct {
	Name string
}

type Vector struct {
	Elem Type
}

type UnionRef struct {
	Name string
}

// EnumRef names an enum; Base is its underlying integer type.
type EnumRef struct {
	Name string
	Base BaseType
}

func (Scalar) Kind() Kind    { return KindScalar }
func (String) Kind() Kind    { return KindString }
func (StructRef) Kind() Kind { return KindStruct }
func (TableRef) Kind() Kind  { return KindTable }
func (Vector) Kind() Kind    { return KindVector }
func (UnionRef) Kind() Kind  { return KindUnion }
func (EnumRef) Kind() Kind   { return KindEnum }

func (t Scalar) String() string    { return t.Base.String() }
func (String) String() string      { return "string" }
func (t StructRef) String() string { return t.Name }
func (t TableRef) String() string  { return t.Name }
func (t UnionRef) String() string  { return t.Name }
func (t EnumRef) String() string   { return t.Name }

func (t Vector) String() string {
	if t.Elem == nil {
		return "[?]"
	}
	return fmt.Sprintf("[%s]", t.Elem)
}

func (t Scalar) Accept(v Visitor)    { v.VisitScalar(t) }
func (t String) Accept(v Visitor)    { v.VisitString(t) }
func (t StructRef) Accept(v Visitor) { v.VisitStruct(t) }
func (t TableRef) Accept(v Visitor)  { v.VisitTable(t) }
func (t Vector) Accept(v Visitor)    { v.VisitVector(t) }
func (t UnionRef) Accept(v Visitor)  { v.VisitUnion(t) }
func (t EnumRef) Accept(v Visitor)   { v.VisitEnum(t) }

func (Scalar) sealed()    {}
func (String) sealed()    {}
func (StructRef) sealed() {}
func (TableRef) sealed()  {}
func (Vector) sealed()    {}
func (UnionRef) sealed()  {}
func (EnumRef) sealed()   {}

// ScalarBase returns the storage type of scalars and enums.
func ScalarBase(t Type) (BaseType, bool) {
	switch s := t.(type) {
	case Scalar:
		return s.Base, true
	case EnumRef:
		return s.Base, true
	}
	return 0, false
}

// IsScalar reports whether t is stored as a single scalar value.
func IsScalar(t Type) bool {
	_, ok := ScalarBase(t)
	return ok
}
