package schemafile

import "github.com/wippyai/flatlayout/schema"

// Document is a resolved schema as written in a YAML, TOML or JSON file.
// Structs are declared before tables; order inside each list is kept.
type Document struct {
	Root           string      `json:"root" yaml:"root" toml:"root"`
	FileIdentifier string      `json:"file_identifier" yaml:"file_identifier" toml:"file_identifier" validate:"omitempty,len=4"`
	FileExtension  string      `json:"file_extension" yaml:"file_extension" toml:"file_extension"`
	Options        OptionsDoc  `json:"options" yaml:"options" toml:"options"`
	Enums          []EnumDoc   `json:"enums" yaml:"enums" toml:"enums" validate:"dive"`
	Unions         []UnionDoc  `json:"unions" yaml:"unions" toml:"unions" validate:"dive"`
	Structs        []StructDoc `json:"structs" yaml:"structs" toml:"structs" validate:"dive"`
	Tables         []StructDoc `json:"tables" yaml:"tables" toml:"tables" validate:"dive"`
}

type OptionsDoc struct {
	Nullable      string `json:"nullable" yaml:"nullable" toml:"nullable" validate:"omitempty,oneof=annotations"`
	MutableBuffer bool   `json:"mutable_buffer" yaml:"mutable_buffer" toml:"mutable_buffer"`
	OneFile       bool   `json:"one_file" yaml:"one_file" toml:"one_file"`
}

func (o OptionsDoc) options() schema.Options {
	return schema.Options{
		Nullable:      schema.NullableStyle(o.Nullable),
		MutableBuffer: o.MutableBuffer,
		OneFile:       o.OneFile,
	}
}

type EnumDoc struct {
	Name     string         `json:"name" yaml:"name" toml:"name" validate:"required"`
	Type     string         `json:"type" yaml:"type" toml:"type" validate:"required"`
	BitFlags bool           `json:"bit_flags" yaml:"bit_flags" toml:"bit_flags"`
	Doc      []string       `json:"doc" yaml:"doc" toml:"doc"`
	Values   []EnumValueDoc `json:"values" yaml:"values" toml:"values" validate:"required,min=1,dive"`
}

type EnumValueDoc struct {
	Name  string   `json:"name" yaml:"name" toml:"name" validate:"required"`
	Value int64    `json:"value" yaml:"value" toml:"value"`
	Doc   []string `json:"doc" yaml:"doc" toml:"doc"`
}

type UnionDoc struct {
	Name    string           `json:"name" yaml:"name" toml:"name" validate:"required"`
	Doc     []string         `json:"doc" yaml:"doc" toml:"doc"`
	Members []UnionMemberDoc `json:"members" yaml:"members" toml:"members" validate:"required,min=1,dive"`
}

// UnionMemberDoc names a member type. Name defaults to the type name and Tag
// to the member's position, counting from 1.
type UnionMemberDoc struct {
	Type string `json:"type" yaml:"type" toml:"type" validate:"required"`
	Name string `json:"name" yaml:"name" toml:"name"`
	Tag  uint8  `json:"tag" yaml:"tag" toml:"tag"`
}

type StructDoc struct {
	Name       string     `json:"name" yaml:"name" toml:"name" validate:"required"`
	Doc        []string   `json:"doc" yaml:"doc" toml:"doc"`
	ByteSize   uint32     `json:"byte_size" yaml:"byte_size" toml:"byte_size"`
	ForceAlign uint32     `json:"force_align" yaml:"force_align" toml:"force_align"`
	SortBySize bool       `json:"sort_by_size" yaml:"sort_by_size" toml:"sort_by_size"`
	Fields     []FieldDoc `json:"fields" yaml:"fields" toml:"fields" validate:"dive"`
}

// FieldDoc is one field. Type is a scalar name, "string", "[T]" or the name
// of a declared struct, table, enum or union.
type FieldDoc struct {
	Name       string   `json:"name" yaml:"name" toml:"name" validate:"required"`
	Type       string   `json:"type" yaml:"type" toml:"type" validate:"required"`
	Default    string   `json:"default" yaml:"default" toml:"default"`
	NestedRoot string   `json:"nested_root" yaml:"nested_root" toml:"nested_root"`
	Doc        []string `json:"doc" yaml:"doc" toml:"doc"`
	Required   bool     `json:"required" yaml:"required" toml:"required"`
	Deprecated bool     `json:"deprecated" yaml:"deprecated" toml:"deprecated"`
	Key        bool     `json:"key" yaml:"key" toml:"key"`
}
