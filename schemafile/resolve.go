package schemafile

import (
	"strings"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

// Model resolves the document's type strings and freezes the result.
func (d *Document) Model() (*schema.Model, error) {
	names := d.declared()
	b := schema.NewBuilder()

	for _, e := range d.Enums {
		base, ok := schema.ParseBaseType(e.Type)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseLoad, []string{e.Name}, e.Type, "enum underlying type is not a scalar")
		}
		def := &schema.EnumDef{
			Name:       e.Name,
			Underlying: base,
			BitFlags:   e.BitFlags,
			Doc:        e.Doc,
			Values:     make([]schema.EnumVal, len(e.Values)),
		}
		for i, v := range e.Values {
			def.Values[i] = schema.EnumVal{Name: v.Name, Value: v.Value, Doc: v.Doc}
		}
		if err := b.AddEnum(def); err != nil {
			return nil, err
		}
	}

	for _, s := range d.Structs {
		def, err := structDef(names, s)
		if err != nil {
			return nil, err
		}
		if err := b.AddStruct(def); err != nil {
			return nil, err
		}
	}
	for _, s := range d.Tables {
		def, err := structDef(names, s)
		if err != nil {
			return nil, err
		}
		if err := b.AddTable(def); err != nil {
			return nil, err
		}
	}

	for _, u := range d.Unions {
		def := &schema.UnionDef{Name: u.Name, Doc: u.Doc}
		for _, m := range u.Members {
			t, err := names.resolve([]string{u.Name, m.Type}, m.Type)
			if err != nil {
				return nil, err
			}
			def.Members = append(def.Members, schema.UnionMember{Type: t, Name: m.Name, Tag: m.Tag})
		}
		if err := b.AddUnion(def); err != nil {
			return nil, err
		}
	}

	b.SetRoot(d.Root)
	b.SetFileIdentifier(d.FileIdentifier)
	b.SetFileExtension(d.FileExtension)
	b.SetOptions(d.Options.options())
	return b.Freeze()
}

func structDef(names typeNames, s StructDoc) (*schema.StructDef, error) {
	def := &schema.StructDef{
		Name:       s.Name,
		Doc:        s.Doc,
		ByteSize:   s.ByteSize,
		ForceAlign: s.ForceAlign,
		SortBySize: s.SortBySize,
		Fields:     make([]*schema.Field, len(s.Fields)),
	}
	for i, f := range s.Fields {
		t, err := names.resolve([]string{s.Name, f.Name}, f.Type)
		if err != nil {
			return nil, err
		}
		def.Fields[i] = &schema.Field{
			Type:       t,
			Name:       f.Name,
			Default:    f.Default,
			NestedRoot: f.NestedRoot,
			Doc:        f.Doc,
			Required:   f.Required,
			Deprecated: f.Deprecated,
			Key:        f.Key,
		}
	}
	return def, nil
}

type typeNames map[string]schema.Kind

func (d *Document) declared() typeNames {
	names := make(typeNames)
	for _, e := range d.Enums {
		names[e.Name] = schema.KindEnum
	}
	for _, u := range d.Unions {
		names[u.Name] = schema.KindUnion
	}
	for _, s := range d.Structs {
		names[s.Name] = schema.KindStruct
	}
	for _, s := range d.Tables {
		names[s.Name] = schema.KindTable
	}
	return names
}

func (n typeNames) resolve(path []string, s string) (schema.Type, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		elem, err := n.resolve(path, s[1:len(s)-1])
		if err != nil {
			return nil, err
		}
		return schema.Vector{Elem: elem}, nil
	}
	if s == "string" {
		return schema.String{}, nil
	}
	if base, ok := schema.ParseBaseType(s); ok {
		return schema.Scalar{Base: base}, nil
	}
	kind, ok := n[s]
	if !ok {
		return nil, errors.UnknownType(errors.PhaseLoad, path, s)
	}
	switch kind {
	case schema.KindEnum:
		return schema.EnumRef{Name: s}, nil
	case schema.KindUnion:
		return schema.UnionRef{Name: s}, nil
	case schema.KindStruct:
		return schema.StructRef{Name: s}, nil
	}
	return schema.TableRef{Name: s}, nil
}
