package layout

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

func sc(b schema.BaseType) schema.Type { return schema.Scalar{Base: b} }

func newModel(t *testing.T, setup func(b *schema.Builder)) *schema.Model {
	t.Helper()
	b := schema.NewBuilder()
	setup(b)
	m, err := b.Freeze()
	if err != nil {
		t.Fatalf("freeze: %v", err)
	}
	return m
}

func vec3(b *schema.Builder, forceAlign uint32) {
	_ = b.AddStruct(&schema.StructDef{
		Name:       "Vec3",
		ForceAlign: forceAlign,
		Fields: []*schema.Field{
			{Name: "x", Type: sc(schema.Float32)},
			{Name: "y", Type: sc(schema.Float32)},
			{Name: "z", Type: sc(schema.Float32)},
		},
	})
}

func TestInlineSize(t *testing.T) {
	m := newModel(t, func(b *schema.Builder) {
		vec3(b, 0)
		_ = b.AddEnum(&schema.EnumDef{Name: "Color", Underlying: schema.Uint16})
		_ = b.AddTable(&schema.StructDef{Name: "T"})
	})
	r := NewResolver(m)

	tests := []struct {
		typ   schema.Type
		name  string
		size  uint32
		align uint32
	}{
		{sc(schema.Bool), "bool", 1, 1},
		{sc(schema.Int16), "short", 2, 2},
		{sc(schema.Uint32), "uint", 4, 4},
		{sc(schema.Float64), "double", 8, 8},
		{schema.EnumRef{Name: "Color"}, "enum", 2, 2},
		{schema.StructRef{Name: "Vec3"}, "struct", 12, 4},
		{schema.String{}, "string", 4, 4},
		{schema.TableRef{Name: "T"}, "table", 4, 4},
		{schema.Vector{Elem: sc(schema.Float64)}, "vector", 4, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			size, align, err := r.InlineSize(tc.typ)
			if err != nil {
				t.Fatal(err)
			}
			if size != tc.size {
				t.Errorf("size: got %d, want %d", size, tc.size)
			}
			if align != tc.align {
				t.Errorf("align: got %d, want %d", align, tc.align)
			}
		})
	}
}

func TestStructLayout(t *testing.T) {
	t.Run("mixed_alignment", func(t *testing.T) {
		m := newModel(t, func(b *schema.Builder) {
			_ = b.AddStruct(&schema.StructDef{Name: "S", Fields: []*schema.Field{
				{Name: "a", Type: sc(schema.Uint8)},
				{Name: "b", Type: sc(schema.Uint32)},
				{Name: "c", Type: sc(schema.Uint8)},
			}})
		})
		sl, err := NewResolver(m).Struct("S")
		if err != nil {
			t.Fatal(err)
		}
		wantOffsets := []uint32{0, 4, 8}
		wantPadding := []uint32{0, 3, 0}
		for i, f := range sl.Fields {
			if f.Offset != wantOffsets[i] {
				t.Errorf("%s offset: got %d, want %d", f.Name, f.Offset, wantOffsets[i])
			}
			if f.Padding != wantPadding[i] {
				t.Errorf("%s padding: got %d, want %d", f.Name, f.Padding, wantPadding[i])
			}
		}
		if sl.Size != 12 || sl.Align != 4 || sl.TrailingPadding != 3 {
			t.Errorf("got size=%d align=%d trailing=%d, want 12/4/3", sl.Size, sl.Align, sl.TrailingPadding)
		}
	})

	t.Run("nested", func(t *testing.T) {
		m := newModel(t, func(b *schema.Builder) {
			vec3(b, 0)
			_ = b.AddStruct(&schema.StructDef{Name: "Outer", Fields: []*schema.Field{
				{Name: "a", Type: sc(schema.Int8)},
				{Name: "pos", Type: schema.StructRef{Name: "Vec3"}},
				{Name: "b", Type: sc(schema.Int64)},
			}})
		})
		sl, err := NewResolver(m).Struct("Outer")
		if err != nil {
			t.Fatal(err)
		}
		if got := sl.Fields[1].Offset; got != 4 {
			t.Errorf("pos offset: got %d, want 4", got)
		}
		if got := sl.Fields[2].Offset; got != 16 {
			t.Errorf("b offset: got %d, want 16", got)
		}
		if sl.Fields[1].Struct == nil || sl.Fields[1].Struct.Name != "Vec3" {
			t.Error("nested layout not attached")
		}
		if sl.Size != 24 || sl.Align != 8 {
			t.Errorf("got size=%d align=%d, want 24/8", sl.Size, sl.Align)
		}
	})

	t.Run("force_align", func(t *testing.T) {
		m := newModel(t, func(b *schema.Builder) { vec3(b, 16) })
		sl, err := NewResolver(m).Struct("Vec3")
		if err != nil {
			t.Fatal(err)
		}
		if sl.Size != 16 || sl.Align != 16 || sl.TrailingPadding != 4 {
			t.Errorf("got size=%d align=%d trailing=%d, want 16/16/4", sl.Size, sl.Align, sl.TrailingPadding)
		}
	})

	t.Run("empty", func(t *testing.T) {
		m := newModel(t, func(b *schema.Builder) {
			_ = b.AddStruct(&schema.StructDef{Name: "E"})
		})
		sl, err := NewResolver(m).Struct("E")
		if err != nil {
			t.Fatal(err)
		}
		if sl.Size != 0 || sl.Align != 1 {
			t.Errorf("got size=%d align=%d, want 0/1", sl.Size, sl.Align)
		}
	})
}

func TestStructSizeInvariant(t *testing.T) {
	m := newModel(t, func(b *schema.Builder) {
		vec3(b, 0)
		_ = b.AddStruct(&schema.StructDef{Name: "A", Fields: []*schema.Field{
			{Name: "flag", Type: sc(schema.Bool)},
			{Name: "d", Type: sc(schema.Float64)},
			{Name: "s", Type: sc(schema.Int16)},
		}})
		_ = b.AddStruct(&schema.StructDef{Name: "B", Fields: []*schema.Field{
			{Name: "s", Type: sc(schema.Uint16)},
			{Name: "a", Type: schema.StructRef{Name: "A"}},
			{Name: "v", Type: schema.StructRef{Name: "Vec3"}},
			{Name: "c", Type: sc(schema.Uint8)},
		}})
		_ = b.AddStruct(&schema.StructDef{Name: "C", ForceAlign: 8, Fields: []*schema.Field{
			{Name: "x", Type: sc(schema.Uint8)},
			{Name: "y", Type: sc(schema.Uint16)},
		}})
	})
	r := NewResolver(m)

	for _, name := range []string{"Vec3", "A", "B", "C"} {
		t.Run(name, func(t *testing.T) {
			sl, err := r.Struct(name)
			if err != nil {
				t.Fatal(err)
			}
			sum := sl.TrailingPadding
			last := uint32(0)
			for i, f := range sl.Fields {
				sum += f.Size + f.Padding
				if i > 0 && f.Offset <= last {
					t.Errorf("offset of %s not increasing: %d after %d", f.Name, f.Offset, last)
				}
				if f.Offset%f.Align != 0 {
					t.Errorf("%s misaligned at %d", f.Name, f.Offset)
				}
				last = f.Offset
			}
			if sum != sl.Size {
				t.Errorf("sizes and paddings sum to %d, byte size %d", sum, sl.Size)
			}
			if sl.Size%sl.Align != 0 {
				t.Errorf("byte size %d not a multiple of align %d", sl.Size, sl.Align)
			}
		})
	}
}

func TestStructErrors(t *testing.T) {
	t.Run("size_mismatch", func(t *testing.T) {
		m := newModel(t, func(b *schema.Builder) {
			_ = b.AddStruct(&schema.StructDef{Name: "S", ByteSize: 6, Fields: []*schema.Field{
				{Name: "a", Type: sc(schema.Uint8)},
				{Name: "b", Type: sc(schema.Uint32)},
			}})
		})
		_, err := NewResolver(m).Struct("S")
		want := &errors.Error{Phase: errors.PhaseLayout, Kind: errors.KindSizeMismatch}
		if !errors.IsSchemaError(err) || !isKind(err, want) {
			t.Fatalf("got %v, want size mismatch", err)
		}
	})

	t.Run("force_align_below_natural", func(t *testing.T) {
		m := newModel(t, func(b *schema.Builder) {
			_ = b.AddStruct(&schema.StructDef{Name: "S", ForceAlign: 2, Fields: []*schema.Field{
				{Name: "d", Type: sc(schema.Float64)},
			}})
		})
		if _, err := NewResolver(m).Struct("S"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("table", func(t *testing.T) {
		m := newModel(t, func(b *schema.Builder) {
			_ = b.AddTable(&schema.StructDef{Name: "T"})
		})
		if _, err := NewResolver(m).Struct("T"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func isKind(err error, target *errors.Error) bool {
	e, ok := err.(*errors.Error)
	return ok && e.Is(target)
}

func TestFlattenAndReplay(t *testing.T) {
	m := newModel(t, func(b *schema.Builder) {
		vec3(b, 0)
		_ = b.AddEnum(&schema.EnumDef{Name: "Color", Underlying: schema.Int8})
		_ = b.AddStruct(&schema.StructDef{Name: "Outer", Fields: []*schema.Field{
			{Name: "tag", Type: schema.EnumRef{Name: "Color"}},
			{Name: "pos", Type: schema.StructRef{Name: "Vec3"}},
			{Name: "big", Type: sc(schema.Int64)},
			{Name: "small", Type: sc(schema.Uint16)},
		}})
	})
	sl, err := NewResolver(m).Struct("Outer")
	if err != nil {
		t.Fatal(err)
	}

	params := Flatten(sl)
	wantNames := []string{"tag", "pos_x", "pos_y", "pos_z", "big", "small"}
	wantOffsets := []uint32{0, 4, 8, 12, 16, 24}
	if len(params) != len(wantNames) {
		t.Fatalf("got %d params, want %d", len(params), len(wantNames))
	}
	for i, p := range params {
		if p.Name != wantNames[i] || p.Offset != wantOffsets[i] {
			t.Errorf("param %d: got %s@%d, want %s@%d", i, p.Name, p.Offset, wantNames[i], wantOffsets[i])
		}
	}
	if params[0].Enum != "Color" || params[0].Base != schema.Int8 {
		t.Errorf("enum param: got %+v", params[0])
	}
	if !reflect.DeepEqual(params[2].Path, []string{"pos", "y"}) {
		t.Errorf("path: got %v", params[2].Path)
	}

	values := []uint64{0x7F, 0x3F800000, 0x40000000, 0x40400000, 0x0102030405060708, 0xBEEF}
	image := make([]byte, sl.Size)
	for i, p := range params {
		raw := make([]byte, 8)
		binary.LittleEndian.PutUint64(raw, values[i])
		copy(image[p.Offset:], raw[:p.Size])
	}

	ops := WriteSequence(sl)
	if ops[0].Op != OpPrep || ops[0].Align != 8 || ops[0].Size != 32 {
		t.Errorf("first op: got %+v", ops[0])
	}
	got := Replay(ops, values)
	if !bytes.Equal(got, image) {
		t.Errorf("replay mismatch\n got %x\nwant %x", got, image)
	}
}
