package layout

import (
	"reflect"
	"testing"

	"github.com/wippyai/flatlayout/schema"
)

func monster(sortBySize bool) func(b *schema.Builder) {
	return func(b *schema.Builder) {
		vec3(b, 0)
		_ = b.AddTable(&schema.StructDef{
			Name:       "Monster",
			SortBySize: sortBySize,
			Fields: []*schema.Field{
				{Name: "mana", Type: sc(schema.Uint8)},
				{Name: "score", Type: sc(schema.Uint64)},
				{Name: "name", Type: schema.String{}},
				{Name: "friendly", Type: sc(schema.Bool), Deprecated: true},
				{Name: "hp", Type: sc(schema.Int16)},
				{Name: "level", Type: sc(schema.Int32)},
				{Name: "pos", Type: schema.StructRef{Name: "Vec3"}},
			},
		})
	}
}

func TestTableSlots(t *testing.T) {
	m := newModel(t, monster(false))
	tl, err := NewResolver(m).Table("Monster")
	if err != nil {
		t.Fatal(err)
	}
	if len(tl.Slots) != 7 {
		t.Fatalf("got %d slots, want 7", len(tl.Slots))
	}
	for i, s := range tl.Slots {
		if int(s.Index) != i {
			t.Errorf("%s: slot %d, want %d", s.Name, s.Index, i)
		}
		if want := uint16(4 + 2*i); s.VTableOffset != want {
			t.Errorf("%s: vtable offset %d, want %d", s.Name, s.VTableOffset, want)
		}
	}
	if !tl.Slots[3].Deprecated {
		t.Error("deprecated field must keep its slot")
	}
	if tl.VTableSize != 18 {
		t.Errorf("vtable size: got %d, want 18", tl.VTableSize)
	}
	if s, ok := tl.Slot("pos"); !ok || s.InlineSize != 12 || s.Align != 4 {
		t.Errorf("pos slot: got %+v", s)
	}
}

func TestWriteOrder(t *testing.T) {
	tests := []struct {
		name    string
		want    []uint16
		classes []uint32
		sorted  bool
	}{
		{
			name:    "reverse_declaration",
			sorted:  false,
			want:    []uint16{6, 5, 4, 2, 1, 0},
			classes: []uint32{0},
		},
		{
			name:    "size_sorted",
			sorted:  true,
			want:    []uint16{1, 6, 5, 2, 4, 0},
			classes: []uint32{8, 4, 2, 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newModel(t, monster(tc.sorted))
			tl, err := NewResolver(m).Table("Monster")
			if err != nil {
				t.Fatal(err)
			}
			if got := tl.WriteOrder(); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("write order: got %v, want %v", got, tc.want)
			}
			var classes []uint32
			for _, g := range tl.WriteGroups {
				classes = append(classes, g.Class)
			}
			if !reflect.DeepEqual(classes, tc.classes) {
				t.Errorf("classes: got %v, want %v", classes, tc.classes)
			}
		})
	}
}

func TestWriteOrderNeverChangesSlots(t *testing.T) {
	plain, err := NewResolver(newModel(t, monster(false))).Table("Monster")
	if err != nil {
		t.Fatal(err)
	}
	sorted, err := NewResolver(newModel(t, monster(true))).Table("Monster")
	if err != nil {
		t.Fatal(err)
	}
	for i := range plain.Slots {
		a, b := plain.Slots[i], sorted.Slots[i]
		if a.Name != b.Name || a.Index != b.Index || a.VTableOffset != b.VTableOffset {
			t.Errorf("slot %d differs: %+v vs %+v", i, a, b)
		}
	}
	if s, _ := sorted.Slot("name"); s.Index != 2 {
		t.Errorf("name: got slot %d, want 2", s.Index)
	}
}

func TestTableOfStructFails(t *testing.T) {
	m := newModel(t, func(b *schema.Builder) { vec3(b, 0) })
	if _, err := NewResolver(m).Table("Vec3"); err == nil {
		t.Fatal("expected error")
	}
}

func TestStructFieldClassFollowsAlignment(t *testing.T) {
	tests := []struct {
		name       string
		forceAlign uint32
		class      uint32
	}{
		{"natural", 0, 4},
		{"force_align_8", 8, 8},
		{"force_align_16", 16, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newModel(t, func(b *schema.Builder) {
				vec3(b, tc.forceAlign)
				_ = b.AddTable(&schema.StructDef{
					Name:       "Body",
					SortBySize: true,
					Fields:     []*schema.Field{{Name: "pos", Type: schema.StructRef{Name: "Vec3"}}},
				})
			})
			tl, err := NewResolver(m).Table("Body")
			if err != nil {
				t.Fatal(err)
			}
			for _, g := range tl.WriteGroups {
				if len(g.Slots) == 1 && g.Slots[0] == 0 {
					if g.Class != tc.class {
						t.Errorf("pos in class %d, want %d", g.Class, tc.class)
					}
					return
				}
			}
			t.Errorf("pos missing from write groups %+v", tl.WriteGroups)
		})
	}
}
