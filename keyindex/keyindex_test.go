package keyindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/flatlayout/accessor"
	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/internal/fbtest"
	"github.com/wippyai/flatlayout/layout"
	"github.com/wippyai/flatlayout/schema"
	"github.com/wippyai/flatlayout/wire"
)

// keyedModel declares Item { id: <keyType> (key); name: string } and
// Bag { items: [Item] }, or Item { name: string (key) } when keyType is nil.
func keyedModel(t *testing.T, keyType schema.Type, stringKey bool) *schema.Model {
	t.Helper()
	b := schema.NewBuilder()
	require.NoError(t, b.AddTable(&schema.StructDef{Name: "Item", Fields: []*schema.Field{
		{Name: "id", Type: keyType, Key: !stringKey},
		{Name: "name", Type: schema.String{}, Key: stringKey},
	}}))
	require.NoError(t, b.AddTable(&schema.StructDef{Name: "Bag", Fields: []*schema.Field{
		{Name: "items", Type: schema.Vector{Elem: schema.TableRef{Name: "Item"}}},
	}}))
	m, err := b.Freeze()
	require.NoError(t, err)
	return m
}

func lookupPlan(t *testing.T, m *schema.Model) *Plan {
	t.Helper()
	mapper := accessor.NewMapper(layout.NewResolver(m), m.Options())
	bag, err := mapper.Map("Bag")
	require.NoError(t, err)
	items, err := mapper.Map("Item")
	require.NoError(t, err)
	lp, ok := NewPlanner().Plan(bag[0], items)
	require.True(t, ok)
	return lp
}

// itemVector writes a Bag whose items carry the given ids (size bytes) and
// names, and returns the items vector.
func itemVector(t *testing.T, size uint32, ids []uint64, names []string) wire.Vector {
	t.Helper()
	b := fbtest.New(fbtest.Options{})
	bag := b.Table().Ref(0).End()
	n := max(len(ids), len(names))
	vec, elems := b.RefVector(n)
	b.Link(bag.Field(0), vec)
	for i := 0; i < n; i++ {
		tb := b.Table()
		if ids != nil {
			tb.Scalar(0, size, ids[i])
		}
		if names != nil {
			tb.Ref(1)
		}
		w := tb.End()
		if names != nil {
			b.Link(w.Field(1), b.String(names[i]))
		}
		b.Link(elems[i], w.Pos)
	}
	buf := wire.FromBytes(b.Finish(bag.Pos))
	root, err := buf.Root()
	require.NoError(t, err)
	off, err := root.Offset(wire.VTableOffset(0))
	require.NoError(t, err)
	v, err := root.Vector(uint32(off))
	require.NoError(t, err)
	return v
}

func TestPlanner(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int32}, false))
	assert.Equal(t, Numeric, lp.Compare)
	assert.Equal(t, "Item", lp.Elem)
	assert.Equal(t, "id", lp.Key.Field)

	lp = lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int32}, true))
	assert.Equal(t, Bytes, lp.Compare)
	assert.Equal(t, "name", lp.Key.Field)

	b := schema.NewBuilder()
	require.NoError(t, b.AddTable(&schema.StructDef{Name: "Plain", Fields: []*schema.Field{{Name: "x", Type: schema.Scalar{Base: schema.Int8}}}}))
	require.NoError(t, b.AddTable(&schema.StructDef{Name: "Holder", Fields: []*schema.Field{
		{Name: "plain", Type: schema.Vector{Elem: schema.TableRef{Name: "Plain"}}},
		{Name: "nums", Type: schema.Vector{Elem: schema.Scalar{Base: schema.Int8}}},
	}}))
	m, err := b.Freeze()
	require.NoError(t, err)
	mapper := accessor.NewMapper(layout.NewResolver(m), m.Options())
	holder, _ := mapper.Map("Holder")
	plain, _ := mapper.Map("Plain")
	_, ok := NewPlanner().Plan(holder[0], plain)
	assert.False(t, ok, "element without key")
	_, ok = NewPlanner().Plan(holder[1], plain)
	assert.False(t, ok, "vector of scalars")
}

func TestSearchIntKeys(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int32}, false))
	vec := itemVector(t, 4, []uint64{1, 3, 5, 7, 9}, nil)

	tests := []struct {
		key   int64
		index int
		found bool
	}{
		{5, 2, true},
		{4, -1, false},
		{1, 0, true},
		{9, 4, true},
		{0, -1, false},
		{10, -1, false},
	}
	for _, tt := range tests {
		_, idx, found, err := Search(lp, vec, IntKey(tt.key), nil)
		require.NoError(t, err)
		assert.Equal(t, tt.found, found, "key %d", tt.key)
		assert.Equal(t, tt.index, idx, "key %d", tt.key)
	}
}

func TestSearchStringKeys(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int32}, true))
	vec := itemVector(t, 4, nil, []string{"a", "b"})

	tab, idx, found, err := Search(lp, vec, StringKey("a"), nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, idx)
	name, _, err := accessor.ReadString(lp.Key, tab.Buf, tab.Pos)
	require.NoError(t, err)
	assert.Equal(t, "a", name)

	_, _, found, err = Search(lp, vec, StringKey("A"), nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearchBytewiseOrder(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int32}, true))
	// "Z" (0x5A) < "a" (0x61) < "é" (0xC3 0xA9) by unsigned bytes.
	vec := itemVector(t, 4, nil, []string{"Z", "a", "é"})
	for i, k := range []string{"Z", "a", "é"} {
		_, idx, found, err := Search(lp, vec, StringKey(k), nil)
		require.NoError(t, err)
		assert.True(t, found, k)
		assert.Equal(t, i, idx, k)
	}
}

func TestSearchUnsignedKeys(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Uint32}, false))
	vec := itemVector(t, 4, []uint64{2, 0x80000000, 0xFFFFFFFF}, nil)

	_, idx, found, err := Search(lp, vec, UintKey(0xFFFFFFFF), nil)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, idx)

	_, idx, found, err = Search(lp, vec, IntKey(0x80000000), nil)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, idx)

	_, _, found, err = Search(lp, vec, IntKey(-1), nil)
	require.NoError(t, err)
	assert.False(t, found)

	lp64 := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Uint64}, false))
	vec64 := itemVector(t, 8, []uint64{1, 1 << 63}, nil)
	_, idx, found, err = Search(lp64, vec64, UintKey(1<<63), nil)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, idx)
}

func TestSearchFloatKeys(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Float64}, false))
	vec := itemVector(t, 8, []uint64{fbtest.F64(-1.5), fbtest.F64(0.25), fbtest.F64(8)}, nil)
	_, idx, found, err := Search(lp, vec, FloatKey(0.25), nil)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, idx)
}

func TestSearchReusesTable(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int16}, false))
	vec := itemVector(t, 2, []uint64{10, 20, 30}, nil)

	var reuse wire.Table
	got, idx, found, err := Search(lp, vec, IntKey(30), &reuse)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, idx)
	assert.Equal(t, reuse, got)
}

func TestSearchKeyKindMismatch(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int32}, false))
	vec := itemVector(t, 4, []uint64{1}, nil)
	_, _, _, err := Search(lp, vec, StringKey("1"), nil)
	assert.Error(t, err)

	for name, p := range map[string]*Plan{
		"numeric": lp,
		"bytes":   lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int32}, true)),
	} {
		t.Run("zero key on "+name, func(t *testing.T) {
			_, idx, found, err := Search(p, vec, Key{}, nil)
			var fe *errors.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, errors.KindTypeMismatch, fe.Kind)
			assert.False(t, found)
			assert.Equal(t, -1, idx)
		})
	}
}

func TestSearchEmptyVector(t *testing.T) {
	lp := lookupPlan(t, keyedModel(t, schema.Scalar{Base: schema.Int32}, false))
	vec := itemVector(t, 4, []uint64{}, nil)
	_, idx, found, err := Search(lp, vec, IntKey(1), nil)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, -1, idx)
}
