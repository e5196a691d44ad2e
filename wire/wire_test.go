package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/internal/fbtest"
)

func TestVTableOffset(t *testing.T) {
	tests := []struct {
		slot uint16
		want uint16
	}{
		{0, 4},
		{1, 6},
		{2, 8},
		{10, 24},
	}
	for _, tt := range tests {
		got := VTableOffset(tt.slot)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.slot, SlotOf(got))
	}
	assert.Equal(t, uint16(10), VTableSize(3))
	assert.Equal(t, uint16(0xFFFE), VTableOffset(MaxSlot))
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 4, 0},
		{1, 4, 4},
		{5, 8, 8},
		{9, 1, 9},
		{3, 0, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlignTo(tt.offset, tt.align))
		assert.Equal(t, tt.want-tt.offset, Padding(tt.offset, tt.align))
	}
	assert.True(t, IsPowerOfTwo(8))
	assert.False(t, IsPowerOfTwo(12))
	assert.False(t, IsPowerOfTwo(0))
}

func TestBytesBounds(t *testing.T) {
	mem := Bytes(make([]byte, 8))
	require.NoError(t, mem.WriteU32(4, 0xDEADBEEF))
	v, err := mem.ReadU32(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)

	_, err = mem.ReadU32(5)
	assert.Error(t, err)
	assert.Error(t, mem.WriteU64(1, 0))
	_, err = mem.Read(0, 9)
	assert.Error(t, err)
	assert.Equal(t, uint32(8), mem.Size())

	tests := []struct {
		name  string
		err   error
		phase errors.Phase
	}{
		{"read", func() error { _, err := mem.ReadU16(7); return err }(), errors.PhaseRead},
		{"read bytes", func() error { _, err := mem.Read(4, 5); return err }(), errors.PhaseRead},
		{"write", mem.WriteU16(7, 1), errors.PhaseMutate},
		{"write bytes", mem.Write(6, []byte{1, 2, 3}), errors.PhaseMutate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fe *errors.Error
			require.ErrorAs(t, tt.err, &fe)
			assert.Equal(t, tt.phase, fe.Phase)
			assert.Equal(t, errors.KindOutOfBounds, fe.Kind)
		})
	}
}

func TestRootAndFields(t *testing.T) {
	b := fbtest.New(fbtest.Options{})
	w := b.Table().
		Scalar(0, 2, 150).
		Ref(1).
		Slots(4).
		End()
	name := b.String("orc")
	b.Link(w.Field(1), name)
	buf := FromBytes(b.Finish(w.Pos))

	root, err := buf.Root()
	require.NoError(t, err)
	assert.Equal(t, w.Pos, root.Pos)

	pos, ok, err := root.Field(0)
	require.NoError(t, err)
	require.True(t, ok)
	hp, err := buf.U16(pos)
	require.NoError(t, err)
	assert.Equal(t, uint16(150), hp)

	off, err := root.Offset(VTableOffset(1))
	require.NoError(t, err)
	s, err := root.String(uint32(off))
	require.NoError(t, err)
	assert.Equal(t, "orc", s)

	_, ok, err = root.Field(3)
	require.NoError(t, err)
	assert.False(t, ok, "declared slot never written")

	_, ok, err = root.Field(40)
	require.NoError(t, err)
	assert.False(t, ok, "slot past the vtable end")
}

func TestSizePrefixAndIdentifier(t *testing.T) {
	b := fbtest.New(fbtest.Options{SizePrefix: true, Identifier: "MONS"})
	w := b.Table().Scalar(0, 4, 7).End()
	raw := b.Finish(w.Pos)
	buf := FromBytes(raw)

	size, err := buf.SizePrefix()
	require.NoError(t, err)
	assert.Equal(t, uint32(len(raw)-SizePrefixLength), size)

	ok, err := buf.HasIdentifier("MONS", true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = buf.HasIdentifier("MON", true)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = buf.HasIdentifier("XXXX", true)
	require.NoError(t, err)
	assert.False(t, ok)

	root, err := buf.SizePrefixedRoot()
	require.NoError(t, err)
	pos, ok, err := root.Field(0)
	require.NoError(t, err)
	require.True(t, ok)
	v, err := buf.U32(pos)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
}

func TestSharedVTable(t *testing.T) {
	b := fbtest.New(fbtest.Options{})
	first := b.Table().Scalar(0, 4, 1).Scalar(1, 4, 2).End()
	second := b.Table().Scalar(0, 4, 3).Scalar(1, 4, 4).EndShared(first.VTable)
	buf := FromBytes(b.Finish(first.Pos))

	var tab Table
	tab.Reset(buf, second.Pos)
	vt, err := tab.VTable()
	require.NoError(t, err)
	assert.Equal(t, first.VTable, vt)

	pos, ok, err := tab.Field(1)
	require.NoError(t, err)
	require.True(t, ok)
	v, err := buf.U32(pos)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), v)
}

func TestVectors(t *testing.T) {
	b := fbtest.New(fbtest.Options{})
	w := b.Table().Ref(0).Ref(1).Ref(2).End()

	nums := b.Scalars(2, 10, 20, 30)
	b.Link(w.Field(0), nums)

	strs, elems := b.RefVector(2)
	b.Link(w.Field(1), strs)
	for i, s := range []string{"a", "bc"} {
		b.Link(elems[i], b.String(s))
	}

	pts := b.Vector(8, 4, 2, func(i int, dst []byte) {
		copy(dst, fbtest.NewStruct(8).Put(0, 4, uint64(i)).Put(4, 4, uint64(i*10)))
	})
	b.Link(w.Field(2), pts)
	buf := FromBytes(b.Finish(w.Pos))
	root, err := buf.Root()
	require.NoError(t, err)

	off, _ := root.Offset(VTableOffset(0))
	vec, err := root.Vector(uint32(off))
	require.NoError(t, err)
	require.Equal(t, uint32(3), vec.Len)
	pos, err := vec.At(2, 2)
	require.NoError(t, err)
	v, _ := buf.U16(pos)
	assert.Equal(t, uint16(30), v)
	_, err = vec.At(3, 2)
	assert.Error(t, err)

	off, _ = root.Offset(VTableOffset(1))
	vec, err = root.Vector(uint32(off))
	require.NoError(t, err)
	s, err := vec.String(1)
	require.NoError(t, err)
	assert.Equal(t, "bc", s)

	off, _ = root.Offset(VTableOffset(2))
	vec, err = root.Vector(uint32(off))
	require.NoError(t, err)
	st, err := vec.Struct(1, 8)
	require.NoError(t, err)
	y, _ := buf.U32(st.Field(4))
	assert.Equal(t, uint32(10), y)
}

func TestUnionAndSubBuffer(t *testing.T) {
	b := fbtest.New(fbtest.Options{})
	outer := b.Table().Scalar(0, 1, 1).Ref(1).Ref(2).End()
	inner := b.Table().Scalar(0, 8, 99).End()
	b.Link(outer.Field(1), inner.Pos)

	nb := fbtest.New(fbtest.Options{})
	nw := nb.Table().Scalar(0, 4, 5).End()
	nested := b.Bytes(nb.Finish(nw.Pos))
	b.Link(outer.Field(2), nested)

	buf := FromBytes(b.Finish(outer.Pos))
	root, err := buf.Root()
	require.NoError(t, err)

	var member Table
	off, _ := root.Offset(VTableOffset(1))
	require.NoError(t, root.Union(&member, uint32(off)))
	pos, ok, err := member.Field(0)
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := buf.U64(pos)
	assert.Equal(t, uint64(99), v)

	off, _ = root.Offset(VTableOffset(2))
	vec, err := root.Vector(uint32(off))
	require.NoError(t, err)
	sub := buf.Sub(vec.Start)
	nroot, err := sub.Root()
	require.NoError(t, err)
	pos, ok, err = nroot.Field(0)
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := sub.U32(pos)
	assert.Equal(t, uint32(5), n)
}
