// Package fbtest assembles flat buffer fixtures for tests.
//
// Unlike a production builder it writes forward: every object is appended,
// and a reference is written as a placeholder that is linked once its
// target exists. Targets therefore sit at higher addresses than the
// references to them, as the wire format requires. There is no vtable
// deduplication beyond what a test asks for explicitly.
package fbtest

import (
	"encoding/binary"
	"math"
)

// Options shape the buffer header.
type Options struct {
	// Identifier, when set, is written after the root offset.
	Identifier string
	SizePrefix bool
}

// Builder appends objects to a growing buffer.
type Builder struct {
	buf     []byte
	opts    Options
	rootPos uint32
}

// New starts a buffer and reserves its header.
func New(opts Options) *Builder {
	b := &Builder{opts: opts}
	if opts.SizePrefix {
		b.buf = append(b.buf, 0, 0, 0, 0)
	}
	b.rootPos = b.Len()
	b.buf = append(b.buf, 0, 0, 0, 0)
	if opts.Identifier != "" {
		b.buf = append(b.buf, opts.Identifier...)
	}
	return b
}

// Len is the current buffer length, which is also the next write position.
func (b *Builder) Len() uint32 {
	return uint32(len(b.buf))
}

// Align pads with zeros up to a multiple of n.
func (b *Builder) Align(n uint32) {
	for n > 1 && b.Len()%n != 0 {
		b.buf = append(b.buf, 0)
	}
}

// Put appends the low size bytes of bits, little-endian, after aligning to
// size. It returns the value's position.
func (b *Builder) Put(size uint32, bits uint64) uint32 {
	b.Align(size)
	pos := b.Len()
	b.buf = append(b.buf, LE(size, bits)...)
	return pos
}

// SetU32 overwrites four bytes at pos.
func (b *Builder) SetU32(pos, v uint32) {
	binary.LittleEndian.PutUint32(b.buf[pos:], v)
}

// Link stores in the placeholder at from the uoffset reaching to.
func (b *Builder) Link(from, to uint32) {
	if to < from {
		panic("fbtest: reference must point forward")
	}
	b.SetU32(from, to-from)
}

// String appends a length-prefixed, NUL-terminated string and returns the
// position of its length field.
func (b *Builder) String(s string) uint32 {
	pos := b.Put(4, uint64(len(s)))
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, 0)
	return pos
}

// Vector appends n elements of elemSize bytes, aligned so the first element
// honors align. put fills element i in place.
func (b *Builder) Vector(elemSize, align uint32, n int, put func(i int, dst []byte)) uint32 {
	if align < 4 {
		align = 4
	}
	for b.Len()%4 != 0 || (b.Len()+4)%align != 0 {
		b.buf = append(b.buf, 0)
	}
	pos := b.Put(4, uint64(n))
	for i := 0; i < n; i++ {
		start := len(b.buf)
		b.buf = append(b.buf, make([]byte, elemSize)...)
		if put != nil {
			put(i, b.buf[start:])
		}
	}
	return pos
}

// Scalars appends a vector of same-width scalars given as raw bits.
func (b *Builder) Scalars(size uint32, bits ...uint64) uint32 {
	return b.Vector(size, size, len(bits), func(i int, dst []byte) {
		copy(dst, LE(size, bits[i]))
	})
}

// Bytes appends a [ubyte] vector.
func (b *Builder) Bytes(v []byte) uint32 {
	return b.Vector(1, 1, len(v), func(i int, dst []byte) { dst[0] = v[i] })
}

// RefVector appends a vector of n reference placeholders and returns the
// vector position and the position of each placeholder.
func (b *Builder) RefVector(n int) (uint32, []uint32) {
	pos := b.Vector(4, 4, n, nil)
	elems := make([]uint32, n)
	for i := range elems {
		elems[i] = pos + 4 + uint32(i)*4
	}
	return pos, elems
}

// Finish links the root offset, fills the size prefix and returns the bytes.
func (b *Builder) Finish(root uint32) []byte {
	b.Link(b.rootPos, root)
	if b.opts.SizePrefix {
		b.SetU32(0, b.Len()-4)
	}
	return b.buf
}

// LE encodes the low size bytes of bits little-endian.
func LE(size uint32, bits uint64) []byte {
	out := make([]byte, size)
	switch size {
	case 1:
		out[0] = byte(bits)
	case 2:
		binary.LittleEndian.PutUint16(out, uint16(bits))
	case 4:
		binary.LittleEndian.PutUint32(out, uint32(bits))
	case 8:
		binary.LittleEndian.PutUint64(out, bits)
	default:
		panic("fbtest: unsupported scalar size")
	}
	return out
}

// F32 and F64 give the raw bits of a float for Put and Table.Scalar.
func F32(v float32) uint64 { return uint64(math.Float32bits(v)) }
func F64(v float64) uint64 { return math.Float64bits(v) }

// Struct is an inline struct image filled at explicit offsets.
type Struct []byte

func NewStruct(size uint32) Struct {
	return make(Struct, size)
}

// Put stores a scalar at offset and returns s for chaining.
func (s Struct) Put(offset, size uint32, bits uint64) Struct {
	copy(s[offset:], LE(size, bits))
	return s
}
