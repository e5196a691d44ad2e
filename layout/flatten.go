package layout

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

// Param is one scalar leaf of a struct, nested structs inlined. Path holds
// the field names from the outer struct down to the leaf.
type Param struct {
	Path   []string
	Name   string
	Enum   string
	Offset uint32
	Size   uint32
	Base   schema.BaseType
}

// Flatten lists the scalar leaves of sl in declaration order with their
// absolute offsets. Leaves of a nested struct are named with the parent
// field as prefix: pos_x, pos_y.
func Flatten(sl *StructLayout) []Param {
	var out []Param
	flatten(sl, nil, 0, &out)
	return out
}

func flatten(sl *StructLayout, prefix []string, base uint32, out *[]Param) {
	for _, f := range sl.Fields {
		path := append(append([]string(nil), prefix...), f.Name)
		if f.Struct != nil {
			flatten(f.Struct, path, base+f.Offset, out)
			continue
		}
		p := Param{
			Path:   path,
			Name:   strings.Join(path, "_"),
			Offset: base + f.Offset,
			Size:   f.Size,
		}
		switch t := f.Field.Type.(type) {
		case schema.Scalar:
			p.Base = t.Base
		case schema.EnumRef:
			p.Base = t.Base
			p.Enum = t.Name
		}
		*out = append(*out, p)
	}
}

// OpCode is a backward builder instruction.
type OpCode uint8

const (
	// OpPrep aligns the buffer for a struct of Size bytes at Align.
	OpPrep OpCode = iota + 1
	// OpPad writes Size zero bytes.
	OpPad
	// OpPut writes parameter Param.
	OpPut
)

func (o OpCode) String() string {
	switch o {
	case OpPrep:
		return "prep"
	case OpPad:
		return "pad"
	case OpPut:
		return "put"
	}
	return "unknown"
}

func (o OpCode) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *OpCode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "prep":
		*o = OpPrep
	case "pad":
		*o = OpPad
	case "put":
		*o = OpPut
	default:
		return errors.InvalidData(errors.PhaseExport, nil, fmt.Sprintf("unknown write op %q", text))
	}
	return nil
}

// WriteOp is one step of a struct construction program.
type WriteOp struct {
	Op    OpCode
	Align uint32 `json:",omitempty" yaml:",omitempty" msgpack:",omitempty"`
	Size  uint32 `json:",omitempty" yaml:",omitempty" msgpack:",omitempty"`
	Param int    `json:",omitempty" yaml:",omitempty" msgpack:",omitempty"`
}

// WriteSequence is the inverse of Flatten: the program a backward-writing
// builder runs to rebuild the struct from its flattened parameters. Param
// indexes refer to Flatten's output.
func WriteSequence(sl *StructLayout) []WriteOp {
	var ops []WriteOp
	next := len(Flatten(sl))
	writeSequence(sl, &ops, &next)
	return ops
}

// writeSequence walks fields in reverse, so parameters are consumed from
// the end of the flattened list.
func writeSequence(sl *StructLayout, ops *[]WriteOp, next *int) {
	*ops = append(*ops, WriteOp{Op: OpPrep, Align: sl.Align, Size: sl.Size})
	for i := len(sl.Fields) - 1; i >= 0; i-- {
		if pad := sl.PaddingAfter(i); pad > 0 {
			*ops = append(*ops, WriteOp{Op: OpPad, Size: pad})
		}
		f := sl.Fields[i]
		if f.Struct != nil {
			writeSequence(f.Struct, ops, next)
			continue
		}
		*next--
		*ops = append(*ops, WriteOp{Op: OpPut, Size: f.Size, Param: *next})
	}
}

// Replay runs a write program on an empty backward-growing buffer and
// returns the bytes it produces. values holds the raw bits of each
// parameter.
func Replay(ops []WriteOp, values []uint64) []byte {
	var buf []byte
	prepend := func(b []byte) {
		buf = append(b, buf...)
	}
	for _, op := range ops {
		switch op.Op {
		case OpPrep:
			if op.Align > 1 {
				pad := (^(uint32(len(buf)) + op.Size) + 1) & (op.Align - 1)
				prepend(make([]byte, pad))
			}
		case OpPad:
			prepend(make([]byte, op.Size))
		case OpPut:
			raw := make([]byte, 8)
			binary.LittleEndian.PutUint64(raw, values[op.Param])
			prepend(raw[:op.Size])
		}
	}
	return buf
}
