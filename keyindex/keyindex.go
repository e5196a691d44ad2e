// Package keyindex plans and runs binary searches over vectors of tables
// sorted by their key field.
//
// The vector MUST already be sorted ascending by key when the buffer is
// built. Nothing here checks or restores that order: an unsorted vector
// silently yields wrong or missing results. Scalar keys compare by value,
// string keys by unsigned bytes, independent of locale.
package keyindex

import (
	"cmp"
	"fmt"
	"math"
	"strings"

	"github.com/wippyai/flatlayout/accessor"
	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/wire"
)

// Compare selects how element keys are ordered.
type Compare uint8

const (
	Numeric Compare = iota + 1
	Bytes
)

func (c Compare) String() string {
	switch c {
	case Numeric:
		return "numeric"
	case Bytes:
		return "bytes"
	}
	return "unknown"
}

func (c Compare) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Compare) UnmarshalText(text []byte) error {
	switch string(text) {
	case "numeric":
		*c = Numeric
	case "bytes":
		*c = Bytes
	default:
		return errors.InvalidData(errors.PhaseExport, nil, fmt.Sprintf("unknown key comparison %q", text))
	}
	return nil
}

// Plan is a key lookup over one vector field.
type Plan struct {
	// Key reads the key field of an element table.
	Key     *accessor.Plan `json:"key" yaml:"key" msgpack:"key"`
	Owner   string         `json:"owner" yaml:"owner" msgpack:"owner"`
	Field   string         `json:"field" yaml:"field" msgpack:"field"`
	Elem    string         `json:"elem" yaml:"elem" msgpack:"elem"`
	Compare Compare        `json:"compare" yaml:"compare" msgpack:"compare"`
}

// Planner derives key lookups from accessor plans.
type Planner struct{}

func NewPlanner() *Planner {
	return &Planner{}
}

// Plan returns the lookup for vec, a vector field, given the plans of its
// element type. It reports false when the vector does not hold tables or
// the element type declares no key.
func (*Planner) Plan(vec *accessor.Plan, elemPlans []*accessor.Plan) (*Plan, bool) {
	if vec.Strategy != accessor.VectorOfStruct || !vec.Indirect {
		return nil, false
	}
	for _, p := range elemPlans {
		if !p.Key {
			continue
		}
		lp := &Plan{Owner: vec.Owner, Field: vec.Field, Elem: vec.Elem, Key: p}
		switch p.Strategy {
		case accessor.DefaultedScalar:
			lp.Compare = Numeric
		case accessor.StringIndirect:
			lp.Compare = Bytes
		default:
			return nil, false
		}
		return lp, true
	}
	return nil, false
}

type keyKind uint8

const (
	kindInt keyKind = iota + 1
	kindUint
	kindFloat
	kindString
)

// Key is a search key. Build one with IntKey, UintKey, FloatKey or
// StringKey.
type Key struct {
	s    string
	i    int64
	u    uint64
	f    float64
	kind keyKind
}

func IntKey(v int64) Key     { return Key{i: v, kind: kindInt} }
func UintKey(v uint64) Key   { return Key{u: v, kind: kindUint} }
func FloatKey(v float64) Key { return Key{f: v, kind: kindFloat} }
func StringKey(v string) Key { return Key{s: v, kind: kindString} }

// Search looks key up in vec, a vector sorted by p's key field. It returns
// the matching element and its index, or found=false. When reuse is non-nil
// it is re-pointed at each probed element and returned on a match instead
// of a new table.
func Search(p *Plan, vec wire.Vector, key Key, reuse *wire.Table) (wire.Table, int, bool, error) {
	if key.kind == 0 || (p.Compare == Bytes) != (key.kind == kindString) {
		return wire.Table{}, -1, false, errors.New(errors.PhasePlan, errors.KindTypeMismatch).
			Path(p.Owner, p.Field).
			Detail("%s key used with a %s lookup", key.kindName(), p.Compare).
			Build()
	}

	var local wire.Table
	elem := reuse
	if elem == nil {
		elem = &local
	}

	start, span := uint32(0), vec.Len
	for span != 0 {
		middle := span / 2
		if err := vec.Table(elem, start+middle); err != nil {
			return wire.Table{}, -1, false, err
		}
		c, err := compareElem(p, *elem, key)
		if err != nil {
			return wire.Table{}, -1, false, err
		}
		switch {
		case c > 0:
			span = middle
		case c < 0:
			start += middle + 1
			span -= middle + 1
		default:
			return *elem, int(start + middle), true, nil
		}
	}
	return wire.Table{}, -1, false, nil
}

// compareElem orders the element's key against key. Absent keys compare
// as the key field's default, or "" for strings.
func compareElem(p *Plan, t wire.Table, key Key) (int, error) {
	if p.Compare == Bytes {
		s, _, err := accessor.ReadString(p.Key, t.Buf, t.Pos)
		if err != nil {
			return 0, err
		}
		return strings.Compare(s, key.s), nil
	}
	v, _, err := accessor.ReadScalar(p.Key, t.Buf, t.Pos)
	if err != nil {
		return 0, err
	}
	return compareValue(v, key), nil
}

func compareValue(v accessor.Value, k Key) int {
	if v.Carrier.IsFloat() || k.kind == kindFloat {
		return cmp.Compare(v.Float(), k.float())
	}
	if v.Carrier.IsUnsigned() {
		if k.kind == kindInt && k.i < 0 {
			return 1
		}
		return cmp.Compare(v.Uint(), k.uint())
	}
	if k.kind == kindUint && k.u > math.MaxInt64 {
		return -1
	}
	return cmp.Compare(v.Int(), k.int())
}

func (k Key) float() float64 {
	switch k.kind {
	case kindInt:
		return float64(k.i)
	case kindUint:
		return float64(k.u)
	}
	return k.f
}

func (k Key) int() int64 {
	if k.kind == kindUint {
		return int64(k.u)
	}
	return k.i
}

func (k Key) uint() uint64 {
	if k.kind == kindInt {
		return uint64(k.i)
	}
	return k.u
}

func (k Key) kindName() string {
	switch k.kind {
	case kindInt:
		return "int"
	case kindUint:
		return "uint"
	case kindFloat:
		return "float"
	case kindString:
		return "string"
	}
	return "empty"
}
