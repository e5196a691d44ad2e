package accessor

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

// parseDefault resolves a declared default literal into carrier bits.
// Enum defaults may name a value; bit flag enums may name several,
// separated by spaces.
func parseDefault(path []string, lit string, base schema.BaseType, enum *schema.EnumDef) (Default, error) {
	d := Default{Literal: lit}
	lit = strings.TrimSpace(lit)
	if lit == "" {
		return d, nil
	}

	fail := func(cause error) (Default, error) {
		return Default{}, errors.InvalidDefault(path, base.String(), lit, cause)
	}

	switch {
	case base == schema.Bool:
		switch lit {
		case "true", "1":
			d.Bits = 1
		case "false", "0":
		default:
			return fail(nil)
		}
		return d, nil

	case base.IsFloat():
		v, err := strconv.ParseFloat(lit, int(base.Bits()))
		if err != nil {
			return fail(err)
		}
		if base == schema.Float32 {
			d.Bits = uint64(math.Float32bits(float32(v)))
		} else {
			d.Bits = math.Float64bits(v)
		}
		return d, nil
	}

	raw, ok := enumLiteral(lit, enum)
	if !ok {
		var err error
		if base.IsUnsigned() {
			var u uint64
			u, err = strconv.ParseUint(lit, 0, int(base.Bits()))
			raw = u
		} else {
			var i int64
			i, err = strconv.ParseInt(lit, 0, int(base.Bits()))
			raw = uint64(i)
		}
		if err != nil {
			return fail(err)
		}
	}
	d.Bits = decode(raw, base).Bits
	return d, nil
}

func enumLiteral(lit string, enum *schema.EnumDef) (uint64, bool) {
	if enum == nil {
		return 0, false
	}
	if v, ok := enum.ByName(lit); ok {
		return uint64(v.Value), true
	}
	if !enum.BitFlags {
		return 0, false
	}
	var out uint64
	for _, name := range strings.Fields(lit) {
		v, ok := enum.ByName(name)
		if !ok {
			return 0, false
		}
		out |= uint64(v.Value)
	}
	return out, true
}
