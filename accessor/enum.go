package accessor

import "github.com/wippyai/flatlayout/schema"

// DefaultEnumDensity is the average gap between enum values at or above
// which no names table is emitted.
const DefaultEnumDensity = 5

// MaxEnumNames bounds the length of a names table whatever the threshold.
const MaxEnumNames = 1 << 16

// EnumNames returns a dense names table for e, indexed by value - min, with
// "" filling the gaps. It returns nil when the enum is empty or too sparse:
// Distance()/count must stay below threshold and the table must hold at
// most MaxEnumNames entries. Sparse enums get no table at all; callers fall
// back to the value list.
func EnumNames(e *schema.EnumDef, threshold uint64) []string {
	if len(e.Values) == 0 || e.Density() >= threshold {
		return nil
	}
	// Distance of a full int64 range wraps when counted inclusively.
	if e.Distance() >= MaxEnumNames {
		return nil
	}
	names := make([]string, e.Distance()+1)
	lo := e.Values[0].Value
	for _, v := range e.Values {
		names[uint64(v.Value-lo)] = v.Name
	}
	return names
}

// EnumName looks up the name of value in a table built by EnumNames.
func EnumName(names []string, e *schema.EnumDef, value int64) (string, bool) {
	if len(names) == 0 || len(e.Values) == 0 {
		return "", false
	}
	idx := value - e.Values[0].Value
	if idx < 0 || idx >= int64(len(names)) || names[idx] == "" {
		return "", false
	}
	return names[idx], true
}
