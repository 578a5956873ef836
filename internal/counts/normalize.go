package counts

import (
	"math/big"
	"strings"
)

// kind discriminates the three normalization outcomes.
type kind int

const (
	kindMissing kind = iota
	kindNaN
	kindNumber
)

// Value is a normalized count. The zero Value is the missing sentinel.
//
// Values are used solely for equality comparison; the original count string
// is what gets reported and persisted.
type Value struct {
	k   kind
	rat *big.Rat
}

// Missing reports whether the count was absent.
func (v Value) Missing() bool { return v.k == kindMissing }

// NaN reports whether the count was "inf" or unparsable.
func (v Value) NaN() bool { return v.k == kindNaN }

// Rat returns the exact rational value, or nil for the sentinels.
func (v Value) Rat() *big.Rat {
	if v.k != kindNumber {
		return nil
	}
	return v.rat
}

// String renders the value for logs.
func (v Value) String() string {
	switch v.k {
	case kindMissing:
		return "<missing>"
	case kindNaN:
		return "NaN"
	default:
		return v.rat.RatString()
	}
}

// Normalize converts a raw count string into a Value. The empty string is
// the missing count. Accepted number forms are decimal integers and floats,
// scientific notation ("6.0e0"), and rationals ("12/2"); big.Rat parses all
// three exactly, so no precision is lost for any of them.
func Normalize(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{k: kindMissing}
	}
	if strings.Contains(s, "inf") {
		return Value{k: kindNaN}
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Value{k: kindNaN}
	}
	return Value{k: kindNumber, rat: r}
}

// Equal implements the comparison rule: both present, both numeric, and
// exactly the same rational value.
func Equal(a, b Value) bool {
	if a.k != kindNumber || b.k != kindNumber {
		return false
	}
	return a.rat.Cmp(b.rat) == 0
}
