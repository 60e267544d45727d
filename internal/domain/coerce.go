package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LooseFloat is a numeric request field that distinguishes absent,
// present-and-valid, and present-but-unparsable values. Absent fields take a
// documented default; unparsable ones coerce to 0.0 with a warning. The two
// cases deliberately behave differently (see the package doc).
type LooseFloat struct {
	set   bool
	valid bool
	value float64
	raw   string
}

// Num constructs a valid LooseFloat, used by callers building requests in code.
func Num(v float64) LooseFloat {
	return LooseFloat{set: true, valid: true, value: v}
}

// BadNum constructs a present-but-unparsable LooseFloat for tests.
func BadNum(raw string) LooseFloat {
	return LooseFloat{set: true, raw: raw}
}

// UnmarshalJSON accepts JSON numbers and numeric strings. Anything else marks
// the field invalid rather than failing the enclosing document; null counts
// as absent. Never returns an error.
func (f *LooseFloat) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = LooseFloat{}
		return nil
	}

	f.set = true
	f.raw = string(b)
	f.valid = false
	f.value = 0

	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		f.valid, f.value = true, v
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		// ParseFloat accepts "NaN" and "Inf", which violate the finite-float
		// invariant, so they stay invalid.
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			f.valid, f.value = true, v
		}
	}
	return nil
}

// MarshalJSON round-trips the original raw token for invalid fields and emits
// a plain number otherwise.
func (f LooseFloat) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	if !f.valid {
		if json.Valid([]byte(f.raw)) {
			return []byte(f.raw), nil
		}
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// IsSet reports whether the field was present in the request.
func (f LooseFloat) IsSet() bool { return f.set }

// Value returns the parsed value and whether it is usable.
func (f LooseFloat) Value() (float64, bool) {
	if !f.set || !f.valid {
		return 0, false
	}
	return f.value, true
}
