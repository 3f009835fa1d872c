package pose

import (
	"encoding/json"
	"strconv"
)

// Value is an optional measurement. The zero value is None.
// Features that fail visibility gating or hit degenerate geometry are None,
// never NaN.
type Value struct {
	v  float64
	ok bool
}

// None is the absent Value.
var None = Value{}

// Some wraps a present measurement.
func Some(v float64) Value {
	return Value{v: v, ok: true}
}

// Get returns the measurement and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// OK reports whether the value is present.
func (v Value) OK() bool {
	return v.ok
}

// Or returns the measurement, or def when absent.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

// Below reports whether the value is present and strictly less than x.
func (v Value) Below(x float64) bool {
	return v.ok && v.v < x
}

// Above reports whether the value is present and strictly greater than x.
func (v Value) Above(x float64) bool {
	return v.ok && v.v > x
}

// Equal reports whether two values are both absent or both present and
// equal. It also lets go-cmp compare structs holding a Value.
func (v Value) Equal(o Value) bool {
	if v.ok != o.ok {
		return false
	}
	return !v.ok || v.v == o.v
}

// String renders the value for logs.
func (v Value) String() string {
	if !v.ok {
		return "none"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON encodes None as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON decodes null as None.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
