package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FloatString is a float64 that unmarshals from either a JSON number or a
// numeric string ("25.0"). Persisted thresholds and incoming weather values
// are always compared as float64 after this coercion; the parse happens here
// at the boundary so comparison logic never sees raw strings.
type FloatString float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FloatString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("value must be a number")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("value %q is not numeric", s)
		}
		*f = FloatString(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("value is not numeric: %w", err)
	}
	*f = FloatString(v)
	return nil
}

// floatPtr converts an optional FloatString to an optional float64.
func (f *FloatString) floatPtr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// MarshalJSON implements json.Marshaler, always emitting a JSON number.
func (f FloatString) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Float64 returns the coerced value.
func (f FloatString) Float64() float64 { return float64(f) }
