package elements

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueNumber
	ValueString
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "bool"
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	default:
		return "null"
	}
}

// Value is a decoded OMM field: a number, string, bool, or null. Integral
// is set on numbers whose value has no fractional part.
type Value struct {
	Kind     ValueKind
	Num      float64
	Str      string
	Bool     bool
	Integral bool
}

func Null() Value { return Value{Kind: ValueNull} }

func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

func String(s string) Value { return Value{Kind: ValueString, Str: s} }

func Number(f float64) Value {
	return Value{
		Kind:     ValueNumber,
		Num:      f,
		Integral: !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f),
	}
}

// Float reports the value as a finite float64. Strings are parsed; any
// other kind, or a non-finite result, reports false.
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.Kind {
	case ValueNumber:
		f = v.Num
	case ValueString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Text renders the value the way it would appear on the right-hand side of
// a KVN line.
func (v Value) Text() string {
	switch v.Kind {
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueNumber:
		if v.Integral && math.Abs(v.Num) < 1e15 {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueString:
		return v.Str
	default:
		return "null"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return json.Marshal(v.Text())
		}
		return []byte(v.Text()), nil
	case ValueString:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// OMMRecord maps OMM field names to their decoded values.
type OMMRecord map[string]Value

// Has reports whether key is present, whatever its kind.
func (r OMMRecord) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Float returns the finite numeric value of key, if any.
func (r OMMRecord) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// maxExactInt is the largest magnitude a float64 holds without losing
// integer precision.
const maxExactInt = 1 << 53

// Int returns the value of key when it is a whole number. Fractional or
// out-of-range values report false rather than being truncated.
func (r OMMRecord) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return 0, false
	}
	return int(f), true
}

// Text returns the textual value of key, or "" when absent or null.
func (r OMMRecord) Text(key string) string {
	v, ok := r[key]
	if !ok || v.Kind == ValueNull {
		return ""
	}
	return v.Text()
}
