package telemetry

import "strconv"

// Kind identifies the concrete type carried by a Value.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Value is the tagged variant a field carries: integer, float, boolean,
// or string. Only the member matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

// IntValue constructs an integer Value.
func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }

// FloatValue constructs a floating-point Value.
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// BoolValue constructs a boolean Value.
func BoolValue(v bool) Value { return Value{Kind: KindBool, Bool: v} }

// StringValue constructs a string Value.
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }

// Any returns the value as its native Go type.
func (v Value) Any() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindBool:
		return v.Bool
	case KindString:
		return v.Str
	default:
		return v.Float
	}
}

// Numeric reports the value as a float64 for charting. Booleans map to
// 0/1; strings are not numeric.
func (v Value) Numeric() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.Float, true
	case KindInt:
		return float64(v.Int), true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Text renders the value as a bare string, the form CSV cells use.
// Type information is not preserved.
func (v Value) Text() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return v.Str
	default:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == o.Int
	case KindBool:
		return v.Bool == o.Bool
	case KindString:
		return v.Str == o.Str
	default:
		return v.Float == o.Float
	}
}
