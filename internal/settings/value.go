// Package settings holds the shared data model for parsed configuration
// documents: typed field values, per-field metadata, and the ordered field
// table with its derived category index.
package settings

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Type identifies the shape of a field value. It determines both the runtime
// representation and the literal syntax used when a value is re-serialized.
type Type uint8

const (
	// TypeString represents a UTF-8 string value.
	TypeString Type = iota
	// TypeInteger represents a 64-bit integer value.
	TypeInteger
	// TypeFloat represents a 64-bit floating-point value.
	TypeFloat
	// TypeBoolean represents a boolean value.
	TypeBoolean
	// TypeArray represents an ordered list of values.
	TypeArray
	// TypeObject represents an opaque JSON object blob. Objects only occur
	// transiently during flattening or as array elements; leaf fields are
	// never bare objects.
	TypeObject
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged union carrying exactly one of the payloads below,
// selected by Type. The zero Value is the empty string.
type Value struct {
	// Type selects which payload field is meaningful.
	Type Type

	// Str holds the payload for TypeString.
	Str string

	// Int holds the payload for TypeInteger.
	Int int64

	// Num holds the payload for TypeFloat.
	Num float64

	// Bool holds the payload for TypeBoolean.
	Bool bool

	// List holds the payload for TypeArray.
	List []Value

	// Raw holds the compact JSON source for TypeObject.
	Raw string
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{Type: TypeString, Str: s}
}

// IntValue returns an integer Value.
func IntValue(i int64) Value {
	return Value{Type: TypeInteger, Int: i}
}

// FloatValue returns a float Value.
func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, Num: f}
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	return Value{Type: TypeBoolean, Bool: b}
}

// ArrayValue returns an array Value holding the given elements.
func ArrayValue(elems ...Value) Value {
	return Value{Type: TypeArray, List: elems}
}

// ObjectValue returns an object Value wrapping raw JSON text.
func ObjectValue(raw string) Value {
	return Value{Type: TypeObject, Raw: raw}
}

// Equal reports strict equality: same type and same payload. Arrays compare
// element-wise. This is the dirtiness check used by the writers; the tolerant
// comparison lives in the compare package.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeString:
		return v.Str == o.Str
	case TypeInteger:
		return v.Int == o.Int
	case TypeFloat:
		return v.Num == o.Num
	case TypeBoolean:
		return v.Bool == o.Bool
	case TypeArray:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		return v.Raw == o.Raw
	default:
		return false
	}
}

// String returns the value's natural text form: the string itself, decimal
// digits for numbers, "true"/"false" for booleans, and compact JSON for
// arrays and objects.
func (v Value) String() string {
	switch v.Type {
	case TypeString:
		return v.Str
	case TypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeArray, TypeObject:
		return v.JSON()
	default:
		return ""
	}
}

// JSON returns the value serialized as compact JSON.
func (v Value) JSON() string {
	switch v.Type {
	case TypeString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return strconv.Quote(v.Str)
		}
		return string(b)
	case TypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.List {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.JSON())
		}
		sb.WriteByte(']')
		return sb.String()
	case TypeObject:
		return v.Raw
	default:
		return `""`
	}
}

// IsNumeric reports whether the value is an integer or a float.
func (v Value) IsNumeric() bool {
	return v.Type == TypeInteger || v.Type == TypeFloat
}

// Float returns the numeric payload as a float64. Integers are widened;
// non-numeric values return 0.
func (v Value) Float() float64 {
	switch v.Type {
	case TypeInteger:
		return float64(v.Int)
	case TypeFloat:
		return v.Num
	default:
		return 0
	}
}
