package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface representing document values.
// Only Null, String, Int, Number, Bool, Array, and Object implement this.
type Value interface {
	documentValue()
}

// Null represents a JSON null value.
type Null struct{}

func (Null) documentValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string value.
type String string

func (String) documentValue() {}

// Int represents an integer value. Always int64, never float64.
type Int int64

func (Int) documentValue() {}

// Number is a numeric value that does not fit Int: a fraction, an exponent,
// or an integer outside the int64 range. It holds the JSON number text.
//
// Documents may carry numbers anywhere, but no IR field is numeric with a
// fraction, so decoders treat a Number as a type mismatch. Canonical JSON
// rejects it.
type Number string

func (Number) documentValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) documentValue() {}

// Array represents an ordered list of values.
type Array []Value

func (Array) documentValue() {}

// Object represents a map of string keys to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) documentValue() {}

// Strings builds an Array of String values.
func Strings(items []string) Array {
	arr := make(Array, len(items))
	for i, s := range items {
		arr[i] = String(s)
	}
	return arr
}

// KindOf names the kind of a value for diagnostics.
func KindOf(v Value) string {
	switch v.(type) {
	case nil:
		return "absent"
	case Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's default string ordering compares UTF-8 bytes, which differs for
// characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	// Compare code unit by code unit; the shorter prefix sorts first
	for i := 0; i < min(len(a16), len(b16)); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// MarshalJSON implements json.Marshaler for Object with sorted keys.
// NOTE: This is NOT canonical marshaling (HTML characters are escaped).
// Use MarshalCanonical for fingerprints.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Array.
func (arr Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalValue marshals a Value to compact JSON bytes.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Number:
		// Number is written verbatim, so it must already be valid JSON
		if !json.Valid([]byte(val)) {
			return nil, fmt.Errorf("invalid number %q", string(val))
		}
		return []byte(val), nil
	case Bool:
		return json.Marshal(bool(val))
	case Array:
		return val.MarshalJSON()
	case Object:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown document value type: %T", v)
	}
}

// MarshalIndent marshals a Value to indented JSON for human consumption.
func MarshalIndent(v Value) ([]byte, error) {
	compact, err := MarshalValue(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ToAny converts a Value into plain Go values (map[string]any, []any,
// string, int64, float64, bool, nil). Used by the YAML and CBOR formats.
func ToAny(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Number:
		// Out-of-range text keeps its digits as a string
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return string(val)
		}
		return f
	case Bool:
		return bool(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}

// FromAny converts decoded Go values into a Value.
// Integers become Int, other finite numbers become Number, and nil becomes
// Null. NaN and infinities are rejected.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	// Already a document value (FromAny on its own output)
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return Number(strconv.FormatUint(val, 10)), nil
		}
		return Int(int64(val)), nil
	// JSON input with UseNumber: keep integers exact
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		return Number(val.String()), nil
	case float32:
		return numberFromFloat(float64(val))
	case float64:
		return numberFromFloat(val)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			docElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = docElem
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			docElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = docElem
		}
		return obj, nil
	// YAML and CBOR may produce maps with non-string keys
	case map[any]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v: keys must be strings", k)
			}
			docElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", key, err)
			}
			obj[key] = docElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// numberFromFloat renders f in its shortest round-trip form.
func numberFromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite numbers are not allowed in documents: %v", f)
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
