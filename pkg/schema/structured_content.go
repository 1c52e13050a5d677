// Package schema defines the JSON-isomorphic value and type-descriptor pivot
// used to move data between wire JSON and user-declared record types.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	om "github.com/wk8/go-ordered-map/v2"
)

// Kind discriminates the StructuredContent variants.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Object is an insertion-order-preserving string-keyed map of StructuredContent.
// Insertion order is semantically significant: it is preserved end to end so
// that re-rendering a parsed value reproduces the original key order.
type Object = om.OrderedMap[string, StructuredContent]

// NewObject returns an empty, order-preserving StructuredContent object map.
func NewObject() *Object {
	return om.New[string, StructuredContent]()
}

// StructuredContent is a tagged union mirroring a JSON value: null, bool,
// number, string, array, or object. It is the pivot type between wire JSON
// and code-generated record types (see the Partial<T> decoders mentioned in
// the package doc of the structuredstream package).
type StructuredContent struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []StructuredContent
	obj  *Object
}

// Null returns the null variant.
func Null() StructuredContent { return StructuredContent{kind: KindNull} }

// Bool returns the bool variant.
func Bool(v bool) StructuredContent { return StructuredContent{kind: KindBool, b: v} }

// Number returns the number variant. Panics if v is NaN or infinite: a
// StructuredContent must never hold a non-finite number (spec invariant).
func Number(v float64) StructuredContent {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic("schema: StructuredContent number must be finite")
	}
	return StructuredContent{kind: KindNumber, n: v}
}

// String returns the string variant.
func String(v string) StructuredContent { return StructuredContent{kind: KindString, s: v} }

// Array returns the array variant.
func Array(items []StructuredContent) StructuredContent {
	return StructuredContent{kind: KindArray, arr: items}
}

// ObjectValue returns the object variant over an order-preserving map.
func ObjectValue(o *Object) StructuredContent {
	if o == nil {
		o = NewObject()
	}
	return StructuredContent{kind: KindObject, obj: o}
}

// Kind reports which variant this value holds.
func (v StructuredContent) Kind() Kind { return v.kind }

// IsNull reports whether v is the null variant.
func (v StructuredContent) IsNull() bool { return v.kind == KindNull }

// TypeMismatch is returned by a typed accessor when the value holds a
// different variant than requested.
type TypeMismatch struct {
	Expected string
	Actual   string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("structured content: expected %s, got %s", e.Expected, e.Actual)
}

// InvalidIntegerValue is returned by Int when the underlying number has a
// fractional part and cannot be rounded to an integer without loss.
type InvalidIntegerValue struct {
	Value float64
}

func (e *InvalidIntegerValue) Error() string {
	return fmt.Sprintf("structured content: %v is not an integer", e.Value)
}

// MissingKey is returned by Field when the requested key is absent from an
// object value.
type MissingKey struct {
	Key string
}

func (e *MissingKey) Error() string {
	return fmt.Sprintf("structured content: missing key %q", e.Key)
}

func (v StructuredContent) kindName() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// BoolValue returns the underlying boolean, or a TypeMismatch.
func (v StructuredContent) BoolValue() (bool, error) {
	if v.kind != KindBool {
		return false, &TypeMismatch{Expected: "bool", Actual: v.kindName()}
	}
	return v.b, nil
}

// NumberValue returns the underlying float64, or a TypeMismatch.
func (v StructuredContent) NumberValue() (float64, error) {
	if v.kind != KindNumber {
		return 0, &TypeMismatch{Expected: "number", Actual: v.kindName()}
	}
	return v.n, nil
}

// Int rounds the underlying number to an integer, failing if it has a
// fractional part (InvalidIntegerValue) or isn't a number (TypeMismatch).
func (v StructuredContent) Int() (int64, error) {
	n, err := v.NumberValue()
	if err != nil {
		return 0, err
	}
	if math.Trunc(n) != n {
		return 0, &InvalidIntegerValue{Value: n}
	}
	return int64(n), nil
}

// StringValue returns the underlying string, or a TypeMismatch.
func (v StructuredContent) StringValue() (string, error) {
	if v.kind != KindString {
		return "", &TypeMismatch{Expected: "string", Actual: v.kindName()}
	}
	return v.s, nil
}

// ArrayValue returns the underlying slice, or a TypeMismatch.
func (v StructuredContent) ArrayValue() ([]StructuredContent, error) {
	if v.kind != KindArray {
		return nil, &TypeMismatch{Expected: "array", Actual: v.kindName()}
	}
	return v.arr, nil
}

// Object returns the underlying ordered map, or a TypeMismatch.
func (v StructuredContent) Object() (*Object, error) {
	if v.kind != KindObject {
		return nil, &TypeMismatch{Expected: "object", Actual: v.kindName()}
	}
	return v.obj, nil
}

// Field looks up key in an object value, failing with MissingKey if absent
// or TypeMismatch if v isn't an object.
func (v StructuredContent) Field(key string) (StructuredContent, error) {
	obj, err := v.Object()
	if err != nil {
		return StructuredContent{}, err
	}
	val, ok := obj.Get(key)
	if !ok {
		return StructuredContent{}, &MissingKey{Key: key}
	}
	return val, nil
}

// Parse decodes raw JSON bytes into a StructuredContent, preserving object
// key insertion order.
func Parse(data []byte) (StructuredContent, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return StructuredContent{}, err
	}
	return v, nil
}

// decodeValue recursively decodes the next JSON value from dec into a
// StructuredContent, preserving object key order via dec.Token().
func decodeValue(dec *json.Decoder) (StructuredContent, error) {
	tok, err := dec.Token()
	if err != nil {
		return StructuredContent{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (StructuredContent, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return StructuredContent{}, err
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []StructuredContent
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return StructuredContent{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return StructuredContent{}, err
			}
			return Array(items), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return StructuredContent{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return StructuredContent{}, fmt.Errorf("schema: object key is not a string")
				}
				val, err := decodeValue(dec)
				if err != nil {
					return StructuredContent{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return StructuredContent{}, err
			}
			return ObjectValue(obj), nil
		}
	}
	return StructuredContent{}, fmt.Errorf("schema: unexpected token %v", tok)
}

// MarshalJSON renders v as JSON with stable key order equal to insertion
// order (json.Marshaler).
func (v StructuredContent) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		buf := []byte{'['}
		for i, item := range v.arr {
			if i > 0 {
				buf = append(buf, ',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
		buf = append(buf, ']')
		return buf, nil
	case KindObject:
		buf := []byte{'{'}
		i := 0
		for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
			if i > 0 {
				buf = append(buf, ',')
			}
			key, err := json.Marshal(pair.Key)
			if err != nil {
				return nil, err
			}
			val, err := pair.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, key...)
			buf = append(buf, ':')
			buf = append(buf, val...)
			i++
		}
		buf = append(buf, '}')
		return buf, nil
	default:
		return nil, fmt.Errorf("schema: unknown kind %d", v.kind)
	}
}

// Render is a convenience wrapper around MarshalJSON returning a string.
func (v StructuredContent) Render() (string, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
