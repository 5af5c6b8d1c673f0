package jsondoc

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
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
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a single node of a parsed document. The zero Value is null.
// Numbers keep their source text so they can be read exactly as decimals.
type Value struct {
	kind Kind
	b    bool
	text string
	arr  Array
	obj  Object
}

func nullValue() Value { return Value{kind: KindNull} }

func boolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func numberValue(text string) Value { return Value{kind: KindNumber, text: text} }

func stringValue(s string) Value { return Value{kind: KindString, text: s} }

func arrayValue(a Array) Value { return Value{kind: KindArray, arr: a} }

func objectValue(o Object) Value { return Value{kind: KindObject, obj: o} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, mismatch("", KindBool, v.kind)
	}
	return v.b, nil
}

// AsNumber returns the number as a float64. Numbers outside the float64 range
// return the nearest infinity together with an error.
func (v Value) AsNumber() (float64, error) {
	if v.kind != KindNumber {
		return 0, mismatch("", KindNumber, v.kind)
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return f, fmt.Errorf("jsondoc: number %s: %w", v.text, err)
	}
	return f, nil
}

// AsDecimal returns the number exactly as written in the document.
func (v Value) AsDecimal() (decimal.Decimal, error) {
	if v.kind != KindNumber {
		return decimal.Zero, mismatch("", KindNumber, v.kind)
	}
	d, err := decimal.NewFromString(v.text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jsondoc: number %s: %w", v.text, err)
	}
	return d, nil
}

func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", mismatch("", KindString, v.kind)
	}
	return v.text, nil
}

func (v Value) AsArray() (Array, error) {
	if v.kind != KindArray {
		return Array{}, mismatch("", KindArray, v.kind)
	}
	return v.arr, nil
}

func (v Value) AsObject() (Object, error) {
	if v.kind != KindObject {
		return Object{}, mismatch("", KindObject, v.kind)
	}
	return v.obj, nil
}

// Interface converts v into plain Go values: nil, bool, float64, string,
// []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		f, _ := strconv.ParseFloat(v.text, 64)
		return f
	case KindString:
		return v.text
	case KindArray:
		out := make([]any, 0, v.arr.Len())
		for _, item := range v.arr.Values() {
			out = append(out, item.Interface())
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		for key, item := range v.obj.All() {
			out[key] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Array is an ordered list of values.
type Array struct {
	values []Value
}

func (a Array) Len() int {
	return len(a.values)
}

// At returns the value at index i.
func (a Array) At(i int) (Value, error) {
	if i < 0 || i >= len(a.values) {
		return Value{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(a.values))
	}
	return a.values[i], nil
}

// Values iterates over the array elements with their indexes.
func (a Array) Values() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, v := range a.values {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Objects returns the elements as objects, failing on the first element that
// is not an object.
func (a Array) Objects() ([]Object, error) {
	out := make([]Object, 0, len(a.values))
	for i, v := range a.values {
		if v.kind != KindObject {
			return nil, mismatch("["+strconv.Itoa(i)+"]", KindObject, v.kind)
		}
		out = append(out, v.obj)
	}
	return out, nil
}

// Object is a set of named fields that remembers the order keys first
// appeared in. A repeated key keeps its first position and its last value.
type Object struct {
	keys   []string
	fields map[string]Value
}

func newObject() Object {
	return Object{fields: make(map[string]Value)}
}

func (o *Object) set(key string, v Value) {
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

func (o Object) Len() int {
	return len(o.keys)
}

// Keys returns the field names in document order.
func (o Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// All iterates over the fields in document order.
func (o Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, key := range o.keys {
			if !yield(key, o.fields[key]) {
				return
			}
		}
	}
}

// Get returns the value of the field named key.
func (o Object) Get(key string) (Value, error) {
	v, ok := o.fields[key]
	if !ok {
		return Value{}, &LookupError{Key: key, Err: ErrKeyNotFound}
	}
	return v, nil
}

func (o Object) lookup(key string, want Kind) (Value, error) {
	v, err := o.Get(key)
	if err != nil {
		return Value{}, err
	}
	if v.kind != want {
		return Value{}, mismatch(key, want, v.kind)
	}
	return v, nil
}

func (o Object) Object(key string) (Object, error) {
	v, err := o.lookup(key, KindObject)
	return v.obj, err
}

func (o Object) Array(key string) (Array, error) {
	v, err := o.lookup(key, KindArray)
	return v.arr, err
}

func (o Object) String(key string) (string, error) {
	v, err := o.lookup(key, KindString)
	return v.text, err
}

func (o Object) Bool(key string) (bool, error) {
	v, err := o.lookup(key, KindBool)
	return v.b, err
}

func (o Object) Number(key string) (float64, error) {
	v, err := o.lookup(key, KindNumber)
	if err != nil {
		return 0, err
	}
	f, err := v.AsNumber()
	if err != nil {
		return f, &LookupError{Key: key, Want: KindNumber, Got: KindNumber, Err: err}
	}
	return f, nil
}

func (o Object) Decimal(key string) (decimal.Decimal, error) {
	v, err := o.lookup(key, KindNumber)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := v.AsDecimal()
	if err != nil {
		return decimal.Zero, &LookupError{Key: key, Want: KindNumber, Got: KindNumber, Err: err}
	}
	return d, nil
}
