package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value variants.
const (
	KindAbsent Kind = iota
	KindScalar
	KindList
	KindMap
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "absent"
	}
}

// ScalarType records the JSON type a scalar was decoded from.
type ScalarType int

// Scalar types.
const (
	ScalarString ScalarType = iota
	ScalarNumber
	ScalarBool
)

// ErrUnexpectedToken is returned when a document cannot be decoded.
var ErrUnexpectedToken = errors.New("unexpected JSON token")

// Value is a dynamically-shaped document field: absent, a scalar, a list or a map.
// JSON null decodes to the absent variant.
type Value struct {
	doc        *Document
	text       string
	list       []Value
	kind       Kind
	scalarType ScalarType
}

// Absent returns the absent value.
func Absent() Value { return Value{} }

// String returns a string scalar.
func String(s string) Value {
	return Value{kind: KindScalar, text: s, scalarType: ScalarString}
}

// Number returns a numeric scalar from its literal text.
func Number(literal string) Value {
	return Value{kind: KindScalar, text: literal, scalarType: ScalarNumber}
}

// Int returns a numeric scalar.
func Int(n int) Value {
	return Number(fmt.Sprintf("%d", n))
}

// Bool returns a boolean scalar.
func Bool(b bool) Value {
	text := "false"
	if b {
		text = "true"
	}

	return Value{kind: KindScalar, text: text, scalarType: ScalarBool}
}

// List returns a list value.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Map wraps a document as a map value.
func Map(doc *Document) Value {
	if doc == nil {
		doc = NewDocument()
	}

	return Value{kind: KindMap, doc: doc}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value is absent.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// ScalarType reports the JSON type of a scalar.
func (v Value) ScalarType() ScalarType { return v.scalarType }

// Text returns the scalar text, or "" for non-scalars.
func (v Value) Text() string {
	if v.kind != KindScalar {
		return ""
	}

	return v.text
}

// Items returns the list elements, or nil for non-lists.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}

	return v.list
}

// Doc returns the map document, or nil for non-maps.
func (v Value) Doc() *Document {
	if v.kind != KindMap {
		return nil
	}

	return v.doc
}

// Truthy mirrors the "present and non-empty" notion used by every rule:
// absent, "", 0, false, empty lists and empty maps are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindScalar:
		switch v.scalarType {
		case ScalarString:
			return v.text != ""
		case ScalarBool:
			return v.text == "true"
		default:
			f, err := strconv.ParseFloat(v.text, 64)
			return err != nil || f != 0
		}
	case KindList:
		return len(v.list) > 0
	case KindMap:
		return v.doc != nil && v.doc.Len() > 0
	default:
		return false
	}
}

// Display renders the value as plain text for identifiers and reports.
func (v Value) Display() string {
	switch v.kind {
	case KindScalar:
		return v.text
	case KindAbsent:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(data)
	}
}

// MarshalJSON encodes the value, preserving map key order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		switch v.scalarType {
		case ScalarNumber, ScalarBool:
			return []byte(v.text), nil
		default:
			return json.Marshal(v.text)
		}
	case KindList:
		var buf bytes.Buffer

		buf.WriteByte('[')

		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}

			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}

			buf.Write(data)
		}

		buf.WriteByte(']')

		return buf.Bytes(), nil
	case KindMap:
		return v.doc.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	val, err := decodeValue(dec)
	if err != nil {
		return err
	}

	*v = val

	return nil
}

// Field is one key/value pair of a document.
type Field struct {
	Key   string
	Value Value
}

// Document is an ordered field mapping. Keys keep their declaration order.
type Document struct {
	index  map[string]int
	fields []Field
}

// NewDocument builds a document from fields; later duplicates overwrite earlier ones in place.
func NewDocument(fields ...Field) *Document {
	d := &Document{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		d.Set(f.Key, f.Value)
	}

	return d
}

// F is shorthand for building a Field.
func F(key string, value Value) Field {
	return Field{Key: key, Value: value}
}

// Get returns the value stored under key, or Absent.
func (d *Document) Get(key string) Value {
	if d == nil {
		return Absent()
	}

	i, ok := d.index[key]
	if !ok {
		return Absent()
	}

	return d.fields[i].Value
}

// Set stores a value under key.
func (d *Document) Set(key string, value Value) {
	if d.index == nil {
		d.index = make(map[string]int)
	}

	if i, ok := d.index[key]; ok {
		d.fields[i].Value = value
		return
	}

	d.index[key] = len(d.fields)
	d.fields = append(d.fields, Field{Key: key, Value: value})
}

// First returns the first truthy value among keys, or Absent.
func (d *Document) First(keys ...string) Value {
	for _, k := range keys {
		if v := d.Get(k); v.Truthy() {
			return v
		}
	}

	return Absent()
}

// Fields returns the fields in declaration order.
func (d *Document) Fields() []Field {
	if d == nil {
		return nil
	}

	return d.fields
}

// Len returns the number of fields.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}

	return len(d.fields)
}

// Values returns the field values in declaration order.
func (d *Document) Values() []Value {
	out := make([]Value, 0, d.Len())
	for _, f := range d.Fields() {
		out = append(out, f.Value)
	}

	return out
}

// MarshalJSON encodes the document with keys in declaration order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range d.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		data, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}

		buf.Write(data)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (d *Document) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}

	if v.kind != KindMap {
		return fmt.Errorf("%w: document must be an object, got %s", ErrUnexpectedToken, v.kind)
	}

	*d = *v.doc

	return nil
}

// DecodeValue reads a single JSON value from r.
func DecodeValue(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Absent(), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}

			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}

				items = append(items, item)
			}

			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return List(items...), nil
		case '{':
			doc := NewDocument()

			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}

				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("%w: object key %v", ErrUnexpectedToken, keyTok)
				}

				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}

				doc.Set(key, val)
			}

			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return Map(doc), nil
		}
	}

	return Value{}, fmt.Errorf("%w: %v", ErrUnexpectedToken, tok)
}

// String implements fmt.Stringer for debugging output.
func (d *Document) String() string {
	var sb strings.Builder

	sb.WriteString("Document{")

	for i, f := range d.Fields() {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(f.Key)
		sb.WriteString(": ")
		sb.WriteString(f.Value.Display())
	}

	sb.WriteString("}")

	return sb.String()
}
