// internal/models/classification.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is one input record. Its identity is its position in the batch.
type Request struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// NewRequests projects an ordered list of texts onto indexed requests.
func NewRequests(texts []string) []Request {
	reqs := make([]Request, len(texts))
	for i, t := range texts {
		reqs[i] = Request{Index: i, Text: t}
	}
	return reqs
}

// FieldValue is one named value of a Result.
type FieldValue struct {
	Name  string
	Value interface{}
}

// Result is an ordered set of field values. The field order is the order the
// response contract declares and is preserved when encoding to JSON.
type Result struct {
	fields []FieldValue
}

// NewResult copies fields into a new Result.
func NewResult(fields []FieldValue) Result {
	out := make([]FieldValue, len(fields))
	copy(out, fields)
	return Result{fields: out}
}

// Fields returns a copy of the field values in declaration order.
func (r Result) Fields() []FieldValue {
	out := make([]FieldValue, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in declaration order.
func (r Result) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the value of the named field.
func (r Result) Get(name string) (interface{}, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the named field formatted as text, or "" when absent.
func (r Result) String(name string) string {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Len is the number of fields.
func (r Result) Len() int { return len(r.fields) }

// IsEmpty reports whether every field holds the empty string.
func (r Result) IsEmpty() bool {
	for _, f := range r.fields {
		if s, ok := f.Value.(string); !ok || s != "" {
			return false
		}
	}
	return true
}

// AsMap flattens the result. Field order is lost.
func (r Result) AsMap() map[string]interface{} {
	m := make(map[string]interface{}, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON encodes the result as an object with keys in declaration order.
// Values are not HTML-escaped here, but json.Marshal escapes the returned
// bytes again; encode through a json.Encoder with SetEscapeHTML(false), as
// dataset.Encode does, to keep '&', '<' and '>' verbatim.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNoEscape(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Outcome holds one Result per Request, in request order.
type Outcome []Result
