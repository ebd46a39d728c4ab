package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Keyed is anything that exposes a key-set. Both raw records and typed
// entities satisfy it, so the checker can treat them uniformly.
type Keyed interface {
	Keys() []string
}

// Record is a raw decoded record. Its keys may or may not match the Schema.
type Record map[string]any

// AsRecord converts a decoded JSON value into a Record. It reports false for
// anything that is not a JSON object.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, m != nil
	case map[string]any:
		return Record(m), m != nil
	default:
		return nil, false
	}
}

// Keys returns the record's keys: Schema fields first in Schema order, then any
// unknown keys sorted.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, f := range schema {
		if _, ok := r[f.Name]; ok {
			keys = append(keys, f.Name)
		}
	}
	var extra []string
	for k := range r {
		if !IsField(k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// Get returns the value stored under name, or nil.
func (r Record) Get(name string) any {
	return r[name]
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Label returns a short human-readable identifier for diagnostics.
func (r Record) Label() string {
	if name, ok := r[FieldName].(string); ok && name != "" {
		return name
	}
	if guid, ok := r[FieldGUID].(string); ok && guid != "" {
		return guid
	}
	return "<unnamed>"
}

// MarshalJSON encodes the record with keys in Record.Keys order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return marshalOrdered(r.Keys(), func(k string) any { return r[k] })
}

func marshalOrdered(keys []string, value func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(value(k))
		if err != nil {
			return nil, fmt.Errorf("entity: encode field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
