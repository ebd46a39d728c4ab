package entity

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// DatetimeLayout is the canonical timestamp format of the datetime field.
const DatetimeLayout = "2006-01-02T15:04:05.000000"

// FormatDatetime renders t in DatetimeLayout.
func FormatDatetime(t time.Time) string {
	return t.Format(DatetimeLayout)
}

// Entity is a validated record. Empty string fields are unset and are encoded
// as null; sequence fields are never nil once built by New or FromMap.
type Entity struct {
	GUID        string
	Datetime    string
	Name        string
	Description string
	MType       string
	Resources   []any
	Properties  []any
	Custom      []any
	BIDS        []any
}

// New returns an entity with a fresh GUID, the current timestamp and every
// other field unset.
func New() *Entity {
	return &Entity{
		GUID:       uuid.NewString(),
		Datetime:   FormatDatetime(time.Now()),
		Resources:  []any{},
		Properties: []any{},
		Custom:     []any{},
		BIDS:       []any{},
	}
}

// FromMap builds an Entity from a decoded mapping. The mapping must carry
// exactly the Schema keys. A missing guid or datetime value is filled in.
func FromMap(v any) (*Entity, error) {
	rec, ok := AsRecord(v)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrTypeMismatch, v)
	}

	var unknown, missing []string
	for k := range rec {
		if !IsField(k) {
			unknown = append(unknown, k)
		}
	}
	for _, f := range schema {
		if _, ok := rec[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("%w: unknown keys %v", ErrKeyMismatch, unknown)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing keys %v", ErrKeyMismatch, missing)
	}

	e := &Entity{}
	for _, f := range schema {
		switch f.Kind {
		case KindString:
			s, err := stringValue(f.Name, rec[f.Name])
			if err != nil {
				return nil, err
			}
			*e.stringField(f.Name) = s
		case KindSequence:
			seq, err := sequenceValue(f.Name, rec[f.Name])
			if err != nil {
				return nil, err
			}
			*e.sequenceField(f.Name) = seq
		}
	}

	if e.GUID == "" {
		e.GUID = uuid.NewString()
	}
	if e.Datetime == "" {
		e.Datetime = FormatDatetime(time.Now())
	}
	return e, nil
}

func stringValue(name string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidValue, name, v)
	}
}

func sequenceValue(name string, v any) ([]any, error) {
	switch s := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a sequence, got %T", ErrInvalidValue, name, v)
	}
}

func (e *Entity) stringField(name string) *string {
	switch name {
	case FieldGUID:
		return &e.GUID
	case FieldDatetime:
		return &e.Datetime
	case FieldName:
		return &e.Name
	case FieldDescription:
		return &e.Description
	case FieldMType:
		return &e.MType
	}
	panic("entity: not a string field: " + name)
}

func (e *Entity) sequenceField(name string) *[]any {
	switch name {
	case FieldResources:
		return &e.Resources
	case FieldProperties:
		return &e.Properties
	case FieldCustom:
		return &e.Custom
	case FieldBIDS:
		return &e.BIDS
	}
	panic("entity: not a sequence field: " + name)
}

// Keys returns the Schema keys; an Entity always carries all of them.
func (e *Entity) Keys() []string {
	return Keys()
}

// Get returns the value of a Schema field as it would be encoded: nil for an
// unset string field.
func (e *Entity) Get(name string) any {
	k, ok := KindOf(name)
	if !ok {
		return nil
	}
	if k == KindSequence {
		seq := *e.sequenceField(name)
		if seq == nil {
			return []any{}
		}
		return seq
	}
	if s := *e.stringField(name); s != "" {
		return s
	}
	return nil
}

// ToMap converts the entity into a raw record. With squeeze set, unset string
// fields are left out.
func (e *Entity) ToMap(squeeze bool) Record {
	rec := make(Record, len(schema))
	for _, f := range schema {
		v := e.Get(f.Name)
		if v == nil && squeeze {
			continue
		}
		rec[f.Name] = v
	}
	return rec
}

// MarshalJSON encodes all Schema fields in Schema order.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return marshalOrdered(Keys(), e.Get)
}

// UnmarshalJSON decodes an object and validates it with FromMap.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

// Equal reports whether two entities carry the same values.
func (e *Entity) Equal(other *Entity) bool {
	if e == nil || other == nil {
		return e == other
	}
	a, err := json.Marshal(e)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}
