package entity

import "slices"

// Kind is the expected JSON value kind of a Schema field.
type Kind int

const (
	KindString Kind = iota
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Field names recognised by the Schema.
const (
	FieldGUID        = "guid"
	FieldDatetime    = "datetime"
	FieldName        = "name"
	FieldDescription = "description"
	FieldMType       = "mtype"
	FieldResources   = "resources"
	FieldProperties  = "properties"
	FieldCustom      = "custom"
	FieldBIDS        = "bids"
)

// Field is one Schema entry.
type Field struct {
	Name string
	Kind Kind
}

var schema = []Field{
	{FieldGUID, KindString},
	{FieldDatetime, KindString},
	{FieldName, KindString},
	{FieldDescription, KindString},
	{FieldMType, KindString},
	{FieldResources, KindSequence},
	{FieldProperties, KindSequence},
	{FieldCustom, KindSequence},
	{FieldBIDS, KindSequence},
}

// Fields returns the Schema in canonical order.
func Fields() []Field {
	return slices.Clone(schema)
}

// Keys returns the Schema field names in canonical order.
func Keys() []string {
	keys := make([]string, len(schema))
	for i, f := range schema {
		keys[i] = f.Name
	}
	return keys
}

// KindOf reports the kind of the named field and whether it belongs to the Schema.
func KindOf(name string) (Kind, bool) {
	for _, f := range schema {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return 0, false
}

// IsField reports whether name is a Schema field.
func IsField(name string) bool {
	_, ok := KindOf(name)
	return ok
}

// ZeroValue returns the value a missing field is backfilled with: nil for
// strings, an empty sequence for sequences.
func ZeroValue(name string) any {
	if k, ok := KindOf(name); ok && k == KindSequence {
		return []any{}
	}
	return nil
}
