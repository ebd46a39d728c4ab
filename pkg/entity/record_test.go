package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	assert.Equal(t,
		[]string{"guid", "datetime", "name", "description", "mtype", "resources", "properties", "custom", "bids"},
		Keys())

	k, ok := KindOf(FieldBIDS)
	assert.True(t, ok)
	assert.Equal(t, KindSequence, k)

	_, ok = KindOf("colour")
	assert.False(t, ok)

	assert.Nil(t, ZeroValue(FieldName))
	assert.Equal(t, []any{}, ZeroValue(FieldCustom))

	fields := Fields()
	fields[0].Name = "changed"
	assert.Equal(t, FieldGUID, Keys()[0], "Fields must return a copy")
}

func TestAsRecord(t *testing.T) {
	_, ok := AsRecord(map[string]any{"name": "a"})
	assert.True(t, ok)
	_, ok = AsRecord(Record{"name": "a"})
	assert.True(t, ok)
	_, ok = AsRecord([]any{})
	assert.False(t, ok)
	_, ok = AsRecord(nil)
	assert.False(t, ok)
}

func TestRecord_Keys(t *testing.T) {
	r := Record{"zeta": 1, "name": "a", "alpha": 2, "guid": "x"}
	assert.Equal(t, []string{"guid", "name", "alpha", "zeta"}, r.Keys())
}

func TestRecord_Label(t *testing.T) {
	assert.Equal(t, "labs", Record{"name": "labs", "guid": "g"}.Label())
	assert.Equal(t, "g", Record{"guid": "g"}.Label())
	assert.Equal(t, "<unnamed>", Record{"name": 3.0}.Label())
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := Record{"extra": true, "bids": []any{}, "guid": "g"}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"guid":"g","bids":[],"extra":true}`, string(data))

	c := r.Clone()
	c["guid"] = "other"
	assert.Equal(t, "g", r["guid"])
}

func TestValidGUID(t *testing.T) {
	assert.True(t, ValidGUID("0b5c7d4e-3f1a-4c2b-9d8e-7f6a5b4c3d2e"))
	assert.True(t, ValidGUID("0B5C7D4E-3F1A-4C2B-9D8E-7F6A5B4C3D2E"))
	assert.False(t, ValidGUID("{0b5c7d4e-3f1a-4c2b-9d8e-7f6a5b4c3d2e}"))
	assert.False(t, ValidGUID("0b5c7d4e3f1a4c2b9d8e7f6a5b4c3d2e"))
	assert.False(t, ValidGUID("not-a-uuid"))
	assert.False(t, ValidGUID(""))
}
