package curate

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genemede/gnmd/pkg/conformance"
	"github.com/genemede/gnmd/pkg/entity"
)

type sequentialGUIDs struct {
	n int
}

func (s *sequentialGUIDs) NewGUID() string {
	s.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.n)
}

type constantGUIDs string

func (c constantGUIDs) NewGUID() string {
	return string(c)
}

var fixedNow = time.Date(2023, 6, 15, 11, 13, 44, 123456000, time.Local)

func newTestRepairer(opts ...Option) *Repairer {
	base := []Option{
		WithGUIDSource(&sequentialGUIDs{}),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(append(base, opts...)...)
}

func decode(t *testing.T, s string) []any {
	t.Helper()
	var v []any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestBackfillMissingKeys(t *testing.T) {
	r := newTestRepairer()
	in := decode(t, `[{"name":"a"}]`)

	res := r.BackfillMissingKeys(in)
	require.Empty(t, res.Failures)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, []string{"guid", "datetime", "description", "mtype", "resources", "properties", "custom", "bids"},
		res.Changes[0].Fields)

	want := entity.Record{
		"guid": nil, "datetime": nil, "name": "a", "description": nil, "mtype": nil,
		"resources": []any{}, "properties": []any{}, "custom": []any{}, "bids": []any{},
	}
	if diff := cmp.Diff(want, res.Records[0]); diff != "" {
		t.Errorf("backfilled record mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, map[string]any{"name": "a"}, in[0], "input must not be modified")
	assert.True(t, conformance.Check("", res.Records).Valid())

	t.Run("idempotent", func(t *testing.T) {
		again := r.BackfillMissingKeys(res.Records)
		assert.Empty(t, again.Changes)
		if diff := cmp.Diff(res.Records, again.Records); diff != "" {
			t.Errorf("second run changed records:\n%s", diff)
		}
	})

	t.Run("keeps unknown keys", func(t *testing.T) {
		out := r.BackfillMissingKeys(decode(t, `[{"colour":"red"}]`))
		rec := out.Records[0].(entity.Record)
		assert.Equal(t, "red", rec["colour"])
		assert.Len(t, rec, len(entity.Keys())+1)
	})
}

func TestNormalizeGUIDs(t *testing.T) {
	const valid = "0b5c7d4e-3f1a-4c2b-9d8e-7f6a5b4c3d2e"

	t.Run("replaces malformed and missing", func(t *testing.T) {
		r := newTestRepairer()
		in := decode(t, `[{"name":"a","guid":"asdasd"},{"name":"b"},{"name":"c","guid":12},{"name":"d","guid":"`+valid+`"}]`)

		res := r.NormalizeGUIDs(in)
		require.Len(t, res.Changes, 3)
		for _, v := range res.Records {
			g := v.(entity.Record)[entity.FieldGUID].(string)
			assert.True(t, entity.ValidGUID(g), g)
		}
		assert.Equal(t, valid, res.Records[3].(entity.Record)[entity.FieldGUID])
		assert.Equal(t, "asdasd", res.Changes[0].Old)
		assert.Nil(t, res.Changes[1].Old)

		again := r.NormalizeGUIDs(res.Records)
		assert.Empty(t, again.Changes)
	})

	t.Run("identical malformed guids get distinct values", func(t *testing.T) {
		res := New().NormalizeGUIDs(decode(t, `[{"guid":"not-a-uuid"},{"guid":"not-a-uuid"}]`))
		a := res.Records[0].(entity.Record)[entity.FieldGUID].(string)
		b := res.Records[1].(entity.Record)[entity.FieldGUID].(string)
		assert.True(t, entity.ValidGUID(a))
		assert.True(t, entity.ValidGUID(b))
		assert.NotEqual(t, a, b)
	})

	t.Run("canonicalises other notations", func(t *testing.T) {
		const other = "7e57d004-2b97-4e7a-b45f-5387367791cd"
		res := newTestRepairer().NormalizeGUIDs([]any{
			map[string]any{"guid": "{" + valid + "}"},
			map[string]any{"guid": "urn:uuid:" + other},
			map[string]any{"guid": "7E57D0042B974E7AB45F5387367791CE"},
		})
		assert.Equal(t, valid, res.Records[0].(entity.Record)[entity.FieldGUID])
		assert.Equal(t, other, res.Records[1].(entity.Record)[entity.FieldGUID])
		assert.Equal(t, "7e57d004-2b97-4e7a-b45f-5387367791ce", res.Records[2].(entity.Record)[entity.FieldGUID])
	})

	t.Run("canonical form already taken gets a fresh guid", func(t *testing.T) {
		r := newTestRepairer()
		res := r.NormalizeGUIDs([]any{
			map[string]any{"guid": valid},
			map[string]any{"guid": "{" + valid + "}"},
			map[string]any{"guid": "urn:uuid:" + valid},
		})
		require.Empty(t, res.Failures)
		require.Len(t, res.Changes, 2)
		assert.Equal(t, valid, res.Records[0].(entity.Record)[entity.FieldGUID])
		assert.Equal(t, "00000000-0000-4000-8000-000000000001", res.Records[1].(entity.Record)[entity.FieldGUID])
		assert.Equal(t, "00000000-0000-4000-8000-000000000002", res.Records[2].(entity.Record)[entity.FieldGUID])
		assert.True(t, conformance.CheckGUIDs("", toRecords(res.Records)).Valid())

		again := r.NormalizeGUIDs(res.Records)
		assert.Empty(t, again.Changes)
	})

	t.Run("dedupe", func(t *testing.T) {
		r := newTestRepairer(WithDedupe(true))
		res := r.NormalizeGUIDs([]any{
			map[string]any{"guid": valid},
			map[string]any{"guid": valid},
		})
		require.Len(t, res.Changes, 1)
		assert.Equal(t, 1, res.Changes[0].Index)
		assert.True(t, conformance.CheckGUIDs("", toRecords(res.Records)).Valid())
	})

	t.Run("fresh guid avoids existing ones", func(t *testing.T) {
		r := newTestRepairer(WithGUIDSource(constantGUIDs(valid)))
		res := r.NormalizeGUIDs([]any{
			map[string]any{"guid": valid},
			map[string]any{"guid": "bad"},
		})
		require.Len(t, res.Failures, 1)
		assert.ErrorIs(t, res.Failures[0], entity.ErrDuplicateGUID)
		assert.Equal(t, "bad", res.Records[1].(map[string]any)[entity.FieldGUID])
	})
}

func TestNormalizeDatetimes(t *testing.T) {
	r := newTestRepairer()
	in := decode(t, `[
		{"name":"ok","datetime":"2022-07-15T12:44:55.123456"},
		{"name":"short","datetime":"2022-07-15T12:44:55.1"},
		{"name":"date only","datetime":"2022-01-01"},
		{"name":"null","datetime":null},
		{"name":"missing"},
		{"name":"number","datetime":5}
	]`)

	res := r.NormalizeDatetimes(in)
	require.Empty(t, res.Failures)
	require.Len(t, res.Changes, 4)
	now := entity.FormatDatetime(fixedNow)
	for _, c := range res.Changes {
		assert.Equal(t, now, c.New)
		assert.Contains(t, []int{2, 3, 4, 5}, c.Index)
	}
	for _, v := range res.Records {
		assert.True(t, ValidDatetime(v.(entity.Record)[entity.FieldDatetime].(string)))
	}
	assert.Empty(t, r.NormalizeDatetimes(res.Records).Changes)

	t.Run("lenient", func(t *testing.T) {
		res := newTestRepairer(WithLenientDatetimes(true)).NormalizeDatetimes(decode(t, `[
			{"datetime":"2022-01-01"},
			{"datetime":"garbage"}
		]`))
		assert.Equal(t, "2022-01-01T00:00:00.000000", res.Records[0].(entity.Record)[entity.FieldDatetime])
		assert.Equal(t, entity.FormatDatetime(fixedNow), res.Records[1].(entity.Record)[entity.FieldDatetime])
	})
}

func TestValidDatetime(t *testing.T) {
	tests := map[string]bool{
		"2022-07-15T12:44:55.123456":  true,
		"2022-07-15T12:44:55.1":       true,
		"2022-07-15T12:44:55":         false,
		"2022-07-15T12:44:55.":        false,
		"2022-07-15T12:44:55.1234567": false,
		"2022-13-15T12:44:55.123456":  false,
		"2022-07-15 12:44:55.123456":  false,
		"2022-07-15T12:44:55.12a456":  false,
		"":                            false,
	}
	for in, want := range tests {
		assert.Equal(t, want, ValidDatetime(in), in)
	}
}

func TestRepairer_FailuresAreIsolated(t *testing.T) {
	r := newTestRepairer()
	in := []any{"not a record", map[string]any{"name": "a"}, nil}

	res, err := r.Run(in)
	require.NoError(t, err)
	assert.Len(t, res.Failures, 6, "two bad elements in each of three passes")
	assert.Equal(t, "not a record", res.Records[0])
	assert.Nil(t, res.Records[2])
	assert.True(t, conformance.IsValidCollection([]entity.Record{res.Records[1].(entity.Record)}))
	for _, f := range res.Failures {
		assert.ErrorIs(t, f, entity.ErrTypeMismatch)
	}
}

func TestRepairer_Run(t *testing.T) {
	r := newTestRepairer()
	in := decode(t, `[{"name":"a","guid":"x"},{"name":"b","datetime":"yesterday"}]`)

	res, err := r.Run(in)
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.True(t, conformance.Check("", res.Records).Valid())
	assert.True(t, conformance.CheckGUIDs("", toRecords(res.Records)).Valid())

	again, err := r.Run(res.Records)
	require.NoError(t, err)
	assert.False(t, again.Changed())

	_, err = r.Run(in, Pass("bogus"))
	assert.Error(t, err)

	only, err := r.Run(in, PassGUIDs)
	require.NoError(t, err)
	assert.Len(t, only.Changes, 2)
}

func TestChange_Line(t *testing.T) {
	c := Change{Pass: PassGUIDs, Index: 0, Label: "labs", Fields: []string{"guid"}, Old: "asdasd", New: "g"}
	assert.Equal(t, `record 0 (labs): would set guid -> "g" (was "asdasd")`, c.Line(true))
	assert.Equal(t, `record 0 (labs): set guid -> "g" (was "asdasd")`, c.Line(false))

	k := Change{Pass: PassMissingKeys, Index: 2, Label: "x", Fields: []string{"bids"}}
	assert.Equal(t, "record 2 (x): would add missing keys [bids]", k.Line(true))
}

func TestParsePass(t *testing.T) {
	p, err := ParsePass(" GUIDs ")
	require.NoError(t, err)
	assert.Equal(t, PassGUIDs, p)

	_, err = ParsePass("colour")
	assert.Error(t, err)
}

func toRecords(v []any) []entity.Record {
	out := make([]entity.Record, len(v))
	for i, el := range v {
		out[i], _ = entity.AsRecord(el)
	}
	return out
}
