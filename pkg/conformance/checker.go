package conformance

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/genemede/gnmd/pkg/entity"
)

// CheckCollection validates that every record has the same key-set as the
// first record, and that this key-set is exactly the Schema. All rules are
// evaluated, so a single call may yield several diagnostics.
func CheckCollection[K entity.Keyed](source string, records []K) *Report {
	r := newReport(source, len(records))
	if len(records) == 0 {
		r.add(-1, entity.ErrEmptyCollection, "collection has no records")
		return r
	}
	checkKeys(r, records, nil)
	return r
}

// checkKeys applies the key rules to records. pos maps each record to its
// index in the source document; nil means records are the whole document.
func checkKeys[K entity.Keyed](r *Report, records []K, pos []int) {
	at := func(i int) int {
		if pos == nil {
			return i
		}
		return pos[i]
	}

	ref := records[0].Keys()
	refSet := make(map[string]struct{}, len(ref))
	for _, k := range ref {
		refSet[k] = struct{}{}
	}

	var wrongCount, wrongKeys []int
	for i, rec := range records[1:] {
		keys := rec.Keys()
		if len(keys) != len(refSet) {
			wrongCount = append(wrongCount, at(i+1))
		}
		if !sameKeys(refSet, keys) {
			wrongKeys = append(wrongKeys, at(i+1))
		}
	}
	if len(wrongCount) > 0 {
		r.add(-1, entity.ErrHeterogeneousKeys,
			"records %s do not have the same number of keys as record %d (%d)", formatIndices(wrongCount), at(0), len(refSet))
	}
	if len(wrongKeys) > 0 {
		r.add(-1, entity.ErrHeterogeneousKeys,
			"records %s do not have the same keys as record %d", formatIndices(wrongKeys), at(0))
	}

	var unknown, missing []string
	for _, k := range ref {
		if !entity.IsField(k) {
			unknown = append(unknown, k)
		}
	}
	for _, k := range entity.Keys() {
		if _, ok := refSet[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		r.add(at(0), entity.ErrSchemaMismatch, "unknown keys %v", unknown)
	}
	if len(missing) > 0 {
		r.add(at(0), entity.ErrSchemaMismatch, "missing keys %v", missing)
	}
}

func sameKeys(ref map[string]struct{}, keys []string) bool {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := ref[k]; !ok {
			return false
		}
		seen[k] = struct{}{}
	}
	return len(seen) == len(ref)
}

// IsValidCollection reports whether CheckCollection finds no violation.
func IsValidCollection[K entity.Keyed](records []K) bool {
	return CheckCollection("", records).Valid()
}

// Check validates a decoded JSON document. The top-level value must be a list
// whose elements are all objects; the objects are then checked with the
// CheckCollection rules even when some elements are not objects. An empty
// list is a valid, empty entity file. Typed entities are accepted wherever
// objects are.
func Check(source string, doc any) *Report {
	switch v := doc.(type) {
	case []any:
		r := newReport(source, len(v))
		records := make([]entity.Keyed, 0, len(v))
		var pos, bad []int
		for i, el := range v {
			if k, ok := asKeyed(el); ok {
				records = append(records, k)
				pos = append(pos, i)
			} else {
				bad = append(bad, i)
			}
		}
		if len(bad) > 0 {
			r.add(-1, entity.ErrNotAllDicts, "elements %s are not objects", formatIndices(bad))
		}
		if len(records) > 0 {
			checkKeys(r, records, pos)
		}
		return r
	case []map[string]any:
		records := make([]entity.Record, len(v))
		for i, m := range v {
			records[i] = m
		}
		return CheckCollection(source, records)
	case []entity.Record:
		return CheckCollection(source, v)
	case []*entity.Entity:
		return CheckCollection(source, v)
	case []entity.Keyed:
		return CheckCollection(source, v)
	default:
		r := newReport(source, 0)
		r.add(-1, entity.ErrNotAList, "top-level value is %s, not a list", describe(doc))
		return r
	}
}

func asKeyed(v any) (entity.Keyed, bool) {
	if rec, ok := entity.AsRecord(v); ok {
		return rec, true
	}
	if e, ok := v.(*entity.Entity); ok && e != nil {
		return e, true
	}
	return nil, false
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any, entity.Record:
		return "an object"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case float64, json.Number:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
