package curate

import (
	"time"

	"github.com/araddon/dateparse"

	"github.com/genemede/gnmd/pkg/entity"
)

// ValidDatetime reports whether s matches entity.DatetimeLayout: a
// second-resolution timestamp followed by a dot and one to six fractional
// digits.
func ValidDatetime(s string) bool {
	const base = len("2006-01-02T15:04:05")
	if len(s) < base+2 || len(s) > base+7 || s[base] != '.' {
		return false
	}
	for _, c := range s[base+1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	_, err := time.Parse("2006-01-02T15:04:05", s[:base])
	return err == nil
}

// NormalizeDatetimes replaces every datetime that is not in
// entity.DatetimeLayout with the current local time. In lenient mode, a value
// that parses as another date format is re-rendered in the canonical layout
// instead.
func (r *Repairer) NormalizeDatetimes(records []any) *Result {
	return each(PassDatetimes, records, func(i int, rec entity.Record) ([]Change, error) {
		old := rec[entity.FieldDatetime]
		s, isString := old.(string)
		if isString && ValidDatetime(s) {
			return nil, nil
		}

		next := ""
		if isString && r.lenient {
			if t, err := dateparse.ParseLocal(s); err == nil {
				next = entity.FormatDatetime(t.Local())
			}
		}
		if next == "" {
			next = entity.FormatDatetime(r.now())
		}

		rec[entity.FieldDatetime] = next
		return []Change{{
			Pass:   PassDatetimes,
			Index:  i,
			Label:  rec.Label(),
			Fields: []string{entity.FieldDatetime},
			Old:    old,
			New:    next,
		}}, nil
	})
}
