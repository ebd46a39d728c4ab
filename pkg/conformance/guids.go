package conformance

import (
	"strings"

	"github.com/genemede/gnmd/pkg/entity"
)

// Valuer exposes field values by name. entity.Record and *entity.Entity both
// implement it.
type Valuer interface {
	Get(name string) any
}

// CheckGUIDs audits the guid field: every record must carry a canonical UUID
// string and no two records may share one. It is separate from
// CheckCollection, which only looks at key-sets.
func CheckGUIDs[V Valuer](source string, records []V) *Report {
	r := newReport(source, len(records))
	first := make(map[string]int, len(records))
	for i, rec := range records {
		switch g := rec.Get(entity.FieldGUID).(type) {
		case nil:
			r.add(i, entity.ErrInvalidGUID, "guid is missing")
		case string:
			if !entity.ValidGUID(g) {
				r.add(i, entity.ErrInvalidGUID, "guid %q is not a canonical uuid", g)
				continue
			}
			key := strings.ToLower(g)
			if j, dup := first[key]; dup {
				r.add(i, entity.ErrDuplicateGUID, "guid %s already used by record %d", g, j)
				continue
			}
			first[key] = i
		default:
			r.add(i, entity.ErrInvalidGUID, "guid is %T, not a string", g)
		}
	}
	return r
}
