package curate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/genemede/gnmd/pkg/entity"
)

const maxGUIDAttempts = 8

// NormalizeGUIDs gives every record a canonical UUID. Values that parse as a
// UUID in another notation (braces, urn prefix, no hyphens) are rewritten in
// canonical form unless another record already holds that GUID; anything
// else is replaced with a fresh GUID. Fresh GUIDs never collide with one
// already present in the collection.
func (r *Repairer) NormalizeGUIDs(records []any) *Result {
	// Without dedupe every valid GUID is reserved up front; with it, the first
	// holder of a GUID claims it as records are visited.
	seen := make(map[string]struct{}, len(records))
	if !r.dedupe {
		for _, v := range records {
			if rec, ok := entity.AsRecord(v); ok {
				if g, ok := rec[entity.FieldGUID].(string); ok && entity.ValidGUID(g) {
					seen[strings.ToLower(g)] = struct{}{}
				}
			}
		}
	}

	return each(PassGUIDs, records, func(i int, rec entity.Record) ([]Change, error) {
		old := rec[entity.FieldGUID]
		s, isString := old.(string)

		if isString && entity.ValidGUID(s) {
			if !r.dedupe {
				return nil, nil
			}
			if claim(seen, strings.ToLower(s)) {
				return nil, nil
			}
		}

		next := ""
		if isString && !entity.ValidGUID(s) {
			if u, err := uuid.Parse(s); err == nil && claim(seen, u.String()) {
				next = u.String()
			}
		}
		if next == "" {
			g, err := r.freshGUID(seen)
			if err != nil {
				return nil, err
			}
			next = g
		}

		rec[entity.FieldGUID] = next
		return []Change{{
			Pass:   PassGUIDs,
			Index:  i,
			Label:  rec.Label(),
			Fields: []string{entity.FieldGUID},
			Old:    old,
			New:    next,
		}}, nil
	})
}

// claim adds g to seen and reports whether it was free.
func claim(seen map[string]struct{}, g string) bool {
	if _, dup := seen[g]; dup {
		return false
	}
	seen[g] = struct{}{}
	return true
}

func (r *Repairer) freshGUID(seen map[string]struct{}) (string, error) {
	for i := 0; i < maxGUIDAttempts; i++ {
		g := r.guids.NewGUID()
		if !entity.ValidGUID(g) {
			return "", fmt.Errorf("%w: generator produced %q", entity.ErrInvalidGUID, g)
		}
		if claim(seen, strings.ToLower(g)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: no unused guid after %d attempts", entity.ErrDuplicateGUID, maxGUIDAttempts)
}
