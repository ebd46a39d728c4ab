package curate

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/genemede/gnmd/pkg/entity"
)

// GUIDSource generates fresh GUIDs.
type GUIDSource interface {
	NewGUID() string
}

// UUIDSource generates random version 4 UUIDs.
type UUIDSource struct{}

func (UUIDSource) NewGUID() string {
	return uuid.NewString()
}

// Repairer runs repair passes over record collections.
type Repairer struct {
	guids   GUIDSource
	now     func() time.Time
	lenient bool
	dedupe  bool
}

// Option configures a Repairer.
type Option func(*Repairer)

// WithGUIDSource replaces the random UUID generator.
func WithGUIDSource(src GUIDSource) Option {
	return func(r *Repairer) {
		r.guids = src
	}
}

// WithClock replaces time.Now as the source of replacement timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repairer) {
		r.now = now
	}
}

// WithLenientDatetimes makes the datetime pass re-render values that parse as
// some other date format instead of replacing them with the current time.
func WithLenientDatetimes(on bool) Option {
	return func(r *Repairer) {
		r.lenient = on
	}
}

// WithDedupe makes the GUID pass replace a valid GUID already held by an
// earlier record.
func WithDedupe(on bool) Option {
	return func(r *Repairer) {
		r.dedupe = on
	}
}

// New creates a Repairer.
func New(opts ...Option) *Repairer {
	r := &Repairer{
		guids: UUIDSource{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies the given passes in order, each to the output of the previous
// one. With no passes, AllPasses is used.
func (r *Repairer) Run(records []any, passes ...Pass) (*Result, error) {
	if len(passes) == 0 {
		passes = AllPasses()
	}
	out := &Result{Records: records}
	for _, p := range passes {
		var next *Result
		switch p {
		case PassMissingKeys:
			next = r.BackfillMissingKeys(out.Records)
		case PassGUIDs:
			next = r.NormalizeGUIDs(out.Records)
		case PassDatetimes:
			next = r.NormalizeDatetimes(out.Records)
		default:
			return nil, fmt.Errorf("curate: unknown pass %q", p)
		}
		out.merge(next)
	}
	return out, nil
}

// each copies records, hands every object to fn as a private clone and
// collects what fn reports. Non-object elements are recorded as failures and
// copied through unchanged.
func each(pass Pass, records []any, fn func(i int, rec entity.Record) ([]Change, error)) *Result {
	res := &Result{Records: make([]any, len(records))}
	for i, v := range records {
		rec, ok := entity.AsRecord(v)
		if !ok {
			res.Records[i] = v
			res.Failures = append(res.Failures, Failure{
				Pass:  pass,
				Index: i,
				Err:   fmt.Errorf("%w: got %T", entity.ErrTypeMismatch, v),
			})
			continue
		}
		clone := rec.Clone()
		changes, err := fn(i, clone)
		if err != nil {
			res.Records[i] = v
			res.Failures = append(res.Failures, Failure{Pass: pass, Index: i, Err: err})
			continue
		}
		res.Records[i] = clone
		res.Changes = append(res.Changes, changes...)
	}
	return res
}

// BackfillMissingKeys inserts every Schema key a record lacks, with nil for
// string fields and an empty sequence for sequence fields. Unknown keys are
// kept.
func (r *Repairer) BackfillMissingKeys(records []any) *Result {
	return each(PassMissingKeys, records, func(i int, rec entity.Record) ([]Change, error) {
		var added []string
		for _, k := range entity.Keys() {
			if _, ok := rec[k]; !ok {
				rec[k] = entity.ZeroValue(k)
				added = append(added, k)
			}
		}
		if len(added) == 0 {
			return nil, nil
		}
		return []Change{{Pass: PassMissingKeys, Index: i, Label: rec.Label(), Fields: added}}, nil
	})
}
