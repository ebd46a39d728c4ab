// Package curate repairs gnmd record collections.
//
// Three independent passes are provided: missing-key backfill, GUID
// normalisation and datetime normalisation. Each pass is a pure function of
// its input: it returns a new collection together with a change log and a
// list of per-record failures, and never modifies the records it was given.
// Running a pass on its own output produces no further changes.
//
// Persisting a repaired collection is left to the storage package.
package curate
