package curate

import (
	"fmt"
	"strings"
)

// Pass names a repair pass.
type Pass string

const (
	PassMissingKeys Pass = "keys"
	PassGUIDs       Pass = "guids"
	PassDatetimes   Pass = "datetimes"
)

// AllPasses returns every pass in the order Run applies them by default.
func AllPasses() []Pass {
	return []Pass{PassMissingKeys, PassGUIDs, PassDatetimes}
}

// ParsePass converts a pass name into a Pass.
func ParsePass(s string) (Pass, error) {
	switch p := Pass(strings.ToLower(strings.TrimSpace(s))); p {
	case PassMissingKeys, PassGUIDs, PassDatetimes:
		return p, nil
	default:
		return "", fmt.Errorf("curate: unknown pass %q (must be 'keys', 'guids' or 'datetimes')", s)
	}
}

// Change records one modification to one record.
type Change struct {
	Pass   Pass
	Index  int
	Label  string
	Fields []string // keys inserted, or the single field rewritten
	Old    any
	New    any
}

// Line renders the change as a one-line message. With dryRun set the message
// is phrased as a change that would be made.
func (c Change) Line(dryRun bool) string {
	prefix := fmt.Sprintf("record %d (%s)", c.Index, c.Label)
	if c.Pass == PassMissingKeys {
		verb := "added missing keys"
		if dryRun {
			verb = "would add missing keys"
		}
		return fmt.Sprintf("%s: %s %v", prefix, verb, c.Fields)
	}

	verb := "set"
	if dryRun {
		verb = "would set"
	}
	field := ""
	if len(c.Fields) > 0 {
		field = c.Fields[0]
	}
	return fmt.Sprintf("%s: %s %s -> %s (was %s)", prefix, verb, field, formatValue(c.New), formatValue(c.Old))
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "unset"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Failure is a record a pass could not repair. The record is left as-is.
type Failure struct {
	Pass  Pass
	Index int
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s pass: record %d: %v", f.Pass, f.Index, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of one or more passes.
type Result struct {
	Records  []any
	Changes  []Change
	Failures []Failure
}

// Changed reports whether any record was modified.
func (r *Result) Changed() bool {
	return len(r.Changes) > 0
}

// Lines renders one line per change.
func (r *Result) Lines(dryRun bool) []string {
	lines := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		lines[i] = c.Line(dryRun)
	}
	return lines
}

func (r *Result) merge(next *Result) {
	r.Records = next.Records
	r.Changes = append(r.Changes, next.Changes...)
	r.Failures = append(r.Failures, next.Failures...)
}
