// Package conformance checks that a collection of records matches the entity
// Schema. Violations are reported as diagnostics rather than returned as a
// single error, so one pass over a file surfaces every broken rule.
package conformance

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic is one violated rule. It unwraps to one of the entity sentinel
// errors.
type Diagnostic struct {
	Source  string // file or collection the record came from
	Index   int    // offending record, or -1 when the rule is collection-wide
	Err     error
	Message string
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	if d.Source != "" {
		b.WriteString(d.Source)
		b.WriteString(": ")
	}
	if d.Index >= 0 {
		fmt.Fprintf(&b, "record %d: ", d.Index)
	}
	b.WriteString(d.Message)
	return b.String()
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Report collects the diagnostics produced by one check.
type Report struct {
	Source      string
	Records     int
	Diagnostics []Diagnostic
}

func newReport(source string, n int) *Report {
	return &Report{Source: source, Records: n}
}

func (r *Report) add(index int, err error, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Source:  r.Source,
		Index:   index,
		Err:     err,
		Message: fmt.Sprintf(format, args...),
	})
}

// Valid reports whether no rule was violated.
func (r *Report) Valid() bool {
	return len(r.Diagnostics) == 0
}

// Has reports whether any diagnostic matches target.
func (r *Report) Has(target error) bool {
	for _, d := range r.Diagnostics {
		if errors.Is(d, target) {
			return true
		}
	}
	return false
}

// Err joins all diagnostics into one error, or returns nil for a valid report.
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// Lines renders one human-readable line per diagnostic.
func (r *Report) Lines() []string {
	lines := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		lines[i] = d.Error()
	}
	return lines
}

// Merge appends the diagnostics of other to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

const maxListedIndices = 10

func formatIndices(idx []int) string {
	if len(idx) <= maxListedIndices {
		return fmt.Sprint(idx)
	}
	return fmt.Sprintf("%v (+%d more)", idx[:maxListedIndices], len(idx)-maxListedIndices)
}
