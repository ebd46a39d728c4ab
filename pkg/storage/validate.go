package storage

import (
	"fmt"

	"github.com/genemede/gnmd/pkg/conformance"
	"github.com/genemede/gnmd/pkg/entity"
)

// ValidateFile reads path and checks it with conformance.Check. Errors are
// only returned when the file cannot be read or decoded; rule violations are
// in the report.
func ValidateFile(p Provider, path string) (*conformance.Report, error) {
	if !p.Exists(path) {
		return nil, fmt.Errorf("%w: %s", entity.ErrFileNotFound, path)
	}
	doc, err := p.ReadJSON(path)
	if err != nil {
		return nil, err
	}
	return conformance.Check(path, doc), nil
}

// IsValidFile reports whether the file at path is a conformant entity file.
func IsValidFile(p Provider, path string) (bool, error) {
	report, err := ValidateFile(p, path)
	if err != nil {
		return false, err
	}
	return report.Valid(), nil
}

// AuditGUIDs checks the GUIDs of every object record in the file at path with
// conformance.CheckGUIDs. A document that is not a list yields an empty
// report; use ValidateFile for shape problems.
func AuditGUIDs(p Provider, path string) (*conformance.Report, error) {
	doc, err := p.ReadJSON(path)
	if err != nil {
		return nil, err
	}
	arr, _ := doc.([]any)
	records := make([]entity.Record, 0, len(arr))
	for _, v := range arr {
		if rec, ok := entity.AsRecord(v); ok {
			records = append(records, rec)
		}
	}
	return conformance.CheckGUIDs(path, records), nil
}
