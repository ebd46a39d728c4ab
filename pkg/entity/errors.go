package entity

import "errors"

// Error kinds shared by the checker, the repairer and the store. Callers match
// them with errors.Is.
var (
	ErrNotAList          = errors.New("entity: top-level value is not a list")
	ErrNotAllDicts       = errors.New("entity: list elements are not all objects")
	ErrEmptyCollection   = errors.New("entity: collection is empty")
	ErrHeterogeneousKeys = errors.New("entity: records disagree on keys")
	ErrSchemaMismatch    = errors.New("entity: keys do not match schema")
	ErrFileNotFound      = errors.New("entity: file not found")
	ErrFileExists        = errors.New("entity: file already exists")
	ErrMalformedJSON     = errors.New("entity: malformed json")
	ErrTypeMismatch      = errors.New("entity: not a mapping")
	ErrKeyMismatch       = errors.New("entity: mapping does not match schema")
	ErrInvalidValue      = errors.New("entity: field has wrong value kind")
	ErrInvalidGUID       = errors.New("entity: invalid guid")
	ErrDuplicateGUID     = errors.New("entity: duplicate guid")
	ErrNotFound          = errors.New("entity: no entity with guid")
)
