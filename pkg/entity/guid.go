package entity

import "github.com/google/uuid"

// ValidGUID reports whether s is a UUID in canonical 36-character hyphenated form.
func ValidGUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
