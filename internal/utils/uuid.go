package utils

import "github.com/google/uuid"

// IsUUID reports whether s parses as a canonical UUID. Path params are
// checked with this before any store call so malformed ids never reach
// the database.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}

	_, err := uuid.Parse(s)

	return err == nil
}
