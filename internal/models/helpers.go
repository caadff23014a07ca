package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateID generates a short prefixed identifier, e.g. "ord-1a2b3c4d".
func GenerateID(prefix string) string {
	id := uuid.New().String()

	return fmt.Sprintf("%s-%s", prefix, id[:8])
}

// GetCurrentTime returns the current time in UTC.
func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// SameMonth reports whether a and b fall in the same calendar month of
// the same year. Used for the quota counter rollover.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
