package pkguid

import "github.com/google/uuid"

// UUID generates RFC 4122 UUID strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new time-ordered (version 7) UUID string.
func (u *UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsUUID reports whether s is a canonical UUID string such as the ones
// Generate returns.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
