package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Profile is the per-user identity record. ID matches the session user id.
type Profile struct {
	ID        uuid.UUID
	Email     string
	FirstName *string
	LastName  *string
}

// IsComplete holds iff the first name is present and non-empty.
func (p Profile) IsComplete() bool {
	return p.FirstName != nil && *p.FirstName != ""
}

func (p Profile) DisplayName() string {
	parts := make([]string, 0, 2)
	if p.FirstName != nil && *p.FirstName != "" {
		parts = append(parts, *p.FirstName)
	}
	if p.LastName != nil && *p.LastName != "" {
		parts = append(parts, *p.LastName)
	}
	return strings.Join(parts, " ")
}

// Owner is the signed-in user a profile belongs to.
type Owner struct {
	ID    uuid.UUID
	Email string
}

// State is what the store publishes. A nil Profile means none is loaded or
// the user has not saved one yet.
type State struct {
	Profile      *Profile
	Loading      bool
	ErrorMessage string
}
