package domain

import "github.com/google/uuid"

type Child struct {
	ID        uuid.UUID
	FirstName string
	Age       *int
}

// NewChild is the row written on creation; UserID tags ownership and is not
// part of the client-side model.
type NewChild struct {
	UserID    uuid.UUID
	FirstName string
	Age       int
}

// State is the published roster. SelectedID is a weak reference: it may name
// a child that is no longer in Children.
type State struct {
	Children     []Child
	SelectedID   *uuid.UUID
	Loading      bool
	ErrorMessage string
}

// Selected resolves SelectedID against the roster.
func (s State) Selected() (Child, bool) {
	if s.SelectedID == nil {
		return Child{}, false
	}
	for _, c := range s.Children {
		if c.ID == *s.SelectedID {
			return c, true
		}
	}
	return Child{}, false
}
