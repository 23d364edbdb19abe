package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID    uuid.UUID
	Email string
}

// Session is the backend-issued credential bundle. Only the auth module
// creates or replaces it.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// State is what the auth holder publishes.
type State struct {
	Session       *Session
	Authenticated bool
}

type Event string

const (
	EventInitialSession Event = "initial_session"
	EventSignedIn       Event = "signed_in"
	EventSignedOut      Event = "signed_out"
	EventTokenRefreshed Event = "token_refreshed"
	EventUserUpdated    Event = "user_updated"
)

type Change struct {
	Event   Event
	Session *Session
}

type Provider string

const (
	ProviderApple  Provider = "apple"
	ProviderGoogle Provider = "google"
)

type SignUpResult struct {
	UserID              uuid.UUID
	ConfirmationPending bool
}
