package supabase

import (
	"time"

	"github.com/google/uuid"
)

// expiryMargin refreshes the access token slightly before it actually lapses.
const expiryMargin = 30 * time.Second

type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role,omitempty"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return !now.Add(expiryMargin).Before(time.Unix(s.ExpiresAt, 0))
}

type AuthChangeEvent string

const (
	EventInitialSession AuthChangeEvent = "INITIAL_SESSION"
	EventSignedIn       AuthChangeEvent = "SIGNED_IN"
	EventSignedOut      AuthChangeEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthChangeEvent = "TOKEN_REFRESHED"
	EventUserUpdated    AuthChangeEvent = "USER_UPDATED"
)

type AuthStateChange struct {
	Event   AuthChangeEvent
	Session *Session
}

type Provider string

const (
	ProviderApple  Provider = "apple"
	ProviderGoogle Provider = "google"
)

type IDTokenCredentials struct {
	Provider    Provider `json:"provider"`
	IDToken     string   `json:"id_token"`
	Nonce       string   `json:"nonce,omitempty"`
	AccessToken string   `json:"access_token,omitempty"`
}

// SignUpResponse has a nil Session when the project requires e-mail
// confirmation before the first sign-in.
type SignUpResponse struct {
	User    User
	Session *Session
}
