package out

import (
	"context"

	"santacall/internal/modules/auth/domain"
)

// Gateway is the backend's authentication API. Successful sign-ins are
// announced on Changes; callers must not rely on return values for state.
type Gateway interface {
	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) (domain.SignUpResult, error)
	SignInWithIDToken(ctx context.Context, provider domain.Provider, idToken, nonce, accessToken string) error
	SignOut(ctx context.Context) error
	// Session returns the persisted session or apperrors.ErrSessionMissing.
	Session(ctx context.Context) (*domain.Session, error)
	Changes(ctx context.Context) <-chan domain.Change
}
