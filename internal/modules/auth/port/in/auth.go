package in

import (
	"context"

	"santacall/internal/modules/auth/domain"
)

type Usecase interface {
	Start(ctx context.Context) error
	Stop()
	State() domain.State
	Subscribe(fn func(domain.State)) (cancel func())

	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) (domain.SignUpResult, error)
	SignInWithApple(ctx context.Context, idToken, nonce string) error
	SignInWithGoogle(ctx context.Context, idToken, accessToken string) error
	SignOut(ctx context.Context)
}

// Re-exported for inbound adapters, which only see this package.
type (
	State        = domain.State
	SignUpResult = domain.SignUpResult
)
