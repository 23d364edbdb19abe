package in

import (
	"context"
	"fmt"

	authdto "santacall/internal/modules/auth/dto"
	authin "santacall/internal/modules/auth/port/in"
)

type CLIHandler struct {
	usecase authin.Usecase
}

func NewCLIHandler(usecase authin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Login signs in and waits for the change stream to report the session.
func (h CLIHandler) Login(ctx context.Context, email, password string) (authdto.StatusOutput, error) {
	return h.signInAndWait(ctx, func() error { return h.usecase.SignIn(ctx, email, password) })
}

func (h CLIHandler) LoginWithIDToken(ctx context.Context, provider, idToken, nonce, accessToken string) (authdto.StatusOutput, error) {
	return h.signInAndWait(ctx, func() error {
		switch provider {
		case "apple":
			return h.usecase.SignInWithApple(ctx, idToken, nonce)
		case "google":
			return h.usecase.SignInWithGoogle(ctx, idToken, accessToken)
		default:
			return fmt.Errorf("unsupported provider %q", provider)
		}
	})
}

func (h CLIHandler) SignUp(ctx context.Context, email, password string) (authdto.SignUpOutput, error) {
	result, err := h.usecase.SignUp(ctx, email, password)
	if err != nil {
		return authdto.SignUpOutput{}, err
	}
	return authdto.SignUpOutput{UserID: result.UserID.String(), ConfirmationPending: result.ConfirmationPending}, nil
}

func (h CLIHandler) Logout(ctx context.Context) {
	h.usecase.SignOut(ctx)
}

func (h CLIHandler) Status() authdto.StatusOutput {
	return toStatus(h.usecase.State())
}

func (h CLIHandler) signInAndWait(ctx context.Context, signIn func() error) (authdto.StatusOutput, error) {
	authenticated := make(chan authin.State, 1)
	cancel := h.usecase.Subscribe(func(s authin.State) {
		if !s.Authenticated {
			return
		}
		select {
		case authenticated <- s:
		default:
		}
	})
	defer cancel()

	if err := signIn(); err != nil {
		return authdto.StatusOutput{}, err
	}
	select {
	case s := <-authenticated:
		return toStatus(s), nil
	case <-ctx.Done():
		return authdto.StatusOutput{}, fmt.Errorf("wait for session: %w", ctx.Err())
	}
}

func toStatus(s authin.State) authdto.StatusOutput {
	if !s.Authenticated || s.Session == nil {
		return authdto.StatusOutput{}
	}
	return authdto.StatusOutput{
		Authenticated: true,
		UserID:        s.Session.User.ID.String(),
		Email:         s.Session.User.Email,
		ExpiresAt:     s.Session.ExpiresAt,
	}
}
