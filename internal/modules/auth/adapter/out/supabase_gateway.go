package out

import (
	"context"
	"errors"
	"fmt"
	"time"

	"santacall/internal/modules/auth/domain"
	authout "santacall/internal/modules/auth/port/out"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/supabase"
)

type SupabaseGateway struct {
	auth *supabase.Auth
}

func NewSupabaseGateway(client *supabase.Client) authout.Gateway {
	return &SupabaseGateway{auth: client.Auth}
}

func (g *SupabaseGateway) SignInWithPassword(ctx context.Context, email, password string) error {
	_, err := g.auth.SignInWithPassword(ctx, email, password)
	return mapAuthError(err)
}

func (g *SupabaseGateway) SignUp(ctx context.Context, email, password string) (domain.SignUpResult, error) {
	resp, err := g.auth.SignUp(ctx, email, password)
	if err != nil {
		return domain.SignUpResult{}, mapAuthError(err)
	}
	return domain.SignUpResult{UserID: resp.User.ID, ConfirmationPending: resp.Session == nil}, nil
}

func (g *SupabaseGateway) SignInWithIDToken(ctx context.Context, provider domain.Provider, idToken, nonce, accessToken string) error {
	_, err := g.auth.SignInWithIDToken(ctx, supabase.IDTokenCredentials{
		Provider:    supabase.Provider(provider),
		IDToken:     idToken,
		Nonce:       nonce,
		AccessToken: accessToken,
	})
	return mapAuthError(err)
}

func (g *SupabaseGateway) SignOut(ctx context.Context) error {
	return g.auth.SignOut(ctx)
}

func (g *SupabaseGateway) Session(ctx context.Context) (*domain.Session, error) {
	s, err := g.auth.Session(ctx)
	if err != nil {
		return nil, err
	}
	return toDomain(s), nil
}

func (g *SupabaseGateway) Changes(ctx context.Context) <-chan domain.Change {
	in := g.auth.StateChanges(ctx)
	out := make(chan domain.Change, cap(in))
	go func() {
		defer close(out)
		for change := range in {
			out <- domain.Change{Event: eventNames[change.Event], Session: toDomain(change.Session)}
		}
	}()
	return out
}

var eventNames = map[supabase.AuthChangeEvent]domain.Event{
	supabase.EventInitialSession: domain.EventInitialSession,
	supabase.EventSignedIn:       domain.EventSignedIn,
	supabase.EventSignedOut:      domain.EventSignedOut,
	supabase.EventTokenRefreshed: domain.EventTokenRefreshed,
	supabase.EventUserUpdated:    domain.EventUserUpdated,
}

func toDomain(s *supabase.Session) *domain.Session {
	if s == nil {
		return nil
	}
	out := &domain.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         domain.User{ID: s.User.ID, Email: s.User.Email},
	}
	if s.ExpiresAt > 0 {
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	}
	return out
}

func mapAuthError(err error) error {
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "email_not_confirmed" {
		return fmt.Errorf("%w: %w", apperrors.ErrConfirmationPending, err)
	}
	return err
}
