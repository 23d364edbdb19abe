package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"santacall/internal/modules/auth/domain"
	authin "santacall/internal/modules/auth/port/in"
	authout "santacall/internal/modules/auth/port/out"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/observe"
)

// Holder owns the current session and the authenticated flag. Sign-in
// results are never applied directly: the published state follows the
// gateway's change stream, except for sign-out which clears locally too.
type Holder struct {
	gateway authout.Gateway
	log     *zap.Logger
	state   *observe.Value[domain.State]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ authin.Usecase = (*Holder)(nil)

func NewHolder(gateway authout.Gateway, log *zap.Logger) *Holder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Holder{
		gateway: gateway,
		log:     log.Named("auth"),
		state:   observe.NewValue(domain.State{}),
	}
}

// Start subscribes to the change stream for the life of the process and
// restores a persisted session. Calling it twice is a no-op.
func (h *Holder) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.cancel != nil {
		h.mu.Unlock()
		return nil
	}
	listenCtx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan struct{})
	changes := h.gateway.Changes(listenCtx)
	h.mu.Unlock()

	go h.listen(changes)

	session, err := h.gateway.Session(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSessionMissing) {
			h.log.Warn("restore session", zap.Error(err))
		}
		h.state.Set(domain.State{})
		return nil
	}
	h.state.Set(domain.State{Session: session, Authenticated: true})
	return nil
}

// Stop ends the change listener and waits for it to drain.
func (h *Holder) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel = nil
	h.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (h *Holder) State() domain.State {
	return h.state.Get()
}

func (h *Holder) Subscribe(fn func(domain.State)) func() {
	return h.state.Subscribe(fn)
}

func (h *Holder) SignIn(ctx context.Context, email, password string) error {
	h.log.Info("attempting sign in", zap.String("email", email))
	if err := h.gateway.SignInWithPassword(ctx, email, password); err != nil {
		h.log.Warn("sign in failed", zap.String("email", email), zap.Error(err))
		return &apperrors.AuthenticationError{Op: "sign in", Err: err}
	}
	h.log.Info("sign in successful", zap.String("email", email))
	return nil
}

func (h *Holder) SignUp(ctx context.Context, email, password string) (domain.SignUpResult, error) {
	h.log.Info("attempting sign up", zap.String("email", email))
	result, err := h.gateway.SignUp(ctx, email, password)
	if err != nil {
		h.log.Warn("sign up failed", zap.String("email", email), zap.Error(err))
		return domain.SignUpResult{}, &apperrors.AuthenticationError{Op: "sign up", Err: err}
	}
	h.log.Info("sign up successful", zap.String("user_id", result.UserID.String()))
	if result.ConfirmationPending {
		h.log.Warn("session is nil, email confirmation might be required", zap.String("email", email))
	}
	return result, nil
}

func (h *Holder) SignInWithApple(ctx context.Context, idToken, nonce string) error {
	if err := h.gateway.SignInWithIDToken(ctx, domain.ProviderApple, idToken, nonce, ""); err != nil {
		h.log.Warn("apple sign in failed", zap.Error(err))
		return &apperrors.AuthenticationError{Op: "sign in with apple", Err: err}
	}
	return nil
}

func (h *Holder) SignInWithGoogle(ctx context.Context, idToken, accessToken string) error {
	if err := h.gateway.SignInWithIDToken(ctx, domain.ProviderGoogle, idToken, "", accessToken); err != nil {
		h.log.Warn("google sign in failed", zap.Error(err))
		return &apperrors.AuthenticationError{Op: "sign in with google", Err: err}
	}
	return nil
}

// SignOut is best effort: local state is cleared whatever the backend says.
func (h *Holder) SignOut(ctx context.Context) {
	if err := h.gateway.SignOut(ctx); err != nil {
		h.log.Warn("backend sign out failed", zap.Error(err))
	}
	h.state.Set(domain.State{})
}

func (h *Holder) listen(changes <-chan domain.Change) {
	defer close(h.done)
	for change := range changes {
		h.apply(change)
	}
}

func (h *Holder) apply(change domain.Change) {
	switch change.Event {
	case domain.EventSignedIn, domain.EventTokenRefreshed, domain.EventUserUpdated, domain.EventInitialSession:
		if change.Session == nil {
			return
		}
		h.state.Set(domain.State{Session: change.Session, Authenticated: true})
	case domain.EventSignedOut:
		h.state.Set(domain.State{})
	}
}
