package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"santacall/internal/platform/clock"
	apperrors "santacall/internal/platform/errors"
)

type Auth struct {
	c       *Client
	storage SessionStorage
	key     string
	clock   clock.Clock

	mu      sync.Mutex
	session *Session
	loaded  bool

	// refreshMu spends each refresh token at most once.
	refreshMu sync.Mutex

	emitMu    sync.Mutex
	listeners map[int]*listener
	nextID    int
}

type listener struct {
	ctx context.Context
	ch  chan AuthStateChange
}

func newAuth(c *Client, storage SessionStorage, key string, clk clock.Clock) *Auth {
	return &Auth{
		c:         c,
		storage:   storage,
		key:       key,
		clock:     clk,
		listeners: map[int]*listener{},
	}
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return a.grant(ctx, "password", body, EventSignedIn)
}

func (a *Auth) SignInWithIDToken(ctx context.Context, creds IDTokenCredentials) (*Session, error) {
	if creds.IDToken == "" {
		return nil, fmt.Errorf("id token: %w", apperrors.ErrInvalidInput)
	}
	return a.grant(ctx, "id_token", creds, EventSignedIn)
}

func (a *Auth) SignUp(ctx context.Context, email, password string) (SignUpResponse, error) {
	var raw struct {
		Session
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/signup",
		body:   map[string]string{"email": email, "password": password},
	}, &raw)
	if err != nil {
		return SignUpResponse{}, err
	}

	if raw.AccessToken == "" {
		user := User{Email: raw.Email}
		if err := user.ID.UnmarshalText([]byte(raw.ID)); err != nil {
			return SignUpResponse{}, fmt.Errorf("decode signup user id: %w", err)
		}
		return SignUpResponse{User: user}, nil
	}
	session := raw.Session
	a.stamp(&session)
	a.setSession(ctx, &session, EventSignedIn)
	return SignUpResponse{User: session.User, Session: &session}, nil
}

// SignOut always drops the local session; the returned error only reports
// whether the backend revoked the refresh token.
func (a *Auth) SignOut(ctx context.Context) error {
	current := a.current(ctx)
	var remoteErr error
	if current != nil {
		remoteErr = a.c.do(ctx, request{
			method: http.MethodPost,
			path:   authPath + "/logout",
			bearer: current.AccessToken,
		}, nil)
	}
	a.setSession(ctx, nil, EventSignedOut)
	return remoteErr
}

// Session returns the current session, restoring it from storage and
// refreshing an expired access token when needed.
func (a *Auth) Session(ctx context.Context) (*Session, error) {
	current := a.current(ctx)
	if current == nil {
		return nil, apperrors.ErrSessionMissing
	}
	if !current.Expired(a.clock.Now()) {
		return current, nil
	}
	return a.refresh(ctx)
}

// CurrentUser is the user of the in-memory (or persisted) session, without a
// network round trip.
func (a *Auth) CurrentUser() *User {
	current := a.current(context.Background())
	if current == nil {
		return nil
	}
	u := current.User
	return &u
}

// refresh runs one refresh_token grant at a time. A caller that queued behind
// another refresh gets the session it produced. A rejected token signs out
// only if it is still the current one.
func (a *Auth) refresh(ctx context.Context) (*Session, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	current := a.current(ctx)
	if current == nil || current.RefreshToken == "" {
		return nil, apperrors.ErrSessionMissing
	}
	if !current.Expired(a.clock.Now()) {
		return current, nil
	}
	session, err := a.grant(ctx, "refresh_token", map[string]string{"refresh_token": current.RefreshToken}, EventTokenRefreshed)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && a.holds(current.RefreshToken) {
			a.setSession(ctx, nil, EventSignedOut)
		}
		return nil, err
	}
	return session, nil
}

func (a *Auth) holds(refreshToken string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil && a.session.RefreshToken == refreshToken
}

// StateChanges delivers auth events until ctx is done. The first event is
// always INITIAL_SESSION carrying the restored session, or nil.
func (a *Auth) StateChanges(ctx context.Context) <-chan AuthStateChange {
	ch := make(chan AuthStateChange, 16)
	initial := a.current(ctx)

	a.emitMu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = &listener{ctx: ctx, ch: ch}
	ch <- AuthStateChange{Event: EventInitialSession, Session: initial}
	a.emitMu.Unlock()

	go func() {
		<-ctx.Done()
		a.emitMu.Lock()
		delete(a.listeners, id)
		close(ch)
		a.emitMu.Unlock()
	}()
	return ch
}

func (a *Auth) grant(ctx context.Context, grantType string, body any, event AuthChangeEvent) (*Session, error) {
	var session Session
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/token",
		query:  url.Values{"grant_type": {grantType}},
		body:   body,
	}, &session)
	if err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("%s grant returned no access token", grantType)
	}
	a.stamp(&session)
	a.setSession(ctx, &session, event)
	return &session, nil
}

func (a *Auth) stamp(s *Session) {
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = a.clock.Now().Unix() + s.ExpiresIn
	}
}

func (a *Auth) current(ctx context.Context) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		a.loaded = true
		raw, err := a.storage.Load(ctx, a.key)
		switch {
		case err == nil:
			var s Session
			if err := json.Unmarshal(raw, &s); err != nil {
				a.c.log.Warn("discard unreadable persisted session", zap.Error(err))
			} else {
				a.session = &s
			}
		case !errors.Is(err, apperrors.ErrNotFound):
			a.c.log.Warn("load persisted session", zap.Error(err))
		}
	}
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

// setSession swaps the in-memory session and notifies listeners. A storage
// failure only costs persistence across runs, so it is logged.
func (a *Auth) setSession(ctx context.Context, s *Session, event AuthChangeEvent) {
	a.mu.Lock()
	a.loaded = true
	var persistErr error
	if s == nil {
		a.session = nil
		persistErr = a.storage.Remove(ctx, a.key)
	} else {
		cp := *s
		a.session = &cp
		raw, err := json.Marshal(cp)
		if err != nil {
			persistErr = fmt.Errorf("encode session: %w", err)
		} else {
			persistErr = a.storage.Save(ctx, a.key, raw)
		}
	}
	a.mu.Unlock()

	if persistErr != nil {
		a.c.log.Warn("persist session", zap.String("event", string(event)), zap.Error(persistErr))
	}
	a.emit(AuthStateChange{Event: event, Session: s})
}

func (a *Auth) emit(change AuthStateChange) {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()
	for _, l := range a.listeners {
		select {
		case l.ch <- change:
		case <-l.ctx.Done():
		}
	}
}
