// Package navigation decides which top-level screen is shown and runs the
// side effects tied to authentication transitions.
package navigation

import (
	"context"
	"sync"

	"go.uber.org/zap"

	authin "santacall/internal/modules/auth/port/in"
	profilein "santacall/internal/modules/profile/port/in"
	"santacall/internal/platform/observe"
)

type Screen int

const (
	ScreenLogin Screen = iota
	ScreenProfileSetup
	ScreenHome
)

func (s Screen) String() string {
	switch s {
	case ScreenProfileSetup:
		return "profile-setup"
	case ScreenHome:
		return "home"
	default:
		return "login"
	}
}

// Resolve maps auth and profile state to a screen.
func Resolve(authenticated bool, profile *profilein.Profile) Screen {
	switch {
	case !authenticated:
		return ScreenLogin
	case profile == nil || !profile.IsComplete():
		return ScreenProfileSetup
	default:
		return ScreenHome
	}
}

type AuthState interface {
	State() authin.State
	Subscribe(fn func(authin.State)) (cancel func())
}

type ProfileStore interface {
	Fetch(ctx context.Context)
	Clear()
	State() profilein.State
	Subscribe(fn func(profilein.State)) (cancel func())
}

// RosterStore is cleared on sign-out so the next user starts without the
// previous roster or selection.
type RosterStore interface {
	Clear()
}

// Router fetches the profile once per transition into the authenticated
// state, including an already authenticated start, and clears the profile
// and roster on the way out.
type Router struct {
	auth     AuthState
	profile  ProfileStore
	children RosterStore
	log      *zap.Logger
	screen  *observe.Value[Screen]

	mu            sync.Mutex
	authenticated bool
	started       bool
	ctx           context.Context
	cancel        context.CancelFunc
	unsubscribe   []func()
	inflight      sync.WaitGroup

	refreshMu sync.Mutex
}

// NewRouter accepts a nil children store.
func NewRouter(auth AuthState, profile ProfileStore, children RosterStore, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		auth:     auth,
		profile:  profile,
		children: children,
		log:      log.Named("router"),
		screen:   observe.NewValue(ScreenLogin),
	}
}

func (r *Router) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.mu.Unlock()

	unsubAuth := r.auth.Subscribe(func(s authin.State) { r.onAuth(s.Authenticated) })
	unsubProfile := r.profile.Subscribe(func(profilein.State) { r.refresh() })

	r.mu.Lock()
	r.unsubscribe = []func(){unsubAuth, unsubProfile}
	r.mu.Unlock()

	r.onAuth(r.auth.State().Authenticated)
}

// Stop detaches from the stores and waits for in-flight fetches.
func (r *Router) Stop() {
	r.mu.Lock()
	unsub, cancel := r.unsubscribe, r.cancel
	r.unsubscribe, r.started = nil, false
	r.mu.Unlock()
	for _, fn := range unsub {
		fn()
	}
	if cancel != nil {
		cancel()
	}
	r.inflight.Wait()
}

func (r *Router) Screen() Screen {
	return r.screen.Get()
}

func (r *Router) Subscribe(fn func(Screen)) func() {
	return r.screen.Subscribe(fn)
}

func (r *Router) onAuth(authenticated bool) {
	r.mu.Lock()
	was := r.authenticated
	r.authenticated = authenticated
	ctx := r.ctx
	r.mu.Unlock()

	switch {
	case authenticated && !was:
		r.log.Debug("authenticated, fetching profile")
		r.inflight.Add(1)
		go func() {
			defer r.inflight.Done()
			r.profile.Fetch(ctx)
		}()
	case !authenticated && was:
		r.log.Debug("signed out, clearing profile and roster")
		r.profile.Clear()
		if r.children != nil {
			r.children.Clear()
		}
	}
	r.refresh()
}

func (r *Router) refresh() {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	next := Resolve(r.auth.State().Authenticated, r.profile.State().Profile)
	if next == r.screen.Get() {
		return
	}
	r.log.Info("screen change", zap.Stringer("screen", next))
	r.screen.Set(next)
}
