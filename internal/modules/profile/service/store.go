package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"santacall/internal/modules/profile/domain"
	profilein "santacall/internal/modules/profile/port/in"
	profileout "santacall/internal/modules/profile/port/out"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/observe"
)

// Store caches the signed-in user's profile. Failures never return to the
// caller; they are published as ErrorMessage. Concurrent calls are not
// coordinated and the last one to finish wins.
type Store struct {
	table    profileout.ProfileTable
	identity profileout.Identity
	log      *zap.Logger
	state    *observe.Value[domain.State]
}

var _ profilein.Usecase = (*Store)(nil)

func NewStore(table profileout.ProfileTable, identity profileout.Identity, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		table:    table,
		identity: identity,
		log:      log.Named("profile"),
		state:    observe.NewValue(domain.State{}),
	}
}

func (s *Store) State() domain.State {
	return s.state.Get()
}

func (s *Store) Subscribe(fn func(domain.State)) func() {
	return s.state.Subscribe(fn)
}

// Fetch loads the current user's profile. It does nothing when nobody is
// signed in. A failed fetch keeps the profile that was already loaded.
func (s *Store) Fetch(ctx context.Context) {
	owner, ok := s.identity.CurrentOwner()
	if !ok {
		return
	}
	s.state.Update(func(st *domain.State) {
		st.Loading = true
		st.ErrorMessage = ""
	})

	p, err := s.table.FindByID(ctx, owner.ID)
	if err != nil {
		s.log.Warn("fetch profile", zap.Stringer("user_id", owner.ID), zap.Error(err))
		s.state.Update(func(st *domain.State) {
			st.Loading = false
			st.ErrorMessage = "Failed to fetch profile: " + cause(err)
		})
		return
	}
	s.state.Update(func(st *domain.State) {
		st.Profile = p
		st.Loading = false
	})
}

// Update upserts the names keyed by the user id and then re-fetches, so the
// published profile always comes from a select.
func (s *Store) Update(ctx context.Context, firstName, lastName string) {
	owner, ok := s.identity.CurrentOwner()
	if !ok {
		s.state.Update(func(st *domain.State) { st.ErrorMessage = apperrors.ErrUnauthenticated.Error() })
		return
	}
	s.state.Update(func(st *domain.State) {
		st.Loading = true
		st.ErrorMessage = ""
	})

	_, err := s.table.Upsert(ctx, domain.Profile{
		ID:        owner.ID,
		Email:     owner.Email,
		FirstName: &firstName,
		LastName:  &lastName,
	})
	if err != nil {
		s.log.Warn("update profile", zap.Stringer("user_id", owner.ID), zap.Error(err))
		s.state.Update(func(st *domain.State) {
			st.Loading = false
			st.ErrorMessage = "Failed to update profile: " + cause(err)
		})
		return
	}

	s.Fetch(ctx)
	s.state.Update(func(st *domain.State) { st.Loading = false })
}

// Clear drops the cached profile and any status after sign-out.
func (s *Store) Clear() {
	s.state.Set(domain.State{})
}

func cause(err error) string {
	var fetchErr *apperrors.DataFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Err.Error()
	}
	var writeErr *apperrors.DataWriteError
	if errors.As(err, &writeErr) {
		return writeErr.Err.Error()
	}
	return err.Error()
}
