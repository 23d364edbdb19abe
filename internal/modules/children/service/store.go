package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"santacall/internal/modules/children/domain"
	childrenin "santacall/internal/modules/children/port/in"
	childrenout "santacall/internal/modules/children/port/out"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/observe"
)

// Store holds the roster and the selected child. Like the profile store it
// reports failures only through ErrorMessage.
type Store struct {
	table    childrenout.ChildTable
	identity childrenout.Identity
	log      *zap.Logger
	state    *observe.Value[domain.State]
}

var _ childrenin.Usecase = (*Store)(nil)

// NewStore accepts a nil table; every operation is then a no-op.
func NewStore(table childrenout.ChildTable, identity childrenout.Identity, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		table:    table,
		identity: identity,
		log:      log.Named("children"),
		state:    observe.NewValue(domain.State{}),
	}
}

func (s *Store) State() domain.State {
	return s.state.Get()
}

func (s *Store) Subscribe(fn func(domain.State)) func() {
	return s.state.Subscribe(fn)
}

// Fetch replaces the roster. The first child becomes selected only when
// nothing was selected before.
func (s *Store) Fetch(ctx context.Context) {
	if s.table == nil {
		return
	}
	s.state.Update(func(st *domain.State) {
		st.Loading = true
		st.ErrorMessage = ""
	})

	children, err := s.table.List(ctx)
	if err != nil {
		s.log.Warn("fetch children", zap.Error(err))
		s.state.Update(func(st *domain.State) {
			st.Loading = false
			st.ErrorMessage = "Failed to fetch children: " + cause(err)
		})
		return
	}
	s.state.Update(func(st *domain.State) {
		st.Children = children
		if st.SelectedID == nil && len(children) > 0 {
			id := children[0].ID
			st.SelectedID = &id
		}
		st.Loading = false
	})
}

// Create inserts a child owned by the signed-in user and re-fetches the
// whole roster so server-assigned fields show up.
func (s *Store) Create(ctx context.Context, name string, age int) {
	if s.table == nil {
		return
	}
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		s.log.Warn("create child without user")
		s.state.Update(func(st *domain.State) { st.ErrorMessage = apperrors.ErrUnauthenticated.Error() })
		return
	}
	s.log.Info("creating child", zap.Stringer("user_id", userID), zap.String("name", name))
	s.state.Update(func(st *domain.State) { st.ErrorMessage = "" })

	created, err := s.table.Insert(ctx, domain.NewChild{UserID: userID, FirstName: name, Age: age})
	if err != nil {
		s.log.Warn("create child", zap.Error(err))
		s.state.Update(func(st *domain.State) { st.ErrorMessage = "Failed to create child: " + cause(err) })
		return
	}
	s.log.Info("child created", zap.Stringer("child_id", created.ID))
	s.Fetch(ctx)
}

func (s *Store) Select(id uuid.UUID) {
	s.state.Update(func(st *domain.State) { st.SelectedID = &id })
}

func (s *Store) SelectedChild() (domain.Child, bool) {
	return s.state.Get().Selected()
}

// Clear drops the roster and the selection after sign-out.
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
