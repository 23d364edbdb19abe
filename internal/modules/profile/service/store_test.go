package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"santacall/internal/modules/profile/domain"
	"santacall/internal/modules/profile/service"
	apperrors "santacall/internal/platform/errors"
)

type fakeIdentity struct {
	owner *domain.Owner
}

func (f fakeIdentity) CurrentOwner() (domain.Owner, bool) {
	if f.owner == nil {
		return domain.Owner{}, false
	}
	return *f.owner, true
}

type fakeTable struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]domain.Profile
	findErr   error
	upsertErr error
	finds     int
}

func newFakeTable() *fakeTable {
	return &fakeTable{rows: map[uuid.UUID]domain.Profile{}}
}

func (f *fakeTable) FindByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.findErr != nil {
		return nil, &apperrors.DataFetchError{Table: "profiles", Err: f.findErr}
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeTable) Upsert(_ context.Context, p domain.Profile) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return domain.Profile{}, &apperrors.DataWriteError{Table: "profiles", Err: f.upsertErr}
	}
	f.rows[p.ID] = p
	return p, nil
}

func signedIn() fakeIdentity {
	return fakeIdentity{owner: &domain.Owner{ID: uuid.New(), Email: "sam@northpole.test"}}
}

func TestFetchWithoutUserIsNoop(t *testing.T) {
	t.Parallel()
	table := newFakeTable()
	store := service.NewStore(table, fakeIdentity{}, nil)

	var notified int
	store.Subscribe(func(domain.State) { notified++ })
	store.Fetch(context.Background())

	require.Zero(t, table.finds)
	require.Zero(t, notified)
	require.Equal(t, domain.State{}, store.State())
}

func TestFetchAbsentProfileIsNotAnError(t *testing.T) {
	t.Parallel()
	store := service.NewStore(newFakeTable(), signedIn(), nil)
	store.Fetch(context.Background())

	st := store.State()
	require.Nil(t, st.Profile)
	require.False(t, st.Loading)
	require.Empty(t, st.ErrorMessage)
}

func TestFetchPublishesLoadingWhileInFlight(t *testing.T) {
	t.Parallel()
	store := service.NewStore(newFakeTable(), signedIn(), nil)
	var loading []bool
	store.Subscribe(func(st domain.State) { loading = append(loading, st.Loading) })

	store.Fetch(context.Background())
	require.Equal(t, []bool{true, false}, loading)
}

func TestUpdateUpsertsAndRefetches(t *testing.T) {
	t.Parallel()
	table := newFakeTable()
	id := signedIn()
	store := service.NewStore(table, id, nil)

	store.Update(context.Background(), "Sam", "Claus")

	st := store.State()
	require.Empty(t, st.ErrorMessage)
	require.False(t, st.Loading)
	require.NotNil(t, st.Profile)
	require.True(t, st.Profile.IsComplete())
	require.Equal(t, id.owner.ID, st.Profile.ID)
	require.Equal(t, "sam@northpole.test", st.Profile.Email)
	require.Equal(t, 1, table.finds)
}

func TestUpdateWithoutUserPublishesMessage(t *testing.T) {
	t.Parallel()
	store := service.NewStore(newFakeTable(), fakeIdentity{}, nil)
	store.Update(context.Background(), "Sam", "")
	require.Equal(t, apperrors.ErrUnauthenticated.Error(), store.State().ErrorMessage)
}

func TestUpdateFailurePublishesMessage(t *testing.T) {
	t.Parallel()
	table := newFakeTable()
	table.upsertErr = errors.New("permission denied")
	store := service.NewStore(table, signedIn(), nil)

	store.Update(context.Background(), "Sam", "")

	st := store.State()
	require.Equal(t, "Failed to update profile: permission denied", st.ErrorMessage)
	require.False(t, st.Loading)
	require.Zero(t, table.finds)
}

func TestFetchFailureKeepsLoadedProfile(t *testing.T) {
	t.Parallel()
	table := newFakeTable()
	store := service.NewStore(table, signedIn(), nil)
	store.Update(context.Background(), "Sam", "")
	require.NotNil(t, store.State().Profile)

	table.findErr = errors.New("connection reset")
	store.Fetch(context.Background())

	st := store.State()
	require.Equal(t, "Failed to fetch profile: connection reset", st.ErrorMessage)
	require.NotNil(t, st.Profile)
	require.Equal(t, "Sam", *st.Profile.FirstName)
}

func TestClearDropsProfile(t *testing.T) {
	t.Parallel()
	store := service.NewStore(newFakeTable(), signedIn(), nil)
	store.Update(context.Background(), "Sam", "")
	store.Clear()
	require.Nil(t, store.State().Profile)
}

func TestSuccessfulFetchClearsEarlierFailure(t *testing.T) {
	t.Parallel()
	table := newFakeTable()
	id := signedIn()
	first := "Sam"
	table.rows[id.owner.ID] = domain.Profile{ID: id.owner.ID, FirstName: &first}
	table.findErr = errors.New("connection refused")
	store := service.NewStore(table, id, nil)

	store.Fetch(context.Background())
	require.Equal(t, "Failed to fetch profile: connection refused", store.State().ErrorMessage)

	table.mu.Lock()
	table.findErr = nil
	table.mu.Unlock()
	store.Fetch(context.Background())

	st := store.State()
	require.Empty(t, st.ErrorMessage)
	require.NotNil(t, st.Profile)
	require.Equal(t, "Sam", *st.Profile.FirstName)
}

func TestClearResetsWholeState(t *testing.T) {
	t.Parallel()
	table := newFakeTable()
	table.findErr = errors.New("connection refused")
	store := service.NewStore(table, signedIn(), nil)
	store.Update(context.Background(), "Sam", "")
	require.NotEmpty(t, store.State().ErrorMessage)

	store.Clear()
	require.Equal(t, domain.State{}, store.State())
}
