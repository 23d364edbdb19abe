package out_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	profileout "santacall/internal/modules/profile/adapter/out"
	"santacall/internal/modules/profile/domain"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/supabase"
	"santacall/internal/platform/supabase/supabasetest"
)

func signedInTable(t *testing.T) (*profileout.SupabaseProfileTable, *supabasetest.Server, uuid.UUID) {
	t.Helper()
	srv := supabasetest.NewServer(t)
	id := srv.AddUser("sam@northpole.test", "cookies")
	client, err := supabase.New(supabase.Options{URL: srv.URL, AnonKey: supabasetest.AnonKey})
	require.NoError(t, err)
	_, err = client.Auth.SignInWithPassword(context.Background(), "sam@northpole.test", "cookies")
	require.NoError(t, err)
	return profileout.NewSupabaseProfileTable(client), srv, id
}

func TestCurrentOwnerFollowsSession(t *testing.T) {
	t.Parallel()
	srv := supabasetest.NewServer(t)
	client, err := supabase.New(supabase.Options{URL: srv.URL, AnonKey: supabasetest.AnonKey})
	require.NoError(t, err)
	table := profileout.NewSupabaseProfileTable(client)

	_, ok := table.CurrentOwner()
	require.False(t, ok)

	id := srv.AddUser("sam@northpole.test", "cookies")
	_, err = client.Auth.SignInWithPassword(context.Background(), "sam@northpole.test", "cookies")
	require.NoError(t, err)
	owner, ok := table.CurrentOwner()
	require.True(t, ok)
	require.Equal(t, domain.Owner{ID: id, Email: "sam@northpole.test"}, owner)
}

func TestFindByIDReturnsNilWithoutRow(t *testing.T) {
	t.Parallel()
	table, _, id := signedInTable(t)
	p, err := table.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestUpsertThenFind(t *testing.T) {
	t.Parallel()
	table, srv, id := signedInTable(t)
	first, last := "Sam", "Claus"

	saved, err := table.Upsert(context.Background(), domain.Profile{ID: id, Email: "sam@northpole.test", FirstName: &first, LastName: &last})
	require.NoError(t, err)
	require.Equal(t, id, saved.ID)

	renamed := "Samantha"
	_, err = table.Upsert(context.Background(), domain.Profile{ID: id, Email: "sam@northpole.test", FirstName: &renamed, LastName: &last})
	require.NoError(t, err)

	p, err := table.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Samantha", *p.FirstName)

	row, ok := srv.Profile(id)
	require.True(t, ok)
	require.Equal(t, "Claus", *row.LastName)
}

func TestUpsertForAnotherUserIsRejected(t *testing.T) {
	t.Parallel()
	table, _, _ := signedInTable(t)
	name := "Mallory"

	_, err := table.Upsert(context.Background(), domain.Profile{ID: uuid.New(), FirstName: &name})
	var writeErr *apperrors.DataWriteError
	require.ErrorAs(t, err, &writeErr)
	require.Equal(t, "profiles", writeErr.Table)
}

func TestFindByIDWrapsBackendFailure(t *testing.T) {
	t.Parallel()
	table, srv, id := signedInTable(t)
	srv.FailTable("profiles", http.StatusServiceUnavailable)

	_, err := table.FindByID(context.Background(), id)
	var fetchErr *apperrors.DataFetchError
	require.ErrorAs(t, err, &fetchErr)
	require.True(t, supabase.IsCode(err, "XX000"))
}
