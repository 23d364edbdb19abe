package in_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	profilein "santacall/internal/modules/profile/adapter/in"
	profileout "santacall/internal/modules/profile/adapter/out"
	"santacall/internal/modules/profile/service"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/supabase"
	"santacall/internal/platform/supabase/supabasetest"
)

func TestShowAndSet(t *testing.T) {
	t.Parallel()
	srv := supabasetest.NewServer(t)
	srv.AddUser("sam@northpole.test", "cookies")
	client, err := supabase.New(supabase.Options{URL: srv.URL, AnonKey: supabasetest.AnonKey})
	require.NoError(t, err)
	_, err = client.Auth.SignInWithPassword(context.Background(), "sam@northpole.test", "cookies")
	require.NoError(t, err)

	table := profileout.NewSupabaseProfileTable(client)
	handler := profilein.NewCLIHandler(service.NewStore(table, table, nil))

	_, err = handler.Show(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	out, err := handler.Set(context.Background(), "Sam", "Claus")
	require.NoError(t, err)
	require.True(t, out.Complete)
	require.Equal(t, "Sam", out.FirstName)
	require.Equal(t, "Claus", out.LastName)
	require.Equal(t, "sam@northpole.test", out.Email)

	srv.FailTable("profiles", http.StatusInternalServerError)
	_, err = handler.Show(context.Background())
	require.ErrorContains(t, err, "Failed to fetch profile")
}
