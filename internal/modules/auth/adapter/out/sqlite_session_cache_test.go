package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	authout "santacall/internal/modules/auth/adapter/out"
	"santacall/internal/platform/clock"
	apperrors "santacall/internal/platform/errors"
)

func TestSQLiteSessionCacheRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache, err := authout.OpenSQLiteSessionCache(filepath.Join(t.TempDir(), "nested", "santacall.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	_, err = cache.Load(ctx, "sb-demo-auth-token")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, cache.Save(ctx, "sb-demo-auth-token", []byte(`{"access_token":"a"}`)))
	require.NoError(t, cache.Save(ctx, "sb-demo-auth-token", []byte(`{"access_token":"b"}`)))
	got, err := cache.Load(ctx, "sb-demo-auth-token")
	require.NoError(t, err)
	require.JSONEq(t, `{"access_token":"b"}`, string(got))

	require.NoError(t, cache.Remove(ctx, "sb-demo-auth-token"))
	require.NoError(t, cache.Remove(ctx, "sb-demo-auth-token"))
	_, err = cache.Load(ctx, "sb-demo-auth-token")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSQLiteSessionCacheWrapsDriverErrors(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS auth_sessions").WillReturnResult(sqlmock.NewResult(0, 0))
	cache, err := authout.NewSQLiteSessionCache(context.Background(), db, nil)
	require.NoError(t, err)

	diskFull := errors.New("disk full")
	mock.ExpectQuery("SELECT payload FROM auth_sessions").WithArgs("k").WillReturnError(diskFull)
	_, err = cache.Load(context.Background(), "k")
	require.ErrorIs(t, err, diskFull)
	require.ErrorContains(t, err, "load session")

	mock.ExpectExec("INSERT INTO auth_sessions").WithArgs("k", []byte("v"), sqlmock.AnyArg()).WillReturnError(diskFull)
	require.ErrorContains(t, cache.Save(context.Background(), "k", []byte("v")), "save session")

	mock.ExpectExec("DELETE FROM auth_sessions").WithArgs("k").WillReturnError(diskFull)
	require.ErrorContains(t, cache.Remove(context.Background(), "k"), "remove session")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSessionCacheSchemaFailure(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only"))
	_, err = authout.NewSQLiteSessionCache(context.Background(), db, nil)
	require.ErrorContains(t, err, "create auth_sessions table")
}

func TestSQLiteSessionCacheStampsInjectedClock(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, time.December, 24, 23, 0, 0, 0, time.UTC)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS auth_sessions").WillReturnResult(sqlmock.NewResult(0, 0))
	cache, err := authout.NewSQLiteSessionCache(context.Background(), db, clock.Fixed(now))
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO auth_sessions").
		WithArgs("k", []byte("v"), "2025-12-24T23:00:00Z").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, cache.Save(context.Background(), "k", []byte("v")))
	require.NoError(t, mock.ExpectationsWereMet())
}
