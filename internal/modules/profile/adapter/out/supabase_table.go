package out

import (
	"context"

	"github.com/google/uuid"

	"santacall/internal/modules/profile/domain"
	profileout "santacall/internal/modules/profile/port/out"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/supabase"
)

const profilesTable = "profiles"

type profileRow struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
}

type SupabaseProfileTable struct {
	client *supabase.Client
}

var (
	_ profileout.ProfileTable = (*SupabaseProfileTable)(nil)
	_ profileout.Identity     = (*SupabaseProfileTable)(nil)
)

func NewSupabaseProfileTable(client *supabase.Client) *SupabaseProfileTable {
	return &SupabaseProfileTable{client: client}
}

func (t *SupabaseProfileTable) CurrentOwner() (domain.Owner, bool) {
	u := t.client.Auth.CurrentUser()
	if u == nil {
		return domain.Owner{}, false
	}
	return domain.Owner{ID: u.ID, Email: u.Email}, true
}

func (t *SupabaseProfileTable) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var rows []profileRow
	q := t.client.Rows(ctx).From(profilesTable).Select("*", "", false).Eq("id", id.String()).Limit(1, "")
	if err := t.client.Execute(ctx, q, &rows); err != nil {
		return nil, &apperrors.DataFetchError{Table: profilesTable, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := toDomain(rows[0])
	return &p, nil
}

func (t *SupabaseProfileTable) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	var saved profileRow
	row := profileRow{ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName}
	q := t.client.Rows(ctx).From(profilesTable).Upsert(row, "id", "representation", "").Single()
	if err := t.client.Execute(ctx, q, &saved); err != nil {
		return domain.Profile{}, &apperrors.DataWriteError{Table: profilesTable, Err: err}
	}
	return toDomain(saved), nil
}

func toDomain(r profileRow) domain.Profile {
	return domain.Profile{ID: r.ID, Email: r.Email, FirstName: r.FirstName, LastName: r.LastName}
}
