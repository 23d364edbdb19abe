package out

import (
	"context"

	"github.com/google/uuid"

	"santacall/internal/modules/children/domain"
	childrenout "santacall/internal/modules/children/port/out"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/supabase"
)

const childrenTable = "children"

type childRow struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	Age       *int      `json:"age"`
}

type newChildRow struct {
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	Age       int       `json:"age"`
}

type SupabaseChildTable struct {
	client *supabase.Client
}

var (
	_ childrenout.ChildTable = (*SupabaseChildTable)(nil)
	_ childrenout.Identity   = (*SupabaseChildTable)(nil)
)

func NewSupabaseChildTable(client *supabase.Client) *SupabaseChildTable {
	return &SupabaseChildTable{client: client}
}

func (t *SupabaseChildTable) CurrentUserID() (uuid.UUID, bool) {
	u := t.client.Auth.CurrentUser()
	if u == nil {
		return uuid.Nil, false
	}
	return u.ID, true
}

func (t *SupabaseChildTable) List(ctx context.Context) ([]domain.Child, error) {
	var rows []childRow
	q := t.client.Rows(ctx).From(childrenTable).Select("*", "", false)
	if err := t.client.Execute(ctx, q, &rows); err != nil {
		return nil, &apperrors.DataFetchError{Table: childrenTable, Err: err}
	}
	out := make([]domain.Child, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Child(r))
	}
	return out, nil
}

func (t *SupabaseChildTable) Insert(ctx context.Context, c domain.NewChild) (domain.Child, error) {
	var created childRow
	row := newChildRow{UserID: c.UserID, FirstName: c.FirstName, Age: c.Age}
	q := t.client.Rows(ctx).From(childrenTable).Insert(row, false, "", "representation", "").Single()
	if err := t.client.Execute(ctx, q, &created); err != nil {
		return domain.Child{}, &apperrors.DataWriteError{Table: childrenTable, Err: err}
	}
	return domain.Child(created), nil
}
