package out

import (
	"context"

	"github.com/google/uuid"

	"santacall/internal/modules/children/domain"
)

type Identity interface {
	CurrentUserID() (uuid.UUID, bool)
}

// ChildTable lists the caller's children; the backend filters by owner.
type ChildTable interface {
	List(ctx context.Context) ([]domain.Child, error)
	Insert(ctx context.Context, c domain.NewChild) (domain.Child, error)
}
