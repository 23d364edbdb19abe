package out

import (
	"context"

	"github.com/google/uuid"

	"santacall/internal/modules/profile/domain"
)

// Identity reports the signed-in user without a network round trip.
type Identity interface {
	CurrentOwner() (domain.Owner, bool)
}

type ProfileTable interface {
	// FindByID returns nil, nil when the user has no profile row yet.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error)
}
