package in

import (
	"context"

	"santacall/internal/modules/profile/domain"
)

type Usecase interface {
	Fetch(ctx context.Context)
	Update(ctx context.Context, firstName, lastName string)
	Clear()
	State() domain.State
	Subscribe(fn func(domain.State)) (cancel func())
}

type (
	State   = domain.State
	Profile = domain.Profile
)
