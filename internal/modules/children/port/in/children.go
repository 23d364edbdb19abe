package in

import (
	"context"

	"github.com/google/uuid"

	"santacall/internal/modules/children/domain"
)

type Usecase interface {
	Fetch(ctx context.Context)
	Create(ctx context.Context, name string, age int)
	Select(id uuid.UUID)
	SelectedChild() (domain.Child, bool)
	Clear()
	State() domain.State
	Subscribe(fn func(domain.State)) (cancel func())
}

type (
	State = domain.State
	Child = domain.Child
)
