package in

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	childrendto "santacall/internal/modules/children/dto"
	childrenin "santacall/internal/modules/children/port/in"
	apperrors "santacall/internal/platform/errors"
)

type CLIHandler struct {
	usecase childrenin.Usecase
}

func NewCLIHandler(usecase childrenin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]childrendto.ChildOutput, error) {
	h.usecase.Fetch(ctx)
	return h.roster()
}

func (h CLIHandler) Add(ctx context.Context, name string, age int) ([]childrendto.ChildOutput, error) {
	name = strings.TrimSpace(name)
	if name == "" || age < 0 {
		return nil, fmt.Errorf("%w: name is required and age must not be negative", apperrors.ErrInvalidInput)
	}
	h.usecase.Create(ctx, name, age)
	return h.roster()
}

// Select loads the roster and marks the child with the given id.
func (h CLIHandler) Select(ctx context.Context, rawID string) (childrendto.ChildOutput, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return childrendto.ChildOutput{}, fmt.Errorf("%w: child id: %v", apperrors.ErrInvalidInput, err)
	}
	h.usecase.Fetch(ctx)
	if msg := h.usecase.State().ErrorMessage; msg != "" {
		return childrendto.ChildOutput{}, errors.New(msg)
	}
	h.usecase.Select(id)
	c, ok := h.usecase.SelectedChild()
	if !ok {
		return childrendto.ChildOutput{}, fmt.Errorf("child %s: %w", rawID, apperrors.ErrNotFound)
	}
	return childrendto.ChildOutput{ID: c.ID.String(), FirstName: c.FirstName, Age: c.Age, Selected: true}, nil
}

func (h CLIHandler) roster() ([]childrendto.ChildOutput, error) {
	st := h.usecase.State()
	if st.ErrorMessage != "" {
		return nil, errors.New(st.ErrorMessage)
	}
	out := make([]childrendto.ChildOutput, 0, len(st.Children))
	for _, c := range st.Children {
		out = append(out, childrendto.ChildOutput{
			ID:        c.ID.String(),
			FirstName: c.FirstName,
			Age:       c.Age,
			Selected:  st.SelectedID != nil && *st.SelectedID == c.ID,
		})
	}
	return out, nil
}
