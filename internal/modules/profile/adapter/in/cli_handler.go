package in

import (
	"context"
	"errors"

	profiledto "santacall/internal/modules/profile/dto"
	profilein "santacall/internal/modules/profile/port/in"
	apperrors "santacall/internal/platform/errors"
)

type CLIHandler struct {
	usecase profilein.Usecase
}

func NewCLIHandler(usecase profilein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Show fetches the profile. ErrNotFound means the user has not saved one.
func (h CLIHandler) Show(ctx context.Context) (profiledto.ProfileOutput, error) {
	h.usecase.Fetch(ctx)
	return h.current()
}

func (h CLIHandler) Set(ctx context.Context, firstName, lastName string) (profiledto.ProfileOutput, error) {
	h.usecase.Update(ctx, firstName, lastName)
	return h.current()
}

func (h CLIHandler) current() (profiledto.ProfileOutput, error) {
	st := h.usecase.State()
	if st.ErrorMessage != "" {
		return profiledto.ProfileOutput{}, errors.New(st.ErrorMessage)
	}
	if st.Profile == nil {
		return profiledto.ProfileOutput{}, apperrors.ErrNotFound
	}
	out := profiledto.ProfileOutput{
		ID:       st.Profile.ID.String(),
		Email:    st.Profile.Email,
		Complete: st.Profile.IsComplete(),
	}
	if st.Profile.FirstName != nil {
		out.FirstName = *st.Profile.FirstName
	}
	if st.Profile.LastName != nil {
		out.LastName = *st.Profile.LastName
	}
	return out, nil
}
