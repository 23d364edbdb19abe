package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"santacall/internal/modules/children/domain"
)

func TestSelectedResolvesWeakReference(t *testing.T) {
	t.Parallel()
	alex := domain.Child{ID: uuid.New(), FirstName: "Alex"}
	st := domain.State{Children: []domain.Child{alex}}

	_, ok := st.Selected()
	require.False(t, ok)

	st.SelectedID = &alex.ID
	got, ok := st.Selected()
	require.True(t, ok)
	require.Equal(t, alex, got)

	gone := uuid.New()
	st.SelectedID = &gone
	_, ok = st.Selected()
	require.False(t, ok)
}
