package home_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	childrenin "santacall/internal/modules/children/port/in"
	"santacall/internal/ui/views/home"
)

type fakeChildren struct {
	state     childrenin.State
	createErr string
	created   []string
}

func (f *fakeChildren) Fetch(context.Context) {}
func (f *fakeChildren) Create(_ context.Context, name string, _ int) {
	f.created = append(f.created, name)
	f.state.ErrorMessage = f.createErr
}
func (f *fakeChildren) Select(id uuid.UUID)     { f.state.SelectedID = &id }
func (f *fakeChildren) State() childrenin.State { return f.state }

type fakeAuth struct{}

func (fakeAuth) SignOut(context.Context) {}

func typeText(m home.Model, text string) home.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func openAndFill(t *testing.T, m home.Model, name, age string) home.Model {
	t.Helper()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	require.True(t, m.Capturing())
	m = typeText(m, name)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	return typeText(m, age)
}

func TestAddChildFormClosesOnSuccess(t *testing.T) {
	t.Parallel()
	children := &fakeChildren{}
	m := openAndFill(t, home.New(children, fakeAuth{}), "Alex", "7")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	created := m.CreateCmd("Alex", 7)()
	require.Equal(t, home.CreatedMsg{}, created)

	m, _ = m.Update(created)
	require.False(t, m.Capturing())
	require.Equal(t, []string{"Alex"}, children.created)
}

func TestAddChildFormStaysOpenOnStoreError(t *testing.T) {
	t.Parallel()
	children := &fakeChildren{createErr: "Failed to create child: offline"}
	m := openAndFill(t, home.New(children, fakeAuth{}), "Alex", "7")

	msg := m.CreateCmd("Alex", 7)()
	require.Equal(t, home.CreatedMsg{ErrorMessage: "Failed to create child: offline"}, msg)
	m.SetState(children.State())
	m, _ = m.Update(msg)
	require.True(t, m.Capturing())
	require.Contains(t, m.View(), "Failed to create child: offline")
}

func TestAddChildFormValidatesInput(t *testing.T) {
	t.Parallel()
	children := &fakeChildren{}
	m := openAndFill(t, home.New(children, fakeAuth{}), "Alex", "")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Contains(t, m.View(), "whole-number age")
	require.Empty(t, children.created)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Capturing())
}
