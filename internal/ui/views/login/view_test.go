package login_test

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	authin "santacall/internal/modules/auth/port/in"
	"santacall/internal/ui/views/login"
)

type fakeAuth struct{}

func (fakeAuth) SignIn(context.Context, string, string) error { return nil }
func (fakeAuth) SignUp(context.Context, string, string) (authin.SignUpResult, error) {
	return authin.SignUpResult{}, nil
}

func TestEmptyFormIsRejectedLocally(t *testing.T) {
	t.Parallel()
	m := login.New(fakeAuth{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.False(t, m.Busy())
	require.Contains(t, m.View(), "Enter your email and password.")
}

func TestSignInFailureIsShownInline(t *testing.T) {
	t.Parallel()
	m := login.New(fakeAuth{})
	m, _ = m.Update(login.SignInDoneMsg{Err: errors.New("Invalid login credentials")})
	require.Contains(t, m.View(), "Sign In Failed: Invalid login credentials")
}

func TestPendingConfirmationNotice(t *testing.T) {
	t.Parallel()
	m := login.New(fakeAuth{})
	m, _ = m.Update(login.SignUpDoneMsg{Result: authin.SignUpResult{ConfirmationPending: true}})
	require.Contains(t, m.View(), "Check your inbox")

	m.Reset()
	require.NotContains(t, m.View(), "Check your inbox")
}
