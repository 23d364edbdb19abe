package app

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authin "santacall/internal/modules/auth/port/in"
	childrendomain "santacall/internal/modules/children/domain"
	childrenin "santacall/internal/modules/children/port/in"
	profilein "santacall/internal/modules/profile/port/in"
	"santacall/internal/navigation"
	"santacall/internal/platform/observe"
	"santacall/internal/ui/components"
	homeview "santacall/internal/ui/views/home"
)

type fakeAuth struct{ signedOut bool }

func (f *fakeAuth) SignIn(context.Context, string, string) error { return nil }
func (f *fakeAuth) SignUp(context.Context, string, string) (authin.SignUpResult, error) {
	return authin.SignUpResult{}, nil
}
func (f *fakeAuth) SignOut(context.Context) { f.signedOut = true }

type fakeProfile struct{ *observe.Value[profilein.State] }

func (f fakeProfile) Update(context.Context, string, string) {}
func (f fakeProfile) State() profilein.State                { return f.Get() }

type fakeChildren struct {
	*observe.Value[childrenin.State]
	mu      sync.Mutex
	created []string
}

func (f *fakeChildren) Fetch(context.Context) {}
func (f *fakeChildren) Create(_ context.Context, name string, _ int) {
	f.mu.Lock()
	f.created = append(f.created, name)
	f.mu.Unlock()
}
func (f *fakeChildren) Select(id uuid.UUID) {
	f.Update(func(st *childrenin.State) { st.SelectedID = &id })
}
func (f *fakeChildren) State() childrenin.State { return f.Get() }

type fakeRouter struct{ *observe.Value[navigation.Screen] }

func (f fakeRouter) Screen() navigation.Screen { return f.Get() }

func newPorts(screen navigation.Screen) (Ports, *fakeAuth, *fakeChildren, fakeRouter) {
	auth := &fakeAuth{}
	children := &fakeChildren{Value: observe.NewValue(childrenin.State{})}
	router := fakeRouter{observe.NewValue(screen)}
	return Ports{
		Auth:     auth,
		Profile:  fakeProfile{observe.NewValue(profilein.State{})},
		Children: children,
		Router:   router,
	}, auth, children, router
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRendersRouterScreen(t *testing.T) {
	t.Parallel()
	ports, _, _, _ := newPorts(navigation.ScreenLogin)
	m := NewModel(ports)
	require.Contains(t, m.View(), "Sign In")

	next, cmd := m.Update(screenChangedMsg{screen: navigation.ScreenProfileSetup})
	require.NotNil(t, cmd)
	require.Contains(t, next.View(), "Please tell us your name")

	next, cmd = next.Update(screenChangedMsg{screen: navigation.ScreenHome})
	require.NotNil(t, cmd)
	require.Equal(t, navigation.ScreenHome, next.(Model).Screen())
	require.Contains(t, next.View(), "Select a child")
}

func TestWatchForwardsPublications(t *testing.T) {
	t.Parallel()
	ports, _, children, router := newPorts(navigation.ScreenLogin)

	var mu sync.Mutex
	var got []tea.Msg
	cancel := Watch(func(msg tea.Msg) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
	}, ports)

	router.Set(navigation.ScreenHome)
	children.Set(childrenin.State{Loading: true})
	cancel()
	router.Set(navigation.ScreenLogin)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []tea.Msg{
		screenChangedMsg{screen: navigation.ScreenHome},
		childrenChangedMsg{state: childrenin.State{Loading: true}},
	}, got)
}

func TestHomeGreetsSelectedChild(t *testing.T) {
	t.Parallel()
	ports, _, children, _ := newPorts(navigation.ScreenHome)
	m := NewModel(ports)

	alex := childrendomain.Child{ID: uuid.New(), FirstName: "Alex"}
	children.Set(childrenin.State{Children: []childrendomain.Child{alex}})
	next, _ := m.Update(childrenChangedMsg{state: children.State()})
	require.Contains(t, next.View(), "Welcome!")

	next, cmd := next.Update(keyPress("enter"))
	require.Equal(t, homeview.SelectedMsg{}, cmd())
	next, _ = next.Update(childrenChangedMsg{state: children.State()})
	require.Contains(t, next.View(), "Hello, Alex!")
	require.Contains(t, next.View(), "Ready for Christmas?")
}

func TestQuitKeyOnlyOnHome(t *testing.T) {
	t.Parallel()
	ports, _, _, _ := newPorts(navigation.ScreenHome)
	m := NewModel(ports)
	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())

	ports, _, _, _ = newPorts(navigation.ScreenLogin)
	m = NewModel(ports)
	_, cmd = m.Update(keyPress("ctrl+c"))
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestPaletteCommands(t *testing.T) {
	t.Parallel()
	ports, auth, children, _ := newPorts(navigation.ScreenHome)
	var model tea.Model = NewModel(ports)

	model, cmd := model.Update(components.PaletteSubmitMsg{Input: "child:add Mary Ann 6"})
	require.Equal(t, homeview.CreatedMsg{}, cmd())
	require.Equal(t, []string{"Mary Ann"}, children.created)

	model, _ = model.Update(components.PaletteSubmitMsg{Input: "child:add Bo six"})
	require.Contains(t, model.View(), "age must be a whole number")

	model, cmd = model.Update(components.PaletteSubmitMsg{Input: "signout"})
	require.Equal(t, homeview.SignedOutMsg{}, cmd())
	require.True(t, auth.signedOut)

	children.Set(childrenin.State{Children: []childrendomain.Child{{ID: uuid.New(), FirstName: "Bo"}}})
	model, _ = model.Update(childrenChangedMsg{state: children.State()})
	model, cmd = model.Update(components.PaletteSubmitMsg{Input: "child:select bo"})
	require.Equal(t, homeview.SelectedMsg{}, cmd())
	_, ok := children.State().Selected()
	require.True(t, ok)

	model, _ = model.Update(components.PaletteSubmitMsg{Input: "dance"})
	require.Contains(t, model.View(), "unknown command: dance")
}
