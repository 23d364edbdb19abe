package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	authin "santacall/internal/modules/auth/port/in"
	childrenin "santacall/internal/modules/children/port/in"
	profilein "santacall/internal/modules/profile/port/in"
	"santacall/internal/navigation"
	"santacall/internal/ui/components"
	"santacall/internal/ui/theme"
	homeview "santacall/internal/ui/views/home"
	loginview "santacall/internal/ui/views/login"
	setupview "santacall/internal/ui/views/profilesetup"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type AuthPort interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) (authin.SignUpResult, error)
	SignOut(ctx context.Context)
}

type ProfilePort interface {
	Update(ctx context.Context, firstName, lastName string)
	State() profilein.State
	Subscribe(fn func(profilein.State)) (cancel func())
}

type ChildrenPort interface {
	Fetch(ctx context.Context)
	Create(ctx context.Context, name string, age int)
	Select(id uuid.UUID)
	State() childrenin.State
	Subscribe(fn func(childrenin.State)) (cancel func())
}

type RouterPort interface {
	Screen() navigation.Screen
	Subscribe(fn func(navigation.Screen)) (cancel func())
}

type Ports struct {
	Auth     AuthPort
	Profile  ProfilePort
	Children ChildrenPort
	Router   RouterPort
}

// ─── store messages ──────────────────────────────────────────────────────────
// Stores publish from whatever goroutine finished the work. Watch turns each
// publication into a message so the state is only read on the event loop.

type screenChangedMsg struct{ screen navigation.Screen }

type profileChangedMsg struct{ state profilein.State }

type childrenChangedMsg struct{ state childrenin.State }

// resyncMsg rereads every store; publications made before Watch was attached
// are otherwise lost.
type resyncMsg struct{}

// Watch forwards store publications to send, typically (*tea.Program).Send.
func Watch(send func(tea.Msg), ports Ports) (cancel func()) {
	cancels := []func(){
		ports.Router.Subscribe(func(s navigation.Screen) { send(screenChangedMsg{screen: s}) }),
		ports.Profile.Subscribe(func(st profilein.State) { send(profileChangedMsg{state: st}) }),
		ports.Children.Subscribe(func(st childrenin.State) { send(childrenChangedMsg{state: st}) }),
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Next    key.Binding
	Submit  key.Binding
	Chips   key.Binding
	Add     key.Binding
	Refresh key.Binding
	SignOut key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit / select")),
		Chips:   key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "move between children")),
		Add:     key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "add child")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		SignOut: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Submit},
		{k.Chips, k.Add, k.Refresh, k.SignOut},
		{k.Help, k.Palette, k.Quit},
	}
}

var paletteHints = []string{
	"child:add <name> <age>",
	"child:select <name>",
	"children:refresh",
	"signout",
	"quit",
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It renders whichever screen the router
// publishes and owns the help overlay and the command palette.
type Model struct {
	ports Ports

	login loginview.Model
	setup setupview.Model
	home  homeview.Model

	screen   navigation.Screen
	profile  profilein.State
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

func NewModel(ports Ports) Model {
	m := Model{
		ports:   ports,
		login:   loginview.New(ports.Auth),
		setup:   setupview.New(ports.Profile),
		home:    homeview.New(ports.Children, ports.Auth),
		screen:  ports.Router.Screen(),
		profile: ports.Profile.State(),
		keys:    defaultKeys(),
		help:    help.New(),
		palette: components.NewPalette(paletteHints),
	}
	m.setup.SetState(m.profile)
	m.home.SetState(ports.Children.State())
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.login.Init(), m.setup.Init(), func() tea.Msg { return resyncMsg{} }}
	if m.screen == navigation.ScreenHome {
		cmds = append(cmds, m.home.Init())
	}
	return tea.Batch(cmds...)
}

// Screen is the screen currently rendered.
func (m Model) Screen() navigation.Screen { return m.screen }

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette takes all key input while open.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case screenChangedMsg:
		return m.switchScreen(msg.screen)

	case resyncMsg:
		m.profile = m.ports.Profile.State()
		m.setup.SetState(m.profile)
		m.home.SetState(m.ports.Children.State())
		return m.switchScreen(m.ports.Router.Screen())

	case profileChangedMsg:
		m.profile = msg.state
		m.setup.SetState(msg.state)
		return m, nil

	case childrenChangedMsg:
		m.home.SetState(msg.state)
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = ""
		return m, nil

	case homeview.SignedOutMsg:
		m.status = "signed out"

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		// Forms on Login and Profile-Setup take every printable key.
		if m.screen == navigation.ScreenHome && !m.home.Capturing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.showHelp = true
				return m, nil
			case ":":
				cmd := m.palette.Open()
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	switch m.screen {
	case navigation.ScreenLogin:
		m.login, cmd = m.login.Update(msg)
	case navigation.ScreenProfileSetup:
		m.setup, cmd = m.setup.Update(msg)
	case navigation.ScreenHome:
		m.home, cmd = m.home.Update(msg)
	}
	return m, cmd
}

func (m Model) switchScreen(next navigation.Screen) (tea.Model, tea.Cmd) {
	prev := m.screen
	m.screen = next
	if prev == next {
		return m, nil
	}
	m.showHelp = false
	switch next {
	case navigation.ScreenLogin:
		m.login.Reset()
		return m, m.login.Init()
	case navigation.ScreenProfileSetup:
		return m, m.setup.Init()
	case navigation.ScreenHome:
		return m, m.home.Init()
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.activeView())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) activeView() string {
	switch m.screen {
	case navigation.ScreenProfileSetup:
		return m.setup.View()
	case navigation.ScreenHome:
		return m.home.View()
	default:
		return m.login.View()
	}
}

func (m Model) renderHeader() string {
	bar := theme.Title.Render("SantaCall")
	if m.screen == navigation.ScreenHome && m.profile.Profile != nil {
		bar += theme.Muted.Render("  signed in as " + m.profile.Profile.DisplayName())
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	right := theme.Muted.Render("tab:next  enter:submit  ctrl+c:quit")
	if m.screen == navigation.ScreenHome {
		right = theme.Muted.Render("?:help  a:add  o:sign out  :::palette  q:quit")
	}
	gap := m.width - lipgloss.Width(m.status) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := m.status + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "child:add":
		if len(parts) < 3 {
			m.status = "usage: child:add <name> <age>"
			return m, nil
		}
		age, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			m.status = "age must be a whole number"
			return m, nil
		}
		name := strings.Join(parts[1:len(parts)-1], " ")
		m.status = "adding " + name
		return m, m.home.CreateCmd(name, age)

	case "child:select":
		if len(parts) < 2 {
			m.status = "usage: child:select <name>"
			return m, nil
		}
		name := strings.Join(parts[1:], " ")
		cmd, ok := m.home.SelectByName(name)
		if !ok {
			m.status = "no child named " + name
			return m, nil
		}
		m.status = "selected " + name
		return m, cmd

	case "children:refresh":
		return m, m.home.Init()

	case "signout":
		return m, m.home.SignOutCmd()

	case "quit":
		return m, tea.Quit

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.login, _ = m.login.Update(sz)
	m.setup, _ = m.setup.Update(sz)
	m.home, _ = m.home.Update(sz)
}
