package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	authin "santacall/internal/modules/auth/port/in"
	"santacall/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type AuthPort interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) (authin.SignUpResult, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SignInDoneMsg struct{ Err error }

type SignUpDoneMsg struct {
	Result authin.SignUpResult
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type field int

const (
	fieldEmail field = iota
	fieldPassword
	fieldSignIn
	fieldSignUp
	fieldCount
)

// Model is the sign-in form. A successful sign-in does not change the screen
// here; the router switches away once the session arrives.
type Model struct {
	port     AuthPort
	email    textinput.Model
	password textinput.Model
	spinner  spinner.Model
	focus    field
	busy     bool
	errText  string
	notice   string
	width    int
}

func New(port AuthPort) Model {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Red)

	return Model{port: port, email: email, password: password, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the password and any messages, e.g. after sign-out.
func (m *Model) Reset() {
	m.password.SetValue("")
	m.errText = ""
	m.notice = ""
	m.busy = false
}

func (m Model) Busy() bool { return m.busy }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case SignInDoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.errText = "Sign In Failed: " + msg.Err.Error()
		} else {
			m.errText = ""
		}
		return m, nil

	case SignUpDoneMsg:
		m.busy = false
		switch {
		case msg.Err != nil:
			m.errText = "Sign Up Failed: " + msg.Err.Error()
		case msg.Result.ConfirmationPending:
			m.errText = ""
			m.notice = "Check your inbox to confirm your email, then sign in."
		default:
			m.errText = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			cmd := m.setFocus((m.focus + 1) % fieldCount)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, cmd
		case "enter":
			switch m.focus {
			case fieldEmail:
				cmd := m.setFocus(fieldPassword)
				return m, cmd
			case fieldSignUp:
				return m.submit(true)
			default:
				return m.submit(false)
			}
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldEmail:
		m.email, cmd = m.email.Update(msg)
	case fieldPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	m.email.Blur()
	m.password.Blur()
	switch f {
	case fieldEmail:
		return m.email.Focus()
	case fieldPassword:
		return m.password.Focus()
	}
	return nil
}

func (m Model) submit(signUp bool) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errText = "Enter your email and password."
		return m, nil
	}
	m.busy = true
	m.errText = ""
	m.notice = ""
	if signUp {
		return m, tea.Batch(m.signUpCmd(email, password), m.spinner.Tick)
	}
	return m, tea.Batch(m.signInCmd(email, password), m.spinner.Tick)
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("SantaCall") + "\n")
	sb.WriteString(theme.Muted.Render("Talk to Santa anytime!") + "\n\n")
	sb.WriteString(m.email.View() + "\n")
	sb.WriteString(m.password.View() + "\n\n")

	if m.errText != "" {
		sb.WriteString(theme.Error.Render(m.errText) + "\n\n")
	}
	if m.notice != "" {
		sb.WriteString(theme.Good.Render(m.notice) + "\n\n")
	}

	if m.busy {
		sb.WriteString(m.spinner.View() + " " + theme.Muted.Render("talking to the North Pole…"))
	} else {
		sb.WriteString(button("Sign In", m.focus == fieldSignIn) + " " + button("Sign Up", m.focus == fieldSignUp))
	}

	w := m.width
	if w < 40 || w > 60 {
		w = 60
	}
	return theme.Pane.Width(w).Render(sb.String())
}

func button(label string, focused bool) string {
	if focused {
		return theme.ButtonFocused.Render(label)
	}
	return theme.Button.Render(label)
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) signInCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return SignInDoneMsg{Err: m.port.SignIn(context.Background(), email, password)}
	}
}

func (m Model) signUpCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.port.SignUp(context.Background(), email, password)
		return SignUpDoneMsg{Result: result, Err: err}
	}
}
