package profilesetup

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	profilein "santacall/internal/modules/profile/port/in"
	"santacall/internal/ui/theme"
)

type ProfilePort interface {
	Update(ctx context.Context, firstName, lastName string)
}

// SavedMsg reports that an update attempt has finished. The outcome is read
// from the store state, not from this message.
type SavedMsg struct{}

type field int

const (
	fieldFirst field = iota
	fieldLast
	fieldContinue
	fieldCount
)

type Model struct {
	port    ProfilePort
	first   textinput.Model
	last    textinput.Model
	spinner spinner.Model
	focus   field
	state   profilein.State
	width   int
}

func New(port ProfilePort) Model {
	first := textinput.New()
	first.Placeholder = "First Name"
	first.CharLimit = 80
	first.Focus()

	last := textinput.New()
	last.Placeholder = "Last Name"
	last.CharLimit = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Red)

	return Model{port: port, first: first, last: last, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetState mirrors the profile store. Names already saved are prefilled.
func (m *Model) SetState(st profilein.State) {
	m.state = st
	if st.Profile == nil {
		return
	}
	if m.first.Value() == "" && st.Profile.FirstName != nil {
		m.first.SetValue(*st.Profile.FirstName)
	}
	if m.last.Value() == "" && st.Profile.LastName != nil {
		m.last.SetValue(*st.Profile.LastName)
	}
}

// CanContinue is false while the first name is empty or a save is running.
func (m Model) CanContinue() bool {
	return m.first.Value() != "" && !m.state.Loading
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case SavedMsg:
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading {
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
			if m.focus == fieldFirst {
				cmd := m.setFocus(fieldLast)
				return m, cmd
			}
			if !m.CanContinue() {
				return m, nil
			}
			return m, tea.Batch(m.saveCmd(m.first.Value(), m.last.Value()), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldFirst:
		m.first, cmd = m.first.Update(msg)
	case fieldLast:
		m.last, cmd = m.last.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	m.first.Blur()
	m.last.Blur()
	switch f {
	case fieldFirst:
		return m.first.Focus()
	case fieldLast:
		return m.last.Focus()
	}
	return nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Welcome to SantaCall!") + "\n")
	sb.WriteString(theme.Muted.Render("Please tell us your name to get started.") + "\n\n")
	sb.WriteString(m.first.View() + "\n")
	sb.WriteString(m.last.View() + "\n\n")

	if m.state.ErrorMessage != "" {
		sb.WriteString(theme.Error.Render(m.state.ErrorMessage) + "\n\n")
	}

	switch {
	case m.state.Loading:
		sb.WriteString(m.spinner.View() + " " + theme.Muted.Render("saving…"))
	case !m.CanContinue():
		sb.WriteString(theme.ButtonDisabled.Render("Continue"))
	case m.focus == fieldContinue:
		sb.WriteString(theme.ButtonFocused.Render("Continue"))
	default:
		sb.WriteString(theme.Button.Render("Continue"))
	}

	w := m.width
	if w < 40 || w > 60 {
		w = 60
	}
	return theme.Pane.Width(w).Render(sb.String())
}

func (m Model) saveCmd(firstName, lastName string) tea.Cmd {
	return func() tea.Msg {
		m.port.Update(context.Background(), firstName, lastName)
		return SavedMsg{}
	}
}
