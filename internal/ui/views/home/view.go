package home

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	childrenin "santacall/internal/modules/children/port/in"
	"santacall/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type ChildrenPort interface {
	Fetch(ctx context.Context)
	Create(ctx context.Context, name string, age int)
	Select(id uuid.UUID)
	State() childrenin.State
}

type SignOutPort interface {
	SignOut(ctx context.Context)
}

// ─── messages ────────────────────────────────────────────────────────────────

type FetchedMsg struct{}

// CreatedMsg carries the store error observed right after the create call.
type CreatedMsg struct{ ErrorMessage string }

type SignedOutMsg struct{}

type SelectedMsg struct{}

// ─── model ───────────────────────────────────────────────────────────────────

type formField int

const (
	formName formField = iota
	formAge
)

type addForm struct {
	visible bool
	name    textinput.Model
	age     textinput.Model
	focus   formField
	errText string
	saving  bool
}

type Model struct {
	children ChildrenPort
	auth     SignOutPort
	state    childrenin.State
	cursor   int
	form     addForm
	spinner  spinner.Model
	width    int
}

func New(children ChildrenPort, auth SignOutPort) Model {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 60

	age := textinput.New()
	age.Placeholder = "Age"
	age.CharLimit = 3
	age.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Red)

	return Model{
		children: children,
		auth:     auth,
		form:     addForm{name: name, age: age},
		spinner:  sp,
	}
}

// Init fetches the roster; it runs every time Home appears.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.spinner.Tick)
}

func (m *Model) SetState(st childrenin.State) {
	m.state = st
	if m.cursor >= len(st.Children) {
		m.cursor = max(len(st.Children)-1, 0)
	}
}

// Capturing reports whether keys belong to the add-child form.
func (m Model) Capturing() bool { return m.form.visible }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case FetchedMsg, SignedOutMsg, SelectedMsg:
		return m, nil

	case CreatedMsg:
		m.form.saving = false
		if msg.ErrorMessage == "" {
			m.closeForm()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading && !m.form.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.form.visible {
			return m.updateForm(msg)
		}
		switch msg.String() {
		case "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < len(m.state.Children)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.cursor < len(m.state.Children) {
				return m, m.selectCmd(m.state.Children[m.cursor].ID)
			}
		case "a", "+":
			cmd := m.OpenForm()
			return m, cmd
		case "r":
			return m, tea.Batch(m.fetchCmd(), m.spinner.Tick)
		case "o":
			return m, m.SignOutCmd()
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		if m.form.focus == formName {
			m.form.focus = formAge
			m.form.name.Blur()
			cmd := m.form.age.Focus()
			return m, cmd
		}
		m.form.focus = formName
		m.form.age.Blur()
		cmd := m.form.name.Focus()
		return m, cmd
	case "enter":
		if m.form.saving {
			return m, nil
		}
		name := strings.TrimSpace(m.form.name.Value())
		age, err := strconv.Atoi(strings.TrimSpace(m.form.age.Value()))
		if name == "" || err != nil {
			m.form.errText = "Enter a name and a whole-number age."
			return m, nil
		}
		m.form.errText = ""
		m.form.saving = true
		return m, tea.Batch(m.CreateCmd(name, age), m.spinner.Tick)
	}

	var cmd tea.Cmd
	if m.form.focus == formName {
		m.form.name, cmd = m.form.name.Update(msg)
	} else {
		m.form.age, cmd = m.form.age.Update(msg)
	}
	return m, cmd
}

// OpenForm shows the add-child form with the name field focused.
func (m *Model) OpenForm() tea.Cmd {
	m.form.visible = true
	m.form.focus = formName
	m.form.age.Blur()
	return m.form.name.Focus()
}

func (m *Model) closeForm() {
	m.form.visible = false
	m.form.errText = ""
	m.form.saving = false
	m.form.name.SetValue("")
	m.form.age.SetValue("")
	m.form.name.Blur()
	m.form.age.Blur()
}

// SelectByName returns a command selecting the first child whose name
// matches, ignoring case.
func (m *Model) SelectByName(name string) (tea.Cmd, bool) {
	for i, c := range m.state.Children {
		if strings.EqualFold(c.FirstName, name) {
			m.cursor = i
			return m.selectCmd(c.ID), true
		}
	}
	return nil, false
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	selected, hasSelected := m.state.Selected()

	header := theme.Hot.Render("Select a child")
	if hasSelected {
		header = theme.Hot.Render("Selected: " + selected.FirstName)
	}

	var chips []string
	for i, c := range m.state.Children {
		style := theme.Chip
		if hasSelected && c.ID == selected.ID {
			style = theme.ChipSelected
		}
		if i == m.cursor {
			style = style.Underline(true)
		}
		chips = append(chips, style.Render(c.FirstName))
	}
	chips = append(chips, theme.Title.Render("+"))
	roster := lipgloss.JoinHorizontal(lipgloss.Center, chips...)
	if m.state.Loading {
		roster = m.spinner.View() + " " + roster
	}

	var greeting string
	if hasSelected {
		greeting = theme.Title.Render("Hello, "+selected.FirstName+"!") + "\n" + "Ready for Christmas?"
	} else {
		greeting = theme.Title.Render("Welcome!") + "\n" + theme.Muted.Render("Select a child to continue")
	}

	parts := []string{header, "", roster, "", greeting}
	if m.form.visible {
		parts = append(parts, "", m.formView())
	} else if m.state.ErrorMessage != "" {
		parts = append(parts, "", theme.Error.Render(m.state.ErrorMessage))
	}

	w := m.width
	if w < 40 || w > 80 {
		w = 80
	}
	return theme.Pane.Width(w).Render(strings.Join(parts, "\n"))
}

func (m Model) formView() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Add Child") + "\n")
	sb.WriteString(m.form.name.View() + "\n")
	sb.WriteString(m.form.age.View() + "\n")
	if m.form.saving {
		sb.WriteString(m.spinner.View() + " saving…\n")
	} else {
		sb.WriteString(theme.ButtonFocused.Render("Save") + theme.Muted.Render("  enter save · esc cancel") + "\n")
	}
	switch {
	case m.form.errText != "":
		sb.WriteString(theme.Error.Render(m.form.errText))
	case m.state.ErrorMessage != "":
		sb.WriteString(theme.Error.Render(m.state.ErrorMessage))
	}
	return theme.PaneActive.Render(sb.String())
}

// ─── async commands ──────────────────────────────────────────────────────────
// Store calls never run inside Update: a store publishes synchronously and the
// publication is sent back into the program, which would block the loop.

func (m Model) selectCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		m.children.Select(id)
		return SelectedMsg{}
	}
}

func (m Model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		m.children.Fetch(context.Background())
		return FetchedMsg{}
	}
}

// CreateCmd creates a child and reports the store error seen afterwards.
func (m Model) CreateCmd(name string, age int) tea.Cmd {
	return func() tea.Msg {
		m.children.Create(context.Background(), name, age)
		return CreatedMsg{ErrorMessage: m.children.State().ErrorMessage}
	}
}

func (m Model) SignOutCmd() tea.Cmd {
	return func() tea.Msg {
		m.auth.SignOut(context.Background())
		return SignedOutMsg{}
	}
}
