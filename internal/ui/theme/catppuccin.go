package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Red)

	Title = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Error = lipgloss.NewStyle().Foreground(Red)
	Good  = lipgloss.NewStyle().Foreground(Green)

	Button         = lipgloss.NewStyle().Foreground(Text).Background(Surface0).Padding(0, 2)
	ButtonFocused  = Button.Foreground(Base).Background(Red).Bold(true)
	ButtonDisabled = Button.Foreground(Surface1)

	Chip         = lipgloss.NewStyle().Foreground(Text).Background(Surface0).Padding(0, 2).MarginRight(1)
	ChipSelected = Chip.Foreground(Base).Background(Red).Bold(true)
	ChipCursor   = Chip.Underline(true)
)
