package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and symbols for help output.
type Theme struct {
	Bold   lipgloss.Style
	Cyan   lipgloss.Style
	Green  lipgloss.Style
	Yellow lipgloss.Style
	Dim    lipgloss.Style
	Red    lipgloss.Style
	Title  lipgloss.Style

	Bullet  string
	BoxTree string
	BoxLast string
	BoxItem string

	IconFilesystem string
	IconSession    string
	IconApp        string
	IconDevice     string
	IconDisk       string
	IconHelp       string
}

func DefaultTheme() *Theme {
	return &Theme{
		Bold:   lipgloss.NewStyle().Bold(true),
		Cyan:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Dim:    lipgloss.NewStyle().Faint(true),
		Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Title:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),

		Bullet:  "•",
		BoxTree: "├──",
		BoxLast: "└──",
		BoxItem: "│  ",

		IconFilesystem: "🐧",
		IconSession:    "🖥️",
		IconApp:        "📦",
		IconDevice:     "📱",
		IconDisk:       "💾",
		IconHelp:       "💡",
	}
}

// PlainTheme renders without colors or icons, for tests and pipes.
func PlainTheme() *Theme {
	plain := lipgloss.NewStyle()
	return &Theme{
		Bold: plain, Cyan: plain, Green: plain, Yellow: plain, Dim: plain, Red: plain, Title: plain,

		Bullet:  "*",
		BoxTree: "|--",
		BoxLast: "`--",
		BoxItem: "|  ",
	}
}

func (t *Theme) Styled(style lipgloss.Style, text string) string {
	return style.Render(text)
}
