// Package theme provides the CLI colour palette. Colours are read from the
// user's terminal configuration when one is found (Alacritty, Kitty, Foot or
// Omarchy), with TORRENT_CLI_* environment variables taking precedence.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette holds the colour scheme for terminal output
type Palette struct {
	FG      string // primary text
	Muted   string // hints, secondary info
	Accent  string // banner, highlights
	Info    string
	Success string
	Warning string
	Error   string
}

// DefaultPalette returns the fallback amber-on-dark theme
func DefaultPalette() Palette {
	return Palette{
		FG:      "#d4a017",
		Muted:   "#6b6b4f",
		Accent:  "#8bc34a",
		Info:    "#5fafd7",
		Success: "#8bc34a",
		Warning: "#ffb347",
		Error:   "#ff6b6b",
	}
}

// Styles holds the lipgloss styles derived from a palette
type Styles struct {
	Banner      lipgloss.Style
	Title       lipgloss.Style
	Text        lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	Info        lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	TableHeader lipgloss.Style
	HealthGood  lipgloss.Style
	HealthMed   lipgloss.Style
	HealthBad   lipgloss.Style
}

// NewStyles creates styles from a palette bound to renderer r. A nil renderer
// uses lipgloss's default (stdout) renderer.
func NewStyles(r *lipgloss.Renderer, p Palette) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return Styles{
		Banner: fg(p.Accent).
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Muted)).
			Padding(0, 2),

		Title: fg(p.FG).Bold(true),
		Text:  fg(p.FG),
		Muted: fg(p.Muted),

		Accent:  fg(p.Accent),
		Info:    fg(p.Info),
		Success: fg(p.Success).Bold(true),
		Warning: fg(p.Warning),
		Error:   fg(p.Error).Bold(true),

		TableHeader: fg(p.Muted).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(p.Muted)),

		HealthGood: fg(p.Success),
		HealthMed:  fg(p.Warning),
		HealthBad:  fg(p.Error),
	}
}
