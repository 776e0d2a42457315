package ui

import "github.com/charmbracelet/lipgloss"

// Styles are the Lip Gloss counterparts of the theme, used by the TUI.
type Styles struct {
	Title, Success, Pending, Progress, Accent lipgloss.Style
	Muted, Error, Selected, Done, Help        lipgloss.Style
	Frame, Input                              lipgloss.Style
}

// LipglossStyles derives styles from the current theme.
func LipglossStyles() Styles {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)

	if current.Name == "mono" {
		plain := lipgloss.NewStyle()
		return Styles{
			Title: plain.Bold(true), Success: plain, Pending: plain, Progress: plain, Accent: plain,
			Muted: plain, Error: plain.Bold(true), Selected: plain.Reverse(true),
			Done: plain, Help: plain,
			Frame: frame.Border(lipgloss.NormalBorder()).UnsetBorderForeground(), Input: frame.Border(lipgloss.NormalBorder()).UnsetBorderForeground(),
		}
	}

	s := Styles{
		Title:    lipgloss.NewStyle().Bold(true),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Progress: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:    lipgloss.NewStyle().Faint(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Frame:    frame,
		Input:    frame,
	}
	if current.Name == "neon" {
		s.Title = s.Title.Foreground(lipgloss.Color("201"))
		s.Accent = s.Accent.Foreground(lipgloss.Color("51"))
		s.Frame = s.Frame.BorderForeground(lipgloss.Color("201"))
	}
	return s
}
