package render

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used for a transcript.
type Styles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Error     lipgloss.Style
	Heading   lipgloss.Style
	Source    lipgloss.Style
	Link      lipgloss.Style
	Muted     lipgloss.Style
}

func DarkStyles() Styles {
	return Styles{
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
		System:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC107")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
		Heading:   lipgloss.NewStyle().Bold(true).Underline(true),
		Source:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f2f2f2")),
		Link:      lipgloss.NewStyle().Foreground(lipgloss.Color("#4db6ac")).Underline(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#7a8699")).Italic(true),
	}
}

func LightStyles() Styles {
	s := DarkStyles()
	s.User = s.User.Foreground(lipgloss.Color("#33691E"))
	s.Assistant = s.Assistant.Foreground(lipgloss.Color("#101F38"))
	s.System = s.System.Foreground(lipgloss.Color("#8D6E00"))
	s.Source = s.Source.Foreground(lipgloss.Color("#101F38"))
	s.Link = s.Link.Foreground(lipgloss.Color("#00695C"))
	s.Muted = s.Muted.Foreground(lipgloss.Color("#5f6b7a"))
	return s
}

// StylesFor picks the palette for a ui.theme value.
func StylesFor(theme string) Styles {
	if theme == "light" {
		return LightStyles()
	}
	return DarkStyles()
}
