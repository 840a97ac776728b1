package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view.
type Theme struct {
	Name      string
	Particles lipgloss.Color
	Graph     lipgloss.Color
	Header    lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color
}

var Themes = []Theme{
	{
		Name:      "phosphor",
		Particles: lipgloss.Color("#00ff88"),
		Graph:     lipgloss.Color("49"),
		Header:    lipgloss.Color("86"),
		Muted:     lipgloss.Color("240"),
		Warning:   lipgloss.Color("#ffaa00"),
	},
	{
		Name:      "ocean",
		Particles: lipgloss.Color("#00a8cc"),
		Graph:     lipgloss.Color("#0077be"),
		Header:    lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Warning:   lipgloss.Color("#ffcc00"),
	},
	{
		Name:      "minimal",
		Particles: lipgloss.Color("#ffffff"),
		Graph:     lipgloss.Color("#cccccc"),
		Header:    lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Warning:   lipgloss.Color("#ffaa00"),
	},
}

// ThemeByName falls back to the first theme for unknown names.
func ThemeByName(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
