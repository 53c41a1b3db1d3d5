package tui

import "github.com/charmbracelet/lipgloss"

// Theme is a named colour palette.
type Theme struct {
	Name     string
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Border   lipgloss.Color
	Positive lipgloss.Color
	Negative lipgloss.Color
	Zero     lipgloss.Color
}

var themes = map[string]Theme{
	"default": {
		Name:     "default",
		Accent:   lipgloss.Color("#C89A3A"),
		Text:     lipgloss.Color("#F0F0F0"),
		Muted:    lipgloss.Color("#8C8C8C"),
		Border:   lipgloss.Color("#4A4A4A"),
		Positive: lipgloss.Color("#52C41A"),
		Negative: lipgloss.Color("#FF4D4F"),
		Zero:     lipgloss.Color("#B0B0B0"),
	},
	"dark": {
		Name:     "dark",
		Accent:   lipgloss.Color("#9254DE"),
		Text:     lipgloss.Color("#D9D9D9"),
		Muted:    lipgloss.Color("#6E6E6E"),
		Border:   lipgloss.Color("#303030"),
		Positive: lipgloss.Color("#73D13D"),
		Negative: lipgloss.Color("#FF7875"),
		Zero:     lipgloss.Color("#8C8C8C"),
	},
	"ocean": {
		Name:     "ocean",
		Accent:   lipgloss.Color("#13C2C2"),
		Text:     lipgloss.Color("#E6F7FF"),
		Muted:    lipgloss.Color("#69B1D6"),
		Border:   lipgloss.Color("#1D5F85"),
		Positive: lipgloss.Color("#5CDBD3"),
		Negative: lipgloss.Color("#FF85C0"),
		Zero:     lipgloss.Color("#91D5FF"),
	},
	"forest": {
		Name:     "forest",
		Accent:   lipgloss.Color("#7CB305"),
		Text:     lipgloss.Color("#F6FFED"),
		Muted:    lipgloss.Color("#8FA37A"),
		Border:   lipgloss.Color("#3F5A2A"),
		Positive: lipgloss.Color("#95DE64"),
		Negative: lipgloss.Color("#FA8C16"),
		Zero:     lipgloss.Color("#D3F261"),
	},
}

func themeFor(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["default"]
}

type styles struct {
	title     lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	positive  lipgloss.Style
	negative  lipgloss.Style
	zero      lipgloss.Style
	card      lipgloss.Style
	cardTitle lipgloss.Style
	notice    lipgloss.Style
	modal     lipgloss.Style
	barFill   lipgloss.Style
	barEmpty  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(t.Muted),
		accent:   lipgloss.NewStyle().Foreground(t.Accent),
		positive: lipgloss.NewStyle().Foreground(t.Positive).Bold(true),
		negative: lipgloss.NewStyle().Foreground(t.Negative).Bold(true),
		zero:     lipgloss.NewStyle().Foreground(t.Zero).Bold(true),
		card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(t.Border),
		cardTitle: lipgloss.NewStyle().Foreground(t.Muted),
		notice: lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Accent).
			Bold(true).
			Padding(0, 1),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(t.Accent).
			Padding(1, 2),
		barFill:  lipgloss.NewStyle().Foreground(t.Accent),
		barEmpty: lipgloss.NewStyle().Foreground(t.Border),
	}
}
