package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are the lipgloss styles used for status lines and headings.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	Key           lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds styles bound to w. Colour is disabled unless isTTY.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if isTTY {
		r.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Header1:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Underline(true),
		Header2:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:          r.NewStyle().Bold(true),
		Muted:         r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:          r.NewStyle().Foreground(lipgloss.Color("14")),
		Key:           r.NewStyle().Foreground(lipgloss.Color("13")),
		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).SetString("✗"),
	}
}
