package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const AppName = "podfeed"

var LogoLines = []string{
	"┌─┐┌─┐┌┬┐┌─┐┌─┐┌─┐┌┬┐",
	"├─┘│ │ ││├┤ ├┤ ├┤  ││",
	"┴  └─┘─┴┘└  └─┘└─┘─┴┘",
}

var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")

	TextColor  = lipgloss.Color("#EAEAEA")
	MutedColor = lipgloss.Color("#94A3B8")

	HighlightColor = lipgloss.Color("#FFE66D")
	ErrorColor     = lipgloss.Color("#EF4444")
	SuccessColor   = lipgloss.Color("#10B981")
)

var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	FeedTitleStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	EpisodeTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	IndexStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Width(5).
			Align(lipgloss.Right)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	DurationStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Faint(true)

	SubscribedStyle = lipgloss.NewStyle().
			Foreground(HighlightColor).
			Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)
)

// Banner renders the logo with a version tagline.
func Banner(version string) string {
	lines := make([]string, 0, len(LogoLines)+1)
	for _, line := range LogoLines {
		lines = append(lines, LogoStyle.Render(line))
	}

	tag := "podcast feeds in your terminal"
	if version != "" && version != "dev" {
		if !strings.HasPrefix(strings.ToLower(version), "v") {
			version = "v" + version
		}
		tag = fmt.Sprintf("%s %s", tag, version)
	}
	lines = append(lines, MutedStyle.Render(tag))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
