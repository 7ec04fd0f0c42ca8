package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Diagram
	Internal lipgloss.AdaptiveColor
	Leaf     lipgloss.AdaptiveColor
	Link     lipgloss.AdaptiveColor
	Match    lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed per-cell styles, reused by every frame.
	LinkText     lipgloss.Style
	InternalNode lipgloss.Style
	LeafNode     lipgloss.Style
	Label        lipgloss.Style
	MatchText    lipgloss.Style
	Dim          lipgloss.Style
	Prefix       lipgloss.Style
	Message      lipgloss.Style
	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	SuccessText  lipgloss.Style
	ErrorText    lipgloss.Style
	PromptText   lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Internal: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#F8F8F2"},
		Leaf:     lipgloss.AdaptiveColor{Light: "#999999", Dark: "#BFBFBF"},
		Link:     lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#6272A4"},
		Match:    lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Success:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Primary).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.LinkText = r.NewStyle().Foreground(t.Link)
	t.InternalNode = r.NewStyle().Foreground(t.Internal).Bold(true)
	t.LeafNode = r.NewStyle().Foreground(t.Leaf)
	t.Label = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#222222", Dark: "#F8F8F2"})
	t.MatchText = r.NewStyle().Foreground(t.Match).Bold(true)
	t.Dim = r.NewStyle().Foreground(t.Muted)
	t.Prefix = r.NewStyle().Foreground(t.Border)
	t.Message = r.NewStyle().Foreground(t.Subtext).Italic(true)
	t.StatusBar = r.NewStyle().Foreground(t.Subtext)
	t.StatusKey = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.SuccessText = r.NewStyle().Foreground(t.Success)
	t.ErrorText = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.PromptText = r.NewStyle().Foreground(t.Primary)

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
