// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme. "default" is accepted as an
// alias.
const DefaultTheme = "tokyo-night"

var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    "#7aa2f7",
		Secondary:  "#7dcfff",
		Foreground: "#c0caf5",
		Muted:      "#565f89",
		Background: "#1a1b26",
		Surface:    "#3b4261",
		Success:    "#9ece6a",
		Warning:    "#e0af68",
		Error:      "#f7768e",
	},
	"gruvbox": {
		Primary:    "#83a598",
		Secondary:  "#8ec07c",
		Foreground: "#ebdbb2",
		Muted:      "#665c54",
		Background: "#282828",
		Surface:    "#3c3836",
		Success:    "#b8bb26",
		Warning:    "#fabd2f",
		Error:      "#fb4934",
	},
	"catppuccin": {
		Primary:    "#89b4fa", // Blue
		Secondary:  "#94e2d5", // Teal
		Foreground: "#cdd6f4", // Text
		Muted:      "#6c7086", // Overlay0
		Background: "#1e1e2e", // Base
		Surface:    "#313244", // Surface0
		Success:    "#a6e3a1",
		Warning:    "#f9e2af",
		Error:      "#f38ba8",
	},
	"onedark": {
		Primary:    "#61afef",
		Secondary:  "#56b6c2",
		Foreground: "#abb2bf",
		Muted:      "#5c6370",
		Background: "#282c34",
		Surface:    "#3e4452",
		Success:    "#98c379",
		Warning:    "#e5c07b",
		Error:      "#e06c75",
	},
}

// Notification icons.
const (
	IconNotifyError   = "✗"
	IconNotifyWarning = "!"
	IconNotifyInfo    = "•"
	IconNotifySuccess = "✓"
)

// Active palette colors. Updated by SetTheme.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Shared styles. Updated by SetTheme.
var (
	TitleStyle    lipgloss.Style
	HeaderStyle   lipgloss.Style
	MutedStyle    lipgloss.Style
	HelpStyle     lipgloss.Style
	PromptStyle   lipgloss.Style
	ErrorStyle    lipgloss.Style
	WarningStyle  lipgloss.Style
	SuccessStyle  lipgloss.Style
	SelectedStyle lipgloss.Style

	ToastErrorStyle   lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastInfoStyle    lipgloss.Style
	ToastSuccessStyle lipgloss.Style
)

func init() {
	SetTheme(themes[DefaultTheme])
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	if name == "" || name == "default" {
		name = DefaultTheme
	}
	p, ok := themes[name]
	return p, ok
}

// UseTheme activates a theme by name.
func UseTheme(name string) error {
	p, ok := GetPalette(name)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, ThemeNames())
	}
	SetTheme(p)
	return nil
}

// SetTheme rebuilds every shared style from p.
func SetTheme(p Palette) {
	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Background(p.Surface).
		Padding(0, 1)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted).MarginTop(1)
	PromptStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Secondary)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Foreground(p.Foreground).
		Padding(0, 1)
	ToastErrorStyle = toast.BorderForeground(p.Error)
	ToastWarningStyle = toast.BorderForeground(p.Warning)
	ToastInfoStyle = toast.BorderForeground(p.Primary)
	ToastSuccessStyle = toast.BorderForeground(p.Success)
}

// Swatch renders a small block filled with hex. Invalid colors render as "??".
func Swatch(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "??"
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("  ")
}

func colorHexPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	cc, err := colorful.Hex(string(c))
	if err != nil {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() ansi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorHexPtr(ColorForeground)
	primary := colorHexPtr(ColorPrimary)
	secondary := colorHexPtr(ColorSecondary)
	muted := colorHexPtr(ColorMuted)
	surface := colorHexPtr(ColorSurface)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary
	cfg.Item.Color = fg
	cfg.Strong.Color = secondary

	return cfg
}

// FormTheme returns a huh theme using the active palette.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorSecondary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorSecondary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Blurred = t.Focused
	return t
}
