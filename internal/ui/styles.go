// Package ui holds terminal styling and rendering for command output.
package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette: default text, one accent for subjects and paths, muted gray for
// secondary information. Status is shown with symbols, not colors.
const defaultAccent = "#A78BFA"

var (
	accentColor = defaultAccent

	// Accent styles subjects, file paths and property names.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted styles hints, values of secondary interest and counts.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	codeTheme = "dracula"
)

// ConfigureTheme applies the [ui] settings of the global config. An empty or
// "none" accent turns the accent color off; an empty code theme keeps the
// default.
func ConfigureTheme(accent, theme string) {
	if c, ok := normalizeAccentColor(accent); ok {
		accentColor = c
		Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	} else {
		accentColor = ""
		Accent = lipgloss.NewStyle()
	}
	if theme = strings.TrimSpace(theme); theme != "" {
		codeTheme = theme
	}
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}

// normalizeAccentColor accepts an ANSI color index (0-255) or a #rgb/#rrggbb hex
// color.
func normalizeAccentColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "off", "default":
		return "", false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return "", false
		}
		return strconv.Itoa(n), true
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 3 && len(hex) != 6) {
		return "", false
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + hex, true
}
