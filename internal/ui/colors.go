package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/marquee/internal/store"
)

var (
	darkStyles  = NewPalette("#7D56F4", "#04B575", "#FF5F87", "#FFA500", "#626262")
	lightStyles = NewPalette("#5A3FC0", "#027A4B", "#C4002B", "#B35900", "#8A8A8A")
)

// paletteFor returns the stylesheet for the store's theme.
func paletteFor(t store.Theme) *Palette {
	if t == store.ThemeLight {
		return lightStyles
	}
	return darkStyles
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title     lipgloss.Style
	ok        lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	help      lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:     NewBold(t).MarginBottom(1),
		ok:        NewBold(s),
		err:       NewBold(e),
		warn:      NewStyle(w),
		help:      NewEm(h),
		tab:       NewStyle(h).Padding(0, 1),
		activeTab: NewBold(t).Padding(0, 1).Underline(true),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
