package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mohsinsiddi/w3mint/internal/mint"
)

const imageWidth = 40

// RenderImage draws a framed stand-in for the drop artwork. Terminals cannot
// show the media itself, so the frame carries its reference instead.
func RenderImage(ref string, theme Theme) string {
	label := "🖼  " + ref
	if ref == "" || ref == mint.PlaceholderImage {
		label = "🖼  no image"
	}
	if lipgloss.Width(label) > imageWidth-4 {
		label = padCell(label, imageWidth-5) + "…"
	}

	frame := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		Foreground(theme.Muted).
		Width(imageWidth-2).
		Height(5).
		Align(lipgloss.Center, lipgloss.Center)
	return frame.Render(strings.TrimSpace(label))
}
