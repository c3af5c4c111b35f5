package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"rf-scope.dev/internal/config"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, mode string, monitor bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"R", "elaunch"},
		{"B", "lacklist"},
		{"M", "onitor"},
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	var status string
	if mode == "LISTEN" {
		status = StyleStatusListen.Render("LISTEN")
	} else {
		status = StyleStatusSweep.Render("SWEEP")
	}
	if monitor {
		status += " " + StyleStatusListen.Render("[MON]")
	}

	left := StyleMenuKey.Render(title) + menu
	right := status + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	padding := ""
	for i := 0; i < gap; i++ {
		padding += " "
	}

	return StyleMenuBar.Width(width).Render(left + padding + right)
}
