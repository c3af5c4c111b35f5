package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is the scan summary shown in the bottom bar.
type StatusInfo struct {
	Mode       string
	StartMHz   float64
	EndMHz     float64
	StepKHz    float64
	Steps      int
	Scans      uint64
	ListenMHz  float64
	ListenLeft int
	Clients    int
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s StatusInfo) string {
	var status string
	if s.Mode == "LISTEN" {
		status = StyleStatusListen.Render("[LISTEN]")
	} else {
		status = StyleStatusSweep.Render("[SWEEP]")
	}

	info := fmt.Sprintf(" %.4f-%.4f MHz  Step: %.2fkHz  Bins: %d  Scans: %d",
		s.StartMHz, s.EndMHz, s.StepKHz, s.Steps, s.Scans)
	if s.Mode == "LISTEN" {
		info += fmt.Sprintf("  @ %.4f MHz (%d)", s.ListenMHz, s.ListenLeft)
	}
	if s.Clients > 0 {
		info += fmt.Sprintf("  WS: %d", s.Clients)
	}

	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)

	gap := width - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}
	padding := ""
	for i := 0; i < gap; i++ {
		padding += " "
	}

	return StyleStatusBar.Width(width).Render(content + padding)
}
