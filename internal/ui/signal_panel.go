package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SignalInfo is everything the side panel shows about the current signal.
type SignalInfo struct {
	PeakMHz    float64
	PeakDBm    int
	SMeter     string
	TriggerDBm int
	TriggerSet bool
	AutoTrig   bool
	FloorDBm   float64
	SigmaDB    float64
	SNRdB      float64
	DBMin      int
	DBMax      int
	ListenBW   string
	Blacklist  int
	Monitor    bool
}

// RenderSignalPanel renders the side panel with peak, trigger, and sweep
// statistics.
func RenderSignalPanel(info SignalInfo, width, height int) string {
	innerW := width - 4
	if innerW < 18 {
		innerW = 18
	}

	title := StylePanelTitle.Render("SIGNAL")
	sep := StyleSeparator.Render(strings.Repeat("-", innerW))

	lines := []string{title, sep, ""}

	trig := "--"
	if info.TriggerSet {
		trig = fmt.Sprintf("%d dBm", info.TriggerDBm)
		if info.AutoTrig {
			trig += " auto"
		}
	}

	fields := []struct{ label, value string }{
		{"Peak", fmt.Sprintf("%.4f MHz", info.PeakMHz)},
		{"Level", fmt.Sprintf("%d dBm %s", info.PeakDBm, info.SMeter)},
		{"Trigger", trig},
		{"Floor", fmt.Sprintf("%.1f dBm", info.FloorDBm)},
		{"Sigma", fmt.Sprintf("%.1f dB", info.SigmaDB)},
		{"SNR", fmt.Sprintf("%.1f dB", info.SNRdB)},
		{"Window", fmt.Sprintf("%d..%d dBm", info.DBMin, info.DBMax)},
		{"BW", info.ListenBW},
	}

	for _, f := range fields {
		label := StyleLabel.Render(fmt.Sprintf("  %-9s", f.label))
		value := StyleValue.Render(f.value)
		if f.label == "Peak" || f.label == "Level" {
			value = StylePeakValue.Render(f.value)
		}
		if f.label == "Trigger" {
			value = StyleTriggerValue.Render(f.value)
		}
		lines = append(lines, label+value)
	}

	if info.Blacklist > 0 {
		lines = append(lines, "")
		lines = append(lines, StyleLabel.Render(fmt.Sprintf("  Blacklisted: %d", info.Blacklist)))
	}
	if info.Monitor {
		lines = append(lines, StyleStatusListen.Render("  MONITOR"))
	}

	lines = append(lines, "")
	lines = append(lines, StyleHelp.Render("  t/T trigger  </> shift"))
	lines = append(lines, StyleHelp.Render("  s step  c bins  w bw"))
	lines = append(lines, StyleHelp.Render("  u/d window  x clear"))

	for len(lines) < height-2 {
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")
	rendered := StylePanelBorder.Width(width - 2).Height(height - 2).Render(content)

	// lipgloss Height() only sets a minimum; clamp overflow by hand.
	out := strings.Split(rendered, "\n")
	if len(out) > height {
		out = out[:height]
	}
	return strings.Join(out, "\n")
}

// ComposeLayout joins the scope and signal panels horizontally, with menu bar
// on top and status bar on bottom.
func ComposeLayout(menuBar, scopePanel, signalPanel, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, scopePanel, signalPanel)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
