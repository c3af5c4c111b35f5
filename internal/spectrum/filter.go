// Package spectrum turns raw scan history into display-ready signal data:
// smoothing, per-bin peak hold with decay, and the dithered waterfall.
package spectrum

import (
	"rf-scope.dev/internal/config"
	"rf-scope.dev/internal/scan"
)

// Pipeline applies the per-frame display filters to the scan history. The
// smoothed channel tracks the live signal; the hold channel keeps the
// strongest recent reading per bin and decays it after a fixed number of
// frames. Both channels carry the sentinel where no valid data exists.
type Pipeline struct {
	window    int
	holdLimit int

	smoothed [scan.Size]uint16
	hold     [scan.Size]uint16
	age      [scan.Size]int
}

// NewPipeline builds a pipeline with the given smoothing half-window and
// peak-hold frame limit. Non-positive arguments select the defaults.
func NewPipeline(window, holdLimit int) *Pipeline {
	if window <= 0 {
		window = config.SmoothWindow
	}
	if holdLimit <= 0 {
		holdLimit = config.PeakHoldFrames
	}
	p := &Pipeline{window: window, holdLimit: holdLimit}
	p.ResetHold()
	return p
}

// Update recomputes both channels from the history. Called once per rendered
// frame, after the tick batch and before drawing.
func (p *Pipeline) Update(h *scan.History) {
	for i := 0; i < scan.Size; i++ {
		v := p.smoothAt(h, i)
		p.smoothed[i] = v
		p.updateHold(i, v)
	}
}

// smoothAt averages the valid neighbors of bin i within the half-window.
// Sentinel bins and non-positive readings are excluded so a blacklisted bin
// neither poisons the average nor smears into its neighbors. With no
// eligible neighbor the result is the sentinel.
func (p *Pipeline) smoothAt(h *scan.History, i int) uint16 {
	sum := 0
	n := 0
	for j := i - p.window; j <= i+p.window; j++ {
		v := h.At(j)
		if v == scan.Invalid || v == 0 {
			continue
		}
		sum += int(v)
		n++
	}
	if n == 0 {
		return scan.Invalid
	}
	return uint16(sum / n)
}

func (p *Pipeline) updateHold(i int, v uint16) {
	if v != scan.Invalid && v != 0 && (p.hold[i] == scan.Invalid || v > p.hold[i]) {
		p.hold[i] = v
		p.age[i] = 0
		return
	}
	p.age[i]++
	if p.age[i] > p.holdLimit {
		p.hold[i] = scan.Invalid
	}
}

// ResetHold drops every per-bin hold, for the sweep boundary and relaunch.
// The smoothed channel is left alone; it is fully rewritten on Update.
func (p *Pipeline) ResetHold() {
	for i := range p.hold {
		p.hold[i] = scan.Invalid
		p.age[i] = 0
	}
}

// Smoothed returns the live channel value at bin i.
func (p *Pipeline) Smoothed(i int) uint16 {
	if i < 0 || i >= scan.Size {
		return scan.Invalid
	}
	return p.smoothed[i]
}

// Hold returns the peak-hold channel value at bin i.
func (p *Pipeline) Hold(i int) uint16 {
	if i < 0 || i >= scan.Size {
		return scan.Invalid
	}
	return p.hold[i]
}
