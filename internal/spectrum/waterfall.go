package spectrum

import (
	"rf-scope.dev/internal/config"
	"rf-scope.dev/internal/radio"
	"rf-scope.dev/internal/scan"
)

// bayer is the 4x4 ordered-dither threshold matrix. Combined with the
// per-scan phase it approximates intermediate shades on a monochrome panel
// through temporal flicker: a mid-level signal lights a cell on some scans
// and not others.
var bayer = [4][4]uint8{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// Waterfall accumulates one dithered line per completed scan, newest on top.
// Each row stores one bit per display column. It is cleared only at mode
// entry and on relaunch, never at scan boundaries, so slow activity stays
// visible across many sweeps.
type Waterfall struct {
	rows  [config.WaterfallRows][config.DisplayWidth / 8]byte
	phase uint8
}

// NewWaterfall returns an empty accumulator.
func NewWaterfall() *Waterfall {
	return &Waterfall{}
}

// AddLine shifts history down one row, advances the dither phase, and writes
// the newest scan across the top row. Scans narrower than the display stretch
// each bin over several columns; sentinel bins stay dark.
func (w *Waterfall) AddLine(bins []uint16, steps, dbMin, dbMax int) {
	for i := len(w.rows) - 1; i > 0; i-- {
		w.rows[i] = w.rows[i-1]
	}
	w.rows[0] = [config.DisplayWidth / 8]byte{}
	w.phase = (w.phase + 1) & 3

	if steps <= 0 || steps > len(bins) {
		steps = len(bins)
	}
	if steps == 0 {
		return
	}
	for x := 0; x < config.DisplayWidth; x++ {
		v := bins[x*steps/config.DisplayWidth]
		if v == scan.Invalid || v == 0 {
			continue
		}
		lev := radio.DitherLevel(v, dbMin, dbMax)
		if uint8(lev) > bayer[w.phase][x&3] {
			w.rows[0][x>>3] |= 1 << (7 - uint(x&7))
		}
	}
}

// Reset clears every row and restarts the dither phase.
func (w *Waterfall) Reset() {
	*w = Waterfall{}
}

// On reports whether the cell at (row, col) is lit; row 0 is the newest line.
func (w *Waterfall) On(row, col int) bool {
	if row < 0 || row >= len(w.rows) || col < 0 || col >= config.DisplayWidth {
		return false
	}
	return w.rows[row][col>>3]&(1<<(7-uint(col&7))) != 0
}

// Phase returns the current dither phase, 0..3.
func (w *Waterfall) Phase() uint8 { return w.phase }

// Rows returns the number of accumulated lines the waterfall can show.
func (w *Waterfall) Rows() int { return len(w.rows) }
