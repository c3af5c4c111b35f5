package spectrum

import (
	"rf-scope.dev/internal/config"
	"rf-scope.dev/internal/display"
	"rf-scope.dev/internal/radio"
	"rf-scope.dev/internal/scan"
)

// The display is split into three horizontal bands: the spectrum graph down
// to SpectrumEndY, the frequency ruler at RulerY, and the waterfall below.

// DrawSpectrum renders the live channel as solid bars and the hold channel
// as a sparse tick above them. Scans narrower than the display stretch each
// bin over several columns.
func DrawSpectrum(f *display.Frame, p *Pipeline, steps, dbMin, dbMax int) {
	if steps <= 0 {
		return
	}
	for x := 0; x < config.DisplayWidth; x++ {
		bin := x * steps / config.DisplayWidth
		v := p.Smoothed(bin)
		if v != scan.Invalid && v != 0 {
			y := radio.ToY(v, dbMin, dbMax, config.SpectrumEndY)
			f.VLine(x, y, config.SpectrumEndY)
		}
		if x&1 != 0 {
			continue
		}
		hold := p.Hold(bin)
		if hold == scan.Invalid || hold == 0 || hold < v {
			continue
		}
		f.PutPixel(x, radio.ToY(hold, dbMin, dbMax, config.SpectrumEndY))
	}
}

// DrawTriggerLevel renders the listen threshold as a dashed horizontal line.
// An unacquired automatic trigger draws nothing.
func DrawTriggerLevel(f *display.Frame, trigger uint16, dbMin, dbMax int) {
	if trigger == scan.Invalid {
		return
	}
	y := radio.ToY(trigger, dbMin, dbMax, config.SpectrumEndY)
	for x := 0; x < config.DisplayWidth; x += 2 {
		f.PutPixel(x, y)
	}
}

// DrawRuler renders the frequency graduation: a baseline with ticks on
// 10/50/100 kHz boundaries, taller for coarser ones, plus markers at both
// edges and the center of the swept range.
func DrawRuler(f *display.Frame, g scan.Geometry) {
	y := config.RulerY
	for x := 0; x < config.DisplayWidth; x++ {
		f.PutPixel(x, y)
		hz := g.StartHz + uint32(uint64(x)*uint64(g.SpanHz())/config.DisplayWidth)
		switch {
		case hz%100_000 < g.StepHz:
			f.PutPixel(x, y-1)
			f.PutPixel(x, y-2)
			f.PutPixel(x, y-3)
		case hz%50_000 < g.StepHz:
			f.PutPixel(x, y-1)
			f.PutPixel(x, y-2)
		case hz%10_000 < g.StepHz:
			f.PutPixel(x, y-1)
		}
	}
	for _, x := range [...]int{0, config.DisplayWidth / 2, config.DisplayWidth - 1} {
		f.PutPixel(x, y-1)
		f.PutPixel(x, y-2)
	}
}

// DrawPeakArrow renders a small chevron at the top of the column the global
// peak occupies.
func DrawPeakArrow(f *display.Frame, peakStep, steps int) {
	if steps <= 0 {
		return
	}
	// Center of the (possibly stretched) bin.
	w := config.DisplayWidth / steps
	x := peakStep*w + w/2
	for dx := -2; dx <= 2; dx++ {
		d := dx
		if d < 0 {
			d = -d
		}
		f.PutPixel(x+dx, d)
	}
}

// DrawWaterfall blits the accumulator into its display band.
func DrawWaterfall(f *display.Frame, w *Waterfall) {
	for row := 0; row < w.Rows(); row++ {
		y := config.WaterfallStartY + row
		for x := 0; x < config.DisplayWidth; x++ {
			if w.On(row, x) {
				f.PutPixel(x, y)
			}
		}
	}
}
