package spectrum

import (
	"testing"

	"rf-scope.dev/internal/config"
	"rf-scope.dev/internal/display"
	"rf-scope.dev/internal/radio"
	"rf-scope.dev/internal/scan"
)

func TestDrawSpectrumBars(t *testing.T) {
	var h scan.History
	for i := 0; i < scan.Size; i++ {
		h.Set(i, radio.FromDBm(-120))
	}
	h.Set(64, radio.FromDBm(-60))

	p := NewPipeline(3, 5)
	p.Update(&h)

	f := display.NewFrame()
	DrawSpectrum(f, p, scan.Size, -130, -50)

	// Every column has at least its baseline pixel.
	for x := 0; x < config.DisplayWidth; x++ {
		if !f.On(x, config.SpectrumEndY) {
			t.Fatalf("column %d missing its baseline pixel", x)
		}
	}

	// The strong bin's bar reaches higher than a quiet one's.
	top := func(x int) int {
		for y := 0; y <= config.SpectrumEndY; y++ {
			if f.On(x, y) {
				return y
			}
		}
		return config.SpectrumEndY + 1
	}
	if top(64) >= top(10) {
		t.Fatalf("strong bin top %d not above quiet bin top %d", top(64), top(10))
	}
}

func TestDrawSpectrumSkipsSentinel(t *testing.T) {
	var h scan.History
	// Only the sentinel in range: nothing to draw anywhere.
	h.Blacklist(5)

	p := NewPipeline(3, 5)
	p.Update(&h)

	f := display.NewFrame()
	DrawSpectrum(f, p, scan.Size, -130, -50)
	for x := 0; x < config.DisplayWidth; x++ {
		for y := 0; y <= config.SpectrumEndY; y++ {
			if f.On(x, y) {
				t.Fatalf("pixel lit at (%d,%d) with no valid data", x, y)
			}
		}
	}
}

func TestDrawTriggerLevelDashed(t *testing.T) {
	f := display.NewFrame()
	trig := radio.FromDBm(-90)
	DrawTriggerLevel(f, trig, -130, -50)

	y := radio.ToY(trig, -130, -50, config.SpectrumEndY)
	for x := 0; x < config.DisplayWidth; x++ {
		want := x%2 == 0
		if f.On(x, y) != want {
			t.Fatalf("trigger pixel at x=%d lit=%v, want %v", x, f.On(x, y), want)
		}
	}
}

func TestDrawTriggerLevelSentinelDrawsNothing(t *testing.T) {
	f := display.NewFrame()
	DrawTriggerLevel(f, scan.Invalid, -130, -50)
	for y := 0; y < config.DisplayHeight; y++ {
		for x := 0; x < config.DisplayWidth; x++ {
			if f.On(x, y) {
				t.Fatalf("pixel lit at (%d,%d) for an unacquired trigger", x, y)
			}
		}
	}
}

func TestDrawRulerBaselineAndMarkers(t *testing.T) {
	f := display.NewFrame()
	g := scan.Geometry{StartHz: 144_000_000, StepHz: 25_000, Steps: 64}
	DrawRuler(f, g)

	for x := 0; x < config.DisplayWidth; x++ {
		if !f.On(x, config.RulerY) {
			t.Fatalf("ruler baseline broken at x=%d", x)
		}
	}
	for _, x := range []int{0, config.DisplayWidth / 2, config.DisplayWidth - 1} {
		if !f.On(x, config.RulerY-1) || !f.On(x, config.RulerY-2) {
			t.Fatalf("marker missing at x=%d", x)
		}
	}
}

func TestDrawWaterfallBlit(t *testing.T) {
	w := NewWaterfall()
	bins := levelBins(-50)
	w.AddLine(bins, scan.Size, -130, -50)

	f := display.NewFrame()
	DrawWaterfall(f, w)

	match := false
	for x := 0; x < config.DisplayWidth; x++ {
		if w.On(0, x) {
			if !f.On(x, config.WaterfallStartY) {
				t.Fatalf("waterfall pixel at col %d not blitted", x)
			}
			match = true
		}
	}
	if !match {
		t.Fatal("no waterfall pixels to verify")
	}
}
