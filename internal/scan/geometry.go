package scan

import (
	"errors"
	"fmt"

	"rf-scope.dev/internal/config"
)

// ErrBadGeometry reports a scan geometry that cannot be swept safely.
var ErrBadGeometry = errors.New("invalid scan geometry")

// StepSizesHz is the selectable scan-step table, finest first.
var StepSizesHz = []uint32{
	10, 50, 100, 250, 500,
	1_000, 2_500, 5_000, 6_250, 8_330,
	10_000, 12_500, 25_000, 50_000, 100_000,
}

// StepCounts is the selectable steps-per-scan table, indexed by the persisted
// steps-count index.
var StepCounts = []int{128, 64, 32, 16}

// Geometry describes one scan: where it starts, how far apart the steps are,
// and how many there are. It is immutable for the duration of a scan.
type Geometry struct {
	StartHz uint32
	StepHz  uint32
	Steps   int
}

// NewGeometry builds a geometry from a start frequency and the persisted
// step/count indexes. Out-of-range indexes fall back to the coarsest entry.
func NewGeometry(startHz uint32, stepIndex, countIndex int) Geometry {
	if stepIndex < 0 || stepIndex >= len(StepSizesHz) {
		stepIndex = len(StepSizesHz) - 1
	}
	if countIndex < 0 || countIndex >= len(StepCounts) {
		countIndex = 0
	}
	return Geometry{
		StartHz: startHz,
		StepHz:  StepSizesHz[stepIndex],
		Steps:   StepCounts[countIndex],
	}
}

// Validate rejects geometries that would index out of bounds or sweep outside
// the receiver's band.
func (g Geometry) Validate() error {
	if g.Steps <= 0 || g.Steps > Size {
		return fmt.Errorf("%w: step count %d", ErrBadGeometry, g.Steps)
	}
	if g.StepHz == 0 {
		return fmt.Errorf("%w: zero step size", ErrBadGeometry)
	}
	if g.StartHz < config.FreqMinHz || g.EndHz() > config.FreqMaxHz {
		return fmt.Errorf("%w: range %d-%d Hz outside band", ErrBadGeometry, g.StartHz, g.EndHz())
	}
	return nil
}

// FreqAt returns the frequency of step i.
func (g Geometry) FreqAt(i int) uint32 {
	return g.StartHz + uint32(i)*g.StepHz
}

// EndHz returns the frequency one step past the last measured step.
func (g Geometry) EndHz() uint32 {
	return g.StartHz + uint32(g.Steps)*g.StepHz
}

// SpanHz returns the swept bandwidth.
func (g Geometry) SpanHz() uint32 {
	return uint32(g.Steps) * g.StepHz
}

// ShiftStepHz is the default amount a range shift moves the start frequency:
// half the span, as on the handheld.
func (g Geometry) ShiftStepHz() uint32 {
	return g.SpanHz() >> 1
}
