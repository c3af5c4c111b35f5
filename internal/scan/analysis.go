package scan

import (
	"gonum.org/v1/gonum/stat"

	"rf-scope.dev/internal/radio"
)

// Stats summarizes one completed sweep in dBm terms. The noise floor is the
// mean of the valid bins; sigma its spread. Bins carrying the sentinel or a
// non-positive reading are excluded so blacklisted and unmeasured steps do
// not drag the floor down.
type Stats struct {
	FloorDBm float64
	SigmaDB  float64
	PeakDBm  float64
	SNRdB    float64
	Samples  int
}

// Analyze computes sweep statistics over the first steps bins.
func Analyze(bins []uint16, steps int) Stats {
	if steps > len(bins) {
		steps = len(bins)
	}
	levels := make([]float64, 0, steps)
	peak := 0.0
	for i := 0; i < steps; i++ {
		v := bins[i]
		if v == Invalid || v == 0 {
			continue
		}
		dbm := float64(radio.DBm(v))
		levels = append(levels, dbm)
		if len(levels) == 1 || dbm > peak {
			peak = dbm
		}
	}
	if len(levels) == 0 {
		return Stats{}
	}
	floor := stat.Mean(levels, nil)
	sigma := 0.0
	if len(levels) > 1 {
		sigma = stat.StdDev(levels, nil)
	}
	return Stats{
		FloorDBm: floor,
		SigmaDB:  sigma,
		PeakDBm:  peak,
		SNRdB:    peak - floor,
		Samples:  len(levels),
	}
}
