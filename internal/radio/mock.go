package radio

import (
	"math"
	"math/rand"
	"sync"
)

// mockCarrier is one synthetic transmitter in the simulated band.
type mockCarrier struct {
	hz        uint32
	levelDBm  float64 // level at center frequency
	widthHz   float64 // gaussian skirt width
	phase     float64
	fadeDBm   float64 // fade depth
	burstLen  float64 // fraction of the duty cycle the carrier keys up
	burstRate float64 // keying cycles per simulated second
}

// Mock synthesizes a signal environment for demo mode and tests: a handful
// of carriers with gaussian skirts, sinusoidal fading and on/off keying over
// a gaussian noise floor.
type Mock struct {
	mu        sync.Mutex
	rng       *rand.Rand
	carriers  []mockCarrier
	floorDBm  float64
	tuned     uint32
	bandwidth uint32
	listening bool
	flaky     float64 // probability a Measure call reports ErrNotReady
	t         float64 // simulated seconds, advanced per sample
}

// NewMock builds a simulated band centered on centerHz. The same seed always
// produces the same carriers and the same noise sequence.
func NewMock(seed int64, centerHz uint32, spanHz uint32) *Mock {
	rng := rand.New(rand.NewSource(seed))
	m := &Mock{
		rng:      rng,
		floorDBm: -127,
	}

	n := 3 + rng.Intn(3)
	for i := 0; i < n; i++ {
		offset := (rng.Float64() - 0.5) * float64(spanHz)
		m.carriers = append(m.carriers, mockCarrier{
			hz:        uint32(int64(centerHz) + int64(offset)),
			levelDBm:  -100 + rng.Float64()*35, // -100 to -65 dBm
			widthHz:   3_000 + rng.Float64()*15_000,
			phase:     rng.Float64() * 2 * math.Pi,
			fadeDBm:   2 + rng.Float64()*8,
			burstLen:  0.4 + rng.Float64()*0.6,
			burstRate: 0.05 + rng.Float64()*0.2,
		})
	}
	return m
}

// Tune records the receiver frequency.
func (m *Mock) Tune(hz uint32) error {
	m.mu.Lock()
	m.tuned = hz
	m.mu.Unlock()
	return nil
}

// Measure returns the synthesized strength at hz.
func (m *Mock) Measure(hz uint32) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.flaky > 0 && m.rng.Float64() < m.flaky {
		return 0, ErrNotReady
	}

	m.tuned = hz
	m.t += 0.002 // ~2 ms per sample

	dbm := m.floorDBm + m.rng.NormFloat64()*1.5
	for _, c := range m.carriers {
		if !c.keyed(m.t) {
			continue
		}
		d := float64(int64(hz)-int64(c.hz)) / c.widthHz
		level := c.levelDBm - 0.5*d*d*10 + c.fadeDBm*math.Sin(m.t*2*math.Pi*0.3+c.phase)
		if level > dbm {
			dbm = level
		}
	}
	return FromDBm(int(math.Round(dbm))), nil
}

// keyed reports whether the carrier is transmitting at simulated time t.
func (c mockCarrier) keyed(t float64) bool {
	cycle := t * c.burstRate
	return cycle-math.Floor(cycle) < c.burstLen
}

// SetListening records the audio path state.
func (m *Mock) SetListening(on bool) error {
	m.mu.Lock()
	m.listening = on
	m.mu.Unlock()
	return nil
}

// TailDetected reports an occasional squelch-tail event while listening,
// so the listen controller's early-resume path gets exercised in demo mode.
func (m *Mock) TailDetected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listening && m.rng.Float64() < 0.001
}

// SetBandwidth records the receive bandwidth.
func (m *Mock) SetBandwidth(hz uint32) error {
	m.mu.Lock()
	m.bandwidth = hz
	m.mu.Unlock()
	return nil
}

// SetFlaky makes a fraction p of Measure calls fail with ErrNotReady.
func (m *Mock) SetFlaky(p float64) {
	m.mu.Lock()
	m.flaky = p
	m.mu.Unlock()
}
