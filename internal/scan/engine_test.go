package scan

import (
	"testing"

	"rf-scope.dev/internal/config"
	"rf-scope.dev/internal/radio"
)

// fakeTRX is a scripted transceiver: Measure returns the level programmed
// for the frequency, or a quiet floor.
type fakeTRX struct {
	levels   map[uint32]uint16
	tunes    []uint32
	measures []uint32
	listen   []bool
	tail     bool
}

func newFakeTRX() *fakeTRX {
	return &fakeTRX{levels: make(map[uint32]uint16)}
}

func (f *fakeTRX) Tune(hz uint32) error {
	f.tunes = append(f.tunes, hz)
	return nil
}

func (f *fakeTRX) Measure(hz uint32) (uint16, error) {
	f.measures = append(f.measures, hz)
	if v, ok := f.levels[hz]; ok {
		return v, nil
	}
	return radio.FromDBm(-120), nil
}

func (f *fakeTRX) SetListening(on bool) error {
	f.listen = append(f.listen, on)
	return nil
}

func (f *fakeTRX) TailDetected() bool {
	t := f.tail
	f.tail = false
	return t
}

func (f *fakeTRX) measureCount(hz uint32) int {
	n := 0
	for _, m := range f.measures {
		if m == hz {
			n++
		}
	}
	return n
}

const (
	testStartHz = uint32(144_000_000)
	testStepHz  = uint32(25_000)
)

func testGeometry(steps int) Geometry {
	return Geometry{StartHz: testStartHz, StepHz: testStepHz, Steps: steps}
}

func newTestEngine(t *testing.T, trx radio.Transceiver, cfg Config) *Engine {
	t.Helper()
	if cfg.Geometry.Steps == 0 {
		cfg.Geometry = testGeometry(16)
	}
	e, err := New(trx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// runSweep ticks through one full scan: one tick per step plus the
// completion tick.
func runSweep(e *Engine) {
	for i := 0; i <= e.Geometry().Steps; i++ {
		e.Tick()
	}
}

func TestSweepFillsHistory(t *testing.T) {
	trx := newFakeTRX()
	completed := 0
	e := newTestEngine(t, trx, Config{
		Geometry:       testGeometry(16),
		Trigger:        0xFFFE, // never triggers
		OnScanComplete: func(Snapshot) { completed++ },
	})

	runSweep(e)

	for i := 0; i < 16; i++ {
		if v := e.History().At(i); v == 0 || v == Invalid {
			t.Fatalf("bin %d not filled: %#x", i, v)
		}
	}
	if completed != 1 {
		t.Fatalf("scan completions = %d, want 1", completed)
	}
	if got := trx.measureCount(testStartHz); got != 1 {
		t.Fatalf("start frequency measured %d times, want 1", got)
	}
}

func TestFullWidthScanReachesLastBin(t *testing.T) {
	trx := newFakeTRX()
	e := newTestEngine(t, trx, Config{
		Geometry: testGeometry(Size),
		Trigger:  0xFFFE,
	})

	runSweep(e)

	last := testStartHz + uint32(Size-1)*testStepHz
	if got := trx.measureCount(last); got != 1 {
		t.Fatalf("last bin measured %d times, want 1", got)
	}
	if v := e.History().At(Size - 1); v == 0 || v == Invalid {
		t.Fatalf("bin %d not filled: %#x", Size-1, v)
	}
}

func TestCompletionClearsTail(t *testing.T) {
	trx := newFakeTRX()
	e := newTestEngine(t, trx, Config{
		Geometry: testGeometry(16),
		Trigger:  0xFFFE,
	})

	// Dirty bins beyond the scan as a wider earlier scan would have.
	e.History().Set(20, 500)
	e.History().Set(Size-1, 500)

	runSweep(e)

	for i := 16; i < Size; i++ {
		if v := e.History().At(i); v != 0 {
			t.Fatalf("tail bin %d = %#x, want 0", i, v)
		}
	}
}

func TestSweepEndFiresBeforePeakDecision(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 5*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	var order []string
	e := newTestEngine(t, trx, Config{
		Geometry:         testGeometry(16),
		Trigger:          radio.FromDBm(-70),
		OnSweepEnd:       func() { order = append(order, "sweep_end") },
		OnSignalDetected: func(uint32, uint16) { order = append(order, "detected") },
	})

	runSweep(e)

	if len(order) != 2 || order[0] != "sweep_end" || order[1] != "detected" {
		t.Fatalf("callback order = %v", order)
	}
}

func TestAutoTriggerAcquired(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 3*testStepHz
	trx.levels[hot] = radio.FromDBm(-70)

	e := newTestEngine(t, trx, Config{Geometry: testGeometry(16)})
	if e.Trigger() != Invalid {
		t.Fatalf("trigger before first sweep = %#x, want sentinel", e.Trigger())
	}

	runSweep(e)

	want := radio.FromDBm(-70) + config.TriggerMargin
	if e.Trigger() != want {
		t.Fatalf("auto trigger = %d, want %d", e.Trigger(), want)
	}
	if e.Mode() != Sweeping {
		t.Fatalf("mode = %v, want sweeping on the acquisition sweep", e.Mode())
	}
}

func TestListenTransition(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 7*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	var detected uint32
	e := newTestEngine(t, trx, Config{
		Geometry:         testGeometry(16),
		Trigger:          radio.FromDBm(-80),
		OnSignalDetected: func(hz uint32, _ uint16) { detected = hz },
	})

	runSweep(e)

	if e.Mode() != Listening {
		t.Fatalf("mode = %v, want listening", e.Mode())
	}
	if detected != hot {
		t.Fatalf("detected %d Hz, want %d", detected, hot)
	}
	if len(trx.listen) == 0 || !trx.listen[len(trx.listen)-1] {
		t.Fatalf("listening not enabled on the transceiver: %v", trx.listen)
	}
	if got := trx.tunes[len(trx.tunes)-1]; got != hot {
		t.Fatalf("parked at %d Hz, want %d", got, hot)
	}
	if e.ListenRemaining() != config.ListenHoldTicks {
		t.Fatalf("listen countdown = %d, want %d", e.ListenRemaining(), config.ListenHoldTicks)
	}
}

func TestListenCountdownThenResume(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 2*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	lost := false
	e := newTestEngine(t, trx, Config{
		Geometry:        testGeometry(16),
		Trigger:         radio.FromDBm(-80),
		ListenHoldTicks: 3,
		OnSignalLost:    func(uint32) { lost = true },
	})

	runSweep(e)
	if e.Mode() != Listening {
		t.Fatalf("mode = %v, want listening", e.Mode())
	}

	// Signal goes away while the countdown runs.
	trx.levels[hot] = radio.FromDBm(-120)

	for i := 0; i < 3; i++ {
		e.Tick() // countdown only, no measurement
		if e.Mode() != Listening {
			t.Fatalf("left listening during countdown at tick %d", i)
		}
	}
	e.Tick() // measures, sees the signal gone

	if !lost {
		t.Fatal("signal loss not reported")
	}
	if e.Mode() != Sweeping {
		t.Fatalf("mode = %v, want sweeping", e.Mode())
	}
	if len(trx.listen) == 0 || trx.listen[len(trx.listen)-1] {
		t.Fatalf("listening not disabled on the transceiver: %v", trx.listen)
	}
	// Expiry starts a fresh scan with fully reset statistics.
	if min := e.Cursor().Min; min != Invalid {
		t.Fatalf("cursor min after expiry = %#x, want sentinel", min)
	}
}

func TestListenReloadsWhileSignalHolds(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 2*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	e := newTestEngine(t, trx, Config{
		Geometry:        testGeometry(16),
		Trigger:         radio.FromDBm(-80),
		ListenHoldTicks: 2,
	})

	runSweep(e)
	for i := 0; i < 10; i++ {
		e.Tick()
	}
	if e.Mode() != Listening {
		t.Fatalf("mode = %v, want still listening", e.Mode())
	}
}

func TestSquelchTailZeroesCountdown(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 2*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	e := newTestEngine(t, trx, Config{
		Geometry:        testGeometry(16),
		Trigger:         radio.FromDBm(-80),
		ListenHoldTicks: 50,
	})

	runSweep(e)
	if e.Mode() != Listening {
		t.Fatalf("mode = %v, want listening", e.Mode())
	}

	// The tail event resumes the sweep on the next tick even though the
	// carrier is still strong.
	trx.tail = true
	e.Tick()

	if e.Mode() != Sweeping {
		t.Fatalf("mode after tail = %v, want sweeping", e.Mode())
	}
}

func TestMonitorPinsListening(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 2*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	e := newTestEngine(t, trx, Config{
		Geometry:        testGeometry(16),
		Trigger:         radio.FromDBm(-80),
		ListenHoldTicks: 1,
	})

	runSweep(e)
	e.SetMonitor(true)
	trx.levels[hot] = radio.FromDBm(-120)

	for i := 0; i < 20; i++ {
		e.Tick()
	}
	if e.Mode() != Listening {
		t.Fatalf("mode = %v, want listening under monitor", e.Mode())
	}

	e.SetMonitor(false)
	for i := 0; i < 3; i++ {
		e.Tick()
	}
	if e.Mode() != Sweeping {
		t.Fatalf("mode = %v, want sweeping after monitor off", e.Mode())
	}
}

func TestBlacklistedBinNeverResampled(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 4*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	e := newTestEngine(t, trx, Config{
		Geometry: testGeometry(16),
		Trigger:  radio.FromDBm(-80),
	})

	runSweep(e)
	if e.Mode() != Listening {
		t.Fatalf("mode = %v, want listening", e.Mode())
	}

	e.Blacklist()
	if e.Mode() != Sweeping {
		t.Fatalf("mode after blacklist = %v, want sweeping", e.Mode())
	}
	if !e.Peak().Empty() {
		t.Fatal("peak survived blacklisting")
	}

	before := trx.measureCount(hot)
	for i := 0; i < 3; i++ {
		runSweep(e)
	}
	if got := trx.measureCount(hot); got != before {
		t.Fatalf("blacklisted frequency measured %d more times", got-before)
	}
	if !e.History().Blacklisted(4) {
		t.Fatal("bin 4 lost its sentinel")
	}

	e.ClearBlacklist()
	runSweep(e)
	if got := trx.measureCount(hot); got == before {
		t.Fatal("cleared bin still not sampled")
	}
}

func TestBlacklistResumesAtScanStart(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 4*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	e := newTestEngine(t, trx, Config{
		Geometry: testGeometry(16),
		Trigger:  radio.FromDBm(-80),
	})

	runSweep(e)
	if e.Mode() != Listening {
		t.Fatalf("mode = %v, want listening", e.Mode())
	}

	e.Blacklist()
	e.Tick()

	// The first post-blacklist tick must sweep from the configured band,
	// never from a zeroed cursor frequency.
	if got := trx.tunes[len(trx.tunes)-1]; got != testStartHz {
		t.Fatalf("first tick after blacklist tuned %d Hz, want %d", got, testStartHz)
	}
	if got := trx.measures[len(trx.measures)-1]; got < testStartHz {
		t.Fatalf("measured %d Hz after blacklist, want within the band", got)
	}
	if step := e.Cursor().Step; step != 1 {
		t.Fatalf("cursor step after first tick = %d, want 1", step)
	}
}

func TestRelaunchIdempotent(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 4*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)

	e := newTestEngine(t, trx, Config{Geometry: testGeometry(16)})
	runSweep(e)
	runSweep(e)

	e.Relaunch()
	first := e.Snapshot()
	e.Relaunch()
	second := e.Snapshot()

	if !first.Peak.Empty() || !second.Peak.Empty() {
		t.Fatal("relaunch kept the global peak")
	}
	if first.Trigger != Invalid || second.Trigger != Invalid {
		t.Fatalf("relaunch kept the auto trigger: %#x %#x", first.Trigger, second.Trigger)
	}
	if e.Mode() != Sweeping {
		t.Fatalf("mode = %v, want sweeping", e.Mode())
	}
	if e.Cursor().Step != 0 {
		t.Fatalf("cursor step = %d, want 0", e.Cursor().Step)
	}
}

func TestRelaunchKeepsManualTrigger(t *testing.T) {
	trx := newFakeTRX()
	e := newTestEngine(t, trx, Config{
		Geometry: testGeometry(16),
		Trigger:  radio.FromDBm(-70),
	})
	runSweep(e)
	e.Relaunch()
	if e.Trigger() != radio.FromDBm(-70) {
		t.Fatalf("manual trigger = %d after relaunch, want %d", e.Trigger(), radio.FromDBm(-70))
	}
}

func TestSetGeometryRejectsInvalid(t *testing.T) {
	trx := newFakeTRX()
	e := newTestEngine(t, trx, Config{Geometry: testGeometry(16), Trigger: 0xFFFE})

	cases := []Geometry{
		{StartHz: testStartHz, StepHz: testStepHz, Steps: 0},
		{StartHz: testStartHz, StepHz: testStepHz, Steps: Size + 1},
		{StartHz: testStartHz, StepHz: 0, Steps: 16},
		{StartHz: 1_000_000, StepHz: testStepHz, Steps: 16}, // below band
	}
	for _, g := range cases {
		if err := e.SetGeometry(g); err == nil {
			t.Fatalf("geometry %+v accepted", g)
		}
		if e.Geometry() != testGeometry(16) {
			t.Fatalf("geometry changed to %+v after rejection", e.Geometry())
		}
	}

	good := Geometry{StartHz: testStartHz, StepHz: 12_500, Steps: 32}
	if err := e.SetGeometry(good); err != nil {
		t.Fatalf("valid geometry rejected: %v", err)
	}
	if e.Geometry() != good {
		t.Fatalf("geometry = %+v, want %+v", e.Geometry(), good)
	}
}

func TestCloseRestoresEntryState(t *testing.T) {
	trx := newFakeTRX()
	g := testGeometry(16)
	e := newTestEngine(t, trx, Config{Geometry: g, Trigger: 0xFFFE})

	runSweep(e)
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(trx.listen) == 0 || trx.listen[len(trx.listen)-1] {
		t.Fatalf("listening not disabled on close: %v", trx.listen)
	}
	entry := g.FreqAt(g.Steps / 2)
	if got := trx.tunes[len(trx.tunes)-1]; got != entry {
		t.Fatalf("closed at %d Hz, want entry frequency %d", got, entry)
	}

	n := len(trx.measures)
	e.Tick()
	if len(trx.measures) != n {
		t.Fatal("closed engine still sampling")
	}
}

func TestPeakAgesOutAndReacquires(t *testing.T) {
	trx := newFakeTRX()
	hot := testStartHz + 3*testStepHz
	warm := testStartHz + 9*testStepHz
	trx.levels[hot] = radio.FromDBm(-60)
	trx.levels[warm] = radio.FromDBm(-75)

	e := newTestEngine(t, trx, Config{
		Geometry:     testGeometry(16),
		Trigger:      0xFFFE,
		PeakAgeLimit: 20, // ages out within two sweeps
	})

	runSweep(e)
	if e.Peak().Freq != hot {
		t.Fatalf("peak at %d Hz, want %d", e.Peak().Freq, hot)
	}

	// The strong carrier disappears; within the age window the weaker one
	// must not displace it, after the window it must.
	trx.levels[hot] = radio.FromDBm(-120)
	runSweep(e)
	if e.Peak().Freq != hot {
		t.Fatalf("peak displaced inside the age window: %d Hz", e.Peak().Freq)
	}
	runSweep(e)
	if e.Peak().Freq != warm {
		t.Fatalf("aged peak not reacquired: %d Hz, want %d", e.Peak().Freq, warm)
	}
}

func TestMeasureErrorKeepsPreviousReading(t *testing.T) {
	trx := newFakeTRX()
	e := newTestEngine(t, trx, Config{Geometry: testGeometry(16), Trigger: 0xFFFE})

	runSweep(e)
	prev := e.History().At(5)

	failing := &failingTRX{fakeTRX: trx, failAt: testStartHz + 5*testStepHz}
	e2 := newTestEngine(t, failing, Config{Geometry: testGeometry(16), Trigger: 0xFFFE})
	runSweep(e2)
	e2.History().Set(5, prev)
	runSweep(e2)
	if got := e2.History().At(5); got != prev {
		t.Fatalf("failed bin overwritten: %#x, want %#x", got, prev)
	}
}

type failingTRX struct {
	*fakeTRX
	failAt uint32
}

func (f *failingTRX) Measure(hz uint32) (uint16, error) {
	if hz == f.failAt {
		return 0, radio.ErrNotReady
	}
	return f.fakeTRX.Measure(hz)
}
