package scan

import (
	"io"

	"github.com/sirupsen/logrus"

	"rf-scope.dev/internal/config"
	"rf-scope.dev/internal/radio"
)

// Mode is the engine's primary state.
type Mode int

const (
	// Sweeping advances one scan step per tick.
	Sweeping Mode = iota
	// Listening holds the tuned frequency and monitors the parked signal.
	Listening
)

func (m Mode) String() string {
	if m == Listening {
		return "LISTEN"
	}
	return "SWEEP"
}

// Snapshot is the read-only view of a completed scan handed to callbacks.
type Snapshot struct {
	Geometry Geometry
	Bins     []uint16
	Peak     Peak
	Min      uint16
	Max      uint16
	Trigger  uint16
}

// Config carries everything the engine needs at mode entry. Callbacks are
// invoked synchronously from Tick, in tick order: OnSweepEnd fires on every
// sweep boundary before the peak decision, OnScanComplete only when the
// sweep ends without entering Listening.
type Config struct {
	Geometry Geometry

	// Trigger is the listen threshold in raw strength units. Zero selects
	// automatic mode: sweep max plus a fixed margin, recomputed on forced
	// peak updates.
	Trigger uint16

	ListenHoldTicks int
	PeakAgeLimit    uint32

	OnSweepEnd       func()
	OnScanComplete   func(Snapshot)
	OnSignalDetected func(freq uint32, rssi uint16)
	OnSignalLost     func(freq uint32)

	Logger logrus.FieldLogger
}

// Engine drives the sweep/listen state machine. One call to Tick performs at
// most one scan step or one listen sample; all state is owned by the caller's
// single tick context, so no locking happens here.
type Engine struct {
	trx radio.Transceiver
	cfg Config
	log logrus.FieldLogger

	geom Geometry
	hist History
	cur  Cursor
	peak Peak

	// trigger holds the effective listen threshold; Invalid means automatic
	// mode with no level acquired yet.
	trigger     uint16
	autoTrigger bool

	mode      Mode
	listenT   int
	monitor   bool
	newScan   bool
	redraw    bool
	scanCount uint64

	entryHz uint32
	closed  bool
}

// New validates the configuration and builds an engine parked at the start
// of its first scan.
func New(trx radio.Transceiver, cfg Config) (*Engine, error) {
	if err := cfg.Geometry.Validate(); err != nil {
		return nil, err
	}
	if cfg.ListenHoldTicks <= 0 {
		cfg.ListenHoldTicks = config.ListenHoldTicks
	}
	if cfg.PeakAgeLimit == 0 {
		cfg.PeakAgeLimit = config.PeakAgeLimit
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	e := &Engine{
		trx:     trx,
		cfg:     cfg,
		log:     log,
		geom:    cfg.Geometry,
		newScan: true,
		entryHz: cfg.Geometry.FreqAt(cfg.Geometry.Steps / 2),
	}
	if cfg.Trigger == 0 {
		e.autoTrigger = true
		e.trigger = Invalid
	} else {
		e.trigger = cfg.Trigger
	}
	e.resetScanStats()
	return e, nil
}

// Tick advances the state machine by one step. Ordering within a tick is
// strict: sampling and history update complete before the caller's
// filter/waterfall update, which completes before render.
func (e *Engine) Tick() {
	if e.closed {
		return
	}
	if e.newScan {
		e.initScan()
		e.newScan = false
	}
	if e.mode == Listening {
		e.tickListen()
		return
	}
	e.tickSweep()
}

func (e *Engine) tickSweep() {
	if e.cur.Step < e.geom.Steps {
		e.sampleStep()
		e.advance()
		return
	}
	e.completeSweep()
}

// sampleStep measures the current step unless its bin carries the sentinel,
// in which case the step is skipped without sampling and the sentinel is
// preserved.
func (e *Engine) sampleStep() {
	if e.hist.Blacklisted(e.cur.Step) {
		return
	}
	f := e.cur.Freq
	if err := e.trx.Tune(f); err != nil {
		e.log.WithError(err).WithField("hz", f).Warn("tune failed")
		return
	}
	rssi, err := e.trx.Measure(f)
	if err != nil {
		// The previous reading stays in place; stall handling is the
		// sample source's concern.
		e.log.WithError(err).WithField("hz", f).Warn("measure failed")
		return
	}
	e.hist.Set(e.cur.Step, rssi)
	e.cur.Observe(rssi)
}

func (e *Engine) advance() {
	e.peak.Age++
	e.cur.Step++
	e.cur.Freq += e.geom.StepHz
}

// completeSweep runs on the tick after the last step was measured. The
// unused history tail is cleared unconditionally, the per-bin hold overlay is
// cleared in the same tick via OnSweepEnd, and only then is the peak
// decision made.
func (e *Engine) completeSweep() {
	e.hist.ClearFrom(e.geom.Steps)
	if e.cfg.OnSweepEnd != nil {
		e.cfg.OnSweepEnd()
	}

	e.peak.UpdateAuto(&e.cur, e.cfg.PeakAgeLimit)
	e.autoTriggerLevel()
	e.redraw = true

	if e.peakOverTrigger() {
		e.startListening()
		return
	}

	if e.cfg.OnScanComplete != nil {
		e.cfg.OnScanComplete(e.Snapshot())
	}
	e.scanCount++
	e.newScan = true
}

// autoTriggerLevel acquires the automatic threshold once a sweep has
// produced a maximum, leaving manual levels alone.
func (e *Engine) autoTriggerLevel() {
	if e.trigger != Invalid {
		return
	}
	t := int(e.cur.Max) + config.TriggerMargin
	if t >= int(Invalid) {
		t = int(Invalid) - 1
	}
	e.trigger = uint16(t)
}

func (e *Engine) peakOverTrigger() bool {
	return e.trigger != Invalid && e.peak.RSSI >= e.trigger
}

func (e *Engine) startListening() {
	e.mode = Listening
	e.listenT = e.cfg.ListenHoldTicks
	if err := e.trx.SetListening(true); err != nil {
		e.log.WithError(err).Warn("listen enable failed")
	}
	e.cur.Step = e.peak.Step
	e.cur.Freq = e.peak.Freq
	e.cur.RSSI = e.peak.RSSI
	if err := e.trx.Tune(e.peak.Freq); err != nil {
		e.log.WithError(err).Warn("tune to peak failed")
	}
	e.log.WithFields(logrus.Fields{
		"hz":   e.peak.Freq,
		"rssi": e.peak.RSSI,
	}).Info("signal detected, listening")
	if e.cfg.OnSignalDetected != nil {
		e.cfg.OnSignalDetected(e.peak.Freq, e.peak.RSSI)
	}
}

// tickListen runs the listen countdown. The timer reloads while the signal
// stays over the trigger (or monitor mode pins it); a squelch-tail event
// zeroes it so the sweep resumes without waiting out the hold.
func (e *Engine) tickListen() {
	tail := false
	if td, ok := e.trx.(radio.TailDetector); ok && td.TailDetected() {
		tail = true
		e.listenT = 0
	}
	if e.listenT > 0 {
		e.listenT--
		return
	}

	rssi, err := e.trx.Measure(e.peak.Freq)
	if err != nil {
		e.log.WithError(err).Warn("listen measure failed")
	} else {
		e.cur.RSSI = rssi
		e.peak.RSSI = rssi
	}
	e.redraw = true

	if (e.peakOverTrigger() && !tail) || e.monitor {
		e.listenT = e.cfg.ListenHoldTicks
		return
	}

	e.stopListening()
	// Returning to the sweep resets the in-progress scan statistics fully,
	// not just the overlay.
	e.resetScanStats()
	e.newScan = true
}

func (e *Engine) stopListening() {
	if e.mode != Listening {
		return
	}
	e.mode = Sweeping
	if err := e.trx.SetListening(false); err != nil {
		e.log.WithError(err).Warn("listen disable failed")
	}
	e.log.WithField("hz", e.peak.Freq).Info("signal lost, resuming sweep")
	if e.cfg.OnSignalLost != nil {
		e.cfg.OnSignalLost(e.peak.Freq)
	}
}

func (e *Engine) initScan() {
	e.resetScanStats()
	e.cur.Step = 0
	e.cur.Freq = e.geom.StartHz
}

func (e *Engine) resetScanStats() {
	e.cur = Cursor{Min: Invalid}
}

// Relaunch fully resets scan statistics, the global peak, and (in automatic
// mode) the trigger level, and restarts the sweep from step zero. Calling it
// twice in a row yields the same cleared state as once.
func (e *Engine) Relaunch() {
	e.stopListening()
	e.mode = Sweeping
	e.peak.Reset()
	if e.autoTrigger {
		e.trigger = Invalid
	}
	e.initScan()
	e.newScan = false
	e.redraw = true
}

// Blacklist marks the current global peak's bin with the sentinel so it is
// never resampled, drops the peak, stops listening, and resets scan
// statistics.
func (e *Engine) Blacklist() {
	if e.peak.Empty() {
		return
	}
	e.log.WithField("hz", e.peak.Freq).Info("bin blacklisted")
	e.hist.Blacklist(e.peak.Step)
	e.peak.Reset()
	e.stopListening()
	e.resetScanStats()
	// The cursor no longer points into the sweep; start a fresh scan so the
	// next tick re-seeds step and frequency from the geometry.
	e.newScan = true
	e.redraw = true
}

// ClearBlacklist re-enables every blacklisted bin.
func (e *Engine) ClearBlacklist() {
	e.hist.ClearBlacklist()
}

// SetGeometry swaps in a new scan geometry and relaunches. An invalid
// geometry is rejected and the last-known-good one stays in effect.
func (e *Engine) SetGeometry(g Geometry) error {
	if err := g.Validate(); err != nil {
		e.log.WithError(err).Warn("geometry rejected")
		return err
	}
	e.geom = g
	e.entryHz = g.FreqAt(g.Steps / 2)
	e.hist.ClearBlacklist()
	e.Relaunch()
	return nil
}

// SetTrigger sets a manual trigger level. Zero returns to automatic mode.
func (e *Engine) SetTrigger(v uint16) {
	if v == 0 {
		e.autoTrigger = true
		e.trigger = Invalid
		return
	}
	e.autoTrigger = false
	e.trigger = v
}

// Trigger returns the effective trigger level; Invalid means automatic mode
// has not acquired one yet.
func (e *Engine) Trigger() uint16 { return e.trigger }

// SetMonitor pins listening on regardless of the trigger level.
func (e *Engine) SetMonitor(on bool) { e.monitor = on }

// Monitor reports whether monitor mode is active.
func (e *Engine) Monitor() bool { return e.monitor }

// History exposes the live history buffer. Callers must only read it between
// ticks, never concurrently with one.
func (e *Engine) History() *History { return &e.hist }

// Cursor returns a copy of the in-progress scan state.
func (e *Engine) Cursor() Cursor { return e.cur }

// Peak returns a copy of the global peak.
func (e *Engine) Peak() Peak { return e.peak }

// Mode returns the current primary state.
func (e *Engine) Mode() Mode { return e.mode }

// Geometry returns the active scan geometry.
func (e *Engine) Geometry() Geometry { return e.geom }

// ScanCount returns how many sweeps have completed without triggering.
func (e *Engine) ScanCount() uint64 { return e.scanCount }

// ListenRemaining returns the listen countdown in ticks.
func (e *Engine) ListenRemaining() int { return e.listenT }

// TakeRedraw returns and clears the redraw flag.
func (e *Engine) TakeRedraw() bool {
	r := e.redraw
	e.redraw = false
	return r
}

// Snapshot builds the read-only view of the current scan state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Geometry: e.geom,
		Bins:     e.hist.Snapshot(),
		Peak:     e.peak,
		Min:      e.cur.Min,
		Max:      e.cur.Max,
		Trigger:  e.trigger,
	}
}

// Close unwinds the mode: listening is disabled and the receiver is retuned
// to the entry frequency so externally-owned configuration is restored. A
// closed engine ignores further ticks.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.trx.SetListening(false); err != nil {
		return err
	}
	return e.trx.Tune(e.entryHz)
}
