package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"rf-scope.dev/internal/config"
	"rf-scope.dev/internal/display"
	"rf-scope.dev/internal/radio"
	"rf-scope.dev/internal/scan"
	"rf-scope.dev/internal/spectrum"
	"rf-scope.dev/internal/telemetry"
	"rf-scope.dev/internal/ui"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	trx   radio.Transceiver
	eng   *scan.Engine
	pipe  *spectrum.Pipeline
	wf    *spectrum.Waterfall
	frame *display.Frame
	hub   *telemetry.Hub
	log   logrus.FieldLogger

	settings    *config.Settings
	startHz     uint32
	stats       scan.Stats
	blacklisted int

	// Cached braille rendering of the last drawn frame.
	scope string
}

// Model is the root Bubble Tea model for the spectrum scope.
type Model struct {
	width  int
	height int

	shared *shared
}

// New wires the engine, filters, and telemetry together and returns the root
// model. The hub may be nil when telemetry is disabled.
func New(trx radio.Transceiver, settings *config.Settings, startHz uint32,
	hub *telemetry.Hub, log logrus.FieldLogger) (Model, error) {

	sh := &shared{
		trx:      trx,
		pipe:     spectrum.NewPipeline(config.SmoothWindow, config.PeakHoldFrames),
		wf:       spectrum.NewWaterfall(),
		frame:    display.NewFrame(),
		hub:      hub,
		log:      log,
		settings: settings,
		startHz:  startHz,
	}

	geom := scan.NewGeometry(startHz, settings.ScanStepIndex, settings.StepsCountIndex)
	eng, err := scan.New(trx, scan.Config{
		Geometry:        geom,
		Trigger:         uint16(settings.TriggerLevel),
		ListenHoldTicks: config.ListenHoldTicks,
		PeakAgeLimit:    config.PeakAgeLimit,
		OnSweepEnd:      sh.pipe.ResetHold,
		OnScanComplete:  sh.onScanComplete,
		OnSignalDetected: func(hz uint32, rssi uint16) {
			sh.broadcastEvent("signal_detected", hz, radio.DBm(rssi))
		},
		OnSignalLost: func(hz uint32) {
			sh.broadcastEvent("signal_lost", hz, 0)
		},
		Logger: log,
	})
	if err != nil {
		return Model{}, err
	}
	sh.eng = eng
	sh.applyBandwidth()

	return Model{shared: sh}, nil
}

// applyBandwidth pushes the selected listen bandwidth to receivers that
// support narrowing.
func (sh *shared) applyBandwidth() {
	bs, ok := sh.trx.(radio.BandwidthSetter)
	if !ok {
		return
	}
	if err := bs.SetBandwidth(config.ListenBWHz[sh.settings.ListenBWIndex]); err != nil {
		sh.log.WithError(err).Warn("bandwidth change failed")
	}
}

// onScanComplete runs on every sweep that did not trigger: the waterfall
// takes one line and subscribers get one frame.
func (sh *shared) onScanComplete(snap scan.Snapshot) {
	// The sweep minimum drags the display floor down so the quietest bin
	// always stays on screen.
	if snap.Min != scan.Invalid && snap.Min != 0 {
		if m := radio.DBm(snap.Min); m < sh.settings.DBMin {
			sh.settings.DBMin = m
		}
	}
	sh.stats = scan.Analyze(snap.Bins, snap.Geometry.Steps)
	sh.wf.AddLine(snap.Bins, snap.Geometry.Steps, sh.settings.DBMin, sh.settings.DBMax)

	if sh.hub == nil {
		return
	}
	dbm := make([]int, snap.Geometry.Steps)
	for i := range dbm {
		if snap.Bins[i] == scan.Invalid {
			dbm[i] = 0
			continue
		}
		dbm[i] = radio.DBm(snap.Bins[i])
	}
	sh.hub.Broadcast(telemetry.ScanFrame{
		Type:     "scan",
		Time:     time.Now(),
		StartHz:  snap.Geometry.StartHz,
		StepHz:   snap.Geometry.StepHz,
		Steps:    snap.Geometry.Steps,
		BinsDBm:  dbm,
		PeakHz:   snap.Peak.Freq,
		PeakDBm:  radio.DBm(snap.Peak.RSSI),
		FloorDBm: sh.stats.FloorDBm,
		SigmaDB:  sh.stats.SigmaDB,
		SNRdB:    sh.stats.SNRdB,
	})
}

func (sh *shared) broadcastEvent(kind string, hz uint32, dbm int) {
	if sh.hub == nil {
		return
	}
	sh.hub.Broadcast(telemetry.Event{Type: kind, Time: time.Now(), FreqHz: hz, DBm: dbm})
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		sh := m.shared
		for i := 0; i < config.TicksPerFrame; i++ {
			sh.eng.Tick()
		}
		sh.pipe.Update(sh.eng.History())
		sh.drawFrame()
		return m, tickCmd()
	}

	return m, nil
}

// drawFrame repaints the panel: spectrum band, trigger line, ruler, peak
// marker, waterfall.
func (sh *shared) drawFrame() {
	g := sh.eng.Geometry()
	f := sh.frame
	f.Clear()
	spectrum.DrawSpectrum(f, sh.pipe, g.Steps, sh.settings.DBMin, sh.settings.DBMax)
	spectrum.DrawTriggerLevel(f, sh.eng.Trigger(), sh.settings.DBMin, sh.settings.DBMax)
	spectrum.DrawRuler(f, g)
	if peak := sh.eng.Peak(); !peak.Empty() {
		spectrum.DrawPeakArrow(f, peak.Step, g.Steps)
	}
	spectrum.DrawWaterfall(f, sh.wf)
	sh.scope = display.Braille(f)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sh := m.shared
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "r", "R":
		sh.relaunch()

	case "b", "B":
		if !sh.eng.Peak().Empty() {
			sh.blacklisted++
		}
		sh.eng.Blacklist()

	case "x", "X":
		sh.eng.ClearBlacklist()
		sh.blacklisted = 0

	case "m", "M":
		sh.eng.SetMonitor(!sh.eng.Monitor())

	case "t":
		sh.nudgeTrigger(-config.TriggerNudge)

	case "T":
		sh.nudgeTrigger(config.TriggerNudge)

	case "left", "<":
		sh.shiftRange(false)

	case "right", ">":
		sh.shiftRange(true)

	case "s", "S":
		sh.settings.ScanStepIndex = (sh.settings.ScanStepIndex + 1) % (config.ScanStepIndexMax + 1)
		sh.applyGeometry()

	case "c", "C":
		sh.settings.StepsCountIndex = (sh.settings.StepsCountIndex + 1) % (config.StepsCountIndexMax + 1)
		sh.applyGeometry()

	case "w", "W":
		sh.settings.ListenBWIndex = (sh.settings.ListenBWIndex + 1) % (config.ListenBWIndexMax + 1)
		sh.applyBandwidth()

	case "u":
		if sh.settings.DBMin+4 < sh.settings.DBMax-8 {
			sh.settings.DBMin += 4
		}

	case "d":
		if sh.settings.DBMin > -160 {
			sh.settings.DBMin -= 4
		}
	}

	return m, nil
}

// relaunch is the full user-facing reset: scan state, filters, and the
// waterfall all start over.
func (sh *shared) relaunch() {
	sh.eng.Relaunch()
	sh.pipe.ResetHold()
	sh.wf.Reset()
	sh.stats = scan.Stats{}
}

// nudgeTrigger moves the trigger level by delta raw units, clamped to the
// display dB window, and pins it as a manual level. With no level acquired
// yet there is nothing to nudge.
func (sh *shared) nudgeTrigger(delta int) {
	t := sh.eng.Trigger()
	if t == scan.Invalid {
		return
	}
	lo := int(radio.FromDBm(sh.settings.DBMin))
	if lo < 1 {
		// Zero would flip the trigger back to automatic mode.
		lo = 1
	}
	hi := int(radio.FromDBm(sh.settings.DBMax))
	v := int(t) + delta
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	sh.eng.SetTrigger(uint16(v))
	sh.settings.TriggerLevel = v
}

// shiftRange moves the swept range by half its span. A shift that would
// leave the band is ignored and the geometry stays put.
func (sh *shared) shiftRange(up bool) {
	g := sh.eng.Geometry()
	step := g.ShiftStepHz()
	start := sh.startHz
	if up {
		start += step
	} else {
		if start < step+config.FreqMinHz {
			return
		}
		start -= step
	}
	prev := sh.startHz
	sh.startHz = start
	if err := sh.applyGeometry(); err != nil {
		sh.startHz = prev
	}
}

// applyGeometry rebuilds the geometry from the current settings. A rejected
// geometry restores the previous indexes.
func (sh *shared) applyGeometry() error {
	g := scan.NewGeometry(sh.startHz, sh.settings.ScanStepIndex, sh.settings.StepsCountIndex)
	if err := sh.eng.SetGeometry(g); err != nil {
		return err
	}
	sh.blacklisted = 0
	sh.wf.Reset()
	sh.pipe.ResetHold()
	sh.stats = scan.Stats{}
	return nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing scope..."
	}
	sh := m.shared

	menuH := 1
	statusH := 1
	bodyH := m.height - menuH - statusH
	if bodyH < 5 {
		bodyH = 5
	}

	scopeW := m.width * 3 / 4
	if scopeW < 40 {
		scopeW = 40
	}
	panelW := m.width - scopeW
	if panelW < 24 {
		panelW = 24
		scopeW = m.width - panelW
	}

	eng := sh.eng
	g := eng.Geometry()
	peak := eng.Peak()
	listening := eng.Mode() == scan.Listening

	menuBar := ui.RenderMenuBar(m.width, eng.Mode().String(), eng.Monitor())
	scopePanel := ui.RenderScopePanel(scopeW, bodyH, sh.scope, listening)

	trig := eng.Trigger()
	info := ui.SignalInfo{
		PeakMHz:    float64(peak.Freq) / 1e6,
		PeakDBm:    radio.DBm(peak.RSSI),
		SMeter:     radio.SMeter(radio.DBm(peak.RSSI)),
		TriggerSet: trig != scan.Invalid,
		AutoTrig:   sh.settings.TriggerLevel == 0,
		FloorDBm:   sh.stats.FloorDBm,
		SigmaDB:    sh.stats.SigmaDB,
		SNRdB:      sh.stats.SNRdB,
		DBMin:      sh.settings.DBMin,
		DBMax:      sh.settings.DBMax,
		ListenBW:   config.ListenBWOptions[sh.settings.ListenBWIndex],
		Blacklist:  sh.blacklisted,
		Monitor:    eng.Monitor(),
	}
	if info.TriggerSet {
		info.TriggerDBm = radio.DBm(trig)
	}
	signalPanel := ui.RenderSignalPanel(info, panelW, bodyH)

	clients := 0
	if sh.hub != nil {
		clients = sh.hub.Clients()
	}
	statusBar := ui.RenderStatusBar(m.width, ui.StatusInfo{
		Mode:       eng.Mode().String(),
		StartMHz:   float64(g.StartHz) / 1e6,
		EndMHz:     float64(g.EndHz()) / 1e6,
		StepKHz:    float64(g.StepHz) / 1e3,
		Steps:      g.Steps,
		Scans:      eng.ScanCount(),
		ListenMHz:  float64(peak.Freq) / 1e6,
		ListenLeft: eng.ListenRemaining(),
		Clients:    clients,
	})

	return ui.ComposeLayout(menuBar, scopePanel, signalPanel, statusBar)
}

// Shutdown unwinds the engine after the program loop has exited.
func (m Model) Shutdown() error {
	return m.shared.eng.Close()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
