package config

const (
	// Display geometry (monochrome scope surface)
	DisplayWidth    = 128 // pixels, one column per spectrum bin at full step count
	DisplayHeight   = 48  // pixels
	SpectrumEndY    = 30  // last row of the spectrum bar area
	RulerY          = 31  // frequency ruler row
	WaterfallStartY = 32  // first waterfall row on the surface
	WaterfallRows   = 16  // rows of scan history kept by the waterfall

	// Filter pipeline
	SmoothWindow   = 3 // +/- bins averaged per displayed bin
	PeakHoldFrames = 5 // frames a per-bin hold survives without being beaten

	// Scan engine
	PeakAgeLimit    = 1024 // ticks before the global peak must be re-acquired
	TriggerMargin   = 8    // RSSI units added to the sweep max for auto trigger
	ListenHoldTicks = 100  // listen countdown reload value
	TriggerNudge    = 2    // RSSI units per manual trigger adjustment

	// Receiver band limits (Hz)
	FreqMinHz = 18_000_000
	FreqMaxHz = 1_300_000_000

	// Display dB window defaults
	DefaultDBMin = -130
	DefaultDBMax = -50

	// TUI cadence: engine ticks folded into one rendered frame
	TargetFPS     = 30
	TicksPerFrame = 16

	// App
	AppName    = "RF-SCOPE"
	AppVersion = "1.0"
)
