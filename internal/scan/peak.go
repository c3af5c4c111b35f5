package scan

// Cursor is the in-progress scan state: where the sweep is and the extremes
// it has seen so far. Reset at the start of every scan, mutated once per
// step.
type Cursor struct {
	Step int
	Freq uint32
	RSSI uint16

	Min     uint16
	Max     uint16
	MaxStep int
	MaxFreq uint32
}

// Observe folds one reading into the cursor's extremes.
func (c *Cursor) Observe(rssi uint16) {
	c.RSSI = rssi
	if rssi > c.Max {
		c.Max = rssi
		c.MaxStep = c.Step
		c.MaxFreq = c.Freq
	}
	if rssi < c.Min {
		c.Min = rssi
	}
}

// Peak is the single best signal seen across the visible range. Unlike the
// per-bin display holds, it persists across scans until superseded, aged out,
// or beaten, and it is what auto-tuning parks on.
type Peak struct {
	Freq uint32
	RSSI uint16
	Step int
	Age  uint32 // ticks since last (re)acquisition
}

// Empty reports whether no peak has been acquired yet.
func (p Peak) Empty() bool {
	return p.Freq == 0
}

// Reset clears the peak entirely.
func (p *Peak) Reset() {
	*p = Peak{}
}

// UpdateForce unconditionally replaces the peak with the cursor's max and
// restarts its age.
func (p *Peak) UpdateForce(c *Cursor) {
	p.Age = 0
	p.RSSI = c.Max
	p.Freq = c.MaxFreq
	p.Step = c.MaxStep
}

// UpdateAuto replaces the peak only when it is empty, has aged past ageLimit,
// or the cursor's max beats it. Within its aging window the peak is
// monotonically strong: a weaker scan never silently downgrades it. Returns
// whether a replacement happened.
func (p *Peak) UpdateAuto(c *Cursor, ageLimit uint32) bool {
	if p.Empty() || p.Age >= ageLimit || p.RSSI < c.Max {
		p.UpdateForce(c)
		return true
	}
	return false
}
