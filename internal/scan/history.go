package scan

// Size is the fixed capacity of the history buffer, matching the display
// width. Scans never exceed it.
const Size = 128

// Invalid is the sentinel strength meaning "no valid reading": either a bin
// that has been blacklisted or one that has not been measured yet. It is a
// first-class value; arithmetic on history data must check for it first.
const Invalid uint16 = 0xFFFF

// History maps scan-step index to the last strength seen at that step. It is
// allocated once at mode entry and logically reset at scan boundaries.
type History struct {
	bins [Size]uint16
}

// At returns the reading at step i, or Invalid when i is out of range.
func (h *History) At(i int) uint16 {
	if i < 0 || i >= Size {
		return Invalid
	}
	return h.bins[i]
}

// Set stores a reading at step i. Out-of-range indexes are ignored.
func (h *History) Set(i int, v uint16) {
	if i < 0 || i >= Size {
		return
	}
	h.bins[i] = v
}

// ClearFrom zeroes every bin at index n and above, so a shorter scan never
// displays leftover bins from a longer one. Blacklisted bins in the cleared
// tail are zeroed too; the tail is outside the active scan.
func (h *History) ClearFrom(n int) {
	if n < 0 {
		n = 0
	}
	for i := n; i < Size; i++ {
		h.bins[i] = 0
	}
}

// Blacklist marks step i so the sweep skips it without sampling.
func (h *History) Blacklist(i int) {
	h.Set(i, Invalid)
}

// Blacklisted reports whether step i carries the sentinel.
func (h *History) Blacklisted(i int) bool {
	return h.At(i) == Invalid
}

// ClearBlacklist converts every sentinel bin back to zero so it is sampled
// again on the next sweep.
func (h *History) ClearBlacklist() {
	for i := range h.bins {
		if h.bins[i] == Invalid {
			h.bins[i] = 0
		}
	}
}

// Reset zeroes the whole buffer.
func (h *History) Reset() {
	h.bins = [Size]uint16{}
}

// Snapshot returns a copy of the buffer for rendering and telemetry.
func (h *History) Snapshot() []uint16 {
	out := make([]uint16, Size)
	copy(out, h.bins[:])
	return out
}
