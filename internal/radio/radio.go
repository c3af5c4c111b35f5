package radio

import "errors"

// Transceiver is the hardware boundary the scanning engine talks to. The
// engine never sees registers or calibration; it tunes, samples and toggles
// demodulation, nothing else.
//
// Contract:
//   - Tune is idempotent and always safe to call before Measure.
//   - Measure returns a raw signal strength in 0..65535, monotonically
//     related to received power. It may block briefly while the receiver
//     settles; the tick loop tolerates that.
//   - SetListening switches the audio path and receiver bandwidth. It must
//     be called with true before demodulated audio can be relied on.
type Transceiver interface {
	Tune(hz uint32) error
	Measure(hz uint32) (uint16, error)
	SetListening(on bool) error
}

// TailDetector is optionally implemented by transceivers that can report a
// squelch-tail (end-of-transmission) event. The listen controller polls it
// once per tick while parked on a signal.
type TailDetector interface {
	TailDetected() bool
}

// BandwidthSetter is optionally implemented by transceivers whose receive
// bandwidth can be narrowed for listening.
type BandwidthSetter interface {
	SetBandwidth(hz uint32) error
}

// ErrNotReady reports a transient condition where the receiver could not
// produce a sample. Callers that cannot tolerate it should wrap the
// transceiver with Retrying.
var ErrNotReady = errors.New("receiver not ready")
