package radio

import (
	"time"

	"github.com/cenkalti/backoff"
)

// Retrying wraps a Transceiver and absorbs transient sampling failures with
// a short, bounded exponential backoff. The scanning engine treats every
// value it receives as valid data and never re-measures mid-tick, so stall
// handling has to live on this side of the boundary.
type Retrying struct {
	trx        Transceiver
	maxRetries uint64
}

// NewRetrying wraps trx with up to maxRetries additional attempts per call.
func NewRetrying(trx Transceiver, maxRetries uint64) *Retrying {
	if maxRetries == 0 {
		maxRetries = 3
	}
	return &Retrying{trx: trx, maxRetries: maxRetries}
}

func (r *Retrying) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Microsecond
	b.MaxInterval = 5 * time.Millisecond
	b.MaxElapsedTime = 50 * time.Millisecond
	return backoff.WithMaxRetries(b, r.maxRetries)
}

// Tune retries transient tuning failures.
func (r *Retrying) Tune(hz uint32) error {
	return backoff.Retry(func() error { return r.trx.Tune(hz) }, r.policy())
}

// Measure retries transient sampling failures and returns the first good
// reading.
func (r *Retrying) Measure(hz uint32) (uint16, error) {
	var v uint16
	err := backoff.Retry(func() error {
		var err error
		v, err = r.trx.Measure(hz)
		return err
	}, r.policy())
	return v, err
}

// SetListening passes through; the audio toggle is not retried because a
// failure there is not transient.
func (r *Retrying) SetListening(on bool) error {
	return r.trx.SetListening(on)
}

// SetBandwidth passes through when the wrapped transceiver supports it.
func (r *Retrying) SetBandwidth(hz uint32) error {
	if bs, ok := r.trx.(BandwidthSetter); ok {
		return bs.SetBandwidth(hz)
	}
	return nil
}

// TailDetected passes through when the wrapped transceiver supports it.
func (r *Retrying) TailDetected() bool {
	if td, ok := r.trx.(TailDetector); ok {
		return td.TailDetected()
	}
	return false
}
