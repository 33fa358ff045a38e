// Package decoder wraps the external sensor decoder and turns its status codes
// into per-tick decode outcomes.
package decoder

import (
	"errors"
	"sync"

	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
)

// Status is the decoder's result code for one receive attempt.
type Status int

const (
	StatusInvalid       Status = iota // nothing received
	StatusOK                          // a reading is in slot 0
	StatusParityError                 // parity check failed
	StatusChecksumError               // checksum or format failure
	StatusDigestError                 // digest failure or dead source
	StatusSkip                        // sensor ID excluded by configuration
	StatusFull                        // all slots occupied
)

// ErrAlreadyStarted is returned when Begin is called more than once.
var ErrAlreadyStarted = errors.New("decoder already started")

// Decoder is the contract of the external decoder. Slot contents are only
// valid after GetMessage returned StatusOK and until the next ClearSlots.
type Decoder interface {
	Begin() error
	ClearSlots()
	GetMessage() Status
	Slot(i int) (domain.RawReading, bool)
}

// Adapter owns a Decoder for the lifetime of the process.
type Adapter struct {
	dec Decoder

	mu      sync.Mutex
	started bool
}

// NewAdapter wraps d. The decoder is not started until Begin.
func NewAdapter(d Decoder) *Adapter {
	return &Adapter{dec: d}
}

// Begin initializes the decoder. It may succeed only once.
func (a *Adapter) Begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return ErrAlreadyStarted
	}
	if err := a.dec.Begin(); err != nil {
		return err
	}
	a.started = true
	return nil
}

func (a *Adapter) isStarted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// Poll clears the previous tick's slots and makes one non-blocking decode
// attempt. Only slot 0 is read on success.
func (a *Adapter) Poll() (domain.RawReading, domain.Outcome) {
	if !a.isStarted() {
		return domain.RawReading{}, domain.DecodeError
	}

	a.dec.ClearSlots()
	outcome := MapStatus(a.dec.GetMessage())
	if outcome != domain.Decoded {
		return domain.RawReading{}, outcome
	}

	raw, ok := a.dec.Slot(0)
	if !ok {
		return domain.RawReading{}, domain.DecodeError
	}
	return raw, domain.Decoded
}

// MapStatus maps a decoder status onto a decode outcome.
func MapStatus(s Status) domain.Outcome {
	switch s {
	case StatusOK:
		return domain.Decoded
	case StatusInvalid, StatusSkip:
		return domain.NoData
	default:
		return domain.DecodeError
	}
}
