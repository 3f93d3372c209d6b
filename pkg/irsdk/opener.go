package irsdk

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConnectionUnavailable = errors.New("telemetry region unavailable")
	ErrVersionMismatch       = errors.New("telemetry protocol version mismatch")
	ErrRegionCorrupt         = errors.New("telemetry region layout invalid")
	ErrNoSignal              = errors.New("data ready signal unavailable")
)

// Mapping is a read-only mapped view of the shared region.
type Mapping interface {
	Bytes() []byte
	Close() error
}

// Signal is the producer's "new data" notification.
type Signal interface {
	// Wait blocks up to timeout and reports whether the signal fired.
	Wait(timeout time.Duration) bool
	Close() error
}

// Opener opens the named region and signal. Implementations never create
// either object; the simulator owns them.
type Opener interface {
	OpenRegion(name string) (Mapping, error)
	OpenSignal(name string) (Signal, error)
}

// BytesMapping serves an in-process byte slice as a Mapping.
type BytesMapping []byte

func (m BytesMapping) Bytes() []byte { return m }
func (m BytesMapping) Close() error  { return nil }
