// Package assembler turns TranslatedData read-input responses into
// telemetry snapshots, merging the three partial windows a device sends
// (register 0/40/80) into one ReadInputAll once all three have arrived
// for a given datalog serial, and passing through the two long forms
// (register 0/127 with len=254) unmodified.
package assembler

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/telemetry"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/wire"
)

// Result is whichever telemetry shape a single TranslatedData read-input
// response resolved to. Exactly one field is non-nil, except that a
// partial window (One/Two/Three) that completes a triple also carries the
// merged All.
type Result struct {
	All   *telemetry.ReadInputAll
	All2  *telemetry.ReadInputAll2
	One   *telemetry.ReadInput1
	Two   *telemetry.ReadInput2
	Three *telemetry.ReadInput3

	// Single-field mode: specific short sub-reads the firmware also
	// issues outside the three-window cycle (register 0/60/62, len=4).
	Status      *uint16
	FaultCode   *uint32
	WarningCode *uint32
}

// Assembler holds the in-progress window state for every datalog serial
// currently reporting.
type Assembler struct {
	mu      sync.Mutex
	windows map[serial.Serial]*telemetry.Windows
}

// New returns an empty Assembler.
func New() *Assembler {
	return &Assembler{windows: make(map[serial.Serial]*telemetry.Windows)}
}

// Feed decodes one TranslatedData ReadInput response. When it is one of
// the three partial windows, Feed returns a non-nil All only once the
// triple for that datalog is complete; the partial window is also
// reported via One/Two/Three for callers that want immediate per-window
// metrics.
func (a *Assembler) Feed(pkt *wire.TranslatedData) (Result, error) {
	register := pkt.Register()
	values := pkt.Values()
	datalog := pkt.Datalog()

	switch {
	case register == 0 && len(values) == 254:
		return Result{All: telemetry.ParseReadInputAll(values)}, nil

	case register == 127 && len(values) == 254:
		return Result{All2: telemetry.ParseReadInputAll2(values, datalog)}, nil

	// Single-field mode: the firmware also issues these as standalone
	// 4-byte sub-reads outside the three-window cycle.
	case register == 0 && len(values) == 4:
		status := binary.LittleEndian.Uint16(values[0:2])
		return Result{Status: &status}, nil

	case register == 60 && len(values) == 4:
		fault := binary.LittleEndian.Uint32(values)
		return Result{FaultCode: &fault}, nil

	case register == 62 && len(values) == 4:
		warning := binary.LittleEndian.Uint32(values)
		return Result{WarningCode: &warning}, nil

	case register == 0 && len(values) == 80:
		r := telemetry.ParseReadInput1(values, datalog)
		a.mu.Lock()
		w := a.windowFor(datalog)
		w.SetReadInput1(r)
		merged := a.mergeLocked(datalog, w)
		a.mu.Unlock()
		return Result{One: r, All: merged}, nil

	case register == 40 && len(values) == 80:
		r := telemetry.ParseReadInput2(values, datalog)
		a.mu.Lock()
		w := a.windowFor(datalog)
		w.SetReadInput2(r)
		merged := a.mergeLocked(datalog, w)
		a.mu.Unlock()
		return Result{Two: r, All: merged}, nil

	case register == 80 && len(values) == 80:
		r := telemetry.ParseReadInput3(values, datalog)
		a.mu.Lock()
		w := a.windowFor(datalog)
		w.SetReadInput3(r)
		merged := a.mergeLocked(datalog, w)
		a.mu.Unlock()
		return Result{Three: r, All: merged}, nil

	default:
		return Result{}, fmt.Errorf("assembler: unhandled ReadInput register=%d len=%d", register, len(values))
	}
}

// windowFor must be called with a.mu held.
func (a *Assembler) windowFor(datalog serial.Serial) *telemetry.Windows {
	w, ok := a.windows[datalog]
	if !ok {
		w = &telemetry.Windows{}
		a.windows[datalog] = w
	}
	return w
}

// mergeLocked must be called with a.mu held. Once a full triple merges,
// the window state resets so the next cycle starts clean.
func (a *Assembler) mergeLocked(datalog serial.Serial, w *telemetry.Windows) *telemetry.ReadInputAll {
	if !w.Ready() {
		return nil
	}
	merged := w.Merge()
	delete(a.windows, datalog)
	return merged
}
