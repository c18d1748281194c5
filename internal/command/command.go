// Package command turns inbound MQTT command topics into outbound wire
// packets, including the read-modify-write dance a single-bit command
// needs against a packed holding register.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/registers"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/wire"
)

// ErrUnknownCommand is returned for a command topic this synthesiser does
// not recognise.
var ErrUnknownCommand = errors.New("command: unknown command")

// ErrBadPayload is returned when a recognised command's payload cannot be
// parsed.
var ErrBadPayload = errors.New("command: malformed payload")

// ErrRMWTimeout is returned when a pending read-modify-write's read
// response never arrived within the deadline.
var ErrRMWTimeout = errors.New("command: read-modify-write timed out")

// namedBits binds each command name to the Register21 bit it toggles. All
// three named commands this bridge exposes live in the same register, so
// the read-modify-write machinery only ever targets Register21.
var namedBits = map[string]registers.Register21Bit{
	"ac_charge":        registers.BitAcChargeEn,
	"charge_priority":  registers.BitChargePriorityEn,
	"forced_discharge": registers.BitForcedDischargeEn,
}

// rmwTimeout bounds how long a read-modify-write waits for its read
// response before it is abandoned.
const rmwTimeout = 5 * time.Second

type pendingRMW struct {
	datalog  serial.Serial
	inverter serial.Serial
	register uint16
	bit      registers.Register21Bit
	set      bool
	deadline time.Time
}

type pendingKey struct {
	datalog  serial.Serial
	register uint16
}

// Synthesiser turns command topics into packets and tracks in-flight
// read-modify-write operations. At most one RMW may be in flight per
// (datalog, register) pair at a time.
type Synthesiser struct {
	mu      sync.Mutex
	pending map[pendingKey]*pendingRMW
}

// New returns an empty Synthesiser.
func New() *Synthesiser {
	return &Synthesiser{pending: make(map[pendingKey]*pendingRMW)}
}

// Handle parses one command topic (already stripped of the namespace and
// "cmd" segments, e.g. "2222222222/set/ac_charge" or
// "2222222222/set/hold/21" or "2222222222/set/ac_charge/3") plus its
// payload, and returns the packet to send. For named bit commands this is
// a ReadHold request; the caller must feed the eventual reply back into
// ReplyReadHold to complete the write.
func (s *Synthesiser) Handle(inverter serial.Serial, topic string, payload []byte) (wire.Packet, error) {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) < 3 || parts[1] != "set" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, topic)
	}
	datalog, err := serial.Parse([]byte(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: bad datalog serial: %v", ErrBadPayload, err)
	}

	switch {
	case parts[2] == "hold" && len(parts) == 4:
		return s.handleHoldWrite(datalog, inverter, parts[3], payload)

	case len(parts) == 4:
		return s.handleTimeslot(datalog, inverter, parts[2], parts[3], payload)

	case len(parts) == 3:
		return s.handleNamedBit(datalog, inverter, parts[2], payload)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, topic)
	}
}

func (s *Synthesiser) handleHoldWrite(datalog, inverter serial.Serial, regStr string, payload []byte) (wire.Packet, error) {
	reg, err := strconv.ParseUint(regStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: bad register %q", ErrBadPayload, regStr)
	}
	value, err := strconv.ParseUint(strings.TrimSpace(string(payload)), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hold value %q", ErrBadPayload, payload)
	}
	return writeSingle(datalog, inverter, uint16(reg), uint16(value)), nil
}

func (s *Synthesiser) handleNamedBit(datalog, inverter serial.Serial, name string, payload []byte) (wire.Packet, error) {
	bit, ok := namedBits[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	set, err := parseOnOff(payload)
	if err != nil {
		return nil, err
	}

	key := pendingKey{datalog: datalog, register: uint16(registers.Register21)}
	s.mu.Lock()
	if _, inFlight := s.pending[key]; inFlight {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: read-modify-write already in flight for register %d", ErrBadPayload, registers.Register21)
	}
	s.pending[key] = &pendingRMW{
		datalog:  datalog,
		inverter: inverter,
		register: uint16(registers.Register21),
		bit:      bit,
		set:      set,
		deadline: time.Now().Add(rmwTimeout),
	}
	s.mu.Unlock()

	return wire.NewTranslatedData(datalog, inverter, wire.DeviceFunctionReadHold, uint16(registers.Register21), nil), nil
}

// ReplyReadHold matches an inbound ReadHold response against any pending
// read-modify-write. When it completes one, it returns the WriteSingle
// packet to send and true. Expired pending entries are dropped silently;
// callers wanting to surface the timeout should call Expire separately.
func (s *Synthesiser) ReplyReadHold(pkt *wire.TranslatedData) (wire.Packet, bool) {
	if pkt.DeviceFunction() != wire.DeviceFunctionReadHold {
		return nil, false
	}
	key := pendingKey{datalog: pkt.Datalog(), register: pkt.Register()}

	s.mu.Lock()
	p, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(p.deadline) {
		return nil, false
	}

	values := pkt.Values()
	if len(values) != 2 {
		return nil, false
	}
	current := uint16(values[0]) | uint16(values[1])<<8
	var next uint16
	if p.set {
		next = current | uint16(p.bit)
	} else {
		next = current &^ uint16(p.bit)
	}

	return writeSingle(p.datalog, p.inverter, p.register, next), true
}

// Expire drops and returns any pending read-modify-write whose deadline
// has passed, so the caller can publish a CommandError.
func (s *Synthesiser) Expire() []error {
	now := time.Now()
	var errs []error

	s.mu.Lock()
	for key, p := range s.pending {
		if now.After(p.deadline) {
			delete(s.pending, key)
			errs = append(errs, fmt.Errorf("%w: register %d on %s", ErrRMWTimeout, p.register, p.datalog))
		}
	}
	s.mu.Unlock()

	return errs
}

func (s *Synthesiser) handleTimeslot(datalog, inverter serial.Serial, name, indexStr string, payload []byte) (wire.Packet, error) {
	base, ok := timeslotBaseRegister[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	n, err := strconv.Atoi(indexStr)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: bad timeslot index %q", ErrBadPayload, indexStr)
	}
	start, end, err := parseTimeslot(payload)
	if err != nil {
		return nil, err
	}

	startReg := base + uint16(2*n)

	return wire.NewTranslatedData(datalog, inverter, wire.DeviceFunctionWriteMulti, startReg,
		append(encodeHHMM(start), encodeHHMM(end)...)), nil
}

// timeslotBaseRegister gives the first register of the (start, end) pair
// for slot 0 of each timeslot-driven command; slot n uses base+2n/base+2n+1.
var timeslotBaseRegister = map[string]uint16{
	"ac_charge":        68,
	"ac_first":         152,
	"charge_priority":  76,
	"forced_discharge": 84,
}

func writeSingle(datalog, inverter serial.Serial, register, value uint16) *wire.TranslatedData {
	values := []byte{byte(value), byte(value >> 8)}
	return wire.NewTranslatedData(datalog, inverter, wire.DeviceFunctionWriteSingle, register, values)
}

func parseOnOff(payload []byte) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(string(payload))) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected on/off, got %q", ErrBadPayload, payload)
	}
}

// parseTimeslot parses an "HH:MM-HH:MM" payload into its two endpoints.
func parseTimeslot(payload []byte) (start, end [2]int, err error) {
	parts := strings.Split(strings.TrimSpace(string(payload)), "-")
	if len(parts) != 2 {
		return start, end, fmt.Errorf("%w: expected HH:MM-HH:MM, got %q", ErrBadPayload, payload)
	}
	start, err = parseHHMM(parts[0])
	if err != nil {
		return start, end, err
	}
	end, err = parseHHMM(parts[1])
	if err != nil {
		return start, end, err
	}
	return start, end, nil
}

func parseHHMM(s string) ([2]int, error) {
	var out [2]int
	hm := strings.Split(strings.TrimSpace(s), ":")
	if len(hm) != 2 {
		return out, fmt.Errorf("%w: expected HH:MM, got %q", ErrBadPayload, s)
	}
	h, err1 := strconv.Atoi(hm[0])
	m, err2 := strconv.Atoi(hm[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return out, fmt.Errorf("%w: expected HH:MM, got %q", ErrBadPayload, s)
	}
	out[0], out[1] = h, m
	return out, nil
}

// encodeHHMM packs an hour/minute pair the way the firmware's timeslot
// registers expect: hour in the low byte, minute in the high byte.
func encodeHHMM(hm [2]int) []byte {
	return []byte{byte(hm[0]), byte(hm[1])}
}
