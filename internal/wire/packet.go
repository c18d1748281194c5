// Package wire implements the LuxPower TCP frame codec: the 0xA1 0x1A
// framed, CRC-16/MODBUS-protected wire format wrapping four packet kinds
// (Heartbeat, TranslatedData, ReadParam, WriteParam) and the TCP
// connection goroutines that read and write them.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

// Packet is the tagged union of the four frame payloads this bridge
// understands. A type switch on the concrete type stands in for the
// discriminated union the wire format represents.
type Packet interface {
	Datalog() serial.Serial
	SetDatalog(serial.Serial)
	Inverter() (serial.Serial, bool)
	Protocol() uint16
	TcpFunction() TcpFunction
	Bytes() []byte
}

// u16ify reads a little-endian u16 at offset, matching the original
// firmware's byte order throughout the wire format.
func u16ify(b []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(b[offset : offset+2])
}

// Pair is one (register, value) observation decoded out of a packet's raw
// value bytes.
type Pair struct {
	Register uint16
	Value    uint16
}

// pairsFrom chunks raw into u16 pairs starting at firstRegister, the
// decoding shared by TranslatedData/ReadParam/WriteParam.
func pairsFrom(firstRegister uint16, raw []byte) []Pair {
	n := len(raw) / 2
	out := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Pair{
			Register: firstRegister + uint16(i),
			Value:    u16ify(raw, i*2),
		})
	}
	return out
}

// Heartbeat is the keepalive a datalogger sends periodically with no
// payload beyond its own serial.
type Heartbeat struct {
	datalog serial.Serial
}

// NewHeartbeat builds a Heartbeat addressed to datalog.
func NewHeartbeat(datalog serial.Serial) *Heartbeat {
	return &Heartbeat{datalog: datalog}
}

func decodeHeartbeat(input []byte) (*Heartbeat, error) {
	if len(input) < 19 {
		return nil, fmt.Errorf("wire: heartbeat packet too short (%d bytes)", len(input))
	}
	if input[18] != 0 {
		return nil, fmt.Errorf("wire: heartbeat with non-zero length byte (%d)", input[18])
	}
	dl, err := serial.Parse(input[8:18])
	if err != nil {
		return nil, fmt.Errorf("wire: heartbeat datalog: %w", err)
	}
	return &Heartbeat{datalog: dl}, nil
}

func (h *Heartbeat) Datalog() serial.Serial          { return h.datalog }
func (h *Heartbeat) SetDatalog(s serial.Serial)      { h.datalog = s }
func (h *Heartbeat) Inverter() (serial.Serial, bool) { return serial.Serial{}, false }
func (h *Heartbeat) Protocol() uint16                { return 2 }
func (h *Heartbeat) TcpFunction() TcpFunction        { return TcpFunctionHeartbeat }
func (h *Heartbeat) Bytes() []byte                   { return []byte{0} }

// TranslatedData carries a Modbus-style register read/write, request or
// response, addressed to a specific inverter behind a datalogger.
type TranslatedData struct {
	datalog        serial.Serial
	deviceFunction DeviceFunction
	inverter       serial.Serial
	register       uint16
	values         []byte
}

// NewTranslatedData builds a TranslatedData packet ready for Bytes/Build.
func NewTranslatedData(datalog, inverter serial.Serial, fn DeviceFunction, register uint16, values []byte) *TranslatedData {
	return &TranslatedData{
		datalog:        datalog,
		deviceFunction: fn,
		inverter:       inverter,
		register:       register,
		values:         values,
	}
}

func decodeTranslatedData(input []byte) (*TranslatedData, error) {
	n := len(input)
	if n < 38 {
		return nil, fmt.Errorf("wire: TranslatedData packet too short (%d bytes)", n)
	}

	protocol := u16ify(input, 2)
	dl, err := serial.Parse(input[8:18])
	if err != nil {
		return nil, fmt.Errorf("wire: TranslatedData datalog: %w", err)
	}

	body := input[20 : n-2]
	checksum := input[n-2:]
	want := CRC16Modbus(body)
	got := binary.LittleEndian.Uint16(checksum)
	if got != want {
		return nil, fmt.Errorf("wire: TranslatedData checksum mismatch: got %#04x, want %#04x", got, want)
	}

	deviceFunction := DeviceFunction(body[1])
	inv, err := serial.Parse(body[2:12])
	if err != nil {
		return nil, fmt.Errorf("wire: TranslatedData inverter serial: %w", err)
	}
	register := u16ify(body, 12)

	valueLen := 2
	valueOffset := 14
	if hasValueLengthByte(SourceInverter, protocol, deviceFunction) {
		valueLen = int(body[valueOffset])
		valueOffset++
	}

	values := body[valueOffset:]
	if len(values) != valueLen {
		return nil, fmt.Errorf("wire: TranslatedData value length mismatch: got %d bytes, header said %d", len(values), valueLen)
	}

	return &TranslatedData{
		datalog:        dl,
		deviceFunction: deviceFunction,
		inverter:       inv,
		register:       register,
		values:         append([]byte(nil), values...),
	}, nil
}

// hasValueLengthByte reports whether, for the given direction/protocol/
// function combination, the wire encoding includes an explicit length
// byte ahead of the value bytes. Ground truth: ReadHold and ReadInput
// carry the length byte only on protocol!=1 responses coming from the
// inverter; WriteSingle never carries one; WriteMulti carries one only on
// protocol!=1 requests sent by the client.
func hasValueLengthByte(source Source, protocol uint16, fn DeviceFunction) bool {
	p1 := protocol == 1
	fromInverter := source == SourceInverter
	switch fn {
	case DeviceFunctionReadHold, DeviceFunctionReadInput:
		return !p1 && fromInverter
	case DeviceFunctionWriteSingle:
		return false
	case DeviceFunctionWriteMulti:
		return !p1 && !fromInverter
	default:
		return false
	}
}

func (t *TranslatedData) Datalog() serial.Serial          { return t.datalog }
func (t *TranslatedData) SetDatalog(s serial.Serial)      { t.datalog = s }
func (t *TranslatedData) Inverter() (serial.Serial, bool) { return t.inverter, true }
func (t *TranslatedData) TcpFunction() TcpFunction        { return TcpFunctionTranslatedData }
func (t *TranslatedData) DeviceFunction() DeviceFunction  { return t.deviceFunction }
func (t *TranslatedData) Register() uint16                { return t.register }
func (t *TranslatedData) Values() []byte                  { return t.values }

func (t *TranslatedData) Protocol() uint16 {
	if t.deviceFunction == DeviceFunctionWriteMulti {
		return 2
	}
	return 1
}

// Pairs decodes Values into (register, value) pairs, one per two bytes.
func (t *TranslatedData) Pairs() []Pair {
	return pairsFrom(t.register, t.values)
}

func (t *TranslatedData) Bytes() []byte {
	data := make([]byte, 16)
	data[3] = byte(t.deviceFunction)
	copy(data[4:14], t.inverter.Bytes())
	binary.LittleEndian.PutUint16(data[14:16], t.register)

	if t.deviceFunction == DeviceFunctionWriteMulti {
		registerCount := uint16(len(t.Pairs()))
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], registerCount)
		data = append(data, buf[:]...)
	}

	if hasValueLengthByte(SourceClient, t.Protocol(), t.deviceFunction) {
		data = append(data, byte(len(t.values)))
	}

	data = append(data, t.values...)

	dataLength := uint16(len(data))
	binary.LittleEndian.PutUint16(data[0:2], dataLength)

	crc := CRC16Modbus(data[2:])
	var crcBuf [2]byte
	binary.LittleEndian.PutUint16(crcBuf[:], crc)
	data = append(data, crcBuf[:]...)

	return data
}

// ReadParam requests or returns the value of one or more param (not
// holding) registers.
type ReadParam struct {
	datalog  serial.Serial
	register uint16
	values   []byte
}

// NewReadParam builds a ReadParam request for register.
func NewReadParam(datalog serial.Serial, register uint16) *ReadParam {
	return &ReadParam{datalog: datalog, register: register}
}

func decodeReadParam(input []byte) (*ReadParam, error) {
	n := len(input)
	if n < 24 {
		return nil, fmt.Errorf("wire: ReadParam packet too short (%d bytes)", n)
	}
	protocol := u16ify(input, 2)
	dl, err := serial.Parse(input[8:18])
	if err != nil {
		return nil, fmt.Errorf("wire: ReadParam datalog: %w", err)
	}

	body := input[18:]
	register := u16ify(body, 0)

	valueLen := 2
	valueOffset := 2
	if protocol == 2 {
		valueLen = int(u16ify(body, valueOffset))
		valueOffset += 2
	}

	values := body[valueOffset:]
	if len(values) != valueLen {
		return nil, fmt.Errorf("wire: ReadParam value length mismatch: got %d bytes, header said %d", len(values), valueLen)
	}

	return &ReadParam{
		datalog:  dl,
		register: register,
		values:   append([]byte(nil), values...),
	}, nil
}

func (r *ReadParam) Datalog() serial.Serial          { return r.datalog }
func (r *ReadParam) SetDatalog(s serial.Serial)      { r.datalog = s }
func (r *ReadParam) Inverter() (serial.Serial, bool) { return serial.Serial{}, false }
func (r *ReadParam) Protocol() uint16                { return 2 }
func (r *ReadParam) TcpFunction() TcpFunction        { return TcpFunctionReadParam }
func (r *ReadParam) Register() uint16                { return r.register }
func (r *ReadParam) Values() []byte                  { return r.values }

// Pairs decodes Values into (register, value) pairs.
func (r *ReadParam) Pairs() []Pair {
	return pairsFrom(r.register, r.values)
}

// Bytes matches the original firmware's read-param request encoding: a
// single byte holding the register number (registers above 255 cannot be
// requested this way) followed by a zero byte.
func (r *ReadParam) Bytes() []byte {
	return []byte{byte(r.register), 0}
}

// WriteParam requests or confirms a write to a param (not holding)
// register. Unlike the original firmware, encode and decode are
// symmetric here: a 1-byte register with no length prefix in both
// directions, so a written packet carrying at least one u16 value (the
// decoder needs a 21-byte frame) round-trips through decode unchanged.
type WriteParam struct {
	datalog  serial.Serial
	register uint16
	values   []byte
}

// NewWriteParam builds a WriteParam request writing values to register.
func NewWriteParam(datalog serial.Serial, register uint16, values []byte) *WriteParam {
	return &WriteParam{datalog: datalog, register: register, values: values}
}

func decodeWriteParam(input []byte) (*WriteParam, error) {
	n := len(input)
	if n < 21 {
		return nil, fmt.Errorf("wire: WriteParam packet too short (%d bytes)", n)
	}
	dl, err := serial.Parse(input[8:18])
	if err != nil {
		return nil, fmt.Errorf("wire: WriteParam datalog: %w", err)
	}

	body := input[18:]
	register := uint16(body[0])
	values := body[1:]

	return &WriteParam{
		datalog:  dl,
		register: register,
		values:   append([]byte(nil), values...),
	}, nil
}

func (w *WriteParam) Datalog() serial.Serial          { return w.datalog }
func (w *WriteParam) SetDatalog(s serial.Serial)      { w.datalog = s }
func (w *WriteParam) Inverter() (serial.Serial, bool) { return serial.Serial{}, false }
func (w *WriteParam) Protocol() uint16                { return 2 }
func (w *WriteParam) TcpFunction() TcpFunction        { return TcpFunctionWriteParam }
func (w *WriteParam) Register() uint16                { return w.register }
func (w *WriteParam) Values() []byte                  { return w.values }

// Pairs decodes Values into (register, value) pairs.
func (w *WriteParam) Pairs() []Pair {
	return pairsFrom(w.register, w.values)
}

func (w *WriteParam) Bytes() []byte {
	data := make([]byte, 1, 1+len(w.values))
	data[0] = byte(w.register)
	data = append(data, w.values...)
	return data
}

// Parse dispatches a raw frame to the matching packet decoder after
// validating its header.
func Parse(input []byte) (Packet, error) {
	if err := checkHeader(input); err != nil {
		return nil, err
	}

	switch TcpFunction(input[7]) {
	case TcpFunctionHeartbeat:
		return decodeHeartbeat(input)
	case TcpFunctionTranslatedData:
		return decodeTranslatedData(input)
	case TcpFunctionReadParam:
		return decodeReadParam(input)
	case TcpFunctionWriteParam:
		return decodeWriteParam(input)
	default:
		return nil, fmt.Errorf("wire: unhandled tcp function %d", input[7])
	}
}

// Build frames p with the 18-byte header the wire format expects.
func Build(p Packet) []byte {
	return FrameFactory{}.Build(p.Protocol(), p.TcpFunction(), p.Datalog(), p.Bytes())
}
