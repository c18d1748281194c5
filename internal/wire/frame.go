package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

// magic is the two-byte sentinel every frame on the wire starts with.
var magic = [2]byte{0xA1, 0x1A}

// TcpFunction identifies which of the four packet kinds a frame carries.
type TcpFunction uint8

const (
	TcpFunctionHeartbeat      TcpFunction = 193
	TcpFunctionTranslatedData TcpFunction = 194
	TcpFunctionReadParam      TcpFunction = 195
	TcpFunctionWriteParam     TcpFunction = 196
)

// DeviceFunction identifies the Modbus-style function code carried inside a
// TranslatedData packet's body.
type DeviceFunction uint8

const (
	DeviceFunctionReadHold    DeviceFunction = 3
	DeviceFunctionReadInput   DeviceFunction = 4
	DeviceFunctionWriteSingle DeviceFunction = 6
	DeviceFunctionWriteMulti  DeviceFunction = 16
)

// Source identifies which side of the connection produced a packet, since
// the encoding of a handful of fields (protocol number, presence of a
// length byte) depends on direction as well as packet kind.
type Source int

const (
	SourceInverter Source = iota
	SourceClient
)

// FrameFactory builds the 18-byte frame header (magic, protocol, frame
// length, reserved byte, tcp function, datalog serial) in front of a
// packet's already-encoded body.
type FrameFactory struct{}

// Build assembles a complete frame: magic + protocol (LE u16) + frame
// length (LE u16, counts everything from the reserved byte onward) +
// reserved(1) + tcpFunction + datalog(10) + body.
func (FrameFactory) Build(protocol uint16, tcpFunction TcpFunction, datalog serial.Serial, body []byte) []byte {
	frameLen := 1 + 1 + serial.Len + len(body)

	out := make([]byte, 6, 6+frameLen)
	out[0], out[1] = magic[0], magic[1]
	binary.LittleEndian.PutUint16(out[2:4], protocol)
	binary.LittleEndian.PutUint16(out[4:6], uint16(frameLen))
	out = append(out, 0x01)
	out = append(out, byte(tcpFunction))
	out = append(out, datalog.Bytes()...)
	out = append(out, body...)
	return out
}

// ErrShortFrame is returned when a buffer is too small to contain even a
// frame header.
var ErrShortFrame = fmt.Errorf("wire: frame shorter than header")

// ErrBadMagic is returned when a buffer's first two bytes do not match the
// expected magic sequence.
var ErrBadMagic = fmt.Errorf("wire: bad magic bytes")

// minFrameLen is the shortest buffer that could possibly hold a valid
// frame header plus an empty body.
const minFrameLen = 18

// checkHeader validates the magic bytes and the declared frame length
// found at offset 4 (frame_len - 6, per the wire layout) against the
// actual buffer length, returning an error when either check fails.
func checkHeader(input []byte) error {
	if len(input) < minFrameLen {
		return ErrShortFrame
	}
	if input[0] != magic[0] || input[1] != magic[1] {
		return ErrBadMagic
	}
	declared := binary.LittleEndian.Uint16(input[4:6])
	if len(input) < int(declared)+6 {
		return fmt.Errorf("wire: declared length %d exceeds buffer (%d bytes)", declared, len(input))
	}
	return nil
}
