// Package telemetry holds the ReadInput1/2/3 windows a TranslatedData
// read-input response decodes into, the ReadInputAll/ReadInputAll2 long
// forms read directly off the wire, and the merge that assembles the
// first three into the fourth.
package telemetry

import (
	"encoding/binary"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/registers"
)

// cursor sequentially decodes little-endian fields out of a byte slice,
// mirroring the field-by-field nom parser the original firmware decoder
// used; each accessor advances past the bytes it consumed.
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b}
}

func (c *cursor) skip(n int) {
	c.pos += n
}

func (c *cursor) u16() uint16 {
	v := binary.LittleEndian.Uint16(c.b[c.pos : c.pos+2])
	c.pos += 2
	return v
}

func (c *cursor) i16() int16 {
	return int16(c.u16())
}

func (c *cursor) u32() uint32 {
	v := binary.LittleEndian.Uint32(c.b[c.pos : c.pos+4])
	c.pos += 4
	return v
}

func (c *cursor) i8() int8 {
	v := int8(c.b[c.pos])
	c.pos++
	return v
}

func (c *cursor) divU16(div float64) float64 {
	v := registers.ScaledU16(c.b, c.pos, div)
	c.pos += 2
	return v
}

func (c *cursor) divI16(div float64) float64 {
	v := registers.ScaledI16(c.b, c.pos, div)
	c.pos += 2
	return v
}

func (c *cursor) divU32(div float64) float64 {
	v := registers.ScaledU32(c.b, c.pos, div)
	c.pos += 4
	return v
}
