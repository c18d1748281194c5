package registers

import (
	"encoding/binary"
	"math"

	"golang.org/x/exp/constraints"
)

// U16 reads a little-endian u16 at offset.
func U16(b []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(b[offset : offset+2])
}

// U32 reads a little-endian u32 at offset.
func U32(b []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(b[offset : offset+4])
}

// I16 reads a little-endian signed i16 at offset.
func I16(b []byte, offset int) int16 {
	return int16(U16(b, offset))
}

// I32 reads a little-endian signed i32 at offset.
func I32(b []byte, offset int) int32 {
	return int32(U32(b, offset))
}

// scaled divides any integer register value by div, generic over the
// handful of signed/unsigned widths the wire format uses.
func scaled[T constraints.Integer](v T, div float64) float64 {
	return float64(v) / div
}

// ScaledU16 reads a little-endian u16 and divides it by div.
func ScaledU16(b []byte, offset int, div float64) float64 {
	return scaled(U16(b, offset), div)
}

// ScaledI16 reads a little-endian signed i16 and divides it by div.
func ScaledI16(b []byte, offset int, div float64) float64 {
	return scaled(I16(b, offset), div)
}

// ScaledU32 reads a little-endian u32 and divides it by div.
func ScaledU32(b []byte, offset int, div float64) float64 {
	return scaled(U32(b, offset), div)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(v*mult) / mult
}
