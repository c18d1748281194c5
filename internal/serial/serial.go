// Package serial models the 10-byte printable ASCII identifier LuxPower
// devices use to name an inverter or its network datalogger.
package serial

import "fmt"

const Len = 10

// Serial is a fixed-width, value-comparable device identifier.
type Serial [Len]byte

// Parse validates that b is exactly Len bytes of 7-bit printable ASCII
// and returns the corresponding Serial.
func Parse(b []byte) (Serial, error) {
	var s Serial
	if len(b) != Len {
		return s, fmt.Errorf("serial: expected %d bytes, got %d", Len, len(b))
	}
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			return s, fmt.Errorf("serial: byte %d (%#x) is not printable ASCII", i, c)
		}
		s[i] = c
	}
	return s, nil
}

// MustParse is Parse but panics on error; useful for constants in tests
// and configuration defaults known to be valid at compile time.
func MustParse(b []byte) Serial {
	s, err := Parse(b)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Serial) String() string {
	return string(s[:])
}

// Bytes returns the 10 raw bytes, suitable for writing into a Frame.
func (s Serial) Bytes() []byte {
	return s[:]
}
