package command

import (
	"errors"
	"testing"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/registers"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/wire"
)

func testSerial(t *testing.T, s string) serial.Serial {
	t.Helper()
	v, err := serial.Parse([]byte(s))
	if err != nil {
		t.Fatalf("serial.Parse: %v", err)
	}
	return v
}

// TestNamedBitRMWSetsBit covers the ac_charge-on scenario: the command
// synthesiser issues a ReadHold on Register21, and once fed the reply,
// computes value|0x0080 for the WriteSingle.
func TestNamedBitRMWSetsBit(t *testing.T) {
	dl := testSerial(t, "2222222222")
	inv := testSerial(t, "1111111111")
	s := New()

	pkt, err := s.Handle(inv, "2222222222/set/ac_charge", []byte("on"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	td, ok := pkt.(*wire.TranslatedData)
	if !ok {
		t.Fatalf("Handle returned %T, want *wire.TranslatedData", pkt)
	}
	if td.DeviceFunction() != wire.DeviceFunctionReadHold {
		t.Fatalf("expected a ReadHold request, got %v", td.DeviceFunction())
	}
	if td.Register() != uint16(registers.Register21) {
		t.Fatalf("expected register 21, got %d", td.Register())
	}

	// Reply with a value that has nothing set.
	reply := wire.NewTranslatedData(dl, inv, wire.DeviceFunctionReadHold, uint16(registers.Register21), []byte{0x00, 0x00})
	next, ok := s.ReplyReadHold(reply)
	if !ok {
		t.Fatalf("ReplyReadHold did not match the pending RMW")
	}
	wtd, ok := next.(*wire.TranslatedData)
	if !ok {
		t.Fatalf("ReplyReadHold returned %T, want *wire.TranslatedData", next)
	}
	if wtd.DeviceFunction() != wire.DeviceFunctionWriteSingle {
		t.Fatalf("expected a WriteSingle, got %v", wtd.DeviceFunction())
	}
	got := uint16(wtd.Values()[0]) | uint16(wtd.Values()[1])<<8
	if got != 0x0080 {
		t.Errorf("written value = %#04x, want %#04x", got, 0x0080)
	}
}

func TestNamedBitRMWClearsBit(t *testing.T) {
	dl := testSerial(t, "2222222222")
	inv := testSerial(t, "1111111111")
	s := New()

	if _, err := s.Handle(inv, "2222222222/set/charge_priority", []byte("off")); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	// Current value has every bit set; clearing charge_priority (bit 11)
	// should leave every other bit intact.
	reply := wire.NewTranslatedData(dl, inv, wire.DeviceFunctionReadHold, uint16(registers.Register21), []byte{0xFF, 0xFF})
	next, ok := s.ReplyReadHold(reply)
	if !ok {
		t.Fatalf("ReplyReadHold did not match the pending RMW")
	}
	wtd := next.(*wire.TranslatedData)
	got := uint16(wtd.Values()[0]) | uint16(wtd.Values()[1])<<8
	want := uint16(0xFFFF) &^ uint16(registers.BitChargePriorityEn)
	if got != want {
		t.Errorf("written value = %#04x, want %#04x", got, want)
	}
}

func TestNamedBitRMWRejectsConcurrent(t *testing.T) {
	dl := testSerial(t, "2222222222")
	inv := testSerial(t, "1111111111")
	s := New()

	if _, err := s.Handle(inv, dl.String()+"/set/ac_charge", []byte("on")); err != nil {
		t.Fatalf("first Handle: %v", err)
	}
	if _, err := s.Handle(inv, dl.String()+"/set/forced_discharge", []byte("on")); !errors.Is(err, ErrBadPayload) {
		t.Fatalf("expected a rejected second RMW on the same register, got %v", err)
	}
}

func TestHoldWriteDirect(t *testing.T) {
	dl := testSerial(t, "2222222222")
	inv := testSerial(t, "1111111111")
	s := New()

	pkt, err := s.Handle(inv, dl.String()+"/set/hold/177", []byte("171"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	td := pkt.(*wire.TranslatedData)
	if td.DeviceFunction() != wire.DeviceFunctionWriteSingle {
		t.Fatalf("expected WriteSingle, got %v", td.DeviceFunction())
	}
	if td.Register() != 177 {
		t.Fatalf("register = %d, want 177", td.Register())
	}
	got := uint16(td.Values()[0]) | uint16(td.Values()[1])<<8
	if got != 171 {
		t.Errorf("value = %d, want 171", got)
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	dl := testSerial(t, "2222222222")
	inv := testSerial(t, "1111111111")
	s := New()

	if _, err := s.Handle(inv, dl.String()+"/set/not_a_real_command", []byte("on")); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestTimeslotWrite(t *testing.T) {
	dl := testSerial(t, "2222222222")
	inv := testSerial(t, "1111111111")
	s := New()

	pkt, err := s.Handle(inv, dl.String()+"/set/ac_charge/0", []byte("08:30-17:45"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	td := pkt.(*wire.TranslatedData)
	if td.DeviceFunction() != wire.DeviceFunctionWriteMulti {
		t.Fatalf("expected WriteMulti, got %v", td.DeviceFunction())
	}
	if td.Register() != 68 {
		t.Fatalf("register = %d, want 68", td.Register())
	}
	values := td.Values()
	if len(values) != 4 {
		t.Fatalf("values length = %d, want 4 (two HH:MM pairs)", len(values))
	}
	if values[0] != 8 || values[1] != 30 || values[2] != 17 || values[3] != 45 {
		t.Errorf("values = %v, want [8 30 17 45]", values)
	}
}

func TestExpireDropsTimedOutRMW(t *testing.T) {
	dl := testSerial(t, "2222222222")
	inv := testSerial(t, "1111111111")
	s := New()

	if _, err := s.Handle(inv, dl.String()+"/set/ac_charge", []byte("on")); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	// Force the pending entry's deadline into the past.
	for _, p := range s.pending {
		p.deadline = p.deadline.Add(-1 * rmwTimeout * 2)
	}

	errs := s.Expire()
	if len(errs) != 1 {
		t.Fatalf("got %d expired entries, want 1", len(errs))
	}
	if !errors.Is(errs[0], ErrRMWTimeout) {
		t.Errorf("expire error = %v, want ErrRMWTimeout", errs[0])
	}
	if len(s.pending) != 0 {
		t.Errorf("pending map should be empty after Expire")
	}
}
