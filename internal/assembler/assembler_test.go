package assembler

import (
	"testing"

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

func translatedData(t *testing.T, dl serial.Serial, register uint16, values []byte) *wire.TranslatedData {
	t.Helper()
	inv := dl
	return wire.NewTranslatedData(dl, inv, wire.DeviceFunctionReadInput, register, values)
}

// TestFullSnapshotZeroWindows feeds three all-zero 80-byte ReadInput
// windows (registers 0/40/80) and checks the merge only completes on the
// third, with the derived power fields all zero.
func TestFullSnapshotZeroWindows(t *testing.T) {
	dl := testSerial(t, "2222222222")
	a := New()

	zero80 := make([]byte, 80)

	res1, err := a.Feed(translatedData(t, dl, 0, zero80))
	if err != nil {
		t.Fatalf("feed window 1: %v", err)
	}
	if res1.One == nil {
		t.Fatalf("expected One to be set")
	}
	if res1.All != nil {
		t.Fatalf("expected All to be nil before the triple completes")
	}

	res2, err := a.Feed(translatedData(t, dl, 40, zero80))
	if err != nil {
		t.Fatalf("feed window 2: %v", err)
	}
	if res2.Two == nil {
		t.Fatalf("expected Two to be set")
	}
	if res2.All != nil {
		t.Fatalf("expected All to be nil after only two windows")
	}

	res3, err := a.Feed(translatedData(t, dl, 80, zero80))
	if err != nil {
		t.Fatalf("feed window 3: %v", err)
	}
	if res3.Three == nil {
		t.Fatalf("expected Three to be set")
	}
	if res3.All == nil {
		t.Fatalf("expected All to be set once the triple completes")
	}

	all := res3.All
	if all.PPv != 0 {
		t.Errorf("p_pv = %d, want 0", all.PPv)
	}
	if all.PGrid != 0 {
		t.Errorf("p_grid = %d, want 0", all.PGrid)
	}
	if all.PBattery != 0 {
		t.Errorf("p_battery = %d, want 0", all.PBattery)
	}
}

// TestWindowsResetAfterMerge checks a completed triple does not leak into
// the next reporting cycle: feeding window 1 again should not immediately
// re-trigger a merge.
func TestWindowsResetAfterMerge(t *testing.T) {
	dl := testSerial(t, "2222222222")
	a := New()
	zero80 := make([]byte, 80)

	for _, reg := range []uint16{0, 40, 80} {
		if _, err := a.Feed(translatedData(t, dl, reg, zero80)); err != nil {
			t.Fatalf("feed register %d: %v", reg, err)
		}
	}

	res, err := a.Feed(translatedData(t, dl, 0, zero80))
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if res.All != nil {
		t.Fatalf("expected All to be nil on a fresh single window after reset")
	}
}

func TestFeedLongFormAll(t *testing.T) {
	dl := testSerial(t, "2222222222")
	a := New()
	zero254 := make([]byte, 254)

	res, err := a.Feed(translatedData(t, dl, 0, zero254))
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if res.All == nil {
		t.Fatalf("expected All to be set for the register=0/len=254 long form")
	}
}

func TestFeedRejectsUnknownWindow(t *testing.T) {
	dl := testSerial(t, "2222222222")
	a := New()
	if _, err := a.Feed(translatedData(t, dl, 7, []byte{0, 0})); err == nil {
		t.Fatal("expected an error for an unrecognised register/length combination")
	}
}

// TestFeedSingleFieldStatus covers the register=0/len=4 single-field
// sub-read the firmware issues outside the three-window cycle.
func TestFeedSingleFieldStatus(t *testing.T) {
	dl := testSerial(t, "2222222222")
	a := New()

	res, err := a.Feed(translatedData(t, dl, 0, []byte{0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if res.Status == nil {
		t.Fatalf("expected Status to be set")
	}
	if *res.Status != 0 {
		t.Errorf("status = %d, want 0", *res.Status)
	}
}

// TestFeedSingleFieldFaultCode covers spec.md scenario 4: register=60/
// len=4 carrying u32 0x00000001, the lowest fault bit.
func TestFeedSingleFieldFaultCode(t *testing.T) {
	dl := testSerial(t, "2222222222")
	a := New()

	res, err := a.Feed(translatedData(t, dl, 60, []byte{1, 0, 0, 0}))
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if res.FaultCode == nil {
		t.Fatalf("expected FaultCode to be set")
	}
	if *res.FaultCode != 1 {
		t.Errorf("fault code = %d, want 1", *res.FaultCode)
	}
}

func TestFeedSingleFieldWarningCode(t *testing.T) {
	dl := testSerial(t, "2222222222")
	a := New()

	res, err := a.Feed(translatedData(t, dl, 62, []byte{0, 0, 0, 128}))
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if res.WarningCode == nil {
		t.Fatalf("expected WarningCode to be set")
	}
	if *res.WarningCode != 1<<31 {
		t.Errorf("warning code = %#x, want bit 31 set", *res.WarningCode)
	}
}
