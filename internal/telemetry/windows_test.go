package telemetry

import (
	"encoding/binary"
	"testing"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

func testDatalog(t *testing.T) serial.Serial {
	t.Helper()
	dl, err := serial.Parse([]byte("2222222222"))
	if err != nil {
		t.Fatalf("serial.Parse: %v", err)
	}
	return dl
}

func putU16(b []byte, offset int, v uint16) {
	binary.LittleEndian.PutUint16(b[offset:offset+2], v)
}

// TestDerivedFieldsReadInput1 checks p_pv/p_grid/p_battery derive
// correctly from their raw components within one ReadInput1 window.
func TestDerivedFieldsReadInput1(t *testing.T) {
	dl := testDatalog(t)
	raw := make([]byte, 80)

	putU16(raw, 14, 100) // p_pv1
	putU16(raw, 16, 50)  // p_pv2
	putU16(raw, 18, 25)  // p_pv3
	putU16(raw, 20, 40)  // p_charge
	putU16(raw, 22, 10)  // p_discharge
	putU16(raw, 52, 7)   // p_to_grid
	putU16(raw, 54, 20)  // p_to_user

	r := ParseReadInput1(raw, dl)

	if r.PPv != 175 {
		t.Errorf("p_pv = %d, want 175", r.PPv)
	}
	if r.PGrid != 13 {
		t.Errorf("p_grid = %d, want 13 (p_to_user-p_to_grid)", r.PGrid)
	}
	if r.PBattery != 30 {
		t.Errorf("p_battery = %d, want 30 (p_charge-p_discharge)", r.PBattery)
	}
}

// TestMergeCombinesAllThreeWindows checks Merge pulls fields from the
// right source window and leaves the generator fields at zero.
func TestMergeCombinesAllThreeWindows(t *testing.T) {
	dl := testDatalog(t)
	w := &Windows{}

	r1 := ParseReadInput1(make([]byte, 80), dl)
	r2 := ParseReadInput2(make([]byte, 80), dl)
	r3 := ParseReadInput3(make([]byte, 80), dl)

	if w.Ready() {
		t.Fatalf("Windows should not be ready before any window is set")
	}

	w.SetReadInput1(r1)
	w.SetReadInput2(r2)
	if w.Ready() {
		t.Fatalf("Windows should not be ready with only two of three set")
	}
	w.SetReadInput3(r3)
	if !w.Ready() {
		t.Fatalf("Windows should be ready once all three are set")
	}

	merged := w.Merge()
	if merged.Datalog != dl {
		t.Errorf("merged datalog = %v, want %v", merged.Datalog, dl)
	}
	if merged.VGen != 0 || merged.PGen != 0 || merged.EGenAll != 0 {
		t.Errorf("generator fields should be zero when merged from the three short windows")
	}
}

func TestEnergyTotalsRoundToOneDecimal(t *testing.T) {
	dl := testDatalog(t)
	raw := make([]byte, 80)

	// e_pv_day_1/2/3 at offsets 56, 58, 60, each divU16(10).
	putU16(raw, 56, 11) // 1.1
	putU16(raw, 58, 11) // 1.1
	putU16(raw, 60, 11) // 1.1

	r := ParseReadInput1(raw, dl)
	if r.EPvDay != 3.3 {
		t.Errorf("e_pv_day = %v, want 3.3", r.EPvDay)
	}
}
