package registers

import "testing"

func TestDecodeRegister21(t *testing.T) {
	got := DecodeRegister21(8716) // 0x220C: bits 2,3,9,13 set
	want := Register21Bits{
		EpsEn:             "OFF",
		OvfLoadDerateEn:   "OFF",
		DrmsEn:            "ON",
		LvrtEn:            "ON",
		AntiIslandEn:      "OFF",
		NeutralDetectEn:   "OFF",
		GridOnPowerSsEn:   "OFF",
		AcChargeEn:        "OFF",
		SwSeamlessEn:      "OFF",
		SetToStandby:      "ON",
		ForcedDischargeEn: "OFF",
		ChargePriorityEn:  "OFF",
		IsoEn:             "OFF",
		GfciEn:            "ON",
		DciEn:             "OFF",
		FeedInGridEn:      "OFF",
	}
	if got != want {
		t.Errorf("DecodeRegister21(8716) = %+v, want %+v", got, want)
	}
}

func TestNamedBitsMatchDecodedFields(t *testing.T) {
	data := uint16(BitAcChargeEn) | uint16(BitChargePriorityEn) | uint16(BitForcedDischargeEn)
	bits := DecodeRegister21(data)
	if bits.AcChargeEn != "ON" {
		t.Errorf("ac_charge_en = %q, want ON", bits.AcChargeEn)
	}
	if bits.ChargePriorityEn != "ON" {
		t.Errorf("charge_priority_en = %q, want ON", bits.ChargePriorityEn)
	}
	if bits.ForcedDischargeEn != "ON" {
		t.Errorf("forced_discharge_en = %q, want ON", bits.ForcedDischargeEn)
	}
	if bits.EpsEn != "OFF" {
		t.Errorf("eps_en = %q, want OFF (unaffected bit)", bits.EpsEn)
	}
}

func TestHasBitDecoderKnownAndUnknown(t *testing.T) {
	if _, ok := HasBitDecoder(Register21); !ok {
		t.Errorf("expected Register21 to have a bit decoder")
	}
	if _, ok := HasBitDecoder(GenRatePower); ok {
		t.Errorf("GenRatePower should not have a bit decoder")
	}
}
