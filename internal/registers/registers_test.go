package registers

import "testing"

func TestLookupKnownRegisterScale(t *testing.T) {
	cfg := Lookup(GenRatePower)
	if cfg.Scale != 0.1 {
		t.Errorf("scale = %v, want 0.1", cfg.Scale)
	}
	if cfg.Unit != "kW" {
		t.Errorf("unit = %q, want kW", cfg.Unit)
	}
}

func TestLookupUnknownRegisterDefaults(t *testing.T) {
	cfg := Lookup(ComAddress)
	if cfg.Scale != 1.0 {
		t.Errorf("scale = %v, want 1.0", cfg.Scale)
	}
	if cfg.Unit != "" {
		t.Errorf("unit = %q, want empty", cfg.Unit)
	}
}

// TestScalingProperty checks the payload == raw*scale convention, not
// raw/scale: register 177 (GenRatePower) has scale 0.1, so a raw value of
// 171 must publish as 17.1, not 1710.
func TestScalingProperty(t *testing.T) {
	cfg := Lookup(GenRatePower)
	got := float64(171) * cfg.Scale
	if got != 17.1 {
		t.Errorf("171 * %v = %v, want 17.1", cfg.Scale, got)
	}
}
