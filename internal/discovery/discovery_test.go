package discovery

import (
	"encoding/json"
	"testing"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

func testNamespace(t *testing.T) Namespace {
	t.Helper()
	dl, err := serial.Parse([]byte("2222222222"))
	if err != nil {
		t.Fatalf("serial.Parse: %v", err)
	}
	return Namespace{
		MQTTNamespace: "lxp",
		HAPrefix:      "homeassistant",
		Datalog:       dl,
		DeviceName:    "LuxPower 2222222222",
	}
}

func TestBuildDefaultStateTopic(t *testing.T) {
	ns := testNamespace(t)
	cfg := ns.Build(Entry{Key: "p_pv", Name: "PV Power", Kind: KindSensor, Category: CategoryPower})

	if cfg.StateTopic != "lxp/2222222222/input/p_pv/parsed" {
		t.Errorf("state topic = %q", cfg.StateTopic)
	}
	if cfg.UniqueID != "lxp_2222222222_p_pv" {
		t.Errorf("unique id = %q", cfg.UniqueID)
	}
	if cfg.UnitOfMeasurement != "W" {
		t.Errorf("unit = %q, want W", cfg.UnitOfMeasurement)
	}
}

// TestBuildResolvesTemplatePlaceholders covers the switch entries, whose
// StateTopicOverride carries {{namespace}}/{{datalog}} placeholders that
// must be substituted with this Namespace's values.
func TestBuildResolvesTemplatePlaceholders(t *testing.T) {
	ns := testNamespace(t)
	entry, ok := findEntry("ac_charge")
	if !ok {
		t.Fatalf("ac_charge entry missing from discovery table")
	}

	cfg := ns.Build(entry)
	want := "lxp/2222222222/hold/21/bits"
	if cfg.StateTopic != want {
		t.Errorf("state topic = %q, want %q", cfg.StateTopic, want)
	}
	if cfg.CommandTopic != "lxp/cmd/2222222222/set/ac_charge" {
		t.Errorf("command topic = %q", cfg.CommandTopic)
	}
}

// TestBuildCompositeRegisterSubField covers a composite input-register
// sub-field entry, whose state topic points at the parent register's
// /parsed topic with a value_template picking out its own key.
func TestBuildCompositeRegisterSubField(t *testing.T) {
	ns := testNamespace(t)
	entry, ok := findEntry("master_or_slave")
	if !ok {
		t.Fatalf("master_or_slave entry missing from discovery table")
	}

	cfg := ns.Build(entry)
	want := "lxp/2222222222/input/register_113/parsed"
	if cfg.StateTopic != want {
		t.Errorf("state topic = %q, want %q", cfg.StateTopic, want)
	}
	if cfg.ValueTemplate != "{{ value_json.master_or_slave }}" {
		t.Errorf("value template = %q", cfg.ValueTemplate)
	}
}

func TestBuildNumberEntryHasMinMaxStep(t *testing.T) {
	ns := testNamespace(t)
	entry, ok := findEntry("max_chg_curr")
	if !ok {
		t.Fatalf("max_chg_curr entry missing from discovery table")
	}

	cfg := ns.Build(entry)
	if cfg.Min == nil || cfg.Max == nil || cfg.Step == nil {
		t.Fatalf("expected min/max/step to be set for a number entity")
	}
	if *cfg.Min != 0 || *cfg.Max != 200 || *cfg.Step != 1 {
		t.Errorf("min/max/step = %v/%v/%v, want 0/200/1", *cfg.Min, *cfg.Max, *cfg.Step)
	}
}

func TestTopicShape(t *testing.T) {
	ns := testNamespace(t)
	entry := Entry{Key: "p_pv", Kind: KindSensor}
	got := ns.Topic(entry)
	want := "homeassistant/sensor/lxp_2222222222/p_pv/config"
	if got != want {
		t.Errorf("topic = %q, want %q", got, want)
	}
}

func TestPayloadIsValidJSON(t *testing.T) {
	ns := testNamespace(t)
	for _, e := range Entries {
		payload, err := ns.Payload(e)
		if err != nil {
			t.Fatalf("Payload(%s): %v", e.Key, err)
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(payload), &out); err != nil {
			t.Fatalf("Payload(%s) is not valid JSON: %v", e.Key, err)
		}
		if out["unique_id"] == "" {
			t.Errorf("Payload(%s) missing unique_id", e.Key)
		}
	}
}

// TestDiscoveryStability checks building the same entry twice yields an
// identical payload, since Home Assistant discovery must be idempotent.
func TestDiscoveryStability(t *testing.T) {
	ns := testNamespace(t)
	entry := Entries[0]

	a, err := ns.Payload(entry)
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	b, err := ns.Payload(entry)
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if a != b {
		t.Errorf("discovery payload is not stable across builds:\n%s\n%s", a, b)
	}
}

func findEntry(key string) (Entry, bool) {
	for _, e := range Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}
