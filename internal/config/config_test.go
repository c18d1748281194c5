package config

import "testing"

func TestParseConfigAppliesDefaults(t *testing.T) {
	data := []byte(`
inverters:
  - datalog: "2222222222"
    host: 192.168.1.50
mqtt:
  host: broker.local
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.MQTT.Port != 1883 {
		t.Errorf("mqtt.port = %d, want 1883", cfg.MQTT.Port)
	}
	if cfg.MQTT.Namespace != "lxp" {
		t.Errorf("mqtt.namespace = %q, want lxp", cfg.MQTT.Namespace)
	}
	if cfg.MQTT.ClientID != "luxpower-mqtt-bridge" {
		t.Errorf("mqtt.client_id = %q", cfg.MQTT.ClientID)
	}
	if cfg.MQTT.HomeAssistant.Prefix != "homeassistant" {
		t.Errorf("homeassistant.prefix = %q", cfg.MQTT.HomeAssistant.Prefix)
	}
	if len(cfg.Inverters) != 1 || cfg.Inverters[0].Port != 8000 {
		t.Fatalf("inverter port default not applied: %+v", cfg.Inverters)
	}
}

func TestParseConfigRejectsMissingInverters(t *testing.T) {
	data := []byte(`
mqtt:
  host: broker.local
`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatal("expected an error for a config with no inverters")
	}
}

func TestParseConfigRejectsMissingMQTTHost(t *testing.T) {
	data := []byte(`
inverters:
  - datalog: "2222222222"
    host: 192.168.1.50
`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatal("expected an error for a config with no mqtt.host")
	}
}

func TestParseConfigRejectsShortDatalog(t *testing.T) {
	data := []byte(`
inverters:
  - datalog: "short"
    host: 192.168.1.50
mqtt:
  host: broker.local
`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatal("expected an error for a datalog shorter than 10 characters")
	}
}

func TestParseConfigRejectsIncompleteInflux(t *testing.T) {
	data := []byte(`
inverters:
  - datalog: "2222222222"
    host: 192.168.1.50
mqtt:
  host: broker.local
influx:
  enabled: true
`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatal("expected an error when influx is enabled without url/bucket")
	}
}

func TestParseConfigAcceptsExplicitInverterSerial(t *testing.T) {
	data := []byte(`
inverters:
  - datalog: "2222222222"
    serial: "1111111111"
    host: 192.168.1.50
mqtt:
  host: broker.local
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Inverters[0].Serial != "1111111111" {
		t.Errorf("inverter serial = %q, want 1111111111", cfg.Inverters[0].Serial)
	}
}
