// Package config loads the bridge's YAML configuration: one or more
// inverter connections, the shared MQTT broker and namespace, optional
// Home Assistant discovery, and optional InfluxDB metrics.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InverterConfig is one TCP-connected datalogger/inverter pair.
type InverterConfig struct {
	Datalog string `yaml:"datalog"`
	Serial  string `yaml:"serial"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// HomeAssistantConfig controls discovery publication.
type HomeAssistantConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

// MQTTConfig describes the shared broker connection and topic namespace.
type MQTTConfig struct {
	Host          string              `yaml:"host"`
	Port          int                 `yaml:"port"`
	Username      string              `yaml:"username"`
	Password      string              `yaml:"password"`
	ClientID      string              `yaml:"client_id"`
	Namespace     string              `yaml:"namespace"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
}

// InfluxConfig describes the optional metrics sink.
type InfluxConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

// LoadedConfig is the fully-parsed, defaulted bridge configuration.
type LoadedConfig struct {
	Inverters []InverterConfig `yaml:"inverters"`
	MQTT      MQTTConfig       `yaml:"mqtt"`
	Influx    InfluxConfig     `yaml:"influx"`
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (*LoadedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses raw YAML bytes, applies defaults, and validates the
// result.
func ParseConfig(data []byte) (*LoadedConfig, error) {
	var cfg LoadedConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *LoadedConfig) {
	if cfg.MQTT.Port == 0 {
		cfg.MQTT.Port = 1883
	}
	if cfg.MQTT.Namespace == "" {
		cfg.MQTT.Namespace = "lxp"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "luxpower-mqtt-bridge"
	}
	if cfg.MQTT.HomeAssistant.Prefix == "" {
		cfg.MQTT.HomeAssistant.Prefix = "homeassistant"
	}
	for i := range cfg.Inverters {
		if cfg.Inverters[i].Port == 0 {
			cfg.Inverters[i].Port = 8000
		}
	}
}

func (cfg *LoadedConfig) validate() error {
	if len(cfg.Inverters) == 0 {
		return fmt.Errorf("config: at least one inverter is required")
	}
	if cfg.MQTT.Host == "" {
		return fmt.Errorf("config: mqtt.host is required")
	}
	for _, inv := range cfg.Inverters {
		if inv.Datalog == "" {
			return fmt.Errorf("config: inverters[].datalog is required")
		}
		if len(inv.Datalog) != 10 {
			return fmt.Errorf("config: inverter %q: datalog must be exactly 10 characters", inv.Datalog)
		}
		if inv.Host == "" {
			return fmt.Errorf("config: inverter %q: host is required", inv.Datalog)
		}
	}
	if cfg.Influx.Enabled {
		if cfg.Influx.URL == "" || cfg.Influx.Bucket == "" {
			return fmt.Errorf("config: influx.enabled requires url and bucket")
		}
	}
	return nil
}
