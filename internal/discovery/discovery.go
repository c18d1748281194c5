// Package discovery builds Home Assistant MQTT discovery payloads for the
// bridge's published entities: a small set of category templates
// (voltage, current, power, energy, frequency, temperature) that each
// entity composes with its own key, name, and optional overrides.
package discovery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

// Device identifies the physical inverter an entity belongs to, included
// on every discovery payload so Home Assistant groups entities together.
type Device struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
}

// Availability points Home Assistant at the namespace LWT topic.
type Availability struct {
	Topic string `json:"topic"`
}

// Config is the discovery payload for a single entity. Fields are
// omitted from the JSON when unused by the entity's kind.
type Config struct {
	UniqueID          string        `json:"unique_id"`
	Name              string        `json:"name"`
	StateTopic        string        `json:"state_topic"`
	ValueTemplate     string        `json:"value_template,omitempty"`
	DeviceClass       string        `json:"device_class,omitempty"`
	StateClass        string        `json:"state_class,omitempty"`
	UnitOfMeasurement string        `json:"unit_of_measurement,omitempty"`
	EntityCategory    string        `json:"entity_category,omitempty"`
	Icon              string        `json:"icon,omitempty"`
	Device            Device        `json:"device"`
	Availability      Availability  `json:"availability"`

	CommandTopic    string `json:"command_topic,omitempty"`
	Min             *float64 `json:"min,omitempty"`
	Max             *float64 `json:"max,omitempty"`
	Step            *float64 `json:"step,omitempty"`
	Mode            string `json:"mode,omitempty"`
	Pattern         string `json:"pattern,omitempty"`
	CommandTemplate string `json:"command_template,omitempty"`
}

// Kind is the Home Assistant entity platform an entry publishes under.
type Kind string

const (
	KindSensor       Kind = "sensor"
	KindBinarySensor Kind = "binary_sensor"
	KindSwitch       Kind = "switch"
	KindNumber       Kind = "number"
	KindText         Kind = "text"
)

// Category is a reusable template (unit, device class, state class, icon)
// that several entries compose with.
type Category struct {
	DeviceClass       string
	StateClass        string
	UnitOfMeasurement string
	Icon              string
}

var (
	CategoryVoltage = Category{DeviceClass: "voltage", StateClass: "measurement", UnitOfMeasurement: "V"}
	CategoryCurrent = Category{DeviceClass: "current", StateClass: "measurement", UnitOfMeasurement: "A"}
	CategoryPower   = Category{DeviceClass: "power", StateClass: "measurement", UnitOfMeasurement: "W"}
	CategoryEnergy  = Category{DeviceClass: "energy", StateClass: "total_increasing", UnitOfMeasurement: "kWh"}
	CategoryFreq    = Category{DeviceClass: "frequency", StateClass: "measurement", UnitOfMeasurement: "Hz"}
	CategoryTemp    = Category{DeviceClass: "temperature", StateClass: "measurement", UnitOfMeasurement: "°C"}
	CategoryBase    = Category{}
)

// Entry is one static discovery-table row; Build turns it into a Config
// for a specific device/datalog.
type Entry struct {
	Key      string
	Name     string
	Kind     Kind
	Category Category

	// StateTopicOverride redirects an entity at another topic (a holding
	// register's /bits topic, or a composite input field's /parsed topic)
	// instead of the default input/{key}/parsed stream.
	StateTopicOverride string
	ValueTemplate       string

	EntityCategory string

	// Number/text specific fields.
	Min, Max, Step float64
	HasMinMaxStep  bool
	Pattern        string
}

// Namespace carries the runtime topic prefixes discovery payloads embed.
type Namespace struct {
	MQTTNamespace string
	HAPrefix      string
	Datalog       serial.Serial
	DeviceName    string
}

// Build renders e into a full discovery Config for ns.
func (ns Namespace) Build(e Entry) Config {
	stateTopic := e.StateTopicOverride
	if stateTopic == "" {
		stateTopic = fmt.Sprintf("%s/%s/input/%s/parsed", ns.MQTTNamespace, ns.Datalog, e.Key)
	} else {
		stateTopic = resolveTemplate(stateTopic, ns.MQTTNamespace, ns.Datalog)
	}

	valueTemplate := e.ValueTemplate
	if valueTemplate == "" {
		valueTemplate = "{{ value_json }}"
	}

	cfg := Config{
		UniqueID:          fmt.Sprintf("lxp_%s_%s", ns.Datalog, e.Key),
		Name:              e.Name,
		StateTopic:        stateTopic,
		ValueTemplate:     valueTemplate,
		DeviceClass:       e.Category.DeviceClass,
		StateClass:        e.Category.StateClass,
		UnitOfMeasurement: e.Category.UnitOfMeasurement,
		EntityCategory:    e.EntityCategory,
		Icon:              e.Category.Icon,
		Device: Device{
			Identifiers:  []string{"lxp_" + ns.Datalog.String()},
			Name:         ns.DeviceName,
			Manufacturer: "LuxPower",
		},
		Availability: Availability{Topic: ns.MQTTNamespace + "/LWT"},
	}

	switch e.Kind {
	case KindSwitch:
		cfg.CommandTopic = fmt.Sprintf("%s/cmd/%s/set/%s", ns.MQTTNamespace, ns.Datalog, e.Key)
	case KindNumber:
		cfg.CommandTopic = fmt.Sprintf("%s/cmd/%s/set/%s", ns.MQTTNamespace, ns.Datalog, e.Key)
		cfg.Mode = "box"
		if e.HasMinMaxStep {
			min, max, step := e.Min, e.Max, e.Step
			cfg.Min, cfg.Max, cfg.Step = &min, &max, &step
		}
	case KindText:
		cfg.CommandTopic = fmt.Sprintf("%s/cmd/%s/set/%s", ns.MQTTNamespace, ns.Datalog, e.Key)
		cfg.Pattern = e.Pattern
	}

	return cfg
}

// Topic returns the retained discovery-config topic for e under ns.
func (ns Namespace) Topic(e Entry) string {
	return fmt.Sprintf("%s/%s/lxp_%s/%s/config", ns.HAPrefix, e.Kind, ns.Datalog, e.Key)
}

// Payload marshals e's Config as the retained discovery payload.
func (ns Namespace) Payload(e Entry) (string, error) {
	b, err := json.Marshal(ns.Build(e))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Entries is the static discovery table: every sensor, switch, and number
// the bridge exposes. It is not exhaustive of every register the firmware
// defines, but covers the fields a typical Home Assistant dashboard for
// this inverter cares about.
var Entries = []Entry{
	{Key: "v_pv_1", Name: "PV1 Voltage", Kind: KindSensor, Category: CategoryVoltage},
	{Key: "v_pv_2", Name: "PV2 Voltage", Kind: KindSensor, Category: CategoryVoltage},
	{Key: "v_pv_3", Name: "PV3 Voltage", Kind: KindSensor, Category: CategoryVoltage},
	{Key: "v_bat", Name: "Battery Voltage", Kind: KindSensor, Category: CategoryVoltage},
	{Key: "v_ac_r", Name: "Grid Voltage R", Kind: KindSensor, Category: CategoryVoltage},
	{Key: "v_ac_s", Name: "Grid Voltage S", Kind: KindSensor, Category: CategoryVoltage},
	{Key: "v_ac_t", Name: "Grid Voltage T", Kind: KindSensor, Category: CategoryVoltage},
	{Key: "v_eps_r", Name: "EPS Voltage R", Kind: KindSensor, Category: CategoryVoltage},

	{Key: "bat_current", Name: "Battery Current", Kind: KindSensor, Category: CategoryCurrent},
	{Key: "afci_ch1_current", Name: "AFCI Channel 1 Current", Kind: KindSensor, Category: CategoryCurrent},
	{Key: "afci_ch2_current", Name: "AFCI Channel 2 Current", Kind: KindSensor, Category: CategoryCurrent},

	{Key: "p_pv", Name: "PV Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_pv_1", Name: "PV1 Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_pv_2", Name: "PV2 Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_pv_3", Name: "PV3 Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_battery", Name: "Battery Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_grid", Name: "Grid Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_inv", Name: "Inverter Output Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_rec", Name: "Rectifier Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_eps", Name: "EPS Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_load", Name: "Load Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_ac_couple", Name: "AC Couple Power", Kind: KindSensor, Category: CategoryPower},
	{Key: "p_on_grid_load", Name: "On-Grid Load Power", Kind: KindSensor, Category: CategoryPower},

	{Key: "e_pv_day", Name: "PV Energy Today", Kind: KindSensor, Category: CategoryEnergy},
	{Key: "e_pv_all", Name: "PV Energy Total", Kind: KindSensor, Category: CategoryEnergy},
	{Key: "e_chg_day", Name: "Battery Charge Today", Kind: KindSensor, Category: CategoryEnergy},
	{Key: "e_dischg_day", Name: "Battery Discharge Today", Kind: KindSensor, Category: CategoryEnergy},
	{Key: "e_to_grid_day", Name: "Exported Today", Kind: KindSensor, Category: CategoryEnergy},
	{Key: "e_to_user_day", Name: "Imported Today", Kind: KindSensor, Category: CategoryEnergy},
	{Key: "e_eps_day", Name: "EPS Energy Today", Kind: KindSensor, Category: CategoryEnergy},
	{Key: "e_load_day", Name: "Load Energy Today", Kind: KindSensor, Category: CategoryEnergy},
	{Key: "e_load_all", Name: "Load Energy Total", Kind: KindSensor, Category: CategoryEnergy},

	{Key: "f_ac", Name: "Grid Frequency", Kind: KindSensor, Category: CategoryFreq},
	{Key: "f_eps", Name: "EPS Frequency", Kind: KindSensor, Category: CategoryFreq},

	{Key: "t_inner", Name: "Inner Temperature", Kind: KindSensor, Category: CategoryTemp},
	{Key: "t_rad_1", Name: "Radiator 1 Temperature", Kind: KindSensor, Category: CategoryTemp},
	{Key: "t_rad_2", Name: "Radiator 2 Temperature", Kind: KindSensor, Category: CategoryTemp},
	{Key: "t_bat", Name: "Battery Temperature", Kind: KindSensor, Category: CategoryTemp},
	{Key: "max_cell_temp", Name: "Max Cell Temperature", Kind: KindSensor, Category: CategoryTemp},
	{Key: "min_cell_temp", Name: "Min Cell Temperature", Kind: KindSensor, Category: CategoryTemp},

	{Key: "soc", Name: "Battery State of Charge", Kind: KindSensor, Category: Category{StateClass: "measurement", UnitOfMeasurement: "%"}, ValueTemplate: "{{ value_json }}"},
	{Key: "soh", Name: "Battery State of Health", Kind: KindSensor, Category: Category{StateClass: "measurement", UnitOfMeasurement: "%"}},
	{Key: "status", Name: "Operating Status", Kind: KindSensor, Category: CategoryBase, EntityCategory: "diagnostic"},
	{Key: "fault_code", Name: "Fault Code", Kind: KindSensor, Category: CategoryBase, EntityCategory: "diagnostic"},
	{Key: "warning_code", Name: "Warning Code", Kind: KindSensor, Category: CategoryBase, EntityCategory: "diagnostic"},
	{Key: "runtime", Name: "Runtime", Kind: KindSensor, Category: Category{UnitOfMeasurement: "s"}, EntityCategory: "diagnostic"},
	{Key: "bat_count", Name: "Battery Count", Kind: KindSensor, Category: CategoryBase, EntityCategory: "diagnostic"},
	{Key: "bat_capacity", Name: "Battery Capacity", Kind: KindSensor, Category: Category{UnitOfMeasurement: "%"}},
	{Key: "cycle_count", Name: "Battery Cycle Count", Kind: KindSensor, Category: CategoryBase, EntityCategory: "diagnostic"},

	{Key: "register_21", Name: "Function Enable Flags", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/hold/21/bits", EntityCategory: "diagnostic"},

	{Key: "ac_charge", Name: "AC Charge", Kind: KindSwitch, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/hold/21/bits", ValueTemplate: "{{ value_json.ac_charge_en }}"},
	{Key: "charge_priority", Name: "Charge Priority", Kind: KindSwitch, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/hold/21/bits", ValueTemplate: "{{ value_json.charge_priority_en }}"},
	{Key: "forced_discharge", Name: "Forced Discharge", Kind: KindSwitch, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/hold/21/bits", ValueTemplate: "{{ value_json.forced_discharge_en }}"},

	{Key: "register_71", Name: "Auto Test Flags", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_71/parsed", EntityCategory: "diagnostic"},
	{Key: "auto_test_start", Name: "Auto Test Start", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_71/parsed", ValueTemplate: "{{ value_json.auto_test_start }}", EntityCategory: "diagnostic"},
	{Key: "ub_auto_test_status", Name: "Auto Test Status", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_71/parsed", ValueTemplate: "{{ value_json.ub_auto_test_status }}", EntityCategory: "diagnostic"},
	{Key: "ub_auto_test_step", Name: "Auto Test Step", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_71/parsed", ValueTemplate: "{{ value_json.ub_auto_test_step }}", EntityCategory: "diagnostic"},

	{Key: "register_77", Name: "AC Couple Flags", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_77/parsed", EntityCategory: "diagnostic"},
	{Key: "ac_input_type", Name: "AC Input Type", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_77/parsed", ValueTemplate: "{{ value_json.ac_input_type }}", EntityCategory: "diagnostic"},
	{Key: "ac_couple_inverter_flow", Name: "AC Couple Inverter Flow", Kind: KindBinarySensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_77/parsed", ValueTemplate: "{{ value_json.ac_couple_inverter_flow }}", EntityCategory: "diagnostic"},
	{Key: "ac_couple_enable", Name: "AC Couple Enable", Kind: KindBinarySensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_77/parsed", ValueTemplate: "{{ value_json.ac_couple_enable }}", EntityCategory: "diagnostic"},

	{Key: "register_113", Name: "Parallel System Flags", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_113/parsed", EntityCategory: "diagnostic"},
	{Key: "master_or_slave", Name: "Master Or Slave", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_113/parsed", ValueTemplate: "{{ value_json.master_or_slave }}", EntityCategory: "diagnostic"},
	{Key: "single_or_three_phase", Name: "Single Or Three Phase", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_113/parsed", ValueTemplate: "{{ value_json.single_or_three_phase }}", EntityCategory: "diagnostic"},
	{Key: "phases_sequence", Name: "Phases Sequence", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_113/parsed", ValueTemplate: "{{ value_json.phases_sequence }}", EntityCategory: "diagnostic"},
	{Key: "parallel_num", Name: "Parallel Number", Kind: KindSensor, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/register_113/parsed", ValueTemplate: "{{ value_json.parallel_num }}", EntityCategory: "diagnostic"},

	{Key: "max_chg_curr", Name: "Max Charge Current", Kind: KindNumber, Category: CategoryCurrent,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/max_chg_curr/parsed",
		Min: 0, Max: 200, Step: 1, HasMinMaxStep: true},
	{Key: "max_dischg_curr", Name: "Max Discharge Current", Kind: KindNumber, Category: CategoryCurrent,
		StateTopicOverride: "{{namespace}}/{{datalog}}/input/max_dischg_curr/parsed",
		Min: 0, Max: 200, Step: 1, HasMinMaxStep: true},

	{Key: "ac_charge_0", Name: "AC Charge Slot 1", Kind: KindText, Category: CategoryBase,
		StateTopicOverride: "{{namespace}}/{{datalog}}/hold/68/parsed", Pattern: `^\d{2}:\d{2}-\d{2}:\d{2}$`},
}

// resolveTemplate substitutes {{namespace}} and {{datalog}} placeholders
// in an entry's override topics; Entries above are written with
// placeholders so the static table stays datalog-independent.
func resolveTemplate(tpl, namespace string, datalog serial.Serial) string {
	s := strings.ReplaceAll(tpl, "{{namespace}}", namespace)
	s = strings.ReplaceAll(s, "{{datalog}}", datalog.String())
	return s
}
