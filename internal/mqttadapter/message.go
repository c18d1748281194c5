// Package mqttadapter turns decoded packets and telemetry snapshots into
// MQTT Message records. Inbound command topics are not handled here; the
// engine subscribes to them and passes them to the command synthesiser.
// Topic and payload shapes follow the bridge's bus convention:
// holding-register publications retain, input streaming does not.
package mqttadapter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/registers"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

// Message is the wire-agnostic publication record the bridge hands to its
// MQTT client.
type Message struct {
	Topic   string
	Retain  bool
	Payload string
}

// Namespace holds the topic prefix a running bridge uses; Namespace comes
// from configuration, Datalog identifies one inverter connection.
type Namespace struct {
	Namespace string
	Datalog   serial.Serial
}

func (n Namespace) holdTopic(reg registers.Register) string {
	return fmt.Sprintf("%s/%s/hold/%d", n.Namespace, n.Datalog, uint16(reg))
}

func (n Namespace) holdBitsTopic(reg registers.Register) string {
	return fmt.Sprintf("%s/%s/hold/%d/bits", n.Namespace, n.Datalog, uint16(reg))
}

func (n Namespace) paramTopic(reg uint16) string {
	return fmt.Sprintf("%s/param/%d", n.Datalog, reg)
}

func (n Namespace) inputFieldTopic(field string) string {
	return fmt.Sprintf("%s/%s/input/%s/parsed", n.Namespace, n.Datalog, field)
}

func (n Namespace) inputsTopic(window string) string {
	return fmt.Sprintf("%s/%s/inputs/%s", n.Namespace, n.Datalog, window)
}

// LWTTopic is the namespace-wide last-will-and-testament topic.
func (n Namespace) LWTTopic() string {
	return n.Namespace + "/LWT"
}

// formatScaled renders a holding-register payload: always at least one
// decimal place, mirroring the upstream firmware's JSON float
// serialisation regardless of whether the register's scale is 1.0.
func formatScaled(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatParam renders a param-register payload as a bare integer.
func formatParam(v uint16) string {
	return strconv.Itoa(int(v))
}

// HoldMessages builds the raw-value publication and, when reg has a
// packed-bit decoder, the accompanying /bits publication.
func HoldMessages(ns Namespace, reg registers.Register, raw uint16) []Message {
	cfg := registers.Lookup(reg)
	scaled := float64(raw) * cfg.Scale

	msgs := []Message{{
		Topic:   ns.holdTopic(reg),
		Retain:  true,
		Payload: formatScaled(scaled),
	}}

	if decode, ok := registers.HasBitDecoder(reg); ok {
		bits := decode(raw)
		b, err := json.Marshal(bits)
		if err == nil {
			msgs = append(msgs, Message{
				Topic:   ns.holdBitsTopic(reg),
				Retain:  true,
				Payload: string(b),
			})
		}
	}

	return msgs
}

// ParamMessage builds the retained publication for a ReadParam response.
func ParamMessage(ns Namespace, reg uint16, raw uint16) Message {
	return Message{
		Topic:   ns.paramTopic(reg),
		Retain:  true,
		Payload: formatParam(raw),
	}
}

// InputFieldMessage builds a single-field streaming publication. value is
// already the JSON-ready Go value (float64, string, etc.) for the field.
func InputFieldMessage(ns Namespace, field string, value any) Message {
	b, err := json.Marshal(value)
	payload := "null"
	if err == nil {
		payload = string(b)
	}
	return Message{
		Topic:   ns.inputFieldTopic(field),
		Retain:  false,
		Payload: payload,
	}
}

// SnapshotMessage builds the full-snapshot publication for window ("1",
// "2", "3" for the partial windows, "all"/"all2" for the two long-form
// reads); snapshot is marshalled as flat JSON so all its fields become
// one payload.
func SnapshotMessage(ns Namespace, window string, snapshot any) Message {
	b, err := json.Marshal(snapshot)
	payload := "{}"
	if err == nil {
		payload = string(b)
	}
	return Message{
		Topic:   ns.inputsTopic(window),
		Retain:  false,
		Payload: payload,
	}
}

// FaultCodeMessage renders the lowest-set-bit label for a 32-bit fault or
// warning mask, or "OK" when no bit is set, as a quoted JSON string.
func FaultCodeMessage(ns Namespace, field string, labels []string) Message {
	text := "OK"
	if len(labels) > 0 {
		text = labels[0]
	}
	return InputFieldMessage(ns, field, text)
}
