// Package engine drives one TCP session per configured inverter through
// its connect/heartbeat/reconnect lifecycle, wiring the wire codec, the
// input assembler, the MQTT adapter, and the command synthesiser
// together. This is the bridge's top-level runtime loop.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/assembler"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/command"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/config"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/metrics"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/mqttadapter"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/registers"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/wire"
)

// heartbeatIdle is how long a session waits for any frame before it gives
// up on the connection and reconnects.
const heartbeatIdle = 120 * time.Second

// sendQueueCapacity bounds the writer's outbound queue; once full, the
// oldest queued command is dropped to make room for the newest.
const sendQueueCapacity = 16

// Session owns one inverter's TCP lifecycle: Disconnected, Awaiting
// Heartbeat, Connected, Reconnecting.
type Session struct {
	cfg      config.InverterConfig
	datalog  serial.Serial
	inverter serial.Serial

	mqttClient mqtt.Client
	ns         mqttadapter.Namespace
	asm        *assembler.Assembler
	cmd        *command.Synthesiser
	sink       metrics.Sink

	log *slog.Logger

	sendQueue chan wire.Packet
}

// NewSession builds a Session for one configured inverter.
func NewSession(cfg config.InverterConfig, mqttNamespace string, mqttClient mqtt.Client, sink metrics.Sink, log *slog.Logger) (*Session, error) {
	dl, err := serial.Parse([]byte(cfg.Datalog))
	if err != nil {
		return nil, fmt.Errorf("engine: inverter %q: %w", cfg.Datalog, err)
	}

	inv := dl
	if cfg.Serial != "" {
		inv, err = serial.Parse([]byte(cfg.Serial))
		if err != nil {
			return nil, fmt.Errorf("engine: inverter %q: serial: %w", cfg.Datalog, err)
		}
	}

	return &Session{
		cfg:        cfg,
		datalog:    dl,
		inverter:   inv,
		mqttClient: mqttClient,
		ns:         mqttadapter.Namespace{Namespace: mqttNamespace, Datalog: dl},
		asm:        assembler.New(),
		cmd:        command.New(),
		sink:       sink,
		log:        log.With("datalog", cfg.Datalog),
		sendQueue:  make(chan wire.Packet, sendQueueCapacity),
	}, nil
}

// Run drives the session until ctx is cancelled, reconnecting with
// exponential backoff (capped at 60s) whenever the connection drops.
func (s *Session) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0
	bo.MaxInterval = 60 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := bo.NextBackOff()
		s.log.Warn("session disconnected, reconnecting", "error", err, "backoff", wait)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) runOnce(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("engine: dial %s: %w", addr, err)
	}

	wc := wire.NewConn(conn, s.log, heartbeatIdle)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return wc.Run(gctx) })
	g.Go(func() error { return s.pump(gctx, wc) })

	return g.Wait()
}

// pump is the session's main loop: it reads decoded packets, routes them
// to the assembler/MQTT adapter/command synthesiser, and drains the
// session's bounded send queue into the connection's writer.
func (s *Session) pump(ctx context.Context, wc *wire.Conn) error {
	idle := time.NewTimer(heartbeatIdle)
	defer idle.Stop()

	first := true

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-idle.C:
			return fmt.Errorf("engine: no frames received within %s", heartbeatIdle)

		case pkt, ok := <-wc.Incoming:
			if !ok {
				return fmt.Errorf("engine: connection closed")
			}
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(heartbeatIdle)

			if first {
				first = false
				if _, isHeartbeat := pkt.(*wire.Heartbeat); !isHeartbeat {
					return fmt.Errorf("engine: expected heartbeat as first frame, got %T", pkt)
				}
				continue
			}
			s.handleIncoming(pkt, wc)

		case pkt := <-s.sendQueue:
			s.forward(ctx, wc, pkt)
		}
	}
}

// Enqueue queues an outbound packet for this session's connection,
// dropping the oldest queued packet first if the queue is full.
func (s *Session) Enqueue(pkt wire.Packet) {
	select {
	case s.sendQueue <- pkt:
		return
	default:
	}

	select {
	case dropped := <-s.sendQueue:
		s.log.Warn("send queue full, dropping oldest command", "dropped_type", fmt.Sprintf("%T", dropped))
	default:
	}
	select {
	case s.sendQueue <- pkt:
	default:
		s.log.Warn("send queue still full after drop, discarding newest command")
	}
}

func (s *Session) forward(ctx context.Context, wc *wire.Conn, pkt wire.Packet) {
	select {
	case wc.Send <- pkt:
	case <-ctx.Done():
	}
}

func (s *Session) handleIncoming(pkt wire.Packet, wc *wire.Conn) {
	switch p := pkt.(type) {
	case *wire.Heartbeat:
		// keepalive only, idle timer already reset by pump.

	case *wire.TranslatedData:
		s.handleTranslatedData(p, wc)

	case *wire.ReadParam:
		for _, pair := range p.Pairs() {
			s.publish(mqttadapter.ParamMessage(s.ns, pair.Register, pair.Value))
		}

	case *wire.WriteParam:
		s.log.Debug("write-param acknowledged", "register", p.Register())
	}
}

func (s *Session) handleTranslatedData(p *wire.TranslatedData, wc *wire.Conn) {
	switch p.DeviceFunction() {
	case wire.DeviceFunctionReadHold:
		for _, pair := range p.Pairs() {
			for _, msg := range mqttadapter.HoldMessages(s.ns, registers.Register(pair.Register), pair.Value) {
				s.publish(msg)
			}
		}
		if next, ok := s.cmd.ReplyReadHold(p); ok {
			s.forward(context.Background(), wc, next)
		}

	case wire.DeviceFunctionReadInput:
		result, err := s.asm.Feed(p)
		if err != nil {
			s.log.Debug("unhandled read-input window", "error", err)
			return
		}
		s.publishResult(result)

	case wire.DeviceFunctionWriteSingle, wire.DeviceFunctionWriteMulti:
		s.log.Debug("write acknowledged", "register", p.Register())
	}
}

func (s *Session) publishResult(result assembler.Result) {
	ctx := context.Background()
	switch {
	case result.Status != nil:
		s.publish(mqttadapter.InputFieldMessage(s.ns, "status", registers.StatusString(*result.Status)))
		s.sink.WriteFields(ctx, "lxp_input_status", s.datalog, map[string]any{"status": *result.Status})

	case result.FaultCode != nil:
		s.publish(mqttadapter.FaultCodeMessage(s.ns, "fault_code", registers.FaultCodeStrings(*result.FaultCode)))
		s.sink.WriteFields(ctx, "lxp_input_fault_code", s.datalog, map[string]any{"fault_code": *result.FaultCode})

	case result.WarningCode != nil:
		s.publish(mqttadapter.FaultCodeMessage(s.ns, "warning_code", registers.WarningCodeStrings(*result.WarningCode)))
		s.sink.WriteFields(ctx, "lxp_input_warning_code", s.datalog, map[string]any{"warning_code": *result.WarningCode})

	case result.One != nil:
		s.publish(mqttadapter.SnapshotMessage(s.ns, "1", result.One))
		s.sink.WriteFields(ctx, "lxp_input_1", s.datalog, snapshotFields(result.One))

	case result.Two != nil:
		s.publish(mqttadapter.SnapshotMessage(s.ns, "2", result.Two))
		s.publish(mqttadapter.InputFieldMessage(s.ns, "register_71", registers.DecodeRegister71(result.Two.Register71)))
		s.publish(mqttadapter.InputFieldMessage(s.ns, "register_77", registers.DecodeRegister77(result.Two.Register77)))
		s.sink.WriteFields(ctx, "lxp_input_2", s.datalog, snapshotFields(result.Two))

	case result.Three != nil:
		s.publish(mqttadapter.SnapshotMessage(s.ns, "3", result.Three))
		s.publish(mqttadapter.InputFieldMessage(s.ns, "max_chg_curr", result.Three.MaxChgCurr))
		s.publish(mqttadapter.InputFieldMessage(s.ns, "max_dischg_curr", result.Three.MaxDischgCurr))
		s.publish(mqttadapter.InputFieldMessage(s.ns, "register_113", registers.DecodeRegister113(result.Three.Register113)))
		s.sink.WriteFields(ctx, "lxp_input_3", s.datalog, snapshotFields(result.Three))
	}

	if result.All != nil {
		s.publish(mqttadapter.SnapshotMessage(s.ns, "all", result.All))
		s.sink.WriteFields(ctx, "lxp_input_all", s.datalog, snapshotFields(result.All))
	}
	if result.All2 != nil {
		s.publish(mqttadapter.SnapshotMessage(s.ns, "all2", result.All2))
		s.sink.WriteFields(ctx, "lxp_input_all2", s.datalog, snapshotFields(result.All2))
	}
}

// snapshotFields flattens a telemetry snapshot into an Influx field map by
// round-tripping it through its own JSON tags, so the field names always
// match the values the same snapshot publishes over MQTT.
func snapshotFields(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}
	return fields
}

func (s *Session) publish(msg mqttadapter.Message) {
	token := s.mqttClient.Publish(msg.Topic, 0, msg.Retain, msg.Payload)
	token.Wait()
	if err := token.Error(); err != nil {
		s.log.Warn("mqtt publish failed", "topic", msg.Topic, "error", err)
	}
}

// HandleCommand parses one inbound command topic/payload pair and queues
// the resulting packet for the next write cycle.
func (s *Session) HandleCommand(topic string, payload []byte) error {
	pkt, err := s.cmd.Handle(s.inverter, topic, payload)
	if err != nil {
		return err
	}
	s.Enqueue(pkt)
	return nil
}
