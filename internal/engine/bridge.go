package engine

import (
	"context"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/config"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/discovery"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/metrics"
)

// Bridge owns the shared MQTT client and one Session per configured
// inverter; Run drives every session concurrently until ctx is
// cancelled or any session's context-cancellation propagates out.
type Bridge struct {
	cfg      *config.LoadedConfig
	client   mqtt.Client
	sessions []*Session
	log      *slog.Logger
}

// NewBridge connects to the shared MQTT broker, builds one Session per
// configured inverter, subscribes to the command topics, and publishes
// Home Assistant discovery configs when enabled.
func NewBridge(cfg *config.LoadedConfig, log *slog.Logger) (*Bridge, error) {
	var sink metrics.Sink = metrics.NoopSink{}
	if cfg.Influx.Enabled {
		sink = metrics.NewInfluxSink(metrics.InfluxConfig{
			URL:    cfg.Influx.URL,
			Token:  cfg.Influx.Token,
			Org:    cfg.Influx.Org,
			Bucket: cfg.Influx.Bucket,
		})
	}

	b := &Bridge{cfg: cfg, log: log}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port)).
		SetClientID(cfg.MQTT.ClientID).
		SetUsername(cfg.MQTT.Username).
		SetPassword(cfg.MQTT.Password).
		SetWill(cfg.MQTT.Namespace+"/LWT", "offline", 0, true).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			token := c.Publish(cfg.MQTT.Namespace+"/LWT", 0, true, "online")
			token.Wait()
			log.Info("mqtt connected", "broker", cfg.MQTT.Host)
		})

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("engine: connecting to mqtt broker: %w", token.Error())
	}

	for _, invCfg := range cfg.Inverters {
		sess, err := NewSession(invCfg, cfg.MQTT.Namespace, b.client, sink, log)
		if err != nil {
			return nil, err
		}
		b.sessions = append(b.sessions, sess)

		if err := b.subscribeCommands(sess); err != nil {
			return nil, err
		}
		if cfg.MQTT.HomeAssistant.Enabled {
			b.publishDiscovery(sess, invCfg)
		}
	}

	return b, nil
}

func (b *Bridge) subscribeCommands(sess *Session) error {
	topic := fmt.Sprintf("%s/cmd/%s/#", b.cfg.MQTT.Namespace, sess.cfg.Datalog)
	token := b.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		sub := msg.Topic()[len(b.cfg.MQTT.Namespace+"/cmd/"):]
		if err := sess.HandleCommand(sub, msg.Payload()); err != nil {
			b.log.Warn("command rejected", "topic", msg.Topic(), "error", err)
		}
	})
	token.Wait()
	return token.Error()
}

func (b *Bridge) publishDiscovery(sess *Session, invCfg config.InverterConfig) {
	ns := discovery.Namespace{
		MQTTNamespace: b.cfg.MQTT.Namespace,
		HAPrefix:      b.cfg.MQTT.HomeAssistant.Prefix,
		Datalog:       sess.datalog,
		DeviceName:    "LuxPower " + invCfg.Datalog,
	}
	for _, entry := range discovery.Entries {
		payload, err := ns.Payload(entry)
		if err != nil {
			b.log.Warn("discovery payload build failed", "key", entry.Key, "error", err)
			continue
		}
		token := b.client.Publish(ns.Topic(entry), 0, true, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			b.log.Warn("discovery publish failed", "key", entry.Key, "error", err)
		}
	}
}

// Run drives every session concurrently until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sess := range b.sessions {
		sess := sess
		g.Go(func() error { return sess.Run(gctx) })
	}
	err := g.Wait()
	b.client.Disconnect(250)
	return err
}
