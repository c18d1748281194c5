// Package metrics forwards decoded telemetry snapshots to a time-series
// backend. The bridge always has a working sink: NoopSink when influx
// is disabled, InfluxSink otherwise.
package metrics

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

// Sink receives one field set per decoded telemetry window.
type Sink interface {
	WriteFields(ctx context.Context, measurement string, datalog serial.Serial, fields map[string]any)
	Close()
}

// NoopSink discards everything; used when influx.enabled is false.
type NoopSink struct{}

func (NoopSink) WriteFields(context.Context, string, serial.Serial, map[string]any) {}
func (NoopSink) Close()                                                            {}

// InfluxSink writes field sets to an InfluxDB v2 bucket using the
// official client's non-blocking write API, for fire-and-forget metrics.
type InfluxSink struct {
	client influxdb2.Client
	writer api.WriteAPI
}

// InfluxConfig names the connection the bridge should publish metrics to.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// NewInfluxSink opens a non-blocking write API against cfg. It does not
// verify connectivity; write errors surface asynchronously on the
// returned WriteAPI's error channel, which the caller may drain via
// Errors().
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	writer := client.WriteAPI(cfg.Org, cfg.Bucket)
	return &InfluxSink{client: client, writer: writer}
}

// Errors exposes the async write-error channel so the caller can log
// failures without blocking the write path.
func (s *InfluxSink) Errors() <-chan error {
	return s.writer.Errors()
}

func (s *InfluxSink) WriteFields(_ context.Context, measurement string, datalog serial.Serial, fields map[string]any) {
	p := influxdb2.NewPoint(
		measurement,
		map[string]string{"datalog": datalog.String()},
		fields,
		time.Now(),
	)
	s.writer.WritePoint(p)
}

func (s *InfluxSink) Close() {
	s.writer.Flush()
	s.client.Close()
}
