// Command luxpower-mqtt-bridge relays LuxPower/EG4 hybrid inverter
// telemetry and commands between the inverter's proprietary TCP protocol
// and MQTT, with optional Home Assistant discovery and InfluxDB metrics.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/config"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/engine"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the bridge's YAML configuration")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Error("configuration error", "error", err)
		return 1
	}

	bridge, err := engine.NewBridge(cfg, log)
	if err != nil {
		log.Error("failed to start bridge", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("bridge exited with error", "error", err)
		return 1
	}

	log.Info("shutdown complete")
	return 0
}
