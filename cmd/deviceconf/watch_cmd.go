package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/angler-ua/deviceconf/internal/app"
	"github.com/angler-ua/deviceconf/internal/bus"
	"github.com/angler-ua/deviceconf/internal/config"
	"github.com/angler-ua/deviceconf/internal/mqtt"
	"github.com/angler-ua/deviceconf/internal/transmission"
)

// runWatch runs deviceconf as a daemon: it watches the config file and on
// every validated change re-renders the firmware header and/or publishes
// the config to the fleet broker.
func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var file, renderTo, mqttURL, deviceID string
	var insecureTLS, verbose bool
	fs.StringVar(&file, "file", "", "path to config file (.yaml, .yml or .json)")
	fs.StringVar(&file, "f", "", "path to config file (shorthand)")
	fs.StringVar(&renderTo, "render-to", getEnv("DEVICECONF_RENDER_TO", ""), "header path to keep in sync (empty = off)")
	fs.StringVar(&mqttURL, "mqtt-url", getEnv("DEVICECONF_MQTT_URL", ""), "MQTT broker URL for config distribution (empty = off)")
	fs.StringVar(&deviceID, "device-id", getEnv("DEVICECONF_DEVICE_ID", "esp8266"), "device identifier used in MQTT topics")
	fs.BoolVar(&insecureTLS, "insecure-tls", false, "skip broker certificate verification")
	fs.BoolVar(&verbose, "verbose", getEnv("DEVICECONF_VERBOSE", "false") == "true", "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		return 2
	}
	if renderTo == "" && mqttURL == "" {
		fmt.Fprintln(os.Stderr, "Error: nothing to do; set -render-to and/or -mqtt-url")
		return 2
	}

	logger := setupLogger(verbose)

	cfg, err := loadAny(file, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to load config")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("Config failed validation")
		return 1
	}

	logger.WithFields(logrus.Fields{
		"version":   version,
		"file":      file,
		"render_to": renderTo,
		"heartbeat": cfg.HeartbeatInterval(),
	}).Info("Starting deviceconf watch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("Shutdown signal received")
		cancel()
	}()

	messageBus := bus.New()
	holder := config.NewHolder(cfg, file, logger, messageBus.Publish)

	opts := app.Options{RenderTo: renderTo}
	if mqttURL != "" {
		client, err := mqtt.NewClient(mqttURL, deviceID, mqtt.Options{InsecureTLS: insecureTLS}, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to create MQTT client")
			return 1
		}
		defer client.Disconnect(config.ShutdownQuiesce)

		tx := transmission.NewMQTTTransmitter(client, deviceID, logger)
		if err := tx.Online(); err != nil {
			logger.WithError(err).Warn("Failed to publish availability")
		}
		defer func() {
			if err := tx.Offline(); err != nil {
				logger.WithError(err).Debug("Failed to retract availability")
			}
		}()
		opts.Tx = tx
		logger.Info("MQTT config distribution ready")
	}

	if err := app.Run(ctx, holder, messageBus, opts, logger); err != nil {
		logger.WithError(err).Error("Watch loop failed")
		return 1
	}

	logger.Info("deviceconf stopped")
	return 0
}
