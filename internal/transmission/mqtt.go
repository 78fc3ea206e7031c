package transmission

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/angler-ua/deviceconf/internal/config"
)

// broker is the slice of the MQTT client the transmitter needs. Narrowed
// for testability; the production implementation is internal/mqtt.Client.
type broker interface {
	Publish(topic string, payload []byte, retained bool) error
	ConfigTopic() string
	PublishAvailability(online bool) error
	IsConnected() bool
}

// MQTTTransmitter publishes validated device configuration to the broker.
// The config message is retained so a device that wakes up later still
// receives the latest version.
type MQTTTransmitter struct {
	client   broker
	deviceID string
	logger   *logrus.Logger

	mu   sync.Mutex
	last *config.Config // last successfully published snapshot
}

// configMessage is the wire payload devices consume.
type configMessage struct {
	DeviceID    string         `json:"device_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Config      *config.Config `json:"config"`
}

// NewMQTTTransmitter creates a new MQTT config transmitter.
func NewMQTTTransmitter(client broker, deviceID string, logger *logrus.Logger) *MQTTTransmitter {
	return &MQTTTransmitter{
		client:   client,
		deviceID: deviceID,
		logger:   logger,
	}
}

// Transmit publishes cfg if it differs from the last published snapshot.
// Identical snapshots are skipped so file touches without content changes
// don't wake every device on the fleet.
func (t *MQTTTransmitter) Transmit(cfg *config.Config) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !config.Changed(t.last, cfg) {
		t.logger.Debug("Config unchanged since last publish, skipping")
		return nil
	}

	payload, err := Payload(t.deviceID, cfg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("encode config payload: %w", err)
	}

	if err := t.client.Publish(t.client.ConfigTopic(), payload, true); err != nil {
		// Drop the snapshot so the next Transmit retries even if the
		// config has not changed again.
		t.last = nil
		return fmt.Errorf("publish config: %w", err)
	}

	t.last = cfg.Clone()
	t.logger.WithFields(logrus.Fields{
		"device_id": t.deviceID,
		"topic":     t.client.ConfigTopic(),
		"size":      len(payload),
	}).Info("Published device config")
	return nil
}

// IsConnected reports broker connectivity.
func (t *MQTTTransmitter) IsConnected() bool {
	return t.client.IsConnected()
}

// Online announces tool availability on the retained availability topic.
func (t *MQTTTransmitter) Online() error {
	return t.client.PublishAvailability(true)
}

// Offline retracts availability; called on clean shutdown.
func (t *MQTTTransmitter) Offline() error {
	return t.client.PublishAvailability(false)
}

// Payload builds the JSON message for one config snapshot. Split out of
// Transmit so the wire format can be tested without a broker.
func Payload(deviceID string, cfg *config.Config, at time.Time) ([]byte, error) {
	return json.Marshal(configMessage{
		DeviceID:    deviceID,
		GeneratedAt: at,
		Config:      cfg,
	})
}
