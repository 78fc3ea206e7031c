package transmission

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angler-ua/deviceconf/internal/config"
)

type fakeBroker struct {
	published []publishCall
	failNext  bool
	connected bool
}

type publishCall struct {
	topic    string
	payload  []byte
	retained bool
}

func (f *fakeBroker) Publish(topic string, payload []byte, retained bool) error {
	if f.failNext {
		f.failNext = false
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, publishCall{topic, payload, retained})
	return nil
}

func (f *fakeBroker) ConfigTopic() string               { return "deviceconf/esp8266/config" }
func (f *fakeBroker) PublishAvailability(ok bool) error { return nil }
func (f *fakeBroker) IsConnected() bool                 { return f.connected }

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func deviceConfig() *config.Config {
	cfg := config.Default()
	cfg.WifiSSID = "boathouse"
	cfg.WifiPassword = "correct-horse"
	cfg.DeviceToken = "tok-8f2a91"
	return cfg
}

func TestTransmitPublishesRetainedConfig(t *testing.T) {
	broker := &fakeBroker{}
	tx := NewMQTTTransmitter(broker, "esp8266", testLogger())

	require.NoError(t, tx.Transmit(deviceConfig()))

	require.Len(t, broker.published, 1)
	call := broker.published[0]
	assert.Equal(t, "deviceconf/esp8266/config", call.topic)
	assert.True(t, call.retained, "config must be retained for sleeping devices")

	var msg configMessage
	require.NoError(t, json.Unmarshal(call.payload, &msg))
	assert.Equal(t, "esp8266", msg.DeviceID)
	assert.Equal(t, "boathouse", msg.Config.WifiSSID)
	assert.Equal(t, "correct-horse", msg.Config.WifiPassword)
	assert.Equal(t, 30000, msg.Config.HeartbeatIntervalMS)
}

func TestTransmitSkipsUnchangedConfig(t *testing.T) {
	broker := &fakeBroker{}
	tx := NewMQTTTransmitter(broker, "esp8266", testLogger())

	require.NoError(t, tx.Transmit(deviceConfig()))
	require.NoError(t, tx.Transmit(deviceConfig()))

	assert.Len(t, broker.published, 1)
}

func TestTransmitPublishesChangedConfig(t *testing.T) {
	broker := &fakeBroker{}
	tx := NewMQTTTransmitter(broker, "esp8266", testLogger())

	require.NoError(t, tx.Transmit(deviceConfig()))

	changed := deviceConfig()
	changed.HeartbeatIntervalMS = 60000
	require.NoError(t, tx.Transmit(changed))

	assert.Len(t, broker.published, 2)
}

func TestTransmitRetriesAfterPublishFailure(t *testing.T) {
	broker := &fakeBroker{failNext: true}
	tx := NewMQTTTransmitter(broker, "esp8266", testLogger())

	require.Error(t, tx.Transmit(deviceConfig()))

	// Same snapshot again: the failed attempt must not count as published.
	require.NoError(t, tx.Transmit(deviceConfig()))
	assert.Len(t, broker.published, 1)
}

func TestPayloadShape(t *testing.T) {
	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	payload, err := Payload("esp8266", deviceConfig(), at)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Contains(t, raw, "device_id")
	assert.Contains(t, raw, "generated_at")
	assert.Contains(t, raw, "config")
}

func TestIsConnected(t *testing.T) {
	tx := NewMQTTTransmitter(&fakeBroker{connected: true}, "esp8266", testLogger())
	assert.True(t, tx.IsConnected())
}
