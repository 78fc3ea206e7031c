package mqtt

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/angler-ua/deviceconf/internal/netutil"
)

// Client wraps the MQTT client used to distribute device configuration.
type Client struct {
	client   mqtt.Client
	deviceID string
	logger   *logrus.Logger
}

// Options tunes broker connection behaviour beyond the URL itself.
type Options struct {
	InsecureTLS bool // skip certificate verification (self-signed lab brokers)
}

// NewClient creates and connects an MQTT client. Both WebSocket and
// standard MQTT URL schemes are supported; credentials may be embedded in
// the URL.
func NewClient(mqttURL, deviceID string, opts Options, logger *logrus.Logger) (*Client, error) {
	parsedURL, err := url.Parse(mqttURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %w", err)
	}

	brokerURL, useTLS, err := brokerAddress(mqttURL, parsedURL.Scheme)
	if err != nil {
		return nil, err
	}

	clientID := fmt.Sprintf("deviceconf-%s", deviceID)

	copts := mqtt.NewClientOptions()
	copts.AddBroker(brokerURL)
	copts.SetClientID(clientID)
	copts.SetCleanSession(true)
	copts.SetAutoReconnect(true)
	copts.SetKeepAlive(60 * time.Second)
	copts.SetPingTimeout(1 * time.Second)
	copts.SetConnectTimeout(5 * time.Second)
	copts.SetMaxReconnectInterval(10 * time.Second)

	if useTLS {
		copts.SetTLSConfig(netutil.NewTLSConfig(opts.InsecureTLS, logger))
	}

	if parsedURL.User != nil {
		username := parsedURL.User.Username()
		password, _ := parsedURL.User.Password()
		copts.SetUsername(username)
		copts.SetPassword(password)
	}

	// The retained availability message lets devices distinguish "tool is
	// gone" from "no config change yet".
	copts.SetWill(availabilityTopic(deviceID), "offline", 1, true)

	copts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.WithError(err).Warn("MQTT connection lost")
	})
	copts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		logger.Debug("MQTT reconnecting...")
	})

	firstConnect := true
	copts.SetOnConnectHandler(func(client mqtt.Client) {
		if firstConnect {
			logger.Debug("MQTT connected")
			firstConnect = false
		} else {
			logger.Info("MQTT reconnected")
		}
	})

	client := mqtt.NewClient(copts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.WithFields(logrus.Fields{
		"broker":    cleanURL(mqttURL),
		"protocol":  parsedURL.Scheme,
		"client_id": clientID,
	}).Info("MQTT client connected")

	return &Client{
		client:   client,
		deviceID: deviceID,
		logger:   logger,
	}, nil
}

// brokerAddress maps a user-supplied URL scheme onto the address form paho
// expects and reports whether the connection needs a TLS config.
func brokerAddress(raw, scheme string) (addr string, useTLS bool, err error) {
	switch scheme {
	case "ws":
		return raw, false, nil
	case "wss":
		return raw, true, nil
	case "mqtt":
		return strings.Replace(raw, "mqtt://", "tcp://", 1), false, nil
	case "mqtts":
		return strings.Replace(raw, "mqtts://", "ssl://", 1), true, nil
	default:
		return "", false, fmt.Errorf("unsupported protocol scheme: %s (supported: ws, wss, mqtt, mqtts)", scheme)
	}
}

// Publish publishes a message to the specified topic
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	qos := byte(1) // At least once delivery
	token := c.client.Publish(topic, qos, retained, payload)

	// Avoid potential deadlocks: wait for completion with a timeout instead of indefinitely.
	const pubTimeout = 5 * time.Second
	if !token.WaitTimeout(pubTimeout) {
		return fmt.Errorf("publish to topic %s timed out after %s", topic, pubTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	c.logger.WithFields(logrus.Fields{
		"topic":    topic,
		"size":     len(payload),
		"retained": retained,
	}).Debug("Published MQTT message")

	return nil
}

// IsConnected returns true if the client is connected
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Disconnect disconnects the client
func (c *Client) Disconnect(quiesce uint) {
	c.client.Disconnect(quiesce)
	c.logger.Debug("MQTT client disconnected")
}

// DeviceID returns the device this client distributes config for.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// BaseTopic returns the root of the per-device topic tree.
func (c *Client) BaseTopic() string {
	return baseTopic(c.deviceID)
}

// ConfigTopic returns the retained-config topic for this device.
func (c *Client) ConfigTopic() string {
	return fmt.Sprintf("%s/config", c.BaseTopic())
}

// AvailabilityTopic returns the availability topic for this device.
func (c *Client) AvailabilityTopic() string {
	return availabilityTopic(c.deviceID)
}

// PublishAvailability publishes the tool's availability status (retained).
func (c *Client) PublishAvailability(online bool) error {
	status := "offline"
	if online {
		status = "online"
	}
	return c.Publish(c.AvailabilityTopic(), []byte(status), true)
}

func baseTopic(deviceID string) string {
	return BuildCleanTopic("deviceconf", deviceID)
}

func availabilityTopic(deviceID string) string {
	return fmt.Sprintf("%s/availability", baseTopic(deviceID))
}

// cleanURL removes credentials from URL for logging
func cleanURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword("***", "***")
	}
	return parsed.String()
}

// BuildCleanTopic ensures topic segments follow MQTT standards.
func BuildCleanTopic(parts ...string) string {
	var cleanParts []string
	for _, part := range parts {
		clean := strings.ReplaceAll(part, " ", "_")
		clean = strings.ReplaceAll(clean, "+", "plus")
		clean = strings.ReplaceAll(clean, "#", "hash")
		clean = strings.ToLower(clean)
		cleanParts = append(cleanParts, clean)
	}
	return strings.Join(cleanParts, "/")
}
