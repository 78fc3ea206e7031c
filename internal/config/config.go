package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the full provisioning configuration for one Angler field
// device. The fields map one-to-one onto the constants the firmware build
// consumes; interval fields are kept in milliseconds because that is the
// unit the device header uses.
type Config struct {
	// Network Configuration
	WifiSSID     string `yaml:"wifi_ssid" json:"wifi_ssid"`         // Target wireless network name
	WifiPassword string `yaml:"wifi_password" json:"wifi_password"` // Target wireless network password (empty = open network)

	// Backend Configuration
	ServerURL   string `yaml:"server_url" json:"server_url"`     // Base URL of the reporting backend
	DeviceToken string `yaml:"device_token" json:"device_token"` // Static credential identifying the device

	// Timing Configuration (milliseconds, firmware units)
	HeartbeatIntervalMS int `yaml:"heartbeat_interval_ms" json:"heartbeat_interval_ms"` // Report interval
	WifiTimeoutMS       int `yaml:"wifi_timeout_ms" json:"wifi_timeout_ms"`             // Upper bound on a connection attempt

	// Diagnostics
	DebugSerial bool `yaml:"debug_serial" json:"debug_serial"` // Compile-time serial logging toggle
}

// Default returns a configuration with sensible defaults. Credentials have
// no sane default and stay empty; Validate rejects the config until they
// are filled in.
func Default() *Config {
	return &Config{
		ServerURL:           DefaultServerURL,
		HeartbeatIntervalMS: DefaultHeartbeatIntervalMS,
		WifiTimeoutMS:       DefaultWifiTimeoutMS,
		DebugSerial:         false,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.WifiSSID == "" {
		return fmt.Errorf("wifi_ssid is required")
	}
	// 802.11 limits SSIDs to 32 octets
	if len(c.WifiSSID) > 32 {
		return fmt.Errorf("wifi_ssid exceeds 32 bytes (%d)", len(c.WifiSSID))
	}
	if isPlaceholder(c.WifiSSID) {
		return fmt.Errorf("wifi_ssid still has the placeholder value %q", c.WifiSSID)
	}

	// Empty password means an open network; otherwise WPA2 passphrase bounds apply.
	if c.WifiPassword != "" {
		if isPlaceholder(c.WifiPassword) {
			return fmt.Errorf("wifi_password still has the placeholder value")
		}
		if len(c.WifiPassword) < 8 || len(c.WifiPassword) > 63 {
			return fmt.Errorf("wifi_password must be 8-63 characters (WPA2 passphrase), got %d", len(c.WifiPassword))
		}
	}

	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url must use http:// or https://, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server_url has no host")
	}

	if c.DeviceToken == "" {
		return fmt.Errorf("device_token is required")
	}
	if isPlaceholder(c.DeviceToken) {
		return fmt.Errorf("device_token still has the placeholder value")
	}

	if c.HeartbeatIntervalMS < MinIntervalMS || c.HeartbeatIntervalMS > MaxHeartbeatIntervalMS {
		return fmt.Errorf("heartbeat_interval_ms must be between %d and %d, got %d",
			MinIntervalMS, MaxHeartbeatIntervalMS, c.HeartbeatIntervalMS)
	}
	if c.WifiTimeoutMS < MinIntervalMS || c.WifiTimeoutMS > MaxWifiTimeoutMS {
		return fmt.Errorf("wifi_timeout_ms must be between %d and %d, got %d",
			MinIntervalMS, MaxWifiTimeoutMS, c.WifiTimeoutMS)
	}

	return nil
}

// HeartbeatInterval returns the heartbeat period as a duration.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMS) * time.Millisecond
}

// WifiTimeout returns the connection attempt bound as a duration.
func (c *Config) WifiTimeout() time.Duration {
	return time.Duration(c.WifiTimeoutMS) * time.Millisecond
}

// Clone returns a copy of the config so callers can mutate freely.
func (c *Config) Clone() *Config {
	dst := *c
	return &dst
}

// isPlaceholder reports whether a value looks like an unedited template
// credential ("YOUR_WIFI_SSID", "YOUR_DEVICE_TOKEN", ...).
func isPlaceholder(v string) bool {
	return strings.HasPrefix(strings.ToUpper(v), "YOUR_")
}
