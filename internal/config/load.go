package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrUnknownField classifies strict parse failures caused by keys the
// config schema does not declare. Use errors.Is instead of string matching.
var ErrUnknownField = errors.New("unknown config field")

// Load reads a config file on top of the defaults. YAML and JSON are
// parsed strictly: a key outside the declared schema is an error, so a
// typoed field can never silently fall back to its default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := unmarshalYAMLStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := unmarshalJSONStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .json)", ext)
	}
	return cfg, nil
}

func unmarshalYAMLStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %v", ErrUnknownField, err)
		}
		return err
	}
	return nil
}

func unmarshalJSONStrict(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return fmt.Errorf("%w: %v", ErrUnknownField, err)
		}
		return err
	}
	return nil
}

// ApplyEnv overlays DEVICECONF_* environment variables onto cfg.
// Credentials are logged as "set" only, never by value.
func ApplyEnv(cfg *Config, logger *logrus.Logger) error {
	setString := func(key string, dst *string, sensitive bool) {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		*dst = v
		if sensitive {
			logger.WithFields(logrus.Fields{"key": EnvPrefix + key, "sensitive": true}).
				Debug("Environment override applied")
		} else {
			logger.WithFields(logrus.Fields{"key": EnvPrefix + key, "value": v}).
				Debug("Environment override applied")
		}
	}

	setString("WIFI_SSID", &cfg.WifiSSID, false)
	setString("WIFI_PASSWORD", &cfg.WifiPassword, true)
	setString("SERVER_URL", &cfg.ServerURL, false)
	setString("DEVICE_TOKEN", &cfg.DeviceToken, true)

	for _, iv := range []struct {
		key string
		dst *int
	}{
		{"HEARTBEAT_INTERVAL", &cfg.HeartbeatIntervalMS},
		{"WIFI_TIMEOUT", &cfg.WifiTimeoutMS},
	} {
		v, ok := os.LookupEnv(EnvPrefix + iv.key)
		if !ok || v == "" {
			continue
		}
		ms, err := ParseIntervalMS(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, iv.key, err)
		}
		*iv.dst = ms
		logger.WithFields(logrus.Fields{"key": EnvPrefix + iv.key, "ms": ms}).
			Debug("Environment override applied")
	}

	if v, ok := os.LookupEnv(EnvPrefix + "DEBUG_SERIAL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDEBUG_SERIAL: %w", EnvPrefix, err)
		}
		cfg.DebugSerial = b
		logger.WithFields(logrus.Fields{"key": EnvPrefix + "DEBUG_SERIAL", "value": b}).
			Debug("Environment override applied")
	}

	return nil
}

// ParseIntervalMS parses an interval value given either as a Go duration
// string ("30s", "5m") or as a bare integer in milliseconds, the firmware
// unit.
func ParseIntervalMS(s string) (int, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("interval must be positive, got %s", d)
		}
		return int(d / time.Millisecond), nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("interval must be positive, got %d", n)
		}
		return n, nil
	}
	return 0, fmt.Errorf("invalid interval %q (want a duration like 30s or milliseconds)", s)
}
