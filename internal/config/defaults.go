package config

import "time"

// Central place for application-wide defaults and bounds. Changing a value
// here immediately affects all components that import
// github.com/angler-ua/deviceconf/internal/config.

const (
	// Defaults mirroring the shipped firmware header
	DefaultServerURL           = "https://api.angler.com.ua"
	DefaultHeartbeatIntervalMS = 30000 // 30s between reports
	DefaultWifiTimeoutMS       = 30000 // 30s to get associated

	// Validation bounds for the timing values
	MinIntervalMS          = 1000     // below 1s the device never sleeps
	MaxHeartbeatIntervalMS = 86400000 // one report per day at minimum
	MaxWifiTimeoutMS       = 300000   // 5 min, anything longer just drains the battery

	// Tooling time-outs (to avoid blocking goroutines)
	ReloadDebounce  = 500 * time.Millisecond // coalesce editor write bursts
	ShutdownQuiesce = 250                    // ms handed to paho on disconnect
)

// EnvPrefix is the prefix for all environment overrides (DEVICECONF_WIFI_SSID, ...).
const EnvPrefix = "DEVICECONF_"
