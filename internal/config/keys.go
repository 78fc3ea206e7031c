package config

// Constant names as they appear in the device header. The firmware build
// breaks if any of these is renamed, so the set is fixed here and both the
// header renderer and parser work from it.
const (
	KeyWifiSSID          = "WIFI_SSID"
	KeyWifiPassword      = "WIFI_PASSWORD"
	KeyServerURL         = "SERVER_URL"
	KeyDeviceToken       = "DEVICE_TOKEN"
	KeyHeartbeatInterval = "HEARTBEAT_INTERVAL"
	KeyWifiTimeout       = "WIFI_TIMEOUT"
	KeyDebugSerial       = "DEBUG_SERIAL"
)

// Keys returns the declared constant names in header order.
func Keys() []string {
	return []string{
		KeyWifiSSID,
		KeyWifiPassword,
		KeyServerURL,
		KeyDeviceToken,
		KeyHeartbeatInterval,
		KeyWifiTimeout,
		KeyDebugSerial,
	}
}

// KnownKey reports whether name is one of the declared constants.
func KnownKey(name string) bool {
	for _, k := range Keys() {
		if k == name {
			return true
		}
	}
	return false
}
