package config

import "strconv"

// Change records a single field difference between two configs. Old and
// New carry display values: secrets are already masked.
type Change struct {
	Field string
	Old   string
	New   string
}

// Changed returns true if cur differs from prev in any field.
func Changed(prev, cur *Config) bool {
	if prev == nil && cur == nil {
		return false
	}
	if prev == nil || cur == nil {
		return true
	}
	return *prev != *cur
}

// Diff compares two configs field by field and returns the changes with
// log-safe values. The explicit comparisons keep secret handling obvious;
// with seven fields a reflective walk buys nothing.
func Diff(old, cur *Config) []Change {
	var changes []Change

	if old.WifiSSID != cur.WifiSSID {
		changes = append(changes, Change{"wifi_ssid", old.WifiSSID, cur.WifiSSID})
	}
	if old.WifiPassword != cur.WifiPassword {
		changes = append(changes, Change{"wifi_password", maskNonEmpty(old.WifiPassword), maskNonEmpty(cur.WifiPassword)})
	}
	if old.ServerURL != cur.ServerURL {
		changes = append(changes, Change{"server_url", MaskURL(old.ServerURL), MaskURL(cur.ServerURL)})
	}
	if old.DeviceToken != cur.DeviceToken {
		changes = append(changes, Change{"device_token", maskNonEmpty(old.DeviceToken), maskNonEmpty(cur.DeviceToken)})
	}
	if old.HeartbeatIntervalMS != cur.HeartbeatIntervalMS {
		changes = append(changes, Change{"heartbeat_interval_ms",
			strconv.Itoa(old.HeartbeatIntervalMS), strconv.Itoa(cur.HeartbeatIntervalMS)})
	}
	if old.WifiTimeoutMS != cur.WifiTimeoutMS {
		changes = append(changes, Change{"wifi_timeout_ms",
			strconv.Itoa(old.WifiTimeoutMS), strconv.Itoa(cur.WifiTimeoutMS)})
	}
	if old.DebugSerial != cur.DebugSerial {
		changes = append(changes, Change{"debug_serial",
			strconv.FormatBool(old.DebugSerial), strconv.FormatBool(cur.DebugSerial)})
	}

	return changes
}

func maskNonEmpty(v string) string {
	if v == "" {
		return ""
	}
	return mask
}
