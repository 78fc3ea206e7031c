package header

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angler-ua/deviceconf/internal/config"
)

func sampleConfig() *config.Config {
	return &config.Config{
		WifiSSID:            "boathouse",
		WifiPassword:        "correct-horse",
		ServerURL:           "https://api.angler.com.ua",
		DeviceToken:         "tok-8f2a91",
		HeartbeatIntervalMS: 30000,
		WifiTimeoutMS:       30000,
		DebugSerial:         true,
	}
}

func TestRenderGolden(t *testing.T) {
	want := `#ifndef CONFIG_H
#define CONFIG_H

const char* WIFI_SSID = "boathouse";
const char* WIFI_PASSWORD = "correct-horse";
const char* SERVER_URL = "https://api.angler.com.ua";
const char* DEVICE_TOKEN = "tok-8f2a91";

const unsigned long HEARTBEAT_INTERVAL = 30000;
const unsigned long WIFI_TIMEOUT = 30000;

#define DEBUG_SERIAL 1

#endif
`
	assert.Equal(t, want, string(Render(sampleConfig())))
}

func TestRenderDebugOff(t *testing.T) {
	cfg := sampleConfig()
	cfg.DebugSerial = false

	assert.Contains(t, string(Render(cfg)), "#define DEBUG_SERIAL 0\n")
}

func TestParseRoundTrip(t *testing.T) {
	cfg := sampleConfig()

	parsed, err := Parse(Render(cfg))
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestParseRoundTripWithEscapes(t *testing.T) {
	cfg := sampleConfig()
	cfg.WifiSSID = `cafe "am see"`
	cfg.WifiPassword = `back\slash	tabbed`

	parsed, err := Parse(Render(cfg))
	require.NoError(t, err)
	assert.Equal(t, cfg.WifiSSID, parsed.WifiSSID)
	assert.Equal(t, cfg.WifiPassword, parsed.WifiPassword)
}

// The shipped firmware template must parse as-is, placeholders included.
func TestParseShippedTemplate(t *testing.T) {
	data := []byte(`#ifndef CONFIG_H
#define CONFIG_H

const char* WIFI_SSID = "YOUR_WIFI_SSID";
const char* WIFI_PASSWORD = "YOUR_WIFI_PASSWORD";
const char* SERVER_URL = "https://api.angler.com.ua";
const char* DEVICE_TOKEN = "YOUR_DEVICE_TOKEN";

const unsigned long HEARTBEAT_INTERVAL = 30000;
const unsigned long WIFI_TIMEOUT = 30000;

#define DEBUG_SERIAL 1

#endif
`)

	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "YOUR_WIFI_SSID", cfg.WifiSSID)
	assert.Equal(t, "https://api.angler.com.ua", cfg.ServerURL)
	assert.Equal(t, 30000, cfg.HeartbeatIntervalMS)
	assert.True(t, cfg.DebugSerial)

	// Placeholders parse fine but must not validate.
	assert.Error(t, cfg.Validate())
}

func TestParseRejectsDuplicate(t *testing.T) {
	data := Render(sampleConfig())
	data = append(data[:len(data)-len("#endif\n")],
		[]byte("const unsigned long WIFI_TIMEOUT = 9000;\n#endif\n")...)

	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate declaration")
	assert.Contains(t, err.Error(), "WIFI_TIMEOUT")
}

func TestParseRejectsMissing(t *testing.T) {
	data := []byte(`#ifndef CONFIG_H
#define CONFIG_H
const char* WIFI_SSID = "boathouse";
#endif
`)

	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing constants")
	assert.Contains(t, err.Error(), "WIFI_PASSWORD")
}

func TestParseRejectsUnknownConstant(t *testing.T) {
	data := Render(sampleConfig())
	data = append(data[:len(data)-len("#endif\n")],
		[]byte("const unsigned long WIFI_CHANNEL = 6;\n#endif\n")...)

	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown constant")
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("int main() { return 0; }\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized declaration")
}

func TestParseSkipsComments(t *testing.T) {
	data := []byte(`#ifndef CONFIG_H
#define CONFIG_H
// network credentials
const char* WIFI_SSID = "boathouse";
const char* WIFI_PASSWORD = "correct-horse";
const char* SERVER_URL = "https://api.angler.com.ua";
const char* DEVICE_TOKEN = "tok-8f2a91";
const unsigned long HEARTBEAT_INTERVAL = 30000;
const unsigned long WIFI_TIMEOUT = 30000;
#define DEBUG_SERIAL 0
#endif
`)

	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.False(t, cfg.DebugSerial)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.h")
	require.NoError(t, WriteFile(path, sampleConfig()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, sampleConfig(), parsed)
}
