package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holderConfigV1 = `
wifi_ssid: boathouse
wifi_password: correct-horse
server_url: https://api.angler.com.ua
device_token: tok-8f2a91
heartbeat_interval_ms: 30000
wifi_timeout_ms: 30000
`

const holderConfigV2 = `
wifi_ssid: pier-7
wifi_password: correct-horse
server_url: https://api.angler.com.ua
device_token: tok-8f2a91
heartbeat_interval_ms: 60000
wifi_timeout_ms: 30000
`

func newTestHolder(t *testing.T, notify func(*Config)) (*Holder, string) {
	t.Helper()
	path := writeFile(t, "config.yaml", holderConfigV1)
	initial, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, initial.Validate())
	return NewHolder(initial, path, testLogger(), notify), path
}

func TestHolderReloadSwapsConfig(t *testing.T) {
	var notified []*Config
	h, path := newTestHolder(t, func(c *Config) { notified = append(notified, c) })

	require.NoError(t, os.WriteFile(path, []byte(holderConfigV2), 0o600))
	require.NoError(t, h.Reload())

	cfg := h.Get()
	assert.Equal(t, "pier-7", cfg.WifiSSID)
	assert.Equal(t, 60000, cfg.HeartbeatIntervalMS)

	require.Len(t, notified, 1)
	assert.Equal(t, "pier-7", notified[0].WifiSSID)
}

func TestHolderReloadKeepsOldConfigOnInvalidFile(t *testing.T) {
	h, path := newTestHolder(t, nil)

	require.NoError(t, os.WriteFile(path, []byte("wifi_ssid: ''\n"), 0o600))
	require.Error(t, h.Reload())

	assert.Equal(t, "boathouse", h.Get().WifiSSID)
}

func TestHolderReloadKeepsOldConfigOnParseError(t *testing.T) {
	h, path := newTestHolder(t, nil)

	require.NoError(t, os.WriteFile(path, []byte("{{nope"), 0o600))
	require.Error(t, h.Reload())

	assert.Equal(t, "boathouse", h.Get().WifiSSID)
}

func TestHolderReloadSkipsNotifyWhenUnchanged(t *testing.T) {
	calls := 0
	h, _ := newTestHolder(t, func(*Config) { calls++ })

	require.NoError(t, h.Reload())
	assert.Zero(t, calls)
}

func TestHolderGetReturnsCopy(t *testing.T) {
	h, _ := newTestHolder(t, nil)

	h.Get().WifiSSID = "mutated"
	assert.Equal(t, "boathouse", h.Get().WifiSSID)
}

func TestHolderWatcherReloadsOnWrite(t *testing.T) {
	notified := make(chan *Config, 4)
	h, path := newTestHolder(t, func(c *Config) { notified <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.StartWatcher(ctx))

	// Give the watcher a beat to install before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(holderConfigV2), 0o600))

	select {
	case cfg := <-notified:
		assert.Equal(t, "pier-7", cfg.WifiSSID)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not deliver reloaded config")
	}
}
