package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/renameio/v2"
)

// configTemplate is the starter file written by `deviceconf init`. The
// placeholder credentials intentionally fail validation until edited.
const configTemplate = `# Angler device configuration.
# Edit the credentials, then check with:  deviceconf validate -f config.yaml

wifi_ssid: "YOUR_WIFI_SSID"
wifi_password: "YOUR_WIFI_PASSWORD"

server_url: "https://api.angler.com.ua"
device_token: "YOUR_DEVICE_TOKEN"

# Timings are in milliseconds, the unit the firmware uses.
heartbeat_interval_ms: 30000
wifi_timeout_ms: 30000

debug_serial: false
`

// runInit writes a starter config file.
func runInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	var out string
	var force bool
	fs.StringVar(&out, "o", "config.yaml", "output path")
	fs.BoolVar(&force, "force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !force {
		if _, err := os.Stat(out); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use -force to overwrite)\n", out)
			return 1
		}
	}

	if err := renameio.WriteFile(out, []byte(configTemplate), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote %s\n", out)
	return 0
}
