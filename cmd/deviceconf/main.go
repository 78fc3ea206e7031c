package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/angler-ua/deviceconf/internal/config"
	"github.com/angler-ua/deviceconf/internal/header"
)

// version is injected at build time via ldflags
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "validate":
		return runValidate(args[1:])
	case "show":
		return runShow(args[1:])
	case "render":
		return runRender(args[1:])
	case "init":
		return runInit(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "version", "-version", "--version":
		fmt.Printf("deviceconf %s\n", version)
		return 0
	case "help", "-h", "--help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "deviceconf manages Angler device configuration.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  deviceconf <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  validate  Check a config file (.yaml/.json/.h)")
	fmt.Fprintln(os.Stderr, "  show      Print a config with secrets masked")
	fmt.Fprintln(os.Stderr, "  render    Generate the firmware header from a config file")
	fmt.Fprintln(os.Stderr, "  init      Write a starter config file")
	fmt.Fprintln(os.Stderr, "  watch     Watch a config file; re-render and distribute on change")
	fmt.Fprintln(os.Stderr, "  version   Print version")
}

// setupLogger mirrors the device-side log format so fleet and firmware logs
// line up when read side by side.
func setupLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadAny loads a config from YAML, JSON or a firmware header, then
// overlays DEVICECONF_* environment variables.
func loadAny(path string, logger *logrus.Logger) (*config.Config, error) {
	var cfg *config.Config
	if strings.EqualFold(filepath.Ext(path), ".h") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		cfg, err = header.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg, logger); err != nil {
		return nil, err
	}
	return cfg, nil
}
