package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/angler-ua/deviceconf/internal/header"
)

// runRender generates the firmware header from a config file. The config
// must validate first; a broken header should never reach a device build.
func runRender(args []string) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var file, out string
	var verbose bool
	fs.StringVar(&file, "file", "", "path to config file (.yaml, .yml or .json)")
	fs.StringVar(&file, "f", "", "path to config file (shorthand)")
	fs.StringVar(&out, "o", "config.h", "output header path ('-' for stdout)")
	fs.BoolVar(&verbose, "verbose", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		return 2
	}

	logger := setupLogger(verbose)

	cfg, err := loadAny(file, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", file, err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation error in %s:\n  %v\n", file, err)
		return 1
	}

	if out == "-" {
		os.Stdout.Write(header.Render(cfg))
		return 0
	}

	if err := header.WriteFile(out, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.WithField("path", out).Info("Rendered device header")
	return 0
}
