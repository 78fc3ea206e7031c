package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// runShow prints a config file with secrets masked. Meant for humans and
// bug reports, never as input for the render pipeline.
func runShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	var file, format string
	var verbose bool
	fs.StringVar(&file, "file", "", "path to config file (.yaml, .yml, .json or .h)")
	fs.StringVar(&file, "f", "", "path to config file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
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

	redacted := cfg.Redacted()
	switch format {
	case "yaml":
		out, err := yaml.Marshal(redacted)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		os.Stdout.Write(out)
	case "json":
		out, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(out))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want yaml or json)\n", format)
		return 2
	}
	return 0
}
