package main

import (
	"flag"
	"fmt"
	"os"
)

// runValidate checks a config file.
//
// Exit codes:
//   - 0: configuration is valid
//   - 1: configuration is invalid (parse or validation error)
//   - 2: usage error
func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	var file string
	var verbose bool
	fs.StringVar(&file, "file", "", "path to config file (.yaml, .yml, .json or .h)")
	fs.StringVar(&file, "f", "", "path to config file (shorthand)")
	fs.BoolVar(&verbose, "verbose", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  deviceconf validate -f config.yaml")
		return 2
	}

	logger := setupLogger(verbose)

	cfg, err := loadAny(file, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n", file)
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation error in %s:\n", file)
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return 1
	}

	fmt.Printf("✓ %s is valid\n", file)
	return 0
}
