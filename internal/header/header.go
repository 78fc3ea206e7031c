// Package header renders and parses the C configuration header consumed by
// the device firmware build. The header is the on-disk contract with the
// sketch: four string constants, two unsigned long intervals in
// milliseconds and one preprocessor debug toggle, guarded by CONFIG_H.
package header

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/angler-ua/deviceconf/internal/config"
	"github.com/google/renameio/v2"
)

const guard = "CONFIG_H"

// Render emits the header exactly in the shape the firmware expects.
func Render(cfg *config.Config) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "#ifndef %s\n", guard)
	fmt.Fprintf(&b, "#define %s\n\n", guard)

	fmt.Fprintf(&b, "const char* %s = \"%s\";\n", config.KeyWifiSSID, escapeC(cfg.WifiSSID))
	fmt.Fprintf(&b, "const char* %s = \"%s\";\n", config.KeyWifiPassword, escapeC(cfg.WifiPassword))
	fmt.Fprintf(&b, "const char* %s = \"%s\";\n", config.KeyServerURL, escapeC(cfg.ServerURL))
	fmt.Fprintf(&b, "const char* %s = \"%s\";\n\n", config.KeyDeviceToken, escapeC(cfg.DeviceToken))

	fmt.Fprintf(&b, "const unsigned long %s = %d;\n", config.KeyHeartbeatInterval, cfg.HeartbeatIntervalMS)
	fmt.Fprintf(&b, "const unsigned long %s = %d;\n\n", config.KeyWifiTimeout, cfg.WifiTimeoutMS)

	debug := 0
	if cfg.DebugSerial {
		debug = 1
	}
	fmt.Fprintf(&b, "#define %s %d\n\n", config.KeyDebugSerial, debug)

	b.WriteString("#endif\n")
	return b.Bytes()
}

// WriteFile atomically writes the rendered header so a concurrent firmware
// build never reads a torn file.
func WriteFile(path string, cfg *config.Config) error {
	if err := renameio.WriteFile(path, Render(cfg), 0o644); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	return nil
}

var (
	stringRe = regexp.MustCompile(`^const\s+char\s*\*\s*([A-Za-z0-9_]+)\s*=\s*"(.*)"\s*;$`)
	ulongRe  = regexp.MustCompile(`^const\s+unsigned\s+long\s+([A-Za-z0-9_]+)\s*=\s*([0-9]+)\s*;$`)
	defineRe = regexp.MustCompile(`^#define\s+([A-Za-z0-9_]+)(?:\s+(\S+))?$`)
)

// Parse reads a header back into a Config. Every declared constant must
// appear exactly once; duplicates, unknown names and missing constants are
// all errors so drift between tooling and firmware surfaces immediately.
func Parse(data []byte) (*config.Config, error) {
	cfg := &config.Config{}
	seen := make(map[string]bool, len(config.Keys()))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if line == "#ifndef "+guard || line == "#endif" {
			continue
		}

		if m := stringRe.FindStringSubmatch(line); m != nil {
			val, err := unescapeC(m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", lineNo, m[1], err)
			}
			if err := assign(cfg, seen, m[1], val, lineNo); err != nil {
				return nil, err
			}
			continue
		}
		if m := ulongRe.FindStringSubmatch(line); m != nil {
			if err := assign(cfg, seen, m[1], m[2], lineNo); err != nil {
				return nil, err
			}
			continue
		}
		if m := defineRe.FindStringSubmatch(line); m != nil {
			// A bare #define is the include guard; one with a value is a constant.
			if m[2] == "" {
				if m[1] != guard {
					return nil, fmt.Errorf("line %d: unexpected define %q", lineNo, m[1])
				}
				continue
			}
			if err := assign(cfg, seen, m[1], m[2], lineNo); err != nil {
				return nil, err
			}
			continue
		}

		return nil, fmt.Errorf("line %d: unrecognized declaration: %s", lineNo, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan header: %w", err)
	}

	var missing []string
	for _, k := range config.Keys() {
		if !seen[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing constants: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// assign routes one parsed constant into its Config field.
func assign(cfg *config.Config, seen map[string]bool, name, value string, lineNo int) error {
	if !config.KnownKey(name) {
		return fmt.Errorf("line %d: unknown constant %q", lineNo, name)
	}
	if seen[name] {
		return fmt.Errorf("line %d: duplicate declaration of %q", lineNo, name)
	}
	seen[name] = true

	switch name {
	case config.KeyWifiSSID:
		cfg.WifiSSID = value
	case config.KeyWifiPassword:
		cfg.WifiPassword = value
	case config.KeyServerURL:
		cfg.ServerURL = value
	case config.KeyDeviceToken:
		cfg.DeviceToken = value
	case config.KeyHeartbeatInterval, config.KeyWifiTimeout:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", lineNo, name, err)
		}
		if name == config.KeyHeartbeatInterval {
			cfg.HeartbeatIntervalMS = n
		} else {
			cfg.WifiTimeoutMS = n
		}
	case config.KeyDebugSerial:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", lineNo, name, err)
		}
		// C truthiness: any non-zero value enables the toggle.
		cfg.DebugSerial = n != 0
	}
	return nil
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func escapeC(s string) string {
	return escaper.Replace(s)
}

func unescapeC(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("trailing backslash in string literal")
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", fmt.Errorf("unsupported escape sequence \\%c", s[i])
		}
	}
	return b.String(), nil
}
