package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Config is the effective tileexpo configuration.
type Config struct {
	// DurationMs is the length of one zoom transition.
	DurationMs int `yaml:"duration_ms"`
	// FrameRate is the number of frames drawn per second while animating.
	FrameRate int `yaml:"frame_rate"`

	// Activate toggles the overview (xgbutil key syntax, e.g. "Mod4-e").
	Activate string `yaml:"activate"`
	// ActivateButton optionally toggles the overview from a mouse chord.
	ActivateButton string `yaml:"activate_button"`
	// SelectButton picks the viewport under the pointer while the grid is shown.
	SelectButton string `yaml:"select_button"`
	// MoveButton asks the WM to move the window under the pointer.
	MoveButton string `yaml:"move_button"`

	// FallbackColumns is the grid width when the WM does not publish
	// _NET_DESKTOP_LAYOUT.
	FallbackColumns int `yaml:"fallback_columns"`

	Background  string `yaml:"background"`
	WindowColor string `yaml:"window_color"`
	ActiveColor string `yaml:"active_color"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		DurationMs:      1000,
		FrameRate:       60,
		Activate:        "Mod4-e",
		SelectButton:    "1",
		MoveButton:      "Mod1-1",
		FallbackColumns: 0,
		Background:      "#1e1e2e",
		WindowColor:     "#585b70",
		ActiveColor:     "#89b4fa",
		LogLevel:        "info",
	}
}

// Steps converts the transition duration to a frame count.
func (c *Config) Steps() int {
	if c.DurationMs <= 0 || c.FrameRate <= 0 {
		return 0
	}
	return c.DurationMs * c.FrameRate / 1000
}

// ValidationError points at the offending key.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.DurationMs < 0 {
		return &ValidationError{Path: "duration_ms", Err: fmt.Errorf("duration_ms must be >= 0")}
	}
	if c.FrameRate <= 0 || c.FrameRate > 240 {
		return &ValidationError{Path: "frame_rate", Err: fmt.Errorf("frame_rate must be between 1 and 240")}
	}
	if c.Activate == "" {
		return &ValidationError{Path: "activate", Err: fmt.Errorf("activate is required")}
	}
	if err := ValidateKeyChord(c.Activate); err != nil {
		return &ValidationError{Path: "activate", Err: err}
	}
	if c.ActivateButton != "" {
		if err := ValidateButtonChord(c.ActivateButton); err != nil {
			return &ValidationError{Path: "activate_button", Err: err}
		}
	}
	if c.SelectButton == "" {
		return &ValidationError{Path: "select_button", Err: fmt.Errorf("select_button is required")}
	}
	if err := ValidateButtonChord(c.SelectButton); err != nil {
		return &ValidationError{Path: "select_button", Err: err}
	}
	if c.MoveButton != "" {
		if err := ValidateButtonChord(c.MoveButton); err != nil {
			return &ValidationError{Path: "move_button", Err: err}
		}
		if c.MoveButton == c.SelectButton {
			return &ValidationError{Path: "move_button", Err: fmt.Errorf("move_button must differ from select_button")}
		}
	}
	if c.FallbackColumns < 0 {
		return &ValidationError{Path: "fallback_columns", Err: fmt.Errorf("fallback_columns must be >= 0")}
	}
	for _, color := range []struct{ path, value string }{
		{"background", c.Background},
		{"window_color", c.WindowColor},
		{"active_color", c.ActiveColor},
	} {
		if _, err := ParseColor(color.value); err != nil {
			return &ValidationError{Path: color.path, Err: err}
		}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	return nil
}

var knownModifiers = map[string]struct{}{
	"shift": {}, "lock": {}, "control": {}, "ctrl": {},
	"mod1": {}, "mod2": {}, "mod3": {}, "mod4": {}, "mod5": {}, "any": {},
}

func splitChord(chord string) ([]string, string, error) {
	parts := strings.Split(chord, "-")
	last := parts[len(parts)-1]
	if strings.TrimSpace(last) == "" {
		return nil, "", fmt.Errorf("chord %q has no key", chord)
	}
	mods := parts[:len(parts)-1]
	for _, m := range mods {
		if _, ok := knownModifiers[strings.ToLower(m)]; !ok {
			return nil, "", fmt.Errorf("chord %q: unknown modifier %q", chord, m)
		}
	}
	return mods, last, nil
}

// ValidateKeyChord checks a key chord such as "Mod4-e".
func ValidateKeyChord(chord string) error {
	_, _, err := splitChord(chord)
	return err
}

// ValidateButtonChord checks a button chord such as "Mod1-1".
func ValidateButtonChord(chord string) error {
	_, button, err := splitChord(chord)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(button)
	if err != nil || n < 1 || n > 5 {
		return fmt.Errorf("chord %q: button must be 1-5", chord)
	}
	return nil
}

// ParseColor parses "#rrggbb" into a 0xRRGGBB pixel value.
func ParseColor(s string) (uint32, error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, fmt.Errorf("color %q must be #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}

// ParseLogLevel maps log_level to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
}
