package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if got := cfg.Steps(); got != 60 {
		t.Fatalf("Steps() = %d, want 60", got)
	}
}

func TestSteps(t *testing.T) {
	tests := []struct {
		duration, rate, want int
	}{
		{1000, 60, 60},
		{250, 60, 15},
		{0, 60, 0},
		{10, 60, 0},
		{500, 144, 72},
	}
	for _, tt := range tests {
		cfg := &Config{DurationMs: tt.duration, FrameRate: tt.rate}
		if got := cfg.Steps(); got != tt.want {
			t.Fatalf("Steps(%d ms @ %d) = %d, want %d", tt.duration, tt.rate, got, tt.want)
		}
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *res.Config != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Activate != "Mod4-e" {
		t.Fatalf("activate = %q", res.Config.Activate)
	}
}

func TestLoadFromPath_OverridesAndSources(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"duration_ms: 300",
		"frame_rate: 30",
		"move_button: \"\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Steps() != 9 {
		t.Fatalf("Steps() = %d, want 9", res.Config.Steps())
	}
	if res.Config.MoveButton != "" {
		t.Fatalf("move_button = %q, want empty", res.Config.MoveButton)
	}

	value, src, err := Explain(res, "frame_rate")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != 30 || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("explain frame_rate = %v from %+v", value, src)
	}
	_, src, err = Explain(res, "activate")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("activate source = %+v, want default", src)
	}
	if _, _, err := Explain(res, "bogus"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	if _, err := LoadFromPath(writeConfig(t, "zoom_speed: 3\n")); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "activate: Mod4-e\nframe_rate: 0\n")
	_, err := LoadFromPath(path)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Path != "frame_rate" || ve.Source.Line != 2 {
		t.Fatalf("unexpected error %+v", ve)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("error %q lacks file position", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative duration", func(c *Config) { c.DurationMs = -1 }, "duration_ms"},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, "frame_rate"},
		{"empty activate", func(c *Config) { c.Activate = "" }, "activate"},
		{"bad modifier", func(c *Config) { c.Activate = "Hyper-e" }, "activate"},
		{"dangling chord", func(c *Config) { c.Activate = "Mod4-" }, "activate"},
		{"bad activate button", func(c *Config) { c.ActivateButton = "Mod4-x" }, "activate_button"},
		{"button out of range", func(c *Config) { c.SelectButton = "9" }, "select_button"},
		{"move equals select", func(c *Config) { c.MoveButton = "1" }, "move_button"},
		{"negative columns", func(c *Config) { c.FallbackColumns = -2 }, "fallback_columns"},
		{"bad color", func(c *Config) { c.ActiveColor = "blue" }, "active_color"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var ve *ValidationError
			if err := cfg.Validate(); !errors.As(err, &ve) || ve.Path != tt.path {
				t.Fatalf("Validate() = %v, want error at %q", err, tt.path)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	got, err := ParseColor("#89b4fa")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if got != 0x89b4fa {
		t.Fatalf("ParseColor = %#x", got)
	}
	if _, err := ParseColor("#12345"); err == nil {
		t.Fatalf("expected short color to fail")
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/tmp/custom.yaml")
	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if got != "/tmp/custom.yaml" {
		t.Fatalf("DefaultConfigPath = %q", got)
	}

	t.Setenv(ConfigPathEnv, "")
	t.Setenv("HOME", "/home/tester")
	got, err = DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if got != "/home/tester/.config/tileexpo/config.yaml" {
		t.Fatalf("DefaultConfigPath = %q", got)
	}
}

func TestMarshal_RoundTripsThroughLoader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationMs = 400
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Config
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != *cfg {
		t.Fatalf("round trip = %+v, want %+v", back, *cfg)
	}
}
