package config

// RawConfig mirrors Config with optional fields so a file only overrides the
// keys it sets.
type RawConfig struct {
	DurationMs      *int    `yaml:"duration_ms"`
	FrameRate       *int    `yaml:"frame_rate"`
	Activate        *string `yaml:"activate"`
	ActivateButton  *string `yaml:"activate_button"`
	SelectButton    *string `yaml:"select_button"`
	MoveButton      *string `yaml:"move_button"`
	FallbackColumns *int    `yaml:"fallback_columns"`
	Background      *string `yaml:"background"`
	WindowColor     *string `yaml:"window_color"`
	ActiveColor     *string `yaml:"active_color"`
	LogLevel        *string `yaml:"log_level"`
}

func (r RawConfig) apply(cfg *Config) {
	setInt(&cfg.DurationMs, r.DurationMs)
	setInt(&cfg.FrameRate, r.FrameRate)
	setString(&cfg.Activate, r.Activate)
	setString(&cfg.ActivateButton, r.ActivateButton)
	setString(&cfg.SelectButton, r.SelectButton)
	setString(&cfg.MoveButton, r.MoveButton)
	setInt(&cfg.FallbackColumns, r.FallbackColumns)
	setString(&cfg.Background, r.Background)
	setString(&cfg.WindowColor, r.WindowColor)
	setString(&cfg.ActiveColor, r.ActiveColor)
	setString(&cfg.LogLevel, r.LogLevel)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
