package mcp

// ToggleInput is the input for the overview_toggle tool.
type ToggleInput struct{}

// ToggleOutput is the output for the overview_toggle tool.
type ToggleOutput struct {
	State string `json:"state" jsonschema:"Overview state after the toggle was applied"`
}

// SelectInput is the input for the overview_select tool.
type SelectInput struct {
	X int `json:"x" jsonschema:"Column of the viewport to zoom into (0-based)"`
	Y int `json:"y" jsonschema:"Row of the viewport to zoom into (0-based)"`
}

// SelectOutput is the output for the overview_select tool.
type SelectOutput struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	State string `json:"state"`
}

// StatusInput is the input for the overview_status tool.
type StatusInput struct{}

// StatusOutput is the output for the overview_status tool.
type StatusOutput struct {
	State         string  `json:"state"`
	Columns       int     `json:"columns"`
	Rows          int     `json:"rows"`
	ActiveX       int     `json:"active_x"`
	ActiveY       int     `json:"active_y"`
	ReturnX       int     `json:"return_x"`
	ReturnY       int     `json:"return_y"`
	Step          int     `json:"step"`
	MaxSteps      int     `json:"max_steps"`
	Animating     bool    `json:"animating"`
	ScaleX        float64 `json:"scale_x"`
	ScaleY        float64 `json:"scale_y"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}
