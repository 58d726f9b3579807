package config

import "sort"

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"dense": {
		Count: 12000, DotSize: 0.006, Color: "#9fc3ff", AutoRotate: true, RotateSpeed: 0.4, Decay: DefaultDecay, Workers: 4,
		Scatter: ScatterConfig{Enabled: true, Radius: 0.25, Strength: 0.01},
		Log:     LogConfig{Level: "info", Format: "console"},
	},
	"sparse": {
		Count: 800, DotSize: 0.03, Color: "#ffd1e8", AutoRotate: true, RotateSpeed: 1.2, Decay: DefaultDecay, Workers: 1,
		Scatter: ScatterConfig{Enabled: true, Radius: 0.5, Strength: 0.03},
		Log:     LogConfig{Level: "info", Format: "console"},
	},
	"calm": {
		Count: 3500, DotSize: 0.01, Color: "#bcd2ff", AutoRotate: true, RotateSpeed: 0.2, Decay: 0.8, Workers: 1,
		Scatter: ScatterConfig{Enabled: true, Radius: 0.2, Strength: 0.004},
		Log:     LogConfig{Level: "info", Format: "console"},
	},
	"storm": {
		Count: 6000, DotSize: 0.008, Color: "#ff9b71", AutoRotate: true, RotateSpeed: 3, Decay: 0.97, Workers: 4,
		Scatter: ScatterConfig{Enabled: true, Radius: 0.8, Strength: 0.05},
		Log:     LogConfig{Level: "info", Format: "console"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
