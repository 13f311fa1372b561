package config

import "sort"

var Presets = map[string]map[string]*Config{
	"harmonic": {
		"tight": {
			Name: "harmonic", Model: "forward", Delta: 0.01, Steps: 628,
			Order: DefaultOrder, MaxOrder: DefaultMaxOrder, Exp: "pade",
			System: SystemConfig{
				Matrix: [][]float64{{0, 1}, {-1, 0}},
				X0Lo:   []float64{0.99, -0.01},
				X0Hi:   []float64{1.01, 0.01},
			},
		},
		"wide": {
			Name: "harmonic", Model: "forward", Delta: 0.02, Steps: 314,
			Order: DefaultOrder, MaxOrder: DefaultMaxOrder, Exp: "pade",
			System: SystemConfig{
				Matrix: [][]float64{{0, 1}, {-1, 0}},
				X0Lo:   []float64{0.8, -0.2},
				X0Hi:   []float64{1.2, 0.2},
			},
		},
		"forced": {
			Name: "harmonic", Model: "forward", Delta: 0.02, Steps: 314,
			Order: DefaultOrder, MaxOrder: DefaultMaxOrder, Exp: "pade",
			System: SystemConfig{
				Matrix: [][]float64{{0, 1}, {-1, 0}},
				X0Lo:   []float64{0.9, -0.1},
				X0Hi:   []float64{1.1, 0.1},
				ULo:    []float64{-0.05, -0.05},
				UHi:    []float64{0.05, 0.05},
			},
		},
	},
	"damped": {
		"settle": {
			Name: "damped", Model: "forward", Delta: 0.02, Steps: 500,
			Order: DefaultOrder, MaxOrder: DefaultMaxOrder, Exp: "pade",
			System: SystemConfig{
				Matrix: [][]float64{{0, 1}, {-1, -0.5}},
				X0Lo:   []float64{0.9, -0.1},
				X0Hi:   []float64{1.1, 0.1},
			},
		},
		"stiff": {
			Name: "damped", Model: "correctionhull", Delta: 0.005, Steps: 400,
			Order: 6, MaxOrder: DefaultMaxOrder, Exp: "pade",
			System: SystemConfig{
				Matrix: [][]float64{{0, 1}, {-10, -2}},
				X0Lo:   []float64{0.95, -0.05},
				X0Hi:   []float64{1.05, 0.05},
			},
		},
	},
	"uncertain": {
		"spring": {
			Name: "uncertain", Model: "correctionhull", Delta: 0.01, Steps: 200,
			Order: 8, MaxOrder: DefaultMaxOrder, Exp: "pade",
			System: SystemConfig{
				MatrixLo: [][]float64{{0, 1}, {-1.05, -0.05}},
				MatrixHi: [][]float64{{0, 1}, {-0.95, 0.05}},
				X0Lo:     []float64{0.99, -0.01},
				X0Hi:     []float64{1.01, 0.01},
			},
		},
		"drift": {
			Name: "uncertain", Model: "forward", Delta: 0.01, Steps: 200,
			Order: DefaultOrder, MaxOrder: DefaultMaxOrder, Exp: "pade",
			System: SystemConfig{
				MatrixLo: [][]float64{{-1.1}},
				MatrixHi: [][]float64{{-0.9}},
				X0Lo:     []float64{0.9},
				X0Hi:     []float64{1.1},
			},
		},
	},
}

// DefaultPresets names the preset used when a system is run without an
// explicit --preset choice.
var DefaultPresets = map[string]string{
	"harmonic":  "tight",
	"damped":    "settle",
	"uncertain": "spring",
}

// DefaultPreset returns the default preset name for a system, or the
// empty string for unknown systems.
func DefaultPreset(system string) string {
	return DefaultPresets[system]
}

func GetPreset(system, preset string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	// Map iteration order is random; the first name doubles as the
	// default preset, so it must be stable.
	sort.Strings(names)
	return names
}
