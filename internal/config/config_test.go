package config

import (
	"path/filepath"
	"testing"

	"github.com/pitmonticone/reach/internal/discretize"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "forward" {
		t.Errorf("expected model forward, got %s", cfg.Model)
	}
	if cfg.Delta <= 0 {
		t.Error("delta should be positive")
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("harmonic", "tight")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.System.X0Lo[0] != 0.99 {
		t.Errorf("expected x0_lo 0.99, got %f", cfg.System.X0Lo[0])
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("harmonic", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "tight")
	if cfg != nil {
		t.Error("expected nil for nonexistent system")
	}
}

func TestListPresets(t *testing.T) {
	// The first name is the default preset for the system, so the order
	// must be deterministic.
	presets := ListPresets("harmonic")
	want := []string{"forced", "tight", "wide"}
	if len(presets) != len(want) {
		t.Fatalf("expected %d presets, got %v", len(want), presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("preset %d: expected %s, got %s", i, want[i], presets[i])
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent system")
	}
}

func TestDefaultPreset(t *testing.T) {
	for _, system := range []string{"harmonic", "damped", "uncertain"} {
		def := DefaultPreset(system)
		if def == "" {
			t.Fatalf("%s: no default preset", system)
		}
		if GetPreset(system, def) == nil {
			t.Errorf("%s: default preset %q does not exist", system, def)
		}
	}
	if DefaultPreset("nonexistent") != "" {
		t.Error("expected empty default for nonexistent system")
	}
}

func TestGetIVP(t *testing.T) {
	cfg := DefaultConfig()
	ivp, err := cfg.GetIVP()
	if err != nil {
		t.Fatal(err)
	}
	if ivp.Dim() != 2 {
		t.Errorf("expected dimension 2, got %d", ivp.Dim())
	}
	if ivp.A == nil || ivp.AI != nil {
		t.Error("expected a point state matrix")
	}
	if ivp.U != nil {
		t.Error("default config is homogeneous")
	}
}

func TestGetIVP_Interval(t *testing.T) {
	cfg := GetPreset("uncertain", "spring")
	ivp, err := cfg.GetIVP()
	if err != nil {
		t.Fatal(err)
	}
	if ivp.AI == nil || ivp.A != nil {
		t.Error("expected an interval state matrix")
	}
	if ivp.Dim() != 2 {
		t.Errorf("expected dimension 2, got %d", ivp.Dim())
	}
}

func TestGetIVP_Controlled(t *testing.T) {
	cfg := GetPreset("harmonic", "forced")
	ivp, err := cfg.GetIVP()
	if err != nil {
		t.Fatal(err)
	}
	if ivp.U == nil {
		t.Fatal("expected an input set")
	}
	if ivp.U.Dim() != 2 {
		t.Errorf("expected input dimension 2, got %d", ivp.U.Dim())
	}
}

func TestGetIVP_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System.Matrix = nil
	if _, err := cfg.GetIVP(); err == nil {
		t.Error("expected an error with no matrix")
	}

	cfg = DefaultConfig()
	cfg.System.Matrix = [][]float64{{0, 1}, {-1}}
	if _, err := cfg.GetIVP(); err == nil {
		t.Error("expected an error for a ragged matrix")
	}
}

func TestGetModel(t *testing.T) {
	cfg := DefaultConfig()
	m, err := cfg.GetModel()
	if err != nil {
		t.Fatal(err)
	}
	if discretize.Name(m) != "forward" {
		t.Errorf("expected forward, got %s", discretize.Name(m))
	}

	cfg.Model = "correctionhull"
	cfg.Order = 6
	m, err = cfg.GetModel()
	if err != nil {
		t.Fatal(err)
	}
	ch, ok := m.(discretize.CorrectionHull)
	if !ok {
		t.Fatalf("expected CorrectionHull, got %T", m)
	}
	if ch.Order != 6 {
		t.Errorf("expected order 6, got %d", ch.Order)
	}

	cfg.Model = "bogus"
	if _, err := cfg.GetModel(); err == nil {
		t.Error("expected an error for an unknown model")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("harmonic", "forced")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Model != cfg.Model || loaded.Delta != cfg.Delta || loaded.Steps != cfg.Steps {
		t.Errorf("round trip changed the config: %+v vs %+v", loaded, cfg)
	}
	if len(loaded.System.ULo) != 2 {
		t.Errorf("round trip dropped the input bounds: %+v", loaded.System)
	}
}
