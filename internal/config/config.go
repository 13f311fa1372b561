package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/pitmonticone/reach/internal/discretize"
	"github.com/pitmonticone/reach/internal/expm"
	"github.com/pitmonticone/reach/internal/geo"
	"github.com/pitmonticone/reach/internal/interval"
)

const (
	DefaultDelta    = 0.01
	DefaultSteps    = 100
	DefaultModel    = "forward"
	DefaultOrder    = 10
	DefaultMaxOrder = 10.0
)

type Config struct {
	Name  string  `yaml:"name"`
	Model string  `yaml:"model"`
	Delta float64 `yaml:"delta"`
	Steps int     `yaml:"steps"`

	// Order is the truncation order for interval series (correctionhull
	// and interval-matrix runs); MaxOrder caps the zonotope order during
	// propagation; Split controls initial-set bisection for ensemble runs.
	Order    int     `yaml:"order"`
	MaxOrder float64 `yaml:"max_order"`
	Split    int     `yaml:"split"`
	Exp      string  `yaml:"exp"`

	// SetOp picks the set-operation mode (lazy, concrete, interval);
	// Target picks what concrete evaluation produces (zonotope, box).
	SetOp  string `yaml:"setop"`
	Target string `yaml:"target"`

	System SystemConfig `yaml:"system"`
}

type SystemConfig struct {
	// Matrix is the point state matrix, row by row. For an uncertain
	// matrix set MatrixLo and MatrixHi instead and leave Matrix empty.
	Matrix   [][]float64 `yaml:"matrix"`
	MatrixLo [][]float64 `yaml:"matrix_lo"`
	MatrixHi [][]float64 `yaml:"matrix_hi"`

	X0Lo []float64 `yaml:"x0_lo"`
	X0Hi []float64 `yaml:"x0_hi"`

	// Input bounds; both empty for a homogeneous system.
	ULo []float64 `yaml:"u_lo"`
	UHi []float64 `yaml:"u_hi"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "harmonic",
		Model:    DefaultModel,
		Delta:    DefaultDelta,
		Steps:    DefaultSteps,
		Order:    DefaultOrder,
		MaxOrder: DefaultMaxOrder,
		Exp:      "pade",
		System: SystemConfig{
			Matrix: [][]float64{{0, 1}, {-1, 0}},
			X0Lo:   []float64{0.9, -0.1},
			X0Hi:   []float64{1.1, 0.1},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetIVP builds the continuous problem described by the system section.
func (c *Config) GetIVP() (*discretize.ContinuousIVP, error) {
	if len(c.System.X0Lo) == 0 || len(c.System.X0Lo) != len(c.System.X0Hi) {
		return nil, fmt.Errorf("config: x0_lo and x0_hi must be set and of equal length")
	}
	x0 := geo.FromBounds(c.System.X0Lo, c.System.X0Hi)

	var u geo.Set
	if len(c.System.ULo) > 0 {
		if len(c.System.ULo) != len(c.System.UHi) {
			return nil, fmt.Errorf("config: u_lo and u_hi lengths differ")
		}
		u = geo.FromBounds(c.System.ULo, c.System.UHi)
	}

	if len(c.System.Matrix) > 0 {
		a, err := denseFromRows(c.System.Matrix)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return discretize.NewLinearControlled(a, x0, u), nil
		}
		return discretize.NewLinear(a, x0), nil
	}

	if len(c.System.MatrixLo) == 0 {
		return nil, fmt.Errorf("config: either matrix or matrix_lo/matrix_hi must be set")
	}
	lo, err := denseFromRows(c.System.MatrixLo)
	if err != nil {
		return nil, err
	}
	hi, err := denseFromRows(c.System.MatrixHi)
	if err != nil {
		return nil, err
	}
	ai, err := interval.FromBounds(lo, hi)
	if err != nil {
		return nil, err
	}
	ivp := discretize.NewIntervalLinear(ai, x0)
	ivp.U = u
	return ivp, nil
}

// GetModel resolves the model name, exponential method, set-operation
// mode, and concretization target.
func (c *Config) GetModel() (discretize.Model, error) {
	m, err := discretize.ParseModel(c.Model, c.Order)
	if err != nil {
		return nil, err
	}
	method, err := expm.ParseMethod(c.Exp)
	if err != nil {
		return nil, err
	}
	setOp, err := discretize.ParseSetOp(c.SetOp)
	if err != nil {
		return nil, err
	}
	target, err := discretize.ParseTarget(c.Target)
	if err != nil {
		return nil, err
	}
	opts := discretize.Options{Exp: method, SetOp: setOp, Target: target}
	switch v := m.(type) {
	case discretize.Forward:
		v.Opts = opts
		return v, nil
	case discretize.Backward:
		v.Opts = opts
		return v, nil
	case discretize.NoBloating:
		v.Opts = opts
		return v, nil
	case discretize.CorrectionHull:
		v.Opts = opts
		return v, nil
	default:
		return m, nil
	}
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	r := len(rows)
	if r == 0 {
		return nil, fmt.Errorf("config: empty matrix")
	}
	c := len(rows[0])
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("config: matrix row %d has %d entries, expected %d", i, len(row), c)
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}
