// Package source builds adaptively refined hyperoctrees from implicit functions and fractals.
package source

import (
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Kinds of producers.
const (
	KindSphere     = "sphere"
	KindPlane      = "plane"
	KindBox        = "box"
	KindMandelbrot = "mandelbrot"
	KindJulia      = "julia"
)

// Config describes a producer.
type Config struct {
	Kind      string     `json:"kind"`
	Dimension int        `json:"dimension"`
	Levels    int        `json:"levels"`
	MinLevels int        `json:"min_levels"`
	Threshold float64    `json:"threshold"`
	Origin    [3]float64 `json:"origin"`
	Size      [3]float64 `json:"size"`
	// Name of the leaf array holding the sampled values.
	Array string `json:"array"`

	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`
	Normal [3]float64 `json:"normal"`
	Min    [3]float64 `json:"min"`
	Max    [3]float64 `json:"max"`

	JuliaC        [2]float64 `json:"julia_c"`
	MaxIterations int        `json:"max_iterations"`
}

// DefaultConfig returns a sphere of radius 0.4 in the unit cube sampled over 5 levels.
func DefaultConfig() Config {
	return Config{
		Kind:          KindSphere,
		Dimension:     3,
		Levels:        5,
		MinLevels:     1,
		Threshold:     0.1,
		Size:          [3]float64{1, 1, 1},
		Array:         "scalars",
		Center:        [3]float64{0.5, 0.5, 0.5},
		Radius:        0.4,
		Normal:        [3]float64{0, 0, 1},
		Max:           [3]float64{1, 1, 1},
		MaxIterations: 100,
	}
}

// ParseConfig reads a json5 document on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	var attributes map[string]interface{}
	if err := json5.Unmarshal(data, &attributes); err != nil {
		return Config{}, errors.Wrap(err, "parsing config")
	}
	cfg := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadConfig reads a json5 config file, see ParseConfig.
func ReadConfig(path string) (Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %q", path)
	}
	return cfg, nil
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if cfg.Dimension < 1 || cfg.Dimension > 3 {
		return errors.Errorf("dimension must be 1, 2 or 3, got %d", cfg.Dimension)
	}
	if cfg.Levels < 1 {
		return errors.Errorf("levels must be positive, got %d", cfg.Levels)
	}
	if cfg.Levels > 21 {
		return errors.Errorf("levels must be at most 21, got %d", cfg.Levels)
	}
	if cfg.MinLevels < 0 || cfg.MinLevels > cfg.Levels {
		return errors.Errorf("min_levels must be in [0, %d], got %d", cfg.Levels, cfg.MinLevels)
	}
	if cfg.Threshold < 0 {
		return errors.Errorf("threshold must not be negative, got %v", cfg.Threshold)
	}
	for d := 0; d < cfg.Dimension; d++ {
		if cfg.Size[d] <= 0 {
			return errors.Errorf("size must be positive along axis %d, got %v", d, cfg.Size[d])
		}
	}
	if cfg.Array == "" {
		return errors.New("array name must not be empty")
	}
	switch cfg.Kind {
	case KindSphere:
		if cfg.Radius <= 0 {
			return errors.Errorf("sphere radius must be positive, got %v", cfg.Radius)
		}
	case KindPlane:
		if vec(cfg.Normal).Norm2() == 0 {
			return errors.New("plane normal must not be zero")
		}
	case KindBox:
		for d := 0; d < 3; d++ {
			if cfg.Min[d] > cfg.Max[d] {
				return errors.Errorf("box min exceeds max along axis %d", d)
			}
		}
	case KindMandelbrot, KindJulia:
		if cfg.Dimension > 2 {
			return errors.Errorf("%s fractals are 1D or 2D, got dimension %d", cfg.Kind, cfg.Dimension)
		}
		if cfg.MaxIterations < 1 {
			return errors.Errorf("max_iterations must be positive, got %d", cfg.MaxIterations)
		}
	default:
		return errors.Errorf("unknown kind %q", cfg.Kind)
	}
	return nil
}

func vec(v [3]float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}
