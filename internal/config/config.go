package config

import (
	"fmt"
	"os"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHeight   = 256
	DefaultWidth    = 256
	DefaultSteps    = 5000
	DefaultContrast = 2.5
	DefaultDrawSkip = 1
	DefaultFPS      = 30
	DefaultColormap = "turbo"
)

type Config struct {
	Height         int            `yaml:"height"`
	Width          int            `yaml:"width"`
	Seed           int64          `yaml:"seed"`
	RandomStrength float64        `yaml:"random_strength"`
	Steps          int            `yaml:"steps"`
	Clamp          bool           `yaml:"clamp"`
	Workers        int            `yaml:"workers"`
	Params         physics.Params `yaml:"params"`
	Display        DisplayConfig  `yaml:"display"`
}

type DisplayConfig struct {
	Contrast float64 `yaml:"contrast"`
	DrawSkip int     `yaml:"draw_skip"`
	FPS      int     `yaml:"fps"`
	Colormap string  `yaml:"colormap"`
}

func DefaultConfig() *Config {
	return &Config{
		Height:         DefaultHeight,
		Width:          DefaultWidth,
		RandomStrength: physics.DefaultRandomStrength,
		Steps:          DefaultSteps,
		Params:         physics.DefaultParams(),
		Display: DisplayConfig{
			Contrast: DefaultContrast,
			DrawSkip: DefaultDrawSkip,
			FPS:      DefaultFPS,
			Colormap: DefaultColormap,
		},
	}
}

// Load overlays the YAML file at path on DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Validate() error {
	if c.Height <= 0 || c.Width <= 0 {
		return fmt.Errorf("%w: %dx%d", dynamo.ErrInvalidDimensions, c.Height, c.Width)
	}
	if c.RandomStrength < 0 || c.RandomStrength > 1 {
		return fmt.Errorf("%w: random_strength %v not in [0, 1]", dynamo.ErrParameterBounds, c.RandomStrength)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps %d", dynamo.ErrParameterBounds, c.Steps)
	}
	if c.Display.DrawSkip < 1 {
		return fmt.Errorf("%w: draw_skip %d", dynamo.ErrParameterBounds, c.Display.DrawSkip)
	}
	if c.Display.Contrast <= 0 {
		return fmt.Errorf("%w: contrast %v", dynamo.ErrParameterBounds, c.Display.Contrast)
	}
	if c.Display.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", dynamo.ErrParameterBounds, c.Display.FPS)
	}
	for name, v := range map[string]float64{"du": c.Params.Du, "dv": c.Params.Dv, "f": c.Params.F, "k": c.Params.K} {
		if err := dynamo.CheckFinite(name, v); err != nil {
			return err
		}
	}
	return nil
}
