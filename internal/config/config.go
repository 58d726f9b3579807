package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCount           = 3500
	DefaultDotSize         = 0.01
	DefaultColor           = "#bcd2ff"
	DefaultRotateSpeed     = 0.6
	DefaultScatterRadius   = 0.35
	DefaultScatterStrength = 0.015
	DefaultDecay           = 0.92
)

// ErrInvalidConfiguration is returned for any rejected configuration value.
var ErrInvalidConfiguration = errors.New("dotglobe: invalid configuration")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s = %v: %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

type Config struct {
	Count       int           `yaml:"count"`
	DotSize     float64       `yaml:"dot_size"`
	Color       string        `yaml:"color"`
	AutoRotate  bool          `yaml:"auto_rotate"`
	RotateSpeed float64       `yaml:"rotate_speed"`
	Scatter     ScatterConfig `yaml:"scatter"`
	Decay       float64       `yaml:"decay"`
	Workers     int           `yaml:"workers"`
	Log         LogConfig     `yaml:"log"`
}

type ScatterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Count:       DefaultCount,
		DotSize:     DefaultDotSize,
		Color:       DefaultColor,
		AutoRotate:  true,
		RotateSpeed: DefaultRotateSpeed,
		Scatter: ScatterConfig{
			Enabled:  true,
			Radius:   DefaultScatterRadius,
			Strength: DefaultScatterStrength,
		},
		Decay:   DefaultDecay,
		Workers: 1,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
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

// Validate rejects values the simulation cannot run with. It never clamps.
func (c *Config) Validate() error {
	if c.Count < 1 {
		return &ValidationError{Field: "count", Value: c.Count, Reason: "must be at least 1"}
	}
	if err := positive("dot_size", c.DotSize); err != nil {
		return err
	}
	if err := ValidateColor(c.Color); err != nil {
		return err
	}
	if err := finite("rotate_speed", c.RotateSpeed); err != nil {
		return err
	}
	if err := c.ValidateLive(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return &ValidationError{Field: "workers", Value: c.Workers, Reason: "must not be negative"}
	}
	return nil
}

// ValidateLive checks only the physics tunables.
func (c *Config) ValidateLive() error {
	if err := positive("scatter.radius", c.Scatter.Radius); err != nil {
		return err
	}
	if err := finite("scatter.strength", c.Scatter.Strength); err != nil {
		return err
	}
	if c.Scatter.Strength < 0 {
		return &ValidationError{Field: "scatter.strength", Value: c.Scatter.Strength, Reason: "must not be negative"}
	}
	return ValidateDecay(c.Decay)
}

// ValidateDecay requires 0 < decay < 1. At 1 nothing relaxes; at or
// below 0 displacements flip sign every step.
func ValidateDecay(d float64) error {
	if math.IsNaN(d) || d <= 0 || d >= 1 {
		return &ValidationError{Field: "decay", Value: d, Reason: "must lie strictly between 0 and 1"}
	}
	return nil
}

func ValidateRadius(r float64) error { return positive("scatter.radius", r) }

func ValidateStrength(s float64) error {
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return &ValidationError{Field: "scatter.strength", Value: s, Reason: "must be a non-negative number"}
	}
	return nil
}

func ValidateColor(hex string) error {
	if _, err := colorful.Hex(hex); err != nil {
		return &ValidationError{Field: "color", Value: hex, Reason: "must be #rrggbb"}
	}
	return nil
}

func positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &ValidationError{Field: field, Value: v, Reason: "must be a positive number"}
	}
	return nil
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Value: v, Reason: "must be finite"}
	}
	return nil
}
