// Package config provides configuration loading and management for voxelview.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Accessor parameters controlling the pixel-view transformation
	Accessor struct {
		// Kind selects the accessor applied on every pixel read/write:
		// "acos", "linear" or "identity"
		Kind string `yaml:"kind"`

		// ClampDomain clamps acos input to [-1,1] instead of letting
		// out-of-domain values produce NaN
		ClampDomain bool `yaml:"clampDomain"`

		// Gain and Bias parameterize the linear accessor (v*gain + bias)
		Gain float64 `yaml:"gain"`
		Bias float64 `yaml:"bias"`
	} `yaml:"accessor"`

	// Resample parameters for pushing the volume through a translation
	Resample struct {
		// Enabled turns the resampling stage on
		Enabled bool `yaml:"enabled"`

		// Offset is the translation applied to each output point, in
		// physical units, one component per axis
		Offset []float64 `yaml:"offset"`

		// Interpolation is "nearest" or "linear"
		Interpolation string `yaml:"interpolation"`

		// DefaultValue fills output pixels mapped outside the source
		DefaultValue float64 `yaml:"defaultValue"`

		// NumWorkers bounds the resampling goroutines (0 = all cores)
		NumWorkers int `yaml:"numWorkers"`
	} `yaml:"resample"`

	// Volume parameters describing the input geometry
	Volume struct {
		// SliceGap is the physical distance between consecutive input
		// slices in mm, used as the z spacing of the assembled volume
		SliceGap float64 `yaml:"sliceGap"`
	} `yaml:"volume"`

	// Output parameters
	Output struct {
		// SaveSlices writes slice previews of the adapted volume
		SaveSlices bool `yaml:"saveSlices"`

		// SlicesDir is the directory slice previews are written to
		SlicesDir string `yaml:"slicesDir"`

		// Colormap renders previews in pseudo-color instead of grayscale
		Colormap bool `yaml:"colormap"`

		// PreviewScale is the integer upscaling factor for previews
		PreviewScale int `yaml:"previewScale"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Accessor.Kind = "acos"
	cfg.Accessor.ClampDomain = false
	cfg.Accessor.Gain = 1.0
	cfg.Accessor.Bias = 0.0

	cfg.Resample.Enabled = false
	cfg.Resample.Offset = []float64{0, 0, 0}
	cfg.Resample.Interpolation = "linear"
	cfg.Resample.DefaultValue = 0.0
	cfg.Resample.NumWorkers = runtime.NumCPU()

	cfg.Volume.SliceGap = 1.0

	cfg.Output.SaveSlices = true
	cfg.Output.SlicesDir = "adapted_slices"
	cfg.Output.Colormap = false
	cfg.Output.PreviewScale = 1
	cfg.Output.Verbose = true

	return cfg
}

// Validate checks the configuration for values the pipeline cannot use
func (cfg *Config) Validate() error {
	switch cfg.Accessor.Kind {
	case "acos", "linear", "identity":
	default:
		return fmt.Errorf("unknown accessor kind %q (must be acos, linear or identity)", cfg.Accessor.Kind)
	}
	if cfg.Accessor.Kind == "linear" && cfg.Accessor.Gain == 0 {
		return fmt.Errorf("linear accessor gain must be non-zero")
	}
	switch cfg.Resample.Interpolation {
	case "nearest", "linear":
	default:
		return fmt.Errorf("unknown interpolation %q (must be nearest or linear)", cfg.Resample.Interpolation)
	}
	if cfg.Volume.SliceGap <= 0 {
		return fmt.Errorf("slice gap must be positive, got %g", cfg.Volume.SliceGap)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
