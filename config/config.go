// Package config provides configuration management for the Pano tools.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// Default values used when the config file is missing a setting.
const (
	DefaultDistance      = 2.0
	DefaultRotationDeg   = 90.0
	DefaultInterpolation = "cubic"
	DefaultBorder        = "constant"
	DefaultMapCacheSize  = 8
	DefaultOutputDir     = "stereo_output"
	DefaultOutputFormat  = "png"
)

// Config struct to hold all configuration data
type Config struct {
	Distance      float64 `json:"distance"`       // stereographic zoom
	RotationDeg   float64 `json:"rotation_deg"`   // longitudinal rotation in degrees
	Interpolation string  `json:"interpolation"`  // nearest, linear or cubic
	Border        string  `json:"border"`         // constant, replicate or wrap
	Workers       int     `json:"workers"`        // 0 uses every CPU
	MapCacheSize  int     `json:"map_cache_size"` // number of map pairs kept in memory
	OutputDir     string  `json:"output_dir"`
	OutputFormat  string  `json:"output_format"` // png or jpg
	FitWidth      int     `json:"fit_width"`     // 0 keeps the projected size
	FitHeight     int     `json:"fit_height"`
	ParamsDir     string  `json:"params_dir"` // directory of the parameter files
}

var (
	instance *Config
	once     sync.Once
)

// Default returns a Config holding the default values.
func Default() *Config {
	c := &Config{}
	c.setDefaultValues()
	return c
}

// GetConfig returns the singleton instance of Config, loaded from the
// user's config file or defaults when there is none.
func GetConfig() *Config {
	once.Do(func() {
		filename, err := GetFilename()
		if err == nil {
			instance, err = LoadConfig(filename)
		}
		if err != nil {
			log.Printf("Using default config: %v", err)
			instance = Default()
		}
	})
	return instance
}

// GetPath returns the path to the user's config directory
func GetPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName), nil
}

// GetFilename returns the path to the user's config file
func GetFilename() (string, error) {
	dir, err := GetPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadConfig reads filename over a Config holding the defaults, so settings
// missing from the file keep their default value.
func LoadConfig(filename string) (*Config, error) {
	c := Default()
	if err := c.loadFromFile(filename); err != nil {
		return nil, err
	}
	c.fillZeroValues()
	return c, nil
}

// loadFromFile loads configuration from the specified file
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}
	return nil
}

// setDefaultValues sets default values for the configuration
func (c *Config) setDefaultValues() {
	c.Distance = DefaultDistance
	c.RotationDeg = DefaultRotationDeg
	c.Interpolation = DefaultInterpolation
	c.Border = DefaultBorder
	c.Workers = 0
	c.MapCacheSize = DefaultMapCacheSize
	c.OutputDir = DefaultOutputDir
	c.OutputFormat = DefaultOutputFormat
}

// fillZeroValues restores defaults for settings a file explicitly cleared.
func (c *Config) fillZeroValues() {
	if c.Distance <= 0 {
		c.Distance = DefaultDistance
	}
	if c.Interpolation == "" {
		c.Interpolation = DefaultInterpolation
	}
	if c.Border == "" {
		c.Border = DefaultBorder
	}
	if c.MapCacheSize <= 0 {
		c.MapCacheSize = DefaultMapCacheSize
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
}

// RotationRadians returns RotationDeg converted to radians.
func (c *Config) RotationRadians() float64 {
	return c.RotationDeg * math.Pi / 180.0
}

// Save writes the configuration to filename, creating its directory.
func (c *Config) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config data: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
