// Package config provides configuration loading and access for the planner tools.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all configuration parameters.
type Config struct {
	Map       MapConfig       `yaml:"map"`
	Search    SearchConfig    `yaml:"search"`
	Bench     BenchConfig     `yaml:"bench"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Viewer    ViewerConfig    `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// MapConfig describes the map used by single searches and the viewer.
type MapConfig struct {
	Kind          string  `yaml:"kind"`           // random, cave or clear
	Size          int     `yaml:"size"`           // Side length, power of two
	WallFrequency float64 `yaml:"wall_frequency"` // Wall probability (random) or target fraction (cave)
	NoiseScale    float64 `yaml:"noise_scale"`    // Cave sampling frequency
	Seed          uint64  `yaml:"seed"`
}

// SearchConfig holds planner parameters.
type SearchConfig struct {
	Heuristic       string  `yaml:"heuristic"`        // manhattan, euclidean, chebyshev, zero
	HeuristicWeight float64 `yaml:"heuristic_weight"` // Multiplier on the heuristic
	NodeCapacity    int     `yaml:"node_capacity"`    // Objects per quadtree leaf before splitting
	MaxExpansions   int     `yaml:"max_expansions"`   // 0 = 4 * cells
}

// BenchConfig holds benchmark sweep parameters.
type BenchConfig struct {
	Sizes            []int     `yaml:"sizes"`
	WallFrequencies  []float64 `yaml:"wall_frequencies"`
	Kinds            []string  `yaml:"kinds"`
	Trials           int       `yaml:"trials"`      // Trials per (kind, size, frequency)
	MaxRetries       int       `yaml:"max_retries"` // Regenerations allowed when no path exists
	DiagonalBaseline bool      `yaml:"diagonal_baseline"`
	Seed             uint64    `yaml:"seed"`
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	OutputDir  string `yaml:"output_dir"`
	PerfWindow int    `yaml:"perf_window"` // Samples kept by the perf collector
	ExportPath bool   `yaml:"export_path"` // Write found paths as JSON
}

// ViewerConfig holds display settings for the interactive viewer.
type ViewerConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	TargetFPS      int     `yaml:"target_fps"`
	StepsPerSecond float64 `yaml:"steps_per_second"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells         int // Map.Size squared
	MaxExpansions int // Search.MaxExpansions, or 4 * Cells when unset
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks ranges that the planner and generators would otherwise reject later.
func (c *Config) Validate() error {
	if !isPow2(c.Map.Size) {
		return fmt.Errorf("map.size %d is not a power of two: %w", c.Map.Size, ErrInvalid)
	}
	if c.Map.WallFrequency < 0 || c.Map.WallFrequency > 1 {
		return fmt.Errorf("map.wall_frequency %v outside [0,1]: %w", c.Map.WallFrequency, ErrInvalid)
	}
	if c.Search.NodeCapacity < 1 {
		return fmt.Errorf("search.node_capacity must be at least 1: %w", ErrInvalid)
	}
	if c.Search.HeuristicWeight < 0 {
		return fmt.Errorf("search.heuristic_weight must not be negative: %w", ErrInvalid)
	}
	if c.Search.MaxExpansions < 0 {
		return fmt.Errorf("search.max_expansions must not be negative: %w", ErrInvalid)
	}
	for _, s := range c.Bench.Sizes {
		if !isPow2(s) {
			return fmt.Errorf("bench.sizes: %d is not a power of two: %w", s, ErrInvalid)
		}
	}
	for _, f := range c.Bench.WallFrequencies {
		if f < 0 || f > 1 {
			return fmt.Errorf("bench.wall_frequencies: %v outside [0,1]: %w", f, ErrInvalid)
		}
	}
	if c.Bench.Trials < 1 {
		return fmt.Errorf("bench.trials must be at least 1: %w", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.Map.Size * c.Map.Size
	c.Derived.MaxExpansions = c.Search.MaxExpansions
	if c.Derived.MaxExpansions == 0 {
		c.Derived.MaxExpansions = 4 * c.Derived.Cells
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
