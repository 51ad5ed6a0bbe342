// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Jwely/mlgen2/critter"
	"github.com/Jwely/mlgen2/evolver"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Physique   PhysiqueConfig   `yaml:"physique"`
	Neural     NeuralConfig     `yaml:"neural"`
	Evolver    evolver.Config   `yaml:"evolver"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world dimensions and plant parameters.
type WorldConfig struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Plants      int     `yaml:"plants"`       // plants spawned per generation
	PlantEnergy float64 `yaml:"plant_energy"` // energy granted by eating one plant
	GrazeRadius float64 `yaml:"graze_radius"` // distance within which a plant is eaten
}

// PopulationConfig holds population and epoch parameters.
type PopulationConfig struct {
	Size               int `yaml:"size"`
	Generations        int `yaml:"generations"`
	StepsPerGeneration int `yaml:"steps_per_generation"`
}

// PhysiqueConfig bounds the uniform draw for generation-0 physiques.
type PhysiqueConfig struct {
	Min critter.Physique `yaml:"min"`
	Max critter.Physique `yaml:"max"`
}

// NeuralConfig holds brain topology parameters. Activations are selected by
// name per layer transform, so len(activations) must be
// len(hidden_layers)+1.
type NeuralConfig struct {
	HiddenLayers []int    `yaml:"hidden_layers"`
	Activations  []string `yaml:"activations"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogEvery int `yaml:"log_every"` // log generation stats every N generations
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Transforms int // number of layer transforms, len(HiddenLayers)+1
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the simulation cannot start from.
func (c *Config) validate() error {
	if c.Population.Size < 2 {
		return fmt.Errorf("population.size %d too small, need at least 2", c.Population.Size)
	}
	if len(c.Neural.Activations) != len(c.Neural.HiddenLayers)+1 {
		return fmt.Errorf("neural: %d activations for %d layer transforms (want len(hidden_layers)+1)",
			len(c.Neural.Activations), len(c.Neural.HiddenLayers)+1)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Transforms = len(c.Neural.HiddenLayers) + 1
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
