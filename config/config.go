// Package config provides YAML-based configuration for the island simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/biosim/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	Simulation SimulationConfig              `yaml:"simulation"`
	Island     IslandConfig                  `yaml:"island"`
	Population []PlacementConfig             `yaml:"population"`
	Injections []InjectionConfig             `yaml:"injections"`
	Species    map[string]map[string]float64 `yaml:"species"` // species name -> parameter overrides
	Terrain    map[string]map[string]float64 `yaml:"terrain"` // map symbol -> parameter overrides
	Telemetry  TelemetryConfig               `yaml:"telemetry"`
	Optimize   OptimizeConfig                `yaml:"optimize"`

	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig controls the run length and randomness.
type SimulationConfig struct {
	Seed              uint64 `yaml:"seed"`
	Years             int    `yaml:"years"`
	DistributionEvery int    `yaml:"distribution_every"` // years between per-cell snapshots (0 = final year only)
}

// IslandConfig selects the map: a literal map string, or a generated one when
// Generate.Enabled is set.
type IslandConfig struct {
	Map      string         `yaml:"map"`
	Generate GenerateConfig `yaml:"generate"`
}

// GenerateConfig parameterises procedural map generation.
type GenerateConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Rows        int     `yaml:"rows"`
	Cols        int     `yaml:"cols"`
	Seed        int64   `yaml:"seed"`
	Scale       float64 `yaml:"scale"`       // base noise frequency
	Octaves     int     `yaml:"octaves"`     // fBm octaves
	Persistence float64 `yaml:"persistence"` // amplitude multiplier per octave
	Lacunarity  float64 `yaml:"lacunarity"`  // frequency multiplier per octave
	SeaLevel    float64 `yaml:"sea_level"`   // elevation below this is ocean
	DesertLevel float64 `yaml:"desert_level"`
	JungleLevel float64 `yaml:"jungle_level"`
	MountLevel  float64 `yaml:"mount_level"` // elevation above this is mountain
	Moisture    float64 `yaml:"moisture"`    // moisture above this turns savanna to jungle
}

// PlacementConfig puts groups of animals in one cell.
type PlacementConfig struct {
	Loc components.Location `yaml:"loc"`
	Pop []GroupConfig       `yaml:"pop"`
}

// GroupConfig describes Count identical animals. Count 0 means one.
type GroupConfig struct {
	Species string   `yaml:"species"`
	Age     int      `yaml:"age"`
	Weight  *float64 `yaml:"weight,omitempty"`
	Count   int      `yaml:"count,omitempty"`
}

// InjectionConfig adds animals after the given year has been simulated.
type InjectionConfig struct {
	Year       int               `yaml:"year"`
	Population []PlacementConfig `yaml:"population"`
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	OutputDir string `yaml:"output_dir"` // CSV output directory (empty = disabled)
	DBPath    string `yaml:"db_path"`    // SQLite run history (empty = disabled)
	LogStats  bool   `yaml:"log_stats"`  // log one line per year
}

// OptimizeConfig holds defaults for the parameter optimizer.
type OptimizeConfig struct {
	Seeds      int `yaml:"seeds"`      // simulations per evaluation
	Years      int `yaml:"years"`      // years per simulation
	MaxEvals   int `yaml:"max_evals"`  // function evaluation budget
	Population int `yaml:"population"` // CMA-ES population size (0 = default)
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Population []components.Placement         // expanded initial population
	Injections map[int][]components.Placement // year -> expanded placements
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
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten.
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

func (c *Config) validate() error {
	if c.Simulation.Years < 0 {
		return fmt.Errorf("%w: simulation.years must be >= 0", components.ErrConfiguration)
	}
	if c.Simulation.DistributionEvery < 0 {
		return fmt.Errorf("%w: simulation.distribution_every must be >= 0", components.ErrConfiguration)
	}
	if !c.Island.Generate.Enabled && c.Island.Map == "" {
		return fmt.Errorf("%w: island.map is empty and generation is disabled", components.ErrConfiguration)
	}
	if g := c.Island.Generate; g.Enabled && (g.Rows < 3 || g.Cols < 3) {
		return fmt.Errorf("%w: generated map must be at least 3x3, got %dx%d",
			components.ErrConfiguration, g.Rows, g.Cols)
	}
	for i, inj := range c.Injections {
		if inj.Year < 0 {
			return fmt.Errorf("%w: injection %d year must be >= 0", components.ErrConfiguration, i)
		}
	}
	for _, p := range slices.Concat(c.Population, c.injectionPlacements()) {
		for _, g := range p.Pop {
			if g.Count < 0 {
				return fmt.Errorf("%w: %s group at %s has negative count",
					components.ErrConfiguration, g.Species, p.Loc)
			}
		}
	}
	return nil
}

func (c *Config) injectionPlacements() []PlacementConfig {
	var out []PlacementConfig
	for _, inj := range c.Injections {
		out = append(out, inj.Population...)
	}
	return out
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Population = expand(c.Population)
	c.Derived.Injections = make(map[int][]components.Placement, len(c.Injections))
	for _, inj := range c.Injections {
		c.Derived.Injections[inj.Year] = append(c.Derived.Injections[inj.Year], expand(inj.Population)...)
	}
}

func expand(placements []PlacementConfig) []components.Placement {
	out := make([]components.Placement, 0, len(placements))
	for _, p := range placements {
		var pop []components.AnimalSpec
		for _, g := range p.Pop {
			n := max(g.Count, 1)
			for range n {
				pop = append(pop, components.AnimalSpec{Species: g.Species, Age: g.Age, Weight: g.Weight})
			}
		}
		out = append(out, components.Placement{Loc: p.Loc, Pop: pop})
	}
	return out
}

// Parameters returns the default biological parameters with the species and
// terrain overrides applied. Each override set is validated as a whole, so an
// invalid entry leaves that species or terrain at its defaults and is reported.
func (c *Config) Parameters() (*components.Parameters, error) {
	params := components.DefaultParameters()

	for _, name := range sortedKeys(c.Species) {
		s, err := components.ParseSpecies(name)
		if err != nil {
			return nil, fmt.Errorf("species overrides: %w", err)
		}
		if err := params.Species(s).Set(c.Species[name]); err != nil {
			return nil, fmt.Errorf("species overrides: %w", err)
		}
	}
	for _, sym := range sortedKeys(c.Terrain) {
		t, err := components.ParseTerrainSymbol(sym)
		if err != nil {
			return nil, fmt.Errorf("terrain overrides: %w", err)
		}
		if err := params.Terrain(t).Set(c.Terrain[sym]); err != nil {
			return nil, fmt.Errorf("terrain overrides: %w", err)
		}
	}
	return params, nil
}

func sortedKeys(m map[string]map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
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
