package main

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Species string  // species the parameter belongs to
	Param   string  // parameter name as accepted by SpeciesParams.Set
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Birth weights and fitness curve shapes stay at their defaults.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Herbivore
			{Name: "herb_F", Species: "Herbivore", Param: "F", Min: 4, Max: 20, Default: 10},
			{Name: "herb_eta", Species: "Herbivore", Param: "eta", Min: 0.01, Max: 0.15, Default: 0.05},
			{Name: "herb_mu", Species: "Herbivore", Param: "mu", Min: 0.05, Max: 0.6, Default: 0.25},
			{Name: "herb_gamma", Species: "Herbivore", Param: "gamma", Min: 0.05, Max: 0.5, Default: 0.2},
			{Name: "herb_omega", Species: "Herbivore", Param: "omega", Min: 0.1, Max: 0.8, Default: 0.4},
			// Carnivore
			{Name: "carn_F", Species: "Carnivore", Param: "F", Min: 20, Max: 80, Default: 50},
			{Name: "carn_eta", Species: "Carnivore", Param: "eta", Min: 0.05, Max: 0.25, Default: 0.125},
			{Name: "carn_mu", Species: "Carnivore", Param: "mu", Min: 0.1, Max: 0.8, Default: 0.4},
			{Name: "carn_gamma", Species: "Carnivore", Param: "gamma", Min: 0.2, Max: 1.2, Default: 0.8},
			{Name: "carn_omega", Species: "Carnivore", Param: "omega", Min: 0.4, Max: 1.2, Default: 0.9},
			{Name: "carn_delta_phi_max", Species: "Carnivore", Param: "DeltaPhiMax", Min: 2, Max: 20, Default: 10},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes the clamped values into the config's species
// overrides, replacing the override maps it touches.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	species := make(map[string]map[string]float64, len(cfg.Species))
	for name, overrides := range cfg.Species {
		species[name] = make(map[string]float64, len(overrides))
		for k, v := range overrides {
			species[name][k] = v
		}
	}
	for i, spec := range pv.Specs {
		if species[spec.Species] == nil {
			species[spec.Species] = make(map[string]float64)
		}
		species[spec.Species][spec.Param] = clamped[i]
	}
	cfg.Species = species
}

// ExtractFromConfig returns the effective value of every parameter: the
// config override if present, the built-in default otherwise.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) ([]float64, error) {
	params, err := cfg.Parameters()
	if err != nil {
		return nil, err
	}
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		s, err := components.ParseSpecies(spec.Species)
		if err != nil {
			return nil, err
		}
		v[i], _ = params.Species(s).Get(spec.Param)
	}
	return v, nil
}
