package components

import (
	"fmt"
	"math"
	"sort"
)

// Species identifies one of the two animal species on the island.
type Species uint8

const (
	Herbivore Species = iota
	Carnivore

	NumSpecies = 2
)

var speciesNames = [NumSpecies]string{
	Herbivore: "Herbivore",
	Carnivore: "Carnivore",
}

// String returns the species name used in population descriptions.
func (s Species) String() string {
	if int(s) < len(speciesNames) {
		return speciesNames[s]
	}
	return fmt.Sprintf("Species(%d)", uint8(s))
}

// ParseSpecies maps a species name ("Herbivore", "Carnivore") to its Species.
func ParseSpecies(name string) (Species, error) {
	for i, n := range speciesNames {
		if n == name {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown species %q", ErrValidation, name)
}

// SpeciesParams holds the biological constants shared by every animal of one
// species. Animals keep a pointer to their species' record, so an update is
// seen by the whole population at once.
type SpeciesParams struct {
	WBirth      float64 `yaml:"w_birth"`     // mean birth weight
	SigmaBirth  float64 `yaml:"sigma_birth"` // birth weight standard deviation
	Beta        float64 `yaml:"beta"`        // weight gained per unit eaten
	Eta         float64 `yaml:"eta"`         // yearly weight loss fraction, 0..1
	AHalf       float64 `yaml:"a_half"`
	PhiAge      float64 `yaml:"phi_age"`
	WHalf       float64 `yaml:"w_half"`
	PhiWeight   float64 `yaml:"phi_weight"`
	Mu          float64 `yaml:"mu"`          // migration probability scale
	Lambda      float64 `yaml:"lambda"`      // propensity exponent scale
	Gamma       float64 `yaml:"gamma"`       // birth probability scale
	Zeta        float64 `yaml:"zeta"`        // birth weight threshold scale
	Xi          float64 `yaml:"xi"`          // parent weight lost per unit offspring weight
	Omega       float64 `yaml:"omega"`       // death probability scale
	F           float64 `yaml:"F"`           // appetite
	DeltaPhiMax float64 `yaml:"DeltaPhiMax"` // carnivores only

	species Species
}

// DefaultHerbivoreParams returns the standard herbivore parameter set.
func DefaultHerbivoreParams() SpeciesParams {
	return SpeciesParams{
		WBirth:     8.0,
		SigmaBirth: 1.5,
		Beta:       0.9,
		Eta:        0.05,
		AHalf:      40.0,
		PhiAge:     0.2,
		WHalf:      10.0,
		PhiWeight:  0.1,
		Mu:         0.25,
		Lambda:     1.0,
		Gamma:      0.2,
		Zeta:       3.5,
		Xi:         1.2,
		Omega:      0.4,
		F:          10.0,
		species:    Herbivore,
	}
}

// DefaultCarnivoreParams returns the standard carnivore parameter set.
func DefaultCarnivoreParams() SpeciesParams {
	return SpeciesParams{
		WBirth:      6.0,
		SigmaBirth:  1.0,
		Beta:        0.75,
		Eta:         0.125,
		AHalf:       60.0,
		PhiAge:      0.4,
		WHalf:       4.0,
		PhiWeight:   0.4,
		Mu:          0.4,
		Lambda:      1.0,
		Gamma:       0.8,
		Zeta:        3.5,
		Xi:          1.1,
		Omega:       0.9,
		F:           50.0,
		DeltaPhiMax: 10.0,
		species:     Carnivore,
	}
}

// Species returns the species this parameter set belongs to.
func (p *SpeciesParams) Species() Species {
	return p.species
}

// paramField binds a parameter name to its storage and range check.
type paramField struct {
	name  string
	ptr   *float64
	check func(float64) error
}

func nonNegative(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("must be a finite value >= 0, got %v", v)
	}
	return nil
}

func unitInterval(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("must be in [0, 1], got %v", v)
	}
	return nil
}

func strictlyPositive(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("must be a finite value > 0, got %v", v)
	}
	return nil
}

func (p *SpeciesParams) fields() []paramField {
	fields := []paramField{
		{"w_birth", &p.WBirth, nonNegative},
		{"sigma_birth", &p.SigmaBirth, nonNegative},
		{"beta", &p.Beta, nonNegative},
		{"eta", &p.Eta, unitInterval},
		{"a_half", &p.AHalf, nonNegative},
		{"phi_age", &p.PhiAge, nonNegative},
		{"w_half", &p.WHalf, nonNegative},
		{"phi_weight", &p.PhiWeight, nonNegative},
		{"mu", &p.Mu, nonNegative},
		{"lambda", &p.Lambda, nonNegative},
		{"gamma", &p.Gamma, nonNegative},
		{"zeta", &p.Zeta, nonNegative},
		{"xi", &p.Xi, nonNegative},
		{"omega", &p.Omega, nonNegative},
		{"F", &p.F, nonNegative},
	}
	if p.species == Carnivore {
		fields = append(fields, paramField{"DeltaPhiMax", &p.DeltaPhiMax, strictlyPositive})
	}
	return fields
}

// Names lists the parameter names accepted by Set for this species.
func (p *SpeciesParams) Names() []string {
	return fieldNames(p.fields())
}

// Get returns the value of the named parameter.
func (p *SpeciesParams) Get(name string) (float64, bool) {
	for _, f := range p.fields() {
		if f.name == name {
			return *f.ptr, true
		}
	}
	return 0, false
}

// Set updates the named parameters. Every name and value is checked before
// anything is written, so a failing call leaves the set untouched.
func (p *SpeciesParams) Set(values map[string]float64) error {
	return setFields(p.species.String(), p.fields(), values)
}

// Validate checks the current values against the same rules Set enforces.
func (p *SpeciesParams) Validate() error {
	return validateFields(p.species.String(), p.fields())
}

func fieldNames(fields []paramField) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

func setFields(target string, fields []paramField, values map[string]float64) error {
	byName := make(map[string]paramField, len(fields))
	for _, f := range fields {
		byName[f.name] = f
	}

	// Sorted so the reported error does not depend on map order.
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return newUnknownParameter(target, name, fieldNames(fields))
		}
		if err := f.check(values[name]); err != nil {
			return fmt.Errorf("%w: %s %s %v", ErrValidation, target, name, err)
		}
	}

	for _, name := range names {
		*byName[name].ptr = values[name]
	}
	return nil
}

func validateFields(target string, fields []paramField) error {
	for _, f := range fields {
		if err := f.check(*f.ptr); err != nil {
			return fmt.Errorf("%w: %s %s %v", ErrValidation, target, f.name, err)
		}
	}
	return nil
}
