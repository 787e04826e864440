package components

import (
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

// Location is a (row, column) grid position. Row 0 is the top line of the map.
type Location struct {
	Row int
	Col int
}

func (l Location) String() string {
	return fmt.Sprintf("(%d, %d)", l.Row, l.Col)
}

// UnmarshalYAML accepts the [row, col] form used in population descriptions.
func (l *Location) UnmarshalYAML(value *yaml.Node) error {
	var pair []int
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("location must be [row, col]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("location must be [row, col], got %d values", len(pair))
	}
	l.Row, l.Col = pair[0], pair[1]
	return nil
}

// MarshalYAML writes the location as [row, col].
func (l Location) MarshalYAML() (any, error) {
	return []int{l.Row, l.Col}, nil
}

// AnimalSpec describes one animal to place. A nil Weight means the weight is
// drawn from the species' birth distribution.
type AnimalSpec struct {
	Species string   `yaml:"species"`
	Age     int      `yaml:"age"`
	Weight  *float64 `yaml:"weight,omitempty"`
}

// Validate checks the species name, age and weight without creating anything.
func (s AnimalSpec) Validate() (Species, error) {
	species, err := ParseSpecies(s.Species)
	if err != nil {
		return 0, err
	}
	if s.Age < 0 {
		return 0, fmt.Errorf("%w: %s age must be >= 0, got %d", ErrValidation, s.Species, s.Age)
	}
	if s.Weight != nil && !(*s.Weight >= 0) {
		return 0, fmt.Errorf("%w: %s weight must be >= 0, got %v", ErrValidation, s.Species, *s.Weight)
	}
	return species, nil
}

// Build creates the described animal using the shared parameter record.
func (s AnimalSpec) Build(params *Parameters, rng *rand.Rand) (*Animal, error) {
	species, err := s.Validate()
	if err != nil {
		return nil, err
	}
	sp := params.Species(species)
	if s.Weight == nil {
		a := NewNewborn(sp, rng)
		a.age = s.Age
		return a, nil
	}
	return NewAnimal(sp, s.Age, *s.Weight)
}

// Placement is one entry of a population description: animals for one cell.
type Placement struct {
	Loc Location     `yaml:"loc"`
	Pop []AnimalSpec `yaml:"pop"`
}

// Weight is a helper for building AnimalSpec literals.
func Weight(w float64) *float64 {
	return &w
}
