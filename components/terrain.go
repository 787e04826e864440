package components

import "fmt"

// Terrain is the landscape type of a grid cell.
type Terrain uint8

const (
	Ocean Terrain = iota
	Mountain
	Desert
	Savanna
	Jungle

	NumTerrains = 5
)

var terrainSymbols = [NumTerrains]byte{
	Ocean:    'O',
	Mountain: 'M',
	Desert:   'D',
	Savanna:  'S',
	Jungle:   'J',
}

var terrainNames = [NumTerrains]string{
	Ocean:    "Ocean",
	Mountain: "Mountain",
	Desert:   "Desert",
	Savanna:  "Savanna",
	Jungle:   "Jungle",
}

// String returns the terrain name.
func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("Terrain(%d)", uint8(t))
}

// Symbol returns the map character for the terrain.
func (t Terrain) Symbol() byte {
	return terrainSymbols[t]
}

// Passable reports whether animals may live in or migrate into the terrain.
func (t Terrain) Passable() bool {
	return t != Ocean && t != Mountain
}

// TerrainFromSymbol maps a map character to its terrain.
func TerrainFromSymbol(sym byte) (Terrain, bool) {
	for i, s := range terrainSymbols {
		if s == sym {
			return Terrain(i), true
		}
	}
	return 0, false
}

// ParseTerrainSymbol maps a one-character symbol string ("J") to its terrain.
func ParseTerrainSymbol(symbol string) (Terrain, error) {
	if len(symbol) == 1 {
		if t, ok := TerrainFromSymbol(symbol[0]); ok {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown terrain symbol %q", ErrValidation, symbol)
}

// TerrainParams holds the fodder constants shared by every cell of one terrain.
type TerrainParams struct {
	FMax  float64 `yaml:"f_max"` // fodder ceiling
	Alpha float64 `yaml:"alpha"` // savanna regrowth fraction

	terrain Terrain
}

// DefaultTerrainParams returns the standard parameters for a terrain.
func DefaultTerrainParams(t Terrain) TerrainParams {
	p := TerrainParams{terrain: t}
	switch t {
	case Savanna:
		p.FMax = 300
		p.Alpha = 0.3
	case Jungle:
		p.FMax = 800
	}
	return p
}

// Terrain returns the terrain this parameter set belongs to.
func (p *TerrainParams) Terrain() Terrain {
	return p.terrain
}

func (p *TerrainParams) fields() []paramField {
	switch p.terrain {
	case Savanna:
		return []paramField{
			{"f_max", &p.FMax, nonNegative},
			{"alpha", &p.Alpha, unitInterval},
		}
	case Jungle:
		return []paramField{
			{"f_max", &p.FMax, nonNegative},
		}
	}
	return nil
}

// Names lists the parameter names accepted by Set for this terrain.
func (p *TerrainParams) Names() []string {
	return fieldNames(p.fields())
}

// Set updates the named parameters, all-or-nothing.
func (p *TerrainParams) Set(values map[string]float64) error {
	return setFields(string(p.terrain.Symbol()), p.fields(), values)
}

// Validate checks the current values against the same rules Set enforces.
func (p *TerrainParams) Validate() error {
	return validateFields(string(p.terrain.Symbol()), p.fields())
}

// InitialFodder is the fodder a freshly built cell starts with.
func (p *TerrainParams) InitialFodder() float64 {
	switch p.terrain {
	case Savanna, Jungle:
		return p.FMax
	}
	return 0
}

// Regrow applies one year of the terrain's fodder rule.
func (p *TerrainParams) Regrow(fodder float64) float64 {
	switch p.terrain {
	case Savanna:
		return fodder + p.Alpha*(p.FMax-fodder)
	case Jungle:
		return p.FMax
	}
	return 0
}
