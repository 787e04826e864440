package island

import (
	"fmt"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

// CellCount is one row of the per-cell animal distribution.
type CellCount struct {
	Row        int
	Col        int
	Terrain    components.Terrain
	Fodder     float64
	Herbivores int
	Carnivores int
}

// Year returns the number of years simulated so far.
func (isl *Island) Year() int { return isl.year }

// Rows returns the number of map rows.
func (isl *Island) Rows() int { return isl.rows }

// Cols returns the number of map columns.
func (isl *Island) Cols() int { return isl.cols }

// NumAnimals returns the total number of animals on the island.
func (isl *Island) NumAnimals() int {
	n := 0
	for _, c := range isl.cells {
		n += c.NumAnimals()
	}
	return n
}

// NumAnimalsPerSpecies returns the number of animals of each species.
func (isl *Island) NumAnimalsPerSpecies() map[components.Species]int {
	counts := make(map[components.Species]int, components.NumSpecies)
	for s := components.Species(0); s < components.NumSpecies; s++ {
		counts[s] = 0
	}
	for _, c := range isl.cells {
		counts[components.Herbivore] += c.NumHerbivores()
		counts[components.Carnivore] += c.NumCarnivores()
	}
	return counts
}

// Distribution returns per-cell animal counts in row-major order, including
// empty and impassable cells.
func (isl *Island) Distribution() []CellCount {
	out := make([]CellCount, 0, len(isl.cells))
	for i, c := range isl.cells {
		out = append(out, CellCount{
			Row:        i / isl.cols,
			Col:        i % isl.cols,
			Terrain:    c.Terrain(),
			Fodder:     c.Fodder(),
			Herbivores: c.NumHerbivores(),
			Carnivores: c.NumCarnivores(),
		})
	}
	return out
}

// CellAt returns the cell at loc. The cell is live; callers must not change
// it while a year is being simulated.
func (isl *Island) CellAt(loc components.Location) (*systems.Cell, error) {
	if !isl.inBounds(loc) {
		return nil, fmt.Errorf("%w: location %s outside %dx%d grid",
			components.ErrPlacement, loc, isl.rows, isl.cols)
	}
	return isl.cell(loc.Row, loc.Col), nil
}

// Weights returns the weight of every animal of species s.
func (isl *Island) Weights(s components.Species) []float64 {
	return isl.collect(s, (*components.Animal).Weight)
}

// Fitnesses returns the fitness of every animal of species s.
func (isl *Island) Fitnesses(s components.Species) []float64 {
	return isl.collect(s, (*components.Animal).Fitness)
}

// Ages returns the age of every animal of species s.
func (isl *Island) Ages(s components.Species) []float64 {
	return isl.collect(s, func(a *components.Animal) float64 { return float64(a.Age()) })
}

func (isl *Island) collect(s components.Species, value func(*components.Animal) float64) []float64 {
	var out []float64
	for _, c := range isl.cells {
		for _, a := range c.Animals(s) {
			out = append(out, value(a))
		}
	}
	return out
}
