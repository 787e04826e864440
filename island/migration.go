package island

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

// Neighbour order used for destination sampling.
var directions = [4]struct{ dr, dc int }{
	{-1, 0}, // north
	{1, 0},  // south
	{0, -1}, // west
	{0, 1},  // east
}

// migrate moves animals between neighbouring cells. Propensities are fixed
// for the whole phase before any animal moves, so the outcome does not depend
// on which cells have already received migrants.
func (isl *Island) migrate() error {
	for _, c := range isl.cells {
		for s := components.Species(0); s < components.NumSpecies; s++ {
			c.Propensity(isl.params.Species(s))
		}
	}

	var moved [components.NumSpecies]int
	for r := 0; r < isl.rows; r++ {
		for col := 0; col < isl.cols; col++ {
			c := isl.cell(r, col)
			if !c.Passable() || c.NumAnimals() == 0 {
				continue
			}
			for s := components.Species(0); s < components.NumSpecies; s++ {
				n, err := isl.emigrate(r, col, s)
				if err != nil {
					return err
				}
				moved[s] += n
			}
		}
	}
	for s, n := range moved {
		isl.rec.RecordMigrations(components.Species(s), n)
	}
	return nil
}

// emigrate decides migration for every animal of species s in the cell at
// (r, col) and transfers the movers once the whole collection is decided.
func (isl *Island) emigrate(r, col int, s components.Species) (int, error) {
	sp := isl.params.Species(s)

	var dest [4]*systems.Cell
	var weights [4]float64
	for i, d := range directions {
		loc := components.Location{Row: r + d.dr, Col: col + d.dc}
		if !isl.inBounds(loc) {
			continue
		}
		dest[i] = isl.cell(loc.Row, loc.Col)
		weights[i] = dest[i].Propensity(sp)
	}
	total := floats.Sum(weights[:])
	var cdf [4]float64
	floats.CumSum(cdf[:], weights[:])

	var targets []*systems.Cell
	leaving := isl.cell(r, col).Emigrate(s, func(a *components.Animal) bool {
		// The decision is drawn even when there is nowhere to go so every
		// animal ends the phase marked as moved.
		if !a.WillMigrate(isl.rng) || total <= 0 {
			return false
		}
		targets = append(targets, dest[sampleIndex(cdf[:], isl.rng.Float64())])
		return true
	})

	for i, a := range leaving {
		if err := targets[i].AddAnimal(a); err != nil {
			return 0, fmt.Errorf("migrating %s from (%d, %d): %w", s, r, col, err)
		}
	}
	return len(leaving), nil
}

// sampleIndex returns the index whose cumulative weight interval contains
// u scaled to the total weight. Zero-weight entries are never chosen.
func sampleIndex(cdf []float64, u float64) int {
	x := u * cdf[len(cdf)-1]
	for i, v := range cdf {
		if x < v {
			return i
		}
	}
	for i := len(cdf) - 1; i > 0; i-- {
		if cdf[i] > cdf[i-1] {
			return i
		}
	}
	return 0
}
