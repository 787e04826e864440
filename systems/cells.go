// Package systems implements the per-cell ecology of the island: fodder
// regrowth, feeding, procreation, death and migration propensity.
package systems

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/biosim/components"
)

// Cell is one grid location. It owns the animals living in it.
type Cell struct {
	params *components.TerrainParams

	fodder     float64
	herbivores []*components.Animal
	carnivores []*components.Animal

	// Propensity is computed once per year on first request.
	propensity      [components.NumSpecies]float64
	propensityValid [components.NumSpecies]bool
}

// NewCell creates a cell of the terrain described by params, starting with the
// terrain's initial fodder.
func NewCell(params *components.TerrainParams) *Cell {
	return &Cell{
		params: params,
		fodder: params.InitialFodder(),
	}
}

// Terrain returns the cell's terrain.
func (c *Cell) Terrain() components.Terrain { return c.params.Terrain() }

// Passable reports whether animals may live in the cell.
func (c *Cell) Passable() bool { return c.params.Terrain().Passable() }

// Fodder returns the fodder currently available.
func (c *Cell) Fodder() float64 { return c.fodder }

// SetFodder overwrites the fodder amount, clamped at zero.
func (c *Cell) SetFodder(f float64) {
	c.fodder = math.Max(f, 0)
}

// Herbivores returns the cell's herbivore collection. The slice is owned by
// the cell and must not be modified.
func (c *Cell) Herbivores() []*components.Animal { return c.herbivores }

// Carnivores returns the cell's carnivore collection. The slice is owned by
// the cell and must not be modified.
func (c *Cell) Carnivores() []*components.Animal { return c.carnivores }

// Animals returns the collection of one species.
func (c *Cell) Animals(s components.Species) []*components.Animal {
	return *c.collection(s)
}

func (c *Cell) collection(s components.Species) *[]*components.Animal {
	if s == components.Carnivore {
		return &c.carnivores
	}
	return &c.herbivores
}

// Count returns the number of animals of one species.
func (c *Cell) Count(s components.Species) int { return len(*c.collection(s)) }

// NumHerbivores returns the number of herbivores.
func (c *Cell) NumHerbivores() int { return len(c.herbivores) }

// NumCarnivores returns the number of carnivores.
func (c *Cell) NumCarnivores() int { return len(c.carnivores) }

// NumAnimals returns the number of animals of both species.
func (c *Cell) NumAnimals() int { return len(c.herbivores) + len(c.carnivores) }

// Meat returns the total herbivore weight, the carnivores' resource.
func (c *Cell) Meat() float64 {
	total := 0.0
	for _, h := range c.herbivores {
		total += h.Weight()
	}
	return total
}

// AddAnimals builds and appends the described animals. It stops at the first
// invalid entry; entries before it stay in the cell. Callers that need
// all-or-nothing semantics validate the whole list first.
func (c *Cell) AddAnimals(specs []components.AnimalSpec, params *components.Parameters, rng *rand.Rand) error {
	if !c.Passable() {
		return fmt.Errorf("%w: %s is impassable", components.ErrPlacement, c.Terrain())
	}
	for i, spec := range specs {
		a, err := spec.Build(params, rng)
		if err != nil {
			return fmt.Errorf("animal %d: %w", i, err)
		}
		c.appendAnimal(a)
	}
	return nil
}

// AddAnimal appends an existing animal, used when one migrates in.
func (c *Cell) AddAnimal(a *components.Animal) error {
	if !c.Passable() {
		return fmt.Errorf("%w: %s is impassable", components.ErrPlacement, c.Terrain())
	}
	c.appendAnimal(a)
	return nil
}

func (c *Cell) appendAnimal(a *components.Animal) {
	col := c.collection(a.Species())
	*col = append(*col, a)
}

// RemoveAnimal takes the animal out of the cell. It reports false if the
// animal was not there.
func (c *Cell) RemoveAnimal(a *components.Animal) bool {
	col := c.collection(a.Species())
	for i, x := range *col {
		if x == a {
			*col = append((*col)[:i], (*col)[i+1:]...)
			return true
		}
	}
	return false
}

// Emigrate removes every animal of species s for which leaving returns true
// and returns them in their original order. leaving is called once per animal.
func (c *Cell) Emigrate(s components.Species, leaving func(*components.Animal) bool) []*components.Animal {
	col := c.collection(s)
	var gone []*components.Animal
	stay := (*col)[:0]
	for _, a := range *col {
		if leaving(a) {
			gone = append(gone, a)
			continue
		}
		stay = append(stay, a)
	}
	clear((*col)[len(stay):])
	*col = stay
	return gone
}

// Regrow applies the terrain's yearly fodder rule.
func (c *Cell) Regrow() {
	c.fodder = c.params.Regrow(c.fodder)
}

// ResetPropensity drops the cached propensities for a new year.
func (c *Cell) ResetPropensity() {
	c.propensityValid = [components.NumSpecies]bool{}
}

// ResetMigration clears the moved flag of every animal in the cell.
func (c *Cell) ResetMigration() {
	for _, a := range c.herbivores {
		a.ResetHasMoved()
	}
	for _, a := range c.carnivores {
		a.ResetHasMoved()
	}
}

// Propensity returns how attractive the cell is to migrating animals of the
// given species: exp(lambda * resource / ((n + 1) * F)). Impassable cells
// return 0. The value is cached until ResetPropensity.
func (c *Cell) Propensity(sp *components.SpeciesParams) float64 {
	s := sp.Species()
	if !c.Passable() {
		return 0
	}
	if c.propensityValid[s] {
		return c.propensity[s]
	}

	resource := c.fodder
	if s == components.Carnivore {
		resource = c.Meat()
	}

	// With zero appetite there is nothing to compete for.
	abundance := 0.0
	if sp.F > 0 {
		abundance = resource / (float64(c.Count(s)+1) * sp.F)
	}

	c.propensity[s] = math.Exp(sp.Lambda * abundance)
	c.propensityValid[s] = true
	return c.propensity[s]
}

// AgePop ages every animal by one year.
func (c *Cell) AgePop() {
	for _, a := range c.herbivores {
		a.AgeOneYear()
	}
	for _, a := range c.carnivores {
		a.AgeOneYear()
	}
}

// LoseWeight applies the yearly weight loss to every animal.
func (c *Cell) LoseWeight() {
	for _, a := range c.herbivores {
		a.LoseWeight()
	}
	for _, a := range c.carnivores {
		a.LoseWeight()
	}
}

// Die removes every animal whose death draw succeeds and returns the number
// removed per species.
func (c *Cell) Die(rng *rand.Rand) [components.NumSpecies]int {
	var deaths [components.NumSpecies]int
	for s := components.Species(0); s < components.NumSpecies; s++ {
		col := c.collection(s)
		alive := (*col)[:0]
		for _, a := range *col {
			if a.Death(rng) {
				deaths[s]++
				continue
			}
			alive = append(alive, a)
		}
		clear((*col)[len(alive):])
		*col = alive
	}
	return deaths
}
