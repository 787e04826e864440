package systems

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/pthm-cable/biosim/components"
)

// sortByFitness orders animals by ascending fitness. Equal fitness keeps the
// existing order so runs stay reproducible.
func sortByFitness(animals []*components.Animal) {
	slices.SortStableFunc(animals, func(a, b *components.Animal) int {
		return cmp.Compare(a.Fitness(), b.Fitness())
	})
}

// FeedAll runs the cell's feeding season and returns the number of
// herbivores killed. Herbivores graze first, fittest first, until the fodder
// runs out. Carnivores then hunt, fittest first, each starting from the
// weakest herbivore.
func (c *Cell) FeedAll(rng *rand.Rand) int {
	c.feedHerbivores()
	return c.feedCarnivores(rng)
}

func (c *Cell) feedHerbivores() {
	sortByFitness(c.herbivores)
	for i := len(c.herbivores) - 1; i >= 0 && c.fodder > 0; i-- {
		c.fodder = c.herbivores[i].Feed(c.fodder)
	}
}

func (c *Cell) feedCarnivores(rng *rand.Rand) int {
	if len(c.carnivores) == 0 {
		return 0
	}

	// Grazing changed weights, so prey order is recomputed.
	sortByFitness(c.herbivores)
	sortByFitness(c.carnivores)

	kills := 0
	for i := len(c.carnivores) - 1; i >= 0; i-- {
		if len(c.herbivores) == 0 {
			break
		}
		var k int
		c.herbivores, k = c.carnivores[i].Prey(c.herbivores, rng)
		kills += k
	}
	return kills
}
