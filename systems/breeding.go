package systems

import (
	"math/rand/v2"

	"github.com/pthm-cable/biosim/components"
)

// Procreate lets every animal of a species with at least two members in the
// cell attempt one birth. The local count passed to each attempt is taken
// before the pass starts, and newborns neither breed nor count until the
// next year. Returns births per species.
func (c *Cell) Procreate(rng *rand.Rand) [components.NumSpecies]int {
	var births [components.NumSpecies]int
	for s := components.Species(0); s < components.NumSpecies; s++ {
		col := c.collection(s)
		n := len(*col)
		if n < 2 {
			continue
		}

		var newborns []*components.Animal
		for _, a := range (*col)[:n] {
			if child := a.Birth(n, rng); child != nil {
				newborns = append(newborns, child)
			}
		}
		*col = append(*col, newborns...)
		births[s] = len(newborns)
	}
	return births
}
