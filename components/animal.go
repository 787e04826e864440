package components

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Animal is one herbivore or carnivore. It is owned by exactly one cell at a
// time; migration moves the pointer between cells.
type Animal struct {
	species Species
	params  *SpeciesParams

	age    int
	weight float64

	// Fitness is recomputed on read after any age or weight write.
	fitness      float64
	fitnessStale bool

	hasMoved bool
}

// NewAnimal creates an animal with an explicit age and weight.
func NewAnimal(params *SpeciesParams, age int, weight float64) (*Animal, error) {
	if age < 0 {
		return nil, fmt.Errorf("%w: age must be >= 0, got %d", ErrValidation, age)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return nil, fmt.Errorf("%w: weight must be >= 0, got %v", ErrValidation, weight)
	}
	return &Animal{
		species:      params.species,
		params:       params,
		age:          age,
		weight:       weight,
		fitnessStale: true,
	}, nil
}

// NewNewborn creates an age 0 animal with a weight drawn from the species'
// birth distribution.
func NewNewborn(params *SpeciesParams, rng *rand.Rand) *Animal {
	return &Animal{
		species:      params.species,
		params:       params,
		weight:       birthWeight(params, rng),
		fitnessStale: true,
	}
}

// birthWeight draws from N(w_birth, sigma_birth), clamped at zero.
func birthWeight(p *SpeciesParams, rng *rand.Rand) float64 {
	dist := distuv.Normal{Mu: p.WBirth, Sigma: p.SigmaBirth, Src: rng}
	return math.Max(dist.Rand(), 0)
}

// Species returns the animal's species.
func (a *Animal) Species() Species { return a.species }

// Params returns the shared parameter set of the animal's species.
func (a *Animal) Params() *SpeciesParams { return a.params }

// Age returns the age in years.
func (a *Animal) Age() int { return a.age }

// Weight returns the current weight.
func (a *Animal) Weight() float64 { return a.weight }

// SetWeight overwrites the weight and invalidates the cached fitness.
func (a *Animal) SetWeight(w float64) {
	a.weight = w
	a.fitnessStale = true
}

// Fitness returns Φ in [0, 1]. It is 0 whenever weight <= 0.
func (a *Animal) Fitness() float64 {
	if a.fitnessStale {
		a.fitness = fitness(a.params, a.age, a.weight)
		a.fitnessStale = false
	}
	return a.fitness
}

func fitness(p *SpeciesParams, age int, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	return sigmoid(p.PhiAge*(float64(age)-p.AHalf)) * sigmoid(-p.PhiWeight*(weight-p.WHalf))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(x))
}

// HasMoved reports whether the animal already had its migration decision
// this year. Reading the flag sets it.
func (a *Animal) HasMoved() bool {
	moved := a.hasMoved
	a.hasMoved = true
	return moved
}

// Moved peeks at the migration flag without setting it.
func (a *Animal) Moved() bool {
	return a.hasMoved
}

// ResetHasMoved clears the migration flag for a new year.
func (a *Animal) ResetHasMoved() {
	a.hasMoved = false
}

// WillMigrate decides whether the animal leaves its cell this year. Only the
// first call in a year can return true.
func (a *Animal) WillMigrate(rng *rand.Rand) bool {
	if a.HasMoved() {
		return false
	}
	return rng.Float64() < a.Fitness()*a.params.Mu
}

// Birth attempts to produce one offspring given the number of same-species
// animals in the cell. The parent pays xi times the offspring weight; if it
// cannot, the birth does not happen and nothing changes.
func (a *Animal) Birth(n int, rng *rand.Rand) *Animal {
	p := a.params
	mates := n - 1
	if mates <= 0 {
		return nil
	}
	if a.weight < p.Zeta*(p.WBirth+p.PhiWeight) {
		return nil
	}

	prob := math.Min(1, p.Gamma*a.Fitness()*float64(mates))
	if rng.Float64() >= prob {
		return nil
	}

	child := NewNewborn(p, rng)
	loss := p.Xi * child.weight
	if a.weight < loss {
		return nil
	}
	a.SetWeight(a.weight - loss)
	return child
}

// Death decides whether the animal dies this year. Starved animals
// (fitness 0) always die.
func (a *Animal) Death(rng *rand.Rand) bool {
	f := a.Fitness()
	if f <= 0 {
		return true
	}
	return rng.Float64() < a.params.Omega*(1-f)
}

// Feed is the herbivore grazing rule: eat up to F of the available fodder and
// return what is left.
func (a *Animal) Feed(available float64) float64 {
	if available <= 0 {
		return available
	}
	eaten := math.Min(a.params.F, available)
	a.SetWeight(a.weight + a.params.Beta*eaten)
	return available - eaten
}

// KillOrNot decides whether a carnivore kills the given prey.
func (a *Animal) KillOrNot(prey *Animal, rng *rand.Rand) bool {
	diff := a.Fitness() - prey.Fitness()
	if diff <= 0 {
		return false
	}
	if diff > a.params.DeltaPhiMax {
		return true
	}
	return rng.Float64() < diff/a.params.DeltaPhiMax
}

// Prey is the carnivore feeding rule. Herbivores must be ordered by ascending
// fitness; the weakest is tried first until the carnivore has eaten F. The
// surviving herbivores are returned in their original order along with the
// number killed.
func (a *Animal) Prey(herbivores []*Animal, rng *rand.Rand) ([]*Animal, int) {
	survivors := make([]*Animal, 0, len(herbivores))
	eaten := 0.0
	kills := 0

	for i, h := range herbivores {
		if eaten >= a.params.F {
			survivors = append(survivors, herbivores[i:]...)
			break
		}
		if !a.KillOrNot(h, rng) {
			survivors = append(survivors, h)
			continue
		}
		meat := math.Min(a.params.F-eaten, h.weight)
		eaten += meat
		a.SetWeight(a.weight + a.params.Beta*meat)
		kills++
	}
	return survivors, kills
}

// AgeOneYear adds one year to the animal's age.
func (a *Animal) AgeOneYear() {
	a.age++
	a.fitnessStale = true
}

// LoseWeight applies the yearly weight loss of eta times the current weight.
func (a *Animal) LoseWeight() {
	a.SetWeight(a.weight - a.params.Eta*a.weight)
}
