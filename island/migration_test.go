package island

import (
	"slices"
	"testing"

	"github.com/pthm-cable/biosim/components"
)

func TestMigrateOnce(t *testing.T) {
	params := components.DefaultParameters()
	params.Species(components.Herbivore).Mu = 1
	params.Species(components.Carnivore).Mu = 1

	m := `
OOOOOOO
OJJJJJO
OJSDSJO
OJJMJJO
OOOOOOO`
	pop := []components.Placement{
		at(2, 2, herbivores(100, 2, 30)),
		at(2, 3, carnivores(30, 2, 30)),
		at(1, 5, herbivores(20, 2, 30)),
	}
	isl, err := Build(m, pop, WithSeed(4), WithParameters(params))
	if err != nil {
		t.Fatal(err)
	}

	for year := 0; year < 5; year++ {
		isl.readyForNewYear()
		isl.feed()
		isl.procreate()

		before := make(map[*components.Animal]components.Location)
		for r := 0; r < isl.Rows(); r++ {
			for c := 0; c < isl.Cols(); c++ {
				cell := isl.cell(r, c)
				for _, a := range slices.Concat(cell.Herbivores(), cell.Carnivores()) {
					if a.Moved() {
						t.Fatal("moved flag set before migration")
					}
					before[a] = components.Location{Row: r, Col: c}
				}
			}
		}

		if err := isl.migrate(); err != nil {
			t.Fatal(err)
		}

		moved, seen := 0, 0
		for r := 0; r < isl.Rows(); r++ {
			for c := 0; c < isl.Cols(); c++ {
				cell := isl.cell(r, c)
				for _, a := range slices.Concat(cell.Herbivores(), cell.Carnivores()) {
					seen++
					if !a.Moved() {
						t.Errorf("animal at (%d,%d) not marked moved", r, c)
					}
					from := before[a]
					dist := abs(from.Row-r) + abs(from.Col-c)
					if dist > 1 {
						t.Errorf("animal moved %d steps from %s to (%d,%d)", dist, from, r, c)
					}
					if dist == 1 {
						moved++
					}
				}
			}
		}
		if seen != len(before) {
			t.Fatalf("migration changed the population: %d -> %d", len(before), seen)
		}
		if moved == 0 {
			t.Error("no animal migrated with mu = 1")
		}

		isl.ageAnimals()
		isl.loseWeight()
		isl.die()
		isl.year++
	}
}

func TestMigrateSurroundedStays(t *testing.T) {
	params := components.DefaultParameters()
	params.Species(components.Herbivore).Mu = 1
	isl, err := Build("OOO\nOJO\nOOO", []components.Placement{at(1, 1, herbivores(10, 2, 30))},
		WithSeed(1), WithParameters(params))
	if err != nil {
		t.Fatal(err)
	}
	isl.readyForNewYear()
	if err := isl.migrate(); err != nil {
		t.Fatal(err)
	}
	c := isl.cell(1, 1)
	if c.NumHerbivores() != 10 {
		t.Errorf("herbivores = %d, want 10", c.NumHerbivores())
	}
	for _, a := range c.Herbivores() {
		if !a.Moved() {
			t.Error("animal not marked moved")
		}
	}
}

func TestMigrateAvoidsMountains(t *testing.T) {
	params := components.DefaultParameters()
	params.Species(components.Herbivore).Mu = 1
	isl, err := Build("OOOOO\nOMJDO\nOOMOO\nOOOOO", []components.Placement{at(1, 2, herbivores(200, 2, 30))},
		WithSeed(8), WithParameters(params))
	if err != nil {
		t.Fatal(err)
	}
	isl.readyForNewYear()
	if err := isl.migrate(); err != nil {
		t.Fatal(err)
	}
	desert := isl.cell(1, 3)
	if desert.NumHerbivores() == 0 {
		t.Error("no herbivore reached the only passable neighbour")
	}
	if isl.cell(1, 2).NumHerbivores()+desert.NumHerbivores() != 200 {
		t.Error("herbivores left the jungle for an impassable cell")
	}
}

func TestSampleIndex(t *testing.T) {
	tests := []struct {
		cdf  []float64
		u    float64
		want int
	}{
		{[]float64{1, 2, 3, 4}, 0, 0},
		{[]float64{1, 2, 3, 4}, 0.3, 1},
		{[]float64{1, 2, 3, 4}, 0.99, 3},
		{[]float64{0, 0, 5, 5}, 0, 2},
		{[]float64{0, 0, 5, 5}, 0.999, 2},
		{[]float64{0, 2, 2, 4}, 0.5, 3},
		{[]float64{0, 2, 2, 4}, 0.49, 1},
		{[]float64{0, 0, 5, 5}, 1, 2},
	}
	for _, tt := range tests {
		if got := sampleIndex(tt.cdf, tt.u); got != tt.want {
			t.Errorf("sampleIndex(%v, %v) = %d, want %d", tt.cdf, tt.u, got, tt.want)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
