package components

import (
	"math"
	"math/rand/v2"
	"testing"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func mustAnimal(t *testing.T, p *SpeciesParams, age int, weight float64) *Animal {
	t.Helper()
	a, err := NewAnimal(p, age, weight)
	if err != nil {
		t.Fatalf("NewAnimal(%d, %v): %v", age, weight, err)
	}
	return a
}

// pinFitness fixes the cached fitness until the next age or weight write.
func pinFitness(a *Animal, f float64) {
	a.fitness = f
	a.fitnessStale = false
}

func TestNewAnimalValidation(t *testing.T) {
	p := DefaultHerbivoreParams()
	tests := []struct {
		name    string
		age     int
		weight  float64
		wantErr bool
	}{
		{"valid", 5, 20, false},
		{"zero weight", 0, 0, false},
		{"negative age", -1, 20, true},
		{"negative weight", 3, -10, true},
		{"nan weight", 3, math.NaN(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnimal(&p, tt.age, tt.weight)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFitnessFormula(t *testing.T) {
	p := DefaultHerbivoreParams()
	a := mustAnimal(t, &p, 10, 20)

	ageTerm := 1 / (1 + math.Exp(p.PhiAge*(10-p.AHalf)))
	weightTerm := 1 / (1 + math.Exp(-p.PhiWeight*(20-p.WHalf)))
	want := ageTerm * weightTerm

	if got := a.Fitness(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Fitness() = %v, want %v", got, want)
	}
}

func TestFitnessBounds(t *testing.T) {
	herb := DefaultHerbivoreParams()
	carn := DefaultCarnivoreParams()
	for _, p := range []*SpeciesParams{&herb, &carn} {
		for _, age := range []int{0, 1, 10, 40, 100, 1000} {
			for _, w := range []float64{0, 0.1, 5, 40, 500, 1e6} {
				f := mustAnimal(t, p, age, w).Fitness()
				if f < 0 || f > 1 || math.IsNaN(f) {
					t.Errorf("%s age=%d weight=%v: fitness %v out of [0,1]", p.Species(), age, w, f)
				}
			}
		}
	}
}

func TestFitnessZeroWeight(t *testing.T) {
	p := DefaultHerbivoreParams()
	for _, age := range []int{0, 5, 60} {
		if f := mustAnimal(t, &p, age, 0).Fitness(); f != 0 {
			t.Errorf("age %d weight 0: fitness = %v, want 0", age, f)
		}
	}
}

func TestFitnessCache(t *testing.T) {
	p := DefaultHerbivoreParams()
	a := mustAnimal(t, &p, 5, 20)

	first := a.Fitness()
	if second := a.Fitness(); second != first {
		t.Fatalf("consecutive reads differ: %v then %v", first, second)
	}

	a.SetWeight(60)
	if after := a.Fitness(); after == first {
		t.Error("fitness not recomputed after weight write")
	}

	before := a.Fitness()
	a.AgeOneYear()
	if after := a.Fitness(); after == before {
		t.Error("fitness not recomputed after aging")
	}
}

func TestHasMovedReadOnce(t *testing.T) {
	p := DefaultHerbivoreParams()
	a := mustAnimal(t, &p, 5, 20)

	if a.HasMoved() {
		t.Fatal("first read should report not moved")
	}
	if !a.HasMoved() {
		t.Fatal("second read should report moved")
	}
	a.ResetHasMoved()
	if a.Moved() {
		t.Fatal("flag still set after reset")
	}
}

func TestWillMigrateOncePerYear(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Mu = 100 // probability saturates at 1
	a := mustAnimal(t, &p, 5, 40)
	rng := newRNG()

	if !a.WillMigrate(rng) {
		t.Fatal("first decision should migrate with saturated probability")
	}
	if a.WillMigrate(rng) {
		t.Fatal("second decision in the same year must be false")
	}
	a.ResetHasMoved()
	if !a.WillMigrate(rng) {
		t.Fatal("decision after reset should migrate again")
	}
}

func TestWillMigrateZeroMu(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Mu = 0
	a := mustAnimal(t, &p, 5, 40)
	if a.WillMigrate(newRNG()) {
		t.Error("mu = 0 should never migrate")
	}
	if !a.Moved() {
		t.Error("decision should set the moved flag even when staying")
	}
}

func TestBirthNeedsMate(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Gamma = 100
	a := mustAnimal(t, &p, 5, 100)
	if child := a.Birth(1, newRNG()); child != nil {
		t.Error("a lone animal cannot give birth")
	}
}

func TestBirthWeightThreshold(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Gamma = 100
	threshold := p.Zeta * (p.WBirth + p.PhiWeight)
	a := mustAnimal(t, &p, 5, threshold-0.01)
	if child := a.Birth(10, newRNG()); child != nil {
		t.Error("birth below weight threshold")
	}
}

func TestBirthAffordability(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Zeta = 0
	p.Gamma = 100
	p.WBirth = 10
	p.SigmaBirth = 0
	p.Xi = 2 // offspring costs 20

	t.Run("unaffordable", func(t *testing.T) {
		a := mustAnimal(t, &p, 5, 15)
		if child := a.Birth(2, newRNG()); child != nil {
			t.Fatal("unaffordable birth produced offspring")
		}
		if a.Weight() != 15 {
			t.Errorf("parent weight = %v, want unchanged 15", a.Weight())
		}
	})

	t.Run("affordable", func(t *testing.T) {
		a := mustAnimal(t, &p, 5, 25)
		child := a.Birth(2, newRNG())
		if child == nil {
			t.Fatal("expected offspring")
		}
		if child.Age() != 0 || child.Weight() != 10 {
			t.Errorf("child age=%d weight=%v, want 0 and 10", child.Age(), child.Weight())
		}
		if math.Abs(a.Weight()-5) > 1e-12 {
			t.Errorf("parent weight = %v, want 5", a.Weight())
		}
		if child.Species() != Herbivore {
			t.Errorf("child species = %v", child.Species())
		}
	})
}

func TestBirthNeverNegativeWeight(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Zeta = 0
	p.Gamma = 100
	rng := newRNG()
	for i := 0; i < 500; i++ {
		a := mustAnimal(t, &p, 3, rng.Float64()*20)
		a.Birth(5, rng)
		if a.Weight() < 0 {
			t.Fatalf("parent weight went negative: %v", a.Weight())
		}
	}
}

func TestNewbornWeightClamped(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.WBirth = 0
	p.SigmaBirth = 5
	rng := newRNG()
	for i := 0; i < 200; i++ {
		if w := NewNewborn(&p, rng).Weight(); w < 0 {
			t.Fatalf("newborn weight %v < 0", w)
		}
	}
}

func TestDeathCertainWhenStarved(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Omega = 0
	rng := newRNG()
	for i := 0; i < 100; i++ {
		if !mustAnimal(t, &p, 5, 0).Death(rng) {
			t.Fatal("animal with weight 0 survived")
		}
	}
}

func TestDeathNeverWithZeroOmega(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Omega = 0
	a := mustAnimal(t, &p, 5, 40)
	rng := newRNG()
	for i := 0; i < 100; i++ {
		if a.Death(rng) {
			t.Fatal("omega = 0 and positive fitness should never die")
		}
	}
}

func TestFeed(t *testing.T) {
	tests := []struct {
		name       string
		available  float64
		wantLeft   float64
		wantGained float64
	}{
		{"plenty", 15, 5, 10 * 0.9},
		{"exact", 10, 0, 10 * 0.9},
		{"scarce", 4, 0, 4 * 0.9},
		{"none", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultHerbivoreParams()
			a := mustAnimal(t, &p, 5, 20)
			left := a.Feed(tt.available)
			if math.Abs(left-tt.wantLeft) > 1e-12 {
				t.Errorf("left = %v, want %v", left, tt.wantLeft)
			}
			if gained := a.Weight() - 20; math.Abs(gained-tt.wantGained) > 1e-12 {
				t.Errorf("gained = %v, want %v", gained, tt.wantGained)
			}
		})
	}
}

func TestKillOrNotNeverWhenNotFitter(t *testing.T) {
	cp := DefaultCarnivoreParams()
	hp := DefaultHerbivoreParams()
	carn := mustAnimal(t, &cp, 5, 20)
	herb := mustAnimal(t, &hp, 5, 20)
	pinFitness(carn, 0.4)
	pinFitness(herb, 0.4)

	rng := newRNG()
	for i := 0; i < 100; i++ {
		if carn.KillOrNot(herb, rng) {
			t.Fatal("kill with equal fitness")
		}
	}
}

func TestKillOrNotCertain(t *testing.T) {
	cp := DefaultCarnivoreParams()
	cp.DeltaPhiMax = 0.1
	hp := DefaultHerbivoreParams()
	carn := mustAnimal(t, &cp, 5, 20)
	herb := mustAnimal(t, &hp, 5, 20)
	pinFitness(carn, 1.0)
	pinFitness(herb, 0.5)

	rng := newRNG()
	for i := 0; i < 100; i++ {
		if !carn.KillOrNot(herb, rng) {
			t.Fatal("fitness gap above DeltaPhiMax must always kill")
		}
	}
}

func TestKillOrNotRate(t *testing.T) {
	tests := []struct {
		name        string
		deltaPhiMax float64
		want        float64 // expected kills out of 1000
		tolerance   float64
	}{
		{"DeltaPhiMax 10", 10.0, 50, 25},
		{"DeltaPhiMax 1", 1.0, 500, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := DefaultCarnivoreParams()
			cp.DeltaPhiMax = tt.deltaPhiMax
			hp := DefaultHerbivoreParams()
			carn := mustAnimal(t, &cp, 5, 20)
			herb := mustAnimal(t, &hp, 5, 20)
			pinFitness(carn, 1.0)
			pinFitness(herb, 0.5)

			rng := newRNG()
			kills := 0
			for i := 0; i < 1000; i++ {
				if carn.KillOrNot(herb, rng) {
					kills++
				}
			}
			if math.Abs(float64(kills)-tt.want) > tt.tolerance {
				t.Errorf("kills = %d, want %v ± %v", kills, tt.want, tt.tolerance)
			}
		})
	}
}

func TestPreyStopsAtAppetite(t *testing.T) {
	cp := DefaultCarnivoreParams()
	cp.DeltaPhiMax = 1e-9 // any positive gap is a certain kill
	hp := DefaultHerbivoreParams()

	carn := mustAnimal(t, &cp, 5, 40)
	var herbs []*Animal
	for i := 0; i < 4; i++ {
		herbs = append(herbs, mustAnimal(t, &hp, 100, 30))
	}

	survivors, kills := carn.Prey(herbs, newRNG())
	if kills != 2 {
		t.Fatalf("kills = %d, want 2 (30 + 20 of appetite 50)", kills)
	}
	if len(survivors) != 2 || survivors[0] != herbs[2] || survivors[1] != herbs[3] {
		t.Errorf("survivors should be the last two herbivores in order")
	}
	wantWeight := 40 + cp.Beta*cp.F
	if math.Abs(carn.Weight()-wantWeight) > 1e-9 {
		t.Errorf("carnivore weight = %v, want %v", carn.Weight(), wantWeight)
	}
}

func TestPreySkipsFitterHerbivores(t *testing.T) {
	cp := DefaultCarnivoreParams()
	hp := DefaultHerbivoreParams()

	carn := mustAnimal(t, &cp, 200, 1) // very unfit
	herbs := []*Animal{mustAnimal(t, &hp, 5, 40), mustAnimal(t, &hp, 6, 50)}

	survivors, kills := carn.Prey(herbs, newRNG())
	if kills != 0 || len(survivors) != 2 {
		t.Errorf("kills = %d survivors = %d, want 0 and 2", kills, len(survivors))
	}
	if carn.Weight() != 1 {
		t.Errorf("carnivore weight changed without eating: %v", carn.Weight())
	}
}

func TestLoseWeightAndAge(t *testing.T) {
	p := DefaultCarnivoreParams()
	a := mustAnimal(t, &p, 2, 20)
	a.LoseWeight()
	if want := 20 - p.Eta*20; math.Abs(a.Weight()-want) > 1e-12 {
		t.Errorf("weight = %v, want %v", a.Weight(), want)
	}
	a.AgeOneYear()
	if a.Age() != 3 {
		t.Errorf("age = %d, want 3", a.Age())
	}
}
