package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/telemetry"
)

func TestParamVectorNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestParamVectorDefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	for _, spec := range pv.Specs {
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s default %v outside [%v, %v]", spec.Name, spec.Default, spec.Min, spec.Max)
		}
	}
}

func TestParamVectorDefaultsMatchSpecies(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	got, err := pv.ExtractFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: built-in value %v, listed default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Species = map[string]map[string]float64{"Herbivore": {"w_birth": 7}}
	original := cfg.Species["Herbivore"]

	pv := NewParamVector()
	values := pv.DefaultVector()
	values[0] = 1000 // herb_F, clamped to max
	pv.ApplyToConfig(cfg, values)

	if cfg.Species["Herbivore"]["F"] != pv.Specs[0].Max {
		t.Errorf("herb F = %v, want clamped %v", cfg.Species["Herbivore"]["F"], pv.Specs[0].Max)
	}
	if cfg.Species["Herbivore"]["w_birth"] != 7 {
		t.Error("existing override dropped")
	}
	if _, ok := original["F"]; ok {
		t.Error("ApplyToConfig modified the original override map")
	}

	params, err := cfg.Parameters()
	if err != nil {
		t.Fatal(err)
	}
	if params.Species(components.Carnivore).DeltaPhiMax != 10 {
		t.Errorf("carnivore DeltaPhiMax = %v", params.Species(components.Carnivore).DeltaPhiMax)
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("empty history quality = %v", q)
	}

	// Carnivores never appear.
	var noCarn []telemetry.YearStats
	for y := 0; y < 20; y++ {
		noCarn = append(noCarn, telemetry.YearStats{Year: y, Herbivores: 100})
	}
	if q := computeQuality(noCarn); q != 0 {
		t.Errorf("quality without carnivores = %v", q)
	}

	// Steady populations at the target ratio score high.
	var steady []telemetry.YearStats
	for y := 0; y < 30; y++ {
		steady = append(steady, telemetry.YearStats{
			Year: y, Herbivores: 100, Carnivores: 20,
			HerbFitnessMean: 0.5, CarnFitnessMean: 0.5,
		})
	}
	q := computeQuality(steady)
	if math.Abs(q-0.9) > 1e-9 {
		t.Errorf("steady quality = %v, want 0.9", q)
	}

	// Oscillating populations score lower.
	var wild []telemetry.YearStats
	for y := 0; y < 30; y++ {
		h, c := 100, 20
		if y%2 == 1 {
			h, c = 400, 5
		}
		wild = append(wild, telemetry.YearStats{Year: y, Herbivores: h, Carnivores: c,
			HerbFitnessMean: 0.5, CarnFitnessMean: 0.5})
	}
	if qw := computeQuality(wild); qw >= q {
		t.Errorf("oscillating quality %v >= steady %v", qw, q)
	}
}

func TestComputeFitness(t *testing.T) {
	if f := computeFitness(100, 0); f != -100 {
		t.Errorf("fitness = %v", f)
	}
	if f := computeFitness(100, 1); math.Abs(f+120) > 1e-9 {
		t.Errorf("fitness = %v", f)
	}
	if computeFitness(200, 0) >= computeFitness(100, 1) {
		t.Error("longer survival should dominate quality")
	}
}

func TestPopulationSize(t *testing.T) {
	if n := populationSize(12, 11); n != 12 {
		t.Errorf("configured size ignored: %d", n)
	}
	if n := populationSize(0, 11); n != 4+int(3*math.Log(11)) {
		t.Errorf("auto size = %d", n)
	}
}

func TestEvaluateShortRun(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 60, evalSeeds(2), cfg)

	f := fe.Evaluate(pv.DefaultVector())
	if f > 0 || f < -60*1.2 {
		t.Errorf("fitness %v outside [-72, 0]", f)
	}
	if q := fe.LastQuality(); q < 0 || q > 1 {
		t.Errorf("quality = %v", q)
	}
	if len(fe.BestHistory()) == 0 {
		t.Error("no best history recorded")
	}
	if len(cfg.Species) != 0 {
		t.Errorf("base config species modified: %v", cfg.Species)
	}
}
