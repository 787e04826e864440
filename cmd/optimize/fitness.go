package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/game"
	"github.com/pthm-cable/biosim/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	years      int
	seeds      []uint64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestHistory []telemetry.YearStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, years int, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		years:       years,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHistory returns the yearly stats of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestHistory() []telemetry.YearStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHistory
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: a species below this for extinctionGraceYears
// consecutive years counts as functionally extinct.
const (
	minViablePop         = 3
	extinctionGraceYears = 5
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalYears int // years of coexistence before functional extinction
	history       []telemetry.YearStats
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	history []telemetry.YearStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			result := fe.runSimulation(cfg, s)
			quality := computeQuality(result.history)
			results[idx] = seedResult{
				fitness: computeFitness(result.survivalYears, quality),
				quality: quality,
				history: result.history,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHistory []telemetry.YearStats

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHistory = r.history
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHistory = bestSeedHistory
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run until functional extinction
// or the year limit. Survival counts from the first year both species are
// present, so a late carnivore injection does not cost anything.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed uint64) *runResult {
	result := &runResult{}

	g, err := game.NewGameWithOptions(game.Options{Config: cfg, Seed: seed})
	if err != nil {
		return result
	}
	defer g.Unload()

	coexistStart := -1
	var herbBelow, carnBelow int

	stop := func(s telemetry.YearStats) bool {
		if coexistStart < 0 {
			if s.Herbivores == 0 {
				return true
			}
			if s.Carnivores == 0 {
				return false
			}
			coexistStart = s.Year
		}

		// Hard extinction
		if s.Herbivores == 0 || s.Carnivores == 0 {
			return true
		}

		// Functional extinction
		herbBelow = belowCount(s.Herbivores, herbBelow)
		carnBelow = belowCount(s.Carnivores, carnBelow)
		return herbBelow >= extinctionGraceYears || carnBelow >= extinctionGraceYears
	}

	if err := g.Run(fe.years, stop); err != nil {
		return result
	}

	result.history = g.History()
	if coexistStart >= 0 {
		result.survivalYears = g.Year() - coexistStart
	}
	return result
}

func belowCount(pop, below int) int {
	if pop < minViablePop {
		return below + 1
	}
	return 0
}

// copyConfig returns a shallow copy of the base config with run outputs
// disabled. Derived placements are shared read-only.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Telemetry = config.TelemetryConfig{}
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalYears × (1.0 + 0.2 × quality))
func computeFitness(survivalYears int, quality float64) float64 {
	return -(float64(survivalYears) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.40
	qualityWeightStability = 0.40
	qualityWeightFitness   = 0.20

	qualityWarmupYears = 5 // skip years after carnivores first appear
	qualityMinPop      = 3
	targetRatio        = 5.0 // herbivores per carnivore
)

// computeQuality computes ecosystem quality in [0, 1] from a yearly history.
func computeQuality(history []telemetry.YearStats) float64 {
	start := -1
	for i, s := range history {
		if s.Carnivores > 0 {
			start = i + qualityWarmupYears
			break
		}
	}
	if start < 0 || start >= len(history) {
		return 0
	}

	var ratioSum, fitnessSum float64
	herbCounts := make([]float64, 0, len(history)-start)
	carnCounts := make([]float64, 0, len(history)-start)

	for _, s := range history[start:] {
		if s.Herbivores < qualityMinPop || s.Carnivores < qualityMinPop {
			continue
		}
		herbCounts = append(herbCounts, float64(s.Herbivores))
		carnCounts = append(carnCounts, float64(s.Carnivores))

		logErr := math.Log(float64(s.Herbivores) / float64(s.Carnivores) / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)
		fitnessSum += (s.HerbFitnessMean + s.CarnFitnessMean) / 2
	}

	n := len(herbCounts)
	if n == 0 {
		return 0
	}

	stability := 0.0
	if n >= 2 {
		cvHerb, cvCarn := cv(herbCounts), cv(carnCounts)
		stability = math.Exp(-(cvHerb*cvHerb + cvCarn*cvCarn))
	}

	quality := qualityWeightRatio*ratioSum/float64(n) +
		qualityWeightStability*stability +
		qualityWeightFitness*fitnessSum/float64(n)
	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
