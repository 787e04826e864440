// Package main provides CMA-ES optimization for finding species parameters
// that keep herbivores and carnivores coexisting on the island.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/biosim/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// populationSize returns the CMA-ES population: the configured size, or
// 4 + floor(3 ln n) when it is zero.
func populationSize(configured, dim int) int {
	if configured > 0 {
		return configured
	}
	return 4 + int(3.0*math.Log(float64(dim)))
}

// evalSeeds returns the fixed seeds every evaluation runs with.
func evalSeeds(n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = uint64(i*1000 + 42)
	}
	return seeds
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	years := flag.Int("years", 0, "Years per simulation run (0 = optimize.years from config)")
	seeds := flag.Int("seeds", 0, "Number of seeds per evaluation (0 = optimize.seeds from config)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = optimize.max_evals from config)")
	population := flag.Int("population", -1, "CMA-ES population size (0 = auto, -1 = optimize.population from config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	opt := baseCfg.Optimize
	if *years > 0 {
		opt.Years = *years
	}
	if *seeds > 0 {
		opt.Seeds = *seeds
	}
	if *maxEvals > 0 {
		opt.MaxEvals = *maxEvals
	}
	if *population >= 0 {
		opt.Population = *population
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, opt.Years, evalSeeds(opt.Seeds), baseCfg)

	// Start from the base config's effective values.
	start, err := params.ExtractFromConfig(baseCfg)
	if err != nil {
		log.Fatalf("invalid base parameters: %v", err)
	}
	dim := params.Dim()
	initX := params.Normalize(params.Clamp(start))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: opt.MaxEvals,
		Concurrent:      0, // Sequential evaluation; seeds run in parallel
	}

	popSize := populationSize(opt.Population, dim)
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	// Open log file
	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	// Track evaluations and timing
	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	// Wrap the function to log evaluations
	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		// Clamped values are the ones actually simulated
		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		quality := evaluator.LastQuality()
		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.4f", quality)}
		for _, v := range clamped {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(opt.MaxEvals-evalCount) * avgPerEval

		// Fitness = -(survivalYears × (1 + 0.2×quality))
		survival := -fitness / (1.0 + 0.2*quality)
		fmt.Printf("Eval %d/%d: survived=%.0fy quality=%.2f (best=%.1f) | elapsed: %s, ETA: %s\n",
			evalCount, opt.MaxEvals, survival, quality, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, opt.MaxEvals)
	fmt.Printf("Seeds per evaluation: %d, years per run: %d\n", opt.Seeds, opt.Years)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.1f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s.%s: %.6f\n", spec.Species, spec.Param, bestParams[i])
	}

	// Save best config
	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}

	// Save the population series of the best run
	if history := evaluator.BestHistory(); len(history) > 0 {
		historyPath := filepath.Join(*outputDir, "best_history.csv")
		f, err := os.Create(historyPath)
		if err != nil {
			log.Printf("failed to create best history: %v", err)
			return
		}
		defer f.Close()
		if err := gocsv.MarshalFile(&history, f); err != nil {
			log.Printf("failed to write best history: %v", err)
		} else {
			fmt.Printf("Best run history saved to: %s\n", historyPath)
		}
	}
}
