// Package game runs a configured island headlessly: it builds the island from
// a config, advances it year by year, applies scheduled population
// injections and feeds every year into telemetry, CSV output and the run store.
package game

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/store"
	"github.com/pthm-cable/biosim/telemetry"
)

// Telemetry window sizes.
const (
	perfWindowYears     = 10
	bookmarkWindowYears = 20
)

var errStopped = errors.New("run stopped")

// Options configures a new game.
type Options struct {
	Config *config.Config // nil loads the built-in defaults
	Seed   uint64         // 0 uses Config.Simulation.Seed

	// StatsCallback receives every flushed YearStats, starting with year 0.
	StatsCallback func(telemetry.YearStats)
}

// Game holds one simulation run and its telemetry sinks.
type Game struct {
	cfg       *config.Config
	isl       *island.Island
	islandMap string
	seed      uint64

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	db               *store.DB
	runID            string

	statsCallback    func(telemetry.YearStats)
	logStats         bool
	last             telemetry.YearStats
	bookmarks        []telemetry.Bookmark
	lastSnapshotYear int
}

// NewGameWithOptions builds the island described by the config, opens the
// configured outputs and records year 0.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, err
		}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}

	params, err := cfg.Parameters()
	if err != nil {
		return nil, err
	}
	islandMap, err := islandMap(cfg)
	if err != nil {
		return nil, fmt.Errorf("generating map: %w", err)
	}

	g := &Game{
		cfg:              cfg,
		islandMap:        islandMap,
		seed:             seed,
		collector:        telemetry.NewCollector(),
		perfCollector:    telemetry.NewPerfCollector(perfWindowYears),
		bookmarkDetector: telemetry.NewBookmarkDetector(bookmarkWindowYears),
		statsCallback:    opts.StatsCallback,
		logStats:         cfg.Telemetry.LogStats,
		lastSnapshotYear: -1,
	}

	g.isl, err = island.Build(islandMap, cfg.Derived.Population,
		island.WithSeed(seed),
		island.WithParameters(params),
		island.WithRecorder(g.collector),
		island.WithTimer(g.perfCollector),
	)
	if err != nil {
		return nil, fmt.Errorf("building island: %w", err)
	}
	if err := g.injectScheduled(); err != nil {
		return nil, err
	}

	if err := g.openOutputs(); err != nil {
		g.Unload()
		return nil, err
	}

	if g.logStats {
		g.logWorldState()
	}
	g.flushTelemetry()
	return g, nil
}

func (g *Game) openOutputs() error {
	om, err := telemetry.NewOutputManager(g.cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	g.outputManager = om
	if err := om.WriteConfig(g.cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if path := g.cfg.Telemetry.DBPath; path != "" {
		db, err := store.Open(path)
		if err != nil {
			return err
		}
		g.db = db
		if g.runID, err = db.CreateRun(g.seed, g.islandMap, g.cfg.Simulation.Years); err != nil {
			return err
		}
	}
	return nil
}

// Step simulates one year.
func (g *Game) Step() error {
	if err := g.isl.SimulateOneYear(); err != nil {
		return err
	}
	return g.afterYear()
}

// Run simulates the given number of years. stop is consulted after every
// year and ends the run early when it returns true. A distribution snapshot
// of the final year is always written.
func (g *Game) Run(years int, stop func(telemetry.YearStats) bool) error {
	err := g.isl.Simulate(years, func(*island.Island) error {
		if err := g.afterYear(); err != nil {
			return err
		}
		if stop != nil && stop(g.last) {
			return errStopped
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopped) {
		return err
	}
	if g.lastSnapshotYear != g.isl.Year() {
		g.snapshotDistribution()
	}
	return nil
}

func (g *Game) afterYear() error {
	g.flushTelemetry()
	return g.injectScheduled()
}

// Unload closes the output files and the run store.
func (g *Game) Unload() error {
	var errs []error
	if err := g.outputManager.Close(); err != nil {
		errs = append(errs, err)
	}
	if g.db != nil {
		if err := g.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Island returns the simulated island.
func (g *Game) Island() *island.Island { return g.isl }

// Year returns the number of simulated years.
func (g *Game) Year() int { return g.isl.Year() }

// Map returns the map string the island was built from.
func (g *Game) Map() string { return g.islandMap }

// Seed returns the seed of the island's random source.
func (g *Game) Seed() uint64 { return g.seed }

// RunID returns the run's store ID, empty when no store is configured.
func (g *Game) RunID() string { return g.runID }

// History returns the stats of every year so far, starting with year 0.
func (g *Game) History() []telemetry.YearStats { return g.collector.History() }

// Bookmarks returns every bookmark triggered so far.
func (g *Game) Bookmarks() []telemetry.Bookmark { return g.bookmarks }

// HerbivoreCount returns the current number of herbivores.
func (g *Game) HerbivoreCount() int { return g.isl.NumAnimalsPerSpecies()[components.Herbivore] }

// CarnivoreCount returns the current number of carnivores.
func (g *Game) CarnivoreCount() int { return g.isl.NumAnimalsPerSpecies()[components.Carnivore] }

// LastStats returns the most recently flushed YearStats.
func (g *Game) LastStats() telemetry.YearStats { return g.last }
