// Package island holds the grid of cells and runs the annual cycle across
// it: feeding, procreation, migration, ageing, weight loss and death.
package island

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

// Island is a rectangular grid of cells surrounded by ocean.
type Island struct {
	rows, cols int
	cells      []*systems.Cell // row-major

	params *components.Parameters
	rng    *rand.Rand
	rec    Recorder
	timer  PhaseTimer

	year int
}

// Option configures an Island at build time.
type Option func(*Island)

// WithRand makes the island draw all randomness from rng.
func WithRand(rng *rand.Rand) Option {
	return func(isl *Island) { isl.rng = rng }
}

// WithSeed seeds a fresh PCG source for the island.
func WithSeed(seed uint64) Option {
	return func(isl *Island) { isl.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithParameters shares p with the island. Later changes to p, directly or
// through the Set*Parameters methods, apply to every animal and cell.
func WithParameters(p *components.Parameters) Option {
	return func(isl *Island) { isl.params = p }
}

// WithRecorder routes births, deaths, kills and migrations to rec.
func WithRecorder(rec Recorder) Option {
	return func(isl *Island) { isl.rec = rec }
}

// WithTimer reports phase timings to timer.
func WithTimer(timer PhaseTimer) Option {
	return func(isl *Island) { isl.timer = timer }
}

// Build parses mapString, creates the cells and places the initial
// population. Map errors wrap components.ErrConfiguration; population errors
// wrap ErrPlacement or ErrValidation and leave no animals placed.
func Build(mapString string, population []components.Placement, opts ...Option) (*Island, error) {
	isl := &Island{rec: nopRecorder{}, timer: nopTimer{}}
	for _, opt := range opts {
		opt(isl)
	}
	if isl.params == nil {
		isl.params = components.DefaultParameters()
	}
	if isl.rng == nil {
		isl.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	grid, err := parseMap(mapString)
	if err != nil {
		return nil, err
	}
	isl.rows, isl.cols = len(grid), len(grid[0])
	isl.cells = make([]*systems.Cell, 0, isl.rows*isl.cols)
	for _, row := range grid {
		for _, t := range row {
			isl.cells = append(isl.cells, systems.NewCell(isl.params.Terrain(t)))
		}
	}

	if err := isl.AddPopulation(population); err != nil {
		return nil, err
	}
	return isl, nil
}

func (isl *Island) inBounds(loc components.Location) bool {
	return loc.Row >= 0 && loc.Row < isl.rows && loc.Col >= 0 && loc.Col < isl.cols
}

func (isl *Island) cell(row, col int) *systems.Cell {
	return isl.cells[row*isl.cols+col]
}

// AddPopulation places animals on the island. Every entry is checked before
// any cell changes, so a failing call places nothing.
func (isl *Island) AddPopulation(population []components.Placement) error {
	total := 0
	for i, p := range population {
		if !isl.inBounds(p.Loc) {
			return fmt.Errorf("%w: entry %d: location %s outside %dx%d grid",
				components.ErrPlacement, i, p.Loc, isl.rows, isl.cols)
		}
		c := isl.cell(p.Loc.Row, p.Loc.Col)
		if !c.Passable() {
			return fmt.Errorf("%w: entry %d: location %s is %s",
				components.ErrPlacement, i, p.Loc, c.Terrain())
		}
		for j, spec := range p.Pop {
			if _, err := spec.Validate(); err != nil {
				return fmt.Errorf("entry %d animal %d: %w", i, j, err)
			}
		}
		total += len(p.Pop)
	}

	for i, p := range population {
		c := isl.cell(p.Loc.Row, p.Loc.Col)
		if err := c.AddAnimals(p.Pop, isl.params, isl.rng); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	if total > 0 {
		slog.Debug("population added", "year", isl.year, "entries", len(population), "animals", total)
	}
	return nil
}

// SetSpeciesParameters updates parameters of the named species. Nothing
// changes unless every name and value is valid.
func (isl *Island) SetSpeciesParameters(species string, values map[string]float64) error {
	s, err := components.ParseSpecies(species)
	if err != nil {
		return err
	}
	if err := isl.params.Species(s).Set(values); err != nil {
		return err
	}
	slog.Debug("species parameters updated", "species", s, "count", len(values))
	return nil
}

// SetTerrainParameters updates parameters of the terrain with the given map
// symbol. Nothing changes unless every name and value is valid.
func (isl *Island) SetTerrainParameters(symbol string, values map[string]float64) error {
	t, err := components.ParseTerrainSymbol(symbol)
	if err != nil {
		return err
	}
	if err := isl.params.Terrain(t).Set(values); err != nil {
		return err
	}
	slog.Debug("terrain parameters updated", "terrain", t, "count", len(values))
	return nil
}

// Parameters returns the island's shared parameter record.
func (isl *Island) Parameters() *components.Parameters {
	return isl.params
}
