package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/mapgen"
)

// islandMap returns the configured map string, or a generated one when
// generation is enabled.
func islandMap(cfg *config.Config) (string, error) {
	gen := cfg.Island.Generate
	if !gen.Enabled {
		return cfg.Island.Map, nil
	}
	return mapgen.Generate(mapgen.Config{
		Rows:        gen.Rows,
		Cols:        gen.Cols,
		Seed:        gen.Seed,
		Scale:       gen.Scale,
		Octaves:     gen.Octaves,
		Persistence: gen.Persistence,
		Lacunarity:  gen.Lacunarity,
		SeaLevel:    gen.SeaLevel,
		DesertLevel: gen.DesertLevel,
		JungleLevel: gen.JungleLevel,
		MountLevel:  gen.MountLevel,
		Moisture:    gen.Moisture,
	})
}

// injectScheduled adds the population scheduled for the current year. It runs
// between years, so animals injected at year N take part from year N+1.
func (g *Game) injectScheduled() error {
	year := g.isl.Year()
	pop, ok := g.cfg.Derived.Injections[year]
	if !ok {
		return nil
	}
	if err := g.isl.AddPopulation(pop); err != nil {
		return fmt.Errorf("injection at year %d: %w", year, err)
	}

	if g.logStats {
		n := 0
		for _, p := range pop {
			n += len(p.Pop)
		}
		slog.Info("population injected", "year", year, "animals", n)
	}
	return nil
}
