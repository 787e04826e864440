// Package mapgen generates island map strings from layered simplex noise.
// Elevation decides ocean, mountain and the lowland/highland split; a second
// moisture layer separates jungle, savanna and desert. The outer ring is
// always ocean so the result is accepted by island.Build.
package mapgen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/biosim/components"
)

// Config holds map generation parameters.
type Config struct {
	Rows, Cols  int
	Seed        int64   // 0 picks a random seed
	Scale       float64 // base noise frequency
	Octaves     int
	Persistence float64 // amplitude multiplier per octave
	Lacunarity  float64 // frequency multiplier per octave
	SeaLevel    float64
	DesertLevel float64
	JungleLevel float64
	MountLevel  float64
	Moisture    float64
}

// DefaultConfig returns a medium-sized island.
func DefaultConfig() Config {
	return Config{
		Rows:        24,
		Cols:        32,
		Seed:        1,
		Scale:       0.12,
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
		SeaLevel:    0.30,
		DesertLevel: 0.38,
		JungleLevel: 0.55,
		MountLevel:  0.80,
		Moisture:    0.55,
	}
}

// Generate builds a map string with cfg.Rows lines of cfg.Cols symbols.
func Generate(cfg Config) (string, error) {
	if cfg.Rows < 3 || cfg.Cols < 3 {
		return "", fmt.Errorf("%w: generated map must be at least 3x3, got %dx%d",
			components.ErrConfiguration, cfg.Rows, cfg.Cols)
	}
	if cfg.Octaves < 1 {
		return "", fmt.Errorf("%w: octaves must be positive", components.ErrConfiguration)
	}
	if cfg.Lacunarity <= 0 {
		cfg.Lacunarity = 2
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int64()
	}
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	var b strings.Builder
	b.Grow(cfg.Rows * (cfg.Cols + 1))
	for r := 0; r < cfg.Rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < cfg.Cols; c++ {
			t := components.Ocean
			if r > 0 && c > 0 && r < cfg.Rows-1 && c < cfg.Cols-1 {
				x, y := float64(c), float64(r)
				elev := octaveNoise(elevNoise, x, y, cfg) * edgeFalloff(r, c, cfg.Rows, cfg.Cols)
				moist := octaveNoise(moistNoise, x, y, cfg)
				t = deriveTerrain(elev, moist, cfg)
			}
			b.WriteByte(t.Symbol())
		}
	}
	return b.String(), nil
}

func deriveTerrain(elev, moist float64, cfg Config) components.Terrain {
	switch {
	case elev < cfg.SeaLevel:
		return components.Ocean
	case elev > cfg.MountLevel:
		return components.Mountain
	case elev < cfg.DesertLevel:
		// Coastal strip.
		return components.Desert
	case elev < cfg.JungleLevel:
		if moist > cfg.Moisture {
			return components.Jungle
		}
		return components.Savanna
	default:
		if moist > cfg.Moisture {
			return components.Savanna
		}
		return components.Desert
	}
}

func octaveNoise(noise opensimplex.Noise, x, y float64, cfg Config) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	frequency := cfg.Scale

	for i := 0; i < cfg.Octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= cfg.Persistence
		frequency *= cfg.Lacunarity
	}
	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}

// edgeFalloff pulls elevation toward zero near the map edges.
func edgeFalloff(r, c, rows, cols int) float64 {
	dy := math.Abs(2*float64(r)/float64(rows-1) - 1)
	dx := math.Abs(2*float64(c)/float64(cols-1) - 1)
	return math.Max(0, 1-math.Pow(math.Max(dx, dy), 3.5))
}

// TerrainCounts returns how many cells of each terrain a map string holds.
// Unknown symbols and whitespace are ignored.
func TerrainCounts(m string) map[components.Terrain]int {
	counts := make(map[components.Terrain]int)
	for i := 0; i < len(m); i++ {
		if t, ok := components.TerrainFromSymbol(m[i]); ok {
			counts[t]++
		}
	}
	return counts
}
