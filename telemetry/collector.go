package telemetry

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/island"
)

// Collector accumulates events during a year and produces YearStats. It
// implements island.Recorder.
type Collector struct {
	births     [components.NumSpecies]int
	deaths     [components.NumSpecies]int
	migrations [components.NumSpecies]int
	kills      int

	history []YearStats
}

var _ island.Recorder = (*Collector)(nil)

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordBirths records n births of species s.
func (c *Collector) RecordBirths(s components.Species, n int) {
	c.births[s] += n
}

// RecordDeaths records n deaths of species s.
func (c *Collector) RecordDeaths(s components.Species, n int) {
	c.deaths[s] += n
}

// RecordKills records n herbivores killed by carnivores.
func (c *Collector) RecordKills(n int) {
	c.kills += n
}

// RecordMigrations records n animals of species s changing cell.
func (c *Collector) RecordMigrations(s components.Species, n int) {
	c.migrations[s] += n
}

// Flush samples the island, produces the YearStats for the year just
// simulated, appends it to the history and resets the event counters.
func (c *Collector) Flush(isl *island.Island) YearStats {
	counts := isl.NumAnimalsPerSpecies()
	h, k := components.Herbivore, components.Carnivore

	herbMean, herbP10, herbP50, herbP90 := ComputeWeightStats(isl.Weights(h))
	carnMean, carnP10, carnP50, carnP90 := ComputeWeightStats(isl.Weights(k))
	herbFit, herbFitStd := ComputeMeanStd(isl.Fitnesses(h))
	carnFit, carnFitStd := ComputeMeanStd(isl.Fitnesses(k))
	herbAge, _ := ComputeMeanStd(isl.Ages(h))
	carnAge, _ := ComputeMeanStd(isl.Ages(k))

	var fodder float64
	for _, cc := range isl.Distribution() {
		fodder += cc.Fodder
	}

	stats := YearStats{
		Year: isl.Year(),

		Herbivores: counts[h],
		Carnivores: counts[k],

		HerbBirths:     c.births[h],
		CarnBirths:     c.births[k],
		HerbDeaths:     c.deaths[h],
		CarnDeaths:     c.deaths[k],
		Kills:          c.kills,
		HerbMigrations: c.migrations[h],
		CarnMigrations: c.migrations[k],

		HerbWeightMean: herbMean,
		HerbWeightP10:  herbP10,
		HerbWeightP50:  herbP50,
		HerbWeightP90:  herbP90,

		CarnWeightMean: carnMean,
		CarnWeightP10:  carnP10,
		CarnWeightP50:  carnP50,
		CarnWeightP90:  carnP90,

		HerbFitnessMean: herbFit,
		HerbFitnessStd:  herbFitStd,
		CarnFitnessMean: carnFit,
		CarnFitnessStd:  carnFitStd,
		HerbAgeMean:     herbAge,
		CarnAgeMean:     carnAge,

		TotalFodder: fodder,
	}

	c.births = [components.NumSpecies]int{}
	c.deaths = [components.NumSpecies]int{}
	c.migrations = [components.NumSpecies]int{}
	c.kills = 0

	c.history = append(c.history, stats)
	return stats
}

// History returns every flushed YearStats in order.
func (c *Collector) History() []YearStats {
	return c.history
}

// Totals returns the per-year herbivore and carnivore counts from the history.
func (c *Collector) Totals() (herbivores, carnivores []int) {
	herbivores = make([]int, len(c.history))
	carnivores = make([]int, len(c.history))
	for i, s := range c.history {
		herbivores[i] = s.Herbivores
		carnivores[i] = s.Carnivores
	}
	return herbivores, carnivores
}

// CellSnapshot converts the island's per-cell distribution into CSV rows.
func CellSnapshot(isl *island.Island) []CellStats {
	dist := isl.Distribution()
	rows := make([]CellStats, len(dist))
	for i, cc := range dist {
		rows[i] = CellStats{
			Year:       isl.Year(),
			Row:        cc.Row,
			Col:        cc.Col,
			Terrain:    string(cc.Terrain.Symbol()),
			Fodder:     cc.Fodder,
			Herbivores: cc.Herbivores,
			Carnivores: cc.Carnivores,
		}
	}
	return rows
}
