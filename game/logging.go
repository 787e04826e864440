package game

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/mapgen"
)

// logWorldState logs the island layout and starting population.
func (g *Game) logWorldState() {
	terrain := mapgen.TerrainCounts(g.islandMap)
	slog.Info("island built",
		"rows", g.isl.Rows(),
		"cols", g.isl.Cols(),
		"seed", g.seed,
		"jungle", terrain[components.Jungle],
		"savanna", terrain[components.Savanna],
		"desert", terrain[components.Desert],
		"mountain", terrain[components.Mountain],
		"animals", humanize.Comma(int64(g.isl.NumAnimals())),
	)
}

// LogSummary logs the totals of the run so far.
func (g *Game) LogSummary(elapsed time.Duration) {
	var births, deaths, kills, migrations int
	for _, s := range g.collector.History() {
		births += s.HerbBirths + s.CarnBirths
		deaths += s.HerbDeaths + s.CarnDeaths
		kills += s.Kills
		migrations += s.HerbMigrations + s.CarnMigrations
	}

	years := g.isl.Year()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(years) / elapsed.Seconds()
	}

	slog.Info("run complete",
		"years", years,
		"herbivores", humanize.Comma(int64(g.HerbivoreCount())),
		"carnivores", humanize.Comma(int64(g.CarnivoreCount())),
		"births", humanize.Comma(int64(births)),
		"deaths", humanize.Comma(int64(deaths)),
		"kills", humanize.Comma(int64(kills)),
		"migrations", humanize.Comma(int64(migrations)),
		"bookmarks", len(g.bookmarks),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"years_per_sec", humanize.FormatFloat("#,###.##", rate),
	)
	if dir := g.outputManager.Dir(); dir != "" {
		slog.Info("output written", "dir", dir)
	}
	if g.db != nil {
		slog.Info("run stored", "db", g.cfg.Telemetry.DBPath, "run_id", g.runID)
	}
}
