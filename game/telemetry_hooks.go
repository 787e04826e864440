package game

import (
	"log/slog"

	"github.com/pthm-cable/biosim/telemetry"
)

// flushTelemetry records the year that just ended: stats, bookmarks, CSV
// output, the run store and periodic distribution and perf snapshots.
// Output failures are logged and do not stop the run.
func (g *Game) flushTelemetry() {
	stats := g.collector.Flush(g.isl)
	g.last = stats

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
	}

	if err := g.outputManager.WriteYear(stats); err != nil {
		slog.Error("failed to write population", "error", err)
	}
	if g.db != nil {
		if err := g.db.RecordYear(g.runID, stats); err != nil {
			slog.Error("failed to store year", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		g.bookmarks = append(g.bookmarks, bm)
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}

	every := g.cfg.Simulation.DistributionEvery
	if every > 0 && stats.Year%every == 0 {
		g.snapshotDistribution()
		if stats.Year > 0 {
			g.flushPerf(stats.Year)
		}
	}
}

// snapshotDistribution writes the per-cell counts of the current year.
func (g *Game) snapshotDistribution() {
	cells := telemetry.CellSnapshot(g.isl)
	g.lastSnapshotYear = g.isl.Year()

	if err := g.outputManager.WriteDistribution(cells); err != nil {
		slog.Error("failed to write distribution", "error", err)
	}
	if g.db != nil {
		if err := g.db.RecordDistribution(g.runID, cells); err != nil {
			slog.Error("failed to store distribution", "error", err)
		}
	}
}

func (g *Game) flushPerf(year int) {
	perfStats := g.perfCollector.Stats()
	if g.logStats {
		perfStats.LogStats()
	}
	if err := g.outputManager.WritePerf(perfStats, year); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
