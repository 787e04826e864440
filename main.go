package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output yearly stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite database for run history")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = use config)")
	years := flag.Int("years", -1, "Years to simulate (-1 = use config)")
	generate := flag.Bool("generate", false, "Generate the island map instead of using the configured one")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI flags override the config file
	if *logStats {
		cfg.Telemetry.LogStats = true
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *dbPath != "" {
		cfg.Telemetry.DBPath = *dbPath
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *years >= 0 {
		cfg.Simulation.Years = *years
	}
	if *generate {
		cfg.Island.Generate.Enabled = true
	}

	g, err := game.NewGameWithOptions(game.Options{Config: cfg})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", g.Seed(),
		"years", cfg.Simulation.Years,
		"rows", g.Island().Rows(),
		"cols", g.Island().Cols(),
		"animals", g.Island().NumAnimals(),
	)

	start := time.Now()
	runErr := g.Run(cfg.Simulation.Years, nil)
	g.LogSummary(time.Since(start))

	if err := g.Unload(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
	if runErr != nil {
		slog.Error("simulation failed", "year", g.Year(), "error", runErr)
		os.Exit(1)
	}
}
