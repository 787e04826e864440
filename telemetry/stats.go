// Package telemetry collects per-year population statistics, detects notable
// population events and writes the results out as CSV.
package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// YearStats holds the state of the island at the end of one year and the
// events that happened during it.
type YearStats struct {
	Year int `csv:"year" db:"year"`

	// Population counts at year end
	Herbivores int `csv:"herbivores" db:"herbivores"`
	Carnivores int `csv:"carnivores" db:"carnivores"`

	// Events during the year
	HerbBirths     int `csv:"herb_births" db:"herb_births"`
	CarnBirths     int `csv:"carn_births" db:"carn_births"`
	HerbDeaths     int `csv:"herb_deaths" db:"herb_deaths"`
	CarnDeaths     int `csv:"carn_deaths" db:"carn_deaths"`
	Kills          int `csv:"kills" db:"kills"`
	HerbMigrations int `csv:"herb_migrations" db:"herb_migrations"`
	CarnMigrations int `csv:"carn_migrations" db:"carn_migrations"`

	// Weight distribution (sampled at year end)
	HerbWeightMean float64 `csv:"herb_weight_mean" db:"herb_weight_mean"`
	HerbWeightP10  float64 `csv:"herb_weight_p10" db:"herb_weight_p10"`
	HerbWeightP50  float64 `csv:"herb_weight_p50" db:"herb_weight_p50"`
	HerbWeightP90  float64 `csv:"herb_weight_p90" db:"herb_weight_p90"`

	CarnWeightMean float64 `csv:"carn_weight_mean" db:"carn_weight_mean"`
	CarnWeightP10  float64 `csv:"carn_weight_p10" db:"carn_weight_p10"`
	CarnWeightP50  float64 `csv:"carn_weight_p50" db:"carn_weight_p50"`
	CarnWeightP90  float64 `csv:"carn_weight_p90" db:"carn_weight_p90"`

	// Fitness and age
	HerbFitnessMean float64 `csv:"herb_fitness_mean" db:"herb_fitness_mean"`
	HerbFitnessStd  float64 `csv:"herb_fitness_std" db:"herb_fitness_std"`
	CarnFitnessMean float64 `csv:"carn_fitness_mean" db:"carn_fitness_mean"`
	CarnFitnessStd  float64 `csv:"carn_fitness_std" db:"carn_fitness_std"`
	HerbAgeMean     float64 `csv:"herb_age_mean" db:"herb_age_mean"`
	CarnAgeMean     float64 `csv:"carn_age_mean" db:"carn_age_mean"`

	TotalFodder float64 `csv:"total_fodder" db:"total_fodder"`
}

// Percentile returns the p-th empirical quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(min(max(p, 0), 1), stat.Empirical, sorted, nil)
}

// ComputeWeightStats calculates mean and percentiles.
func ComputeWeightStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return stat.Mean(sorted, nil),
		Percentile(sorted, 0.10),
		Percentile(sorted, 0.50),
		Percentile(sorted, 0.90)
}

// ComputeMeanStd calculates the mean and population standard deviation.
func ComputeMeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s YearStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", s.Year),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("herb_births", s.HerbBirths),
		slog.Int("carn_births", s.CarnBirths),
		slog.Int("herb_deaths", s.HerbDeaths),
		slog.Int("carn_deaths", s.CarnDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("herb_migrations", s.HerbMigrations),
		slog.Int("carn_migrations", s.CarnMigrations),
		slog.Float64("herb_weight_mean", s.HerbWeightMean),
		slog.Float64("carn_weight_mean", s.CarnWeightMean),
		slog.Float64("herb_fitness_mean", s.HerbFitnessMean),
		slog.Float64("carn_fitness_mean", s.CarnFitnessMean),
		slog.Float64("total_fodder", s.TotalFodder),
	)
}

// LogStats logs the year stats using slog.
func (s YearStats) LogStats() {
	slog.Info("stats",
		"year", s.Year,
		"herbivores", s.Herbivores,
		"carnivores", s.Carnivores,
		"herb_births", s.HerbBirths,
		"carn_births", s.CarnBirths,
		"herb_deaths", s.HerbDeaths,
		"carn_deaths", s.CarnDeaths,
		"kills", s.Kills,
		"herb_migrations", s.HerbMigrations,
		"carn_migrations", s.CarnMigrations,
		"herb_weight_p50", s.HerbWeightP50,
		"carn_weight_p50", s.CarnWeightP50,
		"herb_fitness_mean", s.HerbFitnessMean,
		"carn_fitness_mean", s.CarnFitnessMean,
		"total_fodder", s.TotalFodder,
	)
}

// CellStats is one row of the per-cell distribution snapshot.
type CellStats struct {
	Year       int     `csv:"year" db:"year"`
	Row        int     `csv:"row" db:"cell_row"`
	Col        int     `csv:"col" db:"cell_col"`
	Terrain    string  `csv:"terrain" db:"terrain"`
	Fodder     float64 `csv:"fodder" db:"fodder"`
	Herbivores int     `csv:"herbivores" db:"herbivores"`
	Carnivores int     `csv:"carnivores" db:"carnivores"`
}
