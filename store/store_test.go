package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/biosim/telemetry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateRun(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun(42, "OOO\nOJO\nOOO", 100)
	if err != nil {
		t.Fatal(err)
	}
	run, err := db.Run(id)
	if err != nil {
		t.Fatal(err)
	}
	if run.Seed != 42 || run.Years != 100 || run.Map != "OOO\nOJO\nOOO" {
		t.Errorf("run = %+v", run)
	}

	if _, err := db.CreateRun(7, "OOO\nOSO\nOOO", 10); err != nil {
		t.Fatal(err)
	}
	runs, err := db.Runs()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("runs = %d, want 2", len(runs))
	}

	if _, err := db.Run("missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestRecordAndLoadYears(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateRun(1, "OOO\nOJO\nOOO", 3)
	if err != nil {
		t.Fatal(err)
	}

	for year := 2; year >= 0; year-- {
		stats := telemetry.YearStats{
			Year:           year,
			Herbivores:     100 + year,
			Carnivores:     10 - year,
			Kills:          year * 2,
			HerbWeightP50:  20.5,
			HerbFitnessStd: 0.125,
			TotalFodder:    800,
		}
		if err := db.RecordYear(id, stats); err != nil {
			t.Fatal(err)
		}
	}
	// Re-recording a year replaces it.
	if err := db.RecordYear(id, telemetry.YearStats{Year: 1, Herbivores: 55}); err != nil {
		t.Fatal(err)
	}

	years, err := db.LoadYears(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(years) != 3 {
		t.Fatalf("loaded %d years, want 3", len(years))
	}
	if years[0].Year != 0 || years[2].Year != 2 {
		t.Errorf("years out of order: %d..%d", years[0].Year, years[2].Year)
	}
	if years[2].Herbivores != 102 || years[2].Carnivores != 8 || years[2].Kills != 4 {
		t.Errorf("year 2 = %+v", years[2])
	}
	if years[0].HerbWeightP50 != 20.5 || years[0].HerbFitnessStd != 0.125 {
		t.Errorf("floats not preserved: %+v", years[0])
	}
	if years[1].Herbivores != 55 {
		t.Errorf("year 1 herbivores = %d, want 55", years[1].Herbivores)
	}

	other, err := db.LoadYears("other")
	if err != nil || len(other) != 0 {
		t.Errorf("unknown run: %v, %v", other, err)
	}
}

func TestRecordAndLoadDistribution(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateRun(1, "OOOO\nOJSO\nOOOO", 1)
	if err != nil {
		t.Fatal(err)
	}

	cells := []telemetry.CellStats{
		{Year: 5, Row: 1, Col: 2, Terrain: "S", Fodder: 120, Herbivores: 3},
		{Year: 5, Row: 1, Col: 1, Terrain: "J", Fodder: 800, Herbivores: 9, Carnivores: 2},
		{Year: 5, Row: 0, Col: 0, Terrain: "O"},
	}
	if err := db.RecordDistribution(id, cells); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordDistribution(id, nil); err != nil {
		t.Fatal(err)
	}

	got, err := db.LoadDistribution(id, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("loaded %d cells, want 3", len(got))
	}
	if got[0].Terrain != "O" || got[1] != cells[1] || got[2] != cells[0] {
		t.Errorf("distribution = %+v", got)
	}

	none, err := db.LoadDistribution(id, 6)
	if err != nil || len(none) != 0 {
		t.Errorf("year 6: %v, %v", none, err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	id, err := db.CreateRun(3, "OOO\nOJO\nOOO", 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Run(id); err != nil {
		t.Errorf("run lost after reopen: %v", err)
	}
}
