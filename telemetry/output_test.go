package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/biosim/config"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("om=%v err=%v, want nil, nil", om, err)
	}
	// A nil manager ignores writes.
	if err := om.WriteYear(YearStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a directory")
	}
}

func TestOutputManagerWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	c := NewCollector()
	isl := buildIsland(t)
	for year := 0; year < 3; year++ {
		if err := om.WriteYear(c.Flush(isl)); err != nil {
			t.Fatal(err)
		}
		if err := om.WriteDistribution(CellSnapshot(isl)); err != nil {
			t.Fatal(err)
		}
		if err := isl.SimulateOneYear(); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkExtinction, Year: 2, Description: "Carnivores died out"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{YearsPerSecond: 5}, 2); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	var years []YearStats
	readCSV(t, filepath.Join(dir, "population.csv"), &years)
	if len(years) != 3 || years[0].Herbivores != 60 || years[2].Year != 2 {
		t.Errorf("population.csv = %+v", years)
	}

	var cells []CellStats
	readCSV(t, filepath.Join(dir, "distribution.csv"), &cells)
	if len(cells) != 3*20 {
		t.Errorf("distribution.csv has %d rows, want 60", len(cells))
	}

	var bookmarks []Bookmark
	readCSV(t, filepath.Join(dir, "bookmarks.csv"), &bookmarks)
	if len(bookmarks) != 1 || bookmarks[0].Type != BookmarkExtinction {
		t.Errorf("bookmarks.csv = %+v", bookmarks)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func readCSV(t *testing.T, path string, out any) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
}
