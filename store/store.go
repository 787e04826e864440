// Package store persists simulation runs to SQLite: run metadata, the
// per-year population series and per-cell distribution snapshots.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/biosim/telemetry"
)

// DB wraps a SQLite connection holding simulation runs.
type DB struct {
	conn *sqlx.DB
}

// Run is the metadata of one simulation run.
type Run struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	Map       string `db:"island_map"`
	Years     int    `db:"years"`
	CreatedAt int64  `db:"created_at"` // unix seconds
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		island_map TEXT NOT NULL,
		years INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS years (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		herbivores INTEGER NOT NULL,
		carnivores INTEGER NOT NULL,
		herb_births INTEGER NOT NULL,
		carn_births INTEGER NOT NULL,
		herb_deaths INTEGER NOT NULL,
		carn_deaths INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		herb_migrations INTEGER NOT NULL,
		carn_migrations INTEGER NOT NULL,
		herb_weight_mean REAL NOT NULL,
		herb_weight_p10 REAL NOT NULL,
		herb_weight_p50 REAL NOT NULL,
		herb_weight_p90 REAL NOT NULL,
		carn_weight_mean REAL NOT NULL,
		carn_weight_p10 REAL NOT NULL,
		carn_weight_p50 REAL NOT NULL,
		carn_weight_p90 REAL NOT NULL,
		herb_fitness_mean REAL NOT NULL,
		herb_fitness_std REAL NOT NULL,
		carn_fitness_mean REAL NOT NULL,
		carn_fitness_std REAL NOT NULL,
		herb_age_mean REAL NOT NULL,
		carn_age_mean REAL NOT NULL,
		total_fodder REAL NOT NULL,
		PRIMARY KEY (run_id, year)
	);

	CREATE TABLE IF NOT EXISTS cells (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		cell_row INTEGER NOT NULL,
		cell_col INTEGER NOT NULL,
		terrain TEXT NOT NULL,
		fodder REAL NOT NULL,
		herbivores INTEGER NOT NULL,
		carnivores INTEGER NOT NULL,
		PRIMARY KEY (run_id, year, cell_row, cell_col)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

var yearColumns = []string{
	"year", "herbivores", "carnivores",
	"herb_births", "carn_births", "herb_deaths", "carn_deaths", "kills",
	"herb_migrations", "carn_migrations",
	"herb_weight_mean", "herb_weight_p10", "herb_weight_p50", "herb_weight_p90",
	"carn_weight_mean", "carn_weight_p10", "carn_weight_p50", "carn_weight_p90",
	"herb_fitness_mean", "herb_fitness_std", "carn_fitness_mean", "carn_fitness_std",
	"herb_age_mean", "carn_age_mean", "total_fodder",
}

var cellColumns = []string{
	"year", "cell_row", "cell_col", "terrain", "fodder", "herbivores", "carnivores",
}

func insertStmt(table string, cols []string) string {
	return fmt.Sprintf("INSERT OR REPLACE INTO %s (run_id, %s) VALUES (:run_id, :%s)",
		table, strings.Join(cols, ", "), strings.Join(cols, ", :"))
}

type yearRow struct {
	RunID string `db:"run_id"`
	telemetry.YearStats
}

type cellRow struct {
	RunID string `db:"run_id"`
	telemetry.CellStats
}

// CreateRun registers a new run and returns its ID.
func (db *DB) CreateRun(seed uint64, islandMap string, years int) (string, error) {
	run := Run{
		ID:        uuid.NewString(),
		Seed:      int64(seed),
		Map:       islandMap,
		Years:     years,
		CreatedAt: time.Now().Unix(),
	}
	_, err := db.conn.NamedExec(
		`INSERT INTO runs (id, seed, island_map, years, created_at)
		 VALUES (:id, :seed, :island_map, :years, :created_at)`, run)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return run.ID, nil
}

// RecordYear stores the stats of one year of a run.
func (db *DB) RecordYear(runID string, stats telemetry.YearStats) error {
	if _, err := db.conn.NamedExec(insertStmt("years", yearColumns), yearRow{runID, stats}); err != nil {
		return fmt.Errorf("record year %d: %w", stats.Year, err)
	}
	return nil
}

// RecordDistribution stores a per-cell snapshot in a single transaction.
func (db *DB) RecordDistribution(runID string, cells []telemetry.CellStats) error {
	if len(cells) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(insertStmt("cells", cellColumns))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.Exec(cellRow{runID, c}); err != nil {
			return fmt.Errorf("record cell (%d,%d): %w", c.Row, c.Col, err)
		}
	}
	return tx.Commit()
}

// Run returns the metadata of one run.
func (db *DB) Run(id string) (Run, error) {
	var run Run
	err := db.conn.Get(&run,
		"SELECT id, seed, island_map, years, created_at FROM runs WHERE id = ?", id)
	return run, err
}

// Runs lists all runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, seed, island_map, years, created_at FROM runs ORDER BY created_at DESC, id")
	return runs, err
}

// LoadYears returns the yearly series of a run in year order.
func (db *DB) LoadYears(runID string) ([]telemetry.YearStats, error) {
	var years []telemetry.YearStats
	err := db.conn.Select(&years,
		"SELECT "+strings.Join(yearColumns, ", ")+" FROM years WHERE run_id = ? ORDER BY year",
		runID)
	return years, err
}

// LoadDistribution returns the cell snapshot of a run for one year in
// row-major order.
func (db *DB) LoadDistribution(runID string, year int) ([]telemetry.CellStats, error) {
	var cells []telemetry.CellStats
	err := db.conn.Select(&cells,
		"SELECT "+strings.Join(cellColumns, ", ")+
			" FROM cells WHERE run_id = ? AND year = ? ORDER BY cell_row, cell_col",
		runID, year)
	return cells, err
}
