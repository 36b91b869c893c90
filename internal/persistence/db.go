// Package persistence provides SQLite-based run storage: the run ledger, the
// per-day history rows, the journal and a resumable copy of the live record.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/steadhold/internal/engine"
)

// DB wraps a SQLite connection for run persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

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
		seed TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		end_reason TEXT NOT NULL DEFAULT 'ongoing',
		final_day INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS days (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		population INTEGER NOT NULL,
		food REAL NOT NULL,
		material REAL NOT NULL,
		tooling REAL NOT NULL,
		morale REAL NOT NULL,
		legitimacy REAL NOT NULL,
		pressure_sub REAL NOT NULL,
		pressure_sec REAL NOT NULL,
		pressure_ext REAL NOT NULL,
		hunger_streak INTEGER NOT NULL,
		deficit REAL NOT NULL,
		deaths INTEGER NOT NULL,
		emigrants INTEGER NOT NULL,
		PRIMARY KEY (run_id, day)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_state (
		run_id TEXT PRIMARY KEY,
		body TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_days_run ON days(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_run_day ON events(run_id, day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a run in the ledger.
func (db *DB) StartRun(runID, seed string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO runs (id, seed, started_at) VALUES (?, ?, ?)",
		runID, seed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("start run %s: %w", runID, err)
	}
	return nil
}

// RecordDay appends one day-transition's row to the run history. Re-recording
// a day replaces the row, so a crash between tick and save stays harmless.
func (db *DB) RecordDay(runID string, snap engine.Snapshot, out engine.Outcome) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO days
		(run_id, day, population, food, material, tooling, morale, legitimacy,
		 pressure_sub, pressure_sec, pressure_ext, hunger_streak, deficit, deaths, emigrants)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, out.Day, snap.Population, snap.Food, snap.Material, snap.Tooling,
		snap.Morale, snap.Legitimacy, snap.PressureSub, snap.PressureSec, snap.PressureExt,
		snap.HungerStreak, out.Deficit, out.Deaths, out.Emigrants,
	)
	if err != nil {
		return fmt.Errorf("record day %d: %w", out.Day, err)
	}
	return nil
}

// SaveEvents replaces the stored journal for the run.
func (db *DB) SaveEvents(runID string, events []engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(
		"INSERT INTO events (run_id, day, category, description) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(runID, e.Day, e.Category, e.Description); err != nil {
			return fmt.Errorf("insert event day %d: %w", e.Day, err)
		}
	}

	return tx.Commit()
}

// SaveState stores the live record as JSON so the run can resume after a
// restart. The RNG cursor rides along, so a resumed run continues the same
// trajectory it would have followed uninterrupted.
func (db *DB) SaveState(runID string, st *engine.SettlementState) error {
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO run_state (run_id, body) VALUES (?, ?)",
		runID, string(body),
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadState restores a stored record, or sql.ErrNoRows if none exists.
func (db *DB) LoadState(runID string) (*engine.SettlementState, error) {
	var body string
	if err := db.conn.Get(&body, "SELECT body FROM run_state WHERE run_id = ?", runID); err != nil {
		return nil, err
	}
	var st engine.SettlementState
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &st, nil
}

// FinishRun stamps the run's end in the ledger.
func (db *DB) FinishRun(runID, reason string, finalDay int) error {
	_, err := db.conn.Exec(
		"UPDATE runs SET ended_at = ?, end_reason = ?, final_day = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), reason, finalDay, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// RunRow is one ledger entry.
type RunRow struct {
	ID        string         `db:"id"`
	Seed      string         `db:"seed"`
	StartedAt string         `db:"started_at"`
	EndedAt   sql.NullString `db:"ended_at"`
	EndReason string         `db:"end_reason"`
	FinalDay  int            `db:"final_day"`
}

// History returns the most recent runs, newest first.
func (db *DB) History(limit int) ([]RunRow, error) {
	var rows []RunRow
	err := db.conn.Select(&rows,
		"SELECT id, seed, started_at, ended_at, end_reason, final_day FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// DayRow is one stored day of a run's history.
type DayRow struct {
	Day          int     `db:"day"`
	Population   int     `db:"population"`
	Food         float64 `db:"food"`
	Material     float64 `db:"material"`
	Tooling      float64 `db:"tooling"`
	Morale       float64 `db:"morale"`
	Legitimacy   float64 `db:"legitimacy"`
	PressureSub  float64 `db:"pressure_sub"`
	PressureSec  float64 `db:"pressure_sec"`
	PressureExt  float64 `db:"pressure_ext"`
	HungerStreak int     `db:"hunger_streak"`
	Deficit      float64 `db:"deficit"`
	Deaths       int     `db:"deaths"`
	Emigrants    int     `db:"emigrants"`
}

// Days returns a run's stored days in order.
func (db *DB) Days(runID string) ([]DayRow, error) {
	var rows []DayRow
	err := db.conn.Select(&rows, `SELECT day, population, food, material, tooling,
		morale, legitimacy, pressure_sub, pressure_sec, pressure_ext,
		hunger_streak, deficit, deaths, emigrants
		FROM days WHERE run_id = ? ORDER BY day`, runID)
	return rows, err
}

// RecentEvents returns the most recent stored journal entries for a run.
func (db *DB) RecentEvents(runID string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT day, category, description FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit,
	)
	return events, err
}

// Attach wires an engine to the database: the ledger row is written now, and
// every completed tick records its day, refreshes the journal and the
// resumable state, and stamps the ledger when the run ends.
func Attach(db *DB, e *engine.Engine) {
	runID := e.RunID()
	if err := db.StartRun(runID, e.Seed()); err != nil {
		slog.Error("run ledger write failed", "error", err)
	}
	e.SetOnTick(func(snap engine.Snapshot, out engine.Outcome) {
		if err := db.RecordDay(runID, snap, out); err != nil {
			slog.Error("day record failed", "day", out.Day, "error", err)
		}
		if err := db.SaveEvents(runID, e.Journal(0)); err != nil {
			slog.Error("journal save failed", "error", err)
		}
		st := e.ExportState()
		if err := db.SaveState(runID, &st); err != nil {
			slog.Error("state save failed", "error", err)
		}
		if out.Ended {
			if err := db.FinishRun(runID, out.EndReason.String(), out.Day); err != nil {
				slog.Error("run ledger close failed", "error", err)
			}
		}
	})
}
