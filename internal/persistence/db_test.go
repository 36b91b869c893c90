package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/steadhold/internal/engine"
	"github.com/talgya/steadhold/internal/tuning"
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

func TestRunLedgerLifecycle(t *testing.T) {
	db := openTestDB(t)

	if err := db.StartRun("run-1", "first-seed"); err != nil {
		t.Fatal(err)
	}
	rows, err := db.History(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Seed != "first-seed" || rows[0].EndReason != "ongoing" {
		t.Fatalf("ledger after start: %+v", rows)
	}
	if rows[0].EndedAt.Valid {
		t.Error("ongoing run has an end stamp")
	}

	if err := db.FinishRun("run-1", "victory", 120); err != nil {
		t.Fatal(err)
	}
	rows, _ = db.History(10)
	if rows[0].EndReason != "victory" || rows[0].FinalDay != 120 || !rows[0].EndedAt.Valid {
		t.Errorf("ledger after finish: %+v", rows[0])
	}
}

func TestDayRowsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.StartRun("run-1", "seed"); err != nil {
		t.Fatal(err)
	}

	snap := engine.Snapshot{Population: 28, Food: 94.5, Morale: 63.2, HungerStreak: 1}
	out := engine.Outcome{Day: 4, Deficit: 2.5, Deaths: 1, Emigrants: 0}
	if err := db.RecordDay("run-1", snap, out); err != nil {
		t.Fatal(err)
	}
	// Re-recording the same day must replace, not duplicate.
	if err := db.RecordDay("run-1", snap, out); err != nil {
		t.Fatal(err)
	}

	days, err := db.Days("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Fatalf("got %d day rows, want 1", len(days))
	}
	d := days[0]
	if d.Day != 4 || d.Population != 28 || d.Food != 94.5 || d.Deaths != 1 || d.Deficit != 2.5 {
		t.Errorf("day row = %+v", d)
	}
}

func TestJournalStorage(t *testing.T) {
	db := openTestDB(t)
	events := []engine.Event{
		{Day: 1, Category: "system", Description: "settlement founded"},
		{Day: 3, Category: "shortfall", Description: "demand unmet"},
	}
	if err := db.SaveEvents("run-1", events); err != nil {
		t.Fatal(err)
	}

	got, err := db.RecentEvents("run-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events", len(got))
	}
	// Newest first.
	if got[0].Day != 3 || got[1].Category != "system" {
		t.Errorf("events = %+v", got)
	}

	// Saving again replaces rather than appends.
	if err := db.SaveEvents("run-1", events[:1]); err != nil {
		t.Fatal(err)
	}
	got, _ = db.RecentEvents("run-1", 10)
	if len(got) != 1 {
		t.Errorf("journal not replaced: %d rows", len(got))
	}
}

func TestStateRoundTripKeepsCursor(t *testing.T) {
	db := openTestDB(t)
	tn := tuning.Default()
	st := engine.NewState(tn, "resume-seed")
	engine.Advance(st, tn)
	engine.Advance(st, tn)

	if err := db.SaveState("run-1", st); err != nil {
		t.Fatal(err)
	}
	got, err := db.LoadState("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Day != st.Day || got.RngCursor != st.RngCursor || got.Population != st.Population {
		t.Errorf("restored state diverges: %+v vs %+v", got, st)
	}

	// The restored record must continue the same trajectory.
	engine.Advance(st, tn)
	engine.Advance(got, tn)
	if got.RngCursor != st.RngCursor || got.Food != st.Food {
		t.Error("restored record diverged on the next day")
	}
}

func TestLoadStateMissingRun(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadState("ghost"); err == nil {
		t.Error("expected an error for a run with no stored state")
	}
}

func TestAttachRecordsWholeRun(t *testing.T) {
	db := openTestDB(t)
	tn := tuning.Default()
	tn.Terminal.VictoryDay = 4
	e := engine.New("attached-seed", tn)
	Attach(db, e)

	for !e.Snapshot().Ended {
		e.Step()
	}

	rows, err := db.History(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].EndReason != "victory" || rows[0].FinalDay != 4 {
		t.Fatalf("ledger = %+v", rows)
	}

	days, err := db.Days(e.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 4 {
		t.Errorf("got %d day rows, want 4", len(days))
	}

	st, err := db.LoadState(e.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if !st.Ended {
		t.Error("stored state not marked ended")
	}
}
