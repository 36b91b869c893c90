package main

import (
	"database/sql"
	"testing"
	"unicode"

	"github.com/talgya/steadhold/internal/persistence"
)

func TestHistoryRow(t *testing.T) {
	row := historyRow(persistence.RunRow{
		ID:        "b3f2c1a0-0000-0000-0000-000000000000",
		Seed:      "ridgewater-3",
		StartedAt: "2026-08-25T10:00:00Z",
		EndReason: "ongoing",
		FinalDay:  0,
	})

	if row[0] != "b3f2c1a0" || row[1] != "ridgewater-3" {
		t.Errorf("row = %v", row)
	}
	if row[3] != "-" {
		t.Errorf("unfinished run placeholder = %q, want %q", row[3], "-")
	}
	for _, cell := range row {
		for _, r := range cell {
			if r > unicode.MaxASCII {
				t.Errorf("non-ASCII rune %q in cell %q", r, cell)
			}
		}
	}

	done := historyRow(persistence.RunRow{
		ID:        "b3f2c1a0-0000-0000-0000-000000000000",
		Seed:      "ridgewater-3",
		StartedAt: "2026-08-25T10:00:00Z",
		EndedAt:   sql.NullString{String: "2026-08-25T11:30:00Z", Valid: true},
		EndReason: "victory",
		FinalDay:  120,
	})
	if done[3] != "2026-08-25T11:30:00Z" || done[4] != "victory" || done[5] != "120" {
		t.Errorf("finished row = %v", done)
	}
}
