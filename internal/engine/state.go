// Package engine implements the day-by-day settlement simulation: one shared
// settlement record advanced through a fixed sequence of phases, with all
// randomness drawn from a deterministic seeded stream stored in the record.
package engine

import (
	"github.com/talgya/steadhold/internal/entropy"
	"github.com/talgya/steadhold/internal/tuning"
)

// EndReason classifies how a run finished.
type EndReason uint8

const (
	EndOngoing EndReason = iota
	EndPopulationCollapse
	EndAbandonment
	EndLegitimacyCollapse
	EndVictory
)

func (r EndReason) String() string {
	switch r {
	case EndPopulationCollapse:
		return "population collapse"
	case EndAbandonment:
		return "abandonment"
	case EndLegitimacyCollapse:
		return "legitimacy collapse"
	case EndVictory:
		return "victory"
	default:
		return "ongoing"
	}
}

// LaborSlot names one of the three assignable labor pools.
type LaborSlot uint8

const (
	SlotNone LaborSlot = iota // no slot was just changed
	SlotFood
	SlotMaterial
	SlotTooling
)

// PendingEvent references an event awaiting a player choice. It exists only
// between trigger and resolution.
type PendingEvent struct {
	Kind EventKind `json:"kind"`
}

// SettlementState is the single mutable record the engine owns. The UI and
// API only ever see copies taken through TakeSnapshot.
type SettlementState struct {
	Day        int `json:"day"`
	Population int `json:"population"`

	Food     float64 `json:"food"`
	Material float64 `json:"material"`
	Tooling  float64 `json:"tooling"`

	Morale     float64 `json:"morale"`
	Legitimacy float64 `json:"legitimacy"`

	PressureSub float64 `json:"pressure_subsistence"`
	PressureSec float64 `json:"pressure_security"`
	PressureExt float64 `json:"pressure_extraction"`

	HungerStreak     int `json:"hunger_streak"`
	EmigrationStreak int `json:"emigration_streak"`

	LaborFood     int `json:"labor_food"`
	LaborMaterial int `json:"labor_material"`
	LaborTooling  int `json:"labor_tooling"`

	Farms int `json:"farms"`

	RationingDaysLeft int `json:"rationing_days_left"`
	FeastingDaysLeft  int `json:"feasting_days_left"`

	ActiveEvent *PendingEvent `json:"active_event,omitempty"`

	// RngCursor advances on every draw. Same seed, same decisions, same run.
	RngCursor uint64 `json:"rng_cursor"`

	Ended     bool      `json:"ended"`
	EndReason EndReason `json:"end_reason"`
}

// NewState builds the day-one record from the tuning's starting block.
func NewState(tn *tuning.Tuning, seed string) *SettlementState {
	st := &SettlementState{
		Day:        1,
		Population: tn.Start.Population,
		Food:       tn.Start.Food,
		Material:   tn.Start.Material,
		Tooling:    tn.Start.Tooling,
		Morale:     tn.Start.Morale,
		Legitimacy: tn.Start.Legitimacy,
		Farms:      tn.Start.Farms,
		RngCursor:  entropy.SeedFromString(seed),
	}
	ApplyPreset(st, PresetBalanced)
	return st
}

// stream binds the deterministic draw stream to this record's cursor.
func (st *SettlementState) stream() entropy.Stream {
	return entropy.Bind(&st.RngCursor)
}

// clampMeter keeps a bounded meter inside [0, 100].
func clampMeter(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clampMeters re-bounds every meter; called after any effect that moves them.
func clampMeters(st *SettlementState) {
	st.Morale = clampMeter(st.Morale)
	st.Legitimacy = clampMeter(st.Legitimacy)
	st.PressureSub = clampMeter(st.PressureSub)
	st.PressureSec = clampMeter(st.PressureSec)
	st.PressureExt = clampMeter(st.PressureExt)
	if st.Food < 0 {
		st.Food = 0
	}
	if st.Material < 0 {
		st.Material = 0
	}
	if st.Tooling < 0 {
		st.Tooling = 0
	}
	if st.Population < 0 {
		st.Population = 0
	}
}

// pressureSum is the combined load across the three tracks.
func (st *SettlementState) pressureSum() float64 {
	return st.PressureSub + st.PressureSec + st.PressureExt
}

// Status classifies the settlement for display from morale and the ended
// flag alone.
func Status(st *SettlementState) string {
	switch {
	case st.Ended:
		return "ended"
	case st.Morale >= 60:
		return "stable"
	case st.Morale >= 40:
		return "tense"
	default:
		return "unstable"
	}
}

// OptionView is a resolved event option for display.
type OptionView struct {
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// EventView is the pending event rendered for display.
type EventView struct {
	Kind    string       `json:"kind"`
	Title   string       `json:"title"`
	Text    string       `json:"text"`
	Options []OptionView `json:"options"`
}

// Snapshot is a read-only copy of the settlement record plus derived figures.
// Safe to hand to concurrent readers.
type Snapshot struct {
	Day        int `json:"day"`
	Population int `json:"population"`

	Food     float64 `json:"food"`
	Material float64 `json:"material"`
	Tooling  float64 `json:"tooling"`

	Morale     float64 `json:"morale"`
	Legitimacy float64 `json:"legitimacy"`

	PressureSub float64 `json:"pressure_subsistence"`
	PressureSec float64 `json:"pressure_security"`
	PressureExt float64 `json:"pressure_extraction"`

	HungerStreak     int `json:"hunger_streak"`
	EmigrationStreak int `json:"emigration_streak"`

	LaborFood     int `json:"labor_food"`
	LaborMaterial int `json:"labor_material"`
	LaborTooling  int `json:"labor_tooling"`

	Farms int `json:"farms"`

	RationingDaysLeft int `json:"rationing_days_left"`
	FeastingDaysLeft  int `json:"feasting_days_left"`

	Event *EventView `json:"event,omitempty"`

	Ended     bool   `json:"ended"`
	EndReason string `json:"end_reason"`
	Status    string `json:"status"`

	Rates Rates `json:"rates"`
}

// TakeSnapshot copies the record and attaches the derived per-day rates and
// the status classification.
func TakeSnapshot(st *SettlementState, tn *tuning.Tuning) Snapshot {
	snap := Snapshot{
		Day:               st.Day,
		Population:        st.Population,
		Food:              st.Food,
		Material:          st.Material,
		Tooling:           st.Tooling,
		Morale:            st.Morale,
		Legitimacy:        st.Legitimacy,
		PressureSub:       st.PressureSub,
		PressureSec:       st.PressureSec,
		PressureExt:       st.PressureExt,
		HungerStreak:      st.HungerStreak,
		EmigrationStreak:  st.EmigrationStreak,
		LaborFood:         st.LaborFood,
		LaborMaterial:     st.LaborMaterial,
		LaborTooling:      st.LaborTooling,
		Farms:             st.Farms,
		RationingDaysLeft: st.RationingDaysLeft,
		FeastingDaysLeft:  st.FeastingDaysLeft,
		Ended:             st.Ended,
		EndReason:         st.EndReason.String(),
		Status:            Status(st),
		Rates:             ComputeRates(st, tn),
	}
	if st.ActiveEvent != nil {
		snap.Event = viewOf(st.ActiveEvent.Kind, st, tn)
	}
	return snap
}
