package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/steadhold/internal/entropy"
	"github.com/talgya/steadhold/internal/tuning"
	"github.com/talgya/steadhold/internal/world"
)

// Event is one journal entry: a human-readable line about something that
// happened, including rejected player actions.
type Event struct {
	Day         int    `json:"day" db:"day"`
	Category    string `json:"category" db:"category"`
	Description string `json:"description" db:"description"`
}

const maxJournal = 500

// Engine owns one run: the settlement record, the site-adjusted tuning, the
// interval clock and the snapshot subscribers. Every mutation (tick, player
// action, event resolution) serializes through its mutex, preserving phase
// ordering even when the clock runs in its own goroutine.
type Engine struct {
	mu sync.Mutex

	runID string
	seed  string
	site  world.Site
	tn    *tuning.Tuning
	st    *SettlementState

	sched   Scheduler
	paused  bool
	journal []Event

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Snapshot)

	// onTick, when set, is called after every completed day-transition with
	// the fresh snapshot and the day's outcome, outside the engine lock so
	// the callback may call back into the engine. Used for the run ledger.
	// Guarded by mu: the ledger re-attaches on reset while the clock may
	// still be running.
	onTick func(Snapshot, Outcome)
}

// SetOnTick installs the day-transition hook. Safe to call while the clock
// is running; the next completed tick sees the new hook.
func (e *Engine) SetOnTick(fn func(Snapshot, Outcome)) {
	e.mu.Lock()
	e.onTick = fn
	e.mu.Unlock()
}

// New founds a settlement: surveys the site for the seed, scales the base
// tuning by what the land offers, and builds the day-one record.
func New(seed string, tn *tuning.Tuning) *Engine {
	e := &Engine{subs: make(map[int]func(Snapshot))}
	e.found(seed, tn)
	return e
}

func (e *Engine) found(seed string, tn *tuning.Tuning) {
	site := world.Survey(int64(entropy.SeedFromString(seed)))

	adjusted := *tn
	adjusted.Production.BaseFoodRate *= site.Fertility
	adjusted.Production.BaseMaterialRate *= site.Quarry
	// Sheltered country is kind to tools; rough country is not.
	wear := 2 - site.Shelter
	adjusted.Production.ToolingFlatDecay *= wear
	adjusted.Production.ToolingWearPerHead *= wear

	e.runID = uuid.NewString()
	e.seed = seed
	e.site = site
	e.tn = &adjusted
	e.st = NewState(&adjusted, seed)
	e.paused = false
	e.journal = e.journal[:0]
	e.log("system", fmt.Sprintf("settlement founded (fertility %.2f, quarry %.2f, shelter %.2f)",
		site.Fertility, site.Quarry, site.Shelter))
}

// Reset tears the run down and founds a fresh one from the given seed. The
// clock is disarmed first; re-arm it explicitly if scheduled play should
// continue.
func (e *Engine) Reset(seed string) {
	e.sched.Disarm()
	e.mu.Lock()
	base := tuning.Default()
	if e.tn != nil {
		// Re-found from the unadjusted values by re-deriving from defaults
		// plus whatever file overrides produced the current tuning is not
		// recoverable; callers that loaded a file should rebuild via New.
		base = e.baseTuning()
	}
	e.found(seed, base)
	e.mu.Unlock()
	e.notify()
}

// baseTuning undoes the site scaling so a reset re-survey starts clean.
func (e *Engine) baseTuning() *tuning.Tuning {
	base := *e.tn
	base.Production.BaseFoodRate /= e.site.Fertility
	base.Production.BaseMaterialRate /= e.site.Quarry
	wear := 2 - e.site.Shelter
	base.Production.ToolingFlatDecay /= wear
	base.Production.ToolingWearPerHead /= wear
	return &base
}

// RunID identifies this run in the ledger.
func (e *Engine) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// Seed returns the seed text the run was founded from.
func (e *Engine) Seed() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seed
}

// Site returns the founding survey.
func (e *Engine) Site() world.Site {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.site
}

// Tuning returns the site-adjusted parameter set in effect.
func (e *Engine) Tuning() tuning.Tuning {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.tn
}

// ExportState returns a copy of the raw record, cursor included, suitable
// for storage and later restore.
func (e *Engine) ExportState() SettlementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := *e.st
	if st.ActiveEvent != nil {
		ev := *st.ActiveEvent
		st.ActiveEvent = &ev
	}
	return st
}

// RestoreState replaces the live record with a previously exported one. The
// run continues exactly where the export left off.
func (e *Engine) RestoreState(st SettlementState) {
	e.mu.Lock()
	e.st = &st
	e.mu.Unlock()
	e.notify()
}

// Snapshot returns a read-only copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TakeSnapshot(e.st, e.tn)
}

// Journal returns the most recent entries, newest last.
func (e *Engine) Journal(limit int) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := 0
	if limit > 0 && len(e.journal) > limit {
		start = len(e.journal) - limit
	}
	out := make([]Event, len(e.journal)-start)
	copy(out, e.journal[start:])
	return out
}

// Step advances one day by explicit request. Manual stepping ignores pause.
func (e *Engine) Step() Outcome {
	e.mu.Lock()
	out, snap := e.advanceLocked()
	hook := e.onTick
	e.mu.Unlock()
	if hook != nil {
		hook(snap, out)
	}
	e.notify()
	return out
}

// tickScheduled is the clock callback: a no-op while paused or after the end.
func (e *Engine) tickScheduled() {
	e.mu.Lock()
	if e.paused || e.st.Ended {
		e.mu.Unlock()
		return
	}
	out, snap := e.advanceLocked()
	hook := e.onTick
	e.mu.Unlock()
	if hook != nil {
		hook(snap, out)
	}
	e.notify()
}

func (e *Engine) advanceLocked() (Outcome, Snapshot) {
	out := Advance(e.st, e.tn)
	e.recordOutcome(out)
	if out.Ended {
		// Ending the run stops any pending scheduled tick.
		e.sched.Disarm()
	}
	return out, TakeSnapshot(e.st, e.tn)
}

func (e *Engine) recordOutcome(out Outcome) {
	if out.Deficit > 0 {
		e.log("shortfall", fmt.Sprintf("day %d: demand unmet by %.1f, hunger streak %d",
			out.Day, out.Deficit, e.st.HungerStreak))
	}
	if out.Deaths > 0 {
		e.log("death", fmt.Sprintf("day %d: %d dead of famine", out.Day, out.Deaths))
	}
	if out.Emigrants > 0 {
		e.log("emigration", fmt.Sprintf("day %d: %d left for better lands", out.Day, out.Emigrants))
	}
	if out.Triggered != nil {
		title, _ := titleOf(*out.Triggered)
		e.log("event", fmt.Sprintf("day %d: %s", out.Day, title))
	}
	if out.Ended {
		e.log("system", fmt.Sprintf("run ended on day %d: %s", out.Day, out.EndReason))
	}
	slog.Debug("day advanced",
		"day", out.Day,
		"population", e.st.Population,
		"food", fmt.Sprintf("%.1f", e.st.Food),
		"morale", fmt.Sprintf("%.1f", e.st.Morale),
		"legitimacy", fmt.Sprintf("%.1f", e.st.Legitimacy),
		"deficit", fmt.Sprintf("%.1f", out.Deficit),
		"deaths", out.Deaths,
		"emigrants", out.Emigrants,
	)
}

// StartClock arms scheduled mode at the given interval.
func (e *Engine) StartClock(interval time.Duration) {
	e.sched.Arm(interval, e.tickScheduled)
}

// SetInterval re-arms the clock at a new interval, cancelling the pending
// tick first.
func (e *Engine) SetInterval(interval time.Duration) {
	e.sched.Arm(interval, e.tickScheduled)
}

// StopClock leaves scheduled mode.
func (e *Engine) StopClock() {
	e.sched.Disarm()
}

// ClockRunning reports whether scheduled mode is armed.
func (e *Engine) ClockRunning() bool {
	return e.sched.Armed()
}

// Pause suspends scheduled ticking; manual Step still works.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

// Resume lifts a pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
}

// Paused reports the pause flag.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Subscribe registers a callback invoked with a fresh snapshot after every
// mutation. The returned function unsubscribes.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.subMu.Unlock()
	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notify() {
	snap := e.Snapshot()
	e.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (e *Engine) log(category, description string) {
	e.journal = append(e.journal, Event{Day: e.st.Day, Category: category, Description: description})
	if len(e.journal) > maxJournal {
		e.journal = e.journal[len(e.journal)-maxJournal:]
	}
}

// Player actions. Each takes the engine lock, applies or rejects, journals
// the result and pushes a snapshot to subscribers.

// SetLabor assigns workers to a slot.
func (e *Engine) SetLabor(slot LaborSlot, workers int) bool {
	e.mu.Lock()
	ok := SetLabor(e.st, slot, workers)
	if !ok {
		e.log("action", "labor change rejected: run has ended")
	}
	e.mu.Unlock()
	e.notify()
	return ok
}

// BuildFarm constructs a farm if material allows.
func (e *Engine) BuildFarm() bool {
	e.mu.Lock()
	ok := BuildFarm(e.st, e.tn)
	if ok {
		e.log("action", fmt.Sprintf("farm raised (%d total)", e.st.Farms))
	} else {
		e.log("action", "farm rejected: not enough material")
	}
	e.mu.Unlock()
	e.notify()
	return ok
}

// DeclareRationing starts rationing.
func (e *Engine) DeclareRationing() bool {
	e.mu.Lock()
	ok := DeclareRationing(e.st, e.tn)
	if ok {
		e.log("action", fmt.Sprintf("rationing declared for %d days", e.st.RationingDaysLeft))
	}
	e.mu.Unlock()
	e.notify()
	return ok
}

// DeclareFeast starts a feast.
func (e *Engine) DeclareFeast() bool {
	e.mu.Lock()
	ok := DeclareFeast(e.st, e.tn)
	if ok {
		e.log("action", fmt.Sprintf("feast declared for %d days", e.st.FeastingDaysLeft))
	}
	e.mu.Unlock()
	e.notify()
	return ok
}

// ApplyPreset applies a named labor split.
func (e *Engine) ApplyPreset(p Preset) bool {
	e.mu.Lock()
	ok := ApplyPreset(e.st, p)
	if ok {
		e.log("action", fmt.Sprintf("labor preset applied: %s", p))
	} else {
		e.log("action", fmt.Sprintf("labor preset rejected: %s", p))
	}
	e.mu.Unlock()
	e.notify()
	return ok
}

// ResolveEvent applies the chosen option of the pending event.
func (e *Engine) ResolveEvent(idx int) bool {
	e.mu.Lock()
	ok, label := ResolveEvent(e.st, e.tn, idx)
	switch {
	case ok:
		e.log("event", fmt.Sprintf("chose: %s", label))
	case label != "":
		e.log("event", fmt.Sprintf("option unavailable: %s", label))
	default:
		e.log("event", "event resolution rejected: nothing pending")
	}
	e.mu.Unlock()
	e.notify()
	return ok
}
