package engine

import (
	"github.com/talgya/steadhold/internal/entropy"
	"github.com/talgya/steadhold/internal/tuning"
)

// EventKind is the closed set of random occurrences. Adding a kind means
// extending each switch below; the compiler and the catalog test keep the
// dispatch exhaustive.
type EventKind uint8

const (
	EventGrainTheft EventKind = iota
	EventWanderers
	EventUnrest
	EventPlot
	EventSmith

	eventKindCount // sentinel, keep last
)

func (k EventKind) String() string {
	switch k {
	case EventGrainTheft:
		return "grain_theft"
	case EventWanderers:
		return "wanderers"
	case EventUnrest:
		return "unrest"
	case EventPlot:
		return "plot"
	case EventSmith:
		return "smith"
	default:
		return "unknown"
	}
}

// eligible reports whether the kind may enter the candidate pool given the
// live state. Conditions mirror the trigger-probability bonuses, plus the
// legitimacy/pressure gate on the plot event.
func eligible(k EventKind, st *SettlementState, tn *tuning.Tuning) bool {
	switch k {
	case EventGrainTheft:
		return st.PressureSub > 40 || st.HungerStreak > 0
	case EventWanderers:
		return true
	case EventUnrest:
		return st.Morale < 45
	case EventPlot:
		return st.Legitimacy < tn.Events.PlotLegitimacyGate &&
			st.pressureSum() > tn.Events.PlotPressureGate
	case EventSmith:
		return st.Material >= 10
	default:
		return false
	}
}

// weightOf is the kind's live selection weight. Weights read state only and
// never draw from the stream.
func weightOf(k EventKind, st *SettlementState) float64 {
	switch k {
	case EventGrainTheft:
		return 10 + st.PressureSub*0.2
	case EventWanderers:
		return 8
	case EventUnrest:
		return 6 + (45-st.Morale)*0.3
	case EventPlot:
		// Coup risk climbs as legitimacy falls.
		return 5 + (40-st.Legitimacy)*0.5
	case EventSmith:
		if st.Tooling < 10 {
			return 10
		}
		return 6
	default:
		return 0
	}
}

func titleOf(k EventKind) (title, text string) {
	switch k {
	case EventGrainTheft:
		return "Theft from the granary",
			"Guards catch a family slipping out of the granary with stolen grain."
	case EventWanderers:
		return "Wanderers at the gate",
			"A ragged band of travelers asks to settle here and work the land."
	case EventUnrest:
		return "A crowd gathers",
			"Angry voices fill the square; the crowd is not yet a mob, but close."
	case EventPlot:
		return "Whispers of a plot",
			"Trusted hands report that several families speak openly of new leadership."
	case EventSmith:
		return "A travelling smith",
			"A smith offers a crate of good tools at a fair price, today only."
	default:
		return "", ""
	}
}

func optionLabels(k EventKind) []string {
	switch k {
	case EventGrainTheft:
		return []string{"Punish the thieves", "Let it pass"}
	case EventWanderers:
		return []string{"Take them in", "Turn them away"}
	case EventUnrest:
		return []string{"Disperse the crowd by force", "Open the granary"}
	case EventPlot:
		return []string{"Purge the plotters", "Look away"}
	case EventSmith:
		return []string{"Buy the crate", "Send him on his way"}
	default:
		return nil
	}
}

// optionGuard is the option's precondition. A failing guard makes the
// resolution a no-op, never a crash.
func optionGuard(k EventKind, idx int, st *SettlementState, tn *tuning.Tuning) bool {
	switch k {
	case EventWanderers:
		if idx == 0 {
			return st.Food >= 20
		}
	case EventUnrest:
		if idx == 1 {
			return st.Food >= float64(st.Population)*0.5
		}
	case EventSmith:
		if idx == 0 {
			return st.Material >= 25
		}
	}
	return true
}

// applyOption applies the chosen option's effect. Effects may draw from the
// stream; those draws are the only ones an event resolution accounts for.
func applyOption(k EventKind, idx int, st *SettlementState, tn *tuning.Tuning, s entropy.Stream) {
	switch k {
	case EventGrainTheft:
		if idx == 0 {
			st.Morale -= 3
			st.PressureSec -= 3
			st.Legitimacy += 2
		} else {
			st.Morale += 2
			st.PressureSub += 3
			st.Legitimacy -= 2
		}
	case EventWanderers:
		if idx == 0 {
			st.Population += s.DrawInt(2, 5)
			st.Food -= 15
			st.Morale += 1
		} else {
			st.Morale -= 1
			st.Legitimacy -= 1
		}
	case EventUnrest:
		if idx == 0 {
			st.PressureSec += 6
			st.Morale -= 4
			st.Legitimacy += 1
		} else {
			st.Food -= float64(st.Population) * 0.5
			st.Morale += 5
			st.PressureSub -= 4
		}
	case EventPlot:
		if idx == 0 {
			purged := s.DrawInt(1, 3)
			if purged > st.Population {
				purged = st.Population
			}
			st.Population -= purged
			st.Legitimacy += 6
			st.PressureSec -= 3
			st.Morale -= 3
		} else {
			st.Legitimacy -= 5
		}
	case EventSmith:
		if idx == 0 {
			st.Material -= 25
			st.Tooling += float64(s.DrawInt(6, 10))
		}
	}
	clampMeters(st)
	// Population changes can strand labor above the new headcount.
	Reconcile(st, SlotNone)
}

// viewOf renders a pending event for display, with each option's guard
// evaluated against the live state.
func viewOf(k EventKind, st *SettlementState, tn *tuning.Tuning) *EventView {
	title, text := titleOf(k)
	labels := optionLabels(k)
	view := &EventView{
		Kind:    k.String(),
		Title:   title,
		Text:    text,
		Options: make([]OptionView, len(labels)),
	}
	for i, label := range labels {
		view.Options[i] = OptionView{
			Label:     label,
			Available: optionGuard(k, i, st, tn),
		}
	}
	return view
}

// maybeTriggerEvent runs the idle→pending transition: one trigger draw
// against the conditional probability, then a cumulative-weight draw over
// the eligible pool. While an event is pending no new one can trigger, so
// no draw is consumed.
func maybeTriggerEvent(st *SettlementState, tn *tuning.Tuning, s entropy.Stream) *EventKind {
	if st.ActiveEvent != nil {
		return nil
	}

	e := tn.Events
	chance := e.BaseChance
	if st.Morale < e.LowMoraleLine {
		chance += e.LowMoraleBonus
	}
	if st.PressureSub > e.SubPressureLine {
		chance += e.SubBonus
	}
	if st.PressureSec > e.SecPressureLine {
		chance += e.SecBonus
	}

	if s.Draw() >= chance {
		return nil
	}

	var pool []EventKind
	total := 0.0
	for k := EventKind(0); k < eventKindCount; k++ {
		if !eligible(k, st, tn) {
			continue
		}
		w := weightOf(k, st)
		if w <= 0 {
			continue
		}
		pool = append(pool, k)
		total += w
	}
	if len(pool) == 0 {
		return nil
	}

	r := s.Draw() * total
	acc := 0.0
	picked := pool[len(pool)-1]
	for _, k := range pool {
		acc += weightOf(k, st)
		if r < acc {
			picked = k
			break
		}
	}

	st.ActiveEvent = &PendingEvent{Kind: picked}
	return &picked
}
