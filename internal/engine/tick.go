package engine

import "github.com/talgya/steadhold/internal/tuning"

// Outcome reports what one day-transition did, for logging and persistence.
type Outcome struct {
	Day        int
	Deficit    float64
	MoraleLoss float64
	Deaths     int
	Emigrants  int
	Triggered  *EventKind
	Ended      bool
	EndReason  EndReason
}

// Advance runs the fixed phase order for one day on the shared record.
// A tick on an ended run is a no-op. Pause handling lives in the Engine
// wrapper; this function always advances when called.
func Advance(st *SettlementState, tn *tuning.Tuning) Outcome {
	if st.Ended {
		return Outcome{Day: st.Day, Ended: true, EndReason: st.EndReason}
	}

	out := Outcome{Day: st.Day}

	// 1. Workforce invariant before anything consumes labor figures.
	Reconcile(st, SlotNone)

	// 2. Policy timers count down, floored at zero.
	if st.RationingDaysLeft > 0 {
		st.RationingDaysLeft--
	}
	if st.FeastingDaysLeft > 0 {
		st.FeastingDaysLeft--
	}

	// 3–4. Production, then wear.
	rates := ComputeRates(st, tn)
	applyProduction(st, tn, rates)
	applyToolingDecay(st, rates)

	// 5–6. Consumption and its consequences.
	out.Deficit = applyConsumption(st, tn)
	starved := applyStarvation(st, tn, out.Deficit)
	out.MoraleLoss = starved.MoraleLoss
	out.Deaths = starved.Deaths

	// 7–8. Pressures from today's shortfall, then legitimacy from the
	// now-current pressures. Morale drift applies in every rule set.
	if tn.Modules.Pressure {
		applyPressure(st, tn, out.Deficit, starved.Deaths)
		applyLegitimacy(st, tn)
	}
	applyMoraleDrift(st, tn)

	// 9. Departures.
	if tn.Modules.Emigration {
		out.Emigrants = applyEmigration(st, tn)
	}

	// 10. Random occurrences.
	if tn.Modules.Events {
		out.Triggered = maybeTriggerEvent(st, tn, st.stream())
	}

	// 11. Terminal conditions in fixed priority. The first match ends the
	// run and the day counter stays put.
	switch {
	case st.Population <= 0:
		endRun(st, EndPopulationCollapse)
	case st.Population <= tn.Terminal.AbandonmentFloor:
		endRun(st, EndAbandonment)
	case st.Legitimacy <= 0:
		endRun(st, EndLegitimacyCollapse)
	case st.Day >= tn.Terminal.VictoryDay:
		endRun(st, EndVictory)
	default:
		// 12. Tomorrow.
		st.Day++
	}

	out.Ended = st.Ended
	out.EndReason = st.EndReason
	return out
}

func endRun(st *SettlementState, reason EndReason) {
	st.Ended = true
	st.EndReason = reason
}
