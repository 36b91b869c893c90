package engine

import (
	"math"

	"github.com/talgya/steadhold/internal/tuning"
)

// demandFor is the day's food demand: per-capita consumption scaled by any
// active policy. Policies are mutually exclusive by construction.
func demandFor(st *SettlementState, tn *tuning.Tuning) float64 {
	demand := float64(st.Population) * tn.Consumption.PerCapita
	switch {
	case st.RationingDaysLeft > 0:
		demand *= tn.Consumption.RationingFactor
	case st.FeastingDaysLeft > 0:
		demand *= tn.Consumption.FeastFactor
	}
	return demand
}

// applyConsumption removes the day's demand from the food stock and returns
// the shortfall. The hunger streak counts consecutive unmet days and resets
// on any day fully fed.
func applyConsumption(st *SettlementState, tn *tuning.Tuning) float64 {
	demand := demandFor(st, tn)
	deficit := demand - st.Food
	if deficit < 0 {
		deficit = 0
	}
	st.Food -= demand
	if st.Food < 0 {
		st.Food = 0
	}

	if deficit > 0 {
		st.HungerStreak++
	} else {
		st.HungerStreak = 0
	}
	return deficit
}

// StarvationOutcome reports what the day's shortfall cost.
type StarvationOutcome struct {
	MoraleLoss float64
	Deaths     int
}

// applyStarvation converts a shortfall into morale loss and, past the
// serious-famine threshold, deaths. Small shortfalls cost morale only.
func applyStarvation(st *SettlementState, tn *tuning.Tuning, deficit float64) StarvationOutcome {
	var out StarvationOutcome
	if deficit <= 0 {
		return out
	}
	c := tn.Consumption

	loss := deficit * c.MoraleLossMult
	if loss < c.MoraleLossMin {
		loss = c.MoraleLossMin
	}
	if loss > c.MoraleLossMax {
		loss = c.MoraleLossMax
	}
	// Streak escalation may push past the base ceiling, but never past twice
	// it. Without the widened ceiling the escalation factor would stop
	// mattering the moment the unescalated loss saturated the band.
	loss *= 1 + float64(st.HungerStreak)*c.HungerEscalation
	if loss < c.MoraleLossMin {
		loss = c.MoraleLossMin
	}
	if loss > 2*c.MoraleLossMax {
		loss = 2 * c.MoraleLossMax
	}
	st.Morale = clampMeter(st.Morale - loss)
	out.MoraleLoss = loss

	serious := deficit > float64(st.Population)*c.SeriousFamineRatio
	if tn.Modules.HardFamineCutoff && !serious {
		return out
	}

	unfed := math.Ceil(deficit / c.PerCapita)
	deaths := int(unfed * (1 + float64(st.HungerStreak)*c.DeathEscalation))

	// The death floor scales with population so large settlements do not
	// shrug off famine with single-digit losses.
	lo := int(float64(st.Population) * c.MinDeathRatio)
	if lo < 1 {
		lo = 1
	}
	hi := int(float64(st.Population) * c.MaxDeathRatio)
	if hi < lo {
		hi = lo
	}
	if deaths < lo {
		deaths = lo
	}
	if deaths > hi {
		deaths = hi
	}
	if deaths > st.Population {
		deaths = st.Population
	}

	st.Population -= deaths
	out.Deaths = deaths
	return out
}
