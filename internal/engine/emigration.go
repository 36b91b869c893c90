package engine

import "github.com/talgya/steadhold/internal/tuning"

// applyEmigration removes population through departure, distinct from
// starvation deaths. It only fires when subsistence pressure, security
// pressure and low morale are all beyond their thresholds for several
// consecutive days: short-lived stress does not cause flight. Departures
// cost a little morale and legitimacy on top: loss of faith compounds.
func applyEmigration(st *SettlementState, tn *tuning.Tuning) int {
	e := tn.Emigration

	qualifies := st.PressureSub > e.SubThreshold &&
		st.PressureSec > e.SecThreshold &&
		st.Morale < e.MoraleThreshold
	if !qualifies {
		st.EmigrationStreak = 0
		return 0
	}

	st.EmigrationStreak++
	if st.EmigrationStreak < e.MinStreak {
		return 0
	}

	leaving := e.Base + int(float64(st.Population)*float64(st.EmigrationStreak)*e.StreakMult)
	hi := int(float64(st.Population) * e.MaxRatioPerDay)
	if hi < e.MinPerDay {
		hi = e.MinPerDay
	}
	if leaving < e.MinPerDay {
		leaving = e.MinPerDay
	}
	if leaving > hi {
		leaving = hi
	}
	if leaving > st.Population {
		leaving = st.Population
	}

	st.Population -= leaving
	st.Morale = clampMeter(st.Morale - e.MoraleLoss)
	st.Legitimacy = clampMeter(st.Legitimacy - e.LegitimacyLoss)
	return leaving
}
