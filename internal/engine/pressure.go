package engine

import "github.com/talgya/steadhold/internal/tuning"

// applyPressure updates the three slow accumulators from the day's shortfall
// and death toll. Each track rises under its triggering condition and decays
// otherwise, with the decay itself slowed while conditions stay adverse.
func applyPressure(st *SettlementState, tn *tuning.Tuning, deficit float64, deaths int) {
	p := tn.Pressure

	// Subsistence: rises with the shortfall ratio and the hunger streak.
	if deficit > 0 {
		demand := demandFor(st, tn)
		ratio := 0.0
		if demand > 0 {
			ratio = deficit / demand
		}
		st.PressureSub += ratio*p.SubsistenceRise + float64(st.HungerStreak)*p.SubsistenceStreak
	} else {
		decay := p.SubsistenceDecay
		if st.Morale < p.MoraleLine {
			decay *= p.AdverseDecayScale
		}
		st.PressureSub -= decay
	}

	// Security: rises in proportion to how far morale sits below the line.
	if st.Morale < p.MoraleLine {
		st.PressureSec += (p.MoraleLine - st.Morale) * p.SecurityRise
	} else {
		decay := p.SecurityDecay
		if st.PressureSub > 50 {
			decay *= p.AdverseDecayScale
		}
		st.PressureSec -= decay
	}

	// Extraction: reserved hook, currently only decays.
	st.PressureExt -= p.ExtractionDecay

	// Deaths shock both subsistence and security at once.
	if deaths > 0 {
		st.PressureSub += float64(deaths) * p.DeathShockSub
		st.PressureSec += float64(deaths) * p.DeathShockSec
	}

	st.PressureSub = clampMeter(st.PressureSub)
	st.PressureSec = clampMeter(st.PressureSec)
	st.PressureExt = clampMeter(st.PressureExt)
}

// applyLegitimacy bleeds legitimacy under load, or recovers it once every
// stressor is simultaneously low. The asymmetry is deliberate hysteresis: a
// settlement under sustained stress bleeds monotonically, and only a fully
// calm one heals.
func applyLegitimacy(st *SettlementState, tn *tuning.Tuning) {
	p := tn.Pressure

	calm := st.pressureSum() < p.CalmThreshold &&
		st.Morale >= p.CalmMoraleFloor &&
		st.Legitimacy < p.RecoveryCap
	if calm {
		st.Legitimacy += p.RecoveryPerDay
	} else {
		bleed := p.BleedBase +
			st.PressureSub*p.BleedSubWeight +
			st.PressureSec*p.BleedSecWeight +
			st.PressureExt*p.BleedExtWeight
		st.Legitimacy -= bleed
	}
	st.Legitimacy = clampMeter(st.Legitimacy)
}

// applyMoraleDrift moves morale a small fixed amount per day: up while the
// granary holds a real surplus (capped so drift alone cannot stabilize a
// settlement), down near the ceiling so morale never saturates at 100.
func applyMoraleDrift(st *SettlementState, tn *tuning.Tuning) {
	p := tn.Pressure

	if st.Food > float64(st.Population)*p.DriftSurplusMult && st.Morale < p.DriftGainCap {
		st.Morale += p.DriftGain
		if st.Morale > p.DriftGainCap {
			st.Morale = p.DriftGainCap
		}
	}
	if st.Morale > p.DriftLossAbove {
		st.Morale -= p.DriftLoss
	}
	st.Morale = clampMeter(st.Morale)
}
