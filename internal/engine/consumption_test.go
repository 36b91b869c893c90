package engine

import (
	"math"
	"testing"
)

func TestDemandPolicyScaling(t *testing.T) {
	tn := quietTuning()
	st := &SettlementState{Population: 40}

	base := demandFor(st, tn)
	if math.Abs(base-40*tn.Consumption.PerCapita) > 1e-9 {
		t.Fatalf("base demand = %v", base)
	}

	st.RationingDaysLeft = 3
	if got := demandFor(st, tn); math.Abs(got-base*tn.Consumption.RationingFactor) > 1e-9 {
		t.Errorf("rationed demand = %v", got)
	}

	st.RationingDaysLeft = 0
	st.FeastingDaysLeft = 3
	if got := demandFor(st, tn); math.Abs(got-base*tn.Consumption.FeastFactor) > 1e-9 {
		t.Errorf("feast demand = %v", got)
	}
}

func TestConsumptionDeficitAndStreak(t *testing.T) {
	tn := quietTuning()
	st := &SettlementState{Population: 30, Food: 20, HungerStreak: 4}

	deficit := applyConsumption(st, tn)
	if math.Abs(deficit-10) > 1e-9 {
		t.Errorf("deficit = %v, want 10", deficit)
	}
	if st.Food != 0 {
		t.Errorf("food = %v, want 0 (never negative)", st.Food)
	}
	if st.HungerStreak != 5 {
		t.Errorf("streak = %d, want 5", st.HungerStreak)
	}

	// A fully fed day resets the streak to zero, not decrement.
	st.Food = 100
	if d := applyConsumption(st, tn); d != 0 {
		t.Fatalf("unexpected deficit %v", d)
	}
	if st.HungerStreak != 0 {
		t.Errorf("streak = %d, want 0 after a fed day", st.HungerStreak)
	}
}

func TestStarvationMoraleLossBand(t *testing.T) {
	tn := quietTuning()
	c := tn.Consumption

	// A trace shortfall still costs the minimum.
	st := &SettlementState{Population: 30, Morale: 50}
	out := applyStarvation(st, tn, 0.1)
	if math.Abs(out.MoraleLoss-c.MoraleLossMin) > 1e-9 {
		t.Errorf("tiny-deficit loss = %v, want floor %v", out.MoraleLoss, c.MoraleLossMin)
	}

	// A catastrophic shortfall with a long streak saturates at twice the
	// base ceiling, never beyond.
	st = &SettlementState{Population: 300, Morale: 90, HungerStreak: 50}
	out = applyStarvation(st, tn, 200)
	if math.Abs(out.MoraleLoss-2*c.MoraleLossMax) > 1e-9 {
		t.Errorf("escalated loss = %v, want ceiling %v", out.MoraleLoss, 2*c.MoraleLossMax)
	}
}

func TestStarvationEscalationGrowsWithStreak(t *testing.T) {
	tn := quietTuning()
	fresh := &SettlementState{Population: 30, Morale: 80}
	starved := &SettlementState{Population: 30, Morale: 80, HungerStreak: 5}

	a := applyStarvation(fresh, tn, 4)
	b := applyStarvation(starved, tn, 4)
	if b.MoraleLoss <= a.MoraleLoss {
		t.Errorf("streak did not escalate morale loss: %v vs %v", b.MoraleLoss, a.MoraleLoss)
	}
}

func TestHardFamineCutoff(t *testing.T) {
	tn := quietTuning()

	// Below the serious-famine line: morale only, nobody dies.
	st := &SettlementState{Population: 30, Morale: 60}
	out := applyStarvation(st, tn, 5) // serious line is 30*0.25 = 7.5
	if out.Deaths != 0 {
		t.Errorf("non-serious deficit killed %d", out.Deaths)
	}
	if st.Population != 30 {
		t.Errorf("population = %d, want 30", st.Population)
	}

	// Above it, people die.
	st = &SettlementState{Population: 30, Morale: 60}
	out = applyStarvation(st, tn, 10)
	if out.Deaths == 0 {
		t.Error("serious deficit killed nobody")
	}

	// With the cutoff rule disabled even small deficits can kill.
	tn.Modules.HardFamineCutoff = false
	st = &SettlementState{Population: 30, Morale: 60}
	out = applyStarvation(st, tn, 1)
	if out.Deaths == 0 {
		t.Error("cutoff disabled but small deficit killed nobody")
	}
}

func TestStarvationDeathFloorScalesWithPopulation(t *testing.T) {
	tn := quietTuning()
	tn.Modules.HardFamineCutoff = false

	st := &SettlementState{Population: 1000, Morale: 60}
	out := applyStarvation(st, tn, 1)
	wantFloor := int(1000 * tn.Consumption.MinDeathRatio)
	if out.Deaths != wantFloor {
		t.Errorf("deaths = %d, want population-scaled floor %d", out.Deaths, wantFloor)
	}
}

func TestStarvationDeathsCappedByRatio(t *testing.T) {
	tn := quietTuning()
	st := &SettlementState{Population: 100, Morale: 60, HungerStreak: 10}

	out := applyStarvation(st, tn, 80)
	cap := int(100 * tn.Consumption.MaxDeathRatio)
	if out.Deaths != cap {
		t.Errorf("deaths = %d, want ratio cap %d", out.Deaths, cap)
	}
	if st.Population != 100-cap {
		t.Errorf("population = %d", st.Population)
	}
}

func TestStarvationNeverExceedsPopulation(t *testing.T) {
	tn := quietTuning()
	tn.Consumption.MaxDeathRatio = 10 // pathological override
	st := &SettlementState{Population: 3, Morale: 10, HungerStreak: 30}

	applyStarvation(st, tn, 500)
	if st.Population < 0 {
		t.Errorf("population went negative: %d", st.Population)
	}
}
