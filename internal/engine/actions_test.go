package engine

import (
	"testing"

	"github.com/talgya/steadhold/internal/tuning"
)

func TestBuildFarmCostAndRejection(t *testing.T) {
	tn := tuning.Default()
	st := NewState(tn, "farm-seed")
	st.Material = tn.Production.FarmCostMaterial
	farms := st.Farms

	if !BuildFarm(st, tn) {
		t.Fatal("farm rejected with exact material")
	}
	if st.Farms != farms+1 || st.Material != 0 {
		t.Errorf("farms=%d material=%v after build", st.Farms, st.Material)
	}

	if BuildFarm(st, tn) {
		t.Error("farm built without material")
	}
	if st.Farms != farms+1 {
		t.Errorf("rejected build still changed farms: %d", st.Farms)
	}
}

func TestPoliciesAreMutuallyExclusive(t *testing.T) {
	tn := tuning.Default()
	st := NewState(tn, "policy-seed")

	DeclareRationing(st, tn)
	if st.RationingDaysLeft != tn.Consumption.PolicyDays || st.FeastingDaysLeft != 0 {
		t.Fatalf("rationing: %d/%d", st.RationingDaysLeft, st.FeastingDaysLeft)
	}

	DeclareFeast(st, tn)
	if st.FeastingDaysLeft != tn.Consumption.PolicyDays || st.RationingDaysLeft != 0 {
		t.Errorf("feast did not displace rationing: %d/%d", st.RationingDaysLeft, st.FeastingDaysLeft)
	}

	// Re-declaring refreshes the timer.
	st.FeastingDaysLeft = 2
	DeclareFeast(st, tn)
	if st.FeastingDaysLeft != tn.Consumption.PolicyDays {
		t.Errorf("feast timer not refreshed: %d", st.FeastingDaysLeft)
	}
}

func TestPresetsCoverWholePopulation(t *testing.T) {
	tn := tuning.Default()
	for _, p := range []Preset{PresetHarvest, PresetBalanced, PresetWorkshop} {
		st := NewState(tn, "preset-seed")
		if !ApplyPreset(st, p) {
			t.Fatalf("%s rejected", p)
		}
		if sum := laborSum(st); sum != st.Population {
			t.Errorf("%s: labor sum %d != population %d", p, sum, st.Population)
		}
		if st.LaborFood < 0 || st.LaborMaterial < 0 || st.LaborTooling < 0 {
			t.Errorf("%s: negative slot %+v", p, st)
		}
	}

	st := NewState(tn, "preset-seed")
	if ApplyPreset(st, Preset("bogus")) {
		t.Error("unknown preset accepted")
	}
}

func TestActionsRejectedAfterEnd(t *testing.T) {
	tn := tuning.Default()
	st := NewState(tn, "end-seed")
	st.Ended = true
	st.EndReason = EndVictory

	if SetLabor(st, SlotFood, 5) {
		t.Error("labor change accepted after end")
	}
	if BuildFarm(st, tn) {
		t.Error("farm accepted after end")
	}
	if DeclareRationing(st, tn) || DeclareFeast(st, tn) {
		t.Error("policy accepted after end")
	}
	if ApplyPreset(st, PresetHarvest) {
		t.Error("preset accepted after end")
	}
	if ok, _ := ResolveEvent(st, tn, 0); ok {
		t.Error("event resolution accepted after end")
	}
}

func TestSetLaborClampsNegative(t *testing.T) {
	tn := tuning.Default()
	st := NewState(tn, "labor-seed")

	if !SetLabor(st, SlotMaterial, -7) {
		t.Fatal("negative request rejected outright; want clamp to 0")
	}
	if st.LaborMaterial != 0 {
		t.Errorf("material slot = %d, want 0", st.LaborMaterial)
	}
	if SetLabor(st, SlotNone, 3) {
		t.Error("SlotNone accepted as an assignment target")
	}
}
