package engine

import "github.com/talgya/steadhold/internal/tuning"

// Player actions run between ticks and mutate the shared record directly.
// Every action whose precondition fails is a silent no-op (reported by the
// Engine wrapper's journal), never an error.

// SetLabor assigns a labor slot and reconciles, protecting the slot just set.
func SetLabor(st *SettlementState, slot LaborSlot, workers int) bool {
	if st.Ended || slot == SlotNone {
		return false
	}
	if workers < 0 {
		workers = 0
	}
	switch slot {
	case SlotFood:
		st.LaborFood = workers
	case SlotMaterial:
		st.LaborMaterial = workers
	case SlotTooling:
		st.LaborTooling = workers
	}
	Reconcile(st, slot)
	return true
}

// BuildFarm spends construction material on one more farm.
func BuildFarm(st *SettlementState, tn *tuning.Tuning) bool {
	if st.Ended || st.Material < tn.Production.FarmCostMaterial {
		return false
	}
	st.Material -= tn.Production.FarmCostMaterial
	st.Farms++
	return true
}

// DeclareRationing starts the rationing policy; declaring one policy clears
// the other.
func DeclareRationing(st *SettlementState, tn *tuning.Tuning) bool {
	if st.Ended {
		return false
	}
	st.RationingDaysLeft = tn.Consumption.PolicyDays
	st.FeastingDaysLeft = 0
	return true
}

// DeclareFeast starts the feast policy; declaring one policy clears the
// other.
func DeclareFeast(st *SettlementState, tn *tuning.Tuning) bool {
	if st.Ended {
		return false
	}
	st.FeastingDaysLeft = tn.Consumption.PolicyDays
	st.RationingDaysLeft = 0
	return true
}

// Preset names a stock labor split.
type Preset string

const (
	PresetHarvest  Preset = "harvest"
	PresetBalanced Preset = "balanced"
	PresetWorkshop Preset = "workshop"
)

// ApplyPreset splits the whole population across the three slots. Food and
// material take their shares, tooling takes the remainder.
func ApplyPreset(st *SettlementState, p Preset) bool {
	if st.Ended {
		return false
	}
	var foodShare, materialShare float64
	switch p {
	case PresetHarvest:
		foodShare, materialShare = 0.80, 0.15
	case PresetBalanced:
		foodShare, materialShare = 0.60, 0.25
	case PresetWorkshop:
		foodShare, materialShare = 0.50, 0.20
	default:
		return false
	}
	st.LaborFood = int(float64(st.Population) * foodShare)
	st.LaborMaterial = int(float64(st.Population) * materialShare)
	st.LaborTooling = st.Population - st.LaborFood - st.LaborMaterial
	Reconcile(st, SlotNone)
	return true
}

// ResolveEvent applies option idx of the pending event and returns to idle.
// No pending event, a bad index, or a failing guard all leave the record
// untouched.
func ResolveEvent(st *SettlementState, tn *tuning.Tuning, idx int) (bool, string) {
	if st.Ended || st.ActiveEvent == nil {
		return false, ""
	}
	k := st.ActiveEvent.Kind
	labels := optionLabels(k)
	if idx < 0 || idx >= len(labels) {
		return false, ""
	}
	if !optionGuard(k, idx, st, tn) {
		return false, labels[idx]
	}
	applyOption(k, idx, st, tn, st.stream())
	st.ActiveEvent = nil
	return true, labels[idx]
}
