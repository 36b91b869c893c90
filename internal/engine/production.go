package engine

import (
	"math"

	"github.com/talgya/steadhold/internal/tuning"
)

// Rates are the derived per-day figures, computed without mutating state so
// the same numbers serve both the tick and any preview display.
type Rates struct {
	ToolingBonus       float64 `json:"tooling_bonus"`
	FoodPerDay         float64 `json:"food_per_day"`
	MaterialPerDay     float64 `json:"material_per_day"`
	ToolingPerDay      float64 `json:"tooling_per_day"`
	ToolingDecayPerDay float64 `json:"tooling_decay_per_day"`
	FoodDemandPerDay   float64 `json:"food_demand_per_day"`
}

// ComputeRates reads the record and returns the day's production, decay and
// demand figures. When the tooling-material module is on, actual tooling
// output may fall below ToolingPerDay if material runs short; the rate shown
// is the workshop's capacity.
func ComputeRates(st *SettlementState, tn *tuning.Tuning) Rates {
	p := tn.Production

	bonus := math.Max(1.0, 1+math.Min(st.Tooling, p.ToolingSoftcap)*p.ToolingBonusPerUnit)

	return Rates{
		ToolingBonus:       bonus,
		FoodPerDay:         float64(st.LaborFood) * p.BaseFoodRate * (1 + float64(st.Farms)*p.PerFarmBonus) * bonus,
		MaterialPerDay:     float64(st.LaborMaterial) * p.BaseMaterialRate * bonus,
		ToolingPerDay:      float64(st.LaborTooling) * p.BaseToolingRate,
		ToolingDecayPerDay: p.ToolingFlatDecay + float64(st.Population)*p.ToolingWearPerHead,
		FoodDemandPerDay:   demandFor(st, tn),
	}
}

// applyProduction adds the day's output to the stocks. Tooling output is
// capped by available material when the wood-backed toolmaking module is on.
func applyProduction(st *SettlementState, tn *tuning.Tuning, r Rates) {
	st.Food += r.FoodPerDay
	st.Material += r.MaterialPerDay

	produced := r.ToolingPerDay
	if tn.Modules.ToolingMaterialCost && tn.Production.ToolingMaterialPerUnit > 0 {
		affordable := st.Material / tn.Production.ToolingMaterialPerUnit
		if produced > affordable {
			produced = affordable
		}
		st.Material -= produced * tn.Production.ToolingMaterialPerUnit
	}
	st.Tooling += produced
}

// applyToolingDecay applies wear. Wear scales with the population served,
// not the tooling stock: it models maintenance burden, not depreciation.
func applyToolingDecay(st *SettlementState, r Rates) {
	st.Tooling -= r.ToolingDecayPerDay
	if st.Tooling < 0 {
		st.Tooling = 0
	}
}
