// Package tuning holds every numeric constant the settlement engine runs on.
// Values load from a YAML file when one is supplied, otherwise the compiled-in
// defaults apply. Earlier, simpler rule sets are expressed by switching off
// mechanic modules rather than forking the engine.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Modules switches individual mechanics on or off.
type Modules struct {
	// Pressure enables the three pressure tracks and the legitimacy bleed.
	Pressure bool `yaml:"pressure"`
	// Emigration enables population loss through departure.
	Emigration bool `yaml:"emigration"`
	// Events enables the random occurrence subsystem.
	Events bool `yaml:"events"`
	// HardFamineCutoff restricts starvation deaths to serious shortfalls.
	// When off, any deficit may kill (the original simple-starvation rules).
	HardFamineCutoff bool `yaml:"hard_famine_cutoff"`
	// ToolingMaterialCost makes the workshop consume material per tooling
	// unit produced (the wood-backed toolmaking rules).
	ToolingMaterialCost bool `yaml:"tooling_material_cost"`
}

// Start describes the initial settlement record built on reset.
type Start struct {
	Population int     `yaml:"population"`
	Food       float64 `yaml:"food"`
	Material   float64 `yaml:"material"`
	Tooling    float64 `yaml:"tooling"`
	Morale     float64 `yaml:"morale"`
	Legitimacy float64 `yaml:"legitimacy"`
	Farms      int     `yaml:"farms"`
}

// Production holds the daily output and wear rates.
type Production struct {
	BaseFoodRate        float64 `yaml:"base_food_rate"`
	PerFarmBonus        float64 `yaml:"per_farm_bonus"`
	BaseMaterialRate    float64 `yaml:"base_material_rate"`
	BaseToolingRate     float64 `yaml:"base_tooling_rate"`
	ToolingSoftcap      float64 `yaml:"tooling_softcap"`
	ToolingBonusPerUnit float64 `yaml:"tooling_bonus_per_unit"`
	ToolingFlatDecay    float64 `yaml:"tooling_flat_decay"`
	ToolingWearPerHead  float64 `yaml:"tooling_wear_per_head"`
	// Material consumed per tooling unit when the module is enabled.
	ToolingMaterialPerUnit float64 `yaml:"tooling_material_per_unit"`
	FarmCostMaterial       float64 `yaml:"farm_cost_material"`
}

// Consumption holds demand and starvation parameters.
type Consumption struct {
	PerCapita       float64 `yaml:"per_capita"`
	RationingFactor float64 `yaml:"rationing_factor"`
	FeastFactor     float64 `yaml:"feast_factor"`
	PolicyDays      int     `yaml:"policy_days"`

	MoraleLossMult   float64 `yaml:"morale_loss_mult"`
	MoraleLossMin    float64 `yaml:"morale_loss_min"`
	MoraleLossMax    float64 `yaml:"morale_loss_max"`
	HungerEscalation float64 `yaml:"hunger_escalation"`

	SeriousFamineRatio float64 `yaml:"serious_famine_ratio"`
	DeathEscalation    float64 `yaml:"death_escalation"`
	MaxDeathRatio      float64 `yaml:"max_death_ratio"`
	MinDeathRatio      float64 `yaml:"min_death_ratio"`
}

// Pressure holds the accumulator and legitimacy parameters.
type Pressure struct {
	SubsistenceRise   float64 `yaml:"subsistence_rise"`    // per unit of deficit ratio
	SubsistenceStreak float64 `yaml:"subsistence_streak"`  // per hunger-streak day
	SubsistenceDecay  float64 `yaml:"subsistence_decay"`   // per fully fed day
	SecurityRise      float64 `yaml:"security_rise"`       // per morale point below the line
	SecurityDecay     float64 `yaml:"security_decay"`      // per calm day
	MoraleLine        float64 `yaml:"morale_line"`         // security rises below this morale
	ExtractionDecay   float64 `yaml:"extraction_decay"`    // reserved track only decays
	AdverseDecayScale float64 `yaml:"adverse_decay_scale"` // decay multiplier while stressed
	DeathShockSub     float64 `yaml:"death_shock_sub"`     // per death
	DeathShockSec     float64 `yaml:"death_shock_sec"`     // per death

	BleedBase        float64 `yaml:"bleed_base"`
	BleedSubWeight   float64 `yaml:"bleed_sub_weight"`
	BleedSecWeight   float64 `yaml:"bleed_sec_weight"`
	BleedExtWeight   float64 `yaml:"bleed_ext_weight"`
	CalmThreshold    float64 `yaml:"calm_threshold"`    // pressure sum below = calm
	CalmMoraleFloor  float64 `yaml:"calm_morale_floor"` // morale at or above = calm
	RecoveryCap      float64 `yaml:"recovery_cap"`
	RecoveryPerDay   float64 `yaml:"recovery_per_day"`
	DriftSurplusMult float64 `yaml:"drift_surplus_mult"` // food above pop×mult drifts morale up
	DriftGain        float64 `yaml:"drift_gain"`
	DriftGainCap     float64 `yaml:"drift_gain_cap"` // drift alone cannot pass this morale
	DriftLossAbove   float64 `yaml:"drift_loss_above"`
	DriftLoss        float64 `yaml:"drift_loss"`
}

// Emigration holds the departure model parameters.
type Emigration struct {
	SubThreshold    float64 `yaml:"sub_threshold"`
	SecThreshold    float64 `yaml:"sec_threshold"`
	MoraleThreshold float64 `yaml:"morale_threshold"`
	MinStreak       int     `yaml:"min_streak"`
	Base            int     `yaml:"base"`
	StreakMult      float64 `yaml:"streak_mult"`
	MinPerDay       int     `yaml:"min_per_day"`
	MaxRatioPerDay  float64 `yaml:"max_ratio_per_day"`
	MoraleLoss      float64 `yaml:"morale_loss"`
	LegitimacyLoss  float64 `yaml:"legitimacy_loss"`
}

// Events holds the trigger probability parameters.
type Events struct {
	BaseChance      float64 `yaml:"base_chance"`
	LowMoraleBonus  float64 `yaml:"low_morale_bonus"`
	LowMoraleLine   float64 `yaml:"low_morale_line"`
	SubPressureLine float64 `yaml:"sub_pressure_line"`
	SubBonus        float64 `yaml:"sub_bonus"`
	SecPressureLine float64 `yaml:"sec_pressure_line"`
	SecBonus        float64 `yaml:"sec_bonus"`
	// Plot events require legitimacy below the gate and the pressure sum
	// above it at the same time.
	PlotLegitimacyGate float64 `yaml:"plot_legitimacy_gate"`
	PlotPressureGate   float64 `yaml:"plot_pressure_gate"`
}

// Terminal holds the run-ending thresholds.
type Terminal struct {
	AbandonmentFloor int `yaml:"abandonment_floor"`
	VictoryDay       int `yaml:"victory_day"`
}

// Tuning is the complete parameter set for one run.
type Tuning struct {
	Modules     Modules     `yaml:"modules"`
	Start       Start       `yaml:"start"`
	Production  Production  `yaml:"production"`
	Consumption Consumption `yaml:"consumption"`
	Pressure    Pressure    `yaml:"pressure"`
	Emigration  Emigration  `yaml:"emigration"`
	Events      Events      `yaml:"events"`
	Terminal    Terminal    `yaml:"terminal"`
}

// Default returns the full rule set with every module enabled.
func Default() *Tuning {
	return &Tuning{
		Modules: Modules{
			Pressure:            true,
			Emigration:          true,
			Events:              true,
			HardFamineCutoff:    true,
			ToolingMaterialCost: true,
		},
		Start: Start{
			Population: 30,
			Food:       120,
			Material:   40,
			Tooling:    0,
			Morale:     70,
			Legitimacy: 70,
			Farms:      1,
		},
		Production: Production{
			BaseFoodRate:           1.6,
			PerFarmBonus:           0.25,
			BaseMaterialRate:       1.0,
			BaseToolingRate:        0.5,
			ToolingSoftcap:         40,
			ToolingBonusPerUnit:    0.01,
			ToolingFlatDecay:       0.2,
			ToolingWearPerHead:     0.01,
			ToolingMaterialPerUnit: 0.5,
			FarmCostMaterial:       30,
		},
		Consumption: Consumption{
			PerCapita:          1.0,
			RationingFactor:    0.75,
			FeastFactor:        1.25,
			PolicyDays:         10,
			MoraleLossMult:     0.5,
			MoraleLossMin:      1,
			MoraleLossMax:      6,
			HungerEscalation:   0.15,
			SeriousFamineRatio: 0.25,
			DeathEscalation:    0.1,
			MaxDeathRatio:      0.1,
			MinDeathRatio:      0.005,
		},
		Pressure: Pressure{
			SubsistenceRise:   12,
			SubsistenceStreak: 0.4,
			SubsistenceDecay:  2.0,
			SecurityRise:      0.25,
			SecurityDecay:     1.5,
			MoraleLine:        50,
			ExtractionDecay:   1.0,
			AdverseDecayScale: 0.5,
			DeathShockSub:     1.5,
			DeathShockSec:     1.0,
			BleedBase:         0.05,
			BleedSubWeight:    0.02,
			BleedSecWeight:    0.015,
			BleedExtWeight:    0.01,
			CalmThreshold:     30,
			CalmMoraleFloor:   45,
			RecoveryCap:       85,
			RecoveryPerDay:    0.6,
			DriftSurplusMult:  2.0,
			DriftGain:         0.5,
			DriftGainCap:      85,
			DriftLossAbove:    90,
			DriftLoss:         0.5,
		},
		Emigration: Emigration{
			SubThreshold:    60,
			SecThreshold:    55,
			MoraleThreshold: 35,
			MinStreak:       3,
			Base:            1,
			StreakMult:      0.002,
			MinPerDay:       1,
			MaxRatioPerDay:  0.05,
			MoraleLoss:      1.5,
			LegitimacyLoss:  1.0,
		},
		Events: Events{
			BaseChance:         0.08,
			LowMoraleBonus:     0.10,
			LowMoraleLine:      40,
			SubPressureLine:    60,
			SubBonus:           0.08,
			SecPressureLine:    60,
			SecBonus:           0.08,
			PlotLegitimacyGate: 40,
			PlotPressureGate:   100,
		},
		Terminal: Terminal{
			AbandonmentFloor: 5,
			VictoryDay:       120,
		},
	}
}

// Load reads a YAML tuning file over the defaults, so a file only needs to
// name the values it changes.
func Load(path string) (*Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}
