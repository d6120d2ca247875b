// Package data holds master data (parts, medals, message templates) and
// tunable constants loaded from JSON, plus the
// parsing glue that turns their string fields into the closed enums
// battle/components defines.
package data

// DebugMode mirrors config.DEBUG_MODE in the teacher. No package reads
// it: engine logging is gated by command.Executor's Debug flag instead.
const DebugMode = true

// Tunables holds every numeric constant the resolution formulas in
// battle/calc read, loaded once at startup from tunables.json. Keeping
// these in a loaded struct instead of consts means a balance pass never
// touches Go source (spec.md §9 DESIGN NOTES).
type Tunables struct {
	KEvasion float64 `json:"kEvasion"`
	KDefense float64 `json:"kDefense"`
	KCrit    float64 `json:"kCrit"`
	KPow     float64 `json:"kPow"`
	KDef     float64 `json:"kDef"`

	BaseHitChance     float64 `json:"baseHitChance"`
	BaseCritChance    float64 `json:"baseCritChance"`
	CriticalMultiplier float64 `json:"criticalMultiplier"`

	GuardDamageFactor float64 `json:"guardDamageFactor"`
	ScanAccuracyBonus float64 `json:"scanAccuracyBonus"`

	MinHitChance float64 `json:"minHitChance"`
	MaxHitChance float64 `json:"maxHitChance"`
}

// DefaultTunables returns the balance values used when no tunables.json
// is supplied (unit tests, the headless simulator). Mirrors the
// teacher's pattern of a compiled-in default alongside the JSON loader
// (config.DefaultPlayerStrength and friends).
func DefaultTunables() Tunables {
	return Tunables{
		KEvasion:           1.0,
		KDefense:           1.0,
		KCrit:              1.0,
		KPow:               1.0,
		KDef:               1.0,
		BaseHitChance:      0.9,
		BaseCritChance:     0.1,
		CriticalMultiplier: 1.5,
		GuardDamageFactor:  0.5,
		ScanAccuracyBonus:  0.2,
		MinHitChance:       0.05,
		MaxHitChance:       0.99,
	}
}
