// Package calc implements the numeric resolution formulas battle engine
// actions run through: hit chance, critical chance, the chance a hit is
// defended (redirected to the best-defended part), and the damage formula itself (spec.md §4.3 step 4, §4.4).
// Every function is a pure function of its inputs and a data.Tunables --
// no ECS access here, so these are trivial to unit test in isolation.
package calc

import (
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/randgen"
)

// HitChance computes the probability an action lands, combining the
// attacking part's Success stat against the defending part's Mobility
// (evasion), clamped to [MinHitChance, MaxHitChance].
func HitChance(tn data.Tunables, attackerSuccess, defenderMobility int) float64 {
	chance := tn.BaseHitChance + tn.KEvasion*float64(attackerSuccess-defenderMobility)/100.0
	return clamp(chance, tn.MinHitChance, tn.MaxHitChance)
}

// CriticalChance computes the probability a landed hit is critical,
// combining the attacking part's Success stat with any flat
// TraitCriticalBonus rate.
func CriticalChance(tn data.Tunables, attackerSuccess int, criticalBonus float64) float64 {
	chance := tn.BaseCritChance + tn.KCrit*float64(attackerSuccess)/200.0 + criticalBonus
	return clamp(chance, 0, 1)
}

// DefenseChance computes the probability a non-critical hit is defended
// -- redirected onto the target's best-defended part rather than the
// part it was aimed at -- scaling the target's Armor stat by kDefense.
func DefenseChance(tn data.Tunables, defenderArmor int) float64 {
	chance := tn.KDefense * float64(defenderArmor) / 100.0
	return clamp(chance, 0, 1)
}

// RollOutcome rolls hit, critical, and (on a non-critical hit) defended
// checks for one action resolution, in that order (spec.md §4.3 step
// 4). FinalTargetPartKey is left zero-valued; the resolver overwrites it
// with the guardian/best-defense part once this roll says to.
func RollOutcome(tn data.Tunables, attackerSuccess, defenderMobility, defenderArmor int, criticalBonus float64) components.Outcome {
	hit := randgen.Chance(HitChance(tn, attackerSuccess, defenderMobility))
	if !hit {
		return components.Outcome{IsHit: false}
	}
	crit := randgen.Chance(CriticalChance(tn, attackerSuccess, criticalBonus))
	outcome := components.Outcome{IsHit: true, IsCritical: crit}
	if !crit {
		outcome.IsDefended = randgen.Chance(DefenseChance(tn, defenderArmor))
	}
	return outcome
}

// DamageInput bundles everything the damage formula reads, so a caller
// assembles it once from part/effect state rather than passing six
// positional arguments.
type DamageInput struct {
	Might       int
	Calculation string // e.g. "AIMED_SHOT" -- reserved for a future per-calculation multiplier table
	Defense     int // caller-computed totalDefense: targetLegs.defense + floor(targetLegs.stability/2), 0 if bypassed
	IsCritical  bool
	IsDefended  bool // a guard or a defending part absorbed part of the hit
	IsGuard     bool // the target is under an active APPLY_GUARD effect
}

// Damage computes the HP amount one resolved attack removes (a positive
// value, always >= 1 on a hit), per spec.md §4.4's damage
// formula: Might scaled by kPow, reduced by Defense scaled by kDef, a
// flat critical multiplier, and a guard-damage-factor reduction when the
// target is guarded.
func Damage(tn data.Tunables, in DamageInput) int {
	base := tn.KPow * float64(in.Might)
	reduction := tn.KDef * float64(in.Defense)
	amount := base - reduction

	if in.IsCritical {
		amount *= tn.CriticalMultiplier
	}
	if in.IsGuard {
		amount *= tn.GuardDamageFactor
	}

	rounded := int(amount)
	if rounded < 1 {
		rounded = 1
	}
	return rounded
}

// Heal computes the HP restored by a HEAL effect: Might scaled by kPow,
// with no defense reduction (healing is never mitigated).
func Heal(tn data.Tunables, might int) int {
	amount := int(tn.KPow * float64(might))
	if amount < 1 {
		amount = 1
	}
	return amount
}

// SpeedMultiplier converts a part's Propulsion stat and any active
// speed-affecting effect into the combatant's current gauge-fill rate
// multiplier (spec.md §4.1 gauge advance, §4.4 APPLY_GLITCH slows).
func SpeedMultiplier(basePropulsion int, glitchActive bool) float64 {
	mult := 1.0 + float64(basePropulsion)/100.0
	if glitchActive {
		mult *= 0.5
	}
	if mult < 0.1 {
		mult = 0.1
	}
	return mult
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
