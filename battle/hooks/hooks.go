// Package hooks is the trait behavior registry: a part carrying a trait
// tag (TraitPenetrateComponent, TraitGuardComponent, ...) has its
// cross-cutting behavior looked up here by trait key rather than
// handled with a type switch buried inside battle/effects. A trait only
// populates the hooks it needs; nil hooks are skipped by callers.
package hooks

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/command"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
	"battlecore/battle/targeting"
)

// DamageModContext is passed to a DamageMod hook so it can adjust a
// damage calculation's inputs before battle/calc.Damage runs.
type DamageModContext struct {
	Manager    *ecsx.Manager
	AttackerID ecs.EntityID
	AttackingPartID ecs.EntityID
	TargetID   ecs.EntityID
	PartKey    components.PartKey
}

// DamageModHook adjusts a damage/critical calculation's inputs in place.
// critBonus and guardFactor are accumulators: a hook adds to critBonus
// or multiplies guardFactor rather than overwriting, so multiple traits
// compose.
type DamageModHook func(ctx DamageModContext, critBonus *float64, guardFactor *float64)

// PostEffectContext is passed to a PostEffect hook after one effect has
// been resolved (its Commands collected but not yet executed), so the hook can look at
// the result and queue follow-on Commands -- e.g. a penetrating part
// chaining a second ApplyDamage to a different part.
type PostEffectContext struct {
	Manager         *ecsx.Manager
	Tunables        data.Tunables
	SourceID        ecs.EntityID
	AttackingPartID ecs.EntityID
	TargetID        ecs.EntityID
	PartKey         components.PartKey
	Result          components.EffectResult
}

// PostEffectHook inspects a just-applied effect and returns any follow-on
// commands it should trigger.
type PostEffectHook func(ctx PostEffectContext) []command.Command

// Hooks collects every hook a single trait can populate.
type Hooks struct {
	DamageMod  DamageModHook
	PostEffect PostEffectHook
}

var registry = map[string]*Hooks{}

// Register installs hooks under traitKey, overwriting any previous
// registration.
func Register(traitKey string, h *Hooks) {
	registry[traitKey] = h
}

// Get returns the hooks registered for traitKey, or nil if none exist.
func Get(traitKey string) *Hooks {
	return registry[traitKey]
}

// Trait keys for the traits battle/components defines as tag
// components. Kept here (not in battle/components) since only this
// registry's callers need to look traits up by name.
const (
	TraitPenetrate     = "penetrate"
	TraitCriticalBonus = "criticalBonus"
	TraitGuard         = "guard"
)

func init() {
	Register(TraitCriticalBonus, &Hooks{
		DamageMod: criticalBonusDamageMod,
	})
	Register(TraitPenetrate, &Hooks{
		PostEffect: penetratePostEffect,
	})
}

// criticalBonusDamageMod adds the attacking part's flat
// TraitCriticalBonus rate to the accumulated critical chance bonus.
func criticalBonusDamageMod(ctx DamageModContext, critBonus *float64, guardFactor *float64) {
	part := ecsx.FindEntityByID(ctx.Manager, ctx.AttackingPartID)
	bonus := ecsx.GetComponentType[*components.TraitCriticalBonus](part, components.TraitCriticalBonusComponent)
	if bonus != nil {
		*critBonus += bonus.Rate
	}
}

// penetratePostEffect chains a second, reduced-amount DAMAGE application
// to a random other non-broken part of the same target, once, per
// resolved action (spec.md §4.4 penetration/overkill chaining). It never
// recurses: the chained ApplyDamage is built directly here rather than
// by re-entering effect resolution, so a penetrating penetrator cannot
// chain twice.
func penetratePostEffect(ctx PostEffectContext) []command.Command {
	if ctx.Result.Kind != components.DamageEffect || ctx.Result.IsNoop {
		return nil
	}

	overkill := ctx.Result.RawAmount - ctx.Result.ActualAmount
	if overkill <= 0 {
		return nil
	}

	secondKey, ok := targeting.FindRandomPenetrationTarget(ctx.Manager, ctx.TargetID, ctx.PartKey)
	if !ok {
		return nil
	}

	// overkill is already a resolved HP amount, not a Might value -- chain
	// it straight through as the second DAMAGE rather than re-running it
	// through the power formula, which would double-apply kPow.
	return []command.Command{
		command.ApplyDamage{TargetID: ctx.TargetID, PartKey: secondKey, Amount: overkill},
	}
}
