// Package effects is the exhaustive handler registry for EffectKind:
// one Process function per kind, indexed by the closed enum itself
// rather than a string map. Registering a handler for a kind beyond the
// array's length fails to compile; a kind that has no registered handler
// resolves through Process as a no-op result (IsNoop), not an error.
package effects

import (
	"strconv"

	"github.com/bytearena/ecs"

	"battlecore/battle/calc"
	"battlecore/battle/command"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
	"battlecore/battle/targeting"
)

// Context bundles everything a handler needs to resolve one EffectDef
// against one target.
type Context struct {
	Manager         *ecsx.Manager
	Tunables        data.Tunables
	SourceID        ecs.EntityID
	AttackingPartID ecs.EntityID
	TargetID        ecs.EntityID
	PartKey         components.PartKey
	Def             components.EffectDef
	Outcome         components.Outcome
}

// Handler resolves one effect definition into a result plus the
// Commands needed to apply it. Handlers never mutate components
// themselves -- they only describe what should happen.
type Handler func(ctx Context) (components.EffectResult, []command.Command)

var handlers [7]Handler

func init() {
	handlers[components.DamageEffect] = handleDamage
	handlers[components.HealEffect] = handleHeal
	handlers[components.ApplyScanEffect] = handleApplyScan
	handlers[components.ApplyGuardEffect] = handleApplyGuard
	handlers[components.ConsumeGuardEffect] = handleConsumeGuard
	handlers[components.ApplyGlitchEffect] = handleApplyGlitch
	handlers[components.ApplyStunEffect] = handleApplyStun
}

// Process looks up ctx.Def.Kind's handler and runs it. A kind with no
// registered handler (should be unreachable once every EffectKind value
// has an init() entry above) returns a no-op result rather than
// panicking -- effect resolution never crashes a running battle.
func Process(ctx Context) (components.EffectResult, []command.Command) {
	if int(ctx.Def.Kind) < 0 || int(ctx.Def.Kind) >= len(handlers) || handlers[ctx.Def.Kind] == nil {
		return components.EffectResult{Kind: ctx.Def.Kind, TargetID: ctx.TargetID, IsNoop: true}, nil
	}
	return handlers[ctx.Def.Kind](ctx)
}

func attackerMight(m *ecsx.Manager, attackingPartID ecs.EntityID) int {
	part := ecsx.FindEntityByID(m, attackingPartID)
	stats := ecsx.GetComponentType[*components.PartStats](part, components.PartStatsComponent)
	if stats == nil {
		return 0
	}
	return stats.Might
}

// targetTotalDefense computes the damage formula's totalDefense term:
// the target's legs Defense stat plus half its Stability, regardless of
// which part was actually struck (spec.md §4.4). A bypassDefense effect
// param zeroes it out entirely.
func targetTotalDefense(m *ecsx.Manager, targetID ecs.EntityID, bypassed bool) int {
	if bypassed {
		return 0
	}
	combatant := ecsx.FindEntityByID(m, targetID)
	parts := ecsx.GetComponentType[*components.Parts](combatant, components.PartsComponent)
	if parts == nil {
		return 0
	}
	legs := ecsx.FindEntityByID(m, parts.ByKey(components.Legs))
	stats := ecsx.GetComponentType[*components.PartStats](legs, components.PartStatsComponent)
	if stats == nil {
		return 0
	}
	return stats.Defense + stats.Stability/2
}

func isStunned(m *ecsx.Manager, id ecs.EntityID) bool {
	entity := ecsx.FindEntityByID(m, id)
	return entity != nil && components.HasState(entity, components.StateStunned)
}

// partStatValue reads one named stat off a PartStats snapshot, used by
// APPLY_SCAN's valueSource param (statName when valueSource is absent)
// to pick which stat the bonus scales.
func partStatValue(stats *components.PartStats, name string) int {
	switch name {
	case "Might":
		return stats.Might
	case "Success":
		return stats.Success
	case "Armor":
		return stats.Armor
	case "Mobility":
		return stats.Mobility
	case "Propulsion":
		return stats.Propulsion
	case "Stability":
		return stats.Stability
	case "Defense":
		return stats.Defense
	default:
		return 0
	}
}

func targetPartRemainingHP(m *ecsx.Manager, targetID ecs.EntityID, key components.PartKey) int {
	combatant := ecsx.FindEntityByID(m, targetID)
	parts := ecsx.GetComponentType[*components.Parts](combatant, components.PartsComponent)
	if parts == nil {
		return 0
	}
	part := ecsx.FindEntityByID(m, parts.ByKey(key))
	status := ecsx.GetComponentType[*components.PartStatus](part, components.PartStatusComponent)
	if status == nil {
		return 0
	}
	return status.HP
}

func handleDamage(ctx Context) (components.EffectResult, []command.Command) {
	if !ctx.Outcome.IsHit {
		return components.EffectResult{Kind: components.DamageEffect, TargetID: ctx.TargetID, PartKey: ctx.PartKey, HasPartKey: true, IsNoop: true}, nil
	}

	guarded := targeting.IsGuarding(ctx.Manager, ctx.TargetID)
	bypassDefense := ctx.Def.Params["bypassDefense"] == "true"
	amount := calc.Damage(ctx.Tunables, calc.DamageInput{
		Might:      attackerMight(ctx.Manager, ctx.AttackingPartID),
		Defense:    targetTotalDefense(ctx.Manager, ctx.TargetID, bypassDefense),
		IsCritical: ctx.Outcome.IsCritical,
		IsGuard:    guarded,
	})

	remaining := targetPartRemainingHP(ctx.Manager, ctx.TargetID, ctx.PartKey)
	actual := amount
	if actual > remaining {
		actual = remaining
	}

	cmds := []command.Command{
		command.ApplyDamage{TargetID: ctx.TargetID, PartKey: ctx.PartKey, Amount: amount},
	}

	// A guarded hit that breaks the struck part ends the guard outright,
	// independent of any remaining guard count; one that doesn't just
	// spends a charge (spec.md §8 scenarios 2 and 3).
	guardBroken := false
	if guarded {
		if remaining > 0 && actual >= remaining {
			guardBroken = true
			cmds = append(cmds,
				command.RemoveActiveEffect{TargetID: ctx.TargetID, Kind: components.ApplyGuardEffect, PartKey: components.Head, HasPart: false},
				command.TransitionState{EntityID: ctx.TargetID, NewState: components.StateCooldown},
				command.ClearAction{EntityID: ctx.TargetID},
				command.SetGauge{EntityID: ctx.TargetID, Value: 0},
			)
		} else {
			cmds = append(cmds, command.ConsumeGuardCharge{GuardianID: ctx.TargetID})
		}
	}

	if actual > 0 && isStunned(ctx.Manager, ctx.TargetID) {
		cmds = append(cmds,
			command.RemoveActiveEffect{TargetID: ctx.TargetID, Kind: components.ApplyStunEffect, PartKey: components.Head, HasPart: false},
			command.TransitionState{EntityID: ctx.TargetID, NewState: components.StateCharging},
		)
	}

	return components.EffectResult{
		Kind: components.DamageEffect, TargetID: ctx.TargetID, PartKey: ctx.PartKey, HasPartKey: true,
		ActualAmount: actual, RawAmount: amount, IsGuardBroken: guardBroken,
	}, cmds
}

func handleHeal(ctx Context) (components.EffectResult, []command.Command) {
	amount := calc.Heal(ctx.Tunables, attackerMight(ctx.Manager, ctx.AttackingPartID))
	return components.EffectResult{
			Kind: components.HealEffect, TargetID: ctx.TargetID, PartKey: ctx.PartKey, HasPartKey: true,
			ActualAmount: amount, RawAmount: amount,
		}, []command.Command{
			command.ApplyHeal{TargetID: ctx.TargetID, PartKey: ctx.PartKey, Amount: amount},
		}
}

// handleApplyScan computes a flat stat bonus off the attacking part and
// installs it, as one shared TimedEffect definition, on every valid ally
// of the caster including the caster itself (spec.md §4.4 APPLY_SCAN is
// team-scoped, not single-target).
func handleApplyScan(ctx Context) (components.EffectResult, []command.Command) {
	statName := ctx.Def.Params["statName"]
	valueSource := ctx.Def.Params["valueSource"]
	if valueSource == "" {
		valueSource = statName
	}
	valueFactor := paramFloat(ctx.Def.Params, "valueFactor", 1.0)
	durationMS := paramFloat(ctx.Def.Params, "durationMs", 3000)

	attackingPart := ecsx.FindEntityByID(ctx.Manager, ctx.AttackingPartID)
	stats := ecsx.GetComponentType[*components.PartStats](attackingPart, components.PartStatsComponent)
	bonus := 0
	if stats != nil {
		bonus = int(float64(partStatValue(stats, valueSource)) * valueFactor)
	}

	allies := append(targeting.GetValidAllies(ctx.Manager, ctx.SourceID), ctx.SourceID)
	cmds := make([]command.Command, 0, len(allies))
	for _, allyID := range allies {
		effect := components.TimedEffect{
			Kind: components.ApplyScanEffect, Value: bonus, DurationMS: durationMS,
			Params: map[string]string{"statName": statName},
		}
		cmds = append(cmds, command.UpsertActiveEffect{TargetID: allyID, Effect: effect})
	}

	return components.EffectResult{
		Kind: components.ApplyScanEffect, TargetID: ctx.TargetID,
		ActualAmount: bonus, RawAmount: bonus,
	}, cmds
}

func handleApplyGuard(ctx Context) (components.EffectResult, []command.Command) {
	count := int(paramFloat(ctx.Def.Params, "guardCount", 1))
	if part := ecsx.FindEntityByID(ctx.Manager, ctx.AttackingPartID); part != nil {
		if trait := ecsx.GetComponentType[*components.TraitGuard](part, components.TraitGuardComponent); trait != nil && trait.Count > 0 {
			count = trait.Count
		}
	}
	effect := components.TimedEffect{Kind: components.ApplyGuardEffect, Count: count}
	return components.EffectResult{Kind: components.ApplyGuardEffect, TargetID: ctx.TargetID}, []command.Command{
		command.UpsertActiveEffect{TargetID: ctx.TargetID, Effect: effect},
		command.TransitionState{EntityID: ctx.TargetID, NewState: components.StateGuarding},
	}
}

func handleConsumeGuard(ctx Context) (components.EffectResult, []command.Command) {
	if !targeting.IsGuarding(ctx.Manager, ctx.TargetID) {
		return components.EffectResult{Kind: components.ConsumeGuardEffect, TargetID: ctx.TargetID, IsNoop: true}, nil
	}
	return components.EffectResult{Kind: components.ConsumeGuardEffect, TargetID: ctx.TargetID, IsGuardExpired: true}, []command.Command{
		command.ConsumeGuardCharge{GuardianID: ctx.TargetID},
	}
}

// handleApplyGlitch succeeds iff the target is mid-charge-up or guarding
// -- not on a hit roll, APPLY_GLITCH has no accuracy check of its own --
// and on success always interrupts the target's queued action and
// resets it to cooldown (spec.md §4.4, §8 scenario 5). It never installs
// a timed effect: the interrupt is the entire effect.
func handleApplyGlitch(ctx Context) (components.EffectResult, []command.Command) {
	target := ecsx.FindEntityByID(ctx.Manager, ctx.TargetID)
	success := target != nil && (components.HasState(target, components.StateSelectedCharging) || components.HasState(target, components.StateGuarding))
	if !success {
		return components.EffectResult{Kind: components.ApplyGlitchEffect, TargetID: ctx.TargetID, IsNoop: true}, nil
	}

	return components.EffectResult{Kind: components.ApplyGlitchEffect, TargetID: ctx.TargetID}, []command.Command{
		command.CancelAction{TargetID: ctx.TargetID, Reason: components.Interrupted},
		command.TransitionState{EntityID: ctx.TargetID, NewState: components.StateCooldown},
		command.ClearAction{EntityID: ctx.TargetID},
		command.SetGauge{EntityID: ctx.TargetID, Value: 0},
	}
}

// handleApplyStun runs the normal damage formula, halves the result, and
// applies that halved amount as real damage on top of the stun tag --
// APPLY_STUN is a damaging effect, not a pure debuff -- with the stun's
// duration scaling off the damage actually dealt (spec.md §4.4).
func handleApplyStun(ctx Context) (components.EffectResult, []command.Command) {
	if !ctx.Outcome.IsHit {
		return components.EffectResult{Kind: components.ApplyStunEffect, TargetID: ctx.TargetID, IsNoop: true}, nil
	}

	bypassDefense := ctx.Def.Params["bypassDefense"] == "true"
	full := calc.Damage(ctx.Tunables, calc.DamageInput{
		Might:      attackerMight(ctx.Manager, ctx.AttackingPartID),
		Defense:    targetTotalDefense(ctx.Manager, ctx.TargetID, bypassDefense),
		IsCritical: ctx.Outcome.IsCritical,
	})
	amount := full / 2
	if amount < 1 {
		amount = 1
	}

	remaining := targetPartRemainingHP(ctx.Manager, ctx.TargetID, ctx.PartKey)
	actual := amount
	if actual > remaining {
		actual = remaining
	}

	effect := components.TimedEffect{Kind: components.ApplyStunEffect, DurationMS: float64(actual) * 250}
	return components.EffectResult{
			Kind: components.ApplyStunEffect, TargetID: ctx.TargetID, PartKey: ctx.PartKey, HasPartKey: true,
			ActualAmount: actual, RawAmount: amount,
		}, []command.Command{
			command.ApplyDamage{TargetID: ctx.TargetID, PartKey: ctx.PartKey, Amount: amount},
			command.UpsertActiveEffect{TargetID: ctx.TargetID, Effect: effect},
			command.TransitionState{EntityID: ctx.TargetID, NewState: components.StateStunned},
		}
}

func paramFloat(params map[string]string, key string, fallback float64) float64 {
	raw, ok := params[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
