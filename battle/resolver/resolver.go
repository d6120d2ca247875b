// Package resolver runs the per-actor battle resolution pipeline:
// snapshot the actor's latched action, validate its target, redirect
// through a guardian if one intercepts, roll the hit/critical/defended
// outcome, run every impact effect through battle/effects, chain any trait
// post-effects through battle/hooks, and assemble the whole thing into
// a CombatResult plus the flat Command list battle/command.Executor
// applies (spec.md §4.3).
package resolver

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/calc"
	"battlecore/battle/command"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
	"battlecore/battle/effects"
	"battlecore/battle/hooks"
	"battlecore/battle/targeting"
)

// CombatResult is the complete record of one actor's resolved action,
// independent of how it gets displayed -- battle/tasks consumes this to
// build the animation/dialog sequence, battle/battlelog consumes it for
// history.
type CombatResult struct {
	ActorID             ecs.EntityID
	ActingPartKey       components.PartKey
	ActionType          components.ActionLogicType
	DeclaredTargetID    ecs.EntityID
	FinalTargetID       ecs.EntityID
	FinalTargetPartKey  components.PartKey
	WasRedirectedToGuard bool
	Outcome             components.Outcome
	EffectResults       []components.EffectResult
	Cancelled           bool
	CancelReason        components.CancelReason
	Commands            []command.Command
}

// Resolve runs the full pipeline for actorID, which needs a latched
// Action (the engine calls it while the actor is still in
// StateReadyToExecute); without one the result is cancelled with
// TargetLost. The actor's state is not checked. Returns a CombatResult
// describing what happened; the caller is responsible for passing
// Commands to an Executor.
func Resolve(m *ecsx.Manager, tn data.Tunables, actorID ecs.EntityID, turn int) CombatResult {
	actor := ecsx.FindEntityByID(m, actorID)
	if actor == nil {
		return CombatResult{ActorID: actorID, Cancelled: true, CancelReason: components.TargetLost}
	}
	action := ecsx.GetComponentType[*components.Action](actor, components.ActionComponent)
	if action == nil || !action.HasPart {
		return CombatResult{ActorID: actorID, Cancelled: true, CancelReason: components.TargetLost}
	}

	parts := ecsx.GetComponentType[*components.Parts](actor, components.PartsComponent)
	actingPartID := parts.ByKey(action.PartKey)
	actingPart := ecsx.FindEntityByID(m, actingPartID)
	logic := ecsx.GetComponentType[*components.ActionLogic](actingPart, components.ActionLogicComponent)
	targetingBehavior := ecsx.GetComponentType[*components.TargetingBehavior](actingPart, components.TargetingBehaviorComponent)
	impact := ecsx.GetComponentType[*components.ImpactBehavior](actingPart, components.ImpactBehaviorComponent)

	result := CombatResult{
		ActorID: actorID, ActingPartKey: action.PartKey, ActionType: logic.Type,
		DeclaredTargetID: action.TargetID, FinalTargetID: action.TargetID, FinalTargetPartKey: action.TargetPartKey,
	}

	// Step: validity re-check. A target that died or broke between
	// selection and execution cancels the action outright.
	if targetingBehavior.Scope != components.Self && action.HasTarget {
		if !targeting.IsValidTarget(m, actorID, action.TargetID, targetingBehavior.Scope) {
			result.Cancelled = true
			result.CancelReason = components.TargetLost
			result.Commands = []command.Command{
				command.TransitionState{EntityID: actorID, NewState: components.StateCooldown},
				command.ClearAction{EntityID: actorID},
				command.SetGauge{EntityID: actorID, Value: 0},
			}
			return result
		}
	}

	// Step: guardian interception. Only single-enemy-target offensive
	// actions can be intercepted (spec.md §4.3).
	if targetingBehavior.Scope == components.EnemySingle {
		if guardianID, ok := targeting.FindGuardian(m, action.TargetID); ok {
			result.FinalTargetID = guardianID
			result.WasRedirectedToGuard = true
			if key, ok := targeting.FindBestDefensePart(m, guardianID); ok {
				result.FinalTargetPartKey = key
			}
		}
	}

	// Step: hit/critical/defended outcome roll.
	attackerStats := ecsx.GetComponentType[*components.PartStats](actingPart, components.PartStatsComponent)
	defenderMobility := defenderMobility(m, result.FinalTargetID, result.FinalTargetPartKey)
	defenderArmor := defenderArmor(m, result.FinalTargetID, result.FinalTargetPartKey)

	critBonus := 0.0
	guardFactor := 1.0
	if actingPart.HasComponent(components.TraitCriticalBonusComponent) {
		if h := hooks.Get(hooks.TraitCriticalBonus); h != nil && h.DamageMod != nil {
			h.DamageMod(hooks.DamageModContext{
				Manager: m, AttackerID: actorID, AttackingPartID: actingPartID,
				TargetID: result.FinalTargetID, PartKey: result.FinalTargetPartKey,
			}, &critBonus, &guardFactor)
		}
	}

	accuracy := ecsx.GetComponentType[*components.AccuracyBehavior](actingPart, components.AccuracyBehaviorComponent)
	if accuracy != nil && accuracy.Type == components.PerfectAccuracy {
		result.Outcome = components.Outcome{IsHit: true}
	} else {
		result.Outcome = calc.RollOutcome(tn, attackerStats.Success, defenderMobility, defenderArmor, critBonus)
	}

	// A defended hit redirects onto the target's best-defended part
	// instead of the one the action was aimed at, same as a guardian
	// redirect (spec.md §4.3 step 4).
	if result.Outcome.IsDefended {
		if key, ok := targeting.FindBestDefensePart(m, result.FinalTargetID); ok {
			result.FinalTargetPartKey = key
		}
	}
	result.Outcome.FinalTargetPartKey = result.FinalTargetPartKey

	// Step: run every impact effect, then chain trait post-effects.
	var allCommands []command.Command
	if impact != nil {
		for _, def := range impact.Effects {
			effectResult, cmds := effects.Process(effects.Context{
				Manager: m, Tunables: tn, SourceID: actorID, AttackingPartID: actingPartID,
				TargetID: result.FinalTargetID, PartKey: result.FinalTargetPartKey,
				Def: def, Outcome: result.Outcome,
			})
			result.EffectResults = append(result.EffectResults, effectResult)
			allCommands = append(allCommands, cmds...)

			if actingPart.HasComponent(components.TraitPenetrateComponent) {
				if h := hooks.Get(hooks.TraitPenetrate); h != nil && h.PostEffect != nil {
					chained := h.PostEffect(hooks.PostEffectContext{
						Manager: m, Tunables: tn, SourceID: actorID, AttackingPartID: actingPartID,
						TargetID: result.FinalTargetID, PartKey: result.FinalTargetPartKey, Result: effectResult,
					})
					allCommands = append(allCommands, chained...)
				}
			}
		}
	}

	// A self-targeted APPLY_GUARD effect already queued its own
	// TransitionState{StateGuarding} among allCommands above; don't let
	// the generic post-action transition stomp it back to cooldown.
	selfGuarded := false
	for _, er := range result.EffectResults {
		if er.Kind == components.ApplyGuardEffect && er.TargetID == actorID {
			selfGuarded = true
			break
		}
	}

	allCommands = append(allCommands,
		command.RecordAttack{AttackerID: actorID, DefenderID: result.FinalTargetID, PartKey: result.FinalTargetPartKey, Turn: turn},
	)
	if !selfGuarded {
		allCommands = append(allCommands, command.TransitionState{EntityID: actorID, NewState: components.StateCooldown})
	}
	allCommands = append(allCommands,
		command.ClearAction{EntityID: actorID},
		command.SetGauge{EntityID: actorID, Value: 0},
	)
	result.Commands = allCommands
	return result
}

func defenderMobility(m *ecsx.Manager, targetID ecs.EntityID, key components.PartKey) int {
	stats := targetedPartStats(m, targetID, key)
	if stats == nil {
		return 0
	}
	return stats.Mobility
}

func defenderArmor(m *ecsx.Manager, targetID ecs.EntityID, key components.PartKey) int {
	stats := targetedPartStats(m, targetID, key)
	if stats == nil {
		return 0
	}
	return stats.Armor
}

func targetedPartStats(m *ecsx.Manager, targetID ecs.EntityID, key components.PartKey) *components.PartStats {
	target := ecsx.FindEntityByID(m, targetID)
	if target == nil {
		return nil
	}
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)
	if parts == nil {
		return nil
	}
	part := ecsx.FindEntityByID(m, parts.ByKey(key))
	return ecsx.GetComponentType[*components.PartStats](part, components.PartStatsComponent)
}
