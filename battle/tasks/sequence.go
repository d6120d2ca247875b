package tasks

import (
	"strconv"

	"github.com/bytearena/ecs"

	"battlecore/battle/components"
	"battlecore/battle/ecsx"
	"battlecore/battle/resolver"
)

// Build turns a resolved CombatResult into the ordered TaskList
// spec.md §4.5 describes: attack animation, declaration, guardian notice, per-effect
// dialog/animation/vfx, defeat vfx for anything the result is about to
// break, a UI refresh event, then the deferred state application.
// Must be called before the result's Commands are applied -- broken-
// part detection reads still-unmutated PartStatus.
func Build(m *ecsx.Manager, result resolver.CombatResult) TaskList {
	if result.Cancelled {
		return TaskList{
			{Kind: DialogTask, MessageKey: result.CancelReason.MessageKey()},
			{Kind: ApplyStateTask, Commands: result.Commands},
		}
	}

	actingPart := attackingPartVisual(m, result.ActorID, result.ActingPartKey)

	var list TaskList
	list = append(list, TaskDef{
		Kind: AnimateTask, TargetID: result.FinalTargetID, HasTarget: true, Animation: actingPart.AnimationKind,
	})
	list = append(list, TaskDef{Kind: DialogTask, MessageKey: actingPart.DeclarationMessageKey})

	if result.WasRedirectedToGuard {
		list = append(list, TaskDef{Kind: DialogTask, MessageKey: "GUARDIAN_TRIGGERED"})
	}

	var newlyBroken []ecs.EntityID
	for _, effectResult := range result.EffectResults {
		if effectResult.IsNoop {
			continue
		}
		list = append(list, TaskDef{
			Kind: DialogTask, MessageKey: actingPart.ImpactMessageKey,
			Params: map[string]string{"kind": effectResult.Kind.String()},
		})
		list = append(list, TaskDef{
			Kind: UiAnimationTask, UIKind: "HP_BAR", TargetID: effectResult.TargetID, HasTarget: true,
			Params: map[string]string{"amount": strconv.Itoa(effectResult.ActualAmount)},
		})
		list = append(list, TaskDef{
			Kind: VfxTask, TargetID: effectResult.TargetID, VfxClass: actingPart.ImpactClassName,
		})

		if effectResult.Kind == components.DamageEffect && effectResult.HasPartKey && effectResult.PartKey == components.Head {
			if willBreak(m, effectResult.TargetID, effectResult.ActualAmount) {
				newlyBroken = append(newlyBroken, effectResult.TargetID)
			}
		}
	}

	for _, id := range newlyBroken {
		list = append(list, TaskDef{Kind: VfxTask, TargetID: id, VfxClass: "is-defeated"})
	}

	list = append(list, TaskDef{Kind: EventTask, EventName: "REFRESH_UI"})
	list = append(list, TaskDef{Kind: ApplyStateTask, Commands: result.Commands})
	return list
}

func attackingPartVisual(m *ecsx.Manager, actorID ecs.EntityID, key components.PartKey) components.PartVisualConfig {
	actor := ecsx.FindEntityByID(m, actorID)
	parts := ecsx.GetComponentType[*components.Parts](actor, components.PartsComponent)
	if parts == nil {
		return components.PartVisualConfig{}
	}
	part := ecsx.FindEntityByID(m, parts.ByKey(key))
	visual := ecsx.GetComponentType[*components.PartVisualConfig](part, components.PartVisualConfigComponent)
	if visual == nil {
		return components.PartVisualConfig{}
	}
	return *visual
}

// willBreak reports whether a head hit dealing actualAmount damage will
// bring the part's still-unmutated HP to exactly 0.
func willBreak(m *ecsx.Manager, targetID ecs.EntityID, actualAmount int) bool {
	if actualAmount <= 0 {
		return false
	}
	target := ecsx.FindEntityByID(m, targetID)
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)
	if parts == nil {
		return false
	}
	head := ecsx.FindEntityByID(m, parts.HeadID)
	status := ecsx.GetComponentType[*components.PartStatus](head, components.PartStatusComponent)
	if status == nil || status.IsBroken {
		return false
	}
	return actualAmount >= status.HP
}
