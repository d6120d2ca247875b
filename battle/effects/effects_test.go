package effects

import (
	"testing"

	"github.com/bytearena/ecs"

	"battlecore/battle/command"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
)

func newTestManager(t *testing.T) *ecsx.Manager {
	t.Helper()
	m := ecsx.NewManager()
	ecsx.AttachAll(m)
	return m
}

func basicSpec(key components.PartKey, maxHP, might, defense int) components.PartSpec {
	return components.PartSpec{Key: key, MaxHP: maxHP, Stats: components.PartStats{Might: might, Defense: defense}}
}

func TestHandleDamageNoopOnMiss(t *testing.T) {
	m := newTestManager(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10, 5, 0), RightArm: basicSpec(components.RightArm, 10, 5, 0),
		LeftArm: basicSpec(components.LeftArm, 10, 5, 0), Legs: basicSpec(components.Legs, 10, 5, 0),
	}
	target := components.CreateCombatant(m, spec)
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)

	result, cmds := Process(Context{
		Manager: m, Tunables: data.DefaultTunables(),
		TargetID: target.GetID(), PartKey: components.Head, AttackingPartID: parts.RightArmID,
		Def:     components.EffectDef{Kind: components.DamageEffect},
		Outcome: components.Outcome{IsHit: false},
	})

	if !result.IsNoop {
		t.Fatal("expected a no-op result on a missed hit")
	}
	if cmds != nil {
		t.Fatalf("expected no commands on a missed hit, got %v", cmds)
	}
}

func TestHandleDamageHitProducesApplyDamage(t *testing.T) {
	m := newTestManager(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10, 5, 0), RightArm: basicSpec(components.RightArm, 10, 50, 0),
		LeftArm: basicSpec(components.LeftArm, 10, 5, 0), Legs: basicSpec(components.Legs, 10, 5, 0),
	}
	target := components.CreateCombatant(m, spec)
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)

	result, cmds := Process(Context{
		Manager: m, Tunables: data.DefaultTunables(),
		TargetID: target.GetID(), PartKey: components.Head, AttackingPartID: parts.RightArmID,
		Def:     components.EffectDef{Kind: components.DamageEffect},
		Outcome: components.Outcome{IsHit: true},
	})

	if result.IsNoop {
		t.Fatal("expected a non-noop result on a hit")
	}
	if result.ActualAmount <= 0 {
		t.Fatalf("expected positive damage, got %d", result.ActualAmount)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected exactly one ApplyDamage command, got %v", cmds)
	}
}

func TestHandleHealAlwaysProducesPositiveAmount(t *testing.T) {
	m := newTestManager(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10, 5, 0), RightArm: basicSpec(components.RightArm, 10, 5, 0),
		LeftArm: basicSpec(components.LeftArm, 10, 5, 0), Legs: basicSpec(components.Legs, 10, 5, 0),
	}
	target := components.CreateCombatant(m, spec)
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)

	result, cmds := Process(Context{
		Manager: m, Tunables: data.DefaultTunables(),
		TargetID: target.GetID(), PartKey: components.Head, AttackingPartID: parts.RightArmID,
		Def: components.EffectDef{Kind: components.HealEffect},
	})

	if result.ActualAmount <= 0 {
		t.Fatalf("expected positive heal amount, got %d", result.ActualAmount)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected exactly one ApplyHeal command, got %v", cmds)
	}
}

func TestProcessUnknownKindIsNoop(t *testing.T) {
	m := newTestManager(t)
	result, cmds := Process(Context{Manager: m, Def: components.EffectDef{Kind: components.EffectKind(99)}})
	if !result.IsNoop {
		t.Fatal("expected an out-of-range kind to resolve as a no-op")
	}
	if cmds != nil {
		t.Fatalf("expected no commands for an unknown kind, got %v", cmds)
	}
}

func TestHandleDamageUsesLegsDefenseNotStruckPart(t *testing.T) {
	m := newTestManager(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head:     basicSpec(components.Head, 10, 5, 1000), // a huge Defense here must not matter
		RightArm: basicSpec(components.RightArm, 10, 50, 0),
		LeftArm:  basicSpec(components.LeftArm, 10, 5, 0),
		Legs:     basicSpec(components.Legs, 10, 5, 3),
	}
	target := components.CreateCombatant(m, spec)
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)
	legs := ecsx.FindEntityByID(m, parts.LegsID)
	legsStats := ecsx.GetComponentType[*components.PartStats](legs, components.PartStatsComponent)
	legsStats.Stability = 4 // floor(4/2) = 2 added to the legs' own Defense of 3

	result, _ := Process(Context{
		Manager: m, Tunables: data.DefaultTunables(),
		TargetID: target.GetID(), PartKey: components.Head, AttackingPartID: parts.RightArmID,
		Def:     components.EffectDef{Kind: components.DamageEffect},
		Outcome: components.Outcome{IsHit: true},
	})

	want := int(data.DefaultTunables().KPow*50 - data.DefaultTunables().KDef*5)
	if result.RawAmount != want {
		t.Fatalf("expected damage computed off legs defense (%d), got %d", want, result.RawAmount)
	}
}

func TestHandleApplyStunHalvesDamageAndScalesDuration(t *testing.T) {
	m := newTestManager(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10, 5, 0), RightArm: basicSpec(components.RightArm, 10, 50, 0),
		LeftArm: basicSpec(components.LeftArm, 10, 5, 0), Legs: basicSpec(components.Legs, 10, 5, 0),
	}
	target := components.CreateCombatant(m, spec)
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)

	result, cmds := Process(Context{
		Manager: m, Tunables: data.DefaultTunables(),
		TargetID: target.GetID(), PartKey: components.Head, AttackingPartID: parts.RightArmID,
		Def:     components.EffectDef{Kind: components.ApplyStunEffect},
		Outcome: components.Outcome{IsHit: true},
	})

	if result.ActualAmount <= 0 {
		t.Fatalf("expected positive halved stun damage, got %d", result.ActualAmount)
	}
	if len(cmds) != 3 {
		t.Fatalf("expected ApplyDamage + UpsertActiveEffect + TransitionState, got %d commands", len(cmds))
	}
	upsert, ok := cmds[1].(command.UpsertActiveEffect)
	if !ok {
		t.Fatalf("expected second command to be UpsertActiveEffect, got %T", cmds[1])
	}
	if upsert.Effect.DurationMS != float64(result.ActualAmount)*250 {
		t.Fatalf("expected duration to scale with actual damage, got %v", upsert.Effect.DurationMS)
	}
}

func TestHandleApplyGlitchSucceedsOnlyAgainstChargingOrGuardingTarget(t *testing.T) {
	m := newTestManager(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10, 5, 0), RightArm: basicSpec(components.RightArm, 10, 5, 0),
		LeftArm: basicSpec(components.LeftArm, 10, 5, 0), Legs: basicSpec(components.Legs, 10, 5, 0),
	}
	target := components.CreateCombatant(m, spec)

	result, cmds := Process(Context{
		Manager: m, TargetID: target.GetID(),
		Def:     components.EffectDef{Kind: components.ApplyGlitchEffect},
		Outcome: components.Outcome{IsHit: true},
	})
	if !result.IsNoop || cmds != nil {
		t.Fatal("expected a no-op against a target that is neither charging nor guarding")
	}

	components.TransitionTo(target, components.StateSelectedCharging)
	result, cmds = Process(Context{
		Manager: m, TargetID: target.GetID(),
		Def:     components.EffectDef{Kind: components.ApplyGlitchEffect},
		Outcome: components.Outcome{IsHit: false}, // glitch success is state-based, not hit-based
	})
	if result.IsNoop {
		t.Fatal("expected success against a selected-charging target regardless of the hit roll")
	}
	if len(cmds) != 4 {
		t.Fatalf("expected CancelAction + TransitionState + ClearAction + SetGauge, got %d", len(cmds))
	}
	if _, ok := cmds[0].(command.CancelAction); !ok {
		t.Fatalf("expected first command to be CancelAction, got %T", cmds[0])
	}
}

func TestHandleApplyScanAppliesBonusToAllAlliesIncludingSelf(t *testing.T) {
	m := newTestManager(t)
	spec := func(name string) components.CombatantSpec {
		return components.CombatantSpec{
			Name: name, TeamID: 1, BaseSpeed: 1, GaugeMax: 100,
			Head:     basicSpec(components.Head, 10, 5, 0),
			RightArm: basicSpec(components.RightArm, 10, 40, 0),
			LeftArm:  basicSpec(components.LeftArm, 10, 5, 0),
			Legs:     basicSpec(components.Legs, 10, 5, 0),
		}
	}
	caster := components.CreateCombatant(m, spec("caster"))
	ally := components.CreateCombatant(m, spec("ally"))
	casterParts := ecsx.GetComponentType[*components.Parts](caster, components.PartsComponent)

	result, cmds := Process(Context{
		Manager: m, SourceID: caster.GetID(), TargetID: caster.GetID(), AttackingPartID: casterParts.RightArmID,
		Def: components.EffectDef{Kind: components.ApplyScanEffect, Params: map[string]string{
			"statName": "Might", "valueFactor": "0.5",
		}},
	})

	if result.ActualAmount != 20 {
		t.Fatalf("expected bonus floor(40*0.5)=20, got %d", result.ActualAmount)
	}
	if len(cmds) != 2 {
		t.Fatalf("expected one UpsertActiveEffect per ally (including self), got %d", len(cmds))
	}
	targets := map[ecs.EntityID]bool{}
	for _, c := range cmds {
		upsert := c.(command.UpsertActiveEffect)
		targets[upsert.TargetID] = true
		if upsert.Effect.Params["statName"] != "Might" {
			t.Fatalf("expected statName param to carry through, got %+v", upsert.Effect.Params)
		}
	}
	if !targets[caster.GetID()] || !targets[ally.GetID()] {
		t.Fatalf("expected both caster and ally to receive the scan, got %v", targets)
	}
}

func TestHandleApplyGuardUsesTraitGuardCount(t *testing.T) {
	m := newTestManager(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10, 5, 0), RightArm: basicSpec(components.RightArm, 10, 5, 0),
		LeftArm: basicSpec(components.LeftArm, 10, 5, 0), Legs: basicSpec(components.Legs, 10, 5, 0),
	}
	spec.RightArm.HasGuard = true
	spec.RightArm.GuardCount = 3
	target := components.CreateCombatant(m, spec)
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)

	_, cmds := Process(Context{
		Manager: m, TargetID: target.GetID(), AttackingPartID: parts.RightArmID,
		Def: components.EffectDef{Kind: components.ApplyGuardEffect},
	})

	if len(cmds) != 2 {
		t.Fatalf("expected UpsertActiveEffect + TransitionState, got %d commands", len(cmds))
	}
	upsert, ok := cmds[0].(command.UpsertActiveEffect)
	if !ok || upsert.Effect.Count != 3 {
		t.Fatalf("expected the guard effect to carry the trait's count of 3, got %+v", cmds[0])
	}
}
