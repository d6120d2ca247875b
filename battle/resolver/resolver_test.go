package resolver

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

func basicPart(key components.PartKey, might, defense, mobility, success int, effects ...components.EffectDef) components.PartSpec {
	return components.PartSpec{
		Key:      key,
		MaxHP:    20,
		Stats:    components.PartStats{Might: might, Defense: defense, Mobility: mobility, Success: success},
		Accuracy: components.AccuracyBehavior{Type: components.PerfectAccuracy},
		Targeting: components.TargetingBehavior{Scope: components.EnemySingle},
		Logic:    components.ActionLogic{Type: components.Shoot},
		Impact:   components.ImpactBehavior{Effects: effects},
	}
}

func spawnCombatant(m *ecsx.Manager, name string, team ecs.EntityID, gunEffects ...components.EffectDef) *ecs.Entity {
	spec := components.CombatantSpec{
		Name: name, TeamID: team, BaseSpeed: 1, GaugeMax: 100,
		Head:     basicPart(components.Head, 5, 0, 0, 50),
		RightArm: basicPart(components.RightArm, 10, 2, 0, 80, gunEffects...),
		LeftArm:  basicPart(components.LeftArm, 5, 2, 0, 50),
		Legs:     basicPart(components.Legs, 5, 0, 0, 50),
	}
	return components.CreateCombatant(m, spec)
}

func TestResolveAppliesDamageOnHit(t *testing.T) {
	m := newTestManager(t)
	tn := data.DefaultTunables()

	attacker := spawnCombatant(m, "attacker", 1, components.EffectDef{Kind: components.DamageEffect})
	defender := spawnCombatant(m, "defender", 2)

	action := ecsx.GetComponentType[*components.Action](attacker, components.ActionComponent)
	action.HasPart = true
	action.PartKey = components.RightArm
	action.HasTarget = true
	action.TargetID = defender.GetID()
	action.TargetPartKey = components.Head

	result := Resolve(m, tn, attacker.GetID(), 1)
	if result.Cancelled {
		t.Fatalf("expected resolution to succeed, cancelled with reason %v", result.CancelReason)
	}
	if !result.Outcome.IsHit {
		t.Fatal("expected a perfect-accuracy action to hit")
	}
	if len(result.EffectResults) != 1 || result.EffectResults[0].Kind != components.DamageEffect {
		t.Fatalf("expected one damage effect result, got %+v", result.EffectResults)
	}

	executor := command.NewExecutor(m, false)
	if errs := executor.Apply(result.Commands); len(errs) != 0 {
		t.Fatalf("unexpected errors applying commands: %v", errs)
	}

	defenderParts := ecsx.GetComponentType[*components.Parts](defender, components.PartsComponent)
	head := ecsx.FindEntityByID(m, defenderParts.HeadID)
	status := ecsx.GetComponentType[*components.PartStatus](head, components.PartStatusComponent)
	if status.HP >= status.MaxHP {
		t.Fatalf("expected head HP to drop below max, got %d/%d", status.HP, status.MaxHP)
	}
}

func TestResolveCancelsOnInvalidTarget(t *testing.T) {
	m := newTestManager(t)
	tn := data.DefaultTunables()

	attacker := spawnCombatant(m, "attacker", 1, components.EffectDef{Kind: components.DamageEffect})
	ally := spawnCombatant(m, "ally", 1)

	action := ecsx.GetComponentType[*components.Action](attacker, components.ActionComponent)
	action.HasPart = true
	action.PartKey = components.RightArm
	action.HasTarget = true
	action.TargetID = ally.GetID() // same team: invalid for an EnemySingle-scoped part
	action.TargetPartKey = components.Head

	result := Resolve(m, tn, attacker.GetID(), 1)
	if !result.Cancelled {
		t.Fatal("expected resolution against a same-team target to cancel")
	}
	if result.CancelReason != components.TargetLost {
		t.Fatalf("expected TargetLost, got %v", result.CancelReason)
	}
}

func TestResolveRedirectsToGuardian(t *testing.T) {
	m := newTestManager(t)
	tn := data.DefaultTunables()

	attacker := spawnCombatant(m, "attacker", 1, components.EffectDef{Kind: components.DamageEffect})
	target := spawnCombatant(m, "target", 2)
	guardian := spawnCombatant(m, "guardian", 2)

	active := ecsx.GetComponentType[*components.ActiveEffects](guardian, components.ActiveEffectsComponent)
	active.Upsert(components.TimedEffect{Kind: components.ApplyGuardEffect, PartKey: components.Head, Count: 1})

	action := ecsx.GetComponentType[*components.Action](attacker, components.ActionComponent)
	action.HasPart = true
	action.PartKey = components.RightArm
	action.HasTarget = true
	action.TargetID = target.GetID()
	action.TargetPartKey = components.Head

	result := Resolve(m, tn, attacker.GetID(), 1)
	if !result.WasRedirectedToGuard {
		t.Fatal("expected action to redirect to the guarding ally")
	}
	if result.FinalTargetID != guardian.GetID() {
		t.Fatalf("expected final target to be guardian %d, got %d", guardian.GetID(), result.FinalTargetID)
	}
}
