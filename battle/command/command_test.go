package command

import (
	"testing"

	"battlecore/battle/components"
	"battlecore/battle/ecsx"
)

func newTestExecutor(t *testing.T) (*Executor, *ecsx.Manager) {
	t.Helper()
	m := ecsx.NewManager()
	ecsx.AttachAll(m)
	return NewExecutor(m, false), m
}

func basicSpec(key components.PartKey, maxHP int) components.PartSpec {
	return components.PartSpec{Key: key, MaxHP: maxHP, Stats: components.PartStats{}}
}

func TestApplyDamageClampsAtZeroAndMarksBroken(t *testing.T) {
	e, m := newTestExecutor(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10), RightArm: basicSpec(components.RightArm, 10),
		LeftArm: basicSpec(components.LeftArm, 10), Legs: basicSpec(components.Legs, 10),
	}
	entity := components.CreateCombatant(m, spec)

	errs := e.Apply([]Command{ApplyDamage{TargetID: entity.GetID(), PartKey: components.Head, Amount: 100}})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if !components.IsBroken(m, entity.GetID()) {
		t.Fatal("expected combatant to be broken after head destroyed")
	}
}

func TestApplyHealDoesNotExceedMaxHP(t *testing.T) {
	e, m := newTestExecutor(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10), RightArm: basicSpec(components.RightArm, 10),
		LeftArm: basicSpec(components.LeftArm, 10), Legs: basicSpec(components.Legs, 10),
	}
	entity := components.CreateCombatant(m, spec)

	e.Apply([]Command{ApplyHeal{TargetID: entity.GetID(), PartKey: components.Head, Amount: 1000}})

	_, status := e.partStatus(entity.GetID(), components.Head)
	if status.HP != status.MaxHP {
		t.Fatalf("expected HP clamped to MaxHP=%d, got %d", status.MaxHP, status.HP)
	}
}

func TestConsumeGuardChargeRemovesAtZero(t *testing.T) {
	e, m := newTestExecutor(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10), RightArm: basicSpec(components.RightArm, 10),
		LeftArm: basicSpec(components.LeftArm, 10), Legs: basicSpec(components.Legs, 10),
	}
	entity := components.CreateCombatant(m, spec)
	active := ecsx.GetComponentType[*components.ActiveEffects](entity, components.ActiveEffectsComponent)
	active.Upsert(components.TimedEffect{Kind: components.ApplyGuardEffect, Count: 1})

	e.Apply([]Command{ConsumeGuardCharge{GuardianID: entity.GetID()}})

	if _, ok := active.Find(components.ApplyGuardEffect, components.Head, false); ok {
		t.Fatal("expected guard effect to be removed once charges hit 0")
	}
}

func TestTransitionStateEnforcesSingleTag(t *testing.T) {
	e, m := newTestExecutor(t)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head: basicSpec(components.Head, 10), RightArm: basicSpec(components.RightArm, 10),
		LeftArm: basicSpec(components.LeftArm, 10), Legs: basicSpec(components.Legs, 10),
	}
	entity := components.CreateCombatant(m, spec)

	e.Apply([]Command{TransitionState{EntityID: entity.GetID(), NewState: components.StateExecuting}})

	state, ok := components.CurrentState(entity)
	if !ok || state != components.StateExecuting {
		t.Fatalf("expected StateExecuting, got %v ok=%v", state, ok)
	}
}

func TestApplyReportsErrorForMissingEntity(t *testing.T) {
	e, _ := newTestExecutor(t)
	errs := e.Apply([]Command{SetGauge{EntityID: 999999, Value: 5}})
	if len(errs) != 1 {
		t.Fatalf("expected one error for missing entity, got %v", errs)
	}
}
