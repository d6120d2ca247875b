package hooks

import (
	"testing"

	"battlecore/battle/command"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
)

func TestRegisteredTraitsArePresent(t *testing.T) {
	for _, key := range []string{TraitPenetrate, TraitCriticalBonus} {
		if Get(key) == nil {
			t.Fatalf("expected %q to be registered", key)
		}
	}
}

func TestGetUnknownTraitReturnsNil(t *testing.T) {
	if Get("does-not-exist") != nil {
		t.Fatal("expected nil for an unregistered trait key")
	}
}

func TestPenetratePostEffectNoopWithoutOverkill(t *testing.T) {
	ctx := PostEffectContext{
		Tunables: data.DefaultTunables(),
		Result:   components.EffectResult{Kind: components.DamageEffect, RawAmount: 5, ActualAmount: 5},
	}
	if cmds := penetratePostEffect(ctx); cmds != nil {
		t.Fatalf("expected no chained commands without overkill, got %v", cmds)
	}
}

func TestPenetratePostEffectIgnoresNonDamageEffects(t *testing.T) {
	ctx := PostEffectContext{
		Tunables: data.DefaultTunables(),
		Result:   components.EffectResult{Kind: components.HealEffect, RawAmount: 10, ActualAmount: 2},
	}
	if cmds := penetratePostEffect(ctx); cmds != nil {
		t.Fatalf("expected no chained commands for a non-damage effect, got %v", cmds)
	}
}

func TestPenetratePostEffectChainsRawOverkillWithoutRescaling(t *testing.T) {
	m := ecsx.NewManager()
	ecsx.AttachAll(m)
	spec := components.CombatantSpec{
		Name: "A", BaseSpeed: 1, GaugeMax: 100,
		Head:     components.PartSpec{Key: components.Head, MaxHP: 10},
		RightArm: components.PartSpec{Key: components.RightArm, MaxHP: 10},
		LeftArm:  components.PartSpec{Key: components.LeftArm, MaxHP: 10},
		Legs:     components.PartSpec{Key: components.Legs, MaxHP: 10},
	}
	target := components.CreateCombatant(m, spec)

	ctx := PostEffectContext{
		Manager: m, Tunables: data.DefaultTunables(),
		TargetID: target.GetID(), PartKey: components.RightArm,
		Result: components.EffectResult{Kind: components.DamageEffect, RawAmount: 50, ActualAmount: 20},
	}

	cmds := penetratePostEffect(ctx)
	if len(cmds) != 1 {
		t.Fatalf("expected one chained ApplyDamage command, got %d", len(cmds))
	}
	apply, ok := cmds[0].(command.ApplyDamage)
	if !ok {
		t.Fatalf("expected ApplyDamage, got %T", cmds[0])
	}
	if apply.Amount != 30 {
		t.Fatalf("expected chained damage to equal the raw overkill (30) unscaled, got %d", apply.Amount)
	}
}
