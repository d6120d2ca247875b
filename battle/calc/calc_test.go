package calc

import (
	"testing"

	"battlecore/battle/data"
)

func TestHitChanceClampsToBounds(t *testing.T) {
	tn := data.DefaultTunables()

	low := HitChance(tn, 0, 100000)
	if low != tn.MinHitChance {
		t.Fatalf("expected clamp to MinHitChance, got %v", low)
	}

	high := HitChance(tn, 100000, 0)
	if high != tn.MaxHitChance {
		t.Fatalf("expected clamp to MaxHitChance, got %v", high)
	}
}

func TestCriticalChanceNeverNegativeOrAboveOne(t *testing.T) {
	tn := data.DefaultTunables()
	if c := CriticalChance(tn, -1000, -5); c < 0 {
		t.Fatalf("critical chance should clamp to 0, got %v", c)
	}
	if c := CriticalChance(tn, 1000000, 5); c > 1 {
		t.Fatalf("critical chance should clamp to 1, got %v", c)
	}
}

func TestDefenseChanceClampsToBounds(t *testing.T) {
	tn := data.DefaultTunables()
	if c := DefenseChance(tn, -1000); c < 0 {
		t.Fatalf("defense chance should clamp to 0, got %v", c)
	}
	if c := DefenseChance(tn, 1000000); c > 1 {
		t.Fatalf("defense chance should clamp to 1, got %v", c)
	}
}

func TestRollOutcomeOnlyRollsDefendedWhenNotCritical(t *testing.T) {
	tn := data.DefaultTunables()
	tn.BaseHitChance = 1
	tn.MaxHitChance = 1
	tn.BaseCritChance = 1

	outcome := RollOutcome(tn, 1000000, 0, 1000000, 0)
	if !outcome.IsHit || !outcome.IsCritical {
		t.Fatalf("expected a guaranteed hit and critical, got %+v", outcome)
	}
	if outcome.IsDefended {
		t.Fatalf("a critical hit should never also roll defended, got %+v", outcome)
	}
}

func TestDamageAlwaysAtLeastOne(t *testing.T) {
	tn := data.DefaultTunables()
	dmg := Damage(tn, DamageInput{Might: 1, Defense: 1000})
	if dmg < 1 {
		t.Fatalf("damage should never go below 1, got %d", dmg)
	}
}

func TestDamageCriticalMultipliesBase(t *testing.T) {
	tn := data.DefaultTunables()
	normal := Damage(tn, DamageInput{Might: 50, Defense: 0})
	crit := Damage(tn, DamageInput{Might: 50, Defense: 0, IsCritical: true})
	if crit <= normal {
		t.Fatalf("expected critical damage %d to exceed normal damage %d", crit, normal)
	}
}

func TestDamageGuardReducesDamage(t *testing.T) {
	tn := data.DefaultTunables()
	unguarded := Damage(tn, DamageInput{Might: 50, Defense: 0})
	guarded := Damage(tn, DamageInput{Might: 50, Defense: 0, IsGuard: true})
	if guarded >= unguarded {
		t.Fatalf("expected guarded damage %d to be less than unguarded %d", guarded, unguarded)
	}
}

func TestHealAlwaysAtLeastOne(t *testing.T) {
	tn := data.DefaultTunables()
	if h := Heal(tn, 0); h < 1 {
		t.Fatalf("heal should never go below 1, got %d", h)
	}
}

func TestSpeedMultiplierGlitchHalves(t *testing.T) {
	normal := SpeedMultiplier(20, false)
	glitched := SpeedMultiplier(20, true)
	if glitched >= normal {
		t.Fatalf("expected glitched speed %v to be less than normal %v", glitched, normal)
	}
}
