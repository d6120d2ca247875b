package data

import (
	"fmt"
	"strings"

	"battlecore/battle/components"
)

// The JSON master data files spell enums as upper/camel-case strings for
// readability; these Parse functions are the only place that string form
// ever touches the closed enums in battle/components, so an unrecognized
// value fails fast at load time instead of silently zero-valuing into
// Head/Shoot/DamageEffect.

func ParsePartKey(s string) (components.PartKey, error) {
	switch strings.ToLower(s) {
	case "head":
		return components.Head, nil
	case "rightarm":
		return components.RightArm, nil
	case "leftarm":
		return components.LeftArm, nil
	case "legs":
		return components.Legs, nil
	default:
		return 0, fmt.Errorf("data: unknown part key %q", s)
	}
}

func ParseActionLogicType(s string) (components.ActionLogicType, error) {
	switch strings.ToUpper(s) {
	case "SHOOT":
		return components.Shoot, nil
	case "MELEE":
		return components.Melee, nil
	case "HEAL":
		return components.Heal, nil
	case "SUPPORT":
		return components.Support, nil
	case "INTERRUPT":
		return components.Interrupt, nil
	case "DEFEND":
		return components.Defend, nil
	default:
		return 0, fmt.Errorf("data: unknown action logic type %q", s)
	}
}

func ParseTargetTiming(s string) (components.TargetTiming, error) {
	switch strings.ToUpper(s) {
	case "PRE_MOVE":
		return components.PreMove, nil
	case "POST_MOVE":
		return components.PostMove, nil
	default:
		return 0, fmt.Errorf("data: unknown target timing %q", s)
	}
}

func ParseTargetScope(s string) (components.TargetScope, error) {
	switch strings.ToUpper(s) {
	case "ENEMY_SINGLE":
		return components.EnemySingle, nil
	case "ALLY_SINGLE":
		return components.AllySingle, nil
	case "ALLY_TEAM":
		return components.AllyTeam, nil
	case "SELF":
		return components.Self, nil
	default:
		return 0, fmt.Errorf("data: unknown target scope %q", s)
	}
}

func ParseAccuracyType(s string) (components.AccuracyType, error) {
	switch strings.ToUpper(s) {
	case "STANDARD":
		return components.StandardAccuracy, nil
	case "PERFECT":
		return components.PerfectAccuracy, nil
	default:
		return 0, fmt.Errorf("data: unknown accuracy type %q", s)
	}
}

func ParseEffectKind(s string) (components.EffectKind, error) {
	switch strings.ToUpper(s) {
	case "DAMAGE":
		return components.DamageEffect, nil
	case "HEAL":
		return components.HealEffect, nil
	case "APPLY_SCAN":
		return components.ApplyScanEffect, nil
	case "APPLY_GUARD":
		return components.ApplyGuardEffect, nil
	case "CONSUME_GUARD":
		return components.ConsumeGuardEffect, nil
	case "APPLY_GLITCH":
		return components.ApplyGlitchEffect, nil
	case "APPLY_STUN":
		return components.ApplyStunEffect, nil
	default:
		return 0, fmt.Errorf("data: unknown effect kind %q", s)
	}
}
