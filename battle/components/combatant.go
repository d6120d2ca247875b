package components

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/ecsx"
)

// Component and tag variables for the combatant entity. Initialized by
// initCombatantComponents, registered via ecsx.RegisterSubsystem in init().
var (
	PlayerInfoComponent   *ecs.Component
	GaugeComponent        *ecs.Component
	ActionComponent       *ecs.Component
	MedalComponent        *ecs.Component
	PartsComponent        *ecs.Component
	ActiveEffectsComponent *ecs.Component
	PositionComponent     *ecs.Component
	BattleLogComponent    *ecs.Component

	CombatantTag ecs.Tag
)

// PlayerInfo is immutable after creation.
type PlayerInfo struct {
	Name     string
	TeamID   ecs.EntityID
	IsLeader bool
	Color    string
}

// Gauge is the charge meter advancing over time.
// Invariant: 0 <= Value <= Max (spec.md §3, §8).
type Gauge struct {
	Value           float64
	Max             float64
	BaseSpeed       float64
	CurrentSpeed    float64
	SpeedMultiplier float64
}

// Action is latched on selection and cleared on cooldown entry.
type Action struct {
	PartKey       PartKey
	HasPart       bool
	ActionType    ActionLogicType
	TargetID      ecs.EntityID
	HasTarget     bool
	TargetPartKey PartKey
	HasTargetPart bool
	TargetTiming  TargetTiming
}

// Medal drives AI strategy selection; the core only reads Personality and
// hands it to the targeting/strategy lookup (spec.md §4.7).
type Medal struct {
	Personality string
}

// Parts holds the four child part entity ids that make up a combatant.
type Parts struct {
	HeadID     ecs.EntityID
	RightArmID ecs.EntityID
	LeftArmID  ecs.EntityID
	LegsID     ecs.EntityID
}

// ByKey returns the part entity id for the given key.
func (p *Parts) ByKey(k PartKey) ecs.EntityID {
	switch k {
	case Head:
		return p.HeadID
	case RightArm:
		return p.RightArmID
	case LeftArm:
		return p.LeftArmID
	case Legs:
		return p.LegsID
	default:
		return 0
	}
}

// All returns all four part ids alongside their keys, in Head/RightArm/
// LeftArm/Legs order.
func (p *Parts) All() [4]struct {
	Key PartKey
	ID  ecs.EntityID
} {
	return [4]struct {
		Key PartKey
		ID  ecs.EntityID
	}{
		{Head, p.HeadID},
		{RightArm, p.RightArmID},
		{LeftArm, p.LeftArmID},
		{Legs, p.LegsID},
	}
}

// TimedEffect is one entry of ActiveEffects.Effects. Exactly one entry
// exists per (Kind, PartKey) pair -- re-application overwrites (spec.md
// §3 invariants, §4.4).
type TimedEffect struct {
	Kind         EffectKind
	Value        int
	PartKey      PartKey
	HasPartKey   bool
	DurationMS   float64 // 0 if count-based
	Count        int     // 0 if duration-based
	ElapsedMS    float64
	Params       map[string]string
}

// effectKey identifies the (Kind, PartKey, HasPartKey) slot this effect occupies.
type effectKey struct {
	kind    EffectKind
	partKey PartKey
	hasPart bool
}

func (e *TimedEffect) key() effectKey {
	return effectKey{kind: e.Kind, partKey: e.PartKey, hasPart: e.HasPartKey}
}

// ActiveEffects is the ordered list of timed buffs/debuffs/states attached
// to a combatant.
type ActiveEffects struct {
	Effects []TimedEffect
}

// Upsert inserts effect, overwriting any existing entry with the same
// (Kind, PartKey) pair (spec.md §3 invariant, §4.4 APPLY_SCAN/APPLY_GUARD
// "overwrite" rule).
func (ae *ActiveEffects) Upsert(effect TimedEffect) {
	key := effect.key()
	for i := range ae.Effects {
		if ae.Effects[i].key() == key {
			ae.Effects[i] = effect
			return
		}
	}
	ae.Effects = append(ae.Effects, effect)
}

// Find returns the effect matching kind/partKey, if any.
func (ae *ActiveEffects) Find(kind EffectKind, partKey PartKey, hasPart bool) (*TimedEffect, bool) {
	key := effectKey{kind: kind, partKey: partKey, hasPart: hasPart}
	for i := range ae.Effects {
		if ae.Effects[i].key() == key {
			return &ae.Effects[i], true
		}
	}
	return nil, false
}

// Remove deletes the effect matching kind/partKey, if present.
func (ae *ActiveEffects) Remove(kind EffectKind, partKey PartKey, hasPart bool) {
	key := effectKey{kind: kind, partKey: partKey, hasPart: hasPart}
	out := ae.Effects[:0]
	for _, e := range ae.Effects {
		if e.key() != key {
			out = append(out, e)
		}
	}
	ae.Effects = out
}

// Position is a logical battlefield coordinate, x in [0,1], y in [0,100].
type Position struct {
	X float64
	Y float64
}

// AttackRecord is one entry of BattleLog's last-attack bookkeeping.
type AttackRecord struct {
	CombatantID ecs.EntityID
	PartKey     PartKey
	Turn        int
}

// BattleLog tracks the most recent attack made and received by a combatant.
type BattleLog struct {
	LastAttack      *AttackRecord
	LastAttackedBy  *AttackRecord
}

func initCombatantComponents(m *ecsx.Manager) {
	PlayerInfoComponent = ecsx.NewComponent(m)
	GaugeComponent = ecsx.NewComponent(m)
	ActionComponent = ecsx.NewComponent(m)
	MedalComponent = ecsx.NewComponent(m)
	PartsComponent = ecsx.NewComponent(m)
	ActiveEffectsComponent = ecsx.NewComponent(m)
	PositionComponent = ecsx.NewComponent(m)
	BattleLogComponent = ecsx.NewComponent(m)

	CombatantTag = ecs.BuildTag(PlayerInfoComponent, GaugeComponent, PartsComponent)
	m.Tags["combatant"] = CombatantTag
}

func init() {
	ecsx.RegisterSubsystem(func(m *ecsx.Manager) {
		ecsx.RegisterCoreTag(m)
		initStateTags(m)
		initCombatantComponents(m)
		initPartComponents(m)
		initTransientComponents(m)
		initSingletonComponents(m)
	})
}
