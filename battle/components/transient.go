package components

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/ecsx"
)

// Transient components back the event-as-component pattern (spec.md §9
// DESIGN NOTES): a producing system creates an entity carrying one of
// these, a consuming system queries for it and destroys the entity once
// processed. They never persist across an action's lifetime.
var (
	ApplyEffectComponent    *ecs.Component
	EffectContextComponent  *ecs.Component
	EffectResultComponent   *ecs.Component

	HpChangedComponent       *ecs.Component
	PartBrokenComponent      *ecs.Component
	ActionCancelledComponent *ecs.Component

	PendingEffectTag ecs.Tag
	HpChangedTag     ecs.Tag
	PartBrokenTag    ecs.Tag
	ActionCancelledTag ecs.Tag
)

// EffectContext accompanies an ApplyEffect component: everything a handler
// needs to apply the effect without re-querying the whole resolution.
type EffectContext struct {
	SourceID      ecs.EntityID
	TargetID      ecs.EntityID
	HasTarget     bool
	PartKey       PartKey
	HasPartKey    bool
	ParentID      ecs.EntityID // entity this effect chained from, 0 if none
	Outcome       Outcome
	AttackingPart ecs.EntityID
}

// Outcome is the hit/critical/defense resolution for one resolved action
// (spec.md §4.3 step 4).
type Outcome struct {
	IsHit            bool
	IsCritical       bool
	IsDefended       bool
	FinalTargetPartKey PartKey
}

// ApplyEffect is a pending effect awaiting its handler's Apply step.
type ApplyEffect struct {
	Kind  EffectKind
	Value int
}

// EffectResult replaces ApplyEffect once a handler's Apply step has run.
type EffectResult struct {
	Kind           EffectKind
	TargetID       ecs.EntityID
	PartKey        PartKey
	HasPartKey     bool
	ActualAmount   int // damage dealt, HP healed, etc. -- meaning is kind-specific
	RawAmount      int // value before clamping, used to compute overkill
	IsGuardBroken  bool
	IsGuardExpired bool
	IsNoop         bool
}

// HpChanged is emitted whenever PartStatus.HP changes; the sum of Change
// across a frame's HpChanged entities must equal the sum of HP deltas
// applied that frame (spec.md §8).
type HpChanged struct {
	TargetID ecs.EntityID
	PartKey  PartKey
	Change   int // negative for damage, positive for heal
	NewHP    int
}

// PartBroken is emitted the instant a part's HP reaches 0.
type PartBroken struct {
	TargetID ecs.EntityID
	PartKey  PartKey
	IsHead   bool
}

// ActionCancelled is emitted when a glitch (or other interrupt effect)
// cancels a target's pending action.
type ActionCancelled struct {
	TargetID ecs.EntityID
	Reason   CancelReason
}

func initTransientComponents(m *ecsx.Manager) {
	ApplyEffectComponent = ecsx.NewComponent(m)
	EffectContextComponent = ecsx.NewComponent(m)
	EffectResultComponent = ecsx.NewComponent(m)

	HpChangedComponent = ecsx.NewComponent(m)
	PartBrokenComponent = ecsx.NewComponent(m)
	ActionCancelledComponent = ecsx.NewComponent(m)

	PendingEffectTag = ecs.BuildTag(ApplyEffectComponent, EffectContextComponent)
	HpChangedTag = ecs.BuildTag(HpChangedComponent)
	PartBrokenTag = ecs.BuildTag(PartBrokenComponent)
	ActionCancelledTag = ecs.BuildTag(ActionCancelledComponent)

	m.Tags["pendingEffect"] = PendingEffectTag
	m.Tags["hpChanged"] = HpChangedTag
	m.Tags["partBroken"] = PartBrokenTag
	m.Tags["actionCancelled"] = ActionCancelledTag
}
