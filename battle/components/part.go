package components

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/ecsx"
)

// Component and tag variables for part entities.
var (
	PartStatusComponent         *ecs.Component
	PartStatsComponent          *ecs.Component
	ActionLogicComponent        *ecs.Component
	TargetingBehaviorComponent  *ecs.Component
	AccuracyBehaviorComponent   *ecs.Component
	ImpactBehaviorComponent     *ecs.Component
	AttachedToOwnerComponent    *ecs.Component
	PartVisualConfigComponent   *ecs.Component

	TraitPenetrateComponent     *ecs.Component
	TraitCriticalBonusComponent *ecs.Component
	TraitGuardComponent         *ecs.Component

	PartTag ecs.Tag
)

// PartStatus is the only field that mutates during combat outside of
// active effects: HP monotonically decreases, IsBroken never clears
// (spec.md §3 invariants).
type PartStatus struct {
	HP       int
	MaxHP    int
	IsBroken bool
}

// PartStats holds a part's static combat stats.
type PartStats struct {
	Might      int
	Success    int
	Armor      int
	Mobility   int
	Propulsion int
	Stability  int
	Defense    int
}

// ActionLogic classifies what a part's action does.
type ActionLogic struct {
	Type      ActionLogicType
	IsSupport bool
}

// TargetingBehavior describes when and what a part's action can target.
type TargetingBehavior struct {
	Timing       TargetTiming
	Scope        TargetScope
	AutoStrategy string // strategy key for AI collaborator; "" = default
}

// AccuracyBehavior selects which hit-roll rule a part's action uses.
type AccuracyBehavior struct {
	Type AccuracyType
}

// EffectDef is one entry of a part's ImpactBehavior.Effects list: the
// static definition of an effect the part can apply, read by the matching
// handler's Process step (battle/effects).
type EffectDef struct {
	Kind        EffectKind
	Calculation string            // e.g. "AIMED_SHOT"; keys battle/hooks stat modifiers
	Params      map[string]string // effect-specific tunables, e.g. scan "statName"
}

// ImpactBehavior lists the effects a part's action produces, in resolution
// order (spec.md §4.3 step 5, §5 ordering guarantee).
type ImpactBehavior struct {
	Effects []EffectDef
}

// AttachedToOwner links a part entity back to its owning combatant.
type AttachedToOwner struct {
	OwnerID ecs.EntityID
	PartKey PartKey
}

// TraitCriticalBonus is the payload for the matching trait tag: a flat
// addition to critical chance.
type TraitCriticalBonus struct {
	Rate float64
}

// TraitGuard is the payload for the matching trait tag: how many guard
// charges APPLY_GUARD grants when this part is the guarding part.
type TraitGuard struct {
	Count int
}

// PartVisualConfig carries presentation hints for declaration/impact
// messages; read only by battle/tasks when building DialogTask params.
type PartVisualConfig struct {
	DeclarationMessageKey string
	ImpactMessageKey      string
	AnimationKind         string
	ImpactClassName       string
}

func initPartComponents(m *ecsx.Manager) {
	PartStatusComponent = ecsx.NewComponent(m)
	PartStatsComponent = ecsx.NewComponent(m)
	ActionLogicComponent = ecsx.NewComponent(m)
	TargetingBehaviorComponent = ecsx.NewComponent(m)
	AccuracyBehaviorComponent = ecsx.NewComponent(m)
	ImpactBehaviorComponent = ecsx.NewComponent(m)
	AttachedToOwnerComponent = ecsx.NewComponent(m)
	PartVisualConfigComponent = ecsx.NewComponent(m)

	TraitPenetrateComponent = ecsx.NewComponent(m)
	TraitCriticalBonusComponent = ecsx.NewComponent(m)
	TraitGuardComponent = ecsx.NewComponent(m)

	PartTag = ecs.BuildTag(PartStatusComponent, PartStatsComponent, AttachedToOwnerComponent)
	m.Tags["part"] = PartTag
}
