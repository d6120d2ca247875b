package components

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/ecsx"
)

// PartSpec is the static data needed to create one part entity, read from
// the part catalog (battle/data) by the caller and handed in here --
// components stays free of any knowledge of JSON/master-data shape.
type PartSpec struct {
	Key               PartKey
	MaxHP             int
	Stats             PartStats
	Logic             ActionLogic
	Targeting         TargetingBehavior
	Accuracy          AccuracyBehavior
	Impact            ImpactBehavior
	Visual            PartVisualConfig
	HasPenetrate      bool
	CriticalBonusRate float64
	HasCriticalBonus  bool
	GuardCount        int
	HasGuard          bool
}

// CombatantSpec is the static data needed to create one combatant entity
// and its four parts.
type CombatantSpec struct {
	Name       string
	TeamID     ecs.EntityID
	IsLeader   bool
	Color      string
	Personality string
	BaseSpeed  float64
	GaugeMax   float64
	Position   Position
	Head, RightArm, LeftArm, Legs PartSpec
}

// CreatePart creates one part entity under owner with the given key and
// spec, and returns its entity.
func CreatePart(m *ecsx.Manager, ownerID ecs.EntityID, spec PartSpec) *ecs.Entity {
	e := m.World.NewEntity()
	e.AddComponent(PartStatusComponent, &PartStatus{HP: spec.MaxHP, MaxHP: spec.MaxHP})
	e.AddComponent(PartStatsComponent, &spec.Stats)
	e.AddComponent(ActionLogicComponent, &spec.Logic)
	e.AddComponent(TargetingBehaviorComponent, &spec.Targeting)
	e.AddComponent(AccuracyBehaviorComponent, &spec.Accuracy)
	e.AddComponent(ImpactBehaviorComponent, &spec.Impact)
	e.AddComponent(PartVisualConfigComponent, &spec.Visual)
	e.AddComponent(AttachedToOwnerComponent, &AttachedToOwner{OwnerID: ownerID, PartKey: spec.Key})

	if spec.HasPenetrate {
		e.AddComponent(TraitPenetrateComponent, &struct{}{})
	}
	if spec.HasCriticalBonus {
		e.AddComponent(TraitCriticalBonusComponent, &TraitCriticalBonus{Rate: spec.CriticalBonusRate})
	}
	if spec.HasGuard {
		e.AddComponent(TraitGuardComponent, &TraitGuard{Count: spec.GuardCount})
	}
	return e
}

// CreateCombatant creates one combatant entity and its four part entities,
// wires Parts to reference them, and puts the combatant in
// StateReadyToSelect (the state a freshly-created, not-yet-acted
// combatant starts in at battle start, per spec.md §4.2).
func CreateCombatant(m *ecsx.Manager, spec CombatantSpec) *ecs.Entity {
	e := m.World.NewEntity()

	head := CreatePart(m, e.GetID(), spec.Head)
	rightArm := CreatePart(m, e.GetID(), spec.RightArm)
	leftArm := CreatePart(m, e.GetID(), spec.LeftArm)
	legs := CreatePart(m, e.GetID(), spec.Legs)

	e.AddComponent(PlayerInfoComponent, &PlayerInfo{
		Name: spec.Name, TeamID: spec.TeamID, IsLeader: spec.IsLeader, Color: spec.Color,
	})
	e.AddComponent(GaugeComponent, &Gauge{
		Value: 0, Max: spec.GaugeMax, BaseSpeed: spec.BaseSpeed, CurrentSpeed: spec.BaseSpeed, SpeedMultiplier: 1.0,
	})
	e.AddComponent(ActionComponent, &Action{})
	e.AddComponent(MedalComponent, &Medal{Personality: spec.Personality})
	e.AddComponent(PartsComponent, &Parts{
		HeadID: head.GetID(), RightArmID: rightArm.GetID(), LeftArmID: leftArm.GetID(), LegsID: legs.GetID(),
	})
	e.AddComponent(ActiveEffectsComponent, &ActiveEffects{})
	e.AddComponent(PositionComponent, &spec.Position)
	e.AddComponent(BattleLogComponent, &BattleLog{})

	TransitionTo(e, StateReadyToSelect)
	return e
}

// IsBroken reports whether a combatant's head part is broken -- the
// single definition of "combatant broken" used throughout the engine
// (spec.md §3: "Head destruction ⇒ combatant is broken.").
func IsBroken(m *ecsx.Manager, combatantID ecs.EntityID) bool {
	combatant := ecsx.FindEntityByID(m, combatantID)
	if combatant == nil {
		return true
	}
	parts := ecsx.GetComponentType[*Parts](combatant, PartsComponent)
	if parts == nil {
		return true
	}
	head := ecsx.FindEntityByID(m, parts.HeadID)
	status := ecsx.GetComponentType[*PartStatus](head, PartStatusComponent)
	return status == nil || status.IsBroken
}
