// Package ai is the reference AI collaborator: personality string ->
// strategy-key -> strategy-function lookup (spec.md §4.7). It is
// deliberately minimal -- just enough to drive the selection phase for
// the simulator harness and tests without a human or a richer plugged-
// in AI -- and consumes only the same targeting/component surface an
// external AI would.
package ai

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/components"
	"battlecore/battle/ecsx"
	"battlecore/battle/targeting"
)

// Decision is the {targetId, targetPartKey} (plus which of the actor's
// own parts to use) a strategy function hands back to the selection
// coordinator, mirroring the shape a human player's UI selection would
// produce.
type Decision struct {
	PartKey       components.PartKey
	HasPart       bool
	TargetID      ecs.EntityID
	HasTarget     bool
	TargetPartKey components.PartKey
	HasTargetPart bool
}

// StrategyFunc decides one combatant's action for the current selection
// prompt.
type StrategyFunc func(m *ecsx.Manager, actorID ecs.EntityID) Decision

var registry = map[string]StrategyFunc{}

// Register installs fn under key, overwriting any previous registration.
func Register(key string, fn StrategyFunc) {
	registry[key] = fn
}

// Get returns the strategy registered under key, or nil.
func Get(key string) StrategyFunc {
	return registry[key]
}

const (
	Aggressive = "aggressive"
	Support    = "support"
	Default    = "default"
)

func init() {
	Register(Aggressive, aggressiveStrategy)
	Register(Support, supportStrategy)
	Register(Default, aggressiveStrategy)
}

// Decide looks up actorID's Medal.Personality and runs the matching
// strategy, falling back to Default when the personality has none
// registered.
func Decide(m *ecsx.Manager, actorID ecs.EntityID) Decision {
	actor := ecsx.FindEntityByID(m, actorID)
	medal := ecsx.GetComponentType[*components.Medal](actor, components.MedalComponent)

	fn := Get(Default)
	if medal != nil {
		if registered := Get(medal.Personality); registered != nil {
			fn = registered
		}
	}
	if fn == nil {
		return Decision{}
	}
	return fn(m, actorID)
}

// aggressiveStrategy picks the actor's first usable offensive part and
// targets the first valid enemy's head, falling back to any non-broken
// part of that enemy if the head is already gone.
func aggressiveStrategy(m *ecsx.Manager, actorID ecs.EntityID) Decision {
	partKey, ok := offensivePart(m, actorID)
	if !ok {
		return Decision{}
	}

	enemies := targeting.GetValidEnemies(m, actorID)
	if len(enemies) == 0 {
		return Decision{}
	}
	targetID := enemies[0]

	targetKey := components.Head
	if components.IsBroken(m, targetID) {
		if key, ok := targeting.FindBestDefensePart(m, targetID); ok {
			targetKey = key
		} else {
			return Decision{}
		}
	}

	return Decision{
		PartKey: partKey, HasPart: true,
		TargetID: targetID, HasTarget: true,
		TargetPartKey: targetKey, HasTargetPart: true,
	}
}

// supportStrategy picks the actor's first healing part and targets the
// most-damaged ally part, falling back to an aggressive decision if no
// healing part exists or every ally is at full HP.
func supportStrategy(m *ecsx.Manager, actorID ecs.EntityID) Decision {
	partKey, ok := healPart(m, actorID)
	if !ok {
		return aggressiveStrategy(m, actorID)
	}

	targetID, targetKey, ok := targeting.FindMostDamagedAllyPart(m, actorID)
	if !ok {
		return aggressiveStrategy(m, actorID)
	}

	return Decision{
		PartKey: partKey, HasPart: true,
		TargetID: targetID, HasTarget: true,
		TargetPartKey: targetKey, HasTargetPart: true,
	}
}

func offensivePart(m *ecsx.Manager, actorID ecs.EntityID) (components.PartKey, bool) {
	return firstUsablePart(m, actorID, func(logic *components.ActionLogic) bool {
		return logic.Type == components.Shoot || logic.Type == components.Melee
	})
}

func healPart(m *ecsx.Manager, actorID ecs.EntityID) (components.PartKey, bool) {
	return firstUsablePart(m, actorID, func(logic *components.ActionLogic) bool {
		return logic.Type == components.Heal
	})
}

func firstUsablePart(m *ecsx.Manager, actorID ecs.EntityID, matches func(*components.ActionLogic) bool) (components.PartKey, bool) {
	actor := ecsx.FindEntityByID(m, actorID)
	parts := ecsx.GetComponentType[*components.Parts](actor, components.PartsComponent)
	if parts == nil {
		return 0, false
	}
	for _, entry := range parts.All() {
		if entry.Key == components.Head {
			continue // this strategy never offers the head as an actable part
		}
		partEntity := ecsx.FindEntityByID(m, entry.ID)
		if partEntity == nil {
			continue
		}
		status := ecsx.GetComponentType[*components.PartStatus](partEntity, components.PartStatusComponent)
		if status == nil || status.IsBroken {
			continue
		}
		logic := ecsx.GetComponentType[*components.ActionLogic](partEntity, components.ActionLogicComponent)
		if logic == nil || !matches(logic) {
			continue
		}
		return entry.Key, true
	}
	return 0, false
}
