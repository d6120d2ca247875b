// Package targeting resolves who a part's action may legally target and
// picks concrete targets for guardian interception, penetration, and AI
// defaults (spec.md §4.7). Every function here is a pure query over the
// ECS world: none mutates state.
package targeting

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/components"
	"battlecore/battle/ecsx"
	"battlecore/battle/randgen"
)

// IsValidTarget reports whether targetID is a legal target for an action
// with the given scope, issued by actorID.
func IsValidTarget(m *ecsx.Manager, actorID, targetID ecs.EntityID, scope components.TargetScope) bool {
	actor := ecsx.FindEntityByID(m, actorID)
	target := ecsx.FindEntityByID(m, targetID)
	if actor == nil || target == nil {
		return false
	}
	if components.IsBroken(m, targetID) {
		return false
	}

	actorInfo := ecsx.GetComponentType[*components.PlayerInfo](actor, components.PlayerInfoComponent)
	targetInfo := ecsx.GetComponentType[*components.PlayerInfo](target, components.PlayerInfoComponent)
	if actorInfo == nil || targetInfo == nil {
		return false
	}

	switch scope {
	case components.Self:
		return targetID == actorID
	case components.AllySingle, components.AllyTeam:
		return targetInfo.TeamID == actorInfo.TeamID
	case components.EnemySingle:
		return targetInfo.TeamID != actorInfo.TeamID
	default:
		return false
	}
}

// GetValidEnemies returns every non-broken combatant on a different team
// from actorID.
func GetValidEnemies(m *ecsx.Manager, actorID ecs.EntityID) []ecs.EntityID {
	return teamFiltered(m, actorID, false)
}

// GetValidAllies returns every non-broken combatant on the same team as
// actorID, actorID itself excluded.
func GetValidAllies(m *ecsx.Manager, actorID ecs.EntityID) []ecs.EntityID {
	return teamFiltered(m, actorID, true)
}

func teamFiltered(m *ecsx.Manager, actorID ecs.EntityID, sameTeam bool) []ecs.EntityID {
	actor := ecsx.FindEntityByID(m, actorID)
	if actor == nil {
		return nil
	}
	actorInfo := ecsx.GetComponentType[*components.PlayerInfo](actor, components.PlayerInfoComponent)
	if actorInfo == nil {
		return nil
	}

	var out []ecs.EntityID
	for _, result := range m.World.Query(components.CombatantTag) {
		id := result.Entity.GetID()
		if id == actorID {
			continue
		}
		if components.IsBroken(m, id) {
			continue
		}
		info := ecsx.GetComponentType[*components.PlayerInfo](result.Entity, components.PlayerInfoComponent)
		if info == nil {
			continue
		}
		if (info.TeamID == actorInfo.TeamID) == sameTeam {
			out = append(out, id)
		}
	}
	return out
}

// FindGuardian returns the ally of targetID (targetID's own team, target
// included) currently guarding -- i.e. carrying an unexpired APPLY_GUARD
// active effect with a remaining Count > 0 -- if one exists, per spec.md
// §4.3 guardian interception. The guardian with the lowest entity id wins
// ties, giving deterministic resolution.
func FindGuardian(m *ecsx.Manager, targetID ecs.EntityID) (ecs.EntityID, bool) {
	target := ecsx.FindEntityByID(m, targetID)
	if target == nil {
		return 0, false
	}
	targetInfo := ecsx.GetComponentType[*components.PlayerInfo](target, components.PlayerInfoComponent)
	if targetInfo == nil {
		return 0, false
	}

	var best ecs.EntityID
	found := false
	for _, result := range m.World.Query(components.CombatantTag) {
		id := result.Entity.GetID()
		if components.IsBroken(m, id) {
			continue
		}
		info := ecsx.GetComponentType[*components.PlayerInfo](result.Entity, components.PlayerInfoComponent)
		if info == nil || info.TeamID != targetInfo.TeamID {
			continue
		}
		if !IsGuarding(m, id) {
			continue
		}
		if !found || id < best {
			best = id
			found = true
		}
	}
	return best, found
}

// IsGuarding reports whether combatantID currently holds an active
// APPLY_GUARD effect with remaining charges.
func IsGuarding(m *ecsx.Manager, combatantID ecs.EntityID) bool {
	entity := ecsx.FindEntityByID(m, combatantID)
	if entity == nil {
		return false
	}
	active := ecsx.GetComponentType[*components.ActiveEffects](entity, components.ActiveEffectsComponent)
	if active == nil {
		return false
	}
	effect, ok := active.Find(components.ApplyGuardEffect, components.Head, false)
	return ok && effect.Count > 0
}

// FindBestDefensePart returns the part key on targetID with the highest
// Defense stat among its non-broken parts, used when an action's impact
// needs a defending part rather than its declared target part.
func FindBestDefensePart(m *ecsx.Manager, targetID ecs.EntityID) (components.PartKey, bool) {
	target := ecsx.FindEntityByID(m, targetID)
	if target == nil {
		return 0, false
	}
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)
	if parts == nil {
		return 0, false
	}

	best := components.PartKey(0)
	bestDefense := -1
	found := false
	for _, entry := range parts.All() {
		partEntity := ecsx.FindEntityByID(m, entry.ID)
		if partEntity == nil {
			continue
		}
		status := ecsx.GetComponentType[*components.PartStatus](partEntity, components.PartStatusComponent)
		if status == nil || status.IsBroken {
			continue
		}
		stats := ecsx.GetComponentType[*components.PartStats](partEntity, components.PartStatsComponent)
		if stats == nil {
			continue
		}
		if stats.Defense > bestDefense {
			bestDefense = stats.Defense
			best = entry.Key
			found = true
		}
	}
	return best, found
}

// FindRandomPenetrationTarget picks a random non-broken part of targetID
// other than excludeKey, used when a penetrating hit chains to a second
// part (spec.md §4.4 TraitPenetrate).
func FindRandomPenetrationTarget(m *ecsx.Manager, targetID ecs.EntityID, excludeKey components.PartKey) (components.PartKey, bool) {
	target := ecsx.FindEntityByID(m, targetID)
	if target == nil {
		return 0, false
	}
	parts := ecsx.GetComponentType[*components.Parts](target, components.PartsComponent)
	if parts == nil {
		return 0, false
	}

	var candidates []components.PartKey
	for _, entry := range parts.All() {
		if entry.Key == excludeKey {
			continue
		}
		partEntity := ecsx.FindEntityByID(m, entry.ID)
		if partEntity == nil {
			continue
		}
		status := ecsx.GetComponentType[*components.PartStatus](partEntity, components.PartStatusComponent)
		if status == nil || status.IsBroken {
			continue
		}
		candidates = append(candidates, entry.Key)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[randgen.PickIndex(len(candidates))], true
}

// FindMostDamagedAllyPart scans every ally of actorID (actor included)
// and returns the combatant/part pair with the lowest HP-to-MaxHP ratio
// among non-broken parts -- the default HEAL target an AI picks absent a
// more specific strategy (spec.md §4.7).
func FindMostDamagedAllyPart(m *ecsx.Manager, actorID ecs.EntityID) (ecs.EntityID, components.PartKey, bool) {
	allies := append(GetValidAllies(m, actorID), actorID)

	var bestCombatant ecs.EntityID
	var bestKey components.PartKey
	bestRatio := 2.0 // above the maximum possible 1.0 ratio
	found := false

	for _, allyID := range allies {
		ally := ecsx.FindEntityByID(m, allyID)
		if ally == nil {
			continue
		}
		parts := ecsx.GetComponentType[*components.Parts](ally, components.PartsComponent)
		if parts == nil {
			continue
		}
		for _, entry := range parts.All() {
			partEntity := ecsx.FindEntityByID(m, entry.ID)
			if partEntity == nil {
				continue
			}
			status := ecsx.GetComponentType[*components.PartStatus](partEntity, components.PartStatusComponent)
			if status == nil || status.IsBroken || status.MaxHP == 0 {
				continue
			}
			ratio := float64(status.HP) / float64(status.MaxHP)
			if ratio < bestRatio {
				bestRatio = ratio
				bestCombatant = allyID
				bestKey = entry.Key
				found = true
			}
		}
	}
	return bestCombatant, bestKey, found
}
