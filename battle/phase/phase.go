// Package phase drives the global BattlePhase state machine and the
// turn-selection sub-protocol (queue of combatants awaiting a player or
// AI decision, spec.md §4.2). It reads the BattleContext singleton and
// produces Commands; like every other resolution package, it never
// mutates a component directly.
package phase

import (
	"sort"

	"github.com/bytearena/ecs"

	"battlecore/battle/command"
	"battlecore/battle/components"
	"battlecore/battle/ecsx"
)

// BuildSelectionQueue orders every combatant currently in
// StateReadyToExecute (charge-full, awaiting a target/action decision)
// by Legs Propulsion descending, entity id ascending as a deterministic
// tie-break (spec.md §4.2 ordering guarantee).
func BuildSelectionQueue(m *ecsx.Manager) []ecs.EntityID {
	type candidate struct {
		id         ecs.EntityID
		propulsion int
	}
	var candidates []candidate
	for _, result := range m.World.Query(components.CombatantTag) {
		entity := result.Entity
		if !components.HasState(entity, components.StateReadyToExecute) {
			continue
		}
		candidates = append(candidates, candidate{id: entity.GetID(), propulsion: legsPropulsion(m, entity)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].propulsion != candidates[j].propulsion {
			return candidates[i].propulsion > candidates[j].propulsion
		}
		return candidates[i].id < candidates[j].id
	})

	ids := make([]ecs.EntityID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids
}

func legsPropulsion(m *ecsx.Manager, entity *ecs.Entity) int {
	parts := ecsx.GetComponentType[*components.Parts](entity, components.PartsComponent)
	if parts == nil {
		return 0
	}
	legs := ecsx.FindEntityByID(m, parts.LegsID)
	stats := ecsx.GetComponentType[*components.PartStats](legs, components.PartStatsComponent)
	if stats == nil {
		return 0
	}
	return stats.Propulsion
}

// PeekSelection returns the front of the current selection queue
// without mutating it, or ok=false if the queue is empty (battle should
// move to PhaseActionExecution). Queue advancement itself happens
// through the command.PopSelectionQueue that AcceptSelection and
// RejectSelection issue once a decision is accepted or rejected.
func PeekSelection(ctx *components.BattleContext) (ecs.EntityID, bool) {
	if len(ctx.Turn.SelectionQueue) == 0 {
		return 0, false
	}
	return ctx.Turn.SelectionQueue[0], true
}

// AcceptSelection latches actorID's chosen action and pops it off the
// selection queue. It issues no state transition: the combatant stays
// in StateReadyToExecute until the execution phase picks it.
func AcceptSelection(actorID ecs.EntityID, action components.Action) []command.Command {
	return []command.Command{
		command.LatchAction{EntityID: actorID, Action: action},
		command.PopSelectionQueue{},
	}
}

// RejectSelection is issued when a player or AI's chosen target/action
// is no longer legal (target died mid-selection, spec.md §4.3 validity
// re-check) -- the actor's Action is cleared, with no state transition,
// so it is re-prompted from StateReadyToExecute. It still advances past the
// queue entry: a rejected selection is re-enqueued by the caller if it
// should be retried this phase, rather than looping here.
func RejectSelection(actorID ecs.EntityID) []command.Command {
	return []command.Command{
		command.ClearAction{EntityID: actorID},
		command.PopSelectionQueue{},
	}
}

// InstallSelectionQueue returns the Command that seeds BattleContext's
// SelectionQueue with the result of BuildSelectionQueue, done once on
// entering PhaseActionSelection.
func InstallSelectionQueue(m *ecsx.Manager) []command.Command {
	return []command.Command{command.SetSelectionQueue{Queue: BuildSelectionQueue(m)}}
}

// NextPhase returns the successor phase in the fixed state machine
// ordering spec.md §4.2 defines. PhaseGameOver has no successor and
// returns itself.
func NextPhase(current components.BattlePhase) components.BattlePhase {
	switch current {
	case components.PhaseIdle:
		return components.PhaseInitialSelection
	case components.PhaseInitialSelection:
		return components.PhaseBattleStartConfirm
	case components.PhaseBattleStartConfirm:
		return components.PhaseBattleStart
	case components.PhaseBattleStart:
		return components.PhaseTurnStart
	case components.PhaseTurnStart:
		return components.PhaseActionSelection
	case components.PhaseActionSelection:
		return components.PhaseActionExecution
	case components.PhaseActionExecution:
		return components.PhaseTurnEnd
	case components.PhaseTurnEnd:
		return components.PhaseTurnStart
	case components.PhaseGameOver:
		return components.PhaseGameOver
	default:
		return components.PhaseGameOver
	}
}

// AdvancePhase returns the Command that moves BattleContext to its
// next phase.
func AdvancePhase(current components.BattlePhase) []command.Command {
	return []command.Command{command.SetPhase{NewPhase: NextPhase(current)}}
}

// CheckWinCondition scans every combatant and returns the winning
// team's id when exactly one team has any non-broken combatant left
// (spec.md §4.2 end condition). ok is false if the battle should
// continue.
func CheckWinCondition(m *ecsx.Manager) (ecs.EntityID, bool) {
	alive := map[ecs.EntityID]bool{}
	for _, result := range m.World.Query(components.CombatantTag) {
		id := result.Entity.GetID()
		if components.IsBroken(m, id) {
			continue
		}
		info := ecsx.GetComponentType[*components.PlayerInfo](result.Entity, components.PlayerInfoComponent)
		if info == nil {
			continue
		}
		alive[info.TeamID] = true
	}

	if len(alive) != 1 {
		return 0, false
	}
	for team := range alive {
		return team, true
	}
	return 0, false
}
