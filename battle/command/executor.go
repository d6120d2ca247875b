package command

import (
	"fmt"
	"log"

	"github.com/bytearena/ecs"

	"battlecore/battle/components"
	"battlecore/battle/ecsx"
)

// Executor applies Commands to a Manager's world in list order. It is
// the only writer of combat state; effects, resolver and phase only
// produce Commands (spec.md §9's pure-via-commands decision, recorded in
// DESIGN.md). battle/tasks and battle/engine attach and remove the task
// runner's own presentation components directly.
type Executor struct {
	Manager *ecsx.Manager
	Debug   bool
}

// NewExecutor wraps m for command application.
func NewExecutor(m *ecsx.Manager, debug bool) *Executor {
	return &Executor{Manager: m, Debug: debug}
}

// Apply runs every command in order, logging and collecting (not
// stopping on) any error: one command failing to find its target
// shouldn't prevent the rest of an already-decided resolution from
// applying (spec.md §7: errors are reported, not fatal, unless they
// involve the missing BattleContext singleton).
func (e *Executor) Apply(cmds []Command) []error {
	var errs []error
	for _, cmd := range cmds {
		if err := cmd.Apply(e); err != nil {
			if e.Debug {
				log.Printf("battle/command: %v", err)
			}
			errs = append(errs, err)
		}
	}
	return errs
}

func (e *Executor) find(id ecs.EntityID) *ecs.Entity {
	return ecsx.FindEntityByID(e.Manager, id)
}

func (e *Executor) gauge(id ecs.EntityID) *components.Gauge {
	return ecsx.GetComponentType[*components.Gauge](e.find(id), components.GaugeComponent)
}

func (e *Executor) action(id ecs.EntityID) *components.Action {
	return ecsx.GetComponentType[*components.Action](e.find(id), components.ActionComponent)
}

func (e *Executor) activeEffects(id ecs.EntityID) *components.ActiveEffects {
	return ecsx.GetComponentType[*components.ActiveEffects](e.find(id), components.ActiveEffectsComponent)
}

func (e *Executor) battleLog(id ecs.EntityID) *components.BattleLog {
	return ecsx.GetComponentType[*components.BattleLog](e.find(id), components.BattleLogComponent)
}

func (e *Executor) playerInfo(id ecs.EntityID) *components.PlayerInfo {
	return ecsx.GetComponentType[*components.PlayerInfo](e.find(id), components.PlayerInfoComponent)
}

func (e *Executor) battleHistory() *components.BattleHistoryContext {
	return components.FindBattleHistoryContext(e.Manager)
}

// partStatus resolves combatantID's PartKey part entity and its status.
func (e *Executor) partStatus(combatantID ecs.EntityID, key components.PartKey) (ecs.EntityID, *components.PartStatus) {
	combatant := e.find(combatantID)
	if combatant == nil {
		return 0, nil
	}
	parts := ecsx.GetComponentType[*components.Parts](combatant, components.PartsComponent)
	if parts == nil {
		return 0, nil
	}
	partID := parts.ByKey(key)
	partEntity := e.find(partID)
	if partEntity == nil {
		return 0, nil
	}
	return partID, ecsx.GetComponentType[*components.PartStatus](partEntity, components.PartStatusComponent)
}

func (e *Executor) emitHpChanged(targetID ecs.EntityID, key components.PartKey, change, newHP int) {
	entity := e.Manager.World.NewEntity()
	entity.AddComponent(components.HpChangedComponent, &components.HpChanged{
		TargetID: targetID, PartKey: key, Change: change, NewHP: newHP,
	})
}

func (e *Executor) emitPartBroken(targetID ecs.EntityID, key components.PartKey, isHead bool) {
	entity := e.Manager.World.NewEntity()
	entity.AddComponent(components.PartBrokenComponent, &components.PartBroken{
		TargetID: targetID, PartKey: key, IsHead: isHead,
	})
}

func (e *Executor) emitActionCancelled(targetID ecs.EntityID, reason components.CancelReason) {
	entity := e.Manager.World.NewEntity()
	entity.AddComponent(components.ActionCancelledComponent, &components.ActionCancelled{
		TargetID: targetID, Reason: reason,
	})
}

func errMissingEntity(op string, id ecs.EntityID) error {
	return fmt.Errorf("command: %s: entity %d not found", op, id)
}

func errMissingComponent(op string, id ecs.EntityID) error {
	return fmt.Errorf("command: %s: missing component on entity %d", op, id)
}
