// Package engine is the single per-frame driver: it runs the gauge,
// phase coordinator, selection, resolution, task-runner, and win-
// condition systems in the fixed order spec.md §5 lays out, scoped to
// what a headless engine can actually drive (no input/movement/UI-
// director layers exist here -- see SPEC_FULL.md's Non-goals). Every
// combat-state change goes through battle/command.Executor; the one
// direct write here is removing the task runner's SequenceFinished
// marker. Update itself only decides WHICH commands to issue this tick.
package engine

import (
	"log"
	"sort"

	"github.com/bytearena/ecs"

	"battlecore/battle/ai"
	"battlecore/battle/calc"
	"battlecore/battle/command"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
	"battlecore/battle/phase"
	"battlecore/battle/resolver"
	"battlecore/battle/tasks"
)

// SelectFunc decides one combatant's action for the current selection
// prompt. Matches ai.StrategyFunc's shape so a richer external
// collaborator (a human-input adapter, say) can be substituted without
// the engine caring which produced the Decision.
type SelectFunc func(m *ecsx.Manager, actorID ecs.EntityID) ai.Decision

// Engine owns the Manager, the shared command Executor, and the task
// runner, and drives one frame at a time via Update.
type Engine struct {
	Manager   *ecsx.Manager
	Tunables  data.Tunables
	Executor  *command.Executor
	Tasks     *tasks.Runner
	Select    SelectFunc

	// OnResult, if set, is called with every resolved action the instant
	// it's produced -- battle/battlelog's Recorder wires in here. The
	// engine itself never depends on it; leaving it nil costs nothing.
	OnResult func(resolver.CombatResult)
}

// New wires an Engine around an already-populated Manager (combatants
// created, BattleContext/BattleHistoryContext singletons installed via
// components.CreateBattleContext/CreateBattleHistoryContext).
func New(m *ecsx.Manager, tn data.Tunables, debug bool) *Engine {
	executor := command.NewExecutor(m, debug)
	return &Engine{
		Manager:  m,
		Tunables: tn,
		Executor: executor,
		Tasks:    tasks.NewRunner(m, executor),
		Select:   ai.Decide,
	}
}

// Update drives one frame. deltaMS is the elapsed time since the
// previous call (spec.md §5/§6: "update(deltaTime_ms: f32)").
func (e *Engine) Update(deltaMS float64) {
	ctx := components.FindBattleContext(e.Manager)
	if ctx == nil {
		log.Printf("battle/engine: missing BattleContext singleton, halting update")
		return
	}
	if ctx.IsPaused {
		return
	}

	e.markBrokenCombatants()
	e.autoAdvanceToCharging()
	e.advancePhase(ctx)
	e.runSelection(ctx)
	e.checkSelectionTransition(ctx)
	e.runExecution(ctx)

	finished := e.Tasks.Tick(deltaMS)
	e.onSequencesFinished(ctx, finished)

	e.advanceGauge(deltaMS)
	e.tickActiveEffects(deltaMS)
	e.checkWinCondition(ctx)
}

// markBrokenCombatants keeps StateBroken in sync with the permanent
// head-destroyed condition (components.IsBroken is the source of
// truth; every gameplay check already calls it directly, this only
// keeps the primary-state tag invariant honest for observers).
func (e *Engine) markBrokenCombatants() {
	var cmds []command.Command
	for _, result := range e.Manager.World.Query(components.CombatantTag) {
		entity := result.Entity
		if components.HasState(entity, components.StateBroken) {
			continue
		}
		if components.IsBroken(e.Manager, entity.GetID()) {
			cmds = append(cmds, command.TransitionState{EntityID: entity.GetID(), NewState: components.StateBroken})
		}
	}
	e.Executor.Apply(cmds)
}

// autoAdvanceToCharging moves every non-broken combatant sitting in
// StateReadyToSelect (pre-battle readiness) or StateCooldown (just
// finished acting) into StateCharging, so its gauge resumes filling.
// Neither state has its own timer in this engine -- both are
// momentary hand-offs back into the charge loop.
func (e *Engine) autoAdvanceToCharging() {
	var cmds []command.Command
	for _, result := range e.Manager.World.Query(components.CombatantTag) {
		entity := result.Entity
		if components.IsBroken(e.Manager, entity.GetID()) {
			continue
		}
		if components.HasState(entity, components.StateReadyToSelect) || components.HasState(entity, components.StateCooldown) {
			cmds = append(cmds, command.TransitionState{EntityID: entity.GetID(), NewState: components.StateCharging})
		}
	}
	e.Executor.Apply(cmds)
}

// advancePhase runs the phase-transition checks that don't depend on
// this tick's selection/execution work (those are checked separately,
// after runSelection/onSequencesFinished have had a chance to move
// state).
func (e *Engine) advancePhase(ctx *components.BattleContext) {
	switch ctx.Phase {
	case components.PhaseIdle:
		e.Executor.Apply([]command.Command{command.SetPhase{NewPhase: components.PhaseInitialSelection}})
	case components.PhaseInitialSelection:
		if e.countWithState(components.StateReadyToSelect) == 0 {
			e.Executor.Apply([]command.Command{command.SetPhase{NewPhase: components.PhaseBattleStartConfirm}})
		}
	case components.PhaseBattleStartConfirm:
		e.Executor.Apply([]command.Command{command.SetPhase{NewPhase: components.PhaseBattleStart}})
	case components.PhaseBattleStart:
		e.Executor.Apply([]command.Command{command.SetPhase{NewPhase: components.PhaseTurnStart}})
	case components.PhaseTurnStart:
		cmds := phase.InstallSelectionQueue(e.Manager)
		cmds = append(cmds, command.SetPhase{NewPhase: components.PhaseActionSelection})
		e.Executor.Apply(cmds)
	case components.PhaseTurnEnd:
		e.Executor.Apply([]command.Command{command.AdvanceTurn{}, command.SetPhase{NewPhase: components.PhaseTurnStart}})
	}
}

// runSelection drains every combatant currently at the head of the
// selection queue this tick -- AI decisions are synchronous, so the
// whole queue as of this frame resolves in one pass rather than one
// entry per tick (spec.md §4.2 selection sub-protocol). phase.go's
// RejectSelection contract leaves re-enqueueing to the caller; this
// re-queues a rejected actor at the tail but only retries each actor
// once per tick, so a combatant with nothing legal to do this frame
// waits for the next Update rather than spinning the loop forever.
func (e *Engine) runSelection(ctx *components.BattleContext) {
	if ctx.Phase != components.PhaseActionSelection {
		return
	}
	retried := map[ecs.EntityID]bool{}
	for {
		actorID, ok := phase.PeekSelection(ctx)
		if !ok {
			return
		}
		if retried[actorID] {
			return
		}
		retried[actorID] = true

		decision := e.Select(e.Manager, actorID)
		if !decision.HasPart {
			e.Executor.Apply(phase.RejectSelection(actorID))
			e.Executor.Apply([]command.Command{
				command.SetSelectionQueue{Queue: append(append([]ecs.EntityID{}, ctx.Turn.SelectionQueue...), actorID)},
			})
			continue
		}

		action := components.Action{
			PartKey: decision.PartKey, HasPart: true,
			TargetID: decision.TargetID, HasTarget: decision.HasTarget,
			TargetPartKey: decision.TargetPartKey, HasTargetPart: decision.HasTargetPart,
		}
		e.Executor.Apply(phase.AcceptSelection(actorID, action))
	}
}

// checkSelectionTransition applies the two ACTION_SELECTION exit
// conditions spec.md §4.2 lists, once selection has had its chance to
// latch this tick's decisions.
func (e *Engine) checkSelectionTransition(ctx *components.BattleContext) {
	if ctx.Phase != components.PhaseActionSelection {
		return
	}
	if e.anyReadyToExecuteWithAction() {
		e.Executor.Apply([]command.Command{command.SetPhase{NewPhase: components.PhaseActionExecution}})
		return
	}
	if e.countWithState(components.StateCharging)+e.countWithState(components.StateSelectedCharging)+e.countWithState(components.StateReadyToExecute) == 0 {
		e.Executor.Apply([]command.Command{command.SetPhase{NewPhase: components.PhaseTurnEnd}})
	}
}

// runExecution starts resolving the next decided combatant once the
// phase has moved to ACTION_EXECUTION and nothing is already resolving.
func (e *Engine) runExecution(ctx *components.BattleContext) {
	if ctx.Phase != components.PhaseActionExecution || ctx.Turn.HasExecuting {
		return
	}

	actorID, ok := e.nextReadyToExecute()
	if !ok {
		return
	}

	result := resolver.Resolve(e.Manager, e.Tunables, actorID, ctx.Turn.Number)
	if e.OnResult != nil {
		e.OnResult(result)
	}
	list := tasks.Build(e.Manager, result)

	e.Executor.Apply([]command.Command{
		command.TransitionState{EntityID: actorID, NewState: components.StateAwaitingAnimation},
		command.SetExecuting{EntityID: actorID},
	})
	e.Tasks.Install(actorID, list)
}

// onSequencesFinished releases the executing marker for every
// combatant whose visual sequence just drained and moves the phase
// coordinator on to its next step (spec.md §4.2: "ACTION_EXECUTION ->
// ACTION_SELECTION... when the executing combatant's sequence finishes
// and at least one charging combatant remains", "-> TURN_END... when
// none remain"). The resolver's own ApplyStateTask already transitioned
// the combatant's state tag (cooldown, or whatever a self-guard left
// it in); this only clears bookkeeping and re-evaluates the phase.
func (e *Engine) onSequencesFinished(ctx *components.BattleContext, finished []ecs.EntityID) {
	if len(finished) == 0 {
		return
	}
	for _, id := range finished {
		if entity := ecsx.FindEntityByID(e.Manager, id); entity != nil && entity.HasComponent(tasks.SequenceFinishedComponent) {
			entity.RemoveComponent(tasks.SequenceFinishedComponent)
		}
	}
	e.Executor.Apply([]command.Command{command.ClearExecuting{}})

	if ctx.Phase != components.PhaseActionExecution {
		return
	}
	remaining := e.countWithState(components.StateCharging) + e.countWithState(components.StateSelectedCharging) + e.countWithState(components.StateReadyToExecute)
	if remaining > 0 {
		e.Executor.Apply([]command.Command{command.SetPhase{NewPhase: components.PhaseActionSelection}})
	} else {
		e.Executor.Apply([]command.Command{command.SetPhase{NewPhase: components.PhaseTurnEnd}})
	}
}

// advanceGauge fills the gauge of every charging combatant by
// Δt × baseSpeed × speedMultiplier (spec.md §3 data-flow summary),
// transitioning to StateReadyToExecute the instant it tops out.
func (e *Engine) advanceGauge(deltaMS float64) {
	var cmds []command.Command
	for _, result := range e.Manager.World.Query(components.CombatantTag) {
		entity := result.Entity
		if !components.HasState(entity, components.StateCharging) {
			continue
		}
		gauge := ecsx.GetComponentType[*components.Gauge](entity, components.GaugeComponent)
		if gauge == nil {
			continue
		}

		mult := calc.SpeedMultiplier(legsPropulsion(e.Manager, entity), hasGlitch(entity))
		value := gauge.Value + deltaMS*gauge.BaseSpeed*mult
		if value > gauge.Max {
			value = gauge.Max
		}
		cmds = append(cmds, command.SetGauge{EntityID: entity.GetID(), Value: value})
		if value >= gauge.Max {
			cmds = append(cmds, command.TransitionState{EntityID: entity.GetID(), NewState: components.StateReadyToExecute})
		}
	}
	e.Executor.Apply(cmds)
}

// tickActiveEffects advances every combatant's timed buffs/debuffs,
// expiring the ones whose duration has elapsed.
func (e *Engine) tickActiveEffects(deltaMS float64) {
	var cmds []command.Command
	for _, result := range e.Manager.World.Query(components.CombatantTag) {
		entity := result.Entity
		active := ecsx.GetComponentType[*components.ActiveEffects](entity, components.ActiveEffectsComponent)
		if active == nil || len(active.Effects) == 0 {
			continue
		}
		cmds = append(cmds, command.TickActiveEffects{EntityID: entity.GetID(), DeltaMS: deltaMS})
	}
	e.Executor.Apply(cmds)
}

// checkWinCondition ends the battle the instant only one team has a
// non-broken combatant left.
func (e *Engine) checkWinCondition(ctx *components.BattleContext) {
	if ctx.HasWinner {
		return
	}
	if teamID, ok := phase.CheckWinCondition(e.Manager); ok {
		e.Executor.Apply([]command.Command{command.SetWinner{TeamID: teamID}})
	}
}

func (e *Engine) countWithState(state components.State) int {
	count := 0
	for _, result := range e.Manager.World.Query(components.CombatantTag) {
		if components.HasState(result.Entity, state) {
			count++
		}
	}
	return count
}

func (e *Engine) anyReadyToExecuteWithAction() bool {
	_, ok := e.nextReadyToExecute()
	return ok
}

// nextReadyToExecute returns the highest-propulsion (lowest id on ties) combatant
// that has both reached StateReadyToExecute and had its Action latched
// by selection, using the same deterministic ordering the selection
// queue itself is built with.
func (e *Engine) nextReadyToExecute() (ecs.EntityID, bool) {
	type candidate struct {
		id         ecs.EntityID
		propulsion int
	}
	var candidates []candidate
	for _, result := range e.Manager.World.Query(components.CombatantTag) {
		entity := result.Entity
		if !components.HasState(entity, components.StateReadyToExecute) {
			continue
		}
		action := ecsx.GetComponentType[*components.Action](entity, components.ActionComponent)
		if action == nil || !action.HasPart {
			continue
		}
		candidates = append(candidates, candidate{id: entity.GetID(), propulsion: legsPropulsion(e.Manager, entity)})
	}
	if len(candidates) == 0 {
		return 0, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].propulsion != candidates[j].propulsion {
			return candidates[i].propulsion > candidates[j].propulsion
		}
		return candidates[i].id < candidates[j].id
	})
	return candidates[0].id, true
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

func hasGlitch(entity *ecs.Entity) bool {
	active := ecsx.GetComponentType[*components.ActiveEffects](entity, components.ActiveEffectsComponent)
	if active == nil {
		return false
	}
	_, ok := active.Find(components.ApplyGlitchEffect, components.Head, false)
	return ok
}
