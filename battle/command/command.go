// Package command is the engine's pure-mutation boundary: every system
// that resolves game logic (battle/effects, battle/resolver,
// battle/phase) produces a []Command describing what should change, and
// only Executor.Apply writes combat state (the task runner's request and
// sequence components are managed directly by battle/tasks and
// battle/engine). Command is a closed
// set of concrete structs, not an arbitrary closure, so a reviewer can
// enumerate every mutation the engine is capable of making by reading
// this one file (spec.md §9 DESIGN NOTES: replace CustomUpdateComponent
// closures with a named command grammar).
package command

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/components"
	"battlecore/battle/ecsx"
)

// Command is one atomic, pre-validated state change. Apply must not
// fail for validation reasons -- by the time a Command exists, the
// resolver has already confirmed it is legal; Apply only reports
// plumbing errors (missing entity, disposed component).
type Command interface {
	Apply(m *Executor) error
}

// TransitionState swaps a combatant's state tag.
type TransitionState struct {
	EntityID ecs.EntityID
	NewState components.State
}

func (c TransitionState) Apply(e *Executor) error {
	entity := e.find(c.EntityID)
	if entity == nil {
		return errMissingEntity("TransitionState", c.EntityID)
	}
	components.TransitionTo(entity, c.NewState)
	return nil
}

// SetGauge overwrites a combatant's gauge value directly, used for
// cooldown reset after an action resolves and for debug/test setup.
type SetGauge struct {
	EntityID ecs.EntityID
	Value    float64
}

func (c SetGauge) Apply(e *Executor) error {
	gauge := e.gauge(c.EntityID)
	if gauge == nil {
		return errMissingComponent("SetGauge", c.EntityID)
	}
	gauge.Value = c.Value
	return nil
}

// LatchAction records a combatant's committed action selection.
type LatchAction struct {
	EntityID ecs.EntityID
	Action   components.Action
}

func (c LatchAction) Apply(e *Executor) error {
	action := e.action(c.EntityID)
	if action == nil {
		return errMissingComponent("LatchAction", c.EntityID)
	}
	*action = c.Action
	return nil
}

// ClearAction resets a combatant's Action to its zero value, run when
// entering cooldown.
type ClearAction struct {
	EntityID ecs.EntityID
}

func (c ClearAction) Apply(e *Executor) error {
	action := e.action(c.EntityID)
	if action == nil {
		return errMissingComponent("ClearAction", c.EntityID)
	}
	*action = components.Action{}
	return nil
}

// ApplyDamage subtracts Amount HP from TargetID's PartKey part, clamped
// at 0, and marks the part broken the instant it reaches 0. Emits an
// HpChanged event entity, and a PartBroken one if this hit broke the
// part (spec.md §3 invariants: HP monotonic, IsBroken sticky).
type ApplyDamage struct {
	TargetID ecs.EntityID
	PartKey  components.PartKey
	Amount   int // always > 0; this command always reduces HP
}

func (c ApplyDamage) Apply(e *Executor) error {
	partID, status := e.partStatus(c.TargetID, c.PartKey)
	if status == nil {
		return errMissingComponent("ApplyDamage", c.TargetID)
	}

	before := status.HP
	status.HP -= c.Amount
	if status.HP < 0 {
		status.HP = 0
	}
	change := status.HP - before

	e.emitHpChanged(c.TargetID, c.PartKey, change, status.HP)

	if status.HP == 0 && !status.IsBroken {
		status.IsBroken = true
		e.emitPartBroken(c.TargetID, c.PartKey, c.PartKey == components.Head)
	}
	_ = partID
	return nil
}

// ApplyHeal adds Amount HP to TargetID's PartKey part, clamped at
// MaxHP. A broken part cannot be healed back above 0 (spec.md §3: part
// breakage is permanent for the remainder of the battle).
type ApplyHeal struct {
	TargetID ecs.EntityID
	PartKey  components.PartKey
	Amount   int
}

func (c ApplyHeal) Apply(e *Executor) error {
	_, status := e.partStatus(c.TargetID, c.PartKey)
	if status == nil {
		return errMissingComponent("ApplyHeal", c.TargetID)
	}
	if status.IsBroken {
		e.emitHpChanged(c.TargetID, c.PartKey, 0, status.HP)
		return nil
	}

	before := status.HP
	status.HP += c.Amount
	if status.HP > status.MaxHP {
		status.HP = status.MaxHP
	}
	e.emitHpChanged(c.TargetID, c.PartKey, status.HP-before, status.HP)
	return nil
}

// UpsertActiveEffect installs or refreshes a timed effect on TargetID,
// overwriting any existing entry with the same (Kind, PartKey) per the
// at-most-one invariant ActiveEffects.Upsert enforces.
type UpsertActiveEffect struct {
	TargetID ecs.EntityID
	Effect   components.TimedEffect
}

func (c UpsertActiveEffect) Apply(e *Executor) error {
	active := e.activeEffects(c.TargetID)
	if active == nil {
		return errMissingComponent("UpsertActiveEffect", c.TargetID)
	}
	active.Upsert(c.Effect)
	return nil
}

// RemoveActiveEffect deletes a timed effect from TargetID, if present.
type RemoveActiveEffect struct {
	TargetID ecs.EntityID
	Kind     components.EffectKind
	PartKey  components.PartKey
	HasPart  bool
}

func (c RemoveActiveEffect) Apply(e *Executor) error {
	active := e.activeEffects(c.TargetID)
	if active == nil {
		return errMissingComponent("RemoveActiveEffect", c.TargetID)
	}
	active.Remove(c.Kind, c.PartKey, c.HasPart)
	return nil
}

// ConsumeGuardCharge decrements a guardian's APPLY_GUARD charge count by
// one, removing the effect entirely once it reaches 0. This is the one
// place guard charges are ever consumed, per the centralization decision
// in DESIGN.md (resolving spec.md §9's CONSUME_GUARD open question).
type ConsumeGuardCharge struct {
	GuardianID ecs.EntityID
}

func (c ConsumeGuardCharge) Apply(e *Executor) error {
	active := e.activeEffects(c.GuardianID)
	if active == nil {
		return errMissingComponent("ConsumeGuardCharge", c.GuardianID)
	}
	effect, ok := active.Find(components.ApplyGuardEffect, components.Head, false)
	if !ok {
		return nil
	}
	effect.Count--
	if effect.Count <= 0 {
		active.Remove(components.ApplyGuardEffect, components.Head, false)
		if entity := e.find(c.GuardianID); entity != nil && components.HasState(entity, components.StateGuarding) {
			components.TransitionTo(entity, components.StateCooldown)
		}
	}
	return nil
}

// CancelAction clears TargetID's pending action and emits an
// ActionCancelled event, used when APPLY_GLITCH or a broken part
// interrupts a queued action.
type CancelAction struct {
	TargetID ecs.EntityID
	Reason   components.CancelReason
}

func (c CancelAction) Apply(e *Executor) error {
	action := e.action(c.TargetID)
	if action == nil {
		return errMissingComponent("CancelAction", c.TargetID)
	}
	*action = components.Action{}
	e.emitActionCancelled(c.TargetID, c.Reason)
	return nil
}

// RecordAttack updates BattleLog and the BattleHistoryContext singleton
// with a new attack record, used for AI/strategy lookups that need "who
// last attacked whom" (spec.md §4.7).
type RecordAttack struct {
	AttackerID ecs.EntityID
	DefenderID ecs.EntityID
	PartKey    components.PartKey
	Turn       int
}

func (c RecordAttack) Apply(e *Executor) error {
	record := components.AttackRecord{CombatantID: c.AttackerID, PartKey: c.PartKey, Turn: c.Turn}

	if log := e.battleLog(c.AttackerID); log != nil {
		copy := record
		log.LastAttack = &copy
	}
	if log := e.battleLog(c.DefenderID); log != nil {
		copy := record
		log.LastAttackedBy = &copy
	}

	if hist := e.battleHistory(); hist != nil {
		if info := e.playerInfo(c.AttackerID); info != nil {
			hist.TeamLastAttack[info.TeamID] = record
		}
		if info := e.playerInfo(c.DefenderID); info != nil && info.IsLeader {
			hist.LeaderLastAttackedBy[c.DefenderID] = record
		}
	}
	return nil
}

// SetPhase overwrites the global BattleContext's Phase.
type SetPhase struct {
	NewPhase components.BattlePhase
}

func (c SetPhase) Apply(e *Executor) error {
	ctx := components.FindBattleContext(e.Manager)
	if ctx == nil {
		return errMissingComponent("SetPhase", 0)
	}
	ctx.Phase = c.NewPhase
	return nil
}

// PopSelectionQueue removes the front entry of BattleContext's
// SelectionQueue, the entry the selection loop just finished prompting
// (accepted or rejected).
type PopSelectionQueue struct{}

func (c PopSelectionQueue) Apply(e *Executor) error {
	ctx := components.FindBattleContext(e.Manager)
	if ctx == nil {
		return errMissingComponent("PopSelectionQueue", 0)
	}
	if len(ctx.Turn.SelectionQueue) == 0 {
		return nil
	}
	ctx.Turn.SelectionQueue = ctx.Turn.SelectionQueue[1:]
	return nil
}

// SetSelectionQueue overwrites BattleContext's SelectionQueue wholesale,
// used when entering PhaseActionSelection to install a freshly built
// queue.
type SetSelectionQueue struct {
	Queue []ecs.EntityID
}

func (c SetSelectionQueue) Apply(e *Executor) error {
	ctx := components.FindBattleContext(e.Manager)
	if ctx == nil {
		return errMissingComponent("SetSelectionQueue", 0)
	}
	ctx.Turn.SelectionQueue = c.Queue
	return nil
}

// SetPosition overwrites a combatant's logical battlefield position,
// applied when a MoveTask completes.
type SetPosition struct {
	EntityID ecs.EntityID
	Position components.Position
}

func (c SetPosition) Apply(e *Executor) error {
	entity := e.find(c.EntityID)
	if entity == nil {
		return errMissingEntity("SetPosition", c.EntityID)
	}
	pos := ecsx.GetComponentType[*components.Position](entity, components.PositionComponent)
	if pos == nil {
		return errMissingComponent("SetPosition", c.EntityID)
	}
	*pos = c.Position
	return nil
}

// TickActiveEffects advances every duration-based timed effect on
// EntityID by DeltaMS, dropping any that have elapsed. A count-based
// effect (DurationMS <= 0, e.g. APPLY_GUARD) is left untouched here --
// it only ends through ConsumeGuardCharge. An expiring APPLY_STUN is the
// one timed effect that also carries a state tag, so its expiry returns
// the target to StateCharging.
type TickActiveEffects struct {
	EntityID ecs.EntityID
	DeltaMS  float64
}

func (c TickActiveEffects) Apply(e *Executor) error {
	active := e.activeEffects(c.EntityID)
	if active == nil {
		return errMissingComponent("TickActiveEffects", c.EntityID)
	}
	entity := e.find(c.EntityID)

	kept := active.Effects[:0]
	for _, eff := range active.Effects {
		if eff.DurationMS <= 0 {
			kept = append(kept, eff)
			continue
		}
		eff.ElapsedMS += c.DeltaMS
		if eff.ElapsedMS < eff.DurationMS {
			kept = append(kept, eff)
			continue
		}
		if eff.Kind == components.ApplyStunEffect && entity != nil && components.HasState(entity, components.StateStunned) {
			components.TransitionTo(entity, components.StateCharging)
		}
	}
	active.Effects = kept
	return nil
}

// AdvanceTurn increments BattleContext's turn counter and clears the
// executing-combatant marker, run on TURN_END -> TURN_START.
type AdvanceTurn struct{}

func (c AdvanceTurn) Apply(e *Executor) error {
	ctx := components.FindBattleContext(e.Manager)
	if ctx == nil {
		return errMissingComponent("AdvanceTurn", 0)
	}
	ctx.Turn.Number++
	ctx.Turn.HasExecuting = false
	ctx.Turn.ExecutingID = 0
	return nil
}

// SetExecuting marks EntityID as the combatant currently resolving/
// animating its action.
type SetExecuting struct {
	EntityID ecs.EntityID
}

func (c SetExecuting) Apply(e *Executor) error {
	ctx := components.FindBattleContext(e.Manager)
	if ctx == nil {
		return errMissingComponent("SetExecuting", 0)
	}
	ctx.Turn.ExecutingID = c.EntityID
	ctx.Turn.HasExecuting = true
	return nil
}

// ClearExecuting releases the executing-combatant marker once its
// sequence finishes.
type ClearExecuting struct{}

func (c ClearExecuting) Apply(e *Executor) error {
	ctx := components.FindBattleContext(e.Manager)
	if ctx == nil {
		return errMissingComponent("ClearExecuting", 0)
	}
	ctx.Turn.HasExecuting = false
	ctx.Turn.ExecutingID = 0
	return nil
}

// SetWinner records the winning team and moves the battle to game over.
type SetWinner struct {
	TeamID ecs.EntityID
}

func (c SetWinner) Apply(e *Executor) error {
	ctx := components.FindBattleContext(e.Manager)
	if ctx == nil {
		return errMissingComponent("SetWinner", 0)
	}
	ctx.WinningTeam = c.TeamID
	ctx.HasWinner = true
	ctx.Phase = components.PhaseGameOver
	return nil
}
