package components

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/ecsx"
)

// BattlePhase is the global phase state machine (spec.md §4.2).
type BattlePhase int

const (
	PhaseIdle BattlePhase = iota
	PhaseInitialSelection
	PhaseBattleStartConfirm
	PhaseBattleStart
	PhaseTurnStart
	PhaseActionSelection
	PhaseActionExecution
	PhaseTurnEnd
	PhaseGameOver
)

func (p BattlePhase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseInitialSelection:
		return "INITIAL_SELECTION"
	case PhaseBattleStartConfirm:
		return "BATTLE_START_CONFIRM"
	case PhaseBattleStart:
		return "BATTLE_START"
	case PhaseTurnStart:
		return "TURN_START"
	case PhaseActionSelection:
		return "ACTION_SELECTION"
	case PhaseActionExecution:
		return "ACTION_EXECUTION"
	case PhaseTurnEnd:
		return "TURN_END"
	case PhaseGameOver:
		return "GAME_OVER"
	default:
		return "UNKNOWN"
	}
}

// TurnState tracks the turn counter and the combatant currently executing,
// if any.
type TurnState struct {
	Number            int
	ExecutingID       ecs.EntityID
	HasExecuting      bool
	SelectionQueue    []ecs.EntityID // FIFO of combatants awaiting selection
	CurrentActorID    ecs.EntityID
	HasCurrentActor   bool
}

// BattleContext is the sole BattleContext singleton (spec.md §3).
type BattleContext struct {
	Phase        BattlePhase
	Turn         TurnState
	IsPaused     bool
	WinningTeam  ecs.EntityID
	HasWinner    bool
}

// BattleHistoryContext is the sole BattleHistoryContext singleton.
type BattleHistoryContext struct {
	TeamLastAttack        map[ecs.EntityID]AttackRecord
	LeaderLastAttackedBy  map[ecs.EntityID]AttackRecord
}

var (
	BattleContextComponent        *ecs.Component
	BattleHistoryContextComponent *ecs.Component

	BattleContextTag        ecs.Tag
	BattleHistoryContextTag ecs.Tag
)

func initSingletonComponents(m *ecsx.Manager) {
	BattleContextComponent = ecsx.NewComponent(m)
	BattleHistoryContextComponent = ecsx.NewComponent(m)

	BattleContextTag = ecs.BuildTag(BattleContextComponent)
	BattleHistoryContextTag = ecs.BuildTag(BattleHistoryContextComponent)

	m.Tags["battleContext"] = BattleContextTag
	m.Tags["battleHistoryContext"] = BattleHistoryContextTag
}

// CreateBattleContext creates the singleton BattleContext entity. Must be
// called exactly once per battle, after ecsx.AttachAll(m).
func CreateBattleContext(m *ecsx.Manager) *ecs.Entity {
	e := m.World.NewEntity()
	e.AddComponent(BattleContextComponent, &BattleContext{
		Phase: PhaseIdle,
	})
	return e
}

// CreateBattleHistoryContext creates the singleton BattleHistoryContext
// entity. Must be called exactly once per battle.
func CreateBattleHistoryContext(m *ecsx.Manager) *ecs.Entity {
	e := m.World.NewEntity()
	e.AddComponent(BattleHistoryContextComponent, &BattleHistoryContext{
		TeamLastAttack:       make(map[ecs.EntityID]AttackRecord),
		LeaderLastAttackedBy: make(map[ecs.EntityID]AttackRecord),
	})
	return e
}

// FindBattleContext returns the single BattleContext entity's data, or nil
// if it has not been created. A nil result is a fatal error per spec.md
// §7 ("Fatal errors (e.g., singleton BattleContext missing) are reported
// and halt the battle.") -- callers should treat it that way.
func FindBattleContext(m *ecsx.Manager) *BattleContext {
	for _, r := range m.World.Query(BattleContextTag) {
		return ecsx.GetComponentType[*BattleContext](r.Entity, BattleContextComponent)
	}
	return nil
}

// FindBattleHistoryContext returns the single BattleHistoryContext
// entity's data, or nil if it has not been created.
func FindBattleHistoryContext(m *ecsx.Manager) *BattleHistoryContext {
	for _, r := range m.World.Query(BattleHistoryContextTag) {
		return ecsx.GetComponentType[*BattleHistoryContext](r.Entity, BattleHistoryContextComponent)
	}
	return nil
}
