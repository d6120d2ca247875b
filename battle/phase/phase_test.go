package phase

import (
	"testing"

	"github.com/bytearena/ecs"

	"battlecore/battle/components"
	"battlecore/battle/ecsx"
)

func newTestManager(t *testing.T) *ecsx.Manager {
	t.Helper()
	m := ecsx.NewManager()
	ecsx.AttachAll(m)
	return m
}

func partWithPropulsion(key components.PartKey, propulsion int) components.PartSpec {
	return components.PartSpec{Key: key, MaxHP: 10, Stats: components.PartStats{Propulsion: propulsion}}
}

func spawnReady(m *ecsx.Manager, name string, legsPropulsion int, team ecs.EntityID) *ecs.Entity {
	spec := components.CombatantSpec{
		Name: name, TeamID: team, BaseSpeed: 1, GaugeMax: 100,
		Head: partWithPropulsion(components.Head, 0), RightArm: partWithPropulsion(components.RightArm, 0),
		LeftArm: partWithPropulsion(components.LeftArm, 0), Legs: partWithPropulsion(components.Legs, legsPropulsion),
	}
	entity := components.CreateCombatant(m, spec)
	components.TransitionTo(entity, components.StateReadyToExecute)
	return entity
}

func TestBuildSelectionQueueOrdersByPropulsionDescending(t *testing.T) {
	m := newTestManager(t)
	slow := spawnReady(m, "slow", 1, 1)
	fast := spawnReady(m, "fast", 10, 1)

	queue := BuildSelectionQueue(m)
	if len(queue) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(queue))
	}
	if queue[0] != fast.GetID() || queue[1] != slow.GetID() {
		t.Fatalf("expected [fast, slow], got %v", queue)
	}
}

func TestPeekSelectionEmptyQueue(t *testing.T) {
	ctx := &components.BattleContext{}
	if _, ok := PeekSelection(ctx); ok {
		t.Fatal("expected ok=false for empty queue")
	}
}

func TestPeekSelectionReturnsFront(t *testing.T) {
	ctx := &components.BattleContext{Turn: components.TurnState{SelectionQueue: []ecs.EntityID{7, 8, 9}}}
	id, ok := PeekSelection(ctx)
	if !ok || id != 7 {
		t.Fatalf("expected 7, got %v ok=%v", id, ok)
	}
}

func TestNextPhaseCyclesTurnEndToTurnStart(t *testing.T) {
	if got := NextPhase(components.PhaseTurnEnd); got != components.PhaseTurnStart {
		t.Fatalf("expected PhaseTurnEnd -> PhaseTurnStart, got %v", got)
	}
}

func TestNextPhaseGameOverIsTerminal(t *testing.T) {
	if got := NextPhase(components.PhaseGameOver); got != components.PhaseGameOver {
		t.Fatalf("expected PhaseGameOver to be terminal, got %v", got)
	}
}

func TestCheckWinConditionNoWinnerWithTwoTeamsAlive(t *testing.T) {
	m := newTestManager(t)
	spawnReady(m, "a", 1, 1)
	spawnReady(m, "b", 1, 2)

	if _, ok := CheckWinCondition(m); ok {
		t.Fatal("expected no winner with two live teams")
	}
}

func TestCheckWinConditionDeclaresSoleSurvivingTeam(t *testing.T) {
	m := newTestManager(t)
	spawnReady(m, "a", 1, 1)
	loser := spawnReady(m, "b", 1, 2)

	parts := ecsx.GetComponentType[*components.Parts](loser, components.PartsComponent)
	head := ecsx.FindEntityByID(m, parts.HeadID)
	status := ecsx.GetComponentType[*components.PartStatus](head, components.PartStatusComponent)
	status.IsBroken = true

	winner, ok := CheckWinCondition(m)
	if !ok || winner != 1 {
		t.Fatalf("expected team 1 to win, got %v ok=%v", winner, ok)
	}
}
