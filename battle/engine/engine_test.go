package engine

import (
	"testing"

	"github.com/bytearena/ecs"

	"battlecore/battle/ai"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
)

func newTestManager(t *testing.T) *ecsx.Manager {
	t.Helper()
	m := ecsx.NewManager()
	ecsx.AttachAll(m)
	components.CreateBattleContext(m)
	components.CreateBattleHistoryContext(m)
	return m
}

func shootPart(propulsion, might int) components.PartSpec {
	return components.PartSpec{
		Key: components.RightArm, MaxHP: 10,
		Stats:     components.PartStats{Might: might, Propulsion: propulsion},
		Logic:     components.ActionLogic{Type: components.Shoot},
		Targeting: components.TargetingBehavior{Scope: components.EnemySingle},
		Accuracy:  components.AccuracyBehavior{Type: components.PerfectAccuracy},
		Impact:    components.ImpactBehavior{Effects: []components.EffectDef{{Kind: components.DamageEffect}}},
	}
}

func spawnFighter(m *ecsx.Manager, team ecs.EntityID, isLeader bool, headHP, propulsion, might int) *ecs.Entity {
	spec := components.CombatantSpec{
		Name: "fighter", TeamID: team, IsLeader: isLeader, Personality: ai.Aggressive,
		BaseSpeed: 1, GaugeMax: 1,
		Head:     components.PartSpec{Key: components.Head, MaxHP: headHP},
		RightArm: shootPart(propulsion, might),
		LeftArm:  components.PartSpec{Key: components.LeftArm, MaxHP: 10},
		Legs:     components.PartSpec{Key: components.Legs, MaxHP: 10, Stats: components.PartStats{Propulsion: propulsion}},
	}
	return components.CreateCombatant(m, spec)
}

func newTestEngine(m *ecsx.Manager) *Engine {
	e := New(m, data.DefaultTunables(), false)
	e.Tasks.TimeoutMS = 1
	return e
}

func TestUpdateAdvancesThroughPreBattlePhases(t *testing.T) {
	m := newTestManager(t)
	spawnFighter(m, 1, true, 10, 100, 10)
	spawnFighter(m, 2, true, 10, 0, 10)
	e := newTestEngine(m)

	// Selection runs in the same Update that enters ACTION_SELECTION, and
	// once both fighters have latched an action that Update moves straight
	// on to ACTION_EXECUTION.
	ctx := components.FindBattleContext(m)
	for i := 0; i < 5 && ctx.Phase != components.PhaseActionExecution; i++ {
		e.Update(16)
	}
	if ctx.Phase != components.PhaseActionExecution {
		t.Fatalf("expected to reach ACTION_EXECUTION, stuck at %v", ctx.Phase)
	}
}

func TestUpdateRunsFullBattleToGameOver(t *testing.T) {
	m := newTestManager(t)
	attacker := spawnFighter(m, 1, true, 10, 100, 50)
	spawnFighter(m, 2, true, 5, 0, 1)
	e := newTestEngine(m)

	ctx := components.FindBattleContext(m)
	for i := 0; i < 200 && !ctx.HasWinner; i++ {
		e.Update(50)
	}

	if !ctx.HasWinner {
		t.Fatalf("expected battle to reach a winner, phase=%v turn=%+v", ctx.Phase, ctx.Turn)
	}
	attackerInfo := ecsx.GetComponentType[*components.PlayerInfo](attacker, components.PlayerInfoComponent)
	if ctx.WinningTeam != attackerInfo.TeamID {
		t.Fatalf("expected team %d to win, got %d", attackerInfo.TeamID, ctx.WinningTeam)
	}
	if ctx.Phase != components.PhaseGameOver {
		t.Fatalf("expected GAME_OVER phase, got %v", ctx.Phase)
	}
}

func TestUpdateHaltsWithoutBattleContext(t *testing.T) {
	m := ecsx.NewManager()
	ecsx.AttachAll(m)
	e := newTestEngine(m)

	// Must not panic when the BattleContext singleton was never created.
	e.Update(16)
}
