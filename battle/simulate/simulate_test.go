package simulate

import (
	"os"
	"testing"

	"github.com/bytearena/ecs"

	"battlecore/battle/ai"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
)

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

func spawnFighter(m *ecsx.Manager, team ecs.EntityID, isLeader bool, headHP, propulsion, might int) {
	spec := components.CombatantSpec{
		Name: "fighter", TeamID: team, IsLeader: isLeader, Personality: ai.Aggressive,
		BaseSpeed: 1, GaugeMax: 1,
		Head:     components.PartSpec{Key: components.Head, MaxHP: headHP},
		RightArm: shootPart(propulsion, might),
		LeftArm:  components.PartSpec{Key: components.LeftArm, MaxHP: 10},
		Legs:     components.PartSpec{Key: components.Legs, MaxHP: 10, Stats: components.PartStats{Propulsion: propulsion}},
	}
	components.CreateCombatant(m, spec)
}

func twoFighterSetup(m *ecsx.Manager) error {
	spawnFighter(m, 1, true, 10, 100, 50)
	spawnFighter(m, 2, true, 5, 0, 1)
	return nil
}

func TestRunBattleSetCompletesEveryBattle(t *testing.T) {
	cfg := Config{NumBattles: 5, MaxTicks: 500, TickMS: 50}
	runner := NewRunner(cfg, data.DefaultTunables())

	stats, err := runner.RunBattleSet(twoFighterSetup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalBattles != 5 {
		t.Fatalf("expected 5 battles run, got %d", stats.TotalBattles)
	}
	if stats.CompletedBattles != 5 {
		t.Fatalf("expected all 5 battles to finish within budget, got %d completed (%d timed out)", stats.CompletedBattles, stats.TimedOutBattles)
	}
	if stats.WinsByTeam[1] != 5 {
		t.Fatalf("expected team 1 to win every battle, got %+v", stats.WinsByTeam)
	}
	if stats.TotalHits == 0 {
		t.Fatal("expected at least one recorded hit across the battle set")
	}
	if stats.DamageByActingPart[components.RightArm.String()] == 0 {
		t.Fatalf("expected damage attributed to the firing arm, got %+v", stats.DamageByActingPart)
	}
	if stats.AverageTurns() <= 0 {
		t.Fatalf("expected a positive average turn count, got %f", stats.AverageTurns())
	}
}

func TestRunBattleSetExportsRecordedLogs(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{NumBattles: 2, MaxTicks: 500, TickMS: 50, RecordLogs: true, OutputDir: dir}
	runner := NewRunner(cfg, data.DefaultTunables())

	stats, err := runner.RunBattleSet(twoFighterSetup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.CompletedBattles != 2 {
		t.Fatalf("expected both battles to complete, got %d", stats.CompletedBattles)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 exported battle logs, got %d", len(entries))
	}
}

func TestRunBattleSetReportsSpawnFailure(t *testing.T) {
	cfg := Config{NumBattles: 1, MaxTicks: 10, TickMS: 16}
	runner := NewRunner(cfg, data.DefaultTunables())

	_, err := runner.RunBattleSet(func(m *ecsx.Manager) error {
		return errSpawnFailed
	})
	if err == nil {
		t.Fatal("expected spawn failure to propagate as an error")
	}
}

var errSpawnFailed = &spawnError{"boom"}

type spawnError struct{ msg string }

func (e *spawnError) Error() string { return e.msg }
