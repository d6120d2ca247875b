// Package simulate runs many headless battles back to back and
// aggregates their outcomes -- a balance-testing harness for tuning
// data.Tunables and part loadouts without a renderer attached.
package simulate

import (
	"fmt"
	"time"

	"github.com/bytearena/ecs"

	"battlecore/battle/battlelog"
	"battlecore/battle/components"
	"battlecore/battle/data"
	"battlecore/battle/ecsx"
	"battlecore/battle/engine"
	"battlecore/battle/resolver"
)

// SpawnFunc populates a fresh Manager with one battle's combatants. It
// runs after ecsx.AttachAll and the BattleContext/BattleHistoryContext
// singletons have been created, so it only needs to call
// components.CreateCombatant.
type SpawnFunc func(m *ecsx.Manager) error

// Config controls one RunBattleSet call.
type Config struct {
	NumBattles int
	MaxTicks   int     // ticks per battle before it's counted as timed out
	TickMS     float64 // deltaMS passed to Engine.Update each tick
	Verbose    bool

	RecordLogs bool   // export a battlelog.BattleRecord per battle
	OutputDir  string // required if RecordLogs is set
}

// DefaultConfig mirrors data.DefaultTunables' role: reasonable values
// for a quick balance pass.
func DefaultConfig() Config {
	return Config{
		NumBattles: 100,
		MaxTicks:   2000,
		TickMS:     16,
	}
}

// Stats aggregates outcomes across a battle set.
type Stats struct {
	TotalBattles   int
	CompletedBattles int
	TimedOutBattles  int

	WinsByTeam map[ecs.EntityID]int

	TotalTurns int
	MinTurns   int
	MaxTurns   int

	TotalHits      int
	TotalMisses    int
	TotalCriticals int

	// DamageByActingPart sums EffectResult.ActualAmount for every DAMAGE
	// effect, keyed by the acting part's PartKey string -- which part
	// slot is carrying a battle.
	DamageByActingPart map[string]int
}

func newStats() *Stats {
	return &Stats{
		WinsByTeam:         make(map[ecs.EntityID]int),
		DamageByActingPart: make(map[string]int),
		MinTurns:           -1,
	}
}

// AverageTurns returns the mean turn count across completed battles, or
// 0 if none completed.
func (s *Stats) AverageTurns() float64 {
	if s.CompletedBattles == 0 {
		return 0
	}
	return float64(s.TotalTurns) / float64(s.CompletedBattles)
}

// WinRate returns teamID's share of completed battles, in [0,1].
func (s *Stats) WinRate(teamID ecs.EntityID) float64 {
	if s.CompletedBattles == 0 {
		return 0
	}
	return float64(s.WinsByTeam[teamID]) / float64(s.CompletedBattles)
}

func (s *Stats) absorb(outcome battleOutcome) {
	s.TotalBattles++
	if !outcome.completed {
		s.TimedOutBattles++
		return
	}
	s.CompletedBattles++
	s.TotalTurns += outcome.turns
	if s.MinTurns < 0 || outcome.turns < s.MinTurns {
		s.MinTurns = outcome.turns
	}
	if outcome.turns > s.MaxTurns {
		s.MaxTurns = outcome.turns
	}
	if outcome.hasWinner {
		s.WinsByTeam[outcome.winningTeam]++
	}
}

func (s *Stats) absorbResult(result resolver.CombatResult) {
	if result.Cancelled {
		return
	}
	if result.Outcome.IsHit {
		s.TotalHits++
		if result.Outcome.IsCritical {
			s.TotalCriticals++
		}
	} else {
		s.TotalMisses++
	}
	for _, er := range result.EffectResults {
		if er.Kind != components.DamageEffect {
			continue
		}
		s.DamageByActingPart[result.ActingPartKey.String()] += er.ActualAmount
	}
}

type battleOutcome struct {
	completed   bool
	turns       int
	hasWinner   bool
	winningTeam ecs.EntityID
}

// Runner drives a configured set of battles with Tunables shared across
// all of them.
type Runner struct {
	Config   Config
	Tunables data.Tunables
}

// NewRunner builds a Runner.
func NewRunner(cfg Config, tn data.Tunables) *Runner {
	return &Runner{Config: cfg, Tunables: tn}
}

// RunBattleSet runs Config.NumBattles independent battles, each freshly
// populated by spawn, and returns the aggregated Stats. A single
// battle's spawn failure aborts the whole set -- unlike a timeout,
// it signals a caller bug, not a slow match.
func (r *Runner) RunBattleSet(spawn SpawnFunc) (*Stats, error) {
	stats := newStats()

	for i := 1; i <= r.Config.NumBattles; i++ {
		if r.Config.Verbose {
			fmt.Printf("--- battle %d/%d ---\n", i, r.Config.NumBattles)
		}

		outcome, record, err := r.runSingleBattle(spawn, stats, i)
		if err != nil {
			return stats, fmt.Errorf("simulate: battle %d: %w", i, err)
		}
		stats.absorb(outcome)

		if record != nil {
			if err := battlelog.ExportJSON(record, r.Config.OutputDir); err != nil {
				return stats, fmt.Errorf("simulate: battle %d: %w", i, err)
			}
		}
	}

	return stats, nil
}

func (r *Runner) runSingleBattle(spawn SpawnFunc, stats *Stats, battleNum int) (battleOutcome, *battlelog.BattleRecord, error) {
	m := ecsx.NewManager()
	ecsx.AttachAll(m)
	components.CreateBattleContext(m)
	components.CreateBattleHistoryContext(m)

	if err := spawn(m); err != nil {
		return battleOutcome{}, nil, fmt.Errorf("spawn failed: %w", err)
	}

	ctx := components.FindBattleContext(m)
	eng := engine.New(m, r.Tunables, r.Config.Verbose)
	// No presentation layer acknowledges delegated tasks in a headless
	// battle, so each one is closed on its first poll.
	eng.Tasks.TimeoutMS = 0

	var recorder *battlelog.Recorder
	if r.Config.RecordLogs {
		recorder = battlelog.NewRecorder()
		recorder.SetEnabled(true)
		startTime := time.Now()
		recorder.Start(fmt.Sprintf("battle_%04d_%s", battleNum, startTime.Format("20060102_150405.000")), startTime)
	}

	eng.OnResult = func(result resolver.CombatResult) {
		stats.absorbResult(result)
		if recorder != nil {
			recorder.RecordResult(m, result, ctx.Turn.Number)
		}
	}

	for tick := 0; tick < r.Config.MaxTicks && !ctx.HasWinner; tick++ {
		eng.Update(r.Config.TickMS)
	}

	outcome := battleOutcome{
		completed:   ctx.HasWinner,
		turns:       ctx.Turn.Number + 1, // Turn.Number counts from 0
		hasWinner:   ctx.HasWinner,
		winningTeam: ctx.WinningTeam,
	}

	var record *battlelog.BattleRecord
	if recorder != nil {
		record = recorder.Finalize(ctx, time.Now())
	}
	return outcome, record, nil
}
