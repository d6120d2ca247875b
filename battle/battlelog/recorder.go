// Package battlelog records resolved actions into a post-battle history
// for export and offline analysis. Recording is opt-in and off by default
// (spec.md has no hard requirement on it) -- battle/engine never depends
// on whether a Recorder is attached, so turning it on never changes battle
// outcomes.
package battlelog

import (
	"time"

	"github.com/bytearena/ecs"

	"battlecore/battle/components"
	"battlecore/battle/ecsx"
	"battlecore/battle/resolver"
)

// EffectSummary is one applied effect from a resolved action.
type EffectSummary struct {
	Kind          string            `json:"kind"`
	TargetID      ecs.EntityID      `json:"target_id"`
	TargetName    string            `json:"target_name"`
	PartKey       string            `json:"part_key,omitempty"`
	ActualAmount  int               `json:"actual_amount"`
	RawAmount     int               `json:"raw_amount"`
	Overkill      int               `json:"overkill"`
	IsGuardBroken bool              `json:"is_guard_broken,omitempty"`
	IsNoop        bool              `json:"is_noop,omitempty"`
}

// EngagementRecord is one actor's fully resolved action for one turn.
type EngagementRecord struct {
	Index                int             `json:"index"`
	Turn                 int             `json:"turn"`
	ActorID              ecs.EntityID    `json:"actor_id"`
	ActorName            string          `json:"actor_name"`
	ActingPartKey        string          `json:"acting_part_key"`
	DeclaredTargetID     ecs.EntityID    `json:"declared_target_id,omitempty"`
	FinalTargetID        ecs.EntityID    `json:"final_target_id,omitempty"`
	FinalTargetName      string          `json:"final_target_name,omitempty"`
	FinalTargetPartKey   string          `json:"final_target_part_key,omitempty"`
	WasRedirectedToGuard bool            `json:"was_redirected_to_guard,omitempty"`
	IsHit                bool            `json:"is_hit"`
	IsCritical           bool            `json:"is_critical,omitempty"`
	IsDefended           bool            `json:"is_defended,omitempty"`
	Cancelled            bool            `json:"cancelled,omitempty"`
	CancelReason         string          `json:"cancel_reason,omitempty"`
	Effects              []EffectSummary `json:"effects,omitempty"`
}

// VictoryInfo is the battle's outcome, recorded at Finalize.
type VictoryInfo struct {
	HasVictor   bool         `json:"has_victor"`
	WinningTeam ecs.EntityID `json:"winning_team,omitempty"`
	FinalTurn   int          `json:"final_turn"`
}

// BattleRecord is the root structure exported to JSON for post-battle
// analysis -- the whole recorded history of one battle.
type BattleRecord struct {
	BattleID    string             `json:"battle_id"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Victory     VictoryInfo        `json:"victory"`
	Engagements []EngagementRecord `json:"engagements"`
}

// Recorder accumulates EngagementRecords across a battle. A zero Recorder
// is valid and disabled; call SetEnabled(true) to start recording.
type Recorder struct {
	enabled     bool
	battleID    string
	startTime   time.Time
	engagements []EngagementRecord
}

// NewRecorder returns a disabled Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetEnabled enables or disables recording.
func (r *Recorder) SetEnabled(enabled bool) {
	r.enabled = enabled
}

// IsEnabled reports whether recording is currently enabled.
func (r *Recorder) IsEnabled() bool {
	return r.enabled
}

// Start begins a new recording session under battleID, clearing any
// engagements left over from a previous battle.
func (r *Recorder) Start(battleID string, startTime time.Time) {
	if !r.enabled {
		return
	}
	r.battleID = battleID
	r.startTime = startTime
	r.engagements = nil
}

// RecordResult appends result as the next engagement of turn. A no-op
// when recording is disabled, so callers can call it unconditionally.
func (r *Recorder) RecordResult(m *ecsx.Manager, result resolver.CombatResult, turn int) {
	if !r.enabled {
		return
	}

	rec := EngagementRecord{
		Index:                len(r.engagements),
		Turn:                 turn,
		ActorID:              result.ActorID,
		ActorName:            combatantName(m, result.ActorID),
		ActingPartKey:        result.ActingPartKey.String(),
		DeclaredTargetID:     result.DeclaredTargetID,
		FinalTargetID:        result.FinalTargetID,
		FinalTargetName:      combatantName(m, result.FinalTargetID),
		FinalTargetPartKey:   result.FinalTargetPartKey.String(),
		WasRedirectedToGuard: result.WasRedirectedToGuard,
		IsHit:                result.Outcome.IsHit,
		IsCritical:           result.Outcome.IsCritical,
		IsDefended:           result.Outcome.IsDefended,
		Cancelled:            result.Cancelled,
		CancelReason:         result.CancelReason.MessageKey(),
	}

	for _, er := range result.EffectResults {
		summary := EffectSummary{
			Kind:          er.Kind.String(),
			TargetID:      er.TargetID,
			TargetName:    combatantName(m, er.TargetID),
			ActualAmount:  er.ActualAmount,
			RawAmount:     er.RawAmount,
			Overkill:      overkill(er),
			IsGuardBroken: er.IsGuardBroken,
			IsNoop:        er.IsNoop,
		}
		if er.HasPartKey {
			summary.PartKey = er.PartKey.String()
		}
		rec.Effects = append(rec.Effects, summary)
	}

	r.engagements = append(r.engagements, rec)
}

func overkill(er components.EffectResult) int {
	if er.RawAmount > er.ActualAmount {
		return er.RawAmount - er.ActualAmount
	}
	return 0
}

func combatantName(m *ecsx.Manager, id ecs.EntityID) string {
	if id == 0 {
		return ""
	}
	entity := ecsx.FindEntityByID(m, id)
	if entity == nil {
		return ""
	}
	info := ecsx.GetComponentType[*components.PlayerInfo](entity, components.PlayerInfoComponent)
	if info == nil {
		return ""
	}
	return info.Name
}

// Finalize completes the record with the battle's final context and
// returns it ready for export. Does not clear the recorder.
func (r *Recorder) Finalize(ctx *components.BattleContext, endTime time.Time) *BattleRecord {
	record := &BattleRecord{
		BattleID:    r.battleID,
		StartTime:   r.startTime,
		EndTime:     endTime,
		Engagements: r.engagements,
	}
	if ctx != nil {
		record.Victory = VictoryInfo{
			HasVictor:   ctx.HasWinner,
			WinningTeam: ctx.WinningTeam,
			FinalTurn:   ctx.Turn.Number,
		}
	}
	return record
}

// Clear resets the recorder for the next battle.
func (r *Recorder) Clear() {
	r.engagements = nil
	r.battleID = ""
	r.startTime = time.Time{}
}

// EngagementCount returns the number of recorded engagements.
func (r *Recorder) EngagementCount() int {
	return len(r.engagements)
}
