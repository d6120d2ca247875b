// Package tasks builds and drives the per-combatant visual/presentation
// sequence a resolved action produces: a TaskList of declaration
// dialog, impact animations, and deferred state application, advanced
// one task at a time by a cooperative, frame-driven runner (spec.md
// §4.5). Delegated tasks (animate, dialog, UI animation, vfx, camera,
// custom) attach a request component the external presentation layer
// is expected to remove on acknowledgement; the runner polls for its
// absence each tick rather than blocking.
package tasks

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/command"
	"battlecore/battle/components"
	"battlecore/battle/ecsx"
)

// TaskKind is the closed set of task shapes a TaskList can contain.
type TaskKind int

const (
	AnimateTask TaskKind = iota
	DialogTask
	UiAnimationTask
	VfxTask
	EventTask
	ApplyStateTask
	WaitTask
	MoveTask
	CameraTask
	CustomTask
)

func (k TaskKind) String() string {
	switch k {
	case AnimateTask:
		return "ANIMATE"
	case DialogTask:
		return "DIALOG"
	case UiAnimationTask:
		return "UI_ANIMATION"
	case VfxTask:
		return "VFX"
	case EventTask:
		return "EVENT"
	case ApplyStateTask:
		return "APPLY_STATE"
	case WaitTask:
		return "WAIT"
	case MoveTask:
		return "MOVE"
	case CameraTask:
		return "CAMERA"
	case CustomTask:
		return "CUSTOM"
	default:
		return "UNKNOWN"
	}
}

// TaskDef is one entry of a TaskList. Only the fields relevant to Kind
// are read by the runner; the rest stay zero-valued.
type TaskDef struct {
	Kind TaskKind

	// Animate / Vfx / Camera
	TargetID    ecs.EntityID
	HasTarget   bool
	Animation   string
	VfxClass    string
	CameraFocus ecs.EntityID

	// Dialog / Event / UiAnimation / Custom
	MessageKey string
	EventName  string
	UIKind     string
	CustomID   string
	Params     map[string]string

	// Wait / Move
	DurationMS float64
	FromPos    components.Position
	ToPos      components.Position

	// ApplyState
	Commands []command.Command
}

// TaskList is an ordered sequence of TaskDef, built once by the
// resolver/sequence builder and installed onto a combatant entity.
type TaskList []TaskDef

// VisualSequence holds a combatant's pending tasks and the one
// currently ticking. Removed by the runner once Pending is empty and
// Current has finished (spec.md §4.5 task runner contract).
type VisualSequence struct {
	Owner   ecs.EntityID
	Pending TaskList
	Current *runningTask
}

type runningTask struct {
	Def       TaskDef
	ElapsedMS float64
}

// Delegated-task request payloads. The presentation layer removes the
// matching component from the owner entity once its step is
// acknowledged; the runner treats the component's absence as
// completion.
type AnimationRequest struct {
	TargetID  ecs.EntityID
	HasTarget bool
	Animation string
}

type DialogRequest struct {
	MessageKey string
	Params     map[string]string
}

type UiAnimationRequest struct {
	UIKind string
	Params map[string]string
}

type VfxRequest struct {
	TargetID ecs.EntityID
	VfxClass string
}

type CameraRequest struct {
	FocusID ecs.EntityID
}

type CustomRequest struct {
	CustomID string
	Params   map[string]string
}

// Event is an instantly-consumed notification emitted by an EventTask
// (e.g. REFRESH_UI), following the engine's event-as-component pattern:
// it lives on a fresh entity for an outside consumer to query and
// dispose of; nothing in this module reads or removes it.
type Event struct {
	Name string
}

// SequenceFinished marks a combatant whose VisualSequence has fully
// drained this tick; the phase coordinator clears it once observed.
type SequenceFinished struct {
	Owner ecs.EntityID
}

var (
	VisualSequenceComponent  *ecs.Component
	AnimationRequestComponent *ecs.Component
	DialogRequestComponent   *ecs.Component
	UiAnimationRequestComponent *ecs.Component
	VfxRequestComponent      *ecs.Component
	CameraRequestComponent   *ecs.Component
	CustomRequestComponent   *ecs.Component
	EventComponent           *ecs.Component
	SequenceFinishedComponent *ecs.Component

	VisualSequenceTag ecs.Tag
	EventTag          ecs.Tag
	SequenceFinishedTag ecs.Tag
)

func init() {
	ecsx.RegisterSubsystem(func(m *ecsx.Manager) {
		VisualSequenceComponent = ecsx.NewComponent(m)
		AnimationRequestComponent = ecsx.NewComponent(m)
		DialogRequestComponent = ecsx.NewComponent(m)
		UiAnimationRequestComponent = ecsx.NewComponent(m)
		VfxRequestComponent = ecsx.NewComponent(m)
		CameraRequestComponent = ecsx.NewComponent(m)
		CustomRequestComponent = ecsx.NewComponent(m)
		EventComponent = ecsx.NewComponent(m)
		SequenceFinishedComponent = ecsx.NewComponent(m)

		VisualSequenceTag = ecs.BuildTag(VisualSequenceComponent)
		EventTag = ecs.BuildTag(EventComponent)
		SequenceFinishedTag = ecs.BuildTag(SequenceFinishedComponent)

		m.Tags["visualSequence"] = VisualSequenceTag
		m.Tags["event"] = EventTag
		m.Tags["sequenceFinished"] = SequenceFinishedTag
	})
}

// DefaultDelegatedTimeoutMS bounds how long the runner waits for a
// delegated task's request component to be removed before forcing it
// complete, avoiding a frozen battle if the presentation layer never
// acknowledges (spec.md §5 cancellation & timeouts guideline).
const DefaultDelegatedTimeoutMS = 10000.0

// Runner advances every combatant's VisualSequence one tick at a time.
type Runner struct {
	Manager   *ecsx.Manager
	Executor  *command.Executor
	TimeoutMS float64
}

// NewRunner wraps m/executor with the default delegated-task timeout.
func NewRunner(m *ecsx.Manager, executor *command.Executor) *Runner {
	return &Runner{Manager: m, Executor: executor, TimeoutMS: DefaultDelegatedTimeoutMS}
}

// Install attaches a freshly-built TaskList to ownerID, replacing any
// sequence already present.
func (r *Runner) Install(ownerID ecs.EntityID, list TaskList) {
	entity := ecsx.FindEntityByID(r.Manager, ownerID)
	if entity == nil {
		return
	}
	if entity.HasComponent(VisualSequenceComponent) {
		entity.RemoveComponent(VisualSequenceComponent)
	}
	pending := make(TaskList, len(list))
	copy(pending, list)
	entity.AddComponent(VisualSequenceComponent, &VisualSequence{Owner: ownerID, Pending: pending})
}

// Tick advances every active sequence by deltaMS, returning the ids of
// combatants whose sequence finished this call.
func (r *Runner) Tick(deltaMS float64) []ecs.EntityID {
	var finished []ecs.EntityID
	for _, result := range r.Manager.World.Query(VisualSequenceTag) {
		entity := result.Entity
		seq := ecsx.GetComponentType[*VisualSequence](entity, VisualSequenceComponent)
		if seq == nil {
			continue
		}

		if seq.Current == nil {
			if len(seq.Pending) == 0 {
				entity.RemoveComponent(VisualSequenceComponent)
				entity.AddComponent(SequenceFinishedComponent, &SequenceFinished{Owner: seq.Owner})
				finished = append(finished, seq.Owner)
				continue
			}
			next := seq.Pending[0]
			seq.Pending = seq.Pending[1:]
			seq.Current = &runningTask{Def: next}
			r.start(entity, seq.Current)
		}

		if r.poll(entity, seq.Current, deltaMS) {
			seq.Current = nil
			if len(seq.Pending) == 0 {
				entity.RemoveComponent(VisualSequenceComponent)
				entity.AddComponent(SequenceFinishedComponent, &SequenceFinished{Owner: seq.Owner})
				finished = append(finished, seq.Owner)
			}
		}
	}
	return finished
}

// Abort discards ownerID's in-flight sequence (e.g. the combatant
// broke mid-sequence), removing any attached delegated-task request so
// the presentation layer stops waiting on it.
func (r *Runner) Abort(ownerID ecs.EntityID) {
	entity := ecsx.FindEntityByID(r.Manager, ownerID)
	if entity == nil {
		return
	}
	r.removeRequests(entity)
	if entity.HasComponent(VisualSequenceComponent) {
		entity.RemoveComponent(VisualSequenceComponent)
	}
}

func (r *Runner) start(entity *ecs.Entity, task *runningTask) {
	switch task.Def.Kind {
	case AnimateTask:
		entity.AddComponent(AnimationRequestComponent, &AnimationRequest{
			TargetID: task.Def.TargetID, HasTarget: task.Def.HasTarget, Animation: task.Def.Animation,
		})
	case DialogTask:
		entity.AddComponent(DialogRequestComponent, &DialogRequest{MessageKey: task.Def.MessageKey, Params: task.Def.Params})
	case UiAnimationTask:
		entity.AddComponent(UiAnimationRequestComponent, &UiAnimationRequest{UIKind: task.Def.UIKind, Params: task.Def.Params})
	case VfxTask:
		entity.AddComponent(VfxRequestComponent, &VfxRequest{TargetID: task.Def.TargetID, VfxClass: task.Def.VfxClass})
	case CameraTask:
		entity.AddComponent(CameraRequestComponent, &CameraRequest{FocusID: task.Def.CameraFocus})
	case CustomTask:
		entity.AddComponent(CustomRequestComponent, &CustomRequest{CustomID: task.Def.CustomID, Params: task.Def.Params})
	case EventTask:
		r.Manager.World.NewEntity().AddComponent(EventComponent, &Event{Name: task.Def.EventName})
	case ApplyStateTask:
		r.Executor.Apply(task.Def.Commands)
	case WaitTask, MoveTask:
		// timing-only tasks; nothing to attach, poll advances ElapsedMS.
	}
}

// poll advances task by deltaMS and reports whether it has completed.
func (r *Runner) poll(entity *ecs.Entity, task *runningTask, deltaMS float64) bool {
	switch task.Def.Kind {
	case WaitTask:
		task.ElapsedMS += deltaMS
		return task.ElapsedMS >= task.Def.DurationMS
	case MoveTask:
		task.ElapsedMS += deltaMS
		if task.ElapsedMS < task.Def.DurationMS {
			return false
		}
		r.Executor.Apply([]command.Command{
			command.SetPosition{EntityID: entity.GetID(), Position: task.Def.ToPos},
		})
		return true
	case AnimateTask:
		return r.delegatedDone(entity, AnimationRequestComponent, task, deltaMS)
	case DialogTask:
		return r.delegatedDone(entity, DialogRequestComponent, task, deltaMS)
	case UiAnimationTask:
		return r.delegatedDone(entity, UiAnimationRequestComponent, task, deltaMS)
	case VfxTask:
		return r.delegatedDone(entity, VfxRequestComponent, task, deltaMS)
	case CameraTask:
		return r.delegatedDone(entity, CameraRequestComponent, task, deltaMS)
	case CustomTask:
		return r.delegatedDone(entity, CustomRequestComponent, task, deltaMS)
	case EventTask, ApplyStateTask:
		return true // instant: already handled in start
	default:
		return true
	}
}

// delegatedDone reports whether a delegated task has been acknowledged
// (its request component removed by the presentation layer) or has sat
// long enough to hit the timeout, in which case the runner forces it
// closed itself.
func (r *Runner) delegatedDone(entity *ecs.Entity, requestComponent *ecs.Component, task *runningTask, deltaMS float64) bool {
	if !entity.HasComponent(requestComponent) {
		return true
	}
	task.ElapsedMS += deltaMS
	if task.ElapsedMS >= r.TimeoutMS {
		entity.RemoveComponent(requestComponent)
		return true
	}
	return false
}

func (r *Runner) removeRequests(entity *ecs.Entity) {
	for _, c := range []*ecs.Component{
		AnimationRequestComponent, DialogRequestComponent, UiAnimationRequestComponent,
		VfxRequestComponent, CameraRequestComponent, CustomRequestComponent,
	} {
		if entity.HasComponent(c) {
			entity.RemoveComponent(c)
		}
	}
}
