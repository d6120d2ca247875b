package components

import (
	"github.com/bytearena/ecs"

	"battlecore/battle/ecsx"
)

// State is the closed set of mutually-exclusive primary states a live
// combatant carries. Every live combatant has exactly one.
type State int

const (
	StateReadyToSelect State = iota
	StateCharging
	StateSelectedCharging
	StateReadyToExecute
	StateExecuting
	StateCooldown
	StateBroken
	StateAwaitingAnimation
	StateGuarding
	StateStunned
)

func (s State) String() string {
	switch s {
	case StateReadyToSelect:
		return "ReadyToSelect"
	case StateCharging:
		return "Charging"
	case StateSelectedCharging:
		return "SelectedCharging"
	case StateReadyToExecute:
		return "ReadyToExecute"
	case StateExecuting:
		return "Executing"
	case StateCooldown:
		return "Cooldown"
	case StateBroken:
		return "Broken"
	case StateAwaitingAnimation:
		return "AwaitingAnimation"
	case StateGuarding:
		return "Guarding"
	case StateStunned:
		return "Stunned"
	default:
		return "Unknown"
	}
}

// stateComponent maps each State to its marker component. Markers are
// zero-sized tags (presence-only components); the mapping back from
// component identity to State is used by CurrentState to answer "which
// tag does this entity carry" without the caller tracking it separately.
var (
	stateComponents [10]*ecs.Component
	componentState  map[*ecs.Component]State
)

// stateMarker is the zero-sized payload every primary-state tag component
// carries. Only its presence matters.
type stateMarker struct{}

func initStateTags(m *ecsx.Manager) {
	componentState = make(map[*ecs.Component]State, len(stateComponents))
	for s := range stateComponents {
		c := ecsx.NewComponent(m)
		stateComponents[s] = c
		componentState[c] = State(s)
		m.Tags["state:"+State(s).String()] = ecs.BuildTag(c)
	}
}

// StateComponent returns the marker component for a given primary state.
func StateComponent(s State) *ecs.Component {
	return stateComponents[s]
}

// CurrentState returns the single primary state tag an entity carries, and
// ok=false if the entity carries none or more than one (an invariant
// violation the caller should log and treat as a missing-component case
// per spec.md §7).
func CurrentState(e *ecs.Entity) (state State, ok bool) {
	found := 0
	for s, c := range stateComponents {
		if e.HasComponent(c) {
			state = State(s)
			found++
		}
	}
	return state, found == 1
}

// TransitionTo enforces the single-primary-tag invariant: it removes
// whichever primary-state tag the entity currently carries (if any) and
// adds newState. Every state change in this engine goes through this
// helper -- per spec.md §9 DESIGN NOTES, "Use a central transitionTo(...)
// helper that enforces the single-tag invariant."
func TransitionTo(e *ecs.Entity, newState State) {
	for _, c := range stateComponents {
		if e.HasComponent(c) {
			e.RemoveComponent(c)
		}
	}
	e.AddComponent(stateComponents[newState], &stateMarker{})
}

// HasState reports whether e currently carries the marker tag for s.
func HasState(e *ecs.Entity, s State) bool {
	return e.HasComponent(stateComponents[s])
}
