// Package ecsx wraps github.com/bytearena/ecs with the entity/component
// access patterns this engine's systems share: a central manager, a
// recover-guarded generic component accessor, and a tag registry so
// packages can look up a query tag by name instead of importing every
// component-owning package.
package ecsx

import (
	"github.com/bytearena/ecs"
)

// EntityID re-exports the underlying library's id type so callers outside
// this package never need to import github.com/bytearena/ecs directly.
type EntityID = ecs.EntityID

// Manager wraps the ECS library's manager and keeps a name->tag registry so
// systems can publish the tags they build without every caller needing the
// owning package's exported var.
type Manager struct {
	World *ecs.Manager
	Tags  map[string]ecs.Tag

	// subsystems registered via Register, run in registration order by Init.
	subsystems []func(*Manager)
}

// NewManager creates an empty manager. Call Register for every component
// package before Init, then Init once to materialize components/tags/views.
func NewManager() *Manager {
	return &Manager{
		World: ecs.NewManager(),
		Tags:  make(map[string]ecs.Tag),
	}
}

// Register queues a subsystem's component/tag/view initializer. Safe to
// call from a package's init() before any Manager exists, by registering
// against a package-level slice instead -- see RegisterSubsystem.
func (m *Manager) Register(setup func(*Manager)) {
	m.subsystems = append(m.subsystems, setup)
}

// Init runs every registered subsystem initializer in registration order.
func (m *Manager) Init() {
	for _, setup := range m.subsystems {
		setup(m)
	}
}

// package-level registry mirrors the teacher's common.RegisterSubsystem:
// component-owning packages call RegisterSubsystem from their own init()
// so the engine doesn't need to import every package's Init function by
// name. AttachAll wires the accumulated registrations onto a fresh Manager.
var globalSubsystems []func(*Manager)

// RegisterSubsystem queues a package's component/tag/view setup to run
// against every Manager created afterward via AttachAll.
func RegisterSubsystem(setup func(*Manager)) {
	globalSubsystems = append(globalSubsystems, setup)
}

// AttachAll runs every globally registered subsystem against m, in
// registration order. Call once per battle, after NewManager.
func AttachAll(m *Manager) {
	for _, setup := range globalSubsystems {
		setup(m)
	}
}

// GetComponentType retrieves a component of type T from an entity pointer.
// Returns the zero value of T if the entity lacks the component or the
// stored value doesn't match T -- component access never panics a system.
func GetComponentType[T any](entity *ecs.Entity, component *ecs.Component) (result T) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
		}
	}()

	if entity == nil || component == nil {
		return result
	}
	if c, ok := entity.GetComponentData(component); ok {
		return c.(T)
	}
	return result
}

// GetComponentTypeByID retrieves a component of type T by entity id.
// Returns the zero value if the entity or the component isn't found.
func GetComponentTypeByID[T any](m *Manager, id EntityID, component *ecs.Component) T {
	return GetComponentType[T](FindEntityByID(m, id), component)
}

// FindEntityByID searches all entities for one with the given id.
// Returns nil if not found.
func FindEntityByID(m *Manager, id EntityID) *ecs.Entity {
	for _, result := range m.World.Query(m.Tags[AllEntitiesTagName]) {
		if result.Entity.GetID() == id {
			return result.Entity
		}
	}
	return nil
}

// AllEntitiesTagName is the registry key for the zero-component tag that
// matches every live entity. Registered through RegisterCoreTag by the
// components package's subsystem.
const AllEntitiesTagName = "all"

// RegisterCoreTag installs the all-entities tag. Called by the components
// package's subsystem registration, which owns the rest of component init.
func RegisterCoreTag(m *Manager) {
	m.Tags[AllEntitiesTagName] = ecs.BuildTag()
}

// NewComponent allocates a new component slot on the manager's world.
func NewComponent(m *Manager) *ecs.Component {
	return m.World.NewComponent()
}

// Dispose removes an entity and all its components from the world.
func Dispose(m *Manager, e *ecs.Entity) {
	if e == nil {
		return
	}
	m.World.DisposeEntity(e)
}
