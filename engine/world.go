package engine

import "iter"

// World owns the entity container. Systems receive it through the
// UpdateFrame as a read-only view: it has no way to add entities.
type World struct {
	entities *Container[Entity]
	updating bool
}

func newWorld(capacity, maxCapacity int) *World {
	return &World{
		entities: NewContainer[Entity](capacity, maxCapacity),
	}
}

// Count returns the number of live entities.
func (w *World) Count() int {
	return w.entities.Len()
}

// Capacity returns the number of allocated entity slots.
func (w *World) Capacity() int {
	return w.entities.Cap()
}

// GrowthEvents returns how many times entity storage was reallocated.
func (w *World) GrowthEvents() int {
	return w.entities.GrowthEvents()
}

// Entity returns the entity with the given id.
func (w *World) Entity(id EntityId) (Entity, bool) {
	return w.entities.At(id.Index())
}

// Entities iterates over all live entities in ascending id order.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, entity := range w.entities.Iter() {
			if !yield(entity) {
				return
			}
		}
	}
}

// Updating reports whether systems are currently executing.
func (w *World) Updating() bool {
	return w.updating
}
