package engine

import "weak"

// Ref returns a handle to the entity with the given id, or nil if no such
// entity exists. Repeated calls return the same handle while it is reachable.
func (e *Engine) Ref(id EntityId) *EntityRef {
	if _, ok := e.world.Entity(id); !ok {
		return nil
	}

	if weakPtr, ok := e.refs.Get(id); ok {
		if ref := weakPtr.Value(); ref != nil {
			return ref
		}
		// Weak pointer is dead, remove it
		e.refs.Del(id)
	}

	ref := &EntityRef{
		Id:    id,
		world: e.world,
	}
	e.refs.Put(id, weak.Make(ref))
	return ref
}

// Resolve returns the entity a handle refers to.
func (e *Engine) Resolve(ref *EntityRef) (Entity, bool) {
	if ref == nil || ref.world != e.world {
		return Entity{}, false
	}
	return e.world.Entity(ref.Id)
}

// LiveRefs returns the number of cached handles, including ones whose
// referent has been collected but not yet pruned.
func (e *Engine) LiveRefs() int {
	return e.refs.Len()
}
