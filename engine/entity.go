package engine

// EntityId is the positional identifier of an entity: the index of the slot
// it was written to when it was spawned.
type EntityId uint32

// Entity is a single record in the store. It carries nothing but its id.
type Entity struct {
	Id EntityId
}

// Index returns the slot index the entity occupies.
func (e EntityId) Index() int {
	return int(e)
}

// EntityRef is a stable handle to an entity. It refers to the entity by index,
// so reallocating the backing storage never invalidates it.
type EntityRef struct {
	Id    EntityId
	world *World
}
