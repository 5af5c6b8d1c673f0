package engine

import "errors"

var (
	// ErrAllocationFailure is returned when the store cannot grow any further.
	ErrAllocationFailure = errors.New("engine: allocation failure")

	// ErrInvalidCapacity is returned by GrowTo when the requested capacity
	// does not exceed the current one.
	ErrInvalidCapacity = errors.New("engine: invalid capacity")

	// ErrSpawnDuringUpdate is returned when an entity is spawned while systems
	// are executing. Update must never change the entity count.
	ErrSpawnDuringUpdate = errors.New("engine: spawn during update")
)
