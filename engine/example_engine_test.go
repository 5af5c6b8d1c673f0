package engine_test

import (
	"errors"
	"fmt"

	"github.com/plus3/linker/engine"
)

// ExampleEngine demonstrates the basic store API. Entities are identified by
// the slot they were written to, and storage doubles when it runs out.
func ExampleEngine() {
	e := engine.Create()
	fmt.Printf("count=%d capacity=%d\n", e.Count(), e.Capacity())

	first := e.Spawn()
	second := e.Spawn()
	fmt.Printf("spawned %d and %d\n", first.Id, second.Id)

	for e.Count() < 101 {
		e.Spawn()
	}
	fmt.Printf("count=%d capacity=%d growth=%d\n", e.Count(), e.Capacity(), e.GrowthEvents())

	// Output:
	// count=0 capacity=100
	// spawned 0 and 1
	// count=101 capacity=200 growth=1
}

// ExampleEngine_Update shows a system observing the world each frame.
// Systems get a read-only view and cannot spawn entities.
func ExampleEngine_Update() {
	e := engine.Create()
	e.Spawn()
	e.Spawn()

	e.Register(engine.SystemFunc(func(frame *engine.UpdateFrame) {
		fmt.Printf("frame %d: dt=%.2f entities=%d\n", frame.Frame, frame.DeltaTime, frame.World.Count())
	}))

	e.Update(0.5)
	e.Update(0.25)

	// Output:
	// frame 1: dt=0.50 entities=2
	// frame 2: dt=0.25 entities=2
}

// ExampleEngine_TrySpawn shows the allocation failure policy of a bounded store.
func ExampleEngine_TrySpawn() {
	e := engine.NewEngine(engine.Options{InitialCapacity: 1, MaxCapacity: 2})

	for i := 0; i < 3; i++ {
		entity, err := e.TrySpawn()
		if errors.Is(err, engine.ErrAllocationFailure) {
			fmt.Println("store is full")
			continue
		}
		fmt.Printf("spawned %d\n", entity.Id)
	}

	// Output:
	// spawned 0
	// spawned 1
	// store is full
}
