// Package engine implements a positional entity store. Entities are spawned
// into a contiguous, growable container and identified by the index of the
// slot they were written to. Per-frame behavior is supplied by systems that
// Update runs in registration order.
package engine

import (
	"context"
	"fmt"
	"iter"
	"time"
	"weak"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// Options configures a new Engine. Use DefaultOptions as a starting point.
type Options struct {
	// InitialCapacity is the number of entity slots allocated up front.
	InitialCapacity int
	// MaxCapacity bounds growth. Values <= 0 mean the package MaxCapacity.
	MaxCapacity int
	// Logger receives growth and failure events. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the options used by Create.
func DefaultOptions() Options {
	return Options{
		InitialCapacity: DefaultCapacity,
		MaxCapacity:     MaxCapacity,
	}
}

// Engine owns the world and the scheduler driving it. It is not safe for
// concurrent use.
type Engine struct {
	world     *World
	scheduler *Scheduler
	refs      *intmap.Map[EntityId, weak.Pointer[EntityRef]]
	log       *zap.Logger
}

// Create returns an engine with DefaultCapacity pre-allocated entity slots
// and no live entities.
func Create() *Engine {
	return NewEngine(DefaultOptions())
}

// NewEngine creates an engine from opts.
func NewEngine(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	world := newWorld(opts.InitialCapacity, opts.MaxCapacity)
	return &Engine{
		world:     world,
		scheduler: NewScheduler(world),
		refs:      intmap.New[EntityId, weak.Pointer[EntityRef]](256),
		log:       log,
	}
}

// World returns the read-only view of the engine's entities.
func (e *Engine) World() *World {
	return e.world
}

// Scheduler returns the scheduler that Update drives.
func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

// Register adds a system to be run by Update.
func (e *Engine) Register(system System) {
	e.scheduler.Register(system)
}

// Spawn appends a new entity whose id is the index of the slot it occupies,
// growing storage when it is full. It panics if storage cannot grow or if it
// is called while systems are executing; use TrySpawn to get an error instead.
func (e *Engine) Spawn() Entity {
	entity, err := e.TrySpawn()
	if err != nil {
		panic(err)
	}
	return entity
}

// TrySpawn is like Spawn but reports failures as errors. A failed call leaves
// the store unchanged.
func (e *Engine) TrySpawn() (Entity, error) {
	if e.world.updating {
		return Entity{}, ErrSpawnDuringUpdate
	}

	entities := e.world.entities
	if entities.Full() {
		err := fmt.Errorf("%w: store full at capacity limit %d", ErrAllocationFailure, entities.MaxCapacity())
		if entities.Cap() < entities.MaxCapacity() {
			err = e.grow(entities.nextCapacity())
		}
		if err != nil {
			e.log.Error("spawn failed",
				zap.Int("count", entities.Len()),
				zap.Int("capacity", entities.Cap()),
				zap.Error(err))
			return Entity{}, err
		}
	}

	entity := Entity{Id: EntityId(entities.Len())}
	if _, err := entities.Push(entity); err != nil {
		return Entity{}, err
	}
	return entity, nil
}

// GrowTo reallocates entity storage to newCapacity slots, preserving the
// order and ids of every live entity.
func (e *Engine) GrowTo(newCapacity int) error {
	return e.grow(newCapacity)
}

func (e *Engine) grow(newCapacity int) error {
	entities := e.world.entities
	from := entities.Cap()
	if err := entities.GrowTo(newCapacity); err != nil {
		return err
	}

	e.log.Debug("entity storage grown",
		zap.Int("from", from),
		zap.Int("to", newCapacity),
		zap.Int("count", entities.Len()),
		zap.Int("growth_events", entities.GrowthEvents()))
	return nil
}

// Update runs every registered system once with the elapsed time dt in
// seconds. It never changes the entity count or any entity id.
func (e *Engine) Update(dt float64) {
	e.scheduler.Once(dt)
}

// Run calls Update at the given interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	e.scheduler.Run(ctx, interval)
}

// Count returns the number of live entities.
func (e *Engine) Count() int {
	return e.world.Count()
}

// Capacity returns the number of allocated entity slots.
func (e *Engine) Capacity() int {
	return e.world.Capacity()
}

// GrowthEvents returns how many times entity storage was reallocated.
func (e *Engine) GrowthEvents() int {
	return e.world.GrowthEvents()
}

// Entity returns the entity with the given id.
func (e *Engine) Entity(id EntityId) (Entity, bool) {
	return e.world.Entity(id)
}

// Entities iterates over all live entities in ascending id order.
func (e *Engine) Entities() iter.Seq[Entity] {
	return e.world.Entities()
}
