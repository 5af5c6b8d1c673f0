package engine_test

import (
	"testing"

	"github.com/plus3/linker/engine"
	"github.com/stretchr/testify/assert"
)

func TestEntityRefBasicLifecycle(t *testing.T) {
	e := engine.Create()

	entity := e.Spawn()
	ref := e.Ref(entity.Id)

	assert.NotNil(t, ref)
	assert.Equal(t, entity.Id, ref.Id)

	resolved, ok := e.Resolve(ref)
	assert.True(t, ok)
	assert.Equal(t, entity, resolved)
}

func TestEntityRefSurvivesGrowth(t *testing.T) {
	e := engine.NewEngine(engine.Options{InitialCapacity: 2})

	first := e.Spawn()
	ref := e.Ref(first.Id)

	for i := 0; i < 1000; i++ {
		e.Spawn()
	}
	assert.Greater(t, e.GrowthEvents(), 5)

	resolved, ok := e.Resolve(ref)
	assert.True(t, ok)
	assert.Equal(t, first.Id, resolved.Id)
}

func TestEntityRefIdempotency(t *testing.T) {
	e := engine.Create()

	entity := e.Spawn()

	ref1 := e.Ref(entity.Id)
	ref2 := e.Ref(entity.Id)

	// Should return the same EntityRef pointer
	assert.Same(t, ref1, ref2)
	assert.Equal(t, 1, e.LiveRefs())
}

func TestEntityRefUnknownId(t *testing.T) {
	e := engine.Create()
	e.Spawn()

	assert.Nil(t, e.Ref(1))
	assert.Nil(t, e.Ref(500))

	_, ok := e.Resolve(nil)
	assert.False(t, ok)
}

func TestEntityRefFromAnotherEngine(t *testing.T) {
	a := engine.Create()
	b := engine.Create()
	a.Spawn()
	b.Spawn()

	ref := a.Ref(0)
	_, ok := b.Resolve(ref)
	assert.False(t, ok)
}
