package engine

import (
	"fmt"
	"iter"
	"math"
)

const (
	// DefaultCapacity is the number of slots a new store starts with.
	DefaultCapacity = 100

	// MaxCapacity is the largest capacity a container may grow to. Entity
	// ids are uint32 and must fit in an int on every platform.
	MaxCapacity = math.MaxInt32
)

// Container is a contiguous, append-only buffer with an explicit capacity.
// Items are addressed by index and never by pointer, so a reallocation does
// not invalidate anything held outside the container.
type Container[T any] struct {
	items        []T
	count        int
	maxCapacity  int
	growthEvents int
}

// NewContainer creates a container with capacity pre-allocated slots.
func NewContainer[T any](capacity, maxCapacity int) *Container[T] {
	if maxCapacity <= 0 || maxCapacity > MaxCapacity {
		maxCapacity = MaxCapacity
	}
	capacity = min(max(capacity, 0), maxCapacity)

	return &Container[T]{
		items:       make([]T, capacity),
		maxCapacity: maxCapacity,
	}
}

// Len returns the number of live items.
func (c *Container[T]) Len() int {
	return c.count
}

// Cap returns the number of allocated slots.
func (c *Container[T]) Cap() int {
	return len(c.items)
}

// Full reports whether the next Push needs to grow the container.
func (c *Container[T]) Full() bool {
	return c.count == len(c.items)
}

// GrowthEvents returns how many times the backing storage was reallocated.
func (c *Container[T]) GrowthEvents() int {
	return c.growthEvents
}

// MaxCapacity returns the capacity limit of the container.
func (c *Container[T]) MaxCapacity() int {
	return c.maxCapacity
}

// At returns the item at index i.
func (c *Container[T]) At(i int) (T, bool) {
	if i < 0 || i >= c.count {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// GrowTo reallocates the backing storage to newCapacity slots, copying the
// live items in order. On error the container is left untouched.
func (c *Container[T]) GrowTo(newCapacity int) error {
	if newCapacity <= len(c.items) {
		return fmt.Errorf("%w: grow to %d from %d", ErrInvalidCapacity, newCapacity, len(c.items))
	}
	if newCapacity > c.maxCapacity {
		return fmt.Errorf("%w: capacity %d exceeds limit %d", ErrAllocationFailure, newCapacity, c.maxCapacity)
	}

	items := make([]T, newCapacity)
	copy(items, c.items[:c.count])
	c.items = items
	c.growthEvents++
	return nil
}

// nextCapacity doubles the current capacity, clamped to the limit.
func (c *Container[T]) nextCapacity() int {
	current := len(c.items)
	if current == 0 {
		return 1
	}
	if current > c.maxCapacity/2 {
		return c.maxCapacity
	}
	return current * 2
}

// Push appends item, growing the container when it is full, and returns the
// index it was written to.
func (c *Container[T]) Push(item T) (int, error) {
	if c.Full() {
		if len(c.items) >= c.maxCapacity {
			return -1, fmt.Errorf("%w: container full at capacity limit %d", ErrAllocationFailure, c.maxCapacity)
		}
		if err := c.GrowTo(c.nextCapacity()); err != nil {
			return -1, err
		}
	}

	index := c.count
	c.items[index] = item
	c.count++
	return index, nil
}

// Iter yields every live item with its index, in ascending index order.
func (c *Container[T]) Iter() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < c.count; i++ {
			if !yield(i, c.items[i]) {
				return
			}
		}
	}
}
