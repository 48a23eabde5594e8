package library

import "slices"

// Collection is an ordered container that keeps insertion order and
// does not enforce uniqueness. Remove matches by ==, which for pointer
// element types means identity.
type Collection[T comparable] struct {
	items []T
}

// NewCollection returns a collection seeded with items.
func NewCollection[T comparable](items ...T) *Collection[T] {
	c := &Collection[T]{}
	c.AddAll(items)
	return c
}

func (c *Collection[T]) Add(item T) { c.items = append(c.items, item) }

func (c *Collection[T]) AddAll(items []T) { c.items = append(c.items, items...) }

// Remove deletes the first element equal to item. It reports whether one was found.
func (c *Collection[T]) Remove(item T) bool {
	for i, it := range c.items {
		if it == item {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the first element matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, it := range c.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns a new slice of matching elements in collection order.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// Items returns the live backing slice. Callers must not modify it.
func (c *Collection[T]) Items() []T { return c.items }

func (c *Collection[T]) Len() int { return len(c.items) }

func (c *Collection[T]) Clear() { c.items = nil }

// checkpoint returns a func that puts the collection back to its current contents.
func (c *Collection[T]) checkpoint() func() {
	saved := slices.Clone(c.items)
	return func() { c.items = saved }
}
