package catalog

import (
	"fmt"
	"slices"
)

// LoadStatus tells whether a child collection was loaded from storage.
type LoadStatus uint8

const (
	// NotLoaded means the collection was not included when the Book was loaded. It must not be mutated.
	NotLoaded LoadStatus = iota

	// LoadedEmpty means the collection was loaded and has no items.
	LoadedEmpty

	// LoadedWithItems means the collection was loaded and has at least one item.
	LoadedWithItems
)

func (s LoadStatus) String() string {
	switch s {
	case NotLoaded:
		return "not loaded"
	case LoadedEmpty:
		return "loaded (empty)"
	case LoadedWithItems:
		return "loaded"
	default:
		return "unknown"
	}
}

// Collection is a child collection of the Book aggregate that knows whether it was loaded.
// The zero value is a collection that was not loaded.
type Collection[T any] struct {
	loaded bool
	items  []T
}

// NotLoadedCollection returns a collection in the NotLoaded state.
func NotLoadedCollection[T any]() Collection[T] {
	return Collection[T]{}
}

// LoadedCollection returns a loaded collection holding a copy of items.
func LoadedCollection[T any](items ...T) Collection[T] {
	return Collection[T]{
		loaded: true,
		items:  slices.Clone(items),
	}
}

// Status returns the LoadStatus of the collection.
func (c Collection[T]) Status() LoadStatus {
	switch {
	case !c.loaded:
		return NotLoaded
	case len(c.items) == 0:
		return LoadedEmpty
	default:
		return LoadedWithItems
	}
}

// IsLoaded is true for LoadedEmpty and LoadedWithItems.
func (c Collection[T]) IsLoaded() bool {
	return c.loaded
}

// Items returns a copy of the items, or nil if the collection was not loaded.
func (c Collection[T]) Items() []T {
	if !c.loaded {
		return nil
	}

	return slices.Clone(c.items)
}

// Len returns the number of loaded items.
func (c Collection[T]) Len() int {
	return len(c.items)
}

func (c *Collection[T]) mustBeLoaded(name string) {
	if !c.loaded {
		violate(fmt.Sprintf("the %s collection must be loaded before calling this method", name))
	}
}

func (c *Collection[T]) add(item T) {
	c.items = append(c.items, item)
}

func (c *Collection[T]) removeAt(i int) T {
	item := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)

	return item
}

func (c *Collection[T]) indexFunc(f func(T) bool) int {
	return slices.IndexFunc(c.items, f)
}
