// Package pager walks an ordered, fixed result list one item at a time.
package pager

// Pager is a cursor over a snapshot of items. The zero value is an exhausted
// pager over nothing.
type Pager[T any] struct {
	items []T
	pos   int
}

// New returns a pager positioned on the first item. items is copied.
func New[T any](items []T) Pager[T] {
	return Pager[T]{items: append([]T(nil), items...)}
}

// Current returns the item under the cursor, or false once the pager is exhausted.
func (p Pager[T]) Current() (T, bool) {
	if p.pos >= len(p.items) {
		var zero T
		return zero, false
	}
	return p.items[p.pos], true
}

// Advance moves to the next item. Advancing an exhausted pager does nothing.
func (p Pager[T]) Advance() Pager[T] {
	if p.pos < len(p.items) {
		p.pos++
	}
	return p
}

// Exhausted reports whether every item has been passed over.
func (p Pager[T]) Exhausted() bool {
	return p.pos >= len(p.items)
}

// Len returns the number of items.
func (p Pager[T]) Len() int {
	return len(p.items)
}

// Position returns the zero-based cursor index; it equals Len once exhausted.
func (p Pager[T]) Position() int {
	return p.pos
}
