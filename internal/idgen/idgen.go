// Package idgen hands out monotonic record identifiers.
package idgen

// Allocator is a monotonic identifier counter owned by a single engine.
// It is seeded from the ids seen at load time so that Next always returns
// max(observed)+1 or more.
type Allocator struct {
	next int
}

// New returns an allocator whose first id is 1.
func New() *Allocator {
	return &Allocator{next: 1}
}

// Next returns a fresh id and advances the counter.
func (a *Allocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Observe records an id that is already in use.
func (a *Allocator) Observe(id int) {
	if id >= a.next {
		a.next = id + 1
	}
}

// Peek returns the id the next call to Next will produce.
func (a *Allocator) Peek() int {
	return a.next
}

// Reset puts the counter back to 1. Engines call it before a restore.
func (a *Allocator) Reset() {
	a.next = 1
}
