// Package stream provides the observable value every leaderboard source is
// built on: one writer publishes snapshots, any number of readers either poll
// the latest one or subscribe to the ordered sequence of changes.
package stream

import "sync"

// Value holds the latest published T and fans each publish out to its
// subscribers. Publishing never blocks on a slow subscriber.
type Value[T any] struct {
	mu      sync.RWMutex
	current T
	equal   func(a, b T) bool
	nextID  uint64
	subs    map[uint64]*Subscription[T]
	version uint64
}

// NewValue creates a Value that emits on every Set.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[uint64]*Subscription[T]),
	}
}

// NewDistinctValue creates a Value that ignores a Set equal to the current
// value.
func NewDistinctValue[T comparable](initial T) *Value[T] {
	v := NewValue(initial)
	v.equal = func(a, b T) bool { return a == b }
	return v
}

// Get returns the latest published value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Version counts the publishes so far. It starts at zero.
func (v *Value[T]) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Set publishes next. When Set returns, Get observes next and every
// subscriber has it queued behind all earlier publishes.
func (v *Value[T]) Set(next T) {
	v.Update(func(T) T { return next })
}

// Update publishes fn(current) atomically with respect to other writers and
// returns the published value.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := fn(v.current)
	if v.equal != nil && v.equal(v.current, next) {
		return v.current
	}
	v.current = next
	v.version++
	for _, sub := range v.subs {
		sub.push(next)
	}
	return next
}

// Subscribe returns a subscription whose first element is the current value,
// followed by every later publish in order.
func (v *Value[T]) Subscribe() *Subscription[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	sub := newSubscription(v, v.nextID)
	v.subs[sub.id] = sub
	sub.push(v.current)
	return sub
}

// Subscribers reports how many subscriptions are open.
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

func (v *Value[T]) detach(id uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.subs, id)
}
