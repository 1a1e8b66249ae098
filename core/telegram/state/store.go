// Package state keeps per-user conversation values for Telegram bots.
// It is domain-agnostic: the stored type is a parameter and the FSM lives with the caller.
package state

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	csmap "github.com/mhmtszr/concurrent-swiss-map"
)

// Slot holds one user's value. The slot mutex serializes transitions for that
// user only; different users never contend on it.
type Slot[T any] struct {
	mu     sync.Mutex
	value  *T
	active atomic.Bool

	callMu  sync.Mutex
	cancel  context.CancelFunc
	gen     atomic.Uint64
	held    uint64
	waiters atomic.Int32
}

// Value returns the stored value or nil. The caller must hold the slot.
func (s *Slot[T]) Value() *T {
	return s.value
}

// Set replaces the stored value. The caller must hold the slot.
func (s *Slot[T]) Set(v *T) {
	s.value = v
	s.active.Store(v != nil)
}

// Clear drops the stored value. The caller must hold the slot.
func (s *Slot[T]) Clear() {
	s.Set(nil)
}

// Unlock releases a slot obtained from Store.Acquire.
func (s *Slot[T]) Unlock() {
	s.mu.Unlock()
}

// Stale reports whether the slot was interrupted after the current holder
// asked for it. The caller must hold the slot.
func (s *Slot[T]) Stale() bool {
	return s.gen.Load() != s.held
}

// Call derives the context for one outbound call made on behalf of this slot,
// bounded by timeout when it is positive. finish must be called once the call
// returns; it reports true when the slot was interrupted since the holder
// asked for it and the call's result has to be thrown away. A call started on
// a stale slot gets an already cancelled context.
func (s *Slot[T]) Call(parent context.Context, timeout time.Duration) (context.Context, func() bool) {
	gen := s.held

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	s.callMu.Lock()
	s.cancel = cancel
	s.callMu.Unlock()
	if s.gen.Load() != gen {
		cancel()
	}

	return ctx, func() bool {
		s.callMu.Lock()
		s.cancel = nil
		s.callMu.Unlock()
		cancel()
		return s.gen.Load() != gen
	}
}

func (s *Slot[T]) interrupt() {
	s.gen.Add(1)
	s.callMu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.callMu.Unlock()
}

// Store maps Telegram user ids to slots.
type Store[T any] struct {
	slots    *csmap.CsMap[int64, *Slot[T]]
	createMu sync.Mutex
}

// NewStore returns an empty in-memory store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{slots: csmap.Create[int64, *Slot[T]]()}
}

// Acquire locks and returns the user's slot. Without create, a user that never
// had a slot yields ok == false and nothing is allocated. An Interrupt that
// lands while the caller waits for the lock makes the slot Stale for it.
func (st *Store[T]) Acquire(userID int64, create bool) (*Slot[T], bool) {
	slot, ok := st.slots.Load(userID)
	if !ok {
		if !create {
			return nil, false
		}
		st.createMu.Lock()
		if slot, ok = st.slots.Load(userID); !ok {
			slot = &Slot[T]{}
			st.slots.Store(userID, slot)
		}
		st.createMu.Unlock()
	}
	gen := slot.gen.Load()
	slot.waiters.Add(1)
	slot.mu.Lock()
	slot.waiters.Add(-1)
	slot.held = gen
	return slot, true
}

// Waiting returns how many callers are blocked in Acquire for userID.
func (st *Store[T]) Waiting(userID int64) int {
	slot, ok := st.slots.Load(userID)
	if !ok {
		return 0
	}
	return int(slot.waiters.Load())
}

// Interrupt cancels the user's in-flight call, if any, without waiting for the
// slot. Results of that call are reported stale by its finish func.
func (st *Store[T]) Interrupt(userID int64) bool {
	slot, ok := st.slots.Load(userID)
	if !ok {
		return false
	}
	slot.interrupt()
	return true
}

// Active reports whether the user currently has a stored value. It does not block
// on a transition in progress.
func (st *Store[T]) Active(userID int64) bool {
	slot, ok := st.slots.Load(userID)
	return ok && slot.active.Load()
}

// Users returns how many users have a slot allocated.
func (st *Store[T]) Users() int {
	return st.slots.Count()
}
