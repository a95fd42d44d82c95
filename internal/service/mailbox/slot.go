// Package mailbox holds the latest produced value for any number of readers.
//
// A Slot keeps exactly one value. Publish replaces it, Read hands out a copy.
// There is no queue: a reader that falls behind simply sees the newest value
// next time it reads.
package mailbox

import (
	"context"
	"sync"
)

// Slot is a single-value, latest-wins mailbox.
//
// The lock is held only while copying a value in or out, so a slow reader
// never blocks the producer for longer than one clone.
type Slot[T any] struct {
	mu      sync.Mutex
	value   T
	has     bool
	ready   chan struct{}
	once    sync.Once
	seq     uint64
	clone   func(T) T
	release func(T)
}

// New creates an empty Slot. clone is used by Read to hand out independent
// copies; release is called on a value once it has been replaced or the slot
// is closed. Either may be nil for plain value types.
func New[T any](clone func(T) T, release func(T)) *Slot[T] {
	return &Slot[T]{
		ready:   make(chan struct{}),
		clone:   clone,
		release: release,
	}
}

// Publish stores v as the current value. The slot takes ownership of v: it is
// not copied, so the caller must hand over a value it no longer writes to
// (the frame producer publishes a clone of its capture buffer).
func (s *Slot[T]) Publish(v T) {
	s.mu.Lock()
	old, hadOld := s.value, s.has
	s.value = v
	s.has = true
	s.seq++
	s.mu.Unlock()

	if hadOld && s.release != nil {
		s.release(old)
	}
	s.once.Do(func() { close(s.ready) })
}

// Read returns a copy of the current value, or ok=false when nothing has been
// published yet.
func (s *Slot[T]) Read() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has {
		return v, false
	}
	if s.clone != nil {
		return s.clone(s.value), true
	}
	return s.value, true
}

// Seq returns how many values have been published so far.
func (s *Slot[T]) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Ready is closed once the first value is published.
func (s *Slot[T]) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until a value has been published or ctx is done.
func (s *Slot[T]) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the held value. The slot reads as empty afterwards.
func (s *Slot[T]) Close() {
	s.mu.Lock()
	old, hadOld := s.value, s.has
	var zero T
	s.value = zero
	s.has = false
	s.mu.Unlock()

	if hadOld && s.release != nil {
		s.release(old)
	}
}
