// Package kernel holds the small concurrency primitives the frame loop is
// built on.
package kernel

import (
	"runtime"
	"sync/atomic"
)

// MailboxSlots is the capacity of a Mailbox.
const MailboxSlots = 16

type mailboxSlot[T any] struct {
	full atomic.Bool
	val  T
}

// Mailbox is a fixed-size multi-producer, single-consumer queue.
// It is designed for bare-metal use: no allocations, busy-wait with Gosched().
// The zero value is an empty mailbox.
type Mailbox[T any] struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint32
	tail  atomic.Uint32
	slots [MailboxSlots]mailboxSlot[T]
}

// TrySend attempts to enqueue v, returning false if the mailbox is full.
func (mb *Mailbox[T]) TrySend(v T) bool {
	for {
		head := mb.head.Load()
		tail := mb.tail.Load()
		if head-tail >= MailboxSlots {
			return false
		}

		// Reserve a slot; retry if another producer won it.
		if !mb.head.CompareAndSwap(head, head+1) {
			continue
		}

		s := &mb.slots[head%MailboxSlots]
		s.val = v
		s.full.Store(true)
		return true
	}
}

// Send enqueues v, blocking until it succeeds.
func (mb *Mailbox[T]) Send(v T) {
	for !mb.TrySend(v) {
		runtime.Gosched()
	}
}

// TryRecv attempts to dequeue one value, returning false if empty. A slot
// that is reserved but not yet written reads as empty.
func (mb *Mailbox[T]) TryRecv() (T, bool) {
	var zero T
	tail := mb.tail.Load()
	if tail == mb.head.Load() {
		return zero, false
	}

	s := &mb.slots[tail%MailboxSlots]
	if !s.full.Load() {
		return zero, false
	}
	v := s.val
	s.val = zero
	s.full.Store(false)
	mb.tail.Store(tail + 1)
	return v, true
}

// Recv blocks until one value is available.
func (mb *Mailbox[T]) Recv() T {
	for {
		v, ok := mb.TryRecv()
		if ok {
			return v
		}
		runtime.Gosched()
	}
}

// Len reports how many values are queued or being written.
func (mb *Mailbox[T]) Len() int {
	return int(mb.head.Load() - mb.tail.Load())
}
