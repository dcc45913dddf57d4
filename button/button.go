/*
Package button turns raw edge notifications from physical buttons into a
dependable stream of press events.

Hardware buttons bounce: one press can raise several edges in quick
succession. The Debouncer collapses edges arriving within the configured
interval into a single event and pushes it onto a bounded Queue without ever
blocking, so it is safe to call from an interrupt-style context. The consumer
side receives with a timeout.
*/
package button

import (
	"sync"
	"time"
)

// ID identifies a logical button.
type ID uint8

const (
	Previous ID = iota
	Next
	ToggleAuto
)

func (id ID) String() string {
	switch id {
	case Previous:
		return "previous"
	case Next:
		return "next"
	case ToggleAuto:
		return "toggle-auto"
	}
	return "unknown"
}

// Event is a single debounced button transition.
type Event struct {
	ID      ID
	Pressed bool
}

// Queue is a bounded producer/consumer queue of events. The producer side
// never blocks; when the queue is full new events are dropped.
type Queue struct {
	ch chan Event
}

func NewQueue(size int) *Queue {
	return &Queue{
		ch: make(chan Event, size),
	}
}

// Offer enqueues an event without blocking and reports whether it was
// accepted.
func (q *Queue) Offer(e Event) bool {
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

// Receive waits up to timeout for the next event.
func (q *Queue) Receive(timeout time.Duration) (Event, bool) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case e := <-q.ch:
		return e, true
	case <-t.C:
		return Event{}, false
	}
}

// Debouncer filters raw button edges onto a Queue.
type Debouncer struct {
	queue    *Queue
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[ID]time.Time
}

func NewDebouncer(queue *Queue, interval time.Duration) *Debouncer {
	return &Debouncer{
		queue:    queue,
		interval: interval,
		now:      time.Now,
		last:     make(map[ID]time.Time),
	}
}

// Edge records one raw falling edge for a button. The first edge of a press
// produces an event; further edges within the debounce interval are folded
// into it. Edge never blocks.
func (d *Debouncer) Edge(id ID) {
	now := d.now()

	d.mu.Lock()
	if last, ok := d.last[id]; ok && now.Sub(last) < d.interval {
		d.mu.Unlock()
		return
	}
	d.last[id] = now
	d.mu.Unlock()

	d.queue.Offer(Event{ID: id, Pressed: true})
}
