package sim

import (
	"container/heap"
	"sync"
)

// EventQueue are a queue of event ordered by the time of events. Events that
// happen at the same time are ordered with primary events first and then by
// the order they are pushed.
type EventQueue interface {
	Push(evt Event) EventHandle
	Pop() Event
	Len() int
	Peek() Event
	Remove(h EventHandle) bool
}

type queueEntry struct {
	queue *EventQueueImpl
	evt   Event
	seq   uint64
	index int
}

// EventQueueImpl provides a thread safe event queue
type EventQueueImpl struct {
	sync.Mutex
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates and returns a newly created EventQueue
func NewEventQueue() *EventQueueImpl {
	q := new(EventQueueImpl)
	q.events = make([]*queueEntry, 0)
	heap.Init(&q.events)

	return q
}

// Push adds an event to the event queue
func (q *EventQueueImpl) Push(evt Event) EventHandle {
	q.Lock()
	entry := &queueEntry{queue: q, evt: evt, seq: q.nextSeq}
	q.nextSeq++
	heap.Push(&q.events, entry)
	q.Unlock()

	return EventHandle{entry: entry}
}

// Pop returns the next earliest event
func (q *EventQueueImpl) Pop() Event {
	q.Lock()
	defer q.Unlock()

	if q.events.Len() == 0 {
		return nil
	}

	entry := heap.Pop(&q.events).(*queueEntry)

	return entry.evt
}

// Len returns the number of event in the queue
func (q *EventQueueImpl) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()

	return l
}

// Peek returns the event in front of the queue without removing it from the
// queue
func (q *EventQueueImpl) Peek() Event {
	q.Lock()
	defer q.Unlock()

	if q.events.Len() == 0 {
		return nil
	}

	return q.events[0].evt
}

// Remove takes the event referred by the handle out of the queue. It returns
// false if the event is not in this queue anymore.
func (q *EventQueueImpl) Remove(h EventHandle) bool {
	q.Lock()
	defer q.Unlock()

	entry := h.entry
	if entry == nil || entry.queue != q {
		return false
	}

	if entry.index < 0 || entry.index >= len(q.events) ||
		q.events[entry.index] != entry {
		return false
	}

	heap.Remove(&q.events, entry.index)

	return true
}

type eventHeap []*queueEntry

// Len returns the length of the event queue
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two events. Less returns true if the i-th
// event happens before the j-th event.
func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].evt.Time(), h[j].evt.Time()
	if ti != tj {
		return ti < tj
	}

	si, sj := h[i].evt.IsSecondary(), h[j].evt.IsSecondary()
	if si != sj {
		return !si
	}

	return h[i].seq < h[j].seq
}

// Swap changes the position of two events in the event queue
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

// Push adds an event into the event queue
func (h *eventHeap) Push(x interface{}) {
	entry := x.(*queueEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

// Pop removes and returns the next event to happen
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[0 : n-1]

	return entry
}
