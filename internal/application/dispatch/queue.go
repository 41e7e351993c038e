package dispatch

import "container/heap"

// queueItem is one scheduled wakeup. Priority is an ISO-8601 UTC millisecond
// timestamp; on a fixed zone and width, string comparison preserves time
// order. Sequence breaks ties in push order.
type queueItem struct {
	priority string
	sequence uint64
	ship     string
}

type itemHeap []queueItem

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].sequence < h[j].sequence
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x interface{}) {
	*h = append(*h, x.(queueItem))
}

func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// EventQueue orders ship wakeups by readiness timestamp. Each ship appears
// at most once; the scheduler pops before acting and re-pushes after.
type EventQueue struct {
	items    itemHeap
	enqueued map[string]bool
	sequence uint64
}

// NewEventQueue creates an empty queue
func NewEventQueue() *EventQueue {
	return &EventQueue{enqueued: make(map[string]bool)}
}

// Push enqueues a ship at the given priority. Ships already in the queue
// are ignored.
func (q *EventQueue) Push(shipSymbol, priority string) bool {
	if q.enqueued[shipSymbol] {
		return false
	}
	q.enqueued[shipSymbol] = true
	q.sequence++
	heap.Push(&q.items, queueItem{
		priority: priority,
		sequence: q.sequence,
		ship:     shipSymbol,
	})
	return true
}

// PeekNextPriority returns the smallest priority without removing it.
// The second return is false on an empty queue.
func (q *EventQueue) PeekNextPriority() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	return q.items[0].priority, true
}

// ExtractMin removes and returns the ship with the smallest priority.
// The second return is false on an empty queue.
func (q *EventQueue) ExtractMin() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	item := heap.Pop(&q.items).(queueItem)
	delete(q.enqueued, item.ship)
	return item.ship, true
}

// Size returns the number of queued ships
func (q *EventQueue) Size() int {
	return len(q.items)
}
