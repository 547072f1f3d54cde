/*
Package pqueue implements a priority queue supporting insert and
extract-minimum, in the manner of the HarfBuzz repacker's hb-priority-queue.

The queue is an array-backed binary min-heap: the priority of a node is less
than or equal to the priorities of its children, and the children of the node
at index i live at indices 2i+1 and 2i+2.
*/
package pqueue

// Queue is a binary min-heap of (priority, payload) pairs.
// The zero value is not usable; create queues with New.
type Queue[P, V any] struct {
	less func(a, b P) bool
	heap []entry[P, V]
}

type entry[P, V any] struct {
	prio    P
	payload V
}

// New creates an empty queue ordered by the given priority comparison.
func New[P, V any](less func(a, b P) bool) *Queue[P, V] {
	return &Queue[P, V]{less: less}
}

// WithCapacity creates an empty queue with pre-allocated backing storage.
func WithCapacity[P, V any](less func(a, b P) bool, capacity int) *Queue[P, V] {
	return &Queue[P, V]{
		less: less,
		heap: make([]entry[P, V], 0, capacity),
	}
}

// Push inserts a payload with the given priority.
func (q *Queue[P, V]) Push(prio P, payload V) {
	q.heap = append(q.heap, entry[P, V]{prio: prio, payload: payload})
	q.bubbleUp(len(q.heap) - 1)
}

// Pop removes and returns the minimum-priority entry.
// The boolean is false if the queue is empty.
func (q *Queue[P, V]) Pop() (P, V, bool) {
	if len(q.heap) == 0 {
		var p P
		var v V
		return p, v, false
	}
	ret := q.heap[0]
	last := len(q.heap) - 1
	q.heap[0] = q.heap[last]
	q.heap = q.heap[:last]
	if last != 0 {
		q.bubbleDown(0)
	}
	return ret.prio, ret.payload, true
}

// IsEmpty reports whether the queue holds no entries.
func (q *Queue[P, V]) IsEmpty() bool {
	return len(q.heap) == 0
}

// Len returns the number of entries currently in the queue.
func (q *Queue[P, V]) Len() int {
	return len(q.heap)
}

func (q *Queue[P, V]) bubbleUp(index int) {
	for index != 0 {
		parent := (index - 1) / 2
		if !q.less(q.heap[index].prio, q.heap[parent].prio) {
			return
		}
		q.heap[index], q.heap[parent] = q.heap[parent], q.heap[index]
		index = parent
	}
}

func (q *Queue[P, V]) bubbleDown(index int) {
	length := len(q.heap)
	for {
		left := 2*index + 1
		if left >= length {
			return
		}
		right := left + 1
		child := left
		if right < length && q.less(q.heap[right].prio, q.heap[left].prio) {
			child = right
		}
		if !q.less(q.heap[child].prio, q.heap[index].prio) {
			return
		}
		q.heap[index], q.heap[child] = q.heap[child], q.heap[index]
		index = child
	}
}
