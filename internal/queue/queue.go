// Package queue implements the unbounded FIFO that sits between the acceptor
// and the worker pool.
//
// Queue is not synchronized. Callers hold the pool mutex, the same one its
// condition variable waits on.
package queue

// node is a single pending entry linked to the next one in arrival order.
type node[T any] struct {
	value T
	next  *node[T]
}

// Queue is a singly linked FIFO. The zero value is an empty queue.
type Queue[T any] struct {
	head *node[T]
	tail *node[T]
	size int
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue appends v at the tail.
func (q *Queue[T]) Enqueue(v T) {
	n := &node[T]{value: v}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.size++
}

// Dequeue removes and returns the head. ok is false when the queue is empty.
func (q *Queue[T]) Dequeue() (v T, ok bool) {
	if q.head == nil {
		return v, false
	}

	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	q.size--

	v = n.value
	n.next = nil
	return v, true
}

// Len returns the number of pending entries.
func (q *Queue[T]) Len() int {
	return q.size
}

// Drain removes every pending entry and returns them in FIFO order.
func (q *Queue[T]) Drain() []T {
	out := make([]T, 0, q.size)
	for {
		v, ok := q.Dequeue()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
