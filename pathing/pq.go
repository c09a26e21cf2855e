package pathing

import "container/heap"

type frontierItem struct {
	priority float64
	location Location
}

// frontierHeap orders items by priority, then by location.
type frontierHeap []frontierItem

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].location.Less(h[j].location)
}
func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *frontierHeap) Push(x any) {
	*h = append(*h, x.(frontierItem))
}

func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// PriorityQueue is a min-queue of locations. The same location may be queued
// more than once; nothing is removed except through Get.
type PriorityQueue struct {
	items frontierHeap
}

// Put queues l with the given priority.
func (q *PriorityQueue) Put(l Location, priority float64) {
	heap.Push(&q.items, frontierItem{priority: priority, location: l})
}

// Get removes and returns the lowest-priority location.
// It panics on an empty queue.
func (q *PriorityQueue) Get() Location {
	return heap.Pop(&q.items).(frontierItem).location
}

// Empty reports whether the queue has no items.
func (q *PriorityQueue) Empty() bool {
	return len(q.items) == 0
}

// Len returns the number of queued items, duplicates included.
func (q *PriorityQueue) Len() int {
	return len(q.items)
}
