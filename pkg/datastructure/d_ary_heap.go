package datastructure

import (
	"errors"

	"golang.org/x/exp/constraints"
)

type PriorityQueueNode[R constraints.Ordered, T any] struct {
	rank    R
	item    T
	itemPos int
}

func NewPriorityQueueNode[R constraints.Ordered, T any](rank R, item T) *PriorityQueueNode[R, T] {
	return &PriorityQueueNode[R, T]{rank: rank, item: item}
}

func (p *PriorityQueueNode[R, T]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[R, T]) GetRank() R {
	return p.rank
}

func (p *PriorityQueueNode[R, T]) SetRank(rank R) {
	p.rank = rank
}

func (p *PriorityQueueNode[R, T]) setPos(i int) {
	p.itemPos = i
}

// MinHeap is a d-ary heap priority queue keyed by an ordered rank type.
type MinHeap[R constraints.Ordered, T any] struct {
	heap []*PriorityQueueNode[R, T]
	d    int
}

func NewBinaryHeap[R constraints.Ordered, T any]() *MinHeap[R, T] {
	return NewdAryHeap[R, T](2)
}

func NewFourAryHeap[R constraints.Ordered, T any]() *MinHeap[R, T] {
	return NewdAryHeap[R, T](4)
}

func NewdAryHeap[R constraints.Ordered, T any](d int) *MinHeap[R, T] {
	return &MinHeap[R, T]{
		heap: make([]*PriorityQueueNode[R, T], 0),
		d:    d,
	}
}

func (h *MinHeap[R, T]) parent(index int) int {
	return (index - 1) / h.d
}

func (h *MinHeap[R, T]) heapifyUp(index int) {
	for index != 0 && h.heap[index].rank < h.heap[h.parent(index)].rank {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

func (h *MinHeap[R, T]) heapifyDown(index int) {
	leftMostChild := index*h.d + 1
	if leftMostChild >= len(h.heap) {
		return
	}

	sentinel := leftMostChild + h.d
	if sentinel > len(h.heap) {
		sentinel = len(h.heap)
	}

	smallest := leftMostChild
	for i := leftMostChild + 1; i < sentinel; i++ {
		if h.heap[i].rank < h.heap[smallest].rank {
			smallest = i
		}
	}

	if h.heap[smallest].rank < h.heap[index].rank {
		h.swap(index, smallest)
		h.heapifyDown(smallest)
	}
}

func (h *MinHeap[R, T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.heap[i].setPos(i)
	h.heap[j].setPos(j)
}

func (h *MinHeap[R, T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[R, T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[R, T]) Clear() {
	h.heap = h.heap[:0]
}

func (h *MinHeap[R, T]) GetMin() (*PriorityQueueNode[R, T], error) {
	if h.IsEmpty() {
		return nil, errors.New("heap is empty")
	}
	return h.heap[0], nil
}

func (h *MinHeap[R, T]) Insert(key *PriorityQueueNode[R, T]) {
	h.heap = append(h.heap, key)
	index := h.Size() - 1
	key.setPos(index)
	h.heapifyUp(index)
}

func (h *MinHeap[R, T]) ExtractMin() (*PriorityQueueNode[R, T], error) {
	if h.IsEmpty() {
		return nil, errors.New("heap is empty")
	}
	root := h.heap[0]

	h.swap(0, h.Size()-1)
	h.heap = h.heap[:h.Size()-1]
	root.setPos(-1)
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}

	return root, nil
}

// DecreaseKey lowers the rank of an item already on the heap. O(log n).
func (h *MinHeap[R, T]) DecreaseKey(item *PriorityQueueNode[R, T], rank R) error {
	itemPos := item.itemPos
	if itemPos < 0 || itemPos >= h.Size() || h.heap[itemPos].rank < rank {
		return errors.New("invalid index or new value")
	}

	h.heap[itemPos].SetRank(rank)
	h.heapifyUp(itemPos)
	return nil
}
