package engine

import "github.com/zyedidia/generic/heap"

// entry is a queued state with the cost it was reached at
type entry struct {
	cost  int
	state State
}

// tieBreaker orders two states queued at the same cost
type tieBreaker func(a, b State) bool

// frontier is a min-heap of entries ordered by cost. Equal costs pop in
// unspecified order unless a tie breaker is supplied.
type frontier struct {
	h *heap.Heap[entry]
}

func newFrontier(start State, tie tieBreaker) *frontier {
	less := func(a, b entry) bool {
		if a.cost != b.cost || tie == nil {
			return a.cost < b.cost
		}
		return tie(a.state, b.state)
	}
	f := &frontier{h: heap.New[entry](less)}
	f.push(0, start)
	return f
}

func (f *frontier) push(cost int, s State) {
	f.h.Push(entry{cost: cost, state: s})
}

func (f *frontier) pop() (entry, bool) {
	return f.h.Pop()
}

func (f *frontier) len() int {
	return f.h.Size()
}
