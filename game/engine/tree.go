package engine

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
)

// searchTree records, for every state reached so far, its best known cost
// and every predecessor that reaches it at exactly that cost.
type searchTree struct {
	best  map[State]int
	preds map[State]*mapset.Set[State]
}

func newSearchTree(root State) *searchTree {
	return &searchTree{
		best:  map[State]int{root: 0},
		preds: make(map[State]*mapset.Set[State]),
	}
}

// cost returns the best known cost of s
func (t *searchTree) cost(s State) (int, bool) {
	c, ok := t.best[s]
	return c, ok
}

// relax offers a path to `to` through `from` at the given total cost. A
// strictly cheaper path replaces every recorded predecessor, an equally
// cheap one is added beside them, a dearer one is dropped. It reports
// whether `to` improved and must be queued.
func (t *searchTree) relax(from, to State, cost int) bool {
	known, seen := t.best[to]
	switch {
	case !seen || cost < known:
		t.best[to] = cost
		set := mapset.New[State]()
		set.Put(from)
		t.preds[to] = &set
		return true
	case cost == known:
		if set, ok := t.preds[to]; ok {
			set.Put(from)
		}
	}
	return false
}

// predecessors returns the tying predecessors of s in no particular order
func (t *searchTree) predecessors(s State) []State {
	set, ok := t.preds[s]
	if !ok {
		return nil
	}
	out := make([]State, 0, set.Size())
	set.Each(func(p State) {
		out = append(out, p)
	})
	return out
}

// cells walks the predecessor graph backwards from every end state and
// returns the positions of all states visited, sorted row-major. Each state
// is expanded once however many optimal paths share it.
func (t *searchTree) cells(ends []State) []maze.Position {
	visited := mapset.New[State]()
	positions := mapset.New[maze.Position]()

	stack := make([]State, 0, len(ends))
	for _, s := range ends {
		if !visited.Has(s) {
			visited.Put(s)
			stack = append(stack, s)
		}
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		positions.Put(s.Pos)

		if set, ok := t.preds[s]; ok {
			set.Each(func(p State) {
				if !visited.Has(p) {
					visited.Put(p)
					stack = append(stack, p)
				}
			})
		}
	}

	out := make([]maze.Position, 0, positions.Size())
	positions.Each(func(p maze.Position) {
		out = append(out, p)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
