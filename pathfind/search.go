package pathfind

import (
	"container/heap"

	"github.com/pthm-cable/quadstar/components"
)

// searchNode is an arena entry. Nodes refer to their parent by arena index,
// so the whole search state is released with the arena.
type searchNode struct {
	region    components.Region
	g         float64 // cost from start
	h         float64 // heuristic to goal
	parent    int     // arena index, -1 for the start
	heapIndex int     // position in the open heap, -1 once popped
	seq       int     // insertion order, final tie-break
	closed    bool
}

func (n *searchNode) f() float64 { return n.g + n.h }

// nodeHeap implements heap.Interface over arena indices.
// Ties on f prefer the node closer to the goal (lower h), then the older one.
type nodeHeap struct {
	order []int
	arena *[]searchNode
}

func (h nodeHeap) Len() int { return len(h.order) }

func (h nodeHeap) Less(i, j int) bool {
	a, b := &(*h.arena)[h.order[i]], &(*h.arena)[h.order[j]]
	if fa, fb := a.f(), b.f(); fa != fb {
		return fa < fb
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (h nodeHeap) Swap(i, j int) {
	h.order[i], h.order[j] = h.order[j], h.order[i]
	(*h.arena)[h.order[i]].heapIndex = i
	(*h.arena)[h.order[j]].heapIndex = j
}

func (h *nodeHeap) Push(x any) {
	id := x.(int)
	(*h.arena)[id].heapIndex = len(h.order)
	h.order = append(h.order, id)
}

func (h *nodeHeap) Pop() any {
	old := h.order
	n := len(old)
	id := old[n-1]
	h.order = old[:n-1]
	(*h.arena)[id].heapIndex = -1
	return id
}

// search is the state of one modified A* run.
type search struct {
	goal      components.Region
	heuristic Heuristic
	neighbors *neighborResolver
	limit     int

	nodes    []searchNode
	open     nodeHeap
	byRegion map[components.Region]int

	expanded int
	current  int
	done     bool
	found    bool
	goalID   int
}

func newSearch(nr *neighborResolver, start, goal components.Point, h Heuristic, limit int) *search {
	s := &search{
		goal:      goal.Unit(),
		heuristic: h,
		neighbors: nr,
		limit:     limit,
		nodes:     make([]searchNode, 0, 64),
		byRegion:  make(map[components.Region]int, 64),
		current:   -1,
		goalID:    -1,
	}
	s.open.arena = &s.nodes
	s.push(start.Unit(), 0, -1)
	return s
}

// push adds a newly discovered region to the arena and the open set.
func (s *search) push(r components.Region, g float64, parent int) {
	id := len(s.nodes)
	s.nodes = append(s.nodes, searchNode{
		region:    r,
		g:         g,
		h:         s.heuristic(s.goal.X, s.goal.Y, r.X, r.Y),
		parent:    parent,
		heapIndex: -1,
		seq:       id,
	})
	s.byRegion[r] = id
	heap.Push(&s.open, id)
}

// step pops and expands one node. It reports false once the search is over.
func (s *search) step() bool {
	if s.done {
		return false
	}
	if s.open.Len() == 0 {
		s.done = true
		return false
	}

	cur := heap.Pop(&s.open).(int)
	s.current = cur
	if s.nodes[cur].region == s.goal {
		s.done, s.found, s.goalID = true, true, cur
		return false
	}

	s.nodes[cur].closed = true
	s.expanded++
	curG := s.nodes[cur].g

	for _, nb := range s.neighbors.Neighbors(s.nodes[cur].region, s.goal.Origin()) {
		g := curG + nb.Cost

		id, seen := s.byRegion[nb.Region]
		if !seen {
			s.push(nb.Region, g, cur)
			continue
		}

		n := &s.nodes[id]
		if n.closed || g >= n.g {
			continue
		}
		// Decrease-key on an open node.
		n.g = g
		n.parent = cur
		heap.Fix(&s.open, n.heapIndex)
	}
	return true
}

// limitReached reports whether the expansion cap stopped the search.
func (s *search) limitReached() bool {
	return s.limit > 0 && s.expanded >= s.limit
}

// run drives the search to completion or to the expansion cap.
func (s *search) run() {
	for !s.limitReached() && s.step() {
	}
}

// path follows parent links from the goal and returns start-to-goal order.
func (s *search) path() []components.Region {
	if !s.found {
		return nil
	}
	var path []components.Region
	for id := s.goalID; id >= 0; id = s.nodes[id].parent {
		path = append(path, s.nodes[id].region)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (s *search) cost() float64 {
	if !s.found {
		return 0
	}
	return s.nodes[s.goalID].g
}

// openRegions lists the regions still on the frontier.
func (s *search) openRegions() map[components.Region]bool {
	m := make(map[components.Region]bool, s.open.Len())
	for _, id := range s.open.order {
		m[s.nodes[id].region] = true
	}
	return m
}

// closedRegions lists the expanded regions.
func (s *search) closedRegions() map[components.Region]bool {
	m := make(map[components.Region]bool, s.expanded)
	for i := range s.nodes {
		if s.nodes[i].closed {
			m[s.nodes[i].region] = true
		}
	}
	return m
}
