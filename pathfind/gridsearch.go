package pathfind

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/pthm-cable/quadstar/components"
)

// GridResult is the outcome of a uniform-grid search.
type GridResult struct {
	Path     []components.Point
	Cost     float64
	Expanded int
	Found    bool
}

// gridNode is a node in the uniform-grid search.
type gridNode struct {
	x, y  int
	f     float64 // f = g + h (priority)
	h     float64
	index int // Heap index
}

// gridHeap implements heap.Interface for the grid open set.
type gridHeap []*gridNode

func (h gridHeap) Len() int { return len(h) }
func (h gridHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].h < h[j].h
}
func (h gridHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *gridHeap) Push(x any) {
	n := x.(*gridNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *gridHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// GridSearch runs plain cell-by-cell A* on the planner's map. It is the
// reference the quadtree search is measured against.
//
// Moves are 4-connected with unit cost; with diagonal set, diagonal moves
// cost sqrt(2) and may not cut corners. The heuristic is Manhattan, or
// octile distance when diagonal moves are allowed.
func (p *Planner) GridSearch(start, goal components.Point, diagonal bool) (GridResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := p.obstacles
	if !m.InBounds(start.X, start.Y) {
		return GridResult{}, fmt.Errorf("start %v: %w", start, ErrOutOfBounds)
	}
	if !m.InBounds(goal.X, goal.Y) {
		return GridResult{}, fmt.Errorf("goal %v: %w", goal, ErrOutOfBounds)
	}
	return gridSearch(m, start, goal, diagonal), nil
}

func gridSearch(m *ObstacleMap, start, goal components.Point, diagonal bool) GridResult {
	if m.IsBlocked(start.X, start.Y) || m.IsBlocked(goal.X, goal.Y) {
		return GridResult{}
	}
	if start == goal {
		return GridResult{Path: []components.Point{start}, Found: true}
	}

	h := func(x, y int) float64 {
		if diagonal {
			return octile(goal.X, goal.Y, x, y)
		}
		return Manhattan(goal.X, goal.Y, x, y)
	}

	w := m.Width()
	startID := start.Y*w + start.X
	goalID := goal.Y*w + goal.X

	gScore := map[int]float64{startID: 0}
	cameFrom := make(map[int]int, 256)
	closed := make(map[int]struct{}, 256)
	open := make(map[int]*gridNode, 256)

	openHeap := &gridHeap{}
	startNode := &gridNode{x: start.X, y: start.Y, h: h(start.X, start.Y)}
	startNode.f = startNode.h
	heap.Push(openHeap, startNode)
	open[startID] = startNode

	neighbors := [8][2]int{
		{-1, 0}, {1, 0}, {0, -1}, {0, 1}, // W E N S
		{-1, -1}, {1, -1}, {-1, 1}, {1, 1}, // NW NE SW SE
	}
	moves := 4
	if diagonal {
		moves = 8
	}

	maxIterations := m.Width() * m.Height()
	expanded := 0

	for openHeap.Len() > 0 && expanded < maxIterations {
		current := heap.Pop(openHeap).(*gridNode)
		currentID := current.y*w + current.x
		delete(open, currentID)

		if currentID == goalID {
			return GridResult{
				Path:     gridPath(cameFrom, w, startID, goalID),
				Cost:     gScore[goalID],
				Expanded: expanded,
				Found:    true,
			}
		}

		closed[currentID] = struct{}{}
		expanded++

		for i, d := range neighbors[:moves] {
			nx, ny := current.x+d[0], current.y+d[1]
			if m.IsBlocked(nx, ny) {
				continue
			}
			// Diagonal moves need both adjacent cells open.
			if i >= 4 && (m.IsBlocked(current.x+d[0], current.y) || m.IsBlocked(current.x, current.y+d[1])) {
				continue
			}

			neighborID := ny*w + nx
			if _, ok := closed[neighborID]; ok {
				continue
			}

			moveCost := 1.0
			if i >= 4 {
				moveCost = math.Sqrt2
			}
			tentativeG := gScore[currentID] + moveCost
			if existingG, ok := gScore[neighborID]; ok && tentativeG >= existingG {
				continue
			}

			cameFrom[neighborID] = currentID
			gScore[neighborID] = tentativeG

			if n, ok := open[neighborID]; ok {
				n.f = tentativeG + n.h
				heap.Fix(openHeap, n.index)
				continue
			}
			n := &gridNode{x: nx, y: ny, h: h(nx, ny)}
			n.f = tentativeG + n.h
			heap.Push(openHeap, n)
			open[neighborID] = n
		}
	}

	return GridResult{Expanded: expanded}
}

// gridPath builds the start-to-goal path from the cameFrom map.
func gridPath(cameFrom map[int]int, width, startID, goalID int) []components.Point {
	var ids []int
	for id := goalID; id != startID; id = cameFrom[id] {
		ids = append(ids, id)
	}
	ids = append(ids, startID)

	path := make([]components.Point, len(ids))
	for i := range ids {
		id := ids[len(ids)-1-i]
		path[i] = components.Point{X: id % width, Y: id / width}
	}
	return path
}

func octile(goalX, goalY, x, y int) float64 {
	dx, dy := abs(goalX-x), abs(goalY-y)
	return float64(max(dx, dy)) + (math.Sqrt2-1)*float64(min(dx, dy))
}
