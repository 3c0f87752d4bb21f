package pathfind

import (
	"math"

	"github.com/pthm-cable/quadstar/components"
)

// Neighbor is a traversable region reachable from the expanded region.
type Neighbor struct {
	Region components.Region
	Cost   float64
}

type neighborKey struct {
	x, y int
	cost float64
}

// neighborResolver turns a region into the neighbors the search may step to.
// Probe and dedup buffers are reused between calls.
type neighborResolver struct {
	obstacles *ObstacleMap
	probes    []components.Point
	seen      map[neighborKey]struct{}
}

func newNeighborResolver(m *ObstacleMap) *neighborResolver {
	return &neighborResolver{
		obstacles: m,
		probes:    make([]components.Point, 0, 16),
		seen:      make(map[neighborKey]struct{}, 16),
	}
}

// Neighbors returns the deduplicated neighbors of r. The result is freshly
// allocated and owned by the caller.
func (nr *neighborResolver) Neighbors(r components.Region, goal components.Point) []Neighbor {
	m := nr.obstacles

	// Cells touching each side: above and below every column, left and right of every row.
	nr.probes = nr.probes[:0]
	for x := r.X; x < r.X+r.Width; x++ {
		nr.probes = append(nr.probes,
			components.Point{X: x, Y: r.Y - 1},
			components.Point{X: x, Y: r.Y + r.Height},
		)
	}
	for y := r.Y; y < r.Y+r.Height; y++ {
		nr.probes = append(nr.probes,
			components.Point{X: r.X - 1, Y: y},
			components.Point{X: r.X + r.Width, Y: y},
		)
	}

	clear(nr.seen)
	result := make([]Neighbor, 0, len(nr.probes))
	emit := func(n Neighbor) {
		k := neighborKey{x: n.Region.X, y: n.Region.Y, cost: n.Cost}
		if _, dup := nr.seen[k]; dup {
			return
		}
		nr.seen[k] = struct{}{}
		result = append(result, n)
	}

	for _, p := range nr.probes {
		// IsBlocked also rejects probes off the grid.
		if m.IsBlocked(p.X, p.Y) {
			continue
		}
		emit(nr.classify(p))
	}

	// A merged region that swallows the goal would otherwise only lead
	// outward; step into the goal cell directly.
	if !r.IsUnit() && r.ContainsPoint(goal) {
		dist := math.Hypot(float64(goal.X-r.X), float64(goal.Y-r.Y))
		emit(Neighbor{Region: goal.Unit(), Cost: math.Max(1, dist)})
	}

	return result
}

// classify resolves a free probe cell to either itself or the empty index
// node that contains it.
func (nr *neighborResolver) classify(p components.Point) Neighbor {
	cell := p.Unit()
	node := nr.obstacles.index.ObjectNode(cell)

	if node.Level >= nr.obstacles.finestLevel || len(node.Objects) > 0 {
		return Neighbor{Region: cell, Cost: 1}
	}
	return Neighbor{Region: node.Bounds, Cost: node.Bounds.Diagonal()}
}
