package pathfind

import (
	"fmt"
	"math"
	"sort"
)

// Heuristic estimates the remaining cost from a node origin (x,y) to the goal.
type Heuristic func(goalX, goalY, x, y int) float64

// Manhattan is the default heuristic: |goalX-x| + |goalY-y|.
func Manhattan(goalX, goalY, x, y int) float64 {
	return float64(abs(goalX-x) + abs(goalY-y))
}

// Euclidean is the straight-line distance.
func Euclidean(goalX, goalY, x, y int) float64 {
	return math.Hypot(float64(goalX-x), float64(goalY-y))
}

// Chebyshev is the larger of the axis distances.
func Chebyshev(goalX, goalY, x, y int) float64 {
	return float64(max(abs(goalX-x), abs(goalY-y)))
}

// Zero turns the search into uniform-cost search.
func Zero(goalX, goalY, x, y int) float64 {
	return 0
}

// Weighted scales h by w. Weights above 1 trade path quality for fewer expansions.
func Weighted(h Heuristic, w float64) Heuristic {
	return func(goalX, goalY, x, y int) float64 {
		return w * h(goalX, goalY, x, y)
	}
}

var heuristics = map[string]Heuristic{
	"manhattan": Manhattan,
	"euclidean": Euclidean,
	"chebyshev": Chebyshev,
	"zero":      Zero,
}

// HeuristicByName resolves a heuristic from its configuration name.
// The empty name selects Manhattan.
func HeuristicByName(name string) (Heuristic, error) {
	if name == "" {
		return Manhattan, nil
	}
	h, ok := heuristics[name]
	if !ok {
		return nil, fmt.Errorf("unknown heuristic %q (want one of %v)", name, HeuristicNames())
	}
	return h, nil
}

// HeuristicNames lists the registered heuristic names in sorted order.
func HeuristicNames() []string {
	names := make([]string, 0, len(heuristics))
	for name := range heuristics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
