package pathfind

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/pthm-cable/quadstar/components"
	"github.com/pthm-cable/quadstar/quadtree"
)

func emptyRows(size int) [][]uint8 {
	rows := make([][]uint8, size)
	for y := range rows {
		rows[y] = make([]uint8, size)
	}
	return rows
}

func pt(x, y int) components.Point {
	return components.Point{X: x, Y: y}
}

// checkPath verifies endpoints, obstacle avoidance and edge adjacency.
func checkPath(t *testing.T, m *ObstacleMap, start, goal components.Point, path []components.Region) {
	t.Helper()
	if len(path) == 0 {
		t.Fatal("expected a path, got none")
	}
	if path[0] != start.Unit() {
		t.Errorf("path starts at %v, want %v", path[0], start)
	}
	if last := path[len(path)-1]; last != goal.Unit() {
		t.Errorf("path ends at %v, want %v", last, goal)
	}
	for i, r := range path {
		if i > 0 && !linked(path[i-1], r) {
			t.Errorf("step %d %v does not touch step %d %v", i, r, i-1, path[i-1])
		}
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				if m.IsBlocked(x, y) {
					t.Errorf("step %d %v covers obstacle (%d,%d)", i, r, x, y)
				}
			}
		}
	}
}

// linked reports whether b is reachable from a in one step: the regions share
// an edge, or one contains the other (the goal inside a merged region).
func linked(a, b components.Region) bool {
	if a.Contains(b) || b.Contains(a) {
		return true
	}
	cols := min(a.X+a.Width, b.X+b.Width) - max(a.X, b.X)
	rows := min(a.Y+a.Height, b.Y+b.Height) - max(a.Y, b.Y)
	return (cols > 0 && rows == 0) || (rows > 0 && cols == 0)
}

// storedObjects counts all regions held by the index.
func storedObjects(m *ObstacleMap) int {
	n := 0
	m.Leaves(func(node quadtree.Node) { n += len(node.Objects) })
	return n
}

func TestNewValidatesRows(t *testing.T) {
	tests := []struct {
		name string
		rows [][]uint8
		want error
	}{
		{"empty", nil, ErrDimensions},
		{"ragged", [][]uint8{{0, 0}, {0}}, ErrDimensions},
		{"not square", [][]uint8{{0, 0, 0, 0}, {0, 0, 0, 0}}, ErrDimensions},
		{"ok", emptyRows(4), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewLoadsObstacles(t *testing.T) {
	rows := emptyRows(4)
	rows[1][3] = 1 // y=1, x=3
	p, err := New(rows)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsBlocked(3, 1) {
		t.Error("expected (3,1) blocked")
	}
	if p.IsBlocked(1, 3) {
		t.Error("rows are indexed [y][x]; (1,3) should be free")
	}
	if p.Map().ObstacleCount() != 1 {
		t.Errorf("obstacle count %d, want 1", p.Map().ObstacleCount())
	}
}

func TestFindPathAroundSingleObstacle(t *testing.T) {
	rows := emptyRows(8)
	rows[4][4] = 1
	p, err := New(rows)
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.FindPath(pt(0, 0), pt(7, 7), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Fatal("expected path")
	}
	checkPath(t, p.Map(), pt(0, 0), pt(7, 7), res.Path)
	for _, r := range res.Path {
		if r.ContainsPoint(pt(4, 4)) {
			t.Errorf("path step %v contains obstacle (4,4)", r)
		}
	}
}

func TestFindPathOpenMapTerminates(t *testing.T) {
	p, err := New(emptyRows(8))
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.FindPath(pt(0, 0), pt(7, 7), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Expanded > 4*8*8 {
		t.Errorf("expanded %d nodes", res.Expanded)
	}
	if !res.Found {
		t.Fatal("expected a path on an open map")
	}
	checkPath(t, p.Map(), pt(0, 0), pt(7, 7), res.Path)

	// The open quadrants are crossed as merged regions.
	merged := false
	for _, r := range res.Path {
		if !r.IsUnit() {
			merged = true
		}
	}
	if !merged {
		t.Errorf("expected a merged region in %v", res.Path)
	}
}

func TestFindPathZeroHeuristic(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 30; trial++ {
		rows := emptyRows(16)
		for i := 0; i < 60; i++ {
			rows[rng.IntN(16)][rng.IntN(16)] = 1
		}
		rows[0][0], rows[15][15] = 0, 0

		p, err := New(rows)
		if err != nil {
			t.Fatal(err)
		}
		withDefault, err := p.FindPath(pt(0, 0), pt(15, 15), nil)
		if err != nil {
			t.Fatal(err)
		}
		withZero, err := p.FindPath(pt(0, 0), pt(15, 15), Zero)
		if err != nil {
			t.Fatal(err)
		}
		if withDefault.Found && !withZero.Found {
			t.Fatalf("trial %d: zero heuristic missed a path", trial)
		}
		if withZero.Found {
			checkPath(t, p.Map(), pt(0, 0), pt(15, 15), withZero.Path)
		}
	}
}

func TestFindPathEndpoints(t *testing.T) {
	rows := emptyRows(8)
	rows[2][2] = 1
	p, _ := New(rows)

	t.Run("same cell", func(t *testing.T) {
		res, err := p.FindPath(pt(5, 5), pt(5, 5), nil)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Found || !reflect.DeepEqual(res.Path, []components.Region{unit(5, 5)}) {
			t.Errorf("got %+v", res)
		}
		if res.Cost != 0 {
			t.Errorf("cost %v, want 0", res.Cost)
		}
	})

	t.Run("out of bounds", func(t *testing.T) {
		for _, c := range []struct{ start, goal components.Point }{
			{pt(-1, 0), pt(3, 3)},
			{pt(0, 0), pt(8, 3)},
		} {
			_, err := p.FindPath(c.start, c.goal, nil)
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("%v->%v: expected ErrOutOfBounds, got %v", c.start, c.goal, err)
			}
		}
	})

	t.Run("blocked goal", func(t *testing.T) {
		res, err := p.FindPath(pt(0, 0), pt(2, 2), nil)
		if err != nil {
			t.Fatal(err)
		}
		if res.Found || len(res.Path) != 0 {
			t.Errorf("expected unreachable, got %+v", res)
		}
	})

	t.Run("blocked start", func(t *testing.T) {
		res, err := p.FindPath(pt(2, 2), pt(0, 0), nil)
		if err != nil {
			t.Fatal(err)
		}
		if res.Found {
			t.Errorf("expected unreachable, got %+v", res)
		}
	})
}

func TestFindPathUnreachable(t *testing.T) {
	// A full wall at x=3 seals the left side.
	rows := emptyRows(8)
	for y := 0; y < 8; y++ {
		rows[y][3] = 1
	}
	p, _ := New(rows)

	res, err := p.FindPath(pt(0, 0), pt(7, 7), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Found || res.Path != nil {
		t.Errorf("expected unreachable, got %+v", res)
	}
	if res.Expanded == 0 {
		t.Error("expected the left side to be explored")
	}
}

func TestFindPathReleasesMarkers(t *testing.T) {
	rows := emptyRows(16)
	rows[4][4] = 1
	rows[9][12] = 1
	p, _ := New(rows)
	m := p.Map()

	before := indexShape(m)
	calls := []struct{ start, goal components.Point }{
		{pt(0, 0), pt(15, 15)}, // found
		{pt(1, 1), pt(4, 4)},   // goal on obstacle
		{pt(4, 4), pt(1, 1)},   // start on obstacle
		{pt(3, 3), pt(3, 3)},   // same cell
		{pt(0, 0), pt(16, 0)},  // out of bounds
	}
	for _, c := range calls {
		_, _ = p.FindPath(c.start, c.goal, nil)
		if got := storedObjects(m); got != 2 {
			t.Fatalf("%v->%v: index holds %d objects, want 2", c.start, c.goal, got)
		}
		if !reflect.DeepEqual(before, indexShape(m)) {
			t.Fatalf("%v->%v: index shape changed", c.start, c.goal)
		}
	}
	checkSync(t, m)
}

func TestFindPathExpansionLimit(t *testing.T) {
	rows := emptyRows(16)
	for y := 0; y < 15; y++ {
		rows[y][8] = 1
	}
	p, _ := New(rows, WithMaxExpansions(3))

	res, err := p.FindPath(pt(0, 0), pt(15, 0), nil)
	if !errors.Is(err, ErrExpansionLimit) {
		t.Fatalf("expected ErrExpansionLimit, got %v", err)
	}
	if res.Expanded != 3 || res.Found {
		t.Errorf("got %+v", res)
	}
	if storedObjects(p.Map()) != 15 {
		t.Error("markers leaked after hitting the limit")
	}
}

func TestFindPathRandomMaps(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	for trial := 0; trial < 40; trial++ {
		rows := emptyRows(32)
		for i := 0; i < 200; i++ {
			rows[rng.IntN(32)][rng.IntN(32)] = 1
		}
		start := pt(rng.IntN(32), rng.IntN(32))
		goal := pt(rng.IntN(32), rng.IntN(32))
		rows[start.Y][start.X], rows[goal.Y][goal.X] = 0, 0

		p, err := New(rows)
		if err != nil {
			t.Fatal(err)
		}
		res, err := p.FindPath(start, goal, nil)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		base, _ := p.GridSearch(start, goal, false)

		if res.Found != base.Found {
			t.Fatalf("trial %d %v->%v: quadtree found=%v, grid found=%v", trial, start, goal, res.Found, base.Found)
		}
		if res.Found {
			checkPath(t, p.Map(), start, goal, res.Path)
		}
	}
}

func TestMutationsThroughPlanner(t *testing.T) {
	p, _ := New(emptyRows(8))

	if err := p.AddObstacle(3, 3); err != nil {
		t.Fatal(err)
	}
	if !p.IsBlocked(3, 3) {
		t.Error("expected (3,3) blocked")
	}
	if err := p.RemoveObstacle(3, 3); err != nil {
		t.Fatal(err)
	}
	if p.IsBlocked(3, 3) {
		t.Error("expected (3,3) clear")
	}
	if err := p.AddObstacle(8, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestLinked(t *testing.T) {
	tests := []struct {
		name string
		a, b components.Region
		want bool
	}{
		{"right neighbor", unit(0, 0), unit(1, 0), true},
		{"below neighbor", unit(2, 2), unit(2, 3), true},
		{"diagonal corner", unit(0, 0), unit(1, 1), false},
		{"gap", unit(0, 0), unit(2, 0), false},
		{"merged region edge", unit(3, 1), components.Region{X: 4, Y: 0, Width: 4, Height: 4}, true},
		{"merged corner only", unit(3, 4), components.Region{X: 4, Y: 0, Width: 4, Height: 4}, false},
		{"goal inside merged", components.Region{X: 4, Y: 4, Width: 4, Height: 4}, unit(5, 6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := linked(tt.a, tt.b); got != tt.want {
				t.Errorf("linked(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
