package pathfind

import (
	"errors"
	"math"
	"testing"
)

// TestGridSearchStraightLine verifies the baseline finds a straight path.
func TestGridSearchStraightLine(t *testing.T) {
	p, _ := New(emptyRows(8))

	res, err := p.GridSearch(pt(0, 3), pt(7, 3), false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Fatal("expected path")
	}
	if len(res.Path) != 8 {
		t.Errorf("expected 8 cells, got %d", len(res.Path))
	}
	if res.Cost != 7 {
		t.Errorf("cost %v, want 7", res.Cost)
	}
	for i, c := range res.Path {
		if c.X != i || c.Y != 3 {
			t.Errorf("step %d at %v, want (%d,3)", i, c, i)
		}
	}
}

// TestGridSearchAroundWall verifies the baseline returns a shortest detour.
func TestGridSearchAroundWall(t *testing.T) {
	// Wall at x=4 from y=0 to y=6 leaves a gap at y=7.
	rows := emptyRows(8)
	for y := 0; y < 7; y++ {
		rows[y][4] = 1
	}
	p, _ := New(rows)

	res, err := p.GridSearch(pt(0, 0), pt(7, 0), false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Fatal("expected path around wall")
	}
	// Down 7, across 7, up 7.
	if res.Cost != 21 {
		t.Errorf("cost %v, want 21", res.Cost)
	}
	for i, c := range res.Path {
		if p.IsBlocked(c.X, c.Y) {
			t.Errorf("step %d at %v is blocked", i, c)
		}
		if i > 0 {
			prev := res.Path[i-1]
			if abs(c.X-prev.X)+abs(c.Y-prev.Y) != 1 {
				t.Errorf("step %d: %v not adjacent to %v", i, c, prev)
			}
		}
	}
}

func TestGridSearchDiagonal(t *testing.T) {
	p, _ := New(emptyRows(8))

	res, err := p.GridSearch(pt(0, 0), pt(7, 7), true)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Fatal("expected path")
	}
	if len(res.Path) != 8 {
		t.Errorf("expected 8 cells, got %d", len(res.Path))
	}
	if math.Abs(res.Cost-7*math.Sqrt2) > 1e-9 {
		t.Errorf("cost %v, want %v", res.Cost, 7*math.Sqrt2)
	}
}

func TestGridSearchNoCornerCutting(t *testing.T) {
	// (1,0) and (0,1) block every way out of (0,0), diagonal included.
	rows := emptyRows(4)
	rows[0][1] = 1
	rows[1][0] = 1
	p, _ := New(rows)

	res, err := p.GridSearch(pt(0, 0), pt(3, 3), true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Found {
		t.Errorf("expected no path, got %v", res.Path)
	}
}

func TestGridSearchEdgeCases(t *testing.T) {
	rows := emptyRows(4)
	rows[2][2] = 1
	p, _ := New(rows)

	res, err := p.GridSearch(pt(1, 1), pt(1, 1), false)
	if err != nil || !res.Found || len(res.Path) != 1 {
		t.Errorf("same cell: %+v, %v", res, err)
	}

	res, err = p.GridSearch(pt(0, 0), pt(2, 2), false)
	if err != nil || res.Found {
		t.Errorf("blocked goal: %+v, %v", res, err)
	}

	if _, err := p.GridSearch(pt(0, 0), pt(4, 0), false); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}
