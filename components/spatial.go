// Package components defines the plain value types shared by the index and the planner.
package components

import (
	"fmt"
	"math"
)

// Point is a grid cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Unit returns the unit Region covering the cell.
func (p Point) Unit() Region {
	return Region{X: p.X, Y: p.Y, Width: 1, Height: 1}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Region is an axis-aligned rectangle of cells. Width and Height are at least 1.
// Regions compare structurally and are used directly as map keys.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Origin returns the top-left cell of the region.
func (r Region) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// IsUnit reports whether the region is a single cell.
func (r Region) IsUnit() bool {
	return r.Width == 1 && r.Height == 1
}

// Area returns the number of cells covered.
func (r Region) Area() int {
	return r.Width * r.Height
}

// Diagonal returns the Euclidean length of the region's diagonal.
func (r Region) Diagonal() float64 {
	return math.Hypot(float64(r.Width), float64(r.Height))
}

// ContainsPoint reports whether the cell lies inside the region.
func (r Region) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Contains reports whether o lies entirely inside r.
func (r Region) Contains(o Region) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width &&
		o.Y+o.Height <= r.Y+r.Height
}

// Intersects reports whether the two regions share at least one cell.
func (r Region) Intersects(o Region) bool {
	return o.X < r.X+r.Width && r.X < o.X+o.Width &&
		o.Y < r.Y+r.Height && r.Y < o.Y+o.Height
}

func (r Region) String() string {
	return fmt.Sprintf("{%d,%d %dx%d}", r.X, r.Y, r.Width, r.Height)
}
