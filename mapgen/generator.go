// Package mapgen generates occupancy grids for the planner and converts them
// to and from the ASCII map format.
package mapgen

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/quadstar/components"
)

// ErrSize is returned for sizes that are not positive powers of two.
var ErrSize = errors.New("map size must be a positive power of two")

const (
	// KindRandom scatters walls independently per cell.
	KindRandom = "random"
	// KindCave thresholds simplex noise into connected blobs.
	KindCave = "cave"
	// KindClear produces an empty grid.
	KindClear = "clear"
)

// DefaultNoiseScale is the simplex sampling frequency for cave maps.
const DefaultNoiseScale = 0.12

// Params configures a generator run.
type Params struct {
	Kind          string
	Size          int
	WallFrequency float64 // probability of a wall (random) or target wall fraction (cave)
	NoiseScale    float64 // cave only; zero selects DefaultNoiseScale
	Seed          uint64
	// Keep lists cells that are always left open, typically start and goal.
	Keep []components.Point
}

// Generate dispatches on p.Kind. The result is indexed [y][x], 1 for walls.
func Generate(p Params) ([][]uint8, error) {
	switch p.Kind {
	case KindRandom, "":
		return Random(p)
	case KindCave:
		return Cave(p)
	case KindClear:
		return Clear(p.Size)
	default:
		return nil, fmt.Errorf("unknown map kind %q", p.Kind)
	}
}

// Clear returns an obstacle-free grid.
func Clear(size int) ([][]uint8, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return newRows(size), nil
}

// Random marks each cell as a wall with probability p.WallFrequency.
// The same seed always produces the same map.
func Random(p Params) ([][]uint8, error) {
	if err := checkSize(p.Size); err != nil {
		return nil, err
	}
	if p.WallFrequency < 0 || p.WallFrequency > 1 {
		return nil, fmt.Errorf("wall frequency %v outside [0,1]", p.WallFrequency)
	}

	wall := distuv.Bernoulli{
		P:   p.WallFrequency,
		Src: rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15),
	}

	rows := newRows(p.Size)
	for y := range rows {
		for x := range rows[y] {
			rows[y][x] = uint8(wall.Rand())
		}
	}
	keepOpen(rows, p.Keep)
	return rows, nil
}

// Cave samples normalized simplex noise and turns the lowest values into walls,
// giving clustered obstacles with large open areas in between.
func Cave(p Params) ([][]uint8, error) {
	if err := checkSize(p.Size); err != nil {
		return nil, err
	}
	if p.WallFrequency < 0 || p.WallFrequency > 1 {
		return nil, fmt.Errorf("wall frequency %v outside [0,1]", p.WallFrequency)
	}
	scale := p.NoiseScale
	if scale <= 0 {
		scale = DefaultNoiseScale
	}

	noise := opensimplex.NewNormalized(int64(p.Seed))
	rows := newRows(p.Size)

	// Normalized simplex values cluster around 0.5, so the frequency is
	// mapped onto a band centered there rather than used directly.
	threshold := 0.5 + (p.WallFrequency-0.5)*0.6
	if p.WallFrequency == 0 {
		threshold = -1
	}
	for y := range rows {
		for x := range rows[y] {
			if noise.Eval2(float64(x)*scale, float64(y)*scale) < threshold {
				rows[y][x] = 1
			}
		}
	}
	keepOpen(rows, p.Keep)
	return rows, nil
}

func checkSize(size int) error {
	if size < 1 || size&(size-1) != 0 {
		return fmt.Errorf("size %d: %w", size, ErrSize)
	}
	return nil
}

func newRows(size int) [][]uint8 {
	rows := make([][]uint8, size)
	for y := range rows {
		rows[y] = make([]uint8, size)
	}
	return rows
}

func keepOpen(rows [][]uint8, keep []components.Point) {
	for _, p := range keep {
		if p.Y >= 0 && p.Y < len(rows) && p.X >= 0 && p.X < len(rows[p.Y]) {
			rows[p.Y][p.X] = 0
		}
	}
}

// WallFraction returns the share of cells that are walls.
func WallFraction(rows [][]uint8) float64 {
	walls, cells := 0, 0
	for _, row := range rows {
		for _, v := range row {
			if v != 0 {
				walls++
			}
			cells++
		}
	}
	if cells == 0 {
		return 0
	}
	return float64(walls) / float64(cells)
}
