package pathfind

import (
	"errors"
	"math/bits"

	"github.com/pthm-cable/quadstar/components"
	"github.com/pthm-cable/quadstar/quadtree"
)

var (
	// ErrOutOfBounds is returned for coordinates outside [0,width) x [0,height).
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	// ErrDimensions is returned when a map is not a square power-of-two grid.
	ErrDimensions = errors.New("map must be a square power-of-two grid")
)

// DefaultNodeCapacity is the number of objects a quadtree leaf holds before it splits.
const DefaultNodeCapacity = 1

// Index is the spatial index the planner keeps in sync with the occupancy grid.
type Index interface {
	Insert(r components.Region) bool
	Remove(r components.Region) bool
	RemoveObject(r components.Region) bool
	ObjectNode(r components.Region) quadtree.Node
}

// leafWalker is implemented by indexes that can enumerate their leaves.
type leafWalker interface {
	Leaves(fn func(quadtree.Node))
}

// MapOption configures an ObstacleMap.
type MapOption func(*mapOptions)

type mapOptions struct {
	capacity int
	index    func(bounds components.Region, capacity, maxLevel int) Index
}

// WithNodeCapacity sets how many obstacles a quadtree leaf holds before splitting.
func WithNodeCapacity(capacity int) MapOption {
	return func(o *mapOptions) { o.capacity = capacity }
}

// WithIndex replaces the default quadtree with another Index implementation.
func WithIndex(build func(bounds components.Region, capacity, maxLevel int) Index) MapOption {
	return func(o *mapOptions) { o.index = build }
}

// ObstacleMap stores cell occupancy and keeps the spatial index in step with it.
// Cells are marked as blocked (true) or open (false).
type ObstacleMap struct {
	cells       []bool // row-major, y*width+x
	width       int
	height      int
	finestLevel int
	obstacles   int
	index       Index
}

// NewObstacleMap creates an empty map. Width and height must be equal powers of two.
func NewObstacleMap(width, height int, opts ...MapOption) (*ObstacleMap, error) {
	if width < 1 || width != height || width&(width-1) != 0 {
		return nil, ErrDimensions
	}

	o := mapOptions{capacity: DefaultNodeCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.index == nil {
		o.index = func(bounds components.Region, capacity, maxLevel int) Index {
			return quadtree.New(bounds, capacity, maxLevel)
		}
	}

	finest := bits.TrailingZeros(uint(width))
	return &ObstacleMap{
		cells:       make([]bool, width*height),
		width:       width,
		height:      height,
		finestLevel: finest,
		index:       o.index(components.Region{Width: width, Height: height}, o.capacity, finest),
	}, nil
}

// Width returns the grid width in cells.
func (m *ObstacleMap) Width() int { return m.width }

// Height returns the grid height in cells.
func (m *ObstacleMap) Height() int { return m.height }

// FinestLevel is the index level of unit-cell leaves, log2(width).
func (m *ObstacleMap) FinestLevel() int { return m.finestLevel }

// ObstacleCount returns the number of occupied cells.
func (m *ObstacleMap) ObstacleCount() int { return m.obstacles }

// Index exposes the spatial index for read-only inspection.
func (m *ObstacleMap) Index() Index { return m.index }

// InBounds reports whether (x,y) lies on the grid.
func (m *ObstacleMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// IsBlocked returns true if the cell is occupied. Out of bounds is blocked.
func (m *ObstacleMap) IsBlocked(x, y int) bool {
	if !m.InBounds(x, y) {
		return true
	}
	return m.cells[y*m.width+x]
}

// AddObstacle marks (x,y) occupied and records it in the index.
// Adding an obstacle that is already present changes nothing.
func (m *ObstacleMap) AddObstacle(x, y int) error {
	if !m.InBounds(x, y) {
		return ErrOutOfBounds
	}
	i := y*m.width + x
	if m.cells[i] {
		return nil
	}
	m.cells[i] = true
	m.obstacles++
	m.index.Insert(components.Point{X: x, Y: y}.Unit())
	instrumentObstacleUpdate(opAdd)
	return nil
}

// RemoveObstacle clears (x,y). Clearing a free cell is a no-op.
func (m *ObstacleMap) RemoveObstacle(x, y int) error {
	if !m.InBounds(x, y) {
		return ErrOutOfBounds
	}
	i := y*m.width + x
	if !m.cells[i] {
		return nil
	}
	m.cells[i] = false
	m.obstacles--
	m.index.Remove(components.Point{X: x, Y: y}.Unit())
	instrumentObstacleUpdate(opRemove)
	return nil
}

// Leaves walks the index leaves when the index supports it.
func (m *ObstacleMap) Leaves(fn func(quadtree.Node)) {
	if w, ok := m.index.(leafWalker); ok {
		w.Leaves(fn)
	}
}

// WalkableBlocks counts the traversal units of the variable-resolution graph:
// every obstacle-free leaf counts once, and every free cell of a leaf that
// holds obstacles counts individually.
func (m *ObstacleMap) WalkableBlocks() int {
	blocks := 0
	m.Leaves(func(n quadtree.Node) {
		if len(n.Objects) == 0 {
			blocks++
			return
		}
		b := n.Bounds
		for y := b.Y; y < b.Y+b.Height; y++ {
			for x := b.X; x < b.X+b.Width; x++ {
				if !m.IsBlocked(x, y) {
					blocks++
				}
			}
		}
	})
	return blocks
}

// CompressionRate is the fraction of free cells saved by merging, in [0,1).
func (m *ObstacleMap) CompressionRate() float64 {
	free := m.width*m.height - m.obstacles
	if free == 0 {
		return 0
	}
	return 1 - float64(m.WalkableBlocks())/float64(free)
}

// Rows returns a copy of the occupancy as rows indexed [y][x], 1 for obstacles.
func (m *ObstacleMap) Rows() [][]uint8 {
	rows := make([][]uint8, m.height)
	for y := range rows {
		rows[y] = make([]uint8, m.width)
		for x := 0; x < m.width; x++ {
			if m.cells[y*m.width+x] {
				rows[y][x] = 1
			}
		}
	}
	return rows
}
