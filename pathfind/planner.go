package pathfind

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pthm-cable/quadstar/components"
)

// ErrExpansionLimit is returned when a search hits its expansion cap before
// exhausting the open set.
var ErrExpansionLimit = errors.New("search expansion limit reached")

// DefaultExpansionFactor scales width*height into the default expansion cap.
// The number of distinct regions is below 4/3 of the cell count, so the cap
// only trips on a misbehaving index.
const DefaultExpansionFactor = 4

// Result contains the outcome of a search.
type Result struct {
	Path     []components.Region
	Cost     float64
	Expanded int
	Found    bool
}

// Options defines parameters for the planner.
type Options struct {
	MaxExpansions int
	MapOptions    []MapOption
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithMaxExpansions caps the number of node expansions per search.
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// WithMapOptions forwards options to the obstacle map built by New.
func WithMapOptions(opts ...MapOption) Option {
	return func(o *Options) { o.MapOptions = append(o.MapOptions, opts...) }
}

// Planner runs adaptive-resolution A* over an ObstacleMap.
//
// The start and goal cells are inserted into the shared index for the
// duration of a search, so searches and map mutations are serialized by a
// single lock held for the whole call.
type Planner struct {
	mu        sync.Mutex
	obstacles *ObstacleMap
	neighbors *neighborResolver
	limit     int
}

// New builds a planner from occupancy rows indexed [y][x]; non-zero cells are
// obstacles. The grid must be a square with a power-of-two side.
func New(rows [][]uint8, opts ...Option) (*Planner, error) {
	o := applyOptions(opts)

	height := len(rows)
	if height == 0 {
		return nil, ErrDimensions
	}
	width := len(rows[0])
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), width, ErrDimensions)
		}
	}

	m, err := NewObstacleMap(width, height, o.MapOptions...)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		for x, v := range row {
			if v != 0 {
				if err := m.AddObstacle(x, y); err != nil {
					return nil, fmt.Errorf("adding obstacle (%d,%d): %w", x, y, err)
				}
			}
		}
	}
	return newPlanner(m, o), nil
}

// NewFromMap wraps an existing obstacle map. The planner takes ownership of m;
// mutate it only through the planner afterwards.
func NewFromMap(m *ObstacleMap, opts ...Option) *Planner {
	return newPlanner(m, applyOptions(opts))
}

func applyOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newPlanner(m *ObstacleMap, o Options) *Planner {
	limit := o.MaxExpansions
	if limit <= 0 {
		limit = DefaultExpansionFactor * m.Width() * m.Height()
	}
	return &Planner{
		obstacles: m,
		neighbors: newNeighborResolver(m),
		limit:     limit,
	}
}

// Map returns the planner's obstacle map. Callers must not mutate it directly.
func (p *Planner) Map() *ObstacleMap {
	return p.obstacles
}

// AddObstacle marks (x,y) as blocked.
func (p *Planner) AddObstacle(x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.obstacles.AddObstacle(x, y)
}

// RemoveObstacle clears (x,y).
func (p *Planner) RemoveObstacle(x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.obstacles.RemoveObstacle(x, y)
}

// IsBlocked reports whether (x,y) is occupied or off the grid.
func (p *Planner) IsBlocked(x, y int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.obstacles.IsBlocked(x, y)
}

// FindPath searches from start to goal. A nil heuristic selects Manhattan.
//
// The returned path lists regions from start to goal inclusive; merged regions
// appear as single steps. An unreachable goal, including one that sits on an
// obstacle, yields an empty path and a nil error.
func (p *Planner) FindPath(start, goal components.Point, h Heuristic) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	release, err := p.acquire(start, goal)
	if err != nil {
		return Result{}, err
	}
	defer release()

	if p.obstacles.IsBlocked(start.X, start.Y) || p.obstacles.IsBlocked(goal.X, goal.Y) {
		instrumentSearch(outcomeUnreachable, 0)
		return Result{}, nil
	}

	if h == nil {
		h = Manhattan
	}
	s := newSearch(p.neighbors, start, goal, h, p.limit)
	s.run()

	res := Result{
		Path:     s.path(),
		Cost:     s.cost(),
		Expanded: s.expanded,
		Found:    s.found,
	}
	switch {
	case s.found:
		instrumentSearch(outcomeFound, s.expanded)
	case !s.done:
		instrumentSearch(outcomeLimit, s.expanded)
		slog.Warn("search expansion limit reached",
			"start", start.String(),
			"goal", goal.String(),
			"expanded", s.expanded,
			"limit", p.limit,
		)
		return res, ErrExpansionLimit
	default:
		instrumentSearch(outcomeUnreachable, s.expanded)
	}
	return res, nil
}

// acquire validates the endpoints and inserts them into the index as
// transient objects. The returned release removes exactly the markers that
// were inserted. Callers must hold p.mu.
func (p *Planner) acquire(start, goal components.Point) (func(), error) {
	m := p.obstacles
	if !m.InBounds(start.X, start.Y) {
		return nil, fmt.Errorf("start %v: %w", start, ErrOutOfBounds)
	}
	if !m.InBounds(goal.X, goal.Y) {
		return nil, fmt.Errorf("goal %v: %w", goal, ErrOutOfBounds)
	}

	var markers []components.Region
	for _, pt := range []components.Point{start, goal} {
		r := pt.Unit()
		if m.index.Insert(r) {
			markers = append(markers, r)
		}
	}

	return func() {
		for i := len(markers) - 1; i >= 0; i-- {
			m.index.RemoveObject(markers[i])
		}
	}, nil
}
