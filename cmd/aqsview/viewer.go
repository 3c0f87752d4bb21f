package main

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/quadstar/components"
	"github.com/pthm-cable/quadstar/config"
	"github.com/pthm-cable/quadstar/mapgen"
	"github.com/pthm-cable/quadstar/pathfind"
)

// viewer owns the planner and the in-progress search.
//
// While a stepper is open it holds the planner lock, so every map edit closes
// the stepper first and map reads go through Map() rather than the locked
// planner accessors.
type viewer struct {
	cfg       *config.Config
	seed      uint64
	heuristic pathfind.Heuristic

	planner *pathfind.Planner
	start   components.Point
	goal    components.Point

	stepper *pathfind.Stepper
	snap    pathfind.StepSnapshot
	running bool
	stepAcc float64
	lastErr error
}

func newViewer(cfg *config.Config) (*viewer, error) {
	h, err := pathfind.HeuristicByName(cfg.Search.Heuristic)
	if err != nil {
		return nil, err
	}
	if w := cfg.Search.HeuristicWeight; w != 0 && w != 1 {
		h = pathfind.Weighted(h, w)
	}
	v := &viewer{
		cfg:       cfg,
		seed:      cfg.Map.Seed,
		heuristic: h,
	}
	if err := v.regenerate(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *viewer) size() int {
	return v.cfg.Map.Size
}

// regenerate builds a fresh map from the current seed.
func (v *viewer) regenerate() error {
	v.reset()
	n := v.size()
	v.start = components.Point{X: 0, Y: 0}
	v.goal = components.Point{X: n - 1, Y: n - 1}

	rows, err := mapgen.Generate(mapgen.Params{
		Kind:          v.cfg.Map.Kind,
		Size:          n,
		WallFrequency: v.cfg.Map.WallFrequency,
		NoiseScale:    v.cfg.Map.NoiseScale,
		Seed:          v.seed,
		Keep:          []components.Point{v.start, v.goal},
	})
	if err != nil {
		return err
	}
	p, err := pathfind.New(rows,
		pathfind.WithMaxExpansions(v.cfg.Search.MaxExpansions),
		pathfind.WithMapOptions(pathfind.WithNodeCapacity(v.cfg.Search.NodeCapacity)),
	)
	if err != nil {
		return err
	}
	v.planner = p
	slog.Info("map generated",
		"kind", v.cfg.Map.Kind,
		"size", n,
		"seed", v.seed,
		"obstacles", p.Map().ObstacleCount(),
		"walk_blocks", p.Map().WalkableBlocks(),
		"compression", p.Map().CompressionRate(),
	)
	return nil
}

// reset drops the current search and releases the planner.
func (v *viewer) reset() {
	if v.stepper != nil {
		v.stepper.Close()
		v.stepper = nil
	}
	v.snap = pathfind.StepSnapshot{}
	v.running = false
	v.stepAcc = 0
	v.lastErr = nil
}

// toggle flips the obstacle at c. Endpoints cannot be walled over.
func (v *viewer) toggle(c components.Point) {
	if c == v.start || c == v.goal {
		return
	}
	v.reset()
	var err error
	if v.planner.Map().IsBlocked(c.X, c.Y) {
		err = v.planner.RemoveObstacle(c.X, c.Y)
	} else {
		err = v.planner.AddObstacle(c.X, c.Y)
	}
	if err != nil {
		v.lastErr = err
	}
}

func (v *viewer) setStart(c components.Point) {
	if v.planner.Map().IsBlocked(c.X, c.Y) || c == v.goal {
		return
	}
	v.reset()
	v.start = c
}

func (v *viewer) setGoal(c components.Point) {
	if v.planner.Map().IsBlocked(c.X, c.Y) || c == v.start {
		return
	}
	v.reset()
	v.goal = c
}

// ensureStepper opens a stepper for the current endpoints if none is open.
func (v *viewer) ensureStepper() bool {
	if v.stepper != nil {
		return true
	}
	st, err := v.planner.NewStepper(v.start, v.goal, v.heuristic)
	if err != nil {
		v.lastErr = err
		return false
	}
	v.stepper = st
	return true
}

// step advances the search by one expansion.
func (v *viewer) step() {
	if v.snap.Done || !v.ensureStepper() {
		v.running = false
		return
	}
	snap, err := v.stepper.Step()
	v.snap = snap
	if err != nil {
		v.lastErr = err
		if !errors.Is(err, pathfind.ErrExpansionLimit) {
			v.running = false
		}
	}
	if snap.Done {
		v.running = false
		slog.Info("search finished",
			"start", v.start.String(),
			"goal", v.goal.String(),
			"found", snap.Found,
			"steps", len(snap.Path),
			"expanded", v.stepper.Expanded(),
		)
	}
}

// advance runs as many steps as the elapsed time allows at rate steps per second.
func (v *viewer) advance(dt, rate float64) {
	if !v.running {
		return
	}
	v.stepAcc += dt * rate
	for v.stepAcc >= 1 && v.running {
		v.stepAcc--
		v.step()
	}
}

// solve finishes the search in one call.
func (v *viewer) solve() {
	if !v.ensureStepper() {
		return
	}
	snap, err := v.stepper.Run()
	v.snap = snap
	v.running = false
	if err != nil {
		v.lastErr = err
	}
}
