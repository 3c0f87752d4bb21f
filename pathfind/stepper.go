package pathfind

import (
	"errors"

	"github.com/pthm-cable/quadstar/components"
)

// ErrStepperClosed is returned by Step after Close.
var ErrStepperClosed = errors.New("stepper closed")

// StepSnapshot exposes the per-iteration state of the search.
type StepSnapshot struct {
	Current   components.Region
	Open      map[components.Region]bool
	Closed    map[components.Region]bool
	Done      bool
	Found     bool
	Path      []components.Region
	StepIndex int
}

// Stepper runs the same search as FindPath one expansion at a time.
//
// A Stepper holds the planner lock from NewStepper until Close, so the map
// cannot change underneath it. Always Close a stepper.
type Stepper struct {
	planner *Planner
	search  *search
	release func()
	steps   int
	closed  bool
}

// NewStepper prepares a step-by-step search from start to goal. A nil
// heuristic selects Manhattan.
func (p *Planner) NewStepper(start, goal components.Point, h Heuristic) (*Stepper, error) {
	p.mu.Lock()

	release, err := p.acquire(start, goal)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}

	if h == nil {
		h = Manhattan
	}
	s := newSearch(p.neighbors, start, goal, h, p.limit)
	if p.obstacles.IsBlocked(start.X, start.Y) || p.obstacles.IsBlocked(goal.X, goal.Y) {
		s.done = true
	}

	return &Stepper{
		planner: p,
		search:  s,
		release: release,
	}, nil
}

// Step advances the search by one node expansion and returns a snapshot.
// Once the search is done further calls return the final snapshot.
func (st *Stepper) Step() (StepSnapshot, error) {
	if st.closed {
		return StepSnapshot{}, ErrStepperClosed
	}

	s := st.search
	if !s.done {
		if s.limitReached() {
			instrumentSearch(outcomeLimit, s.expanded)
			s.done = true
			return st.snapshot(), ErrExpansionLimit
		}
		st.steps++
		if !s.step() {
			if s.found {
				instrumentSearch(outcomeFound, s.expanded)
			} else {
				instrumentSearch(outcomeUnreachable, s.expanded)
			}
		}
	}
	return st.snapshot(), nil
}

// Run steps until the search is done and returns the final snapshot.
func (st *Stepper) Run() (StepSnapshot, error) {
	for {
		snap, err := st.Step()
		if err != nil || snap.Done {
			return snap, err
		}
	}
}

// Expanded returns the number of nodes expanded so far.
func (st *Stepper) Expanded() int {
	return st.search.expanded
}

// Close removes the endpoint markers and releases the planner lock.
// Close is idempotent.
func (st *Stepper) Close() {
	if st.closed {
		return
	}
	st.closed = true
	st.release()
	st.planner.mu.Unlock()
}

func (st *Stepper) snapshot() StepSnapshot {
	s := st.search
	snap := StepSnapshot{
		Open:      s.openRegions(),
		Closed:    s.closedRegions(),
		Done:      s.done,
		Found:     s.found,
		Path:      s.path(),
		StepIndex: st.steps,
	}
	if s.current >= 0 {
		snap.Current = s.nodes[s.current].region
	}
	return snap
}
