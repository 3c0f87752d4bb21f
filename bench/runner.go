// Package bench compares the quadtree planner against uniform-grid A* over
// sweeps of generated maps.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/quadstar/components"
	"github.com/pthm-cable/quadstar/config"
	"github.com/pthm-cable/quadstar/mapgen"
	"github.com/pthm-cable/quadstar/pathfind"
	"github.com/pthm-cable/quadstar/telemetry"
)

// Runner executes benchmark trials. A Runner is not safe for concurrent use.
type Runner struct {
	bench      config.BenchConfig
	search     config.SearchConfig
	noiseScale float64
	heuristic  pathfind.Heuristic

	runID string
	out   *telemetry.OutputManager
	perf  *telemetry.PerfCollector
	rng   *rand.Rand
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sends trial records and summaries to om.
func WithOutput(om *telemetry.OutputManager) Option {
	return func(r *Runner) { r.out = om }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// WithPerfCollector records per-phase timings into pc.
func WithPerfCollector(pc *telemetry.PerfCollector) Option {
	return func(r *Runner) { r.perf = pc }
}

// NewRunner builds a runner from the bench, search and map sections of cfg.
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	h, err := pathfind.HeuristicByName(cfg.Search.Heuristic)
	if err != nil {
		return nil, err
	}
	if w := cfg.Search.HeuristicWeight; w != 0 && w != 1 {
		h = pathfind.Weighted(h, w)
	}

	r := &Runner{
		bench:      cfg.Bench,
		search:     cfg.Search,
		noiseScale: cfg.Map.NoiseScale,
		heuristic:  h,
		runID:      uuid.NewString(),
		rng:        rand.New(rand.NewPCG(cfg.Bench.Seed, cfg.Bench.Seed+1)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.perf == nil {
		r.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	}
	return r, nil
}

// RunID returns the id stamped on every record of this runner.
func (r *Runner) RunID() string {
	return r.runID
}

// Perf returns the runner's perf collector.
func (r *Runner) Perf() *telemetry.PerfCollector {
	return r.perf
}

// Run sweeps every configured kind, size and wall frequency and returns one
// summary per configuration. It stops between trials when ctx is done.
func (r *Runner) Run(ctx context.Context) ([]telemetry.Summary, error) {
	kinds := r.bench.Kinds
	if len(kinds) == 0 {
		kinds = []string{mapgen.KindRandom}
	}

	var summaries []telemetry.Summary
	for _, kind := range kinds {
		for _, size := range r.bench.Sizes {
			for _, freq := range r.bench.WallFrequencies {
				slog.Info("running configuration", "kind", kind, "size", size, "wall_frequency", freq)

				s, _, err := r.RunConfig(ctx, kind, size, freq)
				if err != nil {
					return summaries, err
				}
				s.LogStats()
				summaries = append(summaries, s)
			}
		}
	}
	return summaries, nil
}

// RunConfig runs bench.Trials trials of one configuration.
func (r *Runner) RunConfig(ctx context.Context, kind string, size int, freq float64) (telemetry.Summary, []telemetry.TrialRecord, error) {
	records := make([]telemetry.TrialRecord, 0, r.bench.Trials)
	for i := 0; i < r.bench.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return telemetry.Summary{}, records, err
		}
		rec, err := r.Trial(kind, size, freq, i)
		if err != nil {
			return telemetry.Summary{}, records, err
		}
		if err := r.out.WriteTrial(rec); err != nil {
			return telemetry.Summary{}, records, err
		}
		records = append(records, rec)
	}

	s := telemetry.Summarize(kind, size, freq, records)
	if err := r.out.WriteSummary(s); err != nil {
		return s, records, err
	}
	if err := r.out.WritePerf(r.perf.Stats(), len(records)); err != nil {
		return s, records, err
	}
	return s, records, nil
}

// Trial generates a map with open corners and searches from the top-left to
// the bottom-right cell with both planners. Maps on which the baseline finds
// no path are regenerated up to bench.MaxRetries times.
func (r *Runner) Trial(kind string, size int, freq float64, trial int) (telemetry.TrialRecord, error) {
	start := components.Point{X: 0, Y: 0}
	goal := components.Point{X: size - 1, Y: size - 1}

	var rec telemetry.TrialRecord
	for retry := 0; ; retry++ {
		seed := r.rng.Uint64()

		r.perf.StartTrial()
		r.perf.StartPhase(telemetry.PhaseGenerate)
		rows, err := mapgen.Generate(mapgen.Params{
			Kind:          kind,
			Size:          size,
			WallFrequency: freq,
			NoiseScale:    r.noiseScale,
			Seed:          seed,
			Keep:          []components.Point{start, goal},
		})
		if err != nil {
			r.perf.AbortTrial()
			return rec, fmt.Errorf("generating map: %w", err)
		}

		r.perf.StartPhase(telemetry.PhaseBuild)
		p, err := pathfind.New(rows,
			pathfind.WithMaxExpansions(r.search.MaxExpansions),
			pathfind.WithMapOptions(pathfind.WithNodeCapacity(r.search.NodeCapacity)),
		)
		if err != nil {
			r.perf.AbortTrial()
			return rec, fmt.Errorf("building planner: %w", err)
		}

		r.perf.StartPhase(telemetry.PhaseGridSearch)
		gridStart := time.Now()
		base, err := p.GridSearch(start, goal, r.bench.DiagonalBaseline)
		if err != nil {
			r.perf.AbortTrial()
			return rec, fmt.Errorf("grid search: %w", err)
		}
		gridTime := time.Since(gridStart)

		if !base.Found && retry < r.bench.MaxRetries {
			// Discarded maps stay out of the perf window.
			r.perf.AbortTrial()
			continue
		}
		if !base.Found {
			slog.Warn("no solvable map within retry budget",
				"kind", kind, "size", size, "wall_frequency", freq, "retries", retry)
		}

		r.perf.StartPhase(telemetry.PhaseAQSSearch)
		aqsStart := time.Now()
		res, err := p.FindPath(start, goal, r.heuristic)
		if err != nil {
			r.perf.AbortTrial()
			return rec, fmt.Errorf("quadtree search: %w", err)
		}
		aqsTime := time.Since(aqsStart)
		r.perf.EndTrial()

		m := p.Map()
		rec = telemetry.TrialRecord{
			RunID:         r.runID,
			Kind:          kind,
			Size:          size,
			WallFrequency: freq,
			Trial:         trial,
			Seed:          seed,
			Retries:       retry,
			GridExpanded:  base.Expanded,
			GridCost:      base.Cost,
			GridUS:        gridTime.Microseconds(),
			AQSExpanded:   res.Expanded,
			AQSCost:       res.Cost,
			AQSSteps:      len(res.Path),
			AQSFound:      res.Found,
			AQSUS:         aqsTime.Microseconds(),
			Obstacles:     m.ObstacleCount(),
			WalkBlocks:    m.WalkableBlocks(),
			Compression:   m.CompressionRate(),
		}
		return rec, nil
	}
}
