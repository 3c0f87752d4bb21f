package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/quadstar/bench"
	"github.com/pthm-cable/quadstar/config"
	"github.com/pthm-cable/quadstar/telemetry"
)

// Fitness weights.
const (
	costPenalty = 4.0  // per unit of mean cost ratio above 1
	missPenalty = 10.0 // per unit of lost found rate
	failFitness = 1e6  // returned when a run errors
)

// FitnessEvaluator runs benchmark trials on a fixed set of maps and computes
// fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maps       int
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	bestSummary []telemetry.Summary
	last        evalStats // stats from the most recent Evaluate call
}

// evalStats aggregates summaries across kinds for one evaluation.
type evalStats struct {
	expansionRatio float64
	costRatio      float64
	foundRate      float64
}

// NewFitnessEvaluator creates a new evaluator running maps trials per kind.
func NewFitnessEvaluator(params *ParamVector, maps int, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maps:        maps,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestSummaries returns the per-kind summaries of the best evaluation.
func (fe *FitnessEvaluator) BestSummaries() []telemetry.Summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestSummary
}

// Last returns the aggregated stats of the most recent evaluation.
func (fe *FitnessEvaluator) Last() (expansionRatio, costRatio, foundRate float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last.expansionRatio, fe.last.costRatio, fe.last.foundRate
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Every evaluation replays the same maps: each kind gets a runner seeded from
// bench.seed.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Bench.Trials = fe.maps

	kinds := cfg.Bench.Kinds
	if len(kinds) == 0 {
		kinds = []string{cfg.Map.Kind}
	}

	// Run all kinds in parallel
	results := make([]telemetry.Summary, len(kinds))
	errs := make([]error, len(kinds))
	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(idx int, kind string) {
			defer wg.Done()
			r, err := bench.NewRunner(cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], _, errs[idx] = r.RunConfig(context.Background(), kind, cfg.Map.Size, cfg.Map.WallFrequency)
		}(i, kind)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			slog.Warn("evaluation failed", "kind", kinds[i], "error", err)
			return failFitness
		}
	}

	stats := aggregate(results)
	fitness := computeFitness(stats)

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestSummary = results
	}
	fe.last = stats
	fe.mu.Unlock()

	return fitness
}

// copyConfig returns a copy of the base config. Slices are shared; nothing
// here mutates them.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

func aggregate(summaries []telemetry.Summary) evalStats {
	var s evalStats
	if len(summaries) == 0 {
		return s
	}
	for _, sum := range summaries {
		s.expansionRatio += sum.ExpansionRatio
		s.costRatio += sum.CostRatioMean
		s.foundRate += sum.FoundRate
	}
	n := float64(len(summaries))
	s.expansionRatio /= n
	s.costRatio /= n
	s.foundRate /= n
	return s
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: expansionRatio + costPenalty × max(0, costRatio-1) + missPenalty × (1-foundRate)
// The expansion ratio dominates; the penalties keep the optimizer from
// trading path quality or completeness for fewer expansions.
func computeFitness(s evalStats) float64 {
	return s.expansionRatio +
		costPenalty*math.Max(0, s.costRatio-1) +
		missPenalty*(1-s.foundRate)
}
