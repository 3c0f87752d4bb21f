package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/quadstar/config"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := []float64{2.0, 5}
	got := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(got[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, got[i], raw[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	got := pv.Clamp([]float64{0.2, 3.6})
	if got[0] != 1.0 {
		t.Errorf("weight clamped to %v, want 1", got[0])
	}
	if got[1] != 4 {
		t.Errorf("capacity rounded to %v, want 4", got[1])
	}
	got = pv.Clamp([]float64{9, 100})
	if got[0] != 3.0 || got[1] != 16 {
		t.Errorf("upper clamp: got %v", got)
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	pv.ApplyToConfig(cfg, []float64{1.5, 2.4})
	if cfg.Search.HeuristicWeight != 1.5 || cfg.Search.NodeCapacity != 2 {
		t.Errorf("got weight %v capacity %d", cfg.Search.HeuristicWeight, cfg.Search.NodeCapacity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
	got := pv.ExtractFromConfig(cfg)
	if got[0] != 1.5 || got[1] != 2 {
		t.Errorf("extract: got %v", got)
	}
}

func TestComputeFitness(t *testing.T) {
	tests := []struct {
		name  string
		stats evalStats
		want  float64
	}{
		{"optimal cost", evalStats{expansionRatio: 0.5, costRatio: 1, foundRate: 1}, 0.5},
		{"shorter cost not rewarded", evalStats{expansionRatio: 0.5, costRatio: 0.9, foundRate: 1}, 0.5},
		{"longer cost", evalStats{expansionRatio: 0.5, costRatio: 1.1, foundRate: 1}, 0.5 + costPenalty*0.1},
		{"misses", evalStats{expansionRatio: 0.5, costRatio: 1, foundRate: 0.9}, 0.5 + missPenalty*0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeFitness(tt.stats); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Map.Size = 16
	cfg.Map.WallFrequency = 0.2
	cfg.Bench.Kinds = []string{"random"}

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 3, cfg)
	x := pv.DefaultVector()

	a := fe.Evaluate(x)
	b := fe.Evaluate(x)
	if a != b {
		t.Errorf("same parameters gave %v then %v", a, b)
	}
	if a >= failFitness {
		t.Fatalf("evaluation failed: %v", a)
	}
	if fe.BestSummaries() == nil {
		t.Error("expected best summaries to be recorded")
	}
	if _, _, found := fe.Last(); found != 1 {
		t.Errorf("found rate %v, want 1", found)
	}
}
