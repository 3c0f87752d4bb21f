package bench

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/quadstar/config"
	"github.com/pthm-cable/quadstar/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Bench.Sizes = []int{8, 16}
	cfg.Bench.WallFrequencies = []float64{0, 0.2}
	cfg.Bench.Kinds = []string{"random"}
	cfg.Bench.Trials = 3
	cfg.Bench.MaxRetries = 20
	return cfg
}

func TestRunProducesSummaries(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewRunner(cfg, WithOutput(om), WithRunID("test-run"))
	if err != nil {
		t.Fatal(err)
	}
	summaries, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	if len(summaries) != 4 {
		t.Fatalf("got %d summaries, want 4", len(summaries))
	}
	for _, s := range summaries {
		if s.Trials != 3 {
			t.Errorf("%d/%v: %d trials, want 3", s.Size, s.WallFrequency, s.Trials)
		}
		if s.WallFrequency == 0 && s.FoundRate != 1 {
			t.Errorf("open %d map: found rate %v, want 1", s.Size, s.FoundRate)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "runs.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1+4*3 {
		t.Errorf("runs.csv has %d lines, want %d", len(lines), 1+4*3)
	}
	if !strings.HasPrefix(lines[1], "test-run,random,8,") {
		t.Errorf("unexpected first record %q", lines[1])
	}
}

func TestTrialOpenMap(t *testing.T) {
	r, err := NewRunner(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	rec, err := r.Trial("random", 16, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.AQSFound {
		t.Fatal("expected path on open map")
	}
	// 4-connected corner to corner.
	if rec.GridCost != 30 {
		t.Errorf("grid cost %v, want 30", rec.GridCost)
	}
	if rec.AQSExpanded == 0 || rec.GridExpanded == 0 {
		t.Errorf("quadtree expanded %d, grid expanded %d", rec.AQSExpanded, rec.GridExpanded)
	}
	if rec.Obstacles != 0 || rec.WalkBlocks != 1 {
		t.Errorf("obstacles=%d walk blocks=%d, want 0 and 1", rec.Obstacles, rec.WalkBlocks)
	}
	if rec.RunID == "" || rec.RunID != r.RunID() {
		t.Errorf("run id %q, runner id %q", rec.RunID, r.RunID())
	}
}

func TestTrialDeterministic(t *testing.T) {
	a, _ := NewRunner(testConfig(t))
	b, _ := NewRunner(testConfig(t))

	for i := 0; i < 5; i++ {
		ra, err := a.Trial("random", 16, 0.3, i)
		if err != nil {
			t.Fatal(err)
		}
		rb, err := b.Trial("random", 16, 0.3, i)
		if err != nil {
			t.Fatal(err)
		}
		if ra.Seed != rb.Seed || ra.AQSExpanded != rb.AQSExpanded || ra.GridExpanded != rb.GridExpanded {
			t.Errorf("trial %d differs: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	r, err := NewRunner(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewRunnerUnknownHeuristic(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.Heuristic = "bogus"
	if _, err := NewRunner(cfg); err == nil {
		t.Error("expected error for unknown heuristic")
	}
}

func TestRetriedMapsStayOutOfPerfWindow(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.PerfWindow = 100
	r, err := NewRunner(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Below the site percolation threshold most maps are unsolvable.
	_, records, err := r.RunConfig(context.Background(), "random", 16, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	retries := 0
	for _, rec := range records {
		retries += rec.Retries
	}
	if retries == 0 {
		t.Fatal("expected at least one regenerated map")
	}
	if got := r.Perf().Samples(); got != len(records) {
		t.Errorf("perf window holds %d samples, want %d (one per accepted trial)", got, len(records))
	}
	for phase, pct := range r.Perf().Stats().PhasePct {
		if phase == telemetry.PhaseAQSSearch && pct <= 0 {
			t.Errorf("aqs_search share %v, want positive", pct)
		}
	}
}
