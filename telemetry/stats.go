package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TrialRecord holds the outcome of one benchmark trial: the same map searched
// by the uniform-grid baseline and by the quadtree planner.
type TrialRecord struct {
	RunID         string  `csv:"run_id" json:"run_id"`
	Kind          string  `csv:"kind" json:"kind"`
	Size          int     `csv:"size" json:"size"`
	WallFrequency float64 `csv:"wall_frequency" json:"wall_frequency"`
	Trial         int     `csv:"trial" json:"trial"`
	Seed          uint64  `csv:"seed" json:"seed"`
	Retries       int     `csv:"retries" json:"retries"`

	// Baseline grid A*
	GridExpanded int     `csv:"grid_expanded" json:"grid_expanded"`
	GridCost     float64 `csv:"grid_cost" json:"grid_cost"`
	GridUS       int64   `csv:"grid_us" json:"grid_us"`

	// Quadtree A*
	AQSExpanded int     `csv:"aqs_expanded" json:"aqs_expanded"`
	AQSCost     float64 `csv:"aqs_cost" json:"aqs_cost"`
	AQSSteps    int     `csv:"aqs_steps" json:"aqs_steps"`
	AQSFound    bool    `csv:"aqs_found" json:"aqs_found"`
	AQSUS       int64   `csv:"aqs_us" json:"aqs_us"`

	// Map shape
	Obstacles   int     `csv:"obstacles" json:"obstacles"`
	WalkBlocks  int     `csv:"walk_blocks" json:"walk_blocks"`
	Compression float64 `csv:"compression" json:"compression"`
}

// Summary aggregates the trials of one (kind, size, wall frequency) configuration.
type Summary struct {
	Kind          string  `csv:"kind"`
	Size          int     `csv:"size"`
	WallFrequency float64 `csv:"wall_frequency"`
	Trials        int     `csv:"trials"`

	GridExpandedMean float64 `csv:"grid_expanded_mean"`
	GridExpandedStd  float64 `csv:"grid_expanded_std"`

	AQSExpandedMean float64 `csv:"aqs_expanded_mean"`
	AQSExpandedStd  float64 `csv:"aqs_expanded_std"`
	AQSExpandedP10  float64 `csv:"aqs_expanded_p10"`
	AQSExpandedP50  float64 `csv:"aqs_expanded_p50"`
	AQSExpandedP90  float64 `csv:"aqs_expanded_p90"`

	ExpansionRatio  float64 `csv:"expansion_ratio"`  // aqs_expanded_mean / grid_expanded_mean
	CostRatioMean   float64 `csv:"cost_ratio_mean"`  // aqs_cost / grid_cost over found paths
	CompressionMean float64 `csv:"compression_mean"` // Mean fraction of free cells merged away
	FoundRate       float64 `csv:"found_rate"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeStats calculates mean, sample standard deviation and percentiles.
func ComputeStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// Summarize aggregates records that share a configuration.
func Summarize(kind string, size int, wallFrequency float64, records []TrialRecord) Summary {
	s := Summary{
		Kind:          kind,
		Size:          size,
		WallFrequency: wallFrequency,
		Trials:        len(records),
	}
	if len(records) == 0 {
		return s
	}

	grid := make([]float64, len(records))
	aqs := make([]float64, len(records))
	compression := make([]float64, len(records))
	var costRatios []float64
	found := 0
	for i, r := range records {
		grid[i] = float64(r.GridExpanded)
		aqs[i] = float64(r.AQSExpanded)
		compression[i] = r.Compression
		if r.AQSFound {
			found++
			if r.GridCost > 0 {
				costRatios = append(costRatios, r.AQSCost/r.GridCost)
			}
		}
	}

	s.GridExpandedMean, s.GridExpandedStd, _, _, _ = ComputeStats(grid)
	s.AQSExpandedMean, s.AQSExpandedStd, s.AQSExpandedP10, s.AQSExpandedP50, s.AQSExpandedP90 = ComputeStats(aqs)
	s.CompressionMean = stat.Mean(compression, nil)
	if len(costRatios) > 0 {
		s.CostRatioMean = stat.Mean(costRatios, nil)
	}
	if s.GridExpandedMean > 0 {
		s.ExpansionRatio = s.AQSExpandedMean / s.GridExpandedMean
	}
	s.FoundRate = float64(found) / float64(len(records))
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", s.Kind),
		slog.Int("size", s.Size),
		slog.Float64("wall_frequency", s.WallFrequency),
		slog.Int("trials", s.Trials),
		slog.Float64("grid_expanded_mean", s.GridExpandedMean),
		slog.Float64("aqs_expanded_mean", s.AQSExpandedMean),
		slog.Float64("aqs_expanded_p50", s.AQSExpandedP50),
		slog.Float64("expansion_ratio", s.ExpansionRatio),
		slog.Float64("cost_ratio_mean", s.CostRatioMean),
		slog.Float64("compression_mean", s.CompressionMean),
		slog.Float64("found_rate", s.FoundRate),
	)
}

// LogStats logs the summary using slog.
func (s Summary) LogStats() {
	slog.Info("summary",
		"kind", s.Kind,
		"size", s.Size,
		"wall_frequency", s.WallFrequency,
		"trials", s.Trials,
		"grid_expanded_mean", s.GridExpandedMean,
		"aqs_expanded_mean", s.AQSExpandedMean,
		"expansion_ratio", s.ExpansionRatio,
		"cost_ratio_mean", s.CostRatioMean,
		"compression_mean", s.CompressionMean,
		"found_rate", s.FoundRate,
	)
}
