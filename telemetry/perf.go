package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one benchmark trial.
const (
	PhaseGenerate   = "generate"
	PhaseBuild      = "build"
	PhaseGridSearch = "grid_search"
	PhaseAQSSearch  = "aqs_search"
)

var phases = []string{PhaseGenerate, PhaseBuild, PhaseGridSearch, PhaseAQSSearch}

// PerfSample holds timing data for a single trial.
type PerfSample struct {
	TrialDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	trialStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for the viewer)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of trials to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTrial begins timing a new trial.
func (p *PerfCollector) StartTrial() {
	p.trialStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTrial finishes timing the current trial and records the sample.
// It returns the recorded sample.
func (p *PerfCollector) EndTrial() PerfSample {
	now := time.Now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
		p.lastPhase = ""
	}

	sample := PerfSample{
		TrialDuration: now.Sub(p.trialStart),
		Phases:        p.currentPhases,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	return sample
}

// AbortTrial discards the current trial without recording a sample.
func (p *PerfCollector) AbortTrial() {
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// Samples returns the number of trials in the window.
func (p *PerfCollector) Samples() int {
	return p.sampleCount
}

// RecordFrame records frame timing for the viewer.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Trial timing
	AvgTrialDuration time.Duration
	MinTrialDuration time.Duration
	MaxTrialDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total trial time
	PhasePct map[string]float64

	// Throughput
	TrialsPerSecond float64

	// Frame timing (viewer)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	// Frame timing is always available (independent of trial samples)
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var total time.Duration
	var minTrial, maxTrial time.Duration
	phaseSum := make(map[string]time.Duration)

	// Iterate over valid samples
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.TrialDuration

		if i == 0 || s.TrialDuration < minTrial {
			minTrial = s.TrialDuration
		}
		if s.TrialDuration > maxTrial {
			maxTrial = s.TrialDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	// Calculate phase averages and percentages
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgTrialDuration: avg,
		MinTrialDuration: minTrial,
		MaxTrialDuration: maxTrial,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		TrialsPerSecond:  perSec,
		FrameDuration:    p.frameDuration,
		FPS:              fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_trial_us", s.AvgTrialDuration.Microseconds(),
		"min_trial_us", s.MinTrialDuration.Microseconds(),
		"max_trial_us", s.MaxTrialDuration.Microseconds(),
		"trials_per_sec", int(s.TrialsPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_trial_us", s.AvgTrialDuration.Microseconds()),
		slog.Int64("min_trial_us", s.MinTrialDuration.Microseconds()),
		slog.Int64("max_trial_us", s.MaxTrialDuration.Microseconds()),
		slog.Float64("trials_per_sec", s.TrialsPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Trials        int     `csv:"trials"`
	AvgTrialUS    int64   `csv:"avg_trial_us"`
	MinTrialUS    int64   `csv:"min_trial_us"`
	MaxTrialUS    int64   `csv:"max_trial_us"`
	TrialsPerSec  float64 `csv:"trials_per_sec"`
	GeneratePct   float64 `csv:"generate_pct"`
	BuildPct      float64 `csv:"build_pct"`
	GridSearchPct float64 `csv:"grid_search_pct"`
	AQSSearchPct  float64 `csv:"aqs_search_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(trials int) PerfStatsCSV {
	return PerfStatsCSV{
		Trials:        trials,
		AvgTrialUS:    s.AvgTrialDuration.Microseconds(),
		MinTrialUS:    s.MinTrialDuration.Microseconds(),
		MaxTrialUS:    s.MaxTrialDuration.Microseconds(),
		TrialsPerSec:  s.TrialsPerSecond,
		GeneratePct:   s.PhasePct[PhaseGenerate],
		BuildPct:      s.PhasePct[PhaseBuild],
		GridSearchPct: s.PhasePct[PhaseGridSearch],
		AQSSearchPct:  s.PhasePct[PhaseAQSSearch],
	}
}
