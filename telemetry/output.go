package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/segmentio/encoding/json"

	"github.com/pthm-cable/quadstar/components"
	"github.com/pthm-cable/quadstar/config"
)

// PathExport is the JSON form of a single search result.
type PathExport struct {
	RunID     string              `json:"run_id,omitempty"`
	Size      int                 `json:"size"`
	Start     components.Point    `json:"start"`
	Goal      components.Point    `json:"goal"`
	Heuristic string              `json:"heuristic"`
	Found     bool                `json:"found"`
	Cost      float64             `json:"cost"`
	Expanded  int                 `json:"expanded"`
	Steps     []components.Region `json:"steps"`
}

// OutputManager handles structured benchmark output with CSV logging.
type OutputManager struct {
	dir         string
	runsFile    *os.File
	summaryFile *os.File
	perfFile    *os.File

	// Track if headers have been written
	runsHeaderWritten    bool
	summaryHeaderWritten bool
	perfHeaderWritten    bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	// Create output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "runs.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating runs.csv: %w", err)
	}
	om.runsFile = f

	f, err = os.Create(filepath.Join(dir, "summary.csv"))
	if err != nil {
		om.runsFile.Close()
		return nil, fmt.Errorf("creating summary.csv: %w", err)
	}
	om.summaryFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.runsFile.Close()
		om.summaryFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteTrial writes a trial record to runs.csv.
func (om *OutputManager) WriteTrial(r TrialRecord) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.runsFile, []TrialRecord{r}, &om.runsHeaderWritten); err != nil {
		return fmt.Errorf("writing trial: %w", err)
	}
	return nil
}

// WriteSummary writes a configuration summary to summary.csv.
func (om *OutputManager) WriteSummary(s Summary) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.summaryFile, []Summary{s}, &om.summaryHeaderWritten); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, trials int) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.perfFile, []PerfStatsCSV{stats.ToCSV(trials)}, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WritePath saves a search result as JSON under name in the output directory.
func (om *OutputManager) WritePath(name string, p PathExport) error {
	if om == nil {
		return nil
	}
	return WriteJSON(filepath.Join(om.dir, name), p)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.runsFile, om.summaryFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeCSV appends records, emitting the header only on the first write.
func writeCSV[T any](f *os.File, records []T, headerWritten *bool) error {
	if !*headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	return gocsv.MarshalWithoutHeaders(records, f)
}
