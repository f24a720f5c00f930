package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/biome/config"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir          string
	dailyFile    *os.File
	speciesFile  *os.File
	mutationFile *os.File
	perfFile     *os.File
	bookmarkFile *os.File

	// Track if headers have been written
	dailyHeaderWritten    bool
	speciesHeaderWritten  bool
	mutationHeaderWritten bool
	perfHeaderWritten     bool
	bookmarkHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **os.File
	}{
		{"daily.csv", &om.dailyFile},
		{"species.csv", &om.speciesFile},
		{"mutations.csv", &om.mutationFile},
		{"perf.csv", &om.perfFile},
		{"bookmarks.csv", &om.bookmarkFile},
	}
	for _, f := range files {
		fh, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.dst = fh
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// writeCSV appends records, writing the header on the first call.
func writeCSV[T any](f *os.File, headerWritten *bool, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WriteDaily writes a closed day to daily.csv.
func (om *OutputManager) WriteDaily(stats DailyPopulationStats) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.dailyFile, &om.dailyHeaderWritten, []DailyPopulationStats{stats}); err != nil {
		return fmt.Errorf("writing daily stats: %w", err)
	}
	return nil
}

// WriteSpecies writes one species scan to species.csv.
func (om *OutputManager) WriteSpecies(stats []SpeciesStats) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.speciesFile, &om.speciesHeaderWritten, stats); err != nil {
		return fmt.Errorf("writing species stats: %w", err)
	}
	return nil
}

// WriteMutations writes mutation events to mutations.csv.
func (om *OutputManager) WriteMutations(events []MutationEvent) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.mutationFile, &om.mutationHeaderWritten, events); err != nil {
		return fmt.Errorf("writing mutations: %w", err)
	}
	return nil
}

// WritePerf writes one performance window to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, tick int64) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.perfFile, &om.perfHeaderWritten, []PerfStatsCSV{stats.ToCSV(tick)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmarks writes bookmarks to bookmarks.csv.
func (om *OutputManager) WriteBookmarks(marks []Bookmark) error {
	if om == nil {
		return nil
	}
	if err := writeCSV(om.bookmarkFile, &om.bookmarkHeaderWritten, marks); err != nil {
		return fmt.Errorf("writing bookmarks: %w", err)
	}
	return nil
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
	for _, f := range []*os.File{om.dailyFile, om.speciesFile, om.mutationFile, om.perfFile, om.bookmarkFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
