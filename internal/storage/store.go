package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	configFile     = "config.yaml"
	timeseriesFile = "timeseries.csv"
	stripsFile     = "strips.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Integrator   string             `json:"integrator"`
	Dt           float64            `json:"dt"`
	MaxSteps     int                `json:"max_steps"`
	StepsTaken   int                `json:"steps_taken"`
	MaxSpeedStep int                `json:"max_speed_step"`
	Wind         float64            `json:"wind"`
	Density      float64            `json:"density"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata, the config, the time
// series and, when final is non-nil, the strip distribution of the last
// rotor solve.
func (s *Store) Save(cfg *config.Config, result *sim.Result, final *rotor.State) (string, error) {
	now := time.Now()
	name := cfg.Name
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Name:         name,
		Timestamp:    now,
		Integrator:   cfg.Integrator.Method,
		Dt:           cfg.Integrator.Dt,
		MaxSteps:     cfg.Integrator.MaxSteps,
		StepsTaken:   result.StepsTaken,
		MaxSpeedStep: result.MaxSpeedStep,
		Wind:         cfg.Environment.Wind,
		Density:      cfg.Environment.Density,
		Metrics:      result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, timeseriesFile), func(f *os.File) error {
		return WriteSamplesCSV(f, result.Samples)
	}); err != nil {
		return "", err
	}
	if final != nil {
		if err := writeFile(filepath.Join(runDir, stripsFile), func(f *os.File) error {
			return WriteStripsCSV(f, final)
		}); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the configuration a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), timeseriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadSamplesCSV(f)
}

// LoadResult rebuilds a result from the stored samples and metadata.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	return &sim.Result{
		Samples:      samples,
		MaxSpeedStep: meta.MaxSpeedStep,
		StepsTaken:   meta.StepsTaken,
		Metrics:      meta.Metrics,
	}, nil
}

// LoadStrips returns the stored strip columns keyed by header name.
func (s *Store) LoadStrips(runID string) (map[string][]float64, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), stripsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadColumnsCSV(f)
}

// LoadStripState rebuilds the final rotor solve of a run.
func (s *Store) LoadStripState(runID string) (*rotor.State, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), stripsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStripsCSV(f)
}
