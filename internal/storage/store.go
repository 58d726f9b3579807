package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/globe"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile  = "metadata.json"
	configFile    = "config.yaml"
	framesFile    = "frames.csv"
	positionsFile = "positions.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir is the directory holding a run's files.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Probe     string             `json:"probe"`
	Steps     int                `json:"steps"`
	Count     int                `json:"count"`
	Elapsed   float64            `json:"elapsed_seconds"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Point is one row of positions.csv.
type Point struct {
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Z     float64 `csv:"z"`
}

// Save writes a run directory and returns its id. meta.ID and
// meta.Timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, cfg *config.Config, frames []globe.Frame, positions []r3.Vec) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("run_%s_%s", meta.Timestamp.Format("20060102-150405"), uuid.New().String()[:8])
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}
	runDir := s.Dir(meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, meta, cfg, frames, positions); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return meta.ID, nil
}

// writeRun fills runDir. Metadata goes last so a run only lists once its
// data files are complete.
func writeRun(runDir string, meta RunMetadata, cfg *config.Config, frames []globe.Frame, positions []r3.Vec) error {
	if cfg != nil {
		if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	if err := writeCSV(filepath.Join(runDir, framesFile), frames); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}

	if len(positions) > 0 {
		points := make([]Point, len(positions))
		for i, p := range positions {
			points[i] = Point{Index: i, X: p.X, Y: p.Y, Z: p.Z}
		}
		if err := writeCSV(filepath.Join(runDir, positionsFile), points); err != nil {
			return fmt.Errorf("writing positions: %w", err)
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// List returns every readable run, newest first. Directories without valid
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig reads the configuration a run was recorded with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

func (s *Store) LoadFrames(runID string) ([]globe.Frame, error) {
	var frames []globe.Frame
	if err := readCSV(filepath.Join(s.Dir(runID), framesFile), &frames); err != nil {
		return nil, err
	}
	return frames, nil
}

// LoadPositions returns the final particle positions of a run, or an
// empty slice when none were recorded.
func (s *Store) LoadPositions(runID string) ([]r3.Vec, error) {
	var points []Point
	err := readCSV(filepath.Join(s.Dir(runID), positionsFile), &points)
	if os.IsNotExist(err) {
		return []r3.Vec{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]r3.Vec, len(points))
	for _, p := range points {
		if p.Index < 0 || p.Index >= len(out) {
			return nil, fmt.Errorf("positions for %s: index %d out of range", runID, p.Index)
		}
		out[p.Index] = r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out, nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return gocsv.MarshalFile(rows, f)
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil
		}
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
