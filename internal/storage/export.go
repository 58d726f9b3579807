package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/globe"
)

type ExportData struct {
	Run       RunMetadata        `json:"run"`
	Config    *config.Config     `json:"config,omitempty"`
	Frames    []globe.Frame      `json:"frames"`
	Positions [][3]float64       `json:"positions,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Export gathers everything recorded for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	positions, err := s.LoadPositions(runID)
	if err != nil {
		return nil, err
	}
	// older runs may predate config.yaml
	cfg, _ := s.LoadConfig(runID)

	data := &ExportData{
		Run:       *meta,
		Config:    cfg,
		Frames:    frames,
		Positions: make([][3]float64, len(positions)),
		Metrics:   meta.Metrics,
	}
	for i, p := range positions {
		data.Positions[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return data, nil
}

// ExportJSON writes a run as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
