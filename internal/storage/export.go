package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rdsim/internal/metrics"
)

type ExportData struct {
	RunMetadata
	Samples []metrics.Sample `json:"samples"`
}

// ExportJSON writes a run's metadata and samples as one indented document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: *meta, Samples: samples})
}

// ExportCSV copies a run's stats.csv to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return WriteCSV(w, samples)
}
