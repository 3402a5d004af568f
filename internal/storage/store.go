package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/physics"
)

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
)

var statsHeader = []string{"step", "time", "dt", "umin", "umax", "vmin", "vmax", "vmean"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Height     int                `json:"height"`
	Width      int                `json:"width"`
	Params     physics.Params     `json:"params"`
	Clamp      bool               `json:"clamp"`
	Steps      int                `json:"steps"`
	Time       float64            `json:"time"`
	Dt         float64            `json:"dt"`
	Wavelength float64            `json:"wavelength,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes meta and the sample series under a fresh run directory and
// returns its ID. Field contents are never stored.
func (s *Store) Save(meta RunMetadata, samples []metrics.Sample) (string, error) {
	if meta.Preset == "" {
		meta.Preset = "custom"
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Preset, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, samples); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func sampleRow(s metrics.Sample) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return []string{strconv.Itoa(s.Step), f(s.Time), f(s.Dt), f(s.UMin), f(s.UMax), f(s.VMin), f(s.VMax), f(s.VMean)}
}

// List returns every readable run, oldest first.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(statsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	samples := make([]metrics.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		smp, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statsFile, i+2, err)
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

func parseRow(rec []string) (metrics.Sample, error) {
	var s metrics.Sample
	step, err := strconv.Atoi(rec[0])
	if err != nil {
		return s, err
	}
	s.Step = step

	vals := make([]float64, len(rec)-1)
	for i, field := range rec[1:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return s, err
		}
		vals[i] = v
	}
	s.Time, s.Dt = vals[0], vals[1]
	s.UMin, s.UMax, s.VMin, s.VMax, s.VMean = vals[2], vals[3], vals[4], vals[5], vals[6]
	return s, nil
}

// StatsPath is where the sample series of runID lives.
func (s *Store) StatsPath(runID string) string {
	return filepath.Join(s.baseDir, runID, statsFile)
}
