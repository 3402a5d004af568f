package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/physics"
)

func testRun() (RunMetadata, []metrics.Sample) {
	meta := RunMetadata{
		Preset:  "mitosis",
		Seed:    42,
		Height:  64,
		Width:   64,
		Params:  physics.Params{Du: 0.16, Dv: 0.08, F: 0.0367, K: 0.0649},
		Steps:   200,
		Time:    250,
		Dt:      1.25,
		Metrics: map[string]float64{"stability": 1},
	}
	samples := []metrics.Sample{
		{Step: 100, Time: 125, Dt: 1.25, UMin: 0.3, UMax: 1, VMin: 0, VMax: 0.41, VMean: 0.05},
		{Step: 200, Time: 250, Dt: 1.25, UMin: 0.25, UMax: 0.99, VMin: 0.001, VMax: 0.45, VMean: 0.0712345678901},
	}
	return meta, samples
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, samples := testRun()
	runID, err := st.Save(meta, samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "mitosis_") {
		t.Errorf("unexpected run id %q", runID)
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.ID != runID || got.Seed != 42 || got.Params != meta.Params {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if got.Metrics["stability"] != 1 {
		t.Errorf("expected stability 1, got %v", got.Metrics["stability"])
	}

	loaded, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(loaded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(loaded))
	}
	for i := range samples {
		if loaded[i] != samples[i] {
			t.Errorf("sample %d: got %+v, want %+v", i, loaded[i], samples[i])
		}
	}
}

func TestStoreDefaultsPresetName(t *testing.T) {
	st := New(t.TempDir())
	meta, _ := testRun()
	meta.Preset = ""
	runID, err := st.Save(meta, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "custom_") {
		t.Errorf("unexpected run id %q", runID)
	}
	samples, err := st.LoadSamples(runID)
	if err != nil || len(samples) != 0 {
		t.Errorf("expected no samples, got %v, %v", samples, err)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	meta, samples := testRun()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	meta.Timestamp = base.Add(time.Hour)
	later, _ := st.Save(meta, samples)
	meta.Timestamp = base
	earlier, _ := st.Save(meta, samples)

	if err := os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != earlier || runs[1].ID != later {
		t.Errorf("runs not sorted by time: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	meta, samples := testRun()
	runID, err := st.Save(meta, samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "stats.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
	if st.StatsPath(runID) != filepath.Join(runDir, "stats.csv") {
		t.Errorf("unexpected stats path %s", st.StatsPath(runID))
	}

	data, err := os.ReadFile(filepath.Join(runDir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "step,time,dt,umin,umax,vmin,vmax,vmean\n") {
		t.Errorf("unexpected header in %q", data)
	}
}

func TestLoadSamplesMalformed(t *testing.T) {
	st := New(t.TempDir())
	meta, samples := testRun()
	runID, _ := st.Save(meta, samples)

	bad := "step,time,dt,umin,umax,vmin,vmax,vmean\n1,x,1,0,1,0,1,0\n"
	if err := os.WriteFile(st.StatsPath(runID), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadSamples(runID); err == nil {
		t.Error("expected parse error")
	}
	if _, err := st.LoadSamples("missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	meta, samples := testRun()
	runID, _ := st.Save(meta, samples)

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != runID || len(got.Samples) != 2 || got.Samples[1].Step != 200 {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	meta, samples := testRun()
	runID, _ := st.Save(meta, samples)

	var buf bytes.Buffer
	if err := st.ExportCSV(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	saved, _ := os.ReadFile(st.StatsPath(runID))
	if buf.String() != string(saved) {
		t.Errorf("csv export differs from stored file:\n%s\n%s", buf.String(), saved)
	}
}
