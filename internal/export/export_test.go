package export

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/physics"
	"github.com/san-kum/rdsim/internal/viz"
	"gonum.org/v1/gonum/mat"
)

func testFrames(t *testing.T, n int) []*image.Paletted {
	t.Helper()
	g, err := physics.NewGrayScott(16, 24, physics.WithSeed(2))
	if err != nil {
		t.Fatal(err)
	}
	p, err := viz.NewPalette("viridis")
	if err != nil {
		t.Fatal(err)
	}
	r := viz.NewRenderer(viz.DefaultDisplay(), p)

	frames := make([]*image.Paletted, 0, n)
	for i := 0; i < n; i++ {
		if err := g.Update(); err != nil {
			t.Fatal(err)
		}
		frames = append(frames, r.Image(g.V(), 2))
	}
	return frames
}

func TestGIFRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	rec := NewGIFRecorder(path, 25)
	for _, f := range testFrames(t, 3) {
		if err := rec.AddFrame(f); err != nil {
			t.Fatal(err)
		}
	}
	if rec.Frames() != 3 {
		t.Errorf("frames = %d", rec.Frames())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 3 || anim.Delay[0] != 4 {
		t.Errorf("images=%d delay=%d", len(anim.Image), anim.Delay[0])
	}
	if anim.Config.Width != 48 || anim.Config.Height != 32 {
		t.Errorf("size %dx%d", anim.Config.Width, anim.Config.Height)
	}
}

func TestGIFRecorderFrameLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capped.gif")
	rec := NewGIFRecorder(path, 25)
	if rec.MaxFrames != DefaultMaxFrames {
		t.Errorf("MaxFrames = %d, want %d", rec.MaxFrames, DefaultMaxFrames)
	}
	rec.MaxFrames = 2
	frames := testFrames(t, 3)
	for _, f := range frames[:2] {
		if err := rec.AddFrame(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.AddFrame(frames[2]); !errors.Is(err, ErrFrameLimit) {
		t.Fatalf("third frame: got %v, want ErrFrameLimit", err)
	}
	if rec.Frames() != 2 {
		t.Errorf("frames = %d", rec.Frames())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 2 {
		t.Errorf("images = %d, want 2", len(anim.Image))
	}
}

func TestGIFRecorderEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gif")
	if err := NewGIFRecorder(path, 30).Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty recording should not create a file")
	}
}

func TestMJPEGRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.avi")
	rec, err := NewMJPEGRecorder(path, 48, 32, 10)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, f := range testFrames(t, 2) {
		if err := rec.AddFrame(f); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if rec.Frames() != 2 {
		t.Errorf("frames = %d", rec.Frames())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Contains(data[:16], []byte("AVI ")) {
		t.Error("output is not an AVI file")
	}
}

func TestStatsChart(t *testing.T) {
	samples := []metrics.Sample{
		{Step: 10, Time: 12.5, VMin: 0, VMax: 0.3, VMean: 0.05},
		{Step: 20, Time: 25, VMin: 0, VMax: 0.35, VMean: 0.07},
		{Step: 30, Time: 37.5, VMin: 0.01, VMax: 0.4, VMean: 0.09},
	}

	var buf bytes.Buffer
	if err := StatsChart(&buf, "test", samples, 400, 200); err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 200 {
		t.Errorf("size %v", img.Bounds())
	}

	if err := StatsChart(&buf, "short", samples[:1], 400, 200); err == nil {
		t.Error("expected error for a single sample")
	}
}

func TestFieldToSVG(t *testing.T) {
	p, _ := viz.NewPalette("greys")
	field := mat.NewDense(2, 4, []float64{
		0, 0, 0, 1,
		1, 1, 1, 1,
	})

	svg := FieldToSVG(field, viz.DefaultDisplay(), p, 5)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("malformed svg")
	}
	if n := strings.Count(svg, "<rect "); n != 3 {
		t.Errorf("expected 3 merged rects, got %d", n)
	}
	if !strings.Contains(svg, `width="15.0"`) || !strings.Contains(svg, `width="20.0"`) {
		t.Error("runs not merged")
	}
	if FieldToSVG(&mat.Dense{}, viz.DefaultDisplay(), p, 5) != "" {
		t.Error("expected empty output for empty field")
	}
}

func TestSeriesToSVG(t *testing.T) {
	svg := SeriesToSVG([]float64{0, 1, 2}, []float64{0.1, 0.2, 0.15}, 200, 100, "#00ff00")
	if !strings.Contains(svg, `stroke="#00ff00"`) || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected svg %s", svg)
	}
	if SeriesToSVG([]float64{0}, []float64{1}, 10, 10, "red") != "" {
		t.Error("expected empty output for a single point")
	}
}
