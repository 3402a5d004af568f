package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rdsim/internal/analysis"
	"github.com/san-kum/rdsim/internal/automation"
	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/experiment"
	"github.com/san-kum/rdsim/internal/export"
	"github.com/san-kum/rdsim/internal/gui"
	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/physics"
	"github.com/san-kum/rdsim/internal/storage"
	"github.com/san-kum/rdsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

// resolveConfig layers defaults, the preset, the config file and finally
// any flag set on the command line. A positional argument names the preset.
// The returned name labels saved runs.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "custom"
	if len(args) > 0 {
		preset = args[0]
	}

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	// config file overrides preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	fl := cmd.Flags()
	if fl.Changed("height") {
		cfg.Height = height
	}
	if fl.Changed("width") {
		cfg.Width = width
	}
	if fl.Changed("seed") {
		cfg.Seed = seed
	}
	if fl.Changed("steps") {
		cfg.Steps = steps
	}
	if fl.Changed("F") {
		cfg.Params.F = feed
	}
	if fl.Changed("k") {
		cfg.Params.K = kill
	}
	if fl.Changed("du") {
		cfg.Params.Du = du
	}
	if fl.Changed("dv") {
		cfg.Params.Dv = dv
	}
	if fl.Changed("strength") {
		cfg.RandomStrength = strength
	}
	if fl.Changed("clamp") {
		cfg.Clamp = clamp
	}
	if fl.Changed("workers") {
		cfg.Workers = workers
	}
	if fl.Changed("contrast") {
		cfg.Display.Contrast = contrast
	}
	if fl.Changed("draw-skip") {
		cfg.Display.DrawSkip = drawSkip
	}
	if fl.Changed("fps") {
		cfg.Display.FPS = frameRate
	}
	if fl.Changed("colormap") {
		cfg.Display.Colormap = colormap
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, name, cfg.Validate()
}

func newDisplay(cfg *config.Config) (*viz.Display, viz.Palette, error) {
	p, err := viz.NewPalette(cfg.Display.Colormap)
	if err != nil {
		return nil, viz.Palette{}, err
	}
	return &viz.Display{Contrast: cfg.Display.Contrast, DrawSkip: cfg.Display.DrawSkip}, p, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	g, err := experiment.NewEngine(cfg)
	if err != nil {
		return err
	}
	d, pal, err := newDisplay(cfg)
	if err != nil {
		return err
	}

	// the viewer owns the terminal, so logs go to a file or nowhere
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "rdsim")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	m := viz.NewModel(g, d, pal, name, cfg.Display.FPS).
		WithStrength(cfg.RandomStrength).
		WithTheme(theme)
	m.NewRecorder = func() (viz.FrameSink, error) {
		path := fmt.Sprintf("%s_%d.gif", name, time.Now().Unix())
		log.Printf("recording to %s", path)
		return export.NewGIFRecorder(path, cfg.Display.FPS), nil
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	g, err := experiment.NewEngine(cfg)
	if err != nil {
		return err
	}
	d, pal, err := newDisplay(cfg)
	if err != nil {
		return err
	}
	return gui.Run(g, d, pal, name, cfg.RandomStrength)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	g := exp.Engine()
	rec := metrics.NewRecorder(sampleEvery)
	exp.AddMetric(rec)
	exp.AddMetric(metrics.NewStability(0.05))
	exp.AddMetric(metrics.NewCoverage())
	exp.AddMetric(metrics.NewActivity())

	sinks, err := openSinks(cfg)
	if err != nil {
		return err
	}
	var frameErr error
	full := make([]bool, len(sinks))
	if len(sinks) > 0 {
		d, pal, err := newDisplay(cfg)
		if err != nil {
			return err
		}
		r := viz.NewRenderer(d, pal)
		every := max(1, frameEvery)
		exp.AddObserver(dynamo.ObserverFunc(func(step int, _ float64) {
			if frameErr != nil || step%every != 0 {
				return
			}
			img := r.Image(g.V(), frameScale)
			for i, s := range sinks {
				if full[i] {
					continue
				}
				err := s.AddFrame(img)
				switch {
				case errors.Is(err, export.ErrFrameLimit):
					log.Printf("recording: %v; later frames dropped", err)
					full[i] = true
				case err != nil:
					frameErr = err
				}
			}
		}))
	}
	if verbose {
		every := max(1, sampleEvery)
		exp.AddObserver(dynamo.ObserverFunc(func(step int, t float64) {
			if step%every == 0 {
				s := g.Stats()
				log.Printf("update %d/%d t=%.1f umin=%.4f umax=%.4f vmin=%.4f vmax=%.4f dt=%.4f",
					step, cfg.Steps, t, s.UMin, s.UMax, s.VMin, s.VMax, g.Dt())
			}
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%dx%d, F=%.4f k=%.4f) for %d steps...\n",
		name, cfg.Height, cfg.Width, cfg.Params.F, cfg.Params.K, cfg.Steps)
	start := time.Now()

	result, runErr := exp.Run(ctx, cfg.Steps)
	elapsed := time.Since(start)

	for _, s := range sinks {
		if err := s.Close(); err != nil && frameErr == nil {
			frameErr = err
		}
	}
	if result == nil {
		return runErr
	}
	if runErr != nil {
		fmt.Printf("stopped early: %v\n", runErr)
	}

	pattern, err := analysis.Summarize(g.V())
	if err != nil {
		return err
	}
	result.Metrics["coverage"] = pattern.Coverage

	runID, err := st.Save(storage.RunMetadata{
		Preset:     name,
		Seed:       cfg.Seed,
		Height:     cfg.Height,
		Width:      cfg.Width,
		Params:     g.Params(),
		Clamp:      cfg.Clamp,
		Steps:      g.Steps(),
		Time:       result.Time,
		Dt:         result.Dt,
		Wavelength: pattern.Wavelength,
		Metrics:    result.Metrics,
	}, rec.Samples())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%.0f steps/s)\n", elapsed.Round(time.Millisecond), float64(result.StepsTaken)/elapsed.Seconds())
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  time: %.1f  dt: %.4f\n", g.Steps(), result.Time, result.Dt)
	fmt.Printf("pattern: %s\n", pattern)
	if last, ok := rec.Last(); ok {
		fmt.Printf("last sample: u [%.4f, %.4f]  v [%.4f, %.4f]  mean v %.4f\n",
			last.UMin, last.UMax, last.VMin, last.VMax, last.VMean)
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.6f\n", n, result.Metrics[n])
	}

	if frameErr != nil {
		return fmt.Errorf("recording: %w", frameErr)
	}
	return runErr
}

func openSinks(cfg *config.Config) ([]viz.FrameSink, error) {
	var sinks []viz.FrameSink
	if gifPath != "" {
		sinks = append(sinks, export.NewGIFRecorder(gifPath, cfg.Display.FPS))
	}
	if aviPath != "" {
		scale := max(1, frameScale)
		avi, err := export.NewMJPEGRecorder(aviPath, cfg.Width*scale, cfg.Height*scale, cfg.Display.FPS)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, avi)
	}
	return sinks, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSIZE\tSTEPS\tF\tK\tWAVELENGTH")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%.4f\t%.4f\t%.2f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Height, run.Width,
			run.Steps,
			run.Params.F,
			run.Params.K,
			run.Wavelength,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s  F=%.4f k=%.4f\n", meta.Preset, meta.Params.F, meta.Params.K)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		pick    func(metrics.Sample) float64
	}{
		{"mean v", func(s metrics.Sample) float64 { return s.VMean }},
		{"max v", func(s metrics.Sample) float64 { return s.VMax }},
		{"min u", func(s metrics.Sample) float64 { return s.UMin }},
	}
	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.pick(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if pngPath != "" {
		f, err := os.Create(pngPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.StatsChart(f, meta.ID, samples, 1024, 400); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", pngPath)
	}

	if svgPath != "" {
		ts := make([]float64, len(samples))
		vm := make([]float64, len(samples))
		for i, s := range samples {
			ts[i], vm[i] = s.Time, s.VMean
		}
		if err := os.WriteFile(svgPath, []byte(export.SeriesToSVG(ts, vm, 800, 300, "#00ccff")), 0644); err != nil {
			return err
		}
		fmt.Printf("series written to %s\n", svgPath)
	}
	return nil
}

func output() (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.New(dataDir).ExportCSV(w, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.New(dataDir).ExportJSON(w, args[0])
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if scanParam != "" {
		g, err := experiment.NewEngine(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("scanning %s over [%.4f, %.4f] (%d points, %d steps each)\n\n", scanParam, scanLo, scanHi, scanN, cfg.Steps)
		points, err := analysis.ScanParameter(ctx, g, scanParam, scanLo, scanHi, scanN, cfg.Steps, cfg.RandomStrength)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\tWAVELENGTH\tCOVERAGE\n", scanParam)
		for _, p := range points {
			fmt.Fprintf(w, "%.4f\t%.2f\t%.1f%%\n", p.Param, p.Wavelength, 100*p.Coverage)
		}
		w.Flush()
		if err != nil {
			return err
		}
		if len(points) > 1 {
			fmt.Println()
			fmt.Println(analysis.ScanPlot(points, scanParam, 60, 12))
		}
		return nil
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	g := exp.Engine()
	var portrait *analysis.PhasePortrait
	if phase {
		portrait = analysis.NewPhasePortrait(sampleEvery)
		exp.AddObserver(dynamo.ObserverFunc(func(step int, _ float64) {
			portrait.Record(step, g.U(), g.V())
		}))
	}
	fmt.Printf("running %s for %d steps...\n", name, cfg.Steps)
	if _, err := exp.Run(ctx, cfg.Steps); err != nil {
		return err
	}
	v := g.V()

	pattern, err := analysis.Summarize(v)
	if err != nil {
		return err
	}
	fmt.Printf("pattern: %s\n\n", pattern)

	power, err := analysis.Spectrum(v)
	if err != nil {
		return err
	}
	if len(power) > 2 {
		graph := asciigraph.Plot(power[1:],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("radial power spectrum (wavenumber >= 1)"),
		)
		fmt.Println(graph)
	}

	if portrait != nil && len(portrait.Points) > 0 {
		us, vs := portrait.Coords()
		fmt.Printf("\nphase portrait, mean u [%.4f, %.4f] vs mean v [%.4f, %.4f]\n",
			floats.Min(us), floats.Max(us), floats.Min(vs), floats.Max(vs))
		fmt.Println(viz.PhasePlot(us, vs, 60, 15, viz.GetTheme(theme)))
	}

	if svgPath != "" {
		d, pal, err := newDisplay(cfg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgPath, []byte(export.FieldToSVG(v, d, pal, 2)), 0644); err != nil {
			return err
		}
		fmt.Printf("field written to %s\n", svgPath)
	}

	if lyapSteps > 0 {
		div, err := analysis.LyapunovExponent(ctx, g, lyapSteps, 1e-6)
		if err != nil {
			return err
		}
		verdict := "nearby patterns converge"
		if div.Exponent > 0 {
			verdict = "nearby patterns diverge"
		}
		fmt.Printf("\nlyapunov exponent over %d updates: %.5f (%s)\n", lyapSteps, div.Exponent, verdict)
		fmt.Println(asciigraph.Plot(div.Growth,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("ln(separation / eps) per update"),
		))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tF\tK\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%s\n", name, p.F, p.K, p.Description)
	}
	return w.Flush()
}

func benchEngine(cmd *cobra.Command, args []string) error {
	sizes := []int{64, 128, 256, 512}
	workerCounts := []int{1}
	if n := runtime.NumCPU(); n > 1 {
		workerCounts = append(workerCounts, n)
	}
	n := max(1, benchSteps)

	fmt.Printf("benchmarking %d updates per grid\n\n", n)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tWORKERS\tTIME\tSTEPS/SEC\tMCELLS/SEC")

	for _, size := range sizes {
		for _, wk := range workerCounts {
			g, err := physics.NewGrayScott(size, size, physics.WithSeed(42), physics.WithWorkers(wk))
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < n; i++ {
				if err := g.Update(); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			rate := float64(n) / elapsed.Seconds()
			fmt.Fprintf(w, "%dx%d\t%d\t%v\t%.1f\t%.2f\n",
				size, size, wk, elapsed.Round(time.Millisecond), rate, rate*float64(size*size)/1e6)
		}
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if ensemble > 0 {
		fmt.Printf("ensemble of %d seeds, F=%.4f k=%.4f, %d steps\n", ensemble, cfg.Params.F, cfg.Params.K, cfg.Steps)
		es, err := automation.RunEnsemble(ctx, cfg, ensemble, cfg.Steps, parallel)
		if err != nil {
			return err
		}
		fmt.Printf("wavelength: %.2f ± %.2f cells\n", es.MeanWavelength, es.StdWavelength)
		fmt.Printf("coverage:   %.1f%%\n", 100*es.MeanCoverage)
		return nil
	}

	sw := &automation.Sweep{
		Base:     cfg,
		FMin:     fMin,
		FMax:     fMax,
		KMin:     kMin,
		KMax:     kMax,
		NF:       nF,
		NK:       nK,
		Steps:    cfg.Steps,
		Parallel: parallel,
	}
	fmt.Printf("sweeping %dx%d grid, %d steps per point...\n", nF, nK, cfg.Steps)
	start := time.Now()
	results, err := automation.RunSweep(ctx, sw)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "F\tK\tWAVELENGTH\tCOVERAGE\tSTABILITY\tSTATUS")
	for _, r := range results {
		status := "ok"
		if r.Failed != "" {
			status = r.Failed
		}
		fmt.Fprintf(w, "%.4f\t%.4f\t%.2f\t%.1f%%\t%.3f\t%s\n",
			r.F, r.K, r.Pattern.Wavelength, 100*r.Pattern.Coverage, r.Stability, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	var logger *log.Logger
	if verbose {
		logger = log.New(os.Stderr, "scenario: ", log.LstdFlags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %s\n\n", sc.Name, sc.Description)
	results, runErr := automation.RunScenario(ctx, sc, sampleEvery, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tF\tK\tSTEPS\tTIME\tV MEAN\tTREND\tPATTERN")
	for _, r := range results {
		trend := make([]float64, len(r.Samples))
		for i, s := range r.Samples {
			trend[i] = s.VMean
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%d\t%.1f\t%.4f\t%s\t%s\n",
			r.Name, r.Params.F, r.Params.K, r.Steps, r.Time, r.Final.VMean, viz.SparklineChart(trend, 16), r.Pattern)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if runErr != nil || len(results) == 0 {
		return runErr
	}

	cfg, err := sc.Config()
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	last := results[len(results)-1]
	runID, err := st.Save(storage.RunMetadata{
		Preset:     sc.Name,
		Seed:       last.Seed,
		Height:     cfg.Height,
		Width:      cfg.Width,
		Params:     last.Params,
		Clamp:      cfg.Clamp,
		Steps:      last.Steps,
		Time:       last.Time,
		Wavelength: last.Pattern.Wavelength,
		Metrics:    map[string]float64{"coverage": last.Pattern.Coverage, "v_mean": last.Final.VMean},
	}, last.Samples)
	if err != nil {
		return err
	}
	fmt.Printf("\nfinal stage saved as %s\n", runID)
	return nil
}
