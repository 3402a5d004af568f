package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string

	height   int
	width    int
	seed     int64
	steps    int
	feed     float64
	kill     float64
	du       float64
	dv       float64
	strength float64
	clamp    bool
	workers  int

	contrast  float64
	drawSkip  int
	frameRate int
	colormap  string
	logFile   string
	theme     string

	gifPath     string
	aviPath     string
	frameEvery  int
	frameScale  int
	sampleEvery int

	pngPath string
	outPath string
	svgPath string

	scanParam string
	scanLo    float64
	scanHi    float64
	scanN     int
	phase     bool
	lyapSteps int

	fMin, fMax float64
	kMin, kMax float64
	nF, nK     int
	parallel   int
	ensemble   int

	benchSteps int
)

// main registers the commands and runs the terminal viewer when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "rdsim [preset]",
		Short: "gray-scott reaction-diffusion lab",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rdsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress")
	addSimFlags(rootCmd)
	addDisplayFlags(rootCmd)
	rootCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "panel theme (cyberpunk, ocean, minimal)")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	addDisplayFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "panel theme (cyberpunk, ocean, minimal)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run headless and save statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	addDisplayFlags(runCmd)
	runCmd.Flags().StringVar(&gifPath, "gif", "", "record frames to a GIF file")
	runCmd.Flags().StringVar(&aviPath, "avi", "", "record frames to a Motion-JPEG AVI file")
	runCmd.Flags().IntVar(&frameEvery, "frame-every", 50, "steps between recorded frames")
	runCmd.Flags().IntVar(&frameScale, "scale", 2, "pixels per cell in recordings")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "steps between recorded samples")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "also render a PNG chart to this path")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the mean of v as an SVG line")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run statistics to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and statistics to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [preset]",
		Short: "pattern wavelength and coverage",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	addSimFlags(analyzeCmd)
	addDisplayFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&scanParam, "scan", "", "scan a parameter (F, k, Du, Dv)")
	analyzeCmd.Flags().Float64Var(&scanLo, "lo", 0.01, "scan lower bound")
	analyzeCmd.Flags().Float64Var(&scanHi, "hi", 0.08, "scan upper bound")
	analyzeCmd.Flags().IntVar(&scanN, "n", 8, "scan points")
	analyzeCmd.Flags().StringVar(&svgPath, "svg", "", "write the final v field as SVG")
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "plot the (mean u, mean v) trajectory")
	analyzeCmd.Flags().IntVar(&lyapSteps, "lyapunov", 0, "estimate the Lyapunov exponent over this many further updates")
	analyzeCmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "steps between phase portrait points")
	analyzeCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "plot accent theme (cyberpunk, ocean, minimal)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark update throughput",
		RunE:  benchEngine,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 200, "updates per measurement")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "map patterns over a feed/kill grid",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&fMin, "f-min", 0.01, "lowest feed rate")
	sweepCmd.Flags().Float64Var(&fMax, "f-max", 0.08, "highest feed rate")
	sweepCmd.Flags().Float64Var(&kMin, "k-min", 0.045, "lowest kill rate")
	sweepCmd.Flags().Float64Var(&kMax, "k-max", 0.07, "highest kill rate")
	sweepCmd.Flags().IntVar(&nF, "nf", 6, "feed samples")
	sweepCmd.Flags().IntVar(&nK, "nk", 6, "kill samples")
	sweepCmd.Flags().IntVar(&parallel, "parallel", runtime.NumCPU(), "engines run at once")
	sweepCmd.Flags().IntVar(&ensemble, "ensemble", 0, "instead of a grid, repeat the configuration over this many seeds")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted parameter schedule",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "steps between recorded samples")

	guiCmd := &cobra.Command{
		Use:   "gui [preset]",
		Short: "run in a raylib window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	addSimFlags(guiCmd)
	addDisplayFlags(guiCmd)

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, analyzeCmd, presetsCmd, benchCmd, sweepCmd, scenarioCmd, guiCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use a named preset")
	f.IntVar(&height, "height", 256, "grid rows")
	f.IntVar(&width, "width", 256, "grid columns")
	f.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	f.IntVar(&steps, "steps", 5000, "number of updates")
	f.Float64Var(&feed, "F", 0.060, "feed rate")
	f.Float64Var(&kill, "k", 0.062, "kill rate")
	f.Float64Var(&du, "du", 0.16, "diffusion rate of u")
	f.Float64Var(&dv, "dv", 0.08, "diffusion rate of v")
	f.Float64Var(&strength, "strength", 0.2, "initial noise amplitude in [0, 1]")
	f.BoolVar(&clamp, "clamp", false, "clip u and v to [0, 1] after each update")
	f.IntVar(&workers, "workers", 1, "goroutines per update (0 uses every CPU)")
}

func addDisplayFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&contrast, "contrast", 2.5, "display contrast")
	f.IntVar(&drawSkip, "draw-skip", 1, "updates per drawn frame")
	f.IntVar(&frameRate, "fps", 30, "frame rate")
	f.StringVar(&colormap, "colormap", "turbo", "colormap name")
	f.StringVar(&logFile, "log", "", "write logs to this file while the viewer runs")
}
