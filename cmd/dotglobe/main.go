package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dotglobe/internal/automation"
	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/export"
	"github.com/san-kum/dotglobe/internal/globe"
	"github.com/san-kum/dotglobe/internal/metrics"
	"github.com/san-kum/dotglobe/internal/observability"
	"github.com/san-kum/dotglobe/internal/probe"
	"github.com/san-kum/dotglobe/internal/storage"
	"github.com/san-kum/dotglobe/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string
	pick       bool

	count     int
	steps     int
	probeName string
	radius    float64
	strength  float64
	decay     float64
	workers   int
	noSave    bool
	positions bool

	outFile    string
	benchSteps int

	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepN      int
	hoverSteps  int
	settleSteps int
	threshold   float64

	svgSize  int
	svgYaw   float64
	svgPitch float64
	cullBack bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "dotglobe",
		Short:        "interactive particle globe",
		SilenceUsage: true,
		RunE:         runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dotglobe", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
	rootCmd.Flags().BoolVar(&pick, "pick", false, "choose a preset from a menu first")
	addPhysicsFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation with a scripted cursor",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addPhysicsFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", 600, "number of steps")
	runCmd.Flags().StringVar(&probeName, "probe", "orbit", "cursor path ("+strings.Join(probe.Names(), ", ")+")")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")
	runCmd.Flags().BoolVar(&positions, "positions", false, "record final particle positions")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the scatter step",
		Args:  cobra.NoArgs,
		RunE:  benchScatter,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 200, "steps per measurement")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario from a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "measure peak displacement and settle time across a parameter range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "decay", "parameter to vary ("+strings.Join(automation.SweepParams, ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.98, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 7, "number of values")
	sweepCmd.Flags().IntVar(&hoverSteps, "hover", 60, "steps with the cursor held")
	sweepCmd.Flags().IntVar(&settleSteps, "settle", 2000, "maximum steps to wait for rest")
	sweepCmd.Flags().Float64Var(&threshold, "threshold", 1e-4, "peak displacement that counts as rest")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run's final globe and displacement history to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output directory (default: the run directory)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image size in pixels")
	exportSVGCmd.Flags().Float64Var(&svgYaw, "yaw", 0, "camera yaw (radians)")
	exportSVGCmd.Flags().Float64Var(&svgPitch, "pitch", 0.3, "camera pitch (radians)")
	exportSVGCmd.Flags().BoolVar(&cullBack, "cull", false, "hide the far hemisphere")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportSVGCmd, presetsCmd, configCmd, benchCmd, scenarioCmd, sweepCmd)

	err := rootCmd.Execute()
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func addPhysicsFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&count, "count", config.DefaultCount, "particle count")
	cmd.Flags().Float64Var(&radius, "radius", config.DefaultScatterRadius, "scatter radius")
	cmd.Flags().Float64Var(&strength, "strength", config.DefaultScatterStrength, "scatter strength")
	cmd.Flags().Float64Var(&decay, "decay", config.DefaultDecay, "per-step decay factor")
	cmd.Flags().IntVar(&workers, "workers", 1, "parallel workers for the scatter step")
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("radius") {
		cfg.Scatter.Radius = radius
	}
	if flags.Changed("strength") {
		cfg.Scatter.Strength = strength
	}
	if flags.Changed("decay") {
		cfg.Decay = decay
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup resolves the configuration and starts logging. quiet discards
// console logs while a full-screen view owns the terminal; a configured log
// file still receives them.
func setup(cmd *cobra.Command, quiet bool) (*config.Config, *zap.Logger, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if quiet {
		observability.Initialize(cfg.Log, zapcore.AddSync(io.Discard))
	} else {
		observability.InitializeLogger(cfg.Log)
	}
	return cfg, observability.GetLogger(), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, true)
	if err != nil {
		return err
	}

	if pick {
		return viz.RunPicker(globe.WithLogger(log))
	}

	g, err := globe.New(cfg, globe.WithLogger(log))
	if err != nil {
		return err
	}
	return viz.Run(g)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, false)
	if err != nil {
		return err
	}

	src, err := probe.Parse(probeName)
	if err != nil {
		return err
	}

	g, err := globe.New(cfg, globe.WithLogger(log))
	if err != nil {
		return err
	}
	for _, m := range metrics.Defaults() {
		g.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d steps on %d particles (probe: %s)...\n", steps, cfg.Count, probeName)
	result, err := g.Run(ctx, steps, src)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted after %d steps\n", len(result.Frames))
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Defaults() {
		fmt.Printf("  %s: %.6f\n", m.Name(), result.Metrics[m.Name()])
	}

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var final []r3.Vec
	if positions {
		final = g.Positions()
	}
	runID, err := st.Save(storage.RunMetadata{
		Probe:   probeName,
		Steps:   len(result.Frames),
		Count:   cfg.Count,
		Elapsed: result.Elapsed.Seconds(),
		Metrics: result.Metrics,
	}, cfg, result.Frames, final)
	if err != nil {
		return err
	}
	log.Info("saved run", zap.String("run_id", runID), zap.String("dir", st.Dir(runID)))
	fmt.Printf("run id: %s\n", runID)
	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tPROBE\tCOUNT\tSTEPS\tPEAK")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Probe,
			run.Count,
			run.Steps,
			run.Metrics["peak_displacement"],
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

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("probe: %s, particles: %d\n", meta.Probe, meta.Count)
	fmt.Printf("samples: %d\n\n", len(frames))

	series := []struct {
		caption string
		value   func(globe.Frame) float64
	}{
		{"peak displacement", func(f globe.Frame) float64 { return f.Max }},
		{"mean displacement", func(f globe.Frame) float64 { return f.Mean }},
		{"engaged particles", func(f globe.Frame) float64 { return float64(f.Engaged) }},
	}

	for _, s := range series {
		data := make([]float64, len(frames))
		for i, f := range frames {
			data[i] = s.value(f)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := st.ExportJSON(w, args[0]); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported to %s\n", outFile)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNT\tRADIUS\tSTRENGTH\tDECAY\tCOLOR")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.3f\t%.2f\t%s\n",
			name, p.Count, p.Scatter.Radius, p.Scatter.Strength, p.Decay, p.Color)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "dotglobe.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func benchScatter(cmd *cobra.Command, args []string) error {
	counts := []int{1000, 3500, 12000, 50000}
	workerCounts := []int{1, 2, runtime.NumCPU()}
	src := probe.Orbit{Latitude: 0.3, Speed: 0.05}

	fmt.Printf("benchmarking scatter (%d steps, orbit cursor)\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tWORKERS\tTIME\tSTEPS/SEC\tNS/PARTICLE")

	for _, n := range counts {
		for _, wk := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Count = n
			cfg.Workers = wk

			g, err := globe.New(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			if _, err := g.Run(context.Background(), benchSteps, src); err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(benchSteps) / elapsed.Seconds()
			nsPerParticle := float64(elapsed.Nanoseconds()) / float64(benchSteps*n)
			fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.1f\n",
				n, wk, elapsed.Round(time.Microsecond), stepsPerSec, nsPerParticle)
		}
	}

	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	_, log, err := setup(cmd, false)
	if err != nil {
		return err
	}

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running scenario %s (%d steps)\n", sc.Name, len(sc.Steps))
	g, res, err := automation.RunScenario(ctx, sc, globe.WithLogger(log))
	if err != nil {
		return err
	}

	frames := res.Frames()
	var elapsed time.Duration
	for i, r := range res.Steps {
		last := r.Frames[len(r.Frames)-1]
		fmt.Printf("  step %d: %-6s %4d steps  peak %.4f  engaged %d\n",
			i+1, sc.Steps[i].Probe, len(r.Frames), last.Max, last.Engaged)
		elapsed += r.Elapsed
	}

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	cfg := g.Config()
	runID, err := st.Save(storage.RunMetadata{
		Probe:   "scenario:" + sc.Name,
		Steps:   len(frames),
		Count:   cfg.Count,
		Elapsed: elapsed.Seconds(),
		Metrics: map[string]float64{"final_peak_displacement": frames[len(frames)-1].Max},
	}, &cfg, frames, g.Positions())
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, false)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepN,
		Hover:     hoverSteps,
		Settle:    settleSteps,
		Threshold: threshold,
	}, globe.WithLogger(log))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tENGAGED\tSETTLE\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		settle := fmt.Sprint(r.SettleSteps)
		if !r.Settled {
			settle = ">" + settle
		}
		fmt.Fprintf(w, "%.4f\t%.4f\t%d\t%s\n", r.ParamValue, r.Peak, r.Engaged, settle)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	dir := outFile
	if dir == "" {
		dir = st.Dir(runID)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	peaks := make([]float64, len(frames))
	for i, f := range frames {
		peaks[i] = f.Max
	}

	opts := export.DefaultGlobeOptions()
	opts.Size, opts.CullBack = svgSize, cullBack
	if cfg, err := st.LoadConfig(runID); err == nil {
		opts.Color, opts.DotSize = cfg.Color, cfg.DotSize
	}

	if series := export.SeriesToSVG(peaks, svgSize, svgSize/3, opts.Color); series != "" {
		path := filepath.Join(dir, "displacement.svg")
		if err := os.WriteFile(path, []byte(series), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}

	positions, err := st.LoadPositions(runID)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		fmt.Println("no positions recorded (use run --positions)")
		return nil
	}

	cam := viz.NewCamera()
	cam.Orbit(svgYaw, svgPitch)
	svg, err := export.GlobeToSVG(positions, cam, opts)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "globe.svg")
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
