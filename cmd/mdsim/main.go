package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/experiment"
	"github.com/san-kum/mdsim/internal/export"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/optim"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/store"
	"github.com/san-kum/mdsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile  string
	preset      string
	dt          float64
	endTime     float64
	outputEvery int
	workers     int
	seed        int64
	backend     string
	resume      string
	replicas    int

	stepsPerFrame int
	theme         string

	outPath  string
	svgWidth int
	series   bool

	sweepParams []string
	sweepMetric string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mdsim",
		Short:         "linked-cell molecular dynamics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and record it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().IntVar(&replicas, "replicas", 1, "independent runs with consecutive seeds")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 10, "steps advanced per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "phosphor", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [law]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return store.ExportRun(storage.New(dataDir), args[0], outPath)
		},
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export final particles or particle count history to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width in pixels")
	exportSVGCmd.Flags().BoolVar(&series, "history", false, "plot particle count over time instead of particles")

	checkpointCmd := &cobra.Command{
		Use:   "checkpoint [path]",
		Short: "inspect a checkpoint file",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectCheckpoint,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file from the defaults or a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "preset to start from")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parameter grid and rank it by a metric",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSystemFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... ("+strings.Join(optim.ParamNames(), ", ")+")")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "momentum_drift", "metric to minimise")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, presetsCmd, exportJSONCmd, exportSVGCmd, checkpointCmd, initCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&endTime, "time", config.DefaultEndTime, "end time")
	cmd.Flags().IntVar(&outputEvery, "output-every", config.DefaultOutputEvery, "output cadence in steps")
	cmd.Flags().IntVar(&workers, "workers", 0, "force workers (0 = all CPUs)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&backend, "backend", "", "force backend (auto, serial, cpu)")
	cmd.Flags().StringVar(&resume, "resume", "", "start from a checkpoint file")
}

func newLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var opt level.Option
	switch strings.ToLower(logLevel) {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	return level.NewFilter(logger, opt)
}

// resolveConfig layers the defaults, a preset, a config file and finally
// explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.FindPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (see 'mdsim presets')", preset)
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
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.EndTime = endTime
	}
	if flags.Changed("output-every") {
		cfg.OutputEvery = outputEvery
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("resume") {
		cfg.Checkpoint = resume
	}

	if len(cfg.Cuboids) == 0 && len(cfg.Discs) == 0 && cfg.Checkpoint == "" {
		return nil, fmt.Errorf("%w: no particles, use --config, --preset or --resume", dynamo.ErrInvalidConfig)
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if replicas > 1 {
		return runEnsemble(ctx, cfg, logger)
	}

	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	rec, err := st.Create(exp.Metadata(), cfg.Dimensions)
	if err != nil {
		return err
	}
	exp.Simulator().AddObserver(rec)

	fmt.Printf("running %s: %d particles, %s\n", exp.Metadata().Name, exp.Simulator().Index().Size(), exp.Law())
	result, runErr := exp.Run(ctx)
	if result == nil {
		rec.Close()
		return runErr
	}
	if err := rec.Finish(result, exp.Checkpoint()); err != nil {
		return err
	}

	printResult(rec.ID(), result)
	return runErr
}

func runEnsemble(ctx context.Context, cfg *config.Config, logger log.Logger) error {
	ens, err := experiment.Ensemble(cfg, replicas, logger)
	if err != nil {
		return err
	}

	fmt.Printf("running %d replicas (seeds %d..%d)\n", replicas, cfg.Seed, cfg.Seed+int64(replicas)-1)
	results, err := ens.Run(ctx, sim.Config{Dt: cfg.Dt, EndTime: cfg.EndTime, OutputEvery: cfg.OutputEvery})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tPARTICLES\tREMOVED\tKINETIC\tELAPSED")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.6f\t%v\n",
			cfg.Seed+int64(i),
			r.Steps,
			r.Particles,
			r.Totals.Boundary.Removed,
			r.Metrics["kinetic_energy"],
			r.Elapsed.Round(time.Millisecond),
		)
	}
	return w.Flush()
}

func printResult(runID string, result *sim.Result) {
	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (t=%.4f)\n", result.Steps, result.Time)
	fmt.Printf("particles: %d (removed %d, wrapped %d)\n",
		result.Particles, result.Totals.Boundary.Removed, result.Totals.Boundary.Wrapped)
	if result.Totals.Pairs.Skipped > 0 {
		fmt.Printf("skipped pairs: %d\n", result.Totals.Pairs.Skipped)
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the view; keep only warnings.
	logLevel = "warn"
	exp, err := experiment.New(cfg, newLogger())
	if err != nil {
		return err
	}

	m := viz.NewModel(exp.Simulator(), exp.Metadata().Name, cfg.Dt, cfg.EndTime, stepsPerFrame)
	m.SetTheme(theme)
	return viz.Run(m)
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
	fmt.Fprintln(w, "ID\tTIME\tLAW\tBOUNDARY\tDT\tEND\tPARTICLES\tREMOVED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4g\t%.2f\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Law,
			run.Boundary,
			run.Dt,
			run.EndTime,
			run.Particles,
			run.Removed,
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

	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if len(history) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("law: %s, boundary: %s\n", meta.Law, meta.Boundary)
	fmt.Printf("samples: %d\n\n", len(history))

	plots := []struct {
		caption string
		value   func(s metrics.Sample) float64
	}{
		{"particle count", func(s metrics.Sample) float64 { return float64(s.Count) }},
		{"kinetic energy", func(s metrics.Sample) float64 { return s.Kinetic }},
		{"temperature", func(s metrics.Sample) float64 { return s.Temperature }},
		{"total momentum", func(s metrics.Sample) float64 { return s.Momentum }},
	}

	for _, p := range plots {
		data := make([]float64, len(history))
		for i, s := range history {
			data[i] = p.value(s)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	laws := config.ListLaws()
	if len(args) == 1 {
		laws = args
	}

	for _, law := range laws {
		presets := config.ListPresets(law)
		if len(presets) == 0 {
			fmt.Printf("no presets for law: %s\n", law)
			continue
		}
		fmt.Printf("presets for %s:\n", law)
		for _, p := range presets {
			cfg := config.GetPreset(law, p)
			fmt.Printf("  %-16s %dd, %s\n", p, cfg.Dimensions, cfg.Conditions())
		}
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var svg string
	if series {
		history, err := st.LoadHistory(runID)
		if err != nil {
			return err
		}
		points := make([]export.Point, len(history))
		for i, s := range history {
			points[i] = export.Point{X: s.Time, Y: float64(s.Count)}
		}
		svg = export.SeriesToSVG(points, svgWidth, svgWidth/2, "#00ff88")
	} else {
		final, err := st.LoadFinal(runID)
		if err != nil {
			return err
		}
		svg = export.ParticlesToSVG(final.Particles, dynamo.Vec3(meta.Origin), dynamo.Vec3(meta.Domain), svgWidth)
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw for run %s", runID)
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

type particleList []dynamo.Particle

func (l particleList) Size() int { return len(l) }
func (l particleList) Each(fn func(p *dynamo.Particle)) {
	for i := range l {
		fn(&l[i])
	}
}

func inspectCheckpoint(cmd *cobra.Command, args []string) error {
	cp, err := storage.LoadCheckpoint(args[0])
	if err != nil {
		return err
	}

	dims := 2
	for _, p := range cp.Particles {
		if p.X[2] != 0 || p.V[2] != 0 {
			dims = 3
			break
		}
	}
	s := metrics.Measure(particleList(cp.Particles), cp.Time, dims)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "step\t%d\n", cp.Step)
	fmt.Fprintf(w, "time\t%.6f\n", cp.Time)
	fmt.Fprintf(w, "next id\t%d\n", cp.NextID)
	fmt.Fprintf(w, "particles\t%d\n", s.Count)
	fmt.Fprintf(w, "kinetic\t%.6f\n", s.Kinetic)
	fmt.Fprintf(w, "temperature\t%.6f (%dd)\n", s.Temperature, dims)
	fmt.Fprintf(w, "momentum\t%.6g\n", s.Momentum)
	fmt.Fprintf(w, "speed\t%.4f ± %.4f\n", s.MeanSpeed, s.SpeedStdDev)
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.FindPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s", preset)
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func parseSweep(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, arg := range specs {
		name, list, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --param %q, expected name=v1,v2", arg)
		}
		var values []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid value in --param %q: %w", arg, err)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseSweep(sweepParams)
	if err != nil {
		return err
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d configurations, minimising %s\n", grid.Size(), sweepMetric)
	points, best, err := grid.Search(ctx, cfg, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric)+"\t")
	for i, p := range points {
		row := make([]string, 0, len(names)+2)
		for _, name := range names {
			row = append(row, strconv.FormatFloat(p.Params[name], 'g', -1, 64))
		}
		switch {
		case p.Err != nil:
			row = append(row, "error: "+p.Err.Error())
		case i == best:
			row = append(row, fmt.Sprintf("%.6g", p.Value), "*")
		default:
			row = append(row, fmt.Sprintf("%.6g", p.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}
