package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sphgas/internal/automation"
	"github.com/san-kum/sphgas/internal/config"
	"github.com/san-kum/sphgas/internal/experiment"
	"github.com/san-kum/sphgas/internal/metrics"
	"github.com/san-kum/sphgas/internal/sim"
	"github.com/san-kum/sphgas/internal/storage"
	"github.com/san-kum/sphgas/internal/viz"
)

// resolveConfig starts from the config file if one is given, else from the
// preset, and applies only the flags the user set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	name := preset
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if cfg.Run.Name == "" {
		cfg.Run.Name = name
	}

	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Run.Name = runName
	}
	if f.Changed("count") {
		cfg.Cloud.Count = count
	}
	if f.Changed("radius") {
		cfg.Cloud.Radius = radius
	}
	if f.Changed("temperature") {
		cfg.Cloud.Temperature = temperature
	}
	if f.Changed("seed") {
		cfg.Cloud.Seed = seed
	}
	if f.Changed("neighbors") {
		cfg.Solver.Neighbors = neighbors
	}
	if f.Changed("dt") {
		cfg.Solver.Dt = dt
	}
	if f.Changed("workers") {
		cfg.Solver.Workers = workers
	}
	if f.Changed("search") {
		cfg.Solver.NeighborSearch = search
	}
	if f.Changed("solver") {
		cfg.Solver.GravitySolver = solver
	}
	if f.Changed("theta") {
		cfg.Solver.Theta = theta
	}
	if f.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if f.Changed("every") {
		cfg.Run.Every = every
	}
	if noGravity {
		cfg.Physics.Gravity = false
	}
	if noGas {
		cfg.Physics.Gas = false
	}
	return cfg, nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.ToSim()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(experiment.Config{
		Name:  cfg.Run.Name,
		Sim:   simCfg,
		Steps: cfg.Run.Steps,
		Every: cfg.Run.Every,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}
	exp.AddObserver(experiment.ObserverFunc(printChanged))

	ctx, stop := interruptContext()
	defer stop()

	fmt.Printf("running %s: %d particles, %d steps of %.3g s\n", cfg.Run.Name, simCfg.Count, cfg.Run.Steps, simCfg.Dt)
	res, runErr := exp.Run(ctx)

	runID, err := st.Save(res, runErr)
	if err != nil {
		return err
	}

	fmt.Printf("\ncompleted in %v\n", res.WallTime.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", res.StepsTaken)
	fmt.Println("\nmetrics:")
	for _, name := range res.Names {
		fmt.Printf("  %-16s %.6e\n", name, res.Final[name])
	}
	return runErr
}

// printChanged prints the statistics whose displayed value moved since
// the previous sample.
func printChanged(step int, snap *sim.Snapshot, changed []metrics.Sample) {
	if len(changed) == 0 {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "step %6d  t=%.3e", step, snap.Time)
	for _, c := range changed {
		fmt.Fprintf(&b, "  %s=%s", c.Name, c.Formatted)
	}
	fmt.Println(b.String())
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.ToSim()
	if err != nil {
		return err
	}
	s, err := sim.New(simCfg)
	if err != nil {
		return err
	}
	return viz.Run(s, viz.Options{
		FPS:           frameRate,
		StepsPerFrame: stepsPerFrame,
		Theme:         theme,
		Axes:          showAxes,
	})
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.ToSim()
	if err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	e := sim.NewEnsemble(simCfg, numRuns, seedStart)
	e.Concurrency = concurrency
	start := time.Now()
	sims, err := e.Run(ctx, cfg.Run.Steps)
	if err != nil {
		return err
	}
	logrus.Infof("ensemble of %d finished in %v", numRuns, time.Since(start).Round(time.Millisecond))

	consts := metrics.ConstantsFrom(simCfg)
	columns := []struct {
		name string
		fn   func(*sim.Snapshot) float64
	}{
		{"radius", metrics.IdealisedRadius},
		{"total_energy", func(s *sim.Snapshot) float64 { return metrics.TotalEnergy(s, consts) }},
		{"temperature", func(s *sim.Snapshot) float64 { return metrics.MeanTemperature(s, consts) }},
		{"peak_density", metrics.PeakDensity},
	}
	values := make([][]float64, len(columns))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED")
	for _, c := range columns {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(c.name))
	}
	fmt.Fprintln(w)
	for _, s := range sims {
		snap := s.Snapshot()
		fmt.Fprintf(w, "%d", s.Config().Seed)
		for i, c := range columns {
			v := c.fn(snap)
			values[i] = append(values[i], v)
			fmt.Fprintf(w, "\t%.4e", v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, "mean±std")
	for i := range columns {
		mean, std := stat.MeanStdDev(values[i], nil)
		fmt.Fprintf(w, "\t%.4e±%.1e", mean, std)
	}
	fmt.Fprintln(w)
	return w.Flush()
}

func benchSolvers(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.ToSim()
	if err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	fmt.Printf("benchmarking %d particles, k=%d, %d reps\n\n", simCfg.Count, simCfg.Neighbors, reps)
	results, err := experiment.NewRegistry().Benchmark(ctx, simCfg, reps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEARCH\tGRAVITY\tSEARCH TIME\tGRAVITY TIME\tSTEP TIME")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%v\n", r.Finder, r.Solver,
			r.Search.Round(time.Microsecond), r.Gravity.Round(time.Microsecond), r.FullStep.Round(time.Microsecond))
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTRIAL\tRUN ID\tSTEPS\tSTATUS")
	n, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), func(r automation.StepResult) error {
		id, err := st.Save(r.Result, r.Err)
		if err != nil {
			return err
		}
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\n", r.Step, r.Trial+1, id, r.Result.StepsTaken, status)
		return nil
	})
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	fmt.Printf("\n%s: %d runs\n", sc.Name, n)
	return err
}
